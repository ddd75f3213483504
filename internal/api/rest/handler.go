// Package rest exposes the coefficient resolution API over HTTP.
package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fenestra/sashcoef/internal/coef/resolver"
	"github.com/fenestra/sashcoef/internal/coef/table"
	platformerrors "github.com/fenestra/sashcoef/internal/platform/errors"
)

// Handler serves the coefficient resolution endpoints.
type Handler struct {
	resolver *resolver.Resolver
	table    *table.Table
	started  time.Time
}

// NewHandler creates the API handler over a resolver and its table.
func NewHandler(res *resolver.Resolver, tbl *table.Table) *Handler {
	return &Handler{
		resolver: res,
		table:    tbl,
		started:  time.Now(),
	}
}

// RegisterRoutes registers the API routes on a router group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/resolve", h.Resolve)
	router.GET("/systems", h.ListSystems)
	router.GET("/status", h.GetStatus)
}

// Resolve handles one coefficient resolution exchange.
func (h *Handler) Resolve(c *gin.Context) {
	var req resolver.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, platformerrors.CodeMalformedRequest, "request body is not a valid resolution request")
		return
	}

	result, err := h.resolver.Resolve(req)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrInvalidDimensions):
			writeError(c, platformerrors.CodeInvalidDimensions, err.Error())
		case errors.Is(err, resolver.ErrUnknownSystem):
			writeError(c, platformerrors.CodeUnknownSystem, err.Error())
		default:
			writeError(c, platformerrors.CodeUnknown, "resolution failed")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListSystems returns the known system keys.
func (h *Handler) ListSystems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"systems": h.resolver.Systems()})
}

// GetStatus reports service health and dataset stats.
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"systems":       h.table.Len(),
		"uptimeSeconds": int(time.Since(h.started).Seconds()),
	})
}

// errorEnvelope is the JSON error body shared with the transport client.
type errorEnvelope struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeError(c *gin.Context, code platformerrors.Code, message string) {
	c.JSON(code.HTTPStatus(), errorEnvelope{Code: string(code), Error: message})
}
