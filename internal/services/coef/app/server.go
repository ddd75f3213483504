// Package server hosts the coefficient resolution service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apirest "github.com/fenestra/sashcoef/internal/api/rest"
	"github.com/fenestra/sashcoef/internal/coef/resolver"
	"github.com/fenestra/sashcoef/internal/coef/table"
)

// shutdownTimeout caps the graceful drain when the context ends.
const shutdownTimeout = 5 * time.Second

// Server hosts the coefficient resolution HTTP service.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
}

// New creates a configured server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured server listening on an explicit address.
// The coefficient table is loaded and validated here; a malformed dataset
// fails startup rather than serving bad coefficients.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	tbl, err := loadTable()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	bucketing, err := resolver.BucketingFor(strings.TrimSpace(os.Getenv("SASHCOEF_BUCKETING")))
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	handler := apirest.NewHandler(resolver.New(tbl, resolver.WithBucketing(bucketing)), tbl)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router.Group("/api"))

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           otelhttp.NewHandler(router, "sashcoef.api"),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a server until the context ends.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// RunWithAddr creates and serves a server on an explicit address until the
// context ends.
func RunWithAddr(ctx context.Context, addr string) error {
	server, err := NewWithAddr(addr)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log.Printf("coefficient server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			_ = s.httpServer.Close()
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

// loadTable loads the coefficient dataset, preferring an operator-provided
// file over the embedded default.
func loadTable() (*table.Table, error) {
	path := strings.TrimSpace(os.Getenv("SASHCOEF_DATASET_PATH"))
	if path == "" {
		tbl, err := table.Default()
		if err != nil {
			return nil, fmt.Errorf("load embedded dataset: %w", err)
		}
		return tbl, nil
	}

	tbl, err := table.LoadFile(path)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded coefficient dataset from %s (%d systems)", path, tbl.Len())
	return tbl, nil
}
