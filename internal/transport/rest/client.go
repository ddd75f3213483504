// Package rest implements the resolution transport over HTTP.
//
// One call performs one JSON request/response exchange with a coefficient
// service. Calls are abortable mid-flight through the context; an aborted
// call never delivers a response.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fenestra/sashcoef/internal/coef/resolver"
	platformerrors "github.com/fenestra/sashcoef/internal/platform/errors"
)

// defaultRequestTimeout caps a single exchange independent of the caller context.
const defaultRequestTimeout = 10 * time.Second

// Client performs resolution exchanges against a coefficient service.
// It implements the resolution client's Transport interface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures optional transport behavior.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a transport for the service at baseURL.
// Outbound calls carry OTel trace context when a provider is registered.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   defaultRequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve performs one resolution exchange.
func (c *Client) Resolve(ctx context.Context, req resolver.Request) (resolver.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return resolver.Result{}, platformerrors.Wrap(platformerrors.CodeTransportFailure, "encode resolve request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/resolve", bytes.NewReader(body))
	if err != nil {
		return resolver.Result{}, platformerrors.Wrap(platformerrors.CodeTransportFailure, "build resolve request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Abort through the caller context is cancellation, not failure.
		if ctx.Err() != nil {
			return resolver.Result{}, ctx.Err()
		}
		return resolver.Result{}, platformerrors.Wrap(platformerrors.CodeTransportFailure, "resolve exchange failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resolver.Result{}, decodeError(resp)
	}

	var result resolver.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return resolver.Result{}, platformerrors.Wrap(platformerrors.CodeTransportFailure, "malformed resolve response", err)
	}
	return result, nil
}

// Systems returns the system keys known to the service.
func (c *Client) Systems(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/systems", nil)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.CodeTransportFailure, "build systems request", err)
	}
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, platformerrors.Wrap(platformerrors.CodeTransportFailure, "systems exchange failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var body struct {
		Systems []string `json:"systems"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, platformerrors.Wrap(platformerrors.CodeTransportFailure, "malformed systems response", err)
	}
	return body.Systems, nil
}

// decodeError maps a service error envelope back onto domain errors so
// callers can test with errors.Is across the wire.
func decodeError(resp *http.Response) error {
	var envelope struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return platformerrors.New(platformerrors.CodeTransportFailure,
			fmt.Sprintf("service returned status %d with unreadable body", resp.StatusCode))
	}

	switch platformerrors.Code(envelope.Code) {
	case platformerrors.CodeUnknownSystem:
		return fmt.Errorf("%w: %s", resolver.ErrUnknownSystem, envelope.Error)
	case platformerrors.CodeInvalidDimensions:
		return fmt.Errorf("%w: %s", resolver.ErrInvalidDimensions, envelope.Error)
	default:
		return platformerrors.New(platformerrors.Code(envelope.Code), envelope.Error)
	}
}
