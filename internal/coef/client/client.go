// Package client orchestrates per-sash coefficient resolution.
//
// Each sash in an order form resolves its coefficient independently: rapid
// dimension edits are debounced, a newer request for the same sash cancels
// any pending or in-flight older one, and completed results are memoized so
// repeated requests never hit the transport again. Different sashes share
// nothing but the read-only result cache.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fenestra/sashcoef/internal/coef/resolver"
)

// DefaultDebounce is the wait between a dimension change and the transport
// call it triggers.
const DefaultDebounce = 500 * time.Millisecond

// Transport performs one resolution exchange. Implementations must honor
// context cancellation: an aborted call returns before delivering a result.
type Transport interface {
	Resolve(ctx context.Context, req resolver.Request) (resolver.Result, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req resolver.Request) (resolver.Result, error)

// Resolve implements Transport for TransportFunc.
func (fn TransportFunc) Resolve(ctx context.Context, req resolver.Request) (resolver.Result, error) {
	return fn(ctx, req)
}

// sashState tracks the pending timer and in-flight call for one sash.
type sashState struct {
	timer  *time.Timer        // pending debounce timer, nil when none
	cancel context.CancelFunc // in-flight call abort, nil when none
	seq    uint64             // sequence of the live request for this sash
}

// supersede stops the pending timer and aborts the in-flight call, if any.
// The caller must hold the client mutex.
func (s *sashState) supersede() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Client is the per-session resolution orchestrator. Construct one per
// editing session with New; it is safe for concurrent use.
type Client struct {
	transport Transport
	debounce  time.Duration

	mu     sync.Mutex
	seq    uint64 // monotonically increasing request sequence
	sashes map[string]*sashState
	cache  map[string]resolver.Result
}

// Option configures optional client behavior.
type Option func(*Client)

// WithDebounce overrides the default debounce window.
func WithDebounce(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// New creates a resolution client over the given transport.
func New(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		debounce:  DefaultDebounce,
		sashes:    make(map[string]*sashState),
		cache:     make(map[string]resolver.Result),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fingerprint is the result cache key for a request. Dimensions are rounded
// to millimeter precision so float noise from the editor does not defeat
// memoization.
func Fingerprint(req resolver.Request) string {
	return fmt.Sprintf("%s|%s|%.3f|%.3f", req.SystemKey, req.Category, req.Width, req.Height)
}

// RequestResolution schedules a resolution for one sash with the default
// debounce window.
//
// A cached result is delivered synchronously through onSuccess without any
// transport involvement. Otherwise any pending or in-flight request for the
// same sash is superseded: its callbacks will never be invoked. After the
// debounce window the request goes to the transport; completion stores the
// result in the cache and invokes onSuccess, failure invokes onError, and a
// superseded call invokes neither.
func (c *Client) RequestResolution(sashID string, req resolver.Request, onSuccess func(resolver.Result), onError func(error)) {
	c.RequestResolutionDebounced(sashID, req, c.debounce, onSuccess, onError)
}

// RequestResolutionDebounced schedules a resolution with an explicit debounce
// window.
func (c *Client) RequestResolutionDebounced(sashID string, req resolver.Request, debounce time.Duration, onSuccess func(resolver.Result), onError func(error)) {
	fingerprint := Fingerprint(req)

	c.mu.Lock()
	if result, ok := c.cache[fingerprint]; ok {
		c.mu.Unlock()
		if onSuccess != nil {
			onSuccess(result)
		}
		return
	}

	state, ok := c.sashes[sashID]
	if !ok {
		state = &sashState{}
		c.sashes[sashID] = state
	}
	state.supersede()

	c.seq++
	seq := c.seq
	state.seq = seq
	state.timer = time.AfterFunc(debounce, func() {
		c.fire(sashID, seq, fingerprint, req, onSuccess, onError)
	})
	c.mu.Unlock()
}

// fire issues the transport call for a debounced request. It re-checks the
// sash state on entry and after completion: a request superseded or released
// at any point delivers no callback.
func (c *Client) fire(sashID string, seq uint64, fingerprint string, req resolver.Request, onSuccess func(resolver.Result), onError func(error)) {
	c.mu.Lock()
	state, ok := c.sashes[sashID]
	if !ok || state.seq != seq {
		c.mu.Unlock()
		return
	}
	state.timer = nil
	if result, ok := c.cache[fingerprint]; ok {
		// Another sash resolved the same fingerprint while we waited.
		c.mu.Unlock()
		if onSuccess != nil {
			onSuccess(result)
		}
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	state.cancel = cancel
	c.mu.Unlock()

	result, err := c.transport.Resolve(ctx, req)

	c.mu.Lock()
	state, ok = c.sashes[sashID]
	live := ok && state.seq == seq && ctx.Err() == nil
	if live {
		state.cancel = nil
		if err == nil {
			c.cache[fingerprint] = result
		}
	}
	c.mu.Unlock()
	cancel()

	if !live {
		return
	}
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	if onSuccess != nil {
		onSuccess(result)
	}
}

// ReleaseSash cancels any pending timer and in-flight call for the sash and
// drops its state. Call it when a line item leaves the order so a stale
// callback cannot touch removed state.
func (c *Client) ReleaseSash(sashID string) {
	c.mu.Lock()
	if state, ok := c.sashes[sashID]; ok {
		state.supersede()
		delete(c.sashes, sashID)
	}
	c.mu.Unlock()
}

// ResetAll releases every tracked sash and clears the result cache. Used
// when the whole editing session restarts.
func (c *Client) ResetAll() {
	c.mu.Lock()
	for id, state := range c.sashes {
		state.supersede()
		delete(c.sashes, id)
	}
	c.cache = make(map[string]resolver.Result)
	c.mu.Unlock()
}

// Cached returns the memoized result for a request, if any.
func (c *Client) Cached(req resolver.Request) (resolver.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.cache[Fingerprint(req)]
	return result, ok
}
