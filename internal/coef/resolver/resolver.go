// Package resolver maps sash dimensions onto the coefficient table.
//
// Resolution is deterministic and pure with respect to the loaded table:
// the same request against the same table always yields the same result.
package resolver

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fenestra/sashcoef/internal/coef/table"
)

var (
	// ErrUnknownSystem indicates a system key that is not present in the
	// table. This is a configuration defect on the caller side and is not
	// resolved by fallback.
	ErrUnknownSystem = errors.New("unknown product system")
	// ErrInvalidDimensions indicates a non-positive or non-finite width or
	// height. Rejected before any table lookup.
	ErrInvalidDimensions = errors.New("invalid sash dimensions")
)

// Request identifies one coefficient resolution. Width and height are in
// meters and must be positive and finite.
type Request struct {
	SystemKey string  `json:"systemKey"`
	Category  string  `json:"category"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// Result carries the resolved coefficient plus fallback and range metadata.
// A fallback category or an out-of-range clamp is not an error; it is a
// successful result with a non-empty Warning.
type Result struct {
	Coefficient        float64 `json:"coefficient"`
	IsFallbackCategory bool    `json:"isFallbackCategory"`
	Warning            string  `json:"warning,omitempty"`
}

// Resolver resolves coefficient requests against an immutable table.
type Resolver struct {
	table     *table.Table
	fallback  FallbackPolicy
	bucketing Bucketing
}

// Option configures optional resolver policies.
type Option func(*Resolver)

// WithFallbackPolicy overrides the category fallback selection rule.
func WithFallbackPolicy(policy FallbackPolicy) Option {
	return func(r *Resolver) {
		if policy != nil {
			r.fallback = policy
		}
	}
}

// WithBucketing overrides the dimension bucketing rule.
func WithBucketing(bucketing Bucketing) Option {
	return func(r *Resolver) {
		if bucketing != nil {
			r.bucketing = bucketing
		}
	}
}

// New creates a resolver over tbl with ceiling bucketing and first-category
// fallback unless overridden by options.
func New(tbl *table.Table, opts ...Option) *Resolver {
	r := &Resolver{
		table:     tbl,
		fallback:  FirstCategory{},
		bucketing: CeilingBucketing{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Systems returns the system keys known to the underlying table.
func (r *Resolver) Systems() []string {
	return r.table.Systems()
}

// Resolve maps a request onto the coefficient table.
//
// The requested category falls back to a substitute when it is not configured
// for the system; out-of-range dimensions clamp to the nearest measured
// breakpoint. Both cases succeed and are reported through Result.Warning.
func (r *Resolver) Resolve(req Request) (Result, error) {
	if err := validateDimensions(req.Width, req.Height); err != nil {
		return Result{}, err
	}

	entry, ok := r.table.Lookup(req.SystemKey)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownSystem, req.SystemKey)
	}

	var warnings []string
	category := req.Category
	isFallback := false
	if _, ok := entry[category]; !ok {
		substitute, ok := r.fallback.Pick(entry)
		if !ok {
			return Result{}, fmt.Errorf("%w: %q has no usable category", ErrUnknownSystem, req.SystemKey)
		}
		warnings = append(warnings, fmt.Sprintf(
			"category %q is not configured for system %q, using %q instead",
			req.Category, req.SystemKey, substitute))
		category = substitute
		isFallback = true
	}
	grid := entry[category]

	width, clamped := clampToAxis(req.Width, grid.Widths)
	if clamped {
		warnings = append(warnings, outOfRangeWarning("width", req.Width, grid.Widths))
	}
	height, clamped := clampToAxis(req.Height, grid.Heights)
	if clamped {
		warnings = append(warnings, outOfRangeWarning("height", req.Height, grid.Heights))
	}

	return Result{
		Coefficient:        r.bucketing.Coefficient(grid, width, height),
		IsFallbackCategory: isFallback,
		Warning:            strings.Join(warnings, "; "),
	}, nil
}

func validateDimensions(width, height float64) error {
	if !(width > 0) || math.IsInf(width, 0) {
		return fmt.Errorf("%w: width %v", ErrInvalidDimensions, width)
	}
	if !(height > 0) || math.IsInf(height, 0) {
		return fmt.Errorf("%w: height %v", ErrInvalidDimensions, height)
	}
	return nil
}

// clampToAxis pins v to the measured axis range. The returned bool reports
// whether clamping happened.
func clampToAxis(v float64, axis []float64) (float64, bool) {
	if v < axis[0] {
		return axis[0], true
	}
	if last := axis[len(axis)-1]; v > last {
		return last, true
	}
	return v, false
}

func outOfRangeWarning(dimension string, v float64, axis []float64) string {
	return fmt.Sprintf("%s %.3fm is outside the measured range [%.3f, %.3f], clamped to the nearest bound",
		dimension, v, axis[0], axis[len(axis)-1])
}
