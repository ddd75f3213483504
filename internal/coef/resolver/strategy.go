package resolver

import (
	"fmt"
	"sort"

	"github.com/fenestra/sashcoef/internal/coef/table"
)

// FallbackPolicy picks a substitute category when the requested one is not
// configured for a system.
type FallbackPolicy interface {
	Pick(entry table.SystemEntry) (string, bool)
}

// FirstCategory picks the lexicographically first configured category.
type FirstCategory struct{}

// Pick implements FallbackPolicy.
func (FirstCategory) Pick(entry table.SystemEntry) (string, bool) {
	names := entry.Categories()
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Bucketing maps an in-bounds (width, height) pair onto a coefficient.
// Callers clamp the dimensions into the grid range before invoking it.
type Bucketing interface {
	Coefficient(grid table.Grid, width, height float64) float64
}

// Bucketing mode names accepted by BucketingFor.
const (
	ModeCeiling  = "ceiling"
	ModeBilinear = "bilinear"
)

// BucketingFor returns the bucketing rule for a configured mode name.
// An empty mode selects ceiling bucketing.
func BucketingFor(mode string) (Bucketing, error) {
	switch mode {
	case "", ModeCeiling:
		return CeilingBucketing{}, nil
	case ModeBilinear:
		return BilinearInterpolation{}, nil
	default:
		return nil, fmt.Errorf("unknown bucketing mode %q", mode)
	}
}

// CeilingBucketing selects the smallest breakpoint >= the requested value on
// each axis, costing a unit against the next-larger measured size.
type CeilingBucketing struct{}

// Coefficient implements Bucketing.
func (CeilingBucketing) Coefficient(grid table.Grid, width, height float64) float64 {
	return grid.Values[ceilingIndex(grid.Widths, width)][ceilingIndex(grid.Heights, height)]
}

// ceilingIndex returns the smallest index whose breakpoint is >= v.
// v must already be clamped into the axis range.
func ceilingIndex(axis []float64, v float64) int {
	i := sort.SearchFloat64s(axis, v)
	if i == len(axis) {
		return len(axis) - 1
	}
	return i
}

// BilinearInterpolation blends the four grid points bracketing the requested
// dimensions, producing a continuous coefficient surface.
type BilinearInterpolation struct{}

// Coefficient implements Bucketing.
func (BilinearInterpolation) Coefficient(grid table.Grid, width, height float64) float64 {
	wi, wt := bracket(grid.Widths, width)
	hi, ht := bracket(grid.Heights, height)

	wj, hj := wi, hi
	if wt > 0 {
		wj = wi + 1
	}
	if ht > 0 {
		hj = hi + 1
	}

	return grid.Values[wi][hi]*(1-wt)*(1-ht) +
		grid.Values[wj][hi]*wt*(1-ht) +
		grid.Values[wi][hj]*(1-wt)*ht +
		grid.Values[wj][hj]*wt*ht
}

// bracket finds the lower bracketing index for v and the interpolation factor
// toward the next breakpoint. An exact breakpoint match yields factor 0.
// v must already be clamped into the axis range.
func bracket(axis []float64, v float64) (int, float64) {
	i := sort.SearchFloat64s(axis, v)
	if i == len(axis) {
		return len(axis) - 1, 0
	}
	if axis[i] == v {
		return i, 0
	}
	if i == 0 {
		return 0, 0
	}
	return i - 1, (v - axis[i-1]) / (axis[i] - axis[i-1])
}
