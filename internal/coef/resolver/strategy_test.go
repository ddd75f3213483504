package resolver

import (
	"math"
	"testing"

	"github.com/fenestra/sashcoef/internal/coef/table"
)

func strategyGrid() table.Grid {
	return table.Grid{
		Widths:  []float64{1, 2, 3},
		Heights: []float64{1, 2},
		Values: [][]float64{
			{10, 11},
			{20, 21},
			{30, 31},
		},
	}
}

func TestCeilingBucketing(t *testing.T) {
	grid := strategyGrid()
	b := CeilingBucketing{}

	tests := []struct {
		name   string
		width  float64
		height float64
		want   float64
	}{
		{name: "exact match", width: 2, height: 1, want: 20},
		{name: "width rounds up", width: 1.01, height: 1, want: 20},
		{name: "height rounds up", width: 1, height: 1.5, want: 11},
		{name: "both round up", width: 2.2, height: 1.9, want: 31},
		{name: "axis bounds", width: 3, height: 2, want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Coefficient(grid, tt.width, tt.height); got != tt.want {
				t.Fatalf("Coefficient(%v, %v) = %v, want %v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestBilinearInterpolation(t *testing.T) {
	grid := strategyGrid()
	b := BilinearInterpolation{}

	tests := []struct {
		name   string
		width  float64
		height float64
		want   float64
	}{
		{name: "exact breakpoint", width: 2, height: 1, want: 20},
		{name: "width midpoint", width: 1.5, height: 1, want: 15},
		{name: "height midpoint", width: 1, height: 1.5, want: 10.5},
		{name: "center of cell", width: 1.5, height: 1.5, want: 15.5},
		{name: "upper corner", width: 3, height: 2, want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Coefficient(grid, tt.width, tt.height)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Coefficient(%v, %v) = %v, want %v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestBilinearSingleBreakpointAxis(t *testing.T) {
	grid := table.Grid{
		Widths:  []float64{1},
		Heights: []float64{1},
		Values:  [][]float64{{42}},
	}

	if got := (BilinearInterpolation{}).Coefficient(grid, 1, 1); got != 42 {
		t.Fatalf("Coefficient = %v, want 42", got)
	}
}

func TestFirstCategoryPick(t *testing.T) {
	entry := table.SystemEntry{
		"white":     strategyGrid(),
		"laminated": strategyGrid(),
	}

	name, ok := FirstCategory{}.Pick(entry)
	if !ok || name != "laminated" {
		t.Fatalf("Pick = %q, %v; want laminated, true", name, ok)
	}

	if _, ok := (FirstCategory{}).Pick(table.SystemEntry{}); ok {
		t.Fatal("expected no pick from empty entry")
	}
}

func TestBucketingFor(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{mode: ""},
		{mode: ModeCeiling},
		{mode: ModeBilinear},
		{mode: "nearest", wantErr: true},
	}

	for _, tt := range tests {
		b, err := BucketingFor(tt.mode)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for mode %q", tt.mode)
			}
			continue
		}
		if err != nil {
			t.Fatalf("mode %q: %v", tt.mode, err)
		}
		if b == nil {
			t.Fatalf("mode %q returned nil bucketing", tt.mode)
		}
	}
}
