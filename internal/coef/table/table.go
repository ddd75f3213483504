// Package table holds the immutable coefficient lookup dataset.
//
// The table maps a product system key to a set of material categories, each
// holding a two-dimensional grid of measured coefficients indexed by discrete
// width and height breakpoints. It is loaded once at startup, validated, and
// never mutated afterwards; any change requires a full reload.
package table

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNoCategories indicates a system entry without any category grid.
	ErrNoCategories = errors.New("system entry has no categories")
	// ErrAxisEmpty indicates a grid axis without breakpoints.
	ErrAxisEmpty = errors.New("grid axis has no breakpoints")
	// ErrAxisNotIncreasing indicates a grid axis that is not strictly increasing.
	ErrAxisNotIncreasing = errors.New("grid axis breakpoints are not strictly increasing")
	// ErrValuesShape indicates a values matrix whose dimensions do not match the axes.
	ErrValuesShape = errors.New("grid values do not match axis dimensions")
)

// Grid is the two-dimensional breakpoint table of measured coefficients for
// one (system, category) pair. Values[i][j] is the coefficient measured at
// (Widths[i], Heights[j]).
type Grid struct {
	Widths  []float64   `json:"widths"`
	Heights []float64   `json:"heights"`
	Values  [][]float64 `json:"values"`
}

// Validate checks the grid invariants: non-empty strictly increasing axes and
// a values matrix of exactly len(Widths) x len(Heights).
func (g Grid) Validate() error {
	if err := validateAxis(g.Widths); err != nil {
		return fmt.Errorf("widths: %w", err)
	}
	if err := validateAxis(g.Heights); err != nil {
		return fmt.Errorf("heights: %w", err)
	}
	if len(g.Values) != len(g.Widths) {
		return fmt.Errorf("%w: %d rows for %d widths", ErrValuesShape, len(g.Values), len(g.Widths))
	}
	for i, row := range g.Values {
		if len(row) != len(g.Heights) {
			return fmt.Errorf("%w: row %d has %d columns for %d heights", ErrValuesShape, i, len(row), len(g.Heights))
		}
	}
	return nil
}

func validateAxis(axis []float64) error {
	if len(axis) == 0 {
		return ErrAxisEmpty
	}
	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			return fmt.Errorf("%w: %v followed by %v", ErrAxisNotIncreasing, axis[i-1], axis[i])
		}
	}
	return nil
}

// SystemEntry maps category names to their coefficient grids within one
// product system.
type SystemEntry map[string]Grid

// Categories returns the category names of the entry in lexicographic order.
func (e SystemEntry) Categories() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table is the process-wide coefficient lookup table, read-only after load.
type Table struct {
	systems map[string]SystemEntry
}

// New builds a table from the given system entries, validating every grid.
// The entries map is copied so later caller mutations do not leak in.
func New(systems map[string]SystemEntry) (*Table, error) {
	copied := make(map[string]SystemEntry, len(systems))
	for key, entry := range systems {
		if len(entry) == 0 {
			return nil, fmt.Errorf("system %q: %w", key, ErrNoCategories)
		}
		entryCopy := make(SystemEntry, len(entry))
		for category, grid := range entry {
			if err := grid.Validate(); err != nil {
				return nil, fmt.Errorf("system %q category %q: %w", key, category, err)
			}
			entryCopy[category] = grid
		}
		copied[key] = entryCopy
	}
	return &Table{systems: copied}, nil
}

// Systems returns the known system keys in lexicographic order.
func (t *Table) Systems() []string {
	keys := make([]string, 0, len(t.systems))
	for key := range t.systems {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the category set for a system key.
func (t *Table) Lookup(systemKey string) (SystemEntry, bool) {
	entry, ok := t.systems[systemKey]
	return entry, ok
}

// LookupGrid returns the grid for a (system, category) pair.
func (t *Table) LookupGrid(systemKey, category string) (Grid, bool) {
	entry, ok := t.systems[systemKey]
	if !ok {
		return Grid{}, false
	}
	grid, ok := entry[category]
	return grid, ok
}

// Len returns the number of configured systems.
func (t *Table) Len() int {
	return len(t.systems)
}
