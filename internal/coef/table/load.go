package table

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Embedded default dataset, used when no dataset path is configured.
//
//go:embed dataset.json
var defaultDataset []byte

// Parse decodes and validates a JSON dataset document.
//
// The document maps system key -> category name -> grid, matching the Grid
// JSON shape exactly. Any invariant violation fails the whole load; a partial
// table is never returned.
func Parse(data []byte) (*Table, error) {
	var doc map[string]SystemEntry
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	tbl, err := New(doc)
	if err != nil {
		return nil, fmt.Errorf("validate dataset: %w", err)
	}
	return tbl, nil
}

// Load reads and parses a dataset document from r.
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// LoadFile reads and parses a dataset document from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	tbl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset file %s: %w", path, err)
	}
	return tbl, nil
}

// Default parses the embedded dataset shipped with the binary.
func Default() (*Table, error) {
	return Parse(defaultDataset)
}
