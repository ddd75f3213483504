// Package datasetlint validates a coefficient dataset file offline.
//
// It runs the same integrity checks the service applies at startup, so a
// dataset that lints clean will also load clean.
package datasetlint

import (
	"flag"
	"fmt"
	"io"

	"github.com/fenestra/sashcoef/internal/coef/table"
	entrypoint "github.com/fenestra/sashcoef/internal/platform/cmd"
)

// Config holds dataset-lint command configuration.
type Config struct {
	Path string `env:"SASHCOEF_DATASET_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Path, "dataset", cfg.Path, "Path to the dataset file (defaults to the embedded dataset)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run validates the dataset and writes a per-system summary to out.
func Run(cfg Config, out io.Writer) error {
	var (
		tbl *table.Table
		err error
	)
	if cfg.Path == "" {
		tbl, err = table.Default()
	} else {
		tbl, err = table.LoadFile(cfg.Path)
	}
	if err != nil {
		return err
	}

	source := cfg.Path
	if source == "" {
		source = "embedded dataset"
	}
	fmt.Fprintf(out, "%s: %d systems\n", source, tbl.Len())
	for _, key := range tbl.Systems() {
		entry, _ := tbl.Lookup(key)
		for _, category := range entry.Categories() {
			grid, _ := tbl.LookupGrid(key, category)
			fmt.Fprintf(out, "  %s/%s: %dx%d grid, widths %.2f-%.2fm, heights %.2f-%.2fm\n",
				key, category, len(grid.Widths), len(grid.Heights),
				grid.Widths[0], grid.Widths[len(grid.Widths)-1],
				grid.Heights[0], grid.Heights[len(grid.Heights)-1])
		}
	}
	return nil
}
