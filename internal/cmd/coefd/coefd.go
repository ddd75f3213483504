// Package coefd parses coefficient service flags and starts the HTTP runtime.
package coefd

import (
	"context"
	"flag"

	"github.com/fenestra/sashcoef/internal/coef/table"
	entrypoint "github.com/fenestra/sashcoef/internal/platform/cmd"
	server "github.com/fenestra/sashcoef/internal/services/coef/app"
)

// Config holds coefd command configuration.
type Config struct {
	Port int    `env:"SASHCOEF_PORT" envDefault:"8093"`
	Addr string `env:"SASHCOEF_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The coefficient server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The coefficient server listen address (overrides -port)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the coefficient resolution service.
func Run(ctx context.Context, cfg Config) error {
	// Surface dataset defects before telemetry spins up.
	if _, err := table.Default(); err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCoefd, func(context.Context) error {
		if cfg.Addr != "" {
			return server.RunWithAddr(ctx, cfg.Addr)
		}
		return server.Run(ctx, cfg.Port)
	})
}
