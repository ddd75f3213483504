package main

import (
	"flag"
	"os"

	datasetlintcmd "github.com/fenestra/sashcoef/internal/cmd/datasetlint"
	"github.com/fenestra/sashcoef/internal/platform/config"
)

func main() {
	cfg, err := datasetlintcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := datasetlintcmd.Run(cfg, os.Stdout); err != nil {
		config.Exitf("dataset lint: %v", err)
	}
}
