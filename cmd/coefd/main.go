package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	coefdcmd "github.com/fenestra/sashcoef/internal/cmd/coefd"
)

func main() {
	cfg, err := coefdcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[COEFD] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := coefdcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
