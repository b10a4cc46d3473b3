package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spendwatch/internal/cli"
	"spendwatch/internal/commands"
	"spendwatch/internal/log"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Logs go to stderr so command output stays clean.
	logger := cli.SetupLogger(cfg, log.ComponentCLI, os.Stderr)
	logger.Debug("Starting spendwatch", log.FieldBackend, cfg.DataBackend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand(cli.ServiceOpener(cfg, logger)).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
