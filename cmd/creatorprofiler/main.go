package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"CreatorProfiler/internal/app"
	"CreatorProfiler/internal/config"
	"CreatorProfiler/internal/logging"
)

func main() {
	once := flag.Bool("once", false, "process pending jobs once and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}

	run := application.Run
	if *once {
		run = application.RunOnce
	}
	if err := run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
