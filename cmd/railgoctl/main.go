// Command railgoctl drives the booking engine over the line-oriented
// console protocol on stdin/stdout. Logs go to stderr so they never
// interleave with command results.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/railbook/rail-go/internal/app"
	"github.com/railbook/rail-go/internal/config"
	"github.com/railbook/rail-go/internal/transport/console"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	runner := console.NewRunner(application.Services(), logger)
	runner.OnClean = application.ClearSnapshot

	if err := runner.Run(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("console session failed", "error", err)
		os.Exit(1)
	}

	if err := application.SaveSnapshot(ctx); err != nil {
		logger.Error("failed to save snapshot", "error", err)
		os.Exit(1)
	}
}
