package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/bookmark-client/internal/app"
	"github.com/samvad-hq/bookmark-client/internal/config"
	"github.com/samvad-hq/bookmark-client/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bookmark-export start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("bookmark-export starting", "config", map[string]any{
		"app_env":         cfg.Env,
		"sources_file":    cfg.SourcesFile,
		"publishers_file": cfg.PublishersFile,
		"export_interval": cfg.ExportInterval.String(),
		"storage_type":    cfg.StorageType,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exporter, err := app.NewExporter(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize exporter", "error", err)
		return err
	}

	if err := exporter.Run(ctx); err != nil {
		return fmt.Errorf("exporter run: %w", err)
	}

	return nil
}
