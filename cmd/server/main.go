package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wiredoc-server/internal/app"
	"github.com/vovakirdan/wiredoc-server/internal/config"
	"github.com/vovakirdan/wiredoc-server/internal/log"
)

type flags struct {
	configPath string
	addr       string
	logLevel   string
	dataDir    string
	storage    string
	staticDir  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:          "wiredoc-server",
		Short:        "Real-time collaborative plain-text editing server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "path to config.yaml")
	cmd.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "directory for file snapshots")
	cmd.Flags().StringVar(&f.storage, "storage", "", "snapshot backend (file, sqlite, redis, memory)")
	cmd.Flags().StringVar(&f.staticDir, "static-dir", "", "directory served for unmatched routes")

	return cmd
}

func run(ctx context.Context, f flags) error {
	bootLogger := log.New("info", "console")

	cfg, path, err := config.Load(bootLogger, f.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(config.Config{
		Addr:      f.addr,
		LogLevel:  f.logLevel,
		StaticDir: f.staticDir,
		Storage: config.StorageConfig{
			Backend: f.storage,
			DataDir: f.dataDir,
		},
	})

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().Str("config", path).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, &cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", application.Addr()).Str("storage", cfg.Storage.Backend).Msg("starting wiredoc server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
