// Package main is the entry point for the flipbook viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/flipbook/internal/book"
	"github.com/Faultbox/flipbook/internal/config"
	"github.com/Faultbox/flipbook/internal/engine/texture"
	"github.com/Faultbox/flipbook/internal/logger"
	"github.com/Faultbox/flipbook/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Flipbook ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := cfg.BookOptions()
	if err != nil {
		return err
	}

	b, err := book.New(ctx, opts, texture.NewSourceLoader(nil))
	if err != nil {
		return fmt.Errorf("building book: %w", err)
	}
	defer b.Close()

	v, err := viewer.New(cfg, b)
	if err != nil {
		return err
	}
	defer v.Close()

	return v.Run(ctx)
}
