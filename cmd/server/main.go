package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ecocare/internal/app"
	"ecocare/internal/config"
	"ecocare/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ecocare: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Directory: cfg.Log.Directory,
	})
	if err != nil {
		return err
	}
	defer log.Close()

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to start server")
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}
	log.Info().Msg("👋 server stopped")
	return nil
}
