package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/config"
	"github.com/gdugdh24/topicmatch-backend/internal/infrastructure/container"
	"github.com/gdugdh24/topicmatch-backend/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	app, err := container.NewContainer(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize application")
	}

	if err := run(app); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		if closeErr := app.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("error closing application")
		}
		os.Exit(1)
	}

	if err := app.Close(); err != nil {
		logging.Error().Err(err).Msg("error closing application")
		os.Exit(1)
	}

	logging.Info().Msg("server exited properly")
}

func run(app *container.Container) error {
	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if app.Scheduler != nil {
		app.Scheduler.Start()
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutdown requested")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return app.Server.Shutdown(ctx)
}
