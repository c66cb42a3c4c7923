// Package serve starts the HTTP server and the background model refresh
// scheduler.
package serve

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	api "github.com/gardenbase/seedvault/internal/api/v2"
	"github.com/gardenbase/seedvault/internal/conf"
	"github.com/gardenbase/seedvault/internal/datastore"
	"github.com/gardenbase/seedvault/internal/gemini"
	"github.com/gardenbase/seedvault/internal/logging"
	"github.com/gardenbase/seedvault/internal/observability"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the seedvault HTTP server",
		Long:  "Start the API server and the weekly model list refresh scheduler.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// runServer wires the datastore, the AI client and the API together and
// blocks until a shutdown signal arrives.
func runServer(settings *conf.Settings) error {
	logger := logging.ForService("server")

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Error("datastore close failed", "error", err)
		}
	}()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	geminiClient := gemini.NewClient(settings, ds, ds, metrics)
	registry := gemini.NewRegistry(geminiClient)

	e := echo.New()
	e.HideBanner = true
	controller := api.New(e, ds, settings, geminiClient, registry,
		log.New(os.Stdout, "", log.LstdFlags), metrics)
	defer controller.Shutdown()

	scheduler, err := startScheduler(settings, registry, logger)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + settings.WebServer.Port
		logger.Info("seedvault server starting", "addr", addr, "version", settings.Version)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// startScheduler arms the weekly model list refresh. An empty schedule
// disables it.
func startScheduler(settings *conf.Settings, registry *gemini.Registry, logger *slog.Logger) (*cron.Cron, error) {
	schedule := settings.Gemini.RefreshSchedule
	if schedule == "" {
		return nil, nil
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, registry.ScheduledRefresh); err != nil {
		return nil, fmt.Errorf("invalid model refresh schedule %q: %w", schedule, err)
	}
	scheduler.Start()
	logger.Info("model refresh scheduled", "schedule", schedule)
	return scheduler, nil
}
