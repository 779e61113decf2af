package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ejci/tado-data-capture/config"
	"github.com/ejci/tado-data-capture/internal/api"
	"github.com/ejci/tado-data-capture/internal/logging"
	"github.com/ejci/tado-data-capture/internal/poller"
	"github.com/ejci/tado-data-capture/internal/sink"
	"github.com/ejci/tado-data-capture/internal/tado"
	"github.com/ejci/tado-data-capture/internal/tokenstore"
)

const (
	shutdownTimeout  = 10 * time.Second
	defaultStaticDir = "public"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	store := tokenstore.NewFileStore(cfg.TokenFile, logger)
	tadoClient := tado.NewClient(tado.Config{ClientID: cfg.Tado.ClientID}, store, logger)
	if tadoClient.IsAuthenticated() {
		logger.Info("Loaded persisted tado session")
	} else {
		logger.Info("No tado session found, login required at /api/login/start")
	}

	influxSink := sink.New(sink.Options{
		URL:    cfg.Influx.URL,
		Token:  cfg.Influx.Token,
		Org:    cfg.Influx.Org,
		Bucket: cfg.Influx.Bucket,
		DryRun: cfg.DryRun,
	}, logger)
	if cfg.DryRun {
		logger.Warn("Dry run mode enabled, no data will be written to InfluxDB")
	}

	schedule := poller.NewSchedule(
		cfg.Tado.Intervals.WeatherInterval(),
		cfg.Tado.Intervals.RoomsInterval(),
		cfg.Tado.Intervals.HeatPumpInterval(),
	)
	p := poller.New(tadoClient, influxSink, schedule, logger)
	go p.Start()

	router := api.NewRouter(api.RouterConfig{
		Session:   tadoClient,
		Poller:    p,
		Sink:      influxSink,
		Logger:    logger,
		StaticDir: defaultStaticDir,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Shutting down", "signal", sig.String())

		p.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		logger.Info("Graceful shutdown complete")
	}

	return nil
}
