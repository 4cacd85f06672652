package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"beerorder/cmd"
	httpin "beerorder/internal/adapters/in/http"
	"beerorder/internal/adapters/out/postgres/migrations"
	"beerorder/internal/pkg/tracing"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the result consumers and the background jobs",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before starting")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	configs, err := cmd.LoadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(configs.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if configs.JaegerEndpoint != "" {
		tp, tpErr := tracing.InitTracerProvider("beer-order-service", configs.JaegerEndpoint, configs.TraceSampleRatio)
		if tpErr != nil {
			return fmt.Errorf("init tracing: %w", tpErr)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	db, err := openDatabase(configs)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	if migrateOnStart {
		if err = migrations.Up(sqlDB); err != nil {
			return err
		}
	}

	app, err := cmd.NewCompositionRoot(configs, db, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Warn("Closing connections failed", "error", closeErr)
		}
	}()

	e, err := httpin.NewRouter(app.CreateHTTPServer(), app.Registry(), logger)
	if err != nil {
		return err
	}
	e.Logger.SetLevel(log.INFO)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "port", configs.HTTPPort)
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); !errors.Is(startErr, http.ErrServerClosed) {
			return startErr
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return app.CreateResultConsumer().Run(ctx)
	})

	g.Go(func() error {
		if listenErr := app.CreateStatusListener().Run(ctx); listenErr != nil {
			logger.Warn("Status listener stopped, waiters fall back to polling", "error", listenErr)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("Service stopped")
	return err
}
