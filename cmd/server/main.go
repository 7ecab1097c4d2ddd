// Package main implements the entry point for the Harbor admin server: it
// wires configuration, logging, the idempotency store backend, the
// inter-module event bus, and the module handler lists, then serves the
// operational HTTP endpoints until shutdown.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	if err := run(*migrateOnly); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run initializes the application and blocks until a shutdown signal.
func run(migrateOnly bool) error {
	app, err := initializeApp()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup()

	if migrateOnly {
		app.Logger.Info("migrations applied, exiting")
		return nil
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config.Server.Port),
		Handler:           newRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("server listening", "port", app.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case sig := <-stop:
		app.Logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		app.Config.EventBus.ShutdownGrace,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("http server shutdown failed", "error", err)
	}

	// Drain in-flight event deliveries before the process exits; handlers
	// may still be retrying after the HTTP listener is gone.
	if err := app.Bus.Close(shutdownCtx); err != nil {
		app.Logger.Error("event bus shutdown incomplete", "error", err)
	}

	return nil
}
