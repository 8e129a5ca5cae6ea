/*
serve.go - HTTP server startup

PURPOSE:
  Wires the full daemon together: configuration, SQLite persistence,
  the payment gateway client, the email notifier, the optional cron
  auto-advancer, and the chi router. Shuts down gracefully on
  SIGINT/SIGTERM.

STARTUP SEQUENCE:
  1. Load configuration (env / .env / --db flag)
  2. Open the SQLite store and restore the bank, or start fresh
  3. Attach gateway and notifier to the bank
  4. Start the auto-advancer when AUTO_ADVANCE_SPEC is set
  5. Serve until interrupted, then drain with a 30s timeout

SEE ALSO:
  - api/server.go: router configuration
  - api/scheduler.go: cron auto-advance
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aegean/bank-engine/api"
	"github.com/aegean/bank-engine/gateway"
	"github.com/aegean/bank-engine/notify"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger(cfg)

	b, store, err := openBank(cmd, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	b.SetGateway(gateway.NewClient(cfg.GatewayURL, log))
	b.SetNotifier(notify.NewSender(cfg, log))
	if !cfg.EmailEnabled() {
		log.Info("SMTP not configured, notifications will be logged only")
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, API authentication is disabled")
	}

	handler := api.NewHandler(b, store, log, cfg.JWTSecret)

	advancer := api.NewAutoAdvancer(handler, cfg.AutoAdvanceSpec, log)
	advancer.Start()
	defer func() { <-advancer.Stop().Done() }()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server listening on http://localhost:%s, simulated date %s", cfg.Port, b.CurrentDate())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	// Final snapshot so nothing applied since the last request-time
	// save is lost.
	if err := store.SaveAll(ctx, b.Snapshot()); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
