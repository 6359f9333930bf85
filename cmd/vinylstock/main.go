// Command vinylstock serves the record inventory API.
//
// Configuration comes from config.yaml (or CONFIG_PATH) and environment
// variables such as PORT, DATABASE_URL and SPOTIFY_CLIENT_ID. See
// internal/config for the full list.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gobd/vinylstock/internal/api"
	"github.com/Gobd/vinylstock/internal/catalog"
	"github.com/Gobd/vinylstock/internal/config"
	"github.com/Gobd/vinylstock/internal/logging"
	"github.com/Gobd/vinylstock/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("vinylstock stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.Migrate(ctx); err != nil {
		return err
	}

	var cat api.Catalog
	if cfg.CatalogEnabled() {
		client, err := catalog.New(cfg.Catalog)
		if err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		cat = client
	} else {
		logging.Warn().Msg("SPOTIFY_CLIENT_ID not set, catalog lookup disabled")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.New(cfg.Server, st, cat).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.Server.Environment).
			Str("database", st.Driver()).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
