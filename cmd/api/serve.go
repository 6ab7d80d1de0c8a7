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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"example.com/launchpad-notes/internal/config"
	"example.com/launchpad-notes/internal/db"
	"example.com/launchpad-notes/internal/logging"
	"example.com/launchpad-notes/internal/middleware"
	"example.com/launchpad-notes/internal/notes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Initialize the notes table and serve the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, cfg.DatabaseURL, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer dbConn.SQL.Close()

	repo, err := notes.NewRepository(ctx, dbConn.SQL, dbConn.Dialect)
	if err != nil {
		return fmt.Errorf("initialize notes store: %w", err)
	}
	defer repo.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(cfg, log, notes.NewHandlers(repo, log)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("base_url", cfg.BaseURL).
			Str("dialect", string(dbConn.Dialect)).
			Str("version", version).
			Msg("notes API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func newRouter(cfg config.Config, log zerolog.Logger, h *notes.Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	r.Mount("/", h.Routes())
	return r
}
