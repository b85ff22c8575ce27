package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicer/internal/action"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	authStore "github.com/MrJamesThe3rd/invoicer/internal/auth/store"
	"github.com/MrJamesThe3rd/invoicer/internal/cache"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	invoicerHttp "github.com/MrJamesThe3rd/invoicer/internal/http"
	authHandler "github.com/MrJamesThe3rd/invoicer/internal/http/auth"
	invoiceHandler "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicer/internal/invoice/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Deferred cleanup runs before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	views, closeViews, err := newViews(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to view cache: %w", err)
	}
	defer closeViews()

	var (
		sessions       = auth.NewSessions(cfg.Session.Secret, cfg.Session.Cookie, cfg.Session.TTL)
		authService    = auth.NewService(authStore.New(db), sessions)
		invoiceService = invoice.NewService(invoiceStore.New(db))
		invoiceActions = action.NewInvoices(invoiceService, views)
	)

	var (
		authH     = authHandler.NewHandler(authService, sessions)
		invoicesH = invoiceHandler.NewHandler(invoiceActions, invoiceService, views)
	)

	router := invoicerHttp.New(cfg.CORS.AllowedOrigins, sessions, authH, invoicesH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	}

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	return serve(ctx, srv, ln)
}

// serve runs srv on ln and shuts it down gracefully once ctx is done.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// newViews picks Redis when REDIS_URL is set and an in-process cache
// otherwise.
func newViews(ctx context.Context, cfg *config.Config) (cache.Views, func(), error) {
	if cfg.ViewCache.RedisURL == "" {
		slog.Info("using in-memory view cache")
		return cache.NewMemory(cfg.ViewCache.TTL), func() {}, nil
	}

	client, err := cache.Connect(ctx, cfg.ViewCache.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	return cache.NewRedis(client, cfg.ViewCache.TTL), func() { client.Close() }, nil
}
