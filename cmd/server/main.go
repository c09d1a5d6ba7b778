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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/Simplici0/ecopouch/internal/catalogfile"
	"github.com/Simplici0/ecopouch/internal/config"
	"github.com/Simplici0/ecopouch/internal/db"
	"github.com/Simplici0/ecopouch/internal/migrations"
	"github.com/Simplici0/ecopouch/internal/obs"
	"github.com/Simplici0/ecopouch/internal/pricing"
	"github.com/Simplici0/ecopouch/internal/quotes"
	"github.com/Simplici0/ecopouch/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().
		Str("service", "ecopouch").
		Str("app_env", cfg.AppEnv).
		Bool("dev", cfg.IsDev()).
		Logger()
	for _, w := range cfg.Warnings {
		logger.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	applied, err := migrations.Up(ctx, database)
	if err != nil {
		return err
	}
	logger.Info().Ints64("versions", applied).Msg("migrations applied")

	stats, err := seed.Run(ctx, database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info().Int("inserts", stats.Inserts).Int("updates", stats.Updates).Msg("seed complete")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, registry)
	domainMetrics := obs.NewDomainMetrics(cfg.MetricsNamespace, registry)

	base := pricing.Default()
	catalogs, err := pricing.NewCatalogStore(base)
	if err != nil {
		return err
	}

	var reloader *catalogfile.Reloader
	if cfg.CatalogPath != "" {
		reloader = catalogfile.NewReloader(cfg.CatalogPath, base, catalogs, logger, domainMetrics.ObserveReload)
		if _, err := reloader.Reload(); err != nil {
			return fmt.Errorf("load catalog overrides: %w", err)
		}
		if cfg.CatalogWatchInterval > 0 {
			watcher := catalogfile.NewWatcher(cfg.CatalogPath, cfg.CatalogWatchInterval, func() { _, _ = reloader.Reload() })
			watcher.Start(ctx)
			defer watcher.Stop()
		}
	}
	logger.Info().Str("catalog_version", catalogs.Current().Version).Msg("catalog ready")

	srv := &server{
		auth:     newAuthService(database, cfg.SessionSecret),
		engine:   pricing.NewEngine(catalogs),
		quotes:   quotes.NewStore(database),
		reloader: reloader,
		metrics:  domainMetrics,
		log:      logger,
	}
	handler := srv.routes(routerConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		QuoteRate:      cfg.QuoteRateLimit,
		HTTPMetrics:    httpMetrics,
		Registry:       registry,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return serve(ctx, httpServer, logger)
}

func serve(ctx context.Context, httpServer *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
