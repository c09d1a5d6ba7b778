package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Simplici0/ecopouch/internal/catalogfile"
	"github.com/Simplici0/ecopouch/internal/obs"
	"github.com/Simplici0/ecopouch/internal/pricing"
	"github.com/Simplici0/ecopouch/internal/quotes"
)

type server struct {
	auth     *authService
	engine   *pricing.Engine
	quotes   *quotes.Store
	reloader *catalogfile.Reloader
	metrics  *obs.DomainMetrics
	log      zerolog.Logger
}

type routerConfig struct {
	AllowedOrigins []string
	QuoteRate      limiter.Rate
	HTTPMetrics    *obs.HTTPMetrics
	Registry       *prometheus.Registry
}

func (s *server) routes(rc routerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if rc.HTTPMetrics != nil {
		r.Use(rc.HTTPMetrics.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: s.log}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rc.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	limited := quoteRateLimit(rc.QuoteRate)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if rc.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rc.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/eco-digital", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/structure", s.handleStructure)
		r.With(limited).Post("/price", s.handlePrice)
		r.With(limited).Post("/quotes", s.handleSaveQuote)
		r.Get("/quotes/{reference}", s.handleGetQuote)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(limited).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.requireAdmin)
			r.Get("/quotes", s.handleListQuotes)
			r.Get("/quotes/{id}", s.handleAdminQuote)
			r.Get("/quotes/{id}/text", s.handleAdminQuoteText)
			r.Post("/catalog/reload", s.handleReloadCatalog)
		})
	})
	return r
}

// quoteRateLimit limits pricing posts per client IP. A zero rate disables it.
func quoteRateLimit(rate limiter.Rate) func(http.Handler) http.Handler {
	if rate.Limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	mw := limiterhttp.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		limiterhttp.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many pricing requests, try again shortly", nil)
		}),
	)
	return mw.Handler
}
