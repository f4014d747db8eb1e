package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/config"
	"github.com/premiumcars/listingsheet/internal/handler"
	"github.com/premiumcars/listingsheet/internal/metrics"
	"github.com/premiumcars/listingsheet/internal/middleware"
	"github.com/premiumcars/listingsheet/internal/model"
)

type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	metrics  http.Handler
	sessions middleware.Authenticator
	cookies  auth.CookieConfig
	limiter  middleware.Limiter

	root    *handler.Handler
	health  *handler.HealthHandler
	records *handler.RecordHandler
	renders *handler.RenderHandler
	auth    *handler.SessionHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger, d.recorder))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))
	r.Use(middleware.CORS(d.cfg.GetCORSAllowedOrigins()))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))
	r.Use(chimiddleware.CleanPath)

	r.Get("/", d.root.Index)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	if d.metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.metrics)
	}

	session := middleware.RequireSession(middleware.SessionConfig{
		Logger:   d.logger,
		Sessions: d.sessions,
		Cookies:  d.cookies,
	})
	userLimit := middleware.RateLimitUser(middleware.RateLimitConfig{
		Logger:  d.logger,
		Limiter: d.limiter,
		Enabled: d.cfg.RateLimitEnabled,
		Limit:   model.RateLimit{RequestsPerMinute: d.cfg.RateLimitRPM, Burst: d.cfg.RateLimitBurst},
	})
	signInLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:  d.logger,
		Limiter: d.limiter,
		Enabled: d.cfg.RateLimitEnabled,
		Limit:   model.RateLimit{RequestsPerMinute: d.cfg.SignInRateLimitRPM, Burst: d.cfg.SignInRateLimitBurst},
	})

	r.Route("/auth/session", func(r chi.Router) {
		r.With(signInLimit).Post("/", d.auth.Create)
		r.Delete("/", d.auth.Delete)
		r.With(session).Get("/", d.auth.Current)
	})

	r.Group(func(r chi.Router) {
		r.Use(session)
		r.Use(userLimit)

		r.Post("/preview", d.renders.Draft)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", d.records.List)
			r.Post("/", d.records.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", d.records.Get)
				r.Put("/", d.records.Update)
				r.Delete("/", d.records.Delete)
				r.Get("/preview", d.renders.Preview)
				r.Get("/export", d.renders.Export)
				r.Post("/archive", d.renders.Archive)
			})
		})
	})

	r.NotFound(d.root.NotFound)
	r.MethodNotAllowed(d.root.MethodNotAllowed)

	return r
}
