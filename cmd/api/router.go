package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paperpharmacy/internal/config"
	"paperpharmacy/internal/cover"
	"paperpharmacy/internal/history"
	"paperpharmacy/internal/httpx"
	"paperpharmacy/internal/platform/aladin"
	"paperpharmacy/internal/prescription"
)

// pinger reports database readiness. Nil when running without a database.
type pinger interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	covers        *cover.HTTPHandler
	prescriptions *prescription.HTTPHandler
	history       *history.HTTPHandler
	aladin        *aladin.HTTPHandler
	db            pinger
}

func newRouter(cfg *config.Config, h handlers, limiter *httpx.RateLimitMiddleware) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware)
	r.Use(httpx.RecoveryMiddleware)
	r.Use(httpx.SecurityHeadersMiddleware(cfg.Security.EnableHSTS))
	r.Use(httpx.CORSMiddleware(cfg.Security.CORSOrigins))
	r.Use(httpx.RequestSizeLimitMiddleware(cfg.Server.MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if h.db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := h.db.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Same contract as the browser app's serverless search proxy.
	r.Method(http.MethodGet, "/api/aladin", h.aladin)
	r.Method(http.MethodOptions, "/api/aladin", h.aladin)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/covers/placeholder.svg", h.covers.Placeholder)
		// Both fan out to outbound image downloads.
		r.With(limiter.Middleware).Get("/covers/resolve", h.covers.Resolve)
		r.With(limiter.Middleware).Get("/covers/image", h.covers.Image)

		r.Group(func(r chi.Router) {
			r.Use(httpx.VisitorMiddleware(cfg.Security.VisitorSecret, cfg.Security.VisitorTokenTTL))

			r.Get("/state", h.prescriptions.InitialState)
			r.Post("/state/actions", h.prescriptions.ApplyActions)
			r.Post("/state/location", h.prescriptions.ToggleLocation)

			r.With(limiter.Middleware).Post("/prescriptions", h.prescriptions.Prescribe)

			r.Get("/history", h.history.List)
			r.Get("/history/books", h.history.Books)
			r.Delete("/history", h.history.Clear)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}
