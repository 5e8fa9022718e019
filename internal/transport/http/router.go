// Package httptransport assembles the public HTTP surface: global
// middleware, health and metrics endpoints, and the versioned registry
// routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fides/internal/jwttoken"
	"fides/internal/platform/clock"
	"fides/internal/platform/metrics"
	"fides/internal/platform/middleware"
)

const requestTimeout = 10 * time.Second

// Registrar is implemented by every registry handler package.
type Registrar interface {
	Register(r chi.Router)
}

// Config carries the router's collaborators.
type Config struct {
	Logger   *slog.Logger
	Clock    clock.Source
	Metrics  *metrics.Metrics
	Handlers []Registrar
	Health   func() error
}

// NewRouter builds the full middleware chain and mounts all registry routes
// under /v1. Auth happens per registry inside each handler's Register, after
// the shared context stamps (request id, height, client metadata).
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Height(cfg.Clock))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Latency(cfg.Metrics))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", healthHandler(cfg.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		for _, h := range cfg.Handlers {
			h.Register(v1)
		}
	})

	return r
}

func healthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// JWTAdapter bridges the token service onto the middleware's validator
// contract.
type JWTAdapter struct {
	service *jwttoken.JWTService
}

func NewJWTAdapter(service *jwttoken.JWTService) *JWTAdapter {
	return &JWTAdapter{service: service}
}

func (a *JWTAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{Subject: claims.Subject}, nil
}
