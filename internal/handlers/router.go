package handlers

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"backlog/internal/config"
)

// Router builds the HTTP handler with the full interceptor pipeline.
func (h *Handlers) Router(cfg *config.Configuration) (http.Handler, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	// Browsers refuse credentials on a wildcard origin.
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: !slices.Contains(cfg.CORSOrigins, "*"),
	}).Handler)

	if cfg.RateLimit.Enabled {
		rate, err := limiter.NewRateFromFormatted(cfg.RateLimit.Rate)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit: %w", err)
		}
		r.Use(limiterhttp.NewMiddleware(limiter.New(memory.NewStore(), rate)).Handler)
	}

	r.Use(middleware.Compress(5))

	// Ops routes
	r.Get("/health", h.Health)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	// Registration and token issuance
	r.Post("/users/new", h.CreateUser)
	r.With(h.requireUser).Get("/token", h.Token)

	r.Group(func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(h.requireUser)
		}

		// Request routes
		r.Get("/requests", h.ListRequests)
		r.Get("/requests/get/completed", h.ListCompletedRequests)
		r.Get("/requests/{id}", h.GetRequest)
		r.Get("/ranks", h.ListRanks)
		r.Post("/requests/new", h.CreateRequest)
		r.Post("/requests/edit", h.UpdateRequest)
		r.Post("/requests/complete", h.CompleteRequest)
		r.Post("/requests/delete", h.DeleteRequest)

		// Client routes
		r.Get("/clients", h.ListClients)
		r.Get("/clients/{id}", h.GetClient)
		r.Post("/clients/new", h.CreateClient)
		r.Post("/clients/edit", h.UpdateClient)
		r.Post("/clients/delete", h.DeleteClient)

		// Product area routes
		r.Get("/areas", h.ListProductAreas)
		r.Post("/areas/new", h.CreateProductArea)
		r.Post("/areas/edit", h.UpdateProductArea)
		r.Post("/areas/delete", h.DeleteProductArea)
	})

	return r, nil
}
