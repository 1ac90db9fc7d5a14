package api

import (
	"github.com/ayo6706/booking-billing/internal/api/handler"
	"github.com/ayo6706/booking-billing/internal/api/middleware"
	"github.com/ayo6706/booking-billing/internal/api/spec"
	"github.com/ayo6706/booking-billing/internal/config"
	"github.com/ayo6706/booking-billing/internal/idempotency"
	"github.com/ayo6706/booking-billing/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Router wires middleware, handlers and services into the HTTP surface.
type Router struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *pgxpool.Pool
	redis    redis.Cmdable
	idem     *idempotency.Store
	invoices *service.InvoiceService
}

func NewRouter(cfg *config.Config, logger *zap.Logger, db *pgxpool.Pool, redis redis.Cmdable, idem *idempotency.Store, invoices *service.InvoiceService) *Router {
	return &Router{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		redis:    redis,
		idem:     idem,
		invoices: invoices,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)

	healthHandler := handler.NewHealthHandler(api.db, api.redis)
	invoiceHandler := handler.NewInvoiceHandler(api.invoices)

	// Public surface: health, metrics, API docs.
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Get("/healthz/live", healthHandler.Live)
		r.Get("/healthz/ready", healthHandler.Ready)
		r.Get("/openapi.yaml", spec.OpenAPIHandler())
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Billing operations: all tenant-scoped via the JWT actor.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Get("/v1/invoices", invoiceHandler.List)
		r.Get("/v1/invoices/{id}", invoiceHandler.Get)
		r.With(middleware.IdempotencyMiddleware(api.idem, api.logger)).Post("/v1/invoices", invoiceHandler.Create)
		r.Patch("/v1/invoices/{id}/status", invoiceHandler.UpdateStatus)
		r.Delete("/v1/invoices/{id}", invoiceHandler.Cancel)
	})

	return r
}
