package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/checkout"
	"github.com/fablepress/fablepress/billing/period"
	"github.com/fablepress/fablepress/billing/usage"
	"github.com/fablepress/fablepress/billing/webhook"
	"github.com/fablepress/fablepress/pkg/httpserver"
	"github.com/fablepress/fablepress/pkg/logger"
)

// Handler bundles the billing services behind the HTTP surface.
type Handler struct {
	catalog  *catalog.Catalog
	accounts usage.Store
	machine  *period.Machine
	webhooks *webhook.Service
	parser   EventParser
	checkout *checkout.Service // nil disables the /billing/checkout endpoints
	log      *slog.Logger
}

// EventParser verifies and normalizes a raw provider webhook payload.
// *webhook.StripeParser satisfies it; tests substitute their own.
type EventParser interface {
	Parse(payload []byte, signature string) (webhook.Event, error)
}

// NewHandler returns the HTTP handler set.
// Panics on nil required dependencies to fail fast during initialization.
func NewHandler(cat *catalog.Catalog, accounts usage.Store, machine *period.Machine, webhooks *webhook.Service, parser EventParser, co *checkout.Service, log *slog.Logger) *Handler {
	if cat == nil {
		panic("httpapi: plan catalog is required")
	}
	if accounts == nil {
		panic("httpapi: account store is required")
	}
	if machine == nil {
		panic("httpapi: period machine is required")
	}
	if webhooks == nil {
		panic("httpapi: webhook service is required")
	}
	if parser == nil {
		panic("httpapi: event parser is required")
	}
	if log == nil {
		panic("httpapi: logger is required")
	}
	return &Handler{
		catalog:  cat,
		accounts: accounts,
		machine:  machine,
		webhooks: webhooks,
		parser:   parser,
		checkout: co,
		log:      log.With(logger.Component("httpapi")),
	}
}

// Router assembles the chi router. Health probes feed the /health endpoint.
func (h *Handler) Router(ctx context.Context, probes ...func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthCheckHandler(ctx, h.log, probes...))

	r.Get("/user-entitlements", h.handleEntitlements)
	r.Post("/consume/{counter}", h.handleConsume)

	r.Post("/billing/checkout", h.handleCheckout)
	r.Post("/billing/cancel", h.handleCancel)
	r.Get("/billing/portal", h.handlePortal)

	r.Post("/webhooks/stripe", h.handleStripeWebhook)

	return r
}
