package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/fablepress/fablepress/billing/webhook"
	"github.com/fablepress/fablepress/pkg/logger"
)

// maxWebhookBody caps the payload size read from the provider. Stripe events
// are small; anything larger is not a legitimate event.
const maxWebhookBody = 1 << 16

// handleStripeWebhook ingests provider events. Response codes follow the
// provider's retry contract: 2xx acknowledges (including duplicates and
// ignored events), 400 rejects malformed payloads for good, and 5xx asks
// the provider to redeliver after a storage failure.
func (h *Handler) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "unreadable payload")
		return
	}

	event, err := h.parser.Parse(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.log.WarnContext(r.Context(), "webhook payload rejected", logger.Error(err))
		respondError(w, http.StatusBadRequest, "malformed_event", "signature or schema verification failed")
		return
	}

	result, err := h.webhooks.ApplyEvent(r.Context(), event)
	switch {
	case err == nil:
	case errors.Is(err, webhook.ErrMalformedEvent):
		respondError(w, http.StatusBadRequest, "malformed_event", "event failed validation")
		return
	default:
		h.log.ErrorContext(r.Context(), "webhook apply failed",
			logger.EventID(event.ID), logger.Error(err))
		respondError(w, http.StatusServiceUnavailable, "storage_failure", "event not applied, retry expected")
		return
	}

	respondData(w, string(result), map[string]string{"event_id": event.ID})
}
