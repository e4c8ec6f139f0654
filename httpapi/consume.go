package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fablepress/fablepress/billing/entitlement"
	"github.com/fablepress/fablepress/billing/usage"
	"github.com/fablepress/fablepress/pkg/logger"
)

// consumeRetries bounds retries on storage contention before the client is
// told to try again.
const consumeRetries = 3

// maxConsumeAmount bounds a single charge. Far above any plan allowance, it
// keeps oversized requests out of counter arithmetic.
const maxConsumeAmount = 1_000_000

type consumeRequest struct {
	Amount int64 `json:"amount"`
}

type consumeResponse struct {
	Counter   usage.Counter        `json:"counter"`
	NewValue  int64                `json:"new_value"`
	Remaining int64                `json:"remaining"`
	Snapshot  entitlement.Snapshot `json:"snapshot"`
}

// handleConsume gates a billable action on the account's entitlements and
// atomically charges the quota. The caller performs the action only after a
// 200 response; on a failed action it calls Refund out of band.
func (h *Handler) handleConsume(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "account identity required")
		return
	}

	counter := usage.Counter(chi.URLParam(r, "counter"))
	if !counter.Valid() {
		respondError(w, http.StatusNotFound, "unknown_counter", "unknown usage counter")
		return
	}

	amount := int64(1)
	if r.Body != nil {
		var req consumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
			return
		}
		if req.Amount != 0 {
			amount = req.Amount
		}
	}
	if amount <= 0 || amount > maxConsumeAmount {
		respondError(w, http.StatusBadRequest, "bad_request", "amount out of range")
		return
	}

	account, err := h.accounts.Get(r.Context(), accountID)
	if err != nil {
		h.respondLookupError(w, r, err)
		return
	}
	plan, err := h.catalog.Get(account.PlanID)
	if err != nil {
		h.respondLookupError(w, r, err)
		return
	}

	now := time.Now()
	snap := entitlement.Evaluate(account, plan, now)
	if !snap.HasAccess {
		respondDenial(w, "period_expired", snap)
		return
	}

	limit := entitlement.LimitFor(plan, counter)

	var result usage.ConsumeResult
	for attempt := 0; ; attempt++ {
		result, err = h.accounts.TryConsume(r.Context(), accountID, counter, amount, limit)
		if err == nil || !errors.Is(err, usage.ErrStorageConflict) || attempt+1 >= consumeRetries {
			break
		}
		h.log.DebugContext(r.Context(), "retrying consume after storage conflict",
			logger.AccountID(accountID), logger.Counter(string(counter)), logger.RetryCount(attempt+1))
	}
	switch {
	case err == nil:
	case errors.Is(err, usage.ErrStorageConflict):
		respondError(w, http.StatusConflict, "conflict", "please try again")
		return
	case errors.Is(err, usage.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "account_not_found", "account not found")
		return
	default:
		h.log.ErrorContext(r.Context(), "consume failed",
			logger.AccountID(accountID), logger.Counter(string(counter)), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "storage failure")
		return
	}

	if !result.Allowed {
		// Quota exhausted is an expected outcome, not an error.
		respondDenial(w, "quota_exceeded", snap)
		return
	}

	account, err = h.accounts.Get(r.Context(), accountID)
	if err == nil {
		snap = entitlement.Evaluate(account, plan, now)
	}

	respondData(w, "consumed", consumeResponse{
		Counter:   counter,
		NewValue:  result.NewValue,
		Remaining: result.Remaining,
		Snapshot:  snap,
	})
}
