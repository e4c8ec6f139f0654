package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/entitlement"
	"github.com/fablepress/fablepress/billing/usage"
	"github.com/fablepress/fablepress/pkg/logger"
)

// accountIDHeader is set by the auth layer in front of this service.
const accountIDHeader = "X-Account-ID"

func accountIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(accountIDHeader)
	if raw == "" {
		return uuid.Nil, errors.New("missing account header")
	}
	return uuid.Parse(raw)
}

func (h *Handler) handleEntitlements(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "account identity required")
		return
	}

	snap, err := h.snapshot(r, accountID)
	if err != nil {
		h.respondLookupError(w, r, err)
		return
	}

	respondData(w, "entitlements", snap)
}

// snapshot loads the account and its plan and evaluates entitlements at the
// current time.
func (h *Handler) snapshot(r *http.Request, accountID uuid.UUID) (entitlement.Snapshot, error) {
	account, err := h.accounts.Get(r.Context(), accountID)
	if err != nil {
		return entitlement.Snapshot{}, err
	}
	plan, err := h.catalog.Get(account.PlanID)
	if err != nil {
		return entitlement.Snapshot{}, err
	}
	return entitlement.Evaluate(account, plan, time.Now()), nil
}

func (h *Handler) respondLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usage.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "account_not_found", "account not found")
	case errors.Is(err, catalog.ErrPlanNotFound):
		// The account references a plan the catalog no longer carries.
		// This is an operator mistake, not a client one.
		h.log.ErrorContext(r.Context(), "account references unknown plan", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "plan configuration error")
	default:
		h.log.ErrorContext(r.Context(), "account lookup failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "storage failure")
	}
}
