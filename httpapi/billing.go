package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/checkout"
	"github.com/fablepress/fablepress/billing/coupon"
	"github.com/fablepress/fablepress/billing/period"
	"github.com/fablepress/fablepress/billing/usage"
	"github.com/fablepress/fablepress/pkg/logger"
)

type checkoutRequest struct {
	PlanID     string `json:"plan_id"`
	Email      string `json:"email,omitempty"`
	CouponCode string `json:"coupon_code,omitempty"`
}

type checkoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if h.checkout == nil {
		respondError(w, http.StatusNotImplemented, "not_implemented", "checkout is not configured")
		return
	}

	accountID, err := accountIDFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "account identity required")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.PlanID == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "plan_id is required")
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), accountID, req.PlanID, checkout.Options{
		Email:      req.Email,
		CouponCode: req.CouponCode,
	})
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrPlanNotFound):
		respondError(w, http.StatusNotFound, "plan_not_found", "plan not found")
		return
	case errors.Is(err, checkout.ErrPlanNotBillable):
		respondError(w, http.StatusBadRequest, "plan_not_billable", "plan has no recurring billing")
		return
	case errors.Is(err, usage.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "account_not_found", "account not found")
		return
	case errors.Is(err, coupon.ErrCouponNotFound),
		errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, coupon.ErrCouponExhausted):
		respondError(w, http.StatusBadRequest, "invalid_coupon", err.Error())
		return
	default:
		h.log.ErrorContext(r.Context(), "checkout session failed",
			logger.AccountID(accountID), logger.PlanID(req.PlanID), logger.Error(err))
		respondError(w, http.StatusBadGateway, "provider_error", "could not create checkout session")
		return
	}

	respondData(w, "checkout_session", checkoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
	})
}

// handleCancel flags the subscription to lapse at period end. Entitlements
// are untouched until the period actually ends.
func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "account identity required")
		return
	}

	account, err := h.machine.RequestCancel(r.Context(), accountID)
	switch {
	case err == nil:
	case errors.Is(err, usage.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "account_not_found", "account not found")
		return
	case errors.Is(err, period.ErrInvalidTransition), errors.Is(err, period.ErrNotSubscribed):
		respondError(w, http.StatusConflict, "not_cancelable", "no active subscription to cancel")
		return
	default:
		h.log.ErrorContext(r.Context(), "cancel request failed",
			logger.AccountID(accountID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "storage failure")
		return
	}

	respondData(w, "cancel_scheduled", map[string]any{
		"cancel_at_period_end": account.CancelAtPeriodEnd,
		"current_period_end":   account.CurrentPeriodEnd,
	})
}

func (h *Handler) handlePortal(w http.ResponseWriter, r *http.Request) {
	if h.checkout == nil {
		respondError(w, http.StatusNotImplemented, "not_implemented", "billing portal is not configured")
		return
	}

	accountID, err := accountIDFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "account identity required")
		return
	}

	link, err := h.checkout.PortalLink(r.Context(), accountID)
	switch {
	case err == nil:
	case errors.Is(err, usage.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "account_not_found", "account not found")
		return
	case errors.Is(err, checkout.ErrNoPortalAccess):
		respondError(w, http.StatusConflict, "no_portal_access", "account has no billing profile yet")
		return
	default:
		h.log.ErrorContext(r.Context(), "portal link failed",
			logger.AccountID(accountID), logger.Error(err))
		respondError(w, http.StatusBadGateway, "provider_error", "could not create portal link")
		return
	}

	respondData(w, "portal_link", map[string]string{"url": link.URL})
}
