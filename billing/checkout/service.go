package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"

	"github.com/fablepress/fablepress/billing/catalog"
	"github.com/fablepress/fablepress/billing/coupon"
	"github.com/fablepress/fablepress/billing/usage"
	"github.com/fablepress/fablepress/billing/webhook"
)

// Config holds the API-side Stripe settings.
type Config struct {
	SecretKey  string `env:"STRIPE_SECRET_KEY,required"`
	SuccessURL string `env:"CHECKOUT_SUCCESS_URL,required"`
	CancelURL  string `env:"CHECKOUT_CANCEL_URL,required"`
}

// Init wires the Stripe API key. Call once at startup before using the
// service.
func Init(cfg Config) {
	stripe.Key = cfg.SecretKey
}

// Session is a hosted checkout session the UI redirects the user to.
type Session struct {
	ID  string
	URL string
}

// PortalLink is a pre-authenticated billing-portal URL.
type PortalLink struct {
	URL string
}

// Options carries per-request checkout settings.
type Options struct {
	Email      string // pre-fill billing email if known
	SuccessURL string // overrides the configured default
	CancelURL  string
	CouponCode string
}

// Service creates checkout and portal sessions for accounts.
type Service struct {
	catalog  *catalog.Catalog
	accounts usage.Store
	coupons  *coupon.Service // nil disables coupon codes
	cfg      Config
}

// NewService returns a checkout service.
// Panics on nil catalog or account store to fail fast during initialization.
func NewService(cat *catalog.Catalog, accounts usage.Store, coupons *coupon.Service, cfg Config) *Service {
	if cat == nil {
		panic("checkout: plan catalog is required")
	}
	if accounts == nil {
		panic("checkout: account store is required")
	}
	return &Service{
		catalog:  cat,
		accounts: accounts,
		coupons:  coupons,
		cfg:      cfg,
	}
}

// CreateSession starts a Stripe checkout session subscribing the account to
// the given plan. The plan ID doubles as the Stripe price ID.
func (s *Service) CreateSession(ctx context.Context, accountID uuid.UUID, planID string, opts Options) (*Session, error) {
	plan, err := s.catalog.Get(planID)
	if err != nil {
		return nil, err
	}
	if plan.Interval == catalog.BillingIntervalNone {
		return nil, ErrPlanNotBillable
	}

	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, account, opts.Email)
	if err != nil {
		return nil, err
	}

	params := s.sessionParams(account.ID, plan, customerID, opts)

	var redeemedCode string
	if opts.CouponCode != "" && s.coupons != nil {
		c, err := s.coupons.Redeem(ctx, opts.CouponCode)
		if err != nil {
			return nil, err
		}
		redeemedCode = c.Code
		if c.ProviderID != "" {
			params.Discounts = []*stripe.CheckoutSessionDiscountParams{
				{Coupon: stripe.String(c.ProviderID)},
			}
		}
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, s.releaseCoupon(ctx, redeemedCode, fmt.Errorf("create checkout session: %w", err))
	}
	if sess.URL == "" {
		return nil, s.releaseCoupon(ctx, redeemedCode, ErrNoCheckoutURL)
	}

	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

// releaseCoupon hands a redemption back when the session it was charged for
// never materialized, so a failed provider call cannot burn a capped code.
func (s *Service) releaseCoupon(ctx context.Context, code string, cause error) error {
	if code == "" {
		return cause
	}
	if err := s.coupons.Release(ctx, code); err != nil {
		return errors.Join(cause, fmt.Errorf("release coupon %s: %w", code, err))
	}
	return cause
}

// PortalLink returns a billing-portal session where the user can update
// payment methods, switch plans, or cancel.
func (s *Service) PortalLink(ctx context.Context, accountID uuid.UUID) (*PortalLink, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.ProviderCustomerID == "" {
		return nil, ErrNoPortalAccess
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(account.ProviderCustomerID),
		ReturnURL: stripe.String(s.cfg.SuccessURL),
	})
	if err != nil {
		return nil, fmt.Errorf("create portal session: %w", err)
	}
	return &PortalLink{URL: sess.URL}, nil
}

// sessionParams assembles the checkout parameters. Split out so tests can
// assert on the wiring without calling Stripe.
func (s *Service) sessionParams(accountID uuid.UUID, plan catalog.Plan, customerID string, opts Options) *stripe.CheckoutSessionParams {
	successURL := opts.SuccessURL
	if successURL == "" {
		successURL = s.cfg.SuccessURL
	}
	cancelURL := opts.CancelURL
	if cancelURL == "" {
		cancelURL = s.cfg.CancelURL
	}

	return &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(accountID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.ID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				webhook.MetadataAccountID: accountID.String(),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
}

// ensureCustomer finds or creates the Stripe customer for an account and
// stores its ID for later portal and webhook use.
func (s *Service) ensureCustomer(ctx context.Context, account *usage.Account, email string) (string, error) {
	if account.ProviderCustomerID != "" {
		return account.ProviderCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Metadata: map[string]string{
			webhook.MetadataAccountID: account.ID.String(),
		},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}

	if _, err := s.accounts.Update(ctx, account.ID, func(a *usage.Account) error {
		a.ProviderCustomerID = cust.ID
		return nil
	}); err != nil {
		return "", fmt.Errorf("store stripe customer ID: %w", err)
	}

	return cust.ID, nil
}
