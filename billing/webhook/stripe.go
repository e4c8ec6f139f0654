package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	stripewebhook "github.com/stripe/stripe-go/v79/webhook"
)

// StripeConfig holds the webhook-side Stripe settings.
type StripeConfig struct {
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
}

// MetadataAccountID is the subscription metadata key carrying the FablePress
// account ID. Checkout sets it; every webhook reads it back.
const MetadataAccountID = "account_id"

// StripeParser verifies Stripe webhook signatures and normalizes events.
type StripeParser struct {
	secret string
}

// NewStripeParser returns a parser bound to the endpoint's signing secret.
func NewStripeParser(cfg StripeConfig) (*StripeParser, error) {
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe webhook secret is required")
	}
	return &StripeParser{secret: cfg.WebhookSecret}, nil
}

// Parse verifies the Stripe-Signature header against the raw payload and
// maps the event into the normalized vocabulary. Signature or schema
// failures return ErrMalformedEvent; the HTTP layer answers non-2xx and the
// provider retries.
//
// Mapping:
//   - invoice.paid with billing_reason=subscription_create -> checkout_completed
//   - invoice.paid otherwise                               -> payment_succeeded
//   - invoice.payment_failed                               -> payment_failed
//   - customer.subscription.deleted                        -> subscription_canceled
//
// checkout.session.completed is deliberately not mapped: the first invoice
// of the subscription carries the same activation with the real period
// window, and mapping both would activate twice under distinct event IDs.
func (p *StripeParser) Parse(payload []byte, signature string) (Event, error) {
	stripeEvent, err := stripewebhook.ConstructEvent(payload, signature, p.secret)
	if err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}

	event := Event{
		ID:            stripeEvent.ID,
		ProviderEvent: string(stripeEvent.Type),
	}

	switch stripeEvent.Type {
	case "invoice.paid", "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(stripeEvent.Data.Raw, &invoice); err != nil {
			return Event{}, errors.Join(ErrMalformedEvent, fmt.Errorf("parse invoice: %w", err))
		}
		if invoice.BillingReason == stripe.InvoiceBillingReasonSubscriptionCreate {
			event.Type = EventCheckoutCompleted
		} else {
			event.Type = EventPaymentSucceeded
		}
		if err := fillFromInvoice(&event, &invoice, true); err != nil {
			return Event{}, errors.Join(ErrMalformedEvent, err)
		}

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(stripeEvent.Data.Raw, &invoice); err != nil {
			return Event{}, errors.Join(ErrMalformedEvent, fmt.Errorf("parse invoice: %w", err))
		}
		event.Type = EventPaymentFailed
		if err := fillFromInvoice(&event, &invoice, false); err != nil {
			return Event{}, errors.Join(ErrMalformedEvent, err)
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(stripeEvent.Data.Raw, &sub); err != nil {
			return Event{}, errors.Join(ErrMalformedEvent, fmt.Errorf("parse subscription: %w", err))
		}
		event.Type = EventSubscriptionCanceled
		event.SubscriptionID = sub.ID
		if sub.Customer != nil {
			event.CustomerID = sub.Customer.ID
		}
		accountID, err := accountIDFromMetadata(sub.Metadata)
		if err != nil {
			return Event{}, errors.Join(ErrMalformedEvent, err)
		}
		event.AccountID = accountID

	default:
		// Left unmapped; the ingestion service acknowledges and ignores it.
	}

	return event, nil
}

func fillFromInvoice(event *Event, invoice *stripe.Invoice, requirePeriod bool) error {
	if invoice.Customer != nil {
		event.CustomerID = invoice.Customer.ID
	}
	if invoice.Subscription != nil {
		event.SubscriptionID = invoice.Subscription.ID
	}

	var metadata map[string]string
	if invoice.SubscriptionDetails != nil {
		metadata = invoice.SubscriptionDetails.Metadata
	}
	accountID, err := accountIDFromMetadata(metadata)
	if err != nil {
		return err
	}
	event.AccountID = accountID

	// The subscription period rides on the invoice's first line item.
	if invoice.Lines != nil && len(invoice.Lines.Data) > 0 {
		line := invoice.Lines.Data[0]
		if line.Period != nil {
			event.PeriodStart = time.Unix(line.Period.Start, 0).UTC()
			event.PeriodEnd = time.Unix(line.Period.End, 0).UTC()
		}
		if line.Price != nil {
			event.PlanID = line.Price.ID
		}
	}
	if requirePeriod && (event.PeriodStart.IsZero() || event.PeriodEnd.IsZero()) {
		return errors.New("invoice carries no billing period")
	}

	if invoice.StatusTransitions != nil && invoice.StatusTransitions.PaidAt > 0 {
		event.PaidAt = time.Unix(invoice.StatusTransitions.PaidAt, 0).UTC()
	} else {
		event.PaidAt = time.Unix(invoice.Created, 0).UTC()
	}
	return nil
}

func accountIDFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	raw, ok := metadata[MetadataAccountID]
	if !ok || raw == "" {
		return uuid.Nil, errors.New("subscription metadata carries no account ID")
	}
	accountID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid account ID in metadata: %w", err)
	}
	return accountID, nil
}
