package webhook

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the normalized billing event vocabulary. Provider adapters
// map their own event names onto these.
type EventType string

const (
	EventCheckoutCompleted    EventType = "checkout_completed"
	EventPaymentSucceeded     EventType = "payment_succeeded"
	EventPaymentFailed        EventType = "payment_failed"
	EventSubscriptionCanceled EventType = "subscription_canceled"
)

// Event is a normalized, signature-verified payment-provider event.
// Verification happens in the provider adapter before an Event exists; the
// ingestion service trusts only verified events.
type Event struct {
	// ID is the provider's unique event ID, the idempotency key.
	ID   string
	Type EventType

	AccountID      uuid.UUID
	CustomerID     string // provider's customer ID
	SubscriptionID string // provider's subscription ID
	PlanID         string // provider's price/plan ID

	// Provider-reported billing window, set on checkout and payment events.
	PeriodStart time.Time
	PeriodEnd   time.Time
	PaidAt      time.Time

	// ProviderEvent is the original provider event name, kept for logging.
	ProviderEvent string
}

// Result reports how an event was handled.
type Result string

const (
	// Applied means the event changed account state.
	Applied Result = "applied"
	// Duplicate means the event ID was already processed; nothing changed.
	Duplicate Result = "duplicate"
	// Ignored means the event was acknowledged without a state change:
	// unrecognized type, or a transition the account's state does not allow.
	Ignored Result = "ignored"
)
