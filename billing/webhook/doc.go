// Package webhook ingests asynchronous payment-provider events and applies
// them to the billing-period state machine.
//
// Providers deliver at least once, so ApplyEvent is idempotent: every event
// carries a unique provider ID and the first writer wins a slot in the
// processed-event store before any state changes. A duplicate short-circuits
// with zero mutation. If applying an event fails with a system error the slot
// is released again so the provider's retry is not swallowed.
//
// Unrecognized event types are acknowledged and ignored, never rejected:
// providers retry on non-2xx responses and there is nothing to retry.
//
// The Stripe adapter verifies the webhook signature and normalizes Stripe's
// invoice and subscription events into the small vocabulary the state
// machine understands.
package webhook
