// Package httpapi exposes the billing core over HTTP: entitlement snapshots,
// guarded quota consumption, checkout and cancellation, and the Stripe
// webhook endpoint. Authentication happens upstream; handlers trust the
// X-Account-ID header the auth layer injects.
package httpapi
