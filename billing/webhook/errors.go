package webhook

import "errors"

var (
	// ErrMalformedEvent marks an event that failed schema or signature
	// validation. No state is mutated; the HTTP layer answers non-2xx so the
	// provider retries.
	ErrMalformedEvent = errors.New("malformed webhook event")

	ErrMissingEventID   = errors.New("webhook event has no ID")
	ErrMissingAccountID = errors.New("webhook event has no account ID")
)
