package usage

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrUnknownCounter       = errors.New("unknown usage counter")
	ErrInvalidAmount        = errors.New("consume amount must be positive")

	// ErrStorageConflict signals concurrent-update contention. Callers retry
	// the whole consume operation a bounded number of times before giving up.
	ErrStorageConflict = errors.New("storage conflict, retry the operation")
)
