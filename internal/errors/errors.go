package errors

import "errors"

// Common error types for the directory and message store repos. Coordinator
// and gate level failures carry their own sentinel errors in their packages.
var (
	// Directory errors
	ErrUserNotFound   = errors.New("user not found")
	ErrTenantNotFound = errors.New("tenant not found")

	// General errors
	ErrNotFound = errors.New("not found")
)
