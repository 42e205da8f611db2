package forge

import (
	"errors"
	"fmt"
	"time"
)

// Common forge errors with structured information for handling

var (
	// ErrPackageNotFound indicates the package identifier does not exist in
	// the manifest repository.
	ErrPackageNotFound = errors.New("package not found in manifest repository")

	// ErrVersionNotFound indicates the package exists but the requested
	// version does not.
	ErrVersionNotFound = errors.New("package version not found in manifest repository")

	// ErrForbidden indicates the token lacks permission for the operation.
	ErrForbidden = errors.New("operation forbidden by the forge")

	// ErrNoToken indicates no token is configured for an operation that
	// needs one.
	ErrNoToken = errors.New("no forge token configured (run 'manifold token set')")

	// ErrBranchConflict indicates the submission branch could not be
	// synced with upstream.
	ErrBranchConflict = errors.New("submission branch conflicts with upstream")
)

// RateLimitError indicates the forge API rate limit was hit.
type RateLimitError struct {
	// RetryAfter is when the rate limit resets (if provided by the API)
	RetryAfter time.Time

	// Limit is the rate limit that was exceeded (requests per hour)
	Limit int

	// Remaining is how many requests are left (0 when this error occurs)
	Remaining int

	// Message is a human-readable explanation
	Message string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter.IsZero() {
		return fmt.Sprintf("forge rate limit exceeded (%d/%d): %s", e.Remaining, e.Limit, e.Message)
	}
	wait := time.Until(e.RetryAfter)
	if wait < 0 {
		wait = 0
	}
	return fmt.Sprintf("forge rate limit exceeded (%d/%d), retry after %v: %s",
		e.Remaining, e.Limit, wait.Round(time.Minute), e.Message)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}
