package ports

import "context"

// LoginLimiter throttles repeated failed logins per account.
type LoginLimiter interface {
	// Allow returns domain.ErrTooManyAttempts once the failure budget for
	// the email is exhausted within the current window.
	Allow(ctx context.Context, email string) error
	// RecordFailure counts one failed attempt against the email.
	RecordFailure(ctx context.Context, email string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, email string) error
}
