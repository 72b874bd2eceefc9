package ports

import "time"

// AttemptLimiter throttles sensitive actions per identity. The in-memory
// implementation lives in the ratelimit package; a Redis-backed adapter
// covers multi-instance deployments.
type AttemptLimiter interface {
	// CanAttempt reports whether the identity may act right now. Read-only.
	CanAttempt(identity string) bool

	// RecordAttempt counts one attempt and may start a block.
	RecordAttempt(identity string)

	// Remaining returns the attempts left in the current window, never negative.
	Remaining(identity string) int

	// RetryAfter returns how long until a blocked identity may retry, zero when unblocked.
	RetryAfter(identity string) time.Duration

	// Reset clears the identity's counters after a successful action.
	Reset(identity string)
}
