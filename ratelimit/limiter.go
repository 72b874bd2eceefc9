// Package ratelimit implements a per-identity attempt limiter with a
// sliding window and an escalating block once the window budget is spent.
// It guards login and registration endpoints against brute forcing.
package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// Config holds limiter tuning parameters
type Config struct {
	MaxAttempts   int           // Attempts allowed per window, must be > 0
	Window        time.Duration // Length of the counting window, must be > 0
	BlockDuration time.Duration // How long an identity stays blocked after exceeding MaxAttempts
}

var (
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
	ErrInvalidWindow      = errors.New("window must be positive")
)

// state tracks one identity. The window is re-anchored whenever it
// fully elapses rather than trimmed attempt by attempt.
type state struct {
	count        int
	windowStart  time.Time
	blockedUntil time.Time
}

// Limiter tracks attempts per identity in memory. State lives for the
// process lifetime only; restarting the process clears all counters.
type Limiter struct {
	mu      sync.Mutex
	config  Config
	entries map[string]*state
	now     func() time.Time
}

// New creates a Limiter. Malformed configuration is rejected here so
// callers never see errors during normal operation.
func New(cfg Config) (*Limiter, error) {
	if cfg.MaxAttempts <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if cfg.Window <= 0 {
		return nil, ErrInvalidWindow
	}

	return &Limiter{
		config:  cfg,
		entries: make(map[string]*state),
		now:     time.Now,
	}, nil
}

// CanAttempt reports whether the identity may attempt the guarded action
// right now. It never mutates state.
func (l *Limiter) CanAttempt(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identity]
	if !ok {
		return true
	}

	return !l.now().Before(e.blockedUntil)
}

// RecordAttempt counts one attempt for the identity. When the count
// reaches MaxAttempts within the current window, the identity is
// blocked for BlockDuration from the triggering attempt.
func (l *Limiter) RecordAttempt(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[identity]
	if !ok {
		e = &state{windowStart: now}
		l.entries[identity] = e
	}

	switch {
	case !e.blockedUntil.IsZero() && !now.Before(e.blockedUntil):
		// An expired block returns the identity to a fresh window
		*e = state{windowStart: now}
	case e.blockedUntil.IsZero() && now.Sub(e.windowStart) >= l.config.Window:
		*e = state{windowStart: now}
	}

	e.count++
	if e.count >= l.config.MaxAttempts {
		e.blockedUntil = now.Add(l.config.BlockDuration)
	}
}

// Remaining returns how many attempts the identity has left in the
// current window. Never negative, and exactly MaxAttempts when nothing
// has been recorded or the window has elapsed.
func (l *Limiter) Remaining(identity string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identity]
	if !ok {
		return l.config.MaxAttempts
	}
	if e.blockedUntil.IsZero() && l.now().Sub(e.windowStart) >= l.config.Window {
		return l.config.MaxAttempts
	}

	remaining := l.config.MaxAttempts - e.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RetryAfter returns how long until the identity may attempt again,
// or zero when it is not blocked.
func (l *Limiter) RetryAfter(identity string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identity]
	if !ok {
		return 0
	}

	wait := e.blockedUntil.Sub(l.now())
	if wait < 0 {
		return 0
	}
	return wait
}

// Reset clears all state for the identity. Called after a successful
// login or registration so earlier failures stop counting.
func (l *Limiter) Reset(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, identity)
}
