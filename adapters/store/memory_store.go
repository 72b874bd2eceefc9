package store

import (
	"context"
	"sync"
	"time"

	"github.com/gnoparus/pbtodo/ports"
)

// MemoryStore is an in-memory implementation of the TokenStore interface.
// Suitable for single-instance deployments and tests; invalidations are
// lost on restart, which shortens sessions but never lengthens them.
type MemoryStore struct {
	invalidated map[string]time.Time
	mu          sync.RWMutex
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invalidated: make(map[string]time.Time),
		now:         time.Now,
	}
}

var _ ports.TokenStore = (*MemoryStore)(nil)

// InvalidateToken marks a token ID as invalidated for the given duration
func (s *MemoryStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiryTime := s.now().Add(expiry)

	// Never shorten an existing invalidation
	if existing, ok := s.invalidated[tokenID]; ok && existing.After(expiryTime) {
		return nil
	}
	s.invalidated[tokenID] = expiryTime

	return nil
}

// IsTokenInvalidated checks whether a token ID is currently invalidated
func (s *MemoryStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiryTime, ok := s.invalidated[tokenID]
	if !ok {
		return false, nil
	}

	return s.now().Before(expiryTime), nil
}

// Purge drops invalidation records whose expiry has passed. The service
// calls this periodically; expired records are also ignored by reads, so
// purging only bounds memory.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, expiry := range s.invalidated {
		if !now.Before(expiry) {
			delete(s.invalidated, id)
			removed++
		}
	}
	return removed
}

// Clear removes all records. Useful to reset state between tests.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidated = make(map[string]time.Time)
}
