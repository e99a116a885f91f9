package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationStore keeps revoked token ids in process memory. It suits a
// single replica; with several replicas use the KeyDB store.
type RevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *RevocationStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !expiresAt.After(now) {
		return nil
	}

	s.revoked[tokenID] = expiresAt
	s.sweepLocked(now)

	return nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.revoked[tokenID]

	return ok && expiresAt.After(s.now()), nil
}

// Len counts entries, expired ones included until the next sweep.
func (s *RevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.revoked)
}

func (s *RevocationStore) sweepLocked(now time.Time) {
	for id, expiresAt := range s.revoked {
		if !expiresAt.After(now) {
			delete(s.revoked, id)
		}
	}
}
