package application

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// StateTTL is how long an issued authorization state stays redeemable.
const StateTTL = 10 * time.Minute

type pendingState struct {
	ownerID string
	expires time.Time
}

// StateStore issues single-use OAuth state values bound to the owner that
// started the handshake. States live in memory only; a restart invalidates
// handshakes in progress.
type StateStore struct {
	mu     sync.Mutex
	states map[string]pendingState
	now    func() time.Time
}

// NewStateStore creates an empty StateStore.
func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[string]pendingState),
		now:    time.Now,
	}
}

// Issue returns a fresh random state for ownerID and sweeps expired entries.
func (s *StateStore) Issue(ownerID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, p := range s.states {
		if !now.Before(p.expires) {
			delete(s.states, k)
		}
	}
	s.states[state] = pendingState{ownerID: ownerID, expires: now.Add(StateTTL)}

	return state, nil
}

// Consume redeems state for ownerID. A state is removed on first use whether
// or not it matches, so a leaked value cannot be replayed.
func (s *StateStore) Consume(ownerID, state string) error {
	if state == "" {
		return ErrInvalidState
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.states[state]
	if !ok {
		return ErrInvalidState
	}
	delete(s.states, state)

	if !s.now().Before(p.expires) || p.ownerID != ownerID {
		return ErrInvalidState
	}
	return nil
}
