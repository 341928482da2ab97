// Package memory provides in-memory implementations of the store interfaces.
// Used as the default backend in development and throughout the test suite.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Fachastorm/high-coherence/internal/domain"
	"github.com/Fachastorm/high-coherence/internal/store"
)

// TokenStore is a mutex-guarded in-memory token registry.
// Safe for concurrent use; the completion transition is a check-and-set
// under the write lock so only one caller can claim an invite.
type TokenStore struct {
	mu      sync.RWMutex
	invites map[string]*domain.ReviewInvite
	order   []string // tokens in insertion order, for ListInvites
}

// NewTokenStore creates an empty in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		invites: make(map[string]*domain.ReviewInvite),
	}
}

// CreateInvite stores a new invite keyed by its token.
func (s *TokenStore) CreateInvite(_ context.Context, invite *domain.ReviewInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invites[invite.Token]; exists {
		return store.ErrTokenExists
	}

	cp := *invite
	s.invites[invite.Token] = &cp
	s.order = append(s.order, invite.Token)
	return nil
}

// GetInvite retrieves an invite by token.
func (s *TokenStore) GetInvite(_ context.Context, token string) (*domain.ReviewInvite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invite, ok := s.invites[token]
	if !ok {
		return nil, store.ErrTokenNotFound
	}

	// Return a copy so callers cannot mutate stored state.
	cp := *invite
	return &cp, nil
}

// CompleteInvite marks the invite completed. The check and the write happen
// under one lock, so exactly one of N concurrent callers gets claimed=true.
func (s *TokenStore) CompleteInvite(_ context.Context, token string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite, ok := s.invites[token]
	if !ok {
		return false, store.ErrTokenNotFound
	}
	if invite.CompletedAt != nil {
		return false, nil
	}

	invite.CompletedAt = &at
	return true, nil
}

// ReopenInvite clears the completion mark (compensation path).
func (s *TokenStore) ReopenInvite(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite, ok := s.invites[token]
	if !ok {
		return store.ErrTokenNotFound
	}

	invite.CompletedAt = nil
	return nil
}

// ListInvites returns all invites in creation order.
func (s *TokenStore) ListInvites(_ context.Context) ([]*domain.ReviewInvite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invites := make([]*domain.ReviewInvite, 0, len(s.order))
	for _, token := range s.order {
		cp := *s.invites[token]
		invites = append(invites, &cp)
	}
	return invites, nil
}

// copyScores is shared by the response store; kept here to avoid a util package.
func copyScores(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	maps.Copy(out, m)
	return out
}

func copyComments(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	maps.Copy(out, m)
	return out
}
