package memory

import (
	"context"
	"sync"

	"github.com/Fachastorm/high-coherence/internal/domain"
)

// ResponseStore is a mutex-guarded in-memory response aggregator.
// Append-only: the interface exposes no mutation of stored responses, and
// reads return copies so callers cannot alter history.
type ResponseStore struct {
	mu        sync.RWMutex
	responses map[string][]*domain.AnonymizedResponse
}

// NewResponseStore creates an empty in-memory response store.
func NewResponseStore() *ResponseStore {
	return &ResponseStore{
		responses: make(map[string][]*domain.AnonymizedResponse),
	}
}

// AppendResponse records a response under the reviewee's bucket.
func (s *ResponseStore) AppendResponse(_ context.Context, revieweeID string, resp *domain.AnonymizedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses[revieweeID] = append(s.responses[revieweeID], copyResponse(resp))
	return nil
}

// ListResponses returns the reviewee's responses in submission order.
func (s *ResponseStore) ListResponses(_ context.Context, revieweeID string) ([]*domain.AnonymizedResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.responses[revieweeID]
	out := make([]*domain.AnonymizedResponse, 0, len(stored))
	for _, resp := range stored {
		out = append(out, copyResponse(resp))
	}
	return out, nil
}

func copyResponse(resp *domain.AnonymizedResponse) *domain.AnonymizedResponse {
	cp := *resp
	cp.Scores = copyScores(resp.Scores)
	cp.Comments = copyComments(resp.Comments)
	return &cp
}
