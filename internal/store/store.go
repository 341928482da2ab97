// Package store defines the persistence interfaces for the High Coherence
// review service. Implementations live in subpackages (memory, sqlite) and
// are interchangeable behind these interfaces.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Fachastorm/high-coherence/internal/domain"
)

var (
	// ErrTokenNotFound is returned when a review invite token cannot be found.
	ErrTokenNotFound = errors.New("review invite not found")
	// ErrTokenExists is returned when an invite token already exists.
	ErrTokenExists = errors.New("review invite token already exists")
)

// TokenStore owns the mapping from invite token to invite metadata and its
// completion state. Invites are never deleted; completed and expired invites
// remain readable for audit.
type TokenStore interface {
	// CreateInvite stores a new invite keyed by its token.
	// Returns ErrTokenExists if the token is already registered.
	CreateInvite(ctx context.Context, invite *domain.ReviewInvite) error

	// GetInvite retrieves an invite by token.
	// Returns ErrTokenNotFound if the token is unknown.
	GetInvite(ctx context.Context, token string) (*domain.ReviewInvite, error)

	// CompleteInvite atomically marks the invite completed at the given time.
	// Returns (true, nil) iff this call performed the false->true transition;
	// (false, nil) if the invite was already completed (idempotent, no error).
	// Returns ErrTokenNotFound if the token is unknown.
	CompleteInvite(ctx context.Context, token string, at time.Time) (bool, error)

	// ReopenInvite clears the completion mark. It exists solely as the
	// compensation step when appending the anonymized response fails after
	// the invite has been claimed.
	ReopenInvite(ctx context.Context, token string) error

	// ListInvites returns all invites ordered by creation time (audit view).
	ListInvites(ctx context.Context) ([]*domain.ReviewInvite, error)
}

// ResponseStore owns the append-only mapping from reviewee to anonymized
// submissions. There is deliberately no update or delete operation:
// anonymized feedback must not be retroactively alterable by anyone.
type ResponseStore interface {
	// AppendResponse records a response under the reviewee's bucket,
	// creating the bucket on first write.
	AppendResponse(ctx context.Context, revieweeID string, resp *domain.AnonymizedResponse) error

	// ListResponses returns the reviewee's responses in submission order.
	// A reviewee with no responses yields an empty slice, not an error.
	ListResponses(ctx context.Context, revieweeID string) ([]*domain.AnonymizedResponse, error)
}
