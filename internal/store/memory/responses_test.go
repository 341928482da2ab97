package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Fachastorm/high-coherence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(id string) *domain.AnonymizedResponse {
	return &domain.AnonymizedResponse{
		ID:          id,
		ReviewType:  domain.ReviewTypePeer,
		SubmittedAt: time.Now(),
		Scores:      map[string]float64{"integrity": 4, "humility": 5},
		Comments:    map[string]string{"integrity": "consistently fair"},
	}
}

func TestResponseStore_AppendAndList(t *testing.T) {
	s := NewResponseStore()
	ctx := context.Background()

	require.NoError(t, s.AppendResponse(ctx, "e1", newResponse("resp-1")))
	require.NoError(t, s.AppendResponse(ctx, "e1", newResponse("resp-2")))
	require.NoError(t, s.AppendResponse(ctx, "e2", newResponse("resp-3")))

	got, err := s.ListResponses(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "resp-1", got[0].ID)
	assert.Equal(t, "resp-2", got[1].ID)
	assert.Equal(t, 4.0, got[0].Scores["integrity"])

	other, err := s.ListResponses(ctx, "e2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestResponseStore_ListUnknownReviewee(t *testing.T) {
	s := NewResponseStore()

	got, err := s.ListResponses(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestResponseStore_IdempotentRead(t *testing.T) {
	s := NewResponseStore()
	ctx := context.Background()

	require.NoError(t, s.AppendResponse(ctx, "e1", newResponse("resp-1")))

	first, err := s.ListResponses(ctx, "e1")
	require.NoError(t, err)
	second, err := s.ListResponses(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResponseStore_ReadsAreCopies(t *testing.T) {
	s := NewResponseStore()
	ctx := context.Background()

	require.NoError(t, s.AppendResponse(ctx, "e1", newResponse("resp-1")))

	got, err := s.ListResponses(ctx, "e1")
	require.NoError(t, err)
	got[0].Scores["integrity"] = 1
	got[0].Comments["integrity"] = "tampered"

	again, err := s.ListResponses(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, again[0].Scores["integrity"])
	assert.Equal(t, "consistently fair", again[0].Comments["integrity"])
}

func TestResponseStore_AppendedValueIsCopied(t *testing.T) {
	s := NewResponseStore()
	ctx := context.Background()

	resp := newResponse("resp-1")
	require.NoError(t, s.AppendResponse(ctx, "e1", resp))

	// Caller mutating its own struct after append must not alter history.
	resp.Scores["integrity"] = 1

	got, err := s.ListResponses(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got[0].Scores["integrity"])
}
