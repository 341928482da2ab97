package notify

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Fachastorm/high-coherence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *ResendNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n := NewResendNotifier("test-key", "reviews@example.com", "https://reviews.example.com", 5*time.Second, nil)
	n.baseURL = srv.URL
	return n
}

func TestResendNotifier_SendInvite(t *testing.T) {
	var gotReq sendEmailRequest
	var gotAuth, gotIdemKey string

	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotIdemKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.UnmarshalRead(r.Body, &gotReq))
		w.WriteHeader(http.StatusOK)
	})

	err := n.SendInvite(context.Background(), "a@x.com", "Alex", "tok-123", domain.ReviewTypePeer)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.NotEmpty(t, gotIdemKey)
	assert.Equal(t, "reviews@example.com", gotReq.From)
	assert.Equal(t, []string{"a@x.com"}, gotReq.To)
	assert.Contains(t, gotReq.Subject, "Alex")
	assert.Contains(t, gotReq.HTML, "https://reviews.example.com/review/tok-123")
	assert.Contains(t, gotReq.HTML, "peer")
}

func TestResendNotifier_EscapesRevieweeName(t *testing.T) {
	var gotReq sendEmailRequest

	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.UnmarshalRead(r.Body, &gotReq))
		w.WriteHeader(http.StatusOK)
	})

	err := n.SendInvite(context.Background(), "a@x.com", `Alex <script>alert("x")</script>`, "tok-123", domain.ReviewTypePeer)
	require.NoError(t, err)

	// The name is free-form input and must not inject markup into the body.
	assert.NotContains(t, gotReq.HTML, "<script>")
	assert.Contains(t, gotReq.HTML, "&lt;script&gt;")
}

func TestResendNotifier_ProviderError(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	})

	err := n.SendInvite(context.Background(), "a@x.com", "Alex", "tok-123", domain.ReviewTypePeer)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "422"))
}

func TestResendNotifier_ContextCancellation(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := n.SendInvite(ctx, "a@x.com", "Alex", "tok-123", domain.ReviewTypePeer)
	require.Error(t, err)
}

func TestLogNotifier_AlwaysSucceeds(t *testing.T) {
	n := NewLogNotifier(nil)

	err := n.SendInvite(context.Background(), "a@x.com", "Alex", "tok-123", domain.ReviewTypeManager)
	assert.NoError(t, err)
}
