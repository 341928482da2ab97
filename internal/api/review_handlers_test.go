package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fachastorm/high-coherence/internal/notify"
	"github.com/Fachastorm/high-coherence/internal/ratelimit"
	"github.com/Fachastorm/high-coherence/internal/service"
	"github.com/Fachastorm/high-coherence/internal/store/memory"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// reviewTestServer wraps the API server for handler testing.
type reviewTestServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer creates a test server over in-memory stores.
func setupTestServer(t *testing.T) *reviewTestServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	tokens := memory.NewTokenStore()
	responses := memory.NewResponseStore()
	reviews := service.NewReviewService(tokens, responses, notify.NewLogNotifier(logger), logger, time.Second)

	s := NewServer(reviews, func(context.Context) error { return nil }, nil, logger)

	return &reviewTestServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

// issueInvite issues an invite through the API and returns the token.
func (ts *reviewTestServer) issueInvite(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/reviews/invites", map[string]any{
		"reviewee_id":     "e1",
		"reviewee_name":   "Alex",
		"review_type":     "peer",
		"recipient_email": "a@x.com",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "Issue failed: %s", resp.Body.String())

	var envelope testEnvelope[InviteIssuedResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NotEmpty(t, envelope.Data.Token)

	return envelope.Data.Token
}

func TestCreateInviteEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/reviews/invites", map[string]any{
		"reviewee_id":     "e1",
		"reviewee_name":   "Alex",
		"review_type":     "peer",
		"recipient_email": "a@x.com",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var envelope testEnvelope[InviteIssuedResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.Token)
	assert.True(t, envelope.Data.ExpiresAt.After(time.Now()))
}

func TestCreateInviteEndpointValidation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/reviews/invites", map[string]any{
		"reviewee_id":   "e1",
		"reviewee_name": "Alex",
		"review_type":   "peer",
		// recipient_email missing
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
}

func TestGetReviewContextEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.issueInvite(t)

	resp := ts.api.Get("/api/v1/reviews/" + token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ReviewContextResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "Alex", envelope.Data.RevieweeName)
	assert.Equal(t, "peer", envelope.Data.ReviewType)
	assert.False(t, envelope.Data.Completed)

	// The form projection never includes the reviewee ID or recipient email.
	body := resp.Body.String()
	assert.NotContains(t, body, "recipient_email")
	assert.NotContains(t, body, "a@x.com")
	assert.NotContains(t, body, "reviewee_id")
}

func TestGetReviewContextUnknownToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/reviews/no-such-token")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestSubmitReviewEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.issueInvite(t)

	resp := ts.api.Post("/api/v1/reviews/"+token, map[string]any{
		"scores": map[string]float64{"integrity": 4},
	})
	require.Equal(t, http.StatusOK, resp.Code, "Submit failed: %s", resp.Body.String())

	// The token is consumed: validation and resubmission both report 410.
	resp = ts.api.Get("/api/v1/reviews/" + token)
	assert.Equal(t, http.StatusGone, resp.Code)

	resp = ts.api.Post("/api/v1/reviews/"+token, map[string]any{
		"scores": map[string]float64{"integrity": 5},
	})
	assert.Equal(t, http.StatusGone, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "ALREADY_COMPLETED", envelope.Code)
}

func TestSubmitReviewMissingScores(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.issueInvite(t)

	resp := ts.api.Post("/api/v1/reviews/"+token, map[string]any{
		"comments": map[string]string{"general": "fine"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// A rejected submission leaves the token usable.
	resp = ts.api.Get("/api/v1/reviews/" + token)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestListResponsesEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.issueInvite(t)

	resp := ts.api.Post("/api/v1/reviews/"+token, map[string]any{
		"scores":   map[string]float64{"integrity": 4},
		"comments": map[string]string{"integrity": "keeps promises"},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/reviews/responses/e1")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListResponsesResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Responses, 1)
	assert.Equal(t, "peer", envelope.Data.Responses[0].ReviewType)
	assert.InDelta(t, 4, envelope.Data.Responses[0].Scores["integrity"], 0.001)

	// Nothing in the aggregate view can identify the reviewer.
	body := resp.Body.String()
	assert.NotContains(t, body, token)
	assert.NotContains(t, body, "a@x.com")
	assert.NotContains(t, body, "recipient")
}

func TestListInvitesEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.issueInvite(t)

	resp := ts.api.Get("/api/v1/reviews/invites")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListInvitesResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Invites, 1)
	assert.Equal(t, token, envelope.Data.Invites[0].Token)
	assert.Equal(t, "pending", envelope.Data.Invites[0].Status)

	// The audit view omits the recipient email.
	assert.NotContains(t, resp.Body.String(), "a@x.com")
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.Equal(t, "healthy", envelope.Data.Components["store"].Status)
}

func TestHealthEndpointUnhealthyStore(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	tokens := memory.NewTokenStore()
	reviews := service.NewReviewService(tokens, memory.NewResponseStore(), notify.NewLogNotifier(logger), logger, time.Second)

	s := NewServer(reviews, func(context.Context) error { return context.DeadlineExceeded }, nil, logger)
	testAPI := humatest.Wrap(t, s.api)

	resp := testAPI.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "unhealthy", envelope.Data.Status)
}

func TestIsTokenPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/v1/reviews/abc123", true},
		{"/api/v1/reviews/invites", false},
		{"/api/v1/reviews/responses", false},
		{"/api/v1/reviews/responses/e1", false},
		{"/api/v1/reviews/", false},
		{"/api/v1/reviews/abc/extra", false},
		{"/health", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isTokenPath(tt.path), tt.path)
	}
}

func TestRateLimitOnTokenRoutes(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	tokens := memory.NewTokenStore()
	reviews := service.NewReviewService(tokens, memory.NewResponseStore(), notify.NewLogNotifier(logger), logger, time.Second)

	// 1 request per second, burst of 2.
	limiter := ratelimit.New(1, 2)
	s := NewServer(reviews, func(context.Context) error { return nil }, limiter, logger)

	get := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec.Code
	}

	// Token path is limited after the burst.
	assert.Equal(t, http.StatusNotFound, get("/api/v1/reviews/some-token"))
	assert.Equal(t, http.StatusNotFound, get("/api/v1/reviews/some-token"))
	assert.Equal(t, http.StatusTooManyRequests, get("/api/v1/reviews/some-token"))

	// Admin paths are not limited.
	assert.Equal(t, http.StatusOK, get("/api/v1/reviews/invites"))
}
