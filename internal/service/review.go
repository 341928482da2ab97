package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Fachastorm/high-coherence/internal/domain"
	domainerrors "github.com/Fachastorm/high-coherence/internal/errors"
	"github.com/Fachastorm/high-coherence/internal/id"
	"github.com/Fachastorm/high-coherence/internal/notify"
	"github.com/Fachastorm/high-coherence/internal/store"
)

const (
	// reviewTokenSize is the number of bytes for review tokens (16 bytes = 128 bits of entropy).
	reviewTokenSize = 16

	// deadLinkMessage is returned for unknown, expired, and completed tokens
	// alike so a response never reveals whether a guessed token ever existed.
	deadLinkMessage = "this review link is no longer valid"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// formatValidationError converts validator errors to user-friendly domain errors.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		// Return first validation error as a domain error
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				return domainerrors.Validationf("%s is required", field)
			case "email":
				return domainerrors.Validationf("%s must be a valid email address", field)
			case "max":
				return domainerrors.Validationf("%s exceeds maximum length of %s characters", field, e.Param())
			case "oneof":
				return domainerrors.Validationf("%s must be one of: %s", field, e.Param())
			default:
				return domainerrors.Validationf("%s is invalid", field)
			}
		}
	}
	return err
}

// ReviewService orchestrates the review invite lifecycle: issuing tokens,
// validating them for the review form, and turning submissions into
// anonymized responses. Reviewee identity always comes from the stored
// invite, never from caller input.
type ReviewService struct {
	tokens      store.TokenStore
	responses   store.ResponseStore
	notifier    notify.InviteNotifier
	logger      *slog.Logger
	sendTimeout time.Duration
}

// NewReviewService creates a new review service.
func NewReviewService(
	tokens store.TokenStore,
	responses store.ResponseStore,
	notifier notify.InviteNotifier,
	logger *slog.Logger,
	sendTimeout time.Duration,
) *ReviewService {
	return &ReviewService{
		tokens:      tokens,
		responses:   responses,
		notifier:    notifier,
		logger:      logger,
		sendTimeout: sendTimeout,
	}
}

// RequestInviteRequest contains the data needed to issue a review invite.
type RequestInviteRequest struct {
	RevieweeID     string `json:"reviewee_id" validate:"required,max=100"`
	RevieweeName   string `json:"reviewee_name" validate:"required,max=200"`
	ReviewType     string `json:"review_type" validate:"required,oneof=peer manager direct-report"`
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
}

// InviteIssuedResponse is returned after issuing an invite. The token is
// included for the issuing admin; it never appears in any other response.
type InviteIssuedResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReviewContextResponse is the projection returned for token validation.
// It carries only what the review form needs to render; the reviewee ID and
// recipient email stay server-side.
type ReviewContextResponse struct {
	RevieweeName string    `json:"reviewee_name"`
	ReviewType   string    `json:"review_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	Completed    bool      `json:"completed"`
}

// SubmitReviewRequest contains a reviewer's feedback for one invite.
type SubmitReviewRequest struct {
	Scores   map[string]float64 `json:"scores"`
	Comments map[string]string  `json:"comments,omitempty"`
}

// InviteSummary is one row of the invite audit listing. The recipient email
// is intentionally absent: after issuance it exists only for delivery.
type InviteSummary struct {
	Token        string    `json:"token"`
	RevieweeID   string    `json:"reviewee_id"`
	RevieweeName string    `json:"reviewee_name"`
	ReviewType   string    `json:"review_type"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Status       string    `json:"status"`
}

// RequestInvite issues a single-use review invite and delivers it to the
// recipient. On delivery failure the token stays registered so the invite
// can be re-sent without minting a new one.
func (s *ReviewService) RequestInvite(ctx context.Context, req RequestInviteRequest) (*InviteIssuedResponse, error) {
	// Validate request
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	now := time.Now()
	invite := &domain.ReviewInvite{
		RevieweeID:     req.RevieweeID,
		RevieweeName:   req.RevieweeName,
		ReviewType:     domain.ReviewType(req.ReviewType),
		RecipientEmail: req.RecipientEmail,
		CreatedAt:      now,
		ExpiresAt:      now.Add(domain.InviteTTL),
	}

	// A collision is all but impossible with 128-bit tokens; regenerate once
	// before giving up.
	for attempt := 0; ; attempt++ {
		token, err := generateReviewToken()
		if err != nil {
			return nil, fmt.Errorf("generate review token: %w", err)
		}
		invite.Token = token

		err = s.tokens.CreateInvite(ctx, invite)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrTokenExists) {
			if attempt == 0 {
				continue
			}
			return nil, domainerrors.Conflict("token collision, please try again")
		}
		return nil, fmt.Errorf("create invite: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.notifier.SendInvite(sendCtx, req.RecipientEmail, req.RevieweeName, invite.Token, invite.ReviewType); err != nil {
		// The token stays registered; the admin can retry delivery later.
		s.logger.Warn("Invite delivery failed",
			"reviewee_id", req.RevieweeID,
			"review_type", req.ReviewType,
			"error", err,
		)
		return nil, domainerrors.DeliveryFailed("failed to deliver invite email").WithCause(err)
	}

	s.logger.Info("Review invite issued",
		"reviewee_id", req.RevieweeID,
		"review_type", req.ReviewType,
		"expires_at", invite.ExpiresAt,
	)

	return &InviteIssuedResponse{
		Token:     invite.Token,
		ExpiresAt: invite.ExpiresAt,
	}, nil
}

// Validate checks a token and returns the review form context. Unknown,
// expired, and completed tokens all fail with the same user-facing message.
func (s *ReviewService) Validate(ctx context.Context, token string) (*ReviewContextResponse, error) {
	if token == "" {
		return nil, domainerrors.Validation("token is required")
	}

	invite, err := s.lookupUsableInvite(ctx, token)
	if err != nil {
		return nil, err
	}

	return &ReviewContextResponse{
		RevieweeName: invite.RevieweeName,
		ReviewType:   string(invite.ReviewType),
		ExpiresAt:    invite.ExpiresAt,
		Completed:    false,
	}, nil
}

// Submit records anonymous feedback for the invite's reviewee and consumes
// the token. The invite is completed first (atomic check-and-set, so only
// one submission can ever win), then the response is appended; if the append
// fails the completion is rolled back so the token can be retried.
func (s *ReviewService) Submit(ctx context.Context, token string, req SubmitReviewRequest) error {
	if token == "" {
		return domainerrors.Validation("token is required")
	}
	if len(req.Scores) == 0 {
		return domainerrors.Validation("scores are required")
	}

	invite, err := s.lookupUsableInvite(ctx, token)
	if err != nil {
		return err
	}

	now := time.Now()
	claimed, err := s.tokens.CompleteInvite(ctx, token, now)
	if err != nil {
		return fmt.Errorf("complete invite: %w", err)
	}
	if !claimed {
		// Lost the race to a concurrent submission.
		return domainerrors.AlreadyCompleted(deadLinkMessage)
	}

	responseID, err := id.Generate("resp")
	if err != nil {
		return s.rollbackCompletion(ctx, token, fmt.Errorf("generate response ID: %w", err))
	}

	// Built only from the invite's relationship and the submitted content.
	// The token and recipient email never reach the response store.
	resp := &domain.AnonymizedResponse{
		ID:          responseID,
		ReviewType:  invite.ReviewType,
		SubmittedAt: now,
		Scores:      req.Scores,
		Comments:    req.Comments,
	}

	if err := s.responses.AppendResponse(ctx, invite.RevieweeID, resp); err != nil {
		return s.rollbackCompletion(ctx, token, fmt.Errorf("append response: %w", err))
	}

	s.logger.Info("Review submitted",
		"reviewee_id", invite.RevieweeID,
		"review_type", invite.ReviewType,
	)

	return nil
}

// ListResponses returns the anonymized responses recorded for a reviewee.
func (s *ReviewService) ListResponses(ctx context.Context, revieweeID string) ([]*domain.AnonymizedResponse, error) {
	if revieweeID == "" {
		return nil, domainerrors.Validation("reviewee_id is required")
	}
	responses, err := s.responses.ListResponses(ctx, revieweeID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responses, nil
}

// ListInvites returns the audit view of all issued invites.
func (s *ReviewService) ListInvites(ctx context.Context) ([]InviteSummary, error) {
	invites, err := s.tokens.ListInvites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}

	summaries := make([]InviteSummary, 0, len(invites))
	for _, invite := range invites {
		summaries = append(summaries, InviteSummary{
			Token:        invite.Token,
			RevieweeID:   invite.RevieweeID,
			RevieweeName: invite.RevieweeName,
			ReviewType:   string(invite.ReviewType),
			CreatedAt:    invite.CreatedAt,
			ExpiresAt:    invite.ExpiresAt,
			Status:       invite.Status(),
		})
	}
	return summaries, nil
}

// lookupUsableInvite fetches an invite and rejects it unless it can still
// accept a submission. Expiry is checked before completion: once a token is
// past its deadline it reports Expired no matter what happened to it before.
func (s *ReviewService) lookupUsableInvite(ctx context.Context, token string) (*domain.ReviewInvite, error) {
	invite, err := s.tokens.GetInvite(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return nil, domainerrors.NotFound(deadLinkMessage)
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}

	if invite.IsExpired() {
		return nil, domainerrors.Expired(deadLinkMessage)
	}
	if invite.IsCompleted() {
		return nil, domainerrors.AlreadyCompleted(deadLinkMessage)
	}
	return invite, nil
}

// rollbackCompletion reopens a token after a failed append so the reviewer
// can retry. If the rollback itself fails the token is stuck completed with
// no stored response, which is logged loudly; it can never replay.
func (s *ReviewService) rollbackCompletion(ctx context.Context, token string, cause error) error {
	if err := s.tokens.ReopenInvite(ctx, token); err != nil {
		s.logger.Error("Failed to reopen invite after append failure",
			"error", err,
			"cause", cause,
		)
	}
	return domainerrors.Internal("failed to record review").WithCause(cause)
}

// generateReviewToken generates a cryptographically random, URL-safe token.
func generateReviewToken() (string, error) {
	b := make([]byte, reviewTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
