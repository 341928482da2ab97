package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Fachastorm/high-coherence/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createReviewInvite",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/invites",
		Summary:     "Issue review invite",
		Description: "Issues a single-use review link and emails it to the recipient",
		Tags:        []string{"Reviews"},
	}, s.handleCreateInvite)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReviewInvites",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/invites",
		Summary:     "List review invites",
		Description: "Returns all issued invites with their current status",
		Tags:        []string{"Reviews"},
	}, s.handleListInvites)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReviewContext",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/{token}",
		Summary:     "Validate review token",
		Description: "Returns the review form context for a valid token",
		Tags:        []string{"Reviews"},
	}, s.handleGetReviewContext)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{token}",
		Summary:     "Submit review",
		Description: "Records anonymous feedback and consumes the token",
		Tags:        []string{"Reviews"},
	}, s.handleSubmitReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRevieweeResponses",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/responses/{revieweeId}",
		Summary:     "List reviewee responses",
		Description: "Returns the anonymized responses collected for a reviewee",
		Tags:        []string{"Reviews"},
	}, s.handleListResponses)
}

// === DTOs ===

// CreateInviteRequest is the request body for issuing an invite.
type CreateInviteRequest struct {
	RevieweeID     string `json:"reviewee_id" validate:"required" doc:"Employee the review is about"`
	RevieweeName   string `json:"reviewee_name" validate:"required" doc:"Display name shown on the review form"`
	ReviewType     string `json:"review_type" validate:"required" doc:"Relationship: peer, manager, or direct-report"`
	RecipientEmail string `json:"recipient_email" validate:"required" doc:"Reviewer email the link is sent to"`
}

// CreateInviteInput wraps the create invite request for Huma.
type CreateInviteInput struct {
	Body CreateInviteRequest
}

// InviteIssuedResponse contains the issued invite in API responses.
type InviteIssuedResponse struct {
	Token     string    `json:"token" doc:"Single-use review token"`
	ExpiresAt time.Time `json:"expires_at" doc:"When the token stops being valid"`
}

// InviteIssuedOutput wraps the issued invite response for Huma.
type InviteIssuedOutput struct {
	Status int
	Body   InviteIssuedResponse
}

// ReviewTokenInput contains the token path parameter.
type ReviewTokenInput struct {
	Token string `path:"token" doc:"Review token from the invite link"`
}

// ReviewContextResponse contains the review form context in API responses.
type ReviewContextResponse struct {
	RevieweeName string    `json:"reviewee_name" doc:"Who the feedback is about"`
	ReviewType   string    `json:"review_type" doc:"Relationship of reviewer to reviewee"`
	ExpiresAt    time.Time `json:"expires_at" doc:"When the token stops being valid"`
	Completed    bool      `json:"completed" doc:"Whether feedback was already submitted"`
}

// ReviewContextOutput wraps the review context response for Huma.
type ReviewContextOutput struct {
	Body ReviewContextResponse
}

// SubmitReviewRequest is the request body for submitting feedback.
type SubmitReviewRequest struct {
	Scores   map[string]float64 `json:"scores" doc:"Question key to numeric score"`
	Comments map[string]string  `json:"comments,omitempty" doc:"Question key to free text"`
}

// SubmitReviewInput wraps the submit request for Huma.
type SubmitReviewInput struct {
	Token string `path:"token" doc:"Review token from the invite link"`
	Body  SubmitReviewRequest
}

// SubmitReviewResponse confirms a recorded submission.
type SubmitReviewResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// SubmitReviewOutput wraps the submit response for Huma.
type SubmitReviewOutput struct {
	Body SubmitReviewResponse
}

// ListResponsesInput contains the reviewee path parameter.
type ListResponsesInput struct {
	RevieweeID string `path:"revieweeId" doc:"Reviewee ID"`
}

// AnonymizedResponseDTO is one anonymized response in API responses.
type AnonymizedResponseDTO struct {
	ID          string             `json:"id" doc:"Stored response ID"`
	ReviewType  string             `json:"review_type" doc:"Relationship of reviewer to reviewee"`
	SubmittedAt time.Time          `json:"submitted_at" doc:"Submission time"`
	Scores      map[string]float64 `json:"scores" doc:"Question key to numeric score"`
	Comments    map[string]string  `json:"comments,omitempty" doc:"Question key to free text"`
}

// ListResponsesResponse contains a reviewee's responses.
type ListResponsesResponse struct {
	RevieweeID string                  `json:"reviewee_id" doc:"Reviewee ID"`
	Responses  []AnonymizedResponseDTO `json:"responses" doc:"Anonymized responses in submission order"`
}

// ListResponsesOutput wraps the responses listing for Huma.
type ListResponsesOutput struct {
	Body ListResponsesResponse
}

// InviteSummaryDTO is one row of the invite audit listing.
type InviteSummaryDTO struct {
	Token        string    `json:"token" doc:"Review token"`
	RevieweeID   string    `json:"reviewee_id" doc:"Reviewee ID"`
	RevieweeName string    `json:"reviewee_name" doc:"Reviewee display name"`
	ReviewType   string    `json:"review_type" doc:"Relationship of reviewer to reviewee"`
	CreatedAt    time.Time `json:"created_at" doc:"Issuance time"`
	ExpiresAt    time.Time `json:"expires_at" doc:"Expiry time"`
	Status       string    `json:"status" doc:"pending, completed, or expired"`
}

// ListInvitesResponse contains the invite audit listing.
type ListInvitesResponse struct {
	Invites []InviteSummaryDTO `json:"invites" doc:"All issued invites in creation order"`
}

// ListInvitesOutput wraps the invite listing for Huma.
type ListInvitesOutput struct {
	Body ListInvitesResponse
}

// === Handlers ===

func (s *Server) handleCreateInvite(ctx context.Context, input *CreateInviteInput) (*InviteIssuedOutput, error) {
	issued, err := s.reviews.RequestInvite(ctx, service.RequestInviteRequest{
		RevieweeID:     input.Body.RevieweeID,
		RevieweeName:   input.Body.RevieweeName,
		ReviewType:     input.Body.ReviewType,
		RecipientEmail: input.Body.RecipientEmail,
	})
	if err != nil {
		return nil, err
	}

	return &InviteIssuedOutput{
		Status: http.StatusCreated,
		Body: InviteIssuedResponse{
			Token:     issued.Token,
			ExpiresAt: issued.ExpiresAt,
		},
	}, nil
}

func (s *Server) handleGetReviewContext(ctx context.Context, input *ReviewTokenInput) (*ReviewContextOutput, error) {
	rc, err := s.reviews.Validate(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	return &ReviewContextOutput{
		Body: ReviewContextResponse{
			RevieweeName: rc.RevieweeName,
			ReviewType:   rc.ReviewType,
			ExpiresAt:    rc.ExpiresAt,
			Completed:    rc.Completed,
		},
	}, nil
}

func (s *Server) handleSubmitReview(ctx context.Context, input *SubmitReviewInput) (*SubmitReviewOutput, error) {
	err := s.reviews.Submit(ctx, input.Token, service.SubmitReviewRequest{
		Scores:   input.Body.Scores,
		Comments: input.Body.Comments,
	})
	if err != nil {
		return nil, err
	}

	return &SubmitReviewOutput{
		Body: SubmitReviewResponse{Message: "feedback recorded"},
	}, nil
}

func (s *Server) handleListResponses(ctx context.Context, input *ListResponsesInput) (*ListResponsesOutput, error) {
	responses, err := s.reviews.ListResponses(ctx, input.RevieweeID)
	if err != nil {
		return nil, err
	}

	dtos := make([]AnonymizedResponseDTO, 0, len(responses))
	for _, r := range responses {
		dtos = append(dtos, AnonymizedResponseDTO{
			ID:          r.ID,
			ReviewType:  string(r.ReviewType),
			SubmittedAt: r.SubmittedAt,
			Scores:      r.Scores,
			Comments:    r.Comments,
		})
	}

	return &ListResponsesOutput{
		Body: ListResponsesResponse{
			RevieweeID: input.RevieweeID,
			Responses:  dtos,
		},
	}, nil
}

func (s *Server) handleListInvites(ctx context.Context, _ *struct{}) (*ListInvitesOutput, error) {
	summaries, err := s.reviews.ListInvites(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]InviteSummaryDTO, 0, len(summaries))
	for _, sum := range summaries {
		dtos = append(dtos, InviteSummaryDTO{
			Token:        sum.Token,
			RevieweeID:   sum.RevieweeID,
			RevieweeName: sum.RevieweeName,
			ReviewType:   sum.ReviewType,
			CreatedAt:    sum.CreatedAt,
			ExpiresAt:    sum.ExpiresAt,
			Status:       sum.Status,
		})
	}

	return &ListInvitesOutput{
		Body: ListInvitesResponse{Invites: dtos},
	}, nil
}
