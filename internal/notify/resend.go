package notify

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Fachastorm/high-coherence/internal/domain"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendNotifier delivers review invites through the Resend transactional
// email API.
type ResendNotifier struct {
	apiKey    string
	from      string
	publicURL string // Base URL for review links embedded in the email
	baseURL   string
	client    *http.Client
	logger    *slog.Logger
}

// NewResendNotifier creates a Resend-backed notifier.
// timeout bounds each delivery request; callers may additionally cancel via ctx.
func NewResendNotifier(apiKey, from, publicURL string, timeout time.Duration, logger *slog.Logger) *ResendNotifier {
	return &ResendNotifier{
		apiKey:    apiKey,
		from:      from,
		publicURL: publicURL,
		baseURL:   defaultResendBaseURL,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// sendEmailRequest is the Resend /emails payload.
type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendInvite implements InviteNotifier.
func (n *ResendNotifier) SendInvite(ctx context.Context, recipientEmail, revieweeName, token string, reviewType domain.ReviewType) error {
	payload := sendEmailRequest{
		From:    n.from,
		To:      []string{recipientEmail},
		Subject: fmt.Sprintf("You've been asked to review %s", revieweeName),
		HTML:    inviteHTML(revieweeName, n.publicURL+"/review/"+token, reviewType),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")
	// Resend deduplicates retried deliveries on this key.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if n.logger != nil {
			n.logger.Error("Resend rejected invite email",
				"status", resp.StatusCode,
				"recipient", recipientEmail,
			)
		}
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, detail)
	}

	if n.logger != nil {
		n.logger.Info("Review invite email sent",
			"recipient", recipientEmail,
			"review_type", reviewType,
		)
	}
	return nil
}

// inviteHTML renders the email body. The reviewee's name appears in the
// email; the token appears only inside the review link. The name is
// free-form admin input and must be escaped before it reaches the markup.
func inviteHTML(revieweeName, link string, reviewType domain.ReviewType) string {
	return fmt.Sprintf(`<p>You have been invited to provide anonymous %s feedback for <strong>%s</strong>.</p>
<p><a href=%q>Open the review form</a></p>
<p>The link is valid for 14 days and can be used once. Your identity is never stored with your answers.</p>`,
		reviewType, html.EscapeString(revieweeName), link)
}
