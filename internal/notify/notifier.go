// Package notify delivers review invite emails. Delivery is a capability
// behind the InviteNotifier interface so the workflow service never depends
// on a concrete provider.
package notify

import (
	"context"
	"log/slog"

	"github.com/Fachastorm/high-coherence/internal/domain"
)

// InviteNotifier sends a review invite to a recipient. Implementations must
// respect ctx cancellation: a slow provider must not stall issuance.
type InviteNotifier interface {
	SendInvite(ctx context.Context, recipientEmail, revieweeName, token string, reviewType domain.ReviewType) error
}

// LogNotifier logs invites instead of delivering them. Selected when no
// provider API key is configured (local development). The invite link only
// works for tokens that are actually registered; there is no
// accept-any-token fallback.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that writes invites to the log.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendInvite implements InviteNotifier.
func (n *LogNotifier) SendInvite(_ context.Context, recipientEmail, revieweeName, token string, reviewType domain.ReviewType) error {
	if n.logger != nil {
		n.logger.Info("Review invite (delivery disabled, logging only)",
			"recipient", recipientEmail,
			"reviewee", revieweeName,
			"review_type", reviewType,
			"token", token,
		)
	}
	return nil
}
