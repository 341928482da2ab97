package domain

import "time"

// ReviewType is the relationship of the reviewer to the reviewee.
type ReviewType string

// Allowed review types for a 360 review cycle.
const (
	ReviewTypePeer         ReviewType = "peer"
	ReviewTypeManager      ReviewType = "manager"
	ReviewTypeDirectReport ReviewType = "direct-report"
)

// IsValid reports whether the review type is one of the allowed variants.
func (rt ReviewType) IsValid() bool {
	switch rt {
	case ReviewTypePeer, ReviewTypeManager, ReviewTypeDirectReport:
		return true
	}
	return false
}

// InviteTTL is how long a review invite stays valid after issuance.
const InviteTTL = 14 * 24 * time.Hour

// ReviewInvite represents a single-use invitation to submit anonymous
// feedback about one reviewee. The token is the only credential; invites are
// never deleted so completed and expired tokens remain auditable.
type ReviewInvite struct {
	Token          string     `json:"token"`                  // Unique, URL-safe, unguessable
	RevieweeID     string     `json:"reviewee_id"`            // Subject of the review
	RevieweeName   string     `json:"reviewee_name"`          // Display name for the review form
	ReviewType     ReviewType `json:"review_type"`            // peer, manager, or direct-report
	RecipientEmail string     `json:"recipient_email"`        // Used only for delivery at issuance
	CreatedAt      time.Time  `json:"created_at"`             // When the invite was issued
	ExpiresAt      time.Time  `json:"expires_at"`             // CreatedAt + InviteTTL
	CompletedAt    *time.Time `json:"completed_at,omitempty"` // When feedback was submitted
}

// IsCompleted returns true if feedback has been submitted for this invite.
func (i *ReviewInvite) IsCompleted() bool {
	return i.CompletedAt != nil
}

// IsExpired returns true if the invite has passed its expiration time.
func (i *ReviewInvite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsValid returns true if the invite can still accept a submission.
func (i *ReviewInvite) IsValid() bool {
	return !i.IsCompleted() && !i.IsExpired()
}

// Status returns a human-readable status string for the invite.
func (i *ReviewInvite) Status() string {
	if i.IsCompleted() {
		return "completed"
	}
	if i.IsExpired() {
		return "expired"
	}
	return "pending"
}

// AnonymizedResponse is one submitted piece of feedback, grouped under the
// reviewee it concerns. The struct deliberately has no token, email, or any
// other reviewer-identifying field: once stored, a response cannot be traced
// back to the invite that produced it.
type AnonymizedResponse struct {
	ID          string             `json:"id"`                 // Stable ID for the stored record
	ReviewType  ReviewType         `json:"review_type"`        // Relationship carried over from the invite
	SubmittedAt time.Time          `json:"submitted_at"`       // When the feedback was submitted
	Scores      map[string]float64 `json:"scores"`             // Question key -> numeric score
	Comments    map[string]string  `json:"comments,omitempty"` // Question key -> free text
}
