package sqlite

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/Fachastorm/high-coherence/internal/domain"
)

// AppendResponse records a response under the reviewee's bucket.
// Scores and comments are stored as JSON objects.
func (s *Store) AppendResponse(ctx context.Context, revieweeID string, resp *domain.AnonymizedResponse) error {
	scores, err := json.Marshal(resp.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	comments := resp.Comments
	if comments == nil {
		comments = map[string]string{}
	}
	commentsJSON, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO review_responses (id, reviewee_id, review_type, submitted_at, scores, comments)
		VALUES (?, ?, ?, ?, ?, ?)`,
		resp.ID,
		revieweeID,
		string(resp.ReviewType),
		formatTime(resp.SubmittedAt),
		string(scores),
		string(commentsJSON),
	)
	return err
}

// ListResponses returns the reviewee's responses in submission order.
func (s *Store) ListResponses(ctx context.Context, revieweeID string) ([]*domain.AnonymizedResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, review_type, submitted_at, scores, comments
		FROM review_responses
		WHERE reviewee_id = ?
		ORDER BY submitted_at, id`, revieweeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make([]*domain.AnonymizedResponse, 0)
	for rows.Next() {
		var (
			resp         domain.AnonymizedResponse
			reviewType   string
			submittedAt  string
			scoresJSON   string
			commentsJSON string
		)
		if err := rows.Scan(&resp.ID, &reviewType, &submittedAt, &scoresJSON, &commentsJSON); err != nil {
			return nil, err
		}

		resp.ReviewType = domain.ReviewType(reviewType)
		resp.SubmittedAt, err = parseTime(submittedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(scoresJSON), &resp.Scores); err != nil {
			return nil, fmt.Errorf("unmarshal scores: %w", err)
		}
		if err := json.Unmarshal([]byte(commentsJSON), &resp.Comments); err != nil {
			return nil, fmt.Errorf("unmarshal comments: %w", err)
		}

		responses = append(responses, &resp)
	}
	return responses, rows.Err()
}
