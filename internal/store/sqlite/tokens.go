package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Fachastorm/high-coherence/internal/domain"
	"github.com/Fachastorm/high-coherence/internal/store"
)

// inviteColumns is the ordered list of columns selected in invite queries.
// Must match the scan order in scanInvite.
const inviteColumns = `token, reviewee_id, reviewee_name, review_type,
	recipient_email, created_at, expires_at, completed_at`

// scanInvite scans a sql.Row (or sql.Rows via its Scan method) into a domain.ReviewInvite.
func scanInvite(scanner interface{ Scan(dest ...any) error }) (*domain.ReviewInvite, error) {
	var inv domain.ReviewInvite

	var (
		reviewType  string
		createdAt   string
		expiresAt   string
		completedAt sql.NullString
	)

	err := scanner.Scan(
		&inv.Token,
		&inv.RevieweeID,
		&inv.RevieweeName,
		&reviewType,
		&inv.RecipientEmail,
		&createdAt,
		&expiresAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.ReviewType = domain.ReviewType(reviewType)

	inv.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	inv.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	inv.CompletedAt, err = parseNullableTime(completedAt)
	if err != nil {
		return nil, err
	}

	return &inv, nil
}

// CreateInvite inserts a new invite.
// Returns store.ErrTokenExists if the token is already registered.
func (s *Store) CreateInvite(ctx context.Context, invite *domain.ReviewInvite) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_invites (
			token, reviewee_id, reviewee_name, review_type,
			recipient_email, created_at, expires_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		invite.Token,
		invite.RevieweeID,
		invite.RevieweeName,
		string(invite.ReviewType),
		invite.RecipientEmail,
		formatTime(invite.CreatedAt),
		formatTime(invite.ExpiresAt),
		nullTimeString(invite.CompletedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrTokenExists
		}
		return err
	}
	return nil
}

// GetInvite retrieves an invite by token.
// Returns store.ErrTokenNotFound if the token is unknown.
func (s *Store) GetInvite(ctx context.Context, token string) (*domain.ReviewInvite, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM review_invites WHERE token = ?`, token)

	inv, err := scanInvite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// CompleteInvite marks the invite completed. The conditional UPDATE is the
// compare-and-swap: RowsAffected is zero when another caller won the race.
func (s *Store) CompleteInvite(ctx context.Context, token string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE review_invites SET completed_at = ? WHERE token = ? AND completed_at IS NULL`,
		formatTime(at), token)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	// No row claimed: either the token is unknown or it was already completed.
	if _, err := s.GetInvite(ctx, token); err != nil {
		return false, err
	}
	return false, nil
}

// ReopenInvite clears the completion mark (compensation path).
func (s *Store) ReopenInvite(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE review_invites SET completed_at = NULL WHERE token = ?`, token)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrTokenNotFound
	}
	return nil
}

// ListInvites returns all invites ordered by creation time.
func (s *Store) ListInvites(ctx context.Context) ([]*domain.ReviewInvite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM review_invites ORDER BY created_at, token`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*domain.ReviewInvite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}
