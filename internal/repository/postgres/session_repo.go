package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/blog/backend/internal/domain"
)

// SessionRepo stores one refresh token per user. Each operation is a single
// statement, so Postgres row locking serializes concurrent writers.
type SessionRepo struct {
	DB *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db}
}

func (r *SessionRepo) Bind(ctx context.Context, userID int64, refreshToken string) error {
	query := `
	INSERT INTO sessions (user_id, refresh_token, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (user_id)
	DO UPDATE SET refresh_token = EXCLUDED.refresh_token, updated_at = NOW();
	`
	if _, err := r.DB.ExecContext(ctx, query, userID, refreshToken); err != nil {
		return fmt.Errorf("failed to bind session: %w", err)
	}
	return nil
}

func (r *SessionRepo) LookupByRefreshToken(ctx context.Context, refreshToken string) (int64, error) {
	query := `
	SELECT user_id
	FROM sessions
	WHERE refresh_token = $1;
	`
	var userID int64
	err := r.DB.QueryRowContext(ctx, query, refreshToken).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	return userID, nil
}

func (r *SessionRepo) Revoke(ctx context.Context, userID int64) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1;`, userID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions bound longer ago than maxAge. Their refresh
// tokens can no longer verify, so the rows are dead weight.
func (r *SessionRepo) DeleteExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	query := `
	DELETE FROM sessions
	WHERE updated_at < NOW() - make_interval(secs => $1);
	`
	result, err := r.DB.ExecContext(ctx, query, maxAge.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
