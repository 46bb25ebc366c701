package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crucial707/reminders/internal/models"
)

// SessionRepo persists sessions in PostgreSQL so they survive restarts.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create stores s. The ID must already be the token hash.
func (r *SessionRepo) Create(ctx context.Context, s models.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Get returns the session with id whether or not it has expired.
func (r *SessionRepo) Get(ctx context.Context, id string) (models.Session, error) {
	var s models.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrNotFound
	}
	return s, err
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes every session that expired at or before now and returns how many were removed.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
