// Package repo holds the storage contracts and their PostgreSQL implementations.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/crucial707/reminders/internal/models"
)

var (
	// ErrNotFound is returned when a lookup key does not resolve to a row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate")
)

// ReminderStore persists reminders. List returns insertion order and never nil.
type ReminderStore interface {
	Create(ctx context.Context, title, description string) (models.Reminder, error)
	List(ctx context.Context) ([]models.Reminder, error)
	GetByID(ctx context.Context, id int) (models.Reminder, error)
	Count(ctx context.Context) (int, error)
}

// UserStore persists users. Only hashes are ever written.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionStore persists session-to-user bindings.
type SessionStore interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuditStore records who did what. Failures to audit never fail the audited request.
type AuditStore interface {
	Log(ctx context.Context, e models.AuditEntry) error
	List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error)
}

const uniqueViolation = "23505"

// isUniqueViolation recognises unique constraint errors from both lib/pq and pgx.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
