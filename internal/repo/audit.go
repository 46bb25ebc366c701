package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/reminders/internal/models"
)

// AuditRepo persists audit log entries.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Log records an audit entry. userID is nil for anonymous API calls.
func (r *AuditRepo) Log(ctx context.Context, e models.AuditEntry) error {
	var userID sql.NullInt64
	if e.UserID != nil {
		userID = sql.NullInt64{Int64: int64(*e.UserID), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, action, resource_type, resource_id, details) VALUES ($1, $2, $3, $4, $5)`,
		userID, e.Action, e.ResourceType, e.ResourceID, e.Details,
	)
	return err
}

// List returns recent audit entries, newest first.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, action, resource_type, resource_id, COALESCE(details,''), created_at FROM audit_log ORDER BY id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var (
			e      models.AuditEntry
			userID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &userID, &e.Action, &e.ResourceType, &e.ResourceID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			id := int(userID.Int64)
			e.UserID = &id
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
