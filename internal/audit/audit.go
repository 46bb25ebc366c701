// Package audit records user actions to the audit log without ever failing the caller.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/models"
	"github.com/crucial707/reminders/internal/repo"
)

type Recorder struct {
	store repo.AuditStore
	log   *zap.Logger
}

// NewRecorder returns a Recorder writing to store. A nil store makes Record a no-op.
func NewRecorder(store repo.AuditStore, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: store, log: log}
}

// Record appends an entry. userID may be nil for anonymous actions. Store errors are logged.
func (r *Recorder) Record(ctx context.Context, userID *int, action, resourceType string, resourceID int, details string) {
	if r == nil || r.store == nil {
		return
	}
	err := r.store.Log(ctx, models.AuditEntry{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	})
	if err != nil {
		r.log.Warn("audit log write failed",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.Int("resource_id", resourceID),
			zap.Error(err))
	}
}

// UserID returns a pointer to the id of user, or nil.
func UserID(user *models.User) *int {
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}
