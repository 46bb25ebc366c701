package models

import "time"

const (
	AuditCreate = "create"
	AuditLogin  = "login"
	AuditLogout = "logout"

	ResourceReminder = "reminder"
	ResourceSession  = "session"
)

// AuditEntry represents one audit log row.
type AuditEntry struct {
	ID           int       `json:"id"`
	UserID       *int      `json:"user_id,omitempty"`
	Action       string    `json:"action"`        // create, login, logout
	ResourceType string    `json:"resource_type"` // reminder, session
	ResourceID   int       `json:"resource_id"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
