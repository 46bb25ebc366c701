package models

import "time"

// Session binds an opaque client token to a user. ID is the SHA-256 hex of the token;
// the raw token is only ever held by the client.
type Session struct {
	ID        string    `json:"-"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
