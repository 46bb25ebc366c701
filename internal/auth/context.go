package auth

import (
	"context"

	"github.com/crucial707/reminders/internal/models"
)

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// WithUser attaches the authenticated user and the session token that proved it.
func WithUser(ctx context.Context, user *models.User, sessionToken string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, sessionToken)
}

// UserFromContext returns the current user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

func SessionTokenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey).(string)
	return s
}
