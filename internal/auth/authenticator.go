package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/metrics"
	"github.com/crucial707/reminders/internal/models"
	"github.com/crucial707/reminders/internal/repo"
)

// ErrInvalidCredentials is the only failure callers ever see for a bad login,
// whether the username is unknown or the password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator checks username/password pairs against the user store.
type Authenticator struct {
	users  repo.UserStore
	hasher Hasher
	log    *zap.Logger

	// dummyHash is compared against when the username is unknown so both
	// failure paths pay for one bcrypt comparison.
	dummyHash string
}

func NewAuthenticator(users repo.UserStore, hasher Hasher, log *zap.Logger) (*Authenticator, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{users: users, hasher: hasher, log: log, dummyHash: dummy}, nil
}

// Login returns the user for valid credentials, ErrInvalidCredentials for invalid ones,
// or a wrapped storage error.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		_ = a.hasher.Compare(a.dummyHash, password)
		a.fail(username, metrics.LoginUnknownUser)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		metrics.IncLoginAttempt(metrics.LoginError)
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		if !isMismatch(err) {
			a.log.Warn("stored password hash unusable", zap.Int("user_id", user.ID), zap.Error(err))
		}
		a.fail(username, metrics.LoginBadPassword)
		return nil, ErrInvalidCredentials
	}

	metrics.IncLoginAttempt(metrics.LoginSuccess)
	return user, nil
}

func (a *Authenticator) fail(username, outcome string) {
	metrics.IncLoginAttempt(outcome)
	a.log.Info("login failed", zap.String("username", username), zap.String("outcome", outcome))
}
