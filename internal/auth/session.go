package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crucial707/reminders/internal/models"
	"github.com/crucial707/reminders/internal/repo"
)

// ErrNoSession means the request carries no token, or the token does not resolve to a live session.
var ErrNoSession = errors.New("no valid session")

const DefaultCookieName = "reminders_session"

type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	// Secure marks the cookie Secure; set when serving over TLS.
	Secure bool
}

// SessionManager issues, resolves and ends sessions. Only the SHA-256 of a token is stored.
type SessionManager struct {
	sessions repo.SessionStore
	users    repo.UserStore
	opts     SessionOptions
	now      func() time.Time
}

func NewSessionManager(sessions repo.SessionStore, users repo.UserStore, opts SessionOptions) *SessionManager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &SessionManager{sessions: sessions, users: users, opts: opts, now: time.Now}
}

// HashToken returns the storage key for a client token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Start creates a session for userID and returns the raw token to hand to the client.
func (m *SessionManager) Start(ctx context.Context, userID int) (string, models.Session, error) {
	token := uuid.NewString()
	now := m.now().UTC()
	sess := models.Session{
		ID:        HashToken(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}
	if err := m.sessions.Create(ctx, sess); err != nil {
		return "", models.Session{}, fmt.Errorf("create session: %w", err)
	}
	return token, sess, nil
}

// Resolve returns the user a token belongs to. It never modifies the store: an expired
// session is reported as ErrNoSession and left for pruning.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	sess, err := m.sessions.Get(ctx, HashToken(token))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Expired(m.now()) {
		return nil, ErrNoSession
	}

	user, err := m.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session user: %w", err)
	}
	return user, nil
}

// End deletes the session for token. Ending an unknown token is not an error.
func (m *SessionManager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.Delete(ctx, HashToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Prune deletes every session that has expired.
func (m *SessionManager) Prune(ctx context.Context) (int64, error) {
	n, err := m.sessions.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return n, nil
}

// TokenFromRequest reads the session cookie; it returns "" when absent.
func (m *SessionManager) TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (m *SessionManager) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
