package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/audit"
	"github.com/crucial707/reminders/internal/auth"
	"github.com/crucial707/reminders/internal/metrics"
	"github.com/crucial707/reminders/internal/models"
	"github.com/crucial707/reminders/internal/validation"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Auth     *auth.Authenticator
	Sessions *auth.SessionManager
	Tokens   *auth.Tokens
	Audit    *audit.Recorder
	Log      *zap.Logger
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// ==========================
// Login
// ==========================

// Login checks credentials, starts a session and returns a bearer token bound to it.
// Unknown usernames and wrong passwords get the same 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	if fields := validation.Struct(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Auth.Login(r.Context(), input.Username, input.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Log.Error("api login", zap.Error(err))
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	sessionToken, sess, err := h.Sessions.Start(r.Context(), user.ID)
	if err != nil {
		h.Log.Error("api login: start session", zap.Error(err))
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	signed, err := h.Tokens.Issue(user, sessionToken, sess.ExpiresAt)
	if err != nil {
		h.Log.Error("api login: issue token", zap.Error(err))
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	h.Audit.Record(r.Context(), audit.UserID(user), models.AuditLogin, models.ResourceSession, 0, metrics.SourceAPI)
	writeJSON(w, http.StatusOK, loginResponse{Token: signed, ExpiresAt: sess.ExpiresAt, User: user})
}

// ==========================
// Logout
// ==========================

// Logout ends the session behind the bearer token. Requires RequireToken.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	if err := h.Sessions.End(r.Context(), auth.SessionTokenFromContext(r.Context())); err != nil {
		h.Log.Error("api logout", zap.Error(err))
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	h.Audit.Record(r.Context(), audit.UserID(user), models.AuditLogout, models.ResourceSession, 0, metrics.SourceAPI)
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Me
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
