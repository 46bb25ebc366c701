package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/auth"
)

// RequireToken authenticates API requests with "Authorization: Bearer <jwt>". The token must
// verify and its session (the jti) must still be live, so logging out revokes it.
// Failures answer 401 with a JSON error body.
func RequireToken(tokens *auth.Tokens, sessions *auth.SessionManager, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			user, err := sessions.Resolve(r.Context(), claims.ID)
			if err != nil {
				if !errors.Is(err, auth.ErrNoSession) {
					log.Error("resolve token session", zap.Error(err))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
					return
				}
				unauthorized(w, "invalid token")
				return
			}
			if id, _ := claims.UserID(); id != user.ID {
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user, claims.ID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="reminders"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
