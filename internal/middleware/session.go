package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/auth"
)

// LoadSession resolves the session cookie once per request and, when it is valid,
// attaches the user to the request context. Requests without a valid session pass
// through unchanged; RequireSession decides what to do with them.
func LoadSession(sessions *auth.SessionManager, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessions.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrNoSession) {
					log.Error("resolve session", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user, token)))
		})
	}
}

// HasValidSession reports whether LoadSession attached a user to r. It reads the
// request context only.
func HasValidSession(r *http.Request) bool {
	_, ok := auth.UserFromContext(r.Context())
	return ok
}

// RequireSession redirects requests without a valid session to /login?next=<path>.
// The wrapped handler never runs for them.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !HasValidSession(r) {
			http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginURL returns the login path carrying next as the return target.
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}
