package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/audit"
	"github.com/crucial707/reminders/internal/auth"
	"github.com/crucial707/reminders/internal/config"
	"github.com/crucial707/reminders/internal/handlers"
	"github.com/crucial707/reminders/internal/middleware"
	"github.com/crucial707/reminders/internal/storage"
	"github.com/crucial707/reminders/internal/web"
)

// newRouter wires the JSON API under /api and the HTML pages at the root.
func newRouter(cfg config.Config, stores *storage.Stores, log *zap.Logger) (http.Handler, error) {
	hasher := auth.NewHasher(cfg.BcryptCost)
	authn, err := auth.NewAuthenticator(stores.Users, hasher, log)
	if err != nil {
		return nil, err
	}
	sessions := newSessionManager(cfg, stores)
	tokens := auth.NewTokens([]byte(cfg.JWTSecret))
	recorder := audit.NewRecorder(stores.Audit, log)
	renderer, err := web.NewRenderer(log)
	if err != nil {
		return nil, err
	}
	loginLimiter := middleware.LoginRateLimiter(cfg.LoginRatePerMin, cfg.LoginBurst)

	reminderHandler := &handlers.ReminderHandler{Reminders: stores.Reminders, Audit: recorder, Log: log}
	authHandler := &handlers.AuthHandler{Auth: authn, Sessions: sessions, Tokens: tokens, Audit: recorder, Log: log}
	auditHandler := &handlers.AuditHandler{Repo: stores.Audit, Log: log}
	webHandler := &web.Handler{
		Reminders:    stores.Reminders,
		Auth:         authn,
		Sessions:     sessions,
		Audit:        recorder,
		Render:       renderer,
		Log:          log,
		LoginLimiter: loginLimiter,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	// ==========================
	// Ops
	// ==========================
	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(stores, log))
	r.Handle("/metrics", promhttp.Handler())

	// ==========================
	// JSON API
	// ==========================
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			handlers.JSONError(w, "not found", http.StatusNotFound)
		})

		r.Get("/reminders", reminderHandler.List)
		r.Post("/reminders/create", reminderHandler.Create)
		r.Get("/reminders/{id}", reminderHandler.Get)

		r.With(loginLimiter.Middleware).Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(tokens, sessions, log))
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Get("/audit", auditHandler.ListAudit)
		})
	})

	// ==========================
	// HTML
	// ==========================
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessions, log))
		webHandler.Routes(r)
		r.NotFound(webHandler.NotFound)
	})

	return r, nil
}

func newSessionManager(cfg config.Config, stores *storage.Stores) *auth.SessionManager {
	return auth.NewSessionManager(stores.Sessions, stores.Users, auth.SessionOptions{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.TLSEnabled(),
	})
}
