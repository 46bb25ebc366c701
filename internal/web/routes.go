package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/crucial707/reminders/internal/middleware"
)

// Routes mounts the HTML pages on r. r must already run LoadSession so the gate and
// the layout can see the current user.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/reminder/{id}", h.Detail)
	r.Get("/login", h.LoginForm)
	r.With(h.LoginLimiter.Middleware).Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/create", h.CreateForm)
		r.Post("/create", h.Create)
	})
}
