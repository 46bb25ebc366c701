// Package web serves the server-rendered HTML interface.
package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/audit"
	"github.com/crucial707/reminders/internal/auth"
	"github.com/crucial707/reminders/internal/metrics"
	"github.com/crucial707/reminders/internal/middleware"
	"github.com/crucial707/reminders/internal/models"
	"github.com/crucial707/reminders/internal/repo"
	"github.com/crucial707/reminders/internal/validation"
)

// loginFailed is shown for every rejected login, whatever the reason.
const loginFailed = "Invalid username or password."

type Handler struct {
	Reminders repo.ReminderStore
	Auth      *auth.Authenticator
	Sessions  *auth.SessionManager
	Audit     *audit.Recorder
	Render    *Renderer
	Log       *zap.Logger

	// LoginLimiter throttles POST /login per client IP; nil disables it.
	LoginLimiter *middleware.IPRateLimiter
}

func (h *Handler) view(r *http.Request) viewData {
	user, _ := auth.UserFromContext(r.Context())
	return viewData{User: user}
}

func (h *Handler) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := h.view(r)
	data.Status = status
	data.Message = message
	h.Render.Render(w, status, "error.html", data)
}

// Index lists every reminder.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.Reminders.List(r.Context())
	if err != nil {
		h.Log.Error("list reminders", zap.Error(err))
		h.errorPage(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	data := h.view(r)
	data.Reminders = reminders
	h.Render.Render(w, http.StatusOK, "index.html", data)
}

// CreateForm renders an empty form. Mounted behind RequireSession.
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, http.StatusOK, "create.html", h.view(r))
}

// Create stores the submitted reminder and redirects to it. Invalid input re-renders
// the form with 400. Mounted behind RequireSession.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		if middleware.IsBodyTooLarge(err) {
			h.errorPage(w, r, http.StatusRequestEntityTooLarge, "The submitted form is too large.")
			return
		}
		h.errorPage(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}

	input, fields := validation.Reminder(models.ReminderInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
	})
	if fields != nil {
		data := h.view(r)
		data.Form = input
		data.Errors = fields
		h.Render.Render(w, http.StatusBadRequest, "create.html", data)
		return
	}

	reminder, err := h.Reminders.Create(r.Context(), input.Title, input.Description)
	if err != nil {
		h.Log.Error("create reminder", zap.Error(err))
		h.errorPage(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	metrics.IncRemindersCreated(metrics.SourceWeb)
	h.Audit.Record(r.Context(), audit.UserID(user), models.AuditCreate, models.ResourceReminder, reminder.ID, metrics.SourceWeb)
	http.Redirect(w, r, "/reminder/"+strconv.Itoa(reminder.ID), http.StatusFound)
}

// Detail renders one reminder, or a 404 page.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.errorPage(w, r, http.StatusNotFound, "Reminder not found.")
		return
	}

	reminder, err := h.Reminders.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		h.errorPage(w, r, http.StatusNotFound, "Reminder not found.")
		return
	}
	if err != nil {
		h.Log.Error("get reminder", zap.Int("id", id), zap.Error(err))
		h.errorPage(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	data := h.view(r)
	data.Reminder = reminder
	h.Render.Render(w, http.StatusOK, "reminder.html", data)
}

// NotFound renders the HTML 404 page for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.errorPage(w, r, http.StatusNotFound, "Page not found.")
}

// LoginForm renders the login form; a user who already has a session goes home.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.HasValidSession(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	data := h.view(r)
	data.Next = safeNext(r.URL.Query().Get("next"))
	h.Render.Render(w, http.StatusOK, "login.html", data)
}

// Login verifies the form credentials. On success it starts a session, sets the cookie and
// redirects to next. On failure it re-renders the form with one generic message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errorPage(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := safeNext(r.PostFormValue("next"))

	fail := func() {
		data := h.view(r)
		data.Error = loginFailed
		data.Next = next
		h.Render.Render(w, http.StatusOK, "login.html", data)
	}

	if username == "" || password == "" {
		fail()
		return
	}

	user, err := h.Auth.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		fail()
		return
	}
	if err != nil {
		h.Log.Error("login", zap.Error(err))
		h.errorPage(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	token, sess, err := h.Sessions.Start(r.Context(), user.ID)
	if err != nil {
		h.Log.Error("login: start session", zap.Error(err))
		h.errorPage(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	h.Sessions.SetCookie(w, token, sess.ExpiresAt)
	h.Audit.Record(r.Context(), audit.UserID(user), models.AuditLogin, models.ResourceSession, 0, metrics.SourceWeb)
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout ends the current session, if any, and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	if err := h.Sessions.End(r.Context(), h.Sessions.TokenFromRequest(r)); err != nil {
		h.Log.Error("logout", zap.Error(err))
	}
	h.Sessions.ClearCookie(w)
	if user != nil {
		h.Audit.Record(r.Context(), audit.UserID(user), models.AuditLogout, models.ResourceSession, 0, metrics.SourceWeb)
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// safeNext keeps redirects on this site: only local absolute paths are accepted.
// Browsers drop tabs and newlines from URLs, so any control character is rejected.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if strings.ContainsFunc(next, unicode.IsControl) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "/login" {
		return "/"
	}
	return next
}
