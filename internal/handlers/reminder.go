package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/audit"
	"github.com/crucial707/reminders/internal/metrics"
	"github.com/crucial707/reminders/internal/models"
	"github.com/crucial707/reminders/internal/repo"
	"github.com/crucial707/reminders/internal/validation"
)

// ==========================
// ReminderHandler
// ==========================
type ReminderHandler struct {
	Reminders repo.ReminderStore
	Audit     *audit.Recorder
	Log       *zap.Logger
}

// ==========================
// List Reminders
// ==========================
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.Reminders.List(r.Context())
	if err != nil {
		h.Log.Error("list reminders", zap.Error(err))
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

// ==========================
// Create Reminder
// ==========================

// Create accepts {"title","description"}. Both are required after trimming; nothing is
// stored unless the input validates.
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ReminderInput
	if !decodeJSON(w, r, &input) {
		return
	}

	input, fields := validation.Reminder(input)
	if fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	reminder, err := h.Reminders.Create(r.Context(), input.Title, input.Description)
	if err != nil {
		h.Log.Error("create reminder", zap.Error(err))
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncRemindersCreated(metrics.SourceAPI)
	h.Audit.Record(r.Context(), nil, models.AuditCreate, models.ResourceReminder, reminder.ID, metrics.SourceAPI)
	writeJSON(w, http.StatusCreated, reminder)
}

// ==========================
// Get Reminder
// ==========================

// Get answers 404 for ids that are unknown or not a positive integer.
func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		JSONError(w, "reminder not found", http.StatusNotFound)
		return
	}

	reminder, err := h.Reminders.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "reminder not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.Error("get reminder", zap.Int("id", id), zap.Error(err))
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, reminder)
}
