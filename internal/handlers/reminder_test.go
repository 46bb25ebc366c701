package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/repo"
	"github.com/crucial707/reminders/internal/repo/memstore"
)

// requestWithChiURLParams returns a request with chi route context and URL params set.
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func newReminderHandler(store repo.ReminderStore) *ReminderHandler {
	return &ReminderHandler{Reminders: store, Log: zap.NewNop()}
}

func TestReminderHandler_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, description, created_at FROM reminders ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "created_at"}).
			AddRow(1, "milk", "buy milk", time.Now()))

	h := newReminderHandler(repo.NewReminderRepo(db))
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest("GET", "/api/reminders", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("List status: got %d, want 200", rr.Code)
	}
	var list []struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != 1 || list[0].Title != "milk" {
		t.Errorf("unexpected list: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReminderHandler_List_EmptyIsArray(t *testing.T) {
	h := newReminderHandler(memstore.New().Reminders())
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest("GET", "/api/reminders", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("List status: got %d, want 200", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("List body: got %q, want []", got)
	}
}

func TestReminderHandler_List_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, description, created_at FROM reminders`).
		WillReturnError(errors.New("connection refused"))

	h := newReminderHandler(repo.NewReminderRepo(db))
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest("GET", "/api/reminders", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("List status: got %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "connection refused") {
		t.Errorf("500 body leaks internals: %s", rr.Body.String())
	}
}

func TestReminderHandler_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO reminders \(title, description\)`).
		WithArgs("milk", "buy milk").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, time.Now()))

	h := newReminderHandler(repo.NewReminderRepo(db))
	body := []byte(`{"title":"  milk ","description":"buy milk"}`)
	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest("POST", "/api/reminders/create", bytes.NewReader(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Create status: got %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != 5 || out.Title != "milk" {
		t.Errorf("unexpected reminder: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReminderHandler_Create_BadRequests(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		fields map[string]string
	}{
		{name: "empty body", body: ""},
		{name: "not json", body: "title=x"},
		{name: "wrong type", body: `{"title":1,"description":"d"}`},
		{name: "missing title", body: `{"description":"d"}`, fields: map[string]string{"title": "required"}},
		{name: "blank fields", body: `{"title":" ","description":""}`,
			fields: map[string]string{"title": "required", "description": "required"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memstore.New().Reminders()
			h := newReminderHandler(store)
			rr := httptest.NewRecorder()
			h.Create(rr, httptest.NewRequest("POST", "/api/reminders/create", strings.NewReader(tc.body)))

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rr.Code)
			}
			var out ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Error == "" {
				t.Errorf("missing error message")
			}
			for k, v := range tc.fields {
				if out.Fields[k] != v {
					t.Errorf("fields[%q]: got %q, want %q", k, out.Fields[k], v)
				}
			}
			if n, _ := store.Count(context.Background()); n != 0 {
				t.Errorf("store size changed to %d", n)
			}
		})
	}
}

func TestReminderHandler_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, description, created_at\s+FROM reminders\s+WHERE id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "created_at"}).
			AddRow(3, "t", "d", time.Now()))

	h := newReminderHandler(repo.NewReminderRepo(db))
	rr := httptest.NewRecorder()
	h.Get(rr, requestWithChiURLParams("GET", "/api/reminders/3", nil, map[string]string{"id": "3"}))

	if rr.Code != http.StatusOK {
		t.Errorf("Get status: got %d, want 200", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReminderHandler_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, description, created_at`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	h := newReminderHandler(repo.NewReminderRepo(db))
	for _, id := range []string{"999", "abc", "-1", "0"} {
		rr := httptest.NewRecorder()
		h.Get(rr, requestWithChiURLParams("GET", "/api/reminders/"+id, nil, map[string]string{"id": id}))
		if rr.Code != http.StatusNotFound {
			t.Errorf("Get(%s) status: got %d, want 404", id, rr.Code)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
