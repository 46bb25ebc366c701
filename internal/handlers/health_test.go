package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
)

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest("GET", "/health", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("Health: got %d %q", rr.Code, rr.Body.String())
	}
}

func TestReady(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()
	rr := httptest.NewRecorder()
	Ready(db, zap.NewNop())(rr, httptest.NewRequest("GET", "/ready", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Ready status: got %d, want 200", rr.Code)
	}

	mock.ExpectPing().WillReturnError(errors.New("down"))
	rr = httptest.NewRecorder()
	Ready(db, zap.NewNop())(rr, httptest.NewRequest("GET", "/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Ready status: got %d, want 503", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReady_PingFunc(t *testing.T) {
	rr := httptest.NewRecorder()
	Ready(PingFunc(func(context.Context) error { return nil }), zap.NewNop())(rr, httptest.NewRequest("GET", "/ready", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Ready status: got %d, want 200", rr.Code)
	}
}
