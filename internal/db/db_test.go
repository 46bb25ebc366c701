package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestConnect(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("connect-ok", sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.NewWithDSN: %v", err)
	}
	mock.ExpectPing()

	conn, err := Connect(context.Background(), "sqlmock", "connect-ok", Options{MaxOpenConns: 3, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Close()

	if got := conn.Stats().MaxOpenConnections; got != 3 {
		t.Errorf("MaxOpenConnections: got %d, want 3", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestConnect_PingFails(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("connect-down", sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.NewWithDSN: %v", err)
	}
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	if _, err := Connect(context.Background(), "sqlmock", "connect-down", Options{}); err == nil {
		t.Fatal("Connect: expected error when ping fails")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var ups, downs int
	for _, e := range entries {
		switch {
		case len(e.Name()) > 7 && e.Name()[len(e.Name())-7:] == ".up.sql":
			ups++
		case len(e.Name()) > 9 && e.Name()[len(e.Name())-9:] == ".down.sql":
			downs++
		}
	}
	if ups != 4 || downs != 4 {
		t.Errorf("migrations: got %d up / %d down, want 4/4", ups, downs)
	}
}
