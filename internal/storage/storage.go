// Package storage selects and opens the configured backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/config"
	"github.com/crucial707/reminders/internal/db"
	"github.com/crucial707/reminders/internal/repo"
	"github.com/crucial707/reminders/internal/repo/memstore"
)

// Stores bundles every repository of one backend.
type Stores struct {
	Reminders repo.ReminderStore
	Users     repo.UserStore
	Sessions  repo.SessionStore
	Audit     repo.AuditStore

	pinger interface {
		PingContext(ctx context.Context) error
	}
	close func() error
}

// Open connects to the backend named by cfg.Storage. For postgres it applies the embedded
// migrations first when cfg.DBMigrate is set.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Stores, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; all data is lost on restart")
		return FromMemory(memstore.New()), nil

	case config.StoragePostgres, "":
		if cfg.DBMigrate {
			if err := db.Run(cfg.MigrateURL()); err != nil {
				return nil, fmt.Errorf("migrations: %w", err)
			}
			log.Info("migrations applied")
		}
		conn, err := db.Connect(ctx, cfg.DBDriver, cfg.DSN(), db.Options{
			MaxOpenConns: cfg.DBMaxOpenConns,
			MaxIdleConns: cfg.DBMaxIdleConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		log.Info("connected to database",
			zap.String("driver", cfg.DBDriver),
			zap.String("host", cfg.DBHost),
			zap.String("name", cfg.DBName))
		return FromDB(conn), nil

	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// FromDB wraps an open pool. Close closes the pool.
func FromDB(conn *sql.DB) *Stores {
	return &Stores{
		Reminders: repo.NewReminderRepo(conn),
		Users:     repo.NewUserRepo(conn),
		Sessions:  repo.NewSessionRepo(conn),
		Audit:     repo.NewAuditRepo(conn),
		pinger:    conn,
		close:     conn.Close,
	}
}

func FromMemory(m *memstore.Store) *Stores {
	return &Stores{
		Reminders: m.Reminders(),
		Users:     m.Users(),
		Sessions:  m.Sessions(),
		Audit:     m.Audit(),
		pinger:    m,
		close:     m.Close,
	}
}

// PingContext reports whether the backend answers.
func (s *Stores) PingContext(ctx context.Context) error {
	return s.pinger.PingContext(ctx)
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
