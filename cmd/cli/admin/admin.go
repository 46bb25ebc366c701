// Package admin holds the CLI commands that work on the database directly
// instead of going through the HTTP API.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crucial707/reminders/cmd/cli/output"
	"github.com/crucial707/reminders/internal/auth"
	"github.com/crucial707/reminders/internal/config"
	"github.com/crucial707/reminders/internal/db"
	"github.com/crucial707/reminders/internal/logger"
	"github.com/crucial707/reminders/internal/seed"
	"github.com/crucial707/reminders/internal/storage"
)

// InitAdmin registers migrate, seed, sessions and audit on the root command.
func InitAdmin(rootCmd *cobra.Command) {
	rootCmd.AddCommand(migrateCmd(), seedCmd(), sessionsCmd(), auditCmd())
}

// env bundles what every admin command needs.
type env struct {
	cfg    config.Config
	log    *zap.Logger
	stores *storage.Stores
}

func (e *env) close() {
	if e.stores != nil {
		e.stores.Close()
	}
	logger.Sync(e.log)
}

func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openStores(ctx, cfg, log)
}

func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*env, error) {
	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		logger.Sync(log)
		return nil, err
	}
	return &env{cfg: cfg, log: log, stores: stores}, nil
}

// ==========================
// Migrate
// ==========================
func migrateCmd() *cobra.Command {
	var versionOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync(log)
			if cfg.Storage != config.StoragePostgres {
				return errors.New("migrate requires STORAGE=postgres")
			}

			if !versionOnly {
				if err := db.Run(cfg.MigrateURL()); err != nil {
					return err
				}
			}
			v, dirty, err := db.Version(cfg.MigrateURL())
			if err != nil {
				return err
			}
			log.Info("schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	}
	cmd.Flags().BoolVar(&versionOnly, "version", false, "only print the current schema version")
	return cmd
}

// ==========================
// Seed
// ==========================
func seedCmd() *cobra.Command {
	var force bool
	var username, password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the demo user if it does not exist",
		Long: `Create the demo user (SEED_USERNAME / SEED_PASSWORD unless overridden by flags).
Refuses to run when ENV=prod unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.IsProd() && !force {
				logger.Sync(log)
				return errors.New("refusing to seed a demo user with ENV=prod; pass --force to override")
			}

			e, err := openStores(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer e.close()

			if username == "" {
				username = e.cfg.SeedUsername
			}
			if password == "" {
				password = e.cfg.SeedPassword
			}
			created, err := seed.DemoUser(cmd.Context(), e.stores.Users, auth.NewHasher(e.cfg.BcryptCost), username, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s.\n", username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "User %s already exists; left unchanged.\n", username)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "allow seeding when ENV=prod")
	cmd.Flags().StringVar(&username, "username", "", "override SEED_USERNAME")
	cmd.Flags().StringVar(&password, "password", "", "override SEED_PASSWORD")
	return cmd
}

// ==========================
// Sessions
// ==========================
func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			mgr := auth.NewSessionManager(e.stores.Sessions, e.stores.Users, auth.SessionOptions{
				CookieName: e.cfg.SessionCookie,
				TTL:        e.cfg.SessionTTL,
			})
			n, err := mgr.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired session(s).\n", n)
			return nil
		},
	})
	return cmd
}

// ==========================
// Audit
// ==========================
func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}
			if offset < 0 {
				return errors.New("--offset must not be negative")
			}
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			entries, err := e.stores.Audit.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audit entries.")
				return nil
			}

			rows := make([][]interface{}, 0, len(entries))
			for _, a := range entries {
				user := "-"
				if a.UserID != nil {
					user = fmt.Sprint(*a.UserID)
				}
				rows = append(rows, []interface{}{
					a.ID, a.CreatedAt.Format("2006-01-02 15:04:05"), user, a.Action, a.ResourceType, a.ResourceID, a.Details,
				})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Time", "User", "Action", "Resource", "Resource ID", "Details"}, rows)
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of entries")
	list.Flags().IntVar(&offset, "offset", 0, "number of entries to skip")
	cmd.AddCommand(list)
	return cmd
}
