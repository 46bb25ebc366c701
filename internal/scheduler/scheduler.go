// Package scheduler runs the optional expired-session pruning job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/crucial707/reminders/internal/metrics"
)

// Pruner deletes expired sessions. *auth.SessionManager satisfies it.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Run prunes expired sessions on the cron schedule spec until ctx is cancelled, then waits
// for a running prune to finish. An invalid spec is returned before anything is scheduled.
func Run(ctx context.Context, spec string, pruner Pruner, log *zap.Logger) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{log}),
		cron.SkipIfStillRunning(cronLogger{log}),
	))
	if _, err := c.AddFunc(spec, func() { pruneOnce(ctx, pruner, log) }); err != nil {
		return fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}

	log.Info("session pruning scheduled", zap.String("cron", spec))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func pruneOnce(ctx context.Context, pruner Pruner, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := pruner.Prune(ctx)
	if err != nil {
		log.Error("prune sessions", zap.Error(err))
		return
	}
	metrics.AddSessionsPruned(n)
	if n > 0 {
		log.Info("pruned expired sessions", zap.Int64("deleted", n))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
