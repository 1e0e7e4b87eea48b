package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/linkcardapp/linkcard-server/internal/logger"
	"github.com/linkcardapp/linkcard-server/internal/service"
)

const sessionCleanupInterval = time.Hour

// SessionCleanupJob sweeps expired refresh sessions on a timer.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob starts the periodic session sweep. The first
// pass runs immediately so stale sessions don't wait an hour after boot.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessions := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	sweep := func(what string) {
		if count, err := sessions.DeleteExpiredSessions(ctx); err != nil {
			log.Warn(what+" failed", "error", err)
		} else if count > 0 {
			log.Info(what+" completed", "deleted", count)
		}
	}

	go func() {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()

		sweep("Initial session cleanup")
		for {
			select {
			case <-ticker.C:
				sweep("Session cleanup")
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")
	return &SessionCleanupJob{cancel: cancel}, nil
}
