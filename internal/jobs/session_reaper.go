// Package jobs contains background workers that run on a schedule. The
// session reaper deletes expired admin sessions so the table does not
// accumulate rows from logins that were never explicitly logged out. Jobs are
// idempotent — re-running after a crash produces the same result as a clean
// run.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/telemetry"
)

// SessionReaper periodically purges expired admin sessions. The auth
// middleware also deletes expired sessions when it sees them, so the reaper
// only has to catch sessions that are never presented again.
type SessionReaper struct {
	sessions *repositories.SessionRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewSessionReaper creates a reaper with the given purge interval
// (default 1h when zero).
func NewSessionReaper(sessions *repositories.SessionRepository, interval time.Duration) *SessionReaper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionReaper{
		sessions: sessions,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the purge loop. It runs one purge immediately, then repeats on
// the configured interval until ctx is cancelled or Stop is called.
func (r *SessionReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("session reaper started", "interval", r.interval)

	r.purge(ctx)

	for {
		select {
		case <-ticker.C:
			r.purge(ctx)
		case <-r.stopChan:
			slog.Info("session reaper stopped")
			return
		case <-ctx.Done():
			slog.Info("session reaper stopped", "reason", ctx.Err())
			return
		}
	}
}

// Stop terminates the loop. Safe to call once.
func (r *SessionReaper) Stop() {
	close(r.stopChan)
}

func (r *SessionReaper) purge(ctx context.Context) {
	n, err := r.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		slog.Error("session purge failed", "error", err)
		return
	}
	if n > 0 {
		telemetry.SessionsReapedTotal.Add(float64(n))
		slog.Info("purged expired sessions", "count", n)
	}
}
