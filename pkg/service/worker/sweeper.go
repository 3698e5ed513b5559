package worker

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/formflow/pkg/utils/logging"
)

// DefaultSweepInterval is how often expired sessions are removed
const DefaultSweepInterval = 5 * time.Minute

// Purger drops expired in-memory state and reports how much was removed
type Purger interface {
	PurgeExpired(ctx context.Context) int
}

// SessionSweeper periodically purges expired share link flows and idle
// builder sessions so that abandoned state does not pile up between requests.
//
// Architecture assumptions:
// - Sessions live in the memory of a single server instance
type SessionSweeper struct {
	target   Purger
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func NewSessionSweeper(target Purger, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SessionSweeper{
		target:   target,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop. It does not block.
func (w *SessionSweeper) Start(ctx context.Context) error {
	logging.Default().Info("Session sweeper starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the loop to stop and waits for it
func (w *SessionSweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.doneCh
	logging.Default().Info("Session sweeper stopped")
}

func (w *SessionSweeper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Session sweeper context cancelled")
			return
		}
	}
}

func (w *SessionSweeper) sweep(ctx context.Context) {
	start := time.Now()
	n := w.target.PurgeExpired(ctx)
	if n > 0 {
		logging.Default().Info("Expired sessions swept",
			"count", n,
			"duration", time.Since(start).String())
	}
}
