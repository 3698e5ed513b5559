package async

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine with a detached context that keeps
// the caller's logger. Errors are logged and panics are recovered.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := detach(ctx)
	go run(bgCtx, handler)
}

// Group tracks dispatched handlers so that shutdown can wait for in-flight
// work such as pending autosaves. Once Wait has been called, Dispatch runs
// handlers inline instead of registering them.
type Group struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// Dispatch works like the package level Dispatch but registers the handler
// with the group.
func (g *Group) Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := detach(ctx)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		run(bgCtx, handler)
		return
	}
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		run(bgCtx, handler)
	}()
}

// Wait blocks until every handler dispatched through the group returned or
// ctx is done.
func (g *Group) Wait(ctx context.Context) error {
	// no Add may race with wg.Wait once closed is set
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "wait for async handlers")
	}
}

func detach(ctx context.Context) context.Context {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}
	return bgCtx
}

func run(ctx context.Context, handler func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic in async handler", "panic", r)
		}
	}()

	if err := handler(ctx); err != nil {
		logging.From(ctx).Error("async handler failed", "error", err)
	}
}
