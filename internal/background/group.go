package background

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Group runs detached tasks whose failures are logged and never propagated.
type Group struct {
	wg      conc.WaitGroup
	logger  *slog.Logger
	base    context.Context
	cancel  context.CancelFunc
	pending atomic.Int64
}

// NewGroup builds a group; tasks receive a context detached from the caller
// that is cancelled only by Shutdown.
func NewGroup(logger *slog.Logger) *Group {
	base, cancel := context.WithCancel(context.Background())
	return &Group{logger: logger, base: base, cancel: cancel}
}

// Go starts fn on its own goroutine. The caller's cancellation is not inherited.
func (g *Group) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	parent := context.Background()
	if ctx != nil {
		parent = context.WithoutCancel(ctx)
	}
	taskCtx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(g.base, cancel)

	g.pending.Add(1)
	g.wg.Go(func() {
		defer g.pending.Add(-1)
		defer stop()
		defer cancel()

		var err error
		if recovered := panics.Try(func() { err = fn(taskCtx) }); recovered != nil {
			err = recovered.AsError()
		}
		if err != nil && g.logger != nil {
			g.logger.Warn("background task failed", "task", name, "error", err)
		}
	})
}

// Pending reports tasks that have not finished yet.
func (g *Group) Pending() int64 {
	return g.pending.Load()
}

// Wait blocks until every started task has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Shutdown waits for running tasks until ctx is done, then cancels the rest
// and waits for them to return.
func (g *Group) Shutdown(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-ctx.Done():
	}
	g.cancel()
	<-done
}
