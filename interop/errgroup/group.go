// Package errgroup provides an adapter that mimics golang.org/x/sync/errgroup
// semantics on top of a scheduler.Scheduler. Functions passed to Go run on the
// scheduler's backend, so a pool scheduler bounds the group's concurrency.
package errgroup

import (
	"context"
	"sync"

	"github.com/NetPo4ki/go-smoke/scheduler"
)

// Group is an errgroup-like wrapper over a Scheduler.
type Group struct {
	s      *scheduler.Scheduler
	cancel context.CancelCauseFunc
	wg     sync.WaitGroup

	once sync.Once
	err  error
}

// WithContext creates a Group running its functions on s. A nil s starts one
// goroutine per function. The returned context is canceled when any function
// passed to Go returns a non-nil error or panics, or when Wait returns.
func WithContext(ctx context.Context, s *scheduler.Scheduler) (*Group, context.Context) {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Group{s: s, cancel: cancel}, ctx
}

// Go schedules f. A panic in f is reported as a *scheduler.ExecutionFailure.
func (g *Group) Go(f func() error) {
	if f == nil {
		return
	}
	g.wg.Add(1)
	g.s.Spawn(func() {
		defer g.wg.Done()
		_, err := scheduler.Guard(func() (struct{}, error) { return struct{}{}, f() })
		if err != nil {
			g.once.Do(func() {
				g.err = err
				g.cancel(err)
			})
		}
	})
}

// Wait blocks until all functions have returned and returns the first
// non-nil error, or nil on success.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel(g.err)
	return g.err
}
