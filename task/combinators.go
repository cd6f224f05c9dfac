package task

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/NetPo4ki/go-smoke/scheduler"
)

var errNilContinuation = errors.New("task: continuation returned a nil task")

// Map returns a task that drives t and passes its outcome to f. The derived
// task keeps t's scheduler binding.
func Map[T, U any](t *Task[T], f func(T, error) U) *Task[U] {
	return Scheduled(t.sched, func(s *Sender[U]) error {
		return s.Send(f(t.Wait()))
	})
}

// Then returns a task that drives t, passes its outcome to f and then drives
// the task f returns. Its value, or its error, becomes the result. The
// continuation runs on its own scheduler when it is bound to one other than
// t's; otherwise it runs inline.
func Then[T, U any](t *Task[T], f func(T, error) *Task[U]) *Task[U] {
	return Scheduled(t.sched, func(s *Sender[U]) error {
		next := f(t.Wait())
		if next == nil {
			return errNilContinuation
		}
		var (
			v   U
			err error
		)
		if next.sched != nil && next.sched != t.sched {
			v, err = next.Schedule(next.sched).Wait()
		} else {
			v, err = next.Wait()
		}
		if err != nil {
			return err
		}
		return s.Send(v)
	})
}

// Async drives t off the calling goroutine and resolves the returned handle
// with f applied to its outcome. An unbound t runs on a new goroutine.
func Async[T, U any](t *Task[T], f func(T, error) U) *scheduler.Handle[U] {
	return scheduler.Run(t.sched, func() (U, error) {
		return f(t.Wait()), nil
	})
}

// All returns a task that drives every task in tasks with at most limit of
// them running at once and delivers their values in input order. A limit of
// zero or less means no limit.
//
// The first failure fails the whole task; tasks not yet started are skipped.
// Tasks already running are left to finish and their values are discarded.
//
// Bound tasks are scheduled on their own scheduler while the All task waits
// for them. Do not Schedule the All task itself on a pool its tasks are bound
// to: once the pool is saturated the waiting All body holds a slot the queued
// tasks need, and it deadlocks. Drive it with Wait or on another scheduler.
func All[T any](limit int, tasks []*Task[T]) *Task[[]T] {
	return New(func(s *Sender[[]T]) error {
		out := make([]T, len(tasks))
		g, ctx := errgroup.WithContext(context.Background())
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, t := range tasks {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				v, err := drive(t)
				if err != nil {
					return fmt.Errorf("task %d: %w", i, err)
				}
				out[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		return s.Send(out)
	})
}

// Result is the settled outcome of one task.
type Result[T any] struct {
	Value T
	Err   error
}

// Settle is like All but never fails early: every task is driven and the
// outcome of each is reported at its input index. The scheduling caveat of
// All applies.
func Settle[T any](limit int, tasks []*Task[T]) *Task[[]Result[T]] {
	return New(func(s *Sender[[]Result[T]]) error {
		out := make([]Result[T], len(tasks))
		var g errgroup.Group
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, t := range tasks {
			g.Go(func() error {
				v, err := drive(t)
				out[i] = Result[T]{Value: v, Err: err}
				return nil
			})
		}
		_ = g.Wait()
		return s.Send(out)
	})
}

// drive runs t on its bound scheduler, or inline when it is unbound. A
// contract violation inside t is reported as an execution failure.
func drive[T any](t *Task[T]) (T, error) {
	if t.sched == nil {
		return scheduler.Guard(t.Wait)
	}
	return t.Schedule(t.sched).Wait()
}
