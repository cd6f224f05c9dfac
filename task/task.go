package task

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/NetPo4ki/go-smoke/channel"
	"github.com/NetPo4ki/go-smoke/scheduler"
)

// ErrAlreadySent is the panic value raised by a second Sender.Send. It reaches
// the caller wrapped in a *scheduler.ExecutionFailure.
var ErrAlreadySent = errors.New("task: value already sent")

const errNoValue = "task: closure returned without sending a value"

// Sender delivers the single result of a task.
type Sender[T any] struct {
	tx   *channel.Sender[T]
	sent atomic.Bool
}

// Send delivers v. It panics with ErrAlreadySent when called twice.
func (s *Sender[T]) Send(v T) error {
	if !s.sent.CompareAndSwap(false, true) {
		panic(ErrAlreadySent)
	}
	return s.tx.Send(v)
}

// Task is a deferred computation producing one value of type T. The zero
// value is not usable; build tasks with New or Scheduled.
type Task[T any] struct {
	fn    func(*Sender[T]) error
	sched *scheduler.Scheduler
	used  atomic.Bool
}

// New returns an unbound task. Nothing runs until the task is driven.
func New[T any](fn func(*Sender[T]) error) *Task[T] {
	return Scheduled(nil, fn)
}

// Scheduled returns a task bound to s. Combinators use s when they need to run
// the task off the calling goroutine. A nil s leaves the task unbound.
func Scheduled[T any](s *scheduler.Scheduler, fn func(*Sender[T]) error) *Task[T] {
	if fn == nil {
		panic("task: nil closure")
	}
	return &Task[T]{fn: fn, sched: s}
}

// Value returns a task that delivers v.
func Value[T any](v T) *Task[T] {
	return New(func(s *Sender[T]) error { return s.Send(v) })
}

// Fail returns a task that fails with err.
func Fail[T any](err error) *Task[T] {
	return New(func(*Sender[T]) error { return err })
}

// Delay returns a task that sleeps for d on whichever goroutine drives it.
func Delay(d time.Duration) *Task[struct{}] {
	return New(func(s *Sender[struct{}]) error {
		time.Sleep(d)
		return s.Send(struct{}{})
	})
}

// Scheduler returns the scheduler the task is bound to, or nil.
func (t *Task[T]) Scheduler() *scheduler.Scheduler { return t.sched }

// Wait drives the task on the calling goroutine and returns its value.
//
// An error returned by the closure wins over a value it may have sent. A
// panic in the closure is returned as a *scheduler.ExecutionFailure. Waiting
// on a task that was already driven returns scheduler.ErrConsumed.
func (t *Task[T]) Wait() (T, error) {
	var zero T
	if !t.used.CompareAndSwap(false, true) {
		return zero, scheduler.ErrConsumed
	}
	tx, rx := channel.New[T](1)
	defer rx.Drop()
	_, err := scheduler.Guard(func() (struct{}, error) {
		return struct{}{}, t.fn(&Sender[T]{tx: tx})
	})
	tx.Close(err)
	if err != nil {
		return zero, err
	}
	v, ok := rx.Recv()
	if !ok {
		panic(errNoValue)
	}
	return v, nil
}

// Schedule submits the task to s and returns a handle to its result. A nil s
// runs the task on its own goroutine.
func (t *Task[T]) Schedule(s *scheduler.Scheduler) *scheduler.Handle[T] {
	return scheduler.Run(s, t.Wait)
}
