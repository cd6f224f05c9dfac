package channel

import (
	"errors"
	"iter"
	"sync"
	"sync/atomic"
)

// ErrDelivery is returned by Send when the receiving end has been dropped.
var ErrDelivery = errors.New("channel: receiver dropped")

type state[T any] struct {
	in   chan T
	out  <-chan T
	done chan struct{}

	dropOnce  sync.Once
	closeOnce sync.Once
	closed    atomic.Bool

	mu  sync.Mutex
	err error
}

// Sender is the producing end of a channel. It may be cloned for concurrent
// producers; all clones feed the same receiver.
type Sender[T any] struct {
	st *state[T]
}

// Receiver is the consuming end of a channel.
type Receiver[T any] struct {
	st *state[T]
}

// New returns a channel holding up to bound undelivered values. A bound of
// zero is a rendezvous channel: every Send blocks until the value is received.
func New[T any](bound int) (*Sender[T], *Receiver[T]) {
	if bound < 0 {
		bound = 0
	}
	in := make(chan T, bound)
	st := &state[T]{in: in, out: in, done: make(chan struct{})}
	return &Sender[T]{st: st}, &Receiver[T]{st: st}
}

// NewUnbounded returns a channel whose Send never blocks on a slow consumer.
// Values are queued in memory by a pump goroutine until received or dropped.
func NewUnbounded[T any]() (*Sender[T], *Receiver[T]) {
	in := make(chan T)
	out := make(chan T)
	st := &state[T]{in: in, out: out, done: make(chan struct{})}
	go pump(in, out, st.done)
	return &Sender[T]{st: st}, &Receiver[T]{st: st}
}

func pump[T any](in <-chan T, out chan<- T, done <-chan struct{}) {
	defer close(out)
	var queue []T
	for {
		if in == nil && len(queue) == 0 {
			return
		}
		var (
			send chan<- T
			head T
		)
		if len(queue) > 0 {
			send = out
			head = queue[0]
		}
		select {
		case v, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, v)
		case send <- head:
			var zero T
			queue[0] = zero
			queue = queue[1:]
		case <-done:
			return
		}
	}
}

// Send delivers v, blocking while the channel is full. It returns ErrDelivery
// once the receiver has been dropped; producers should stop on that error.
func (s *Sender[T]) Send(v T) error {
	if s.st.closed.Load() {
		panic("channel: send on closed sender")
	}
	select {
	case <-s.st.done:
		return ErrDelivery
	default:
	}
	select {
	case s.st.in <- v:
		return nil
	case <-s.st.done:
		return ErrDelivery
	}
}

// Clone returns another producer handle on the same channel.
func (s *Sender[T]) Clone() *Sender[T] { return &Sender[T]{st: s.st} }

// Dropped reports whether the receiver has gone away.
func (s *Sender[T]) Dropped() bool {
	select {
	case <-s.st.done:
		return true
	default:
		return false
	}
}

// Close ends the channel and records the producer's terminal error, which
// the receiver reports through Err once drained. Only the first call has an
// effect. Close must not race with Send on any clone.
func (s *Sender[T]) Close(err error) {
	s.st.closeOnce.Do(func() {
		s.st.mu.Lock()
		s.st.err = err
		s.st.mu.Unlock()
		s.st.closed.Store(true)
		close(s.st.in)
	})
}

// Recv blocks for the next value. ok is false once the channel is closed and
// drained, or after Drop.
func (r *Receiver[T]) Recv() (v T, ok bool) {
	select {
	case <-r.st.done:
		return v, false
	default:
	}
	select {
	case v, ok = <-r.st.out:
		return v, ok
	case <-r.st.done:
		return v, false
	}
}

// C exposes the underlying channel for use in select statements.
func (r *Receiver[T]) C() <-chan T { return r.st.out }

// All iterates values until the channel is drained. Breaking out of the loop
// drops the receiver.
func (r *Receiver[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := r.Recv()
			if !ok {
				return
			}
			if !yield(v) {
				r.Drop()
				return
			}
		}
	}
}

// Collect drains the channel into a slice and returns it with Err.
func (r *Receiver[T]) Collect() ([]T, error) {
	var out []T
	for v := range r.All() {
		out = append(out, v)
	}
	return out, r.Err()
}

// Drop releases the receiver. Pending and future sends fail with
// ErrDelivery. Safe to call more than once.
func (r *Receiver[T]) Drop() {
	r.st.dropOnce.Do(func() { close(r.st.done) })
}

// Err returns the error the producer closed the channel with. ErrDelivery is
// not reported: it only echoes a drop somewhere downstream.
func (r *Receiver[T]) Err() error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if errors.Is(r.st.err, ErrDelivery) {
		return nil
	}
	return r.st.err
}
