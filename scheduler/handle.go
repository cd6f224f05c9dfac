package scheduler

import "sync"

// Handle is a one-time wait token for a single scheduled closure.
type Handle[T any] struct {
	id string

	mu     sync.Mutex
	cond   *sync.Cond
	ready  bool
	waited bool
	val    T
	err    error
}

func newHandle[T any](id string) *Handle[T] {
	h := &Handle[T]{id: id}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Resolved returns a handle that already holds v and err.
func Resolved[T any](v T, err error) *Handle[T] {
	h := newHandle[T]("")
	h.resolve(v, err)
	return h
}

func (h *Handle[T]) resolve(v T, err error) {
	h.mu.Lock()
	if !h.ready {
		h.val, h.err, h.ready = v, err, true
	}
	h.mu.Unlock()
	h.cond.Broadcast()
}

// Wait blocks until the closure finished and returns its result. Only the
// first call observes the result; later calls return ErrConsumed.
func (h *Handle[T]) Wait() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.waited {
		var zero T
		return zero, ErrConsumed
	}
	h.waited = true
	for !h.ready {
		h.cond.Wait()
	}
	v, err := h.val, h.err
	var zero T
	h.val = zero
	return v, err
}

// Ready reports whether the result is available without blocking.
func (h *Handle[T]) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

// ID is the job identifier reported to observers; empty when the scheduler
// has no observer.
func (h *Handle[T]) ID() string { return h.id }
