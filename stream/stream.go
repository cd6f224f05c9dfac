package stream

import (
	"iter"
	"sync/atomic"

	"github.com/NetPo4ki/go-smoke/channel"
	"github.com/NetPo4ki/go-smoke/scheduler"
)

// Sender feeds values into a stream. Unlike a task sender it may be used any
// number of times, and cloned for concurrent producers. Every clone must be
// done sending before the stream closure returns.
type Sender[T any] struct {
	tx *channel.Sender[T]
}

// Send delivers v, blocking while the reader is behind. It returns
// channel.ErrDelivery once the reader has been dropped.
func (s *Sender[T]) Send(v T) error { return s.tx.Send(v) }

// Clone returns another sender on the same stream.
func (s *Sender[T]) Clone() *Sender[T] { return &Sender[T]{tx: s.tx.Clone()} }

// Dropped reports whether the reader has gone away.
func (s *Sender[T]) Dropped() bool { return s.tx.Dropped() }

// Stream is a deferred computation sending 0..N values of type T.
type Stream[T any] struct {
	fn   func(*Sender[T]) error
	used atomic.Bool
}

// New returns a stream that runs fn when read.
func New[T any](fn func(*Sender[T]) error) *Stream[T] {
	if fn == nil {
		panic("stream: nil closure")
	}
	return &Stream[T]{fn: fn}
}

// Read drives the stream on a new goroutine and returns its receiver. A bound
// of zero hands values over one at a time; a positive bound lets the producer
// run that many values ahead. Reading a stream twice yields a receiver that
// is already closed with scheduler.ErrConsumed.
func (s *Stream[T]) Read(bound int) *channel.Receiver[T] {
	tx, rx := channel.New[T](bound)
	s.drive(tx)
	return rx
}

// ReadUnbounded is like Read but the producer never waits for the reader.
func (s *Stream[T]) ReadUnbounded() *channel.Receiver[T] {
	tx, rx := channel.NewUnbounded[T]()
	s.drive(tx)
	return rx
}

// Collect reads the whole stream at rendezvous and returns its values with
// the producer's error.
func (s *Stream[T]) Collect() ([]T, error) { return s.Read(0).Collect() }

func (s *Stream[T]) drive(tx *channel.Sender[T]) {
	if !s.used.CompareAndSwap(false, true) {
		tx.Close(scheduler.ErrConsumed)
		return
	}
	go func() {
		_, err := scheduler.Guard(func() (struct{}, error) {
			return struct{}{}, s.fn(&Sender[T]{tx: tx})
		})
		tx.Close(err)
	}()
}

// Filter returns a stream of the values of s for which keep returns true.
func (s *Stream[T]) Filter(keep func(T) bool) *Stream[T] {
	return New(func(out *Sender[T]) error {
		rx := s.Read(0)
		defer rx.Drop()
		for v := range rx.All() {
			if !keep(v) {
				continue
			}
			if err := out.Send(v); err != nil {
				return err
			}
		}
		return rx.Err()
	})
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Range returns a stream of start, start+1, ..., end-1.
func Range[N integer](start, end N) *Stream[N] {
	return New(func(out *Sender[N]) error {
		for n := start; n < end; n++ {
			if err := out.Send(n); err != nil {
				return err
			}
		}
		return nil
	})
}

// FromSlice returns a stream of the elements of items in order.
func FromSlice[T any](items []T) *Stream[T] {
	return New(func(out *Sender[T]) error {
		for _, v := range items {
			if err := out.Send(v); err != nil {
				return err
			}
		}
		return nil
	})
}

// FromSeq returns a stream of the values yielded by seq.
func FromSeq[T any](seq iter.Seq[T]) *Stream[T] {
	return New(func(out *Sender[T]) error {
		for v := range seq {
			if err := out.Send(v); err != nil {
				return err
			}
		}
		return nil
	})
}
