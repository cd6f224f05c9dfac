package stream

import (
	"golang.org/x/sync/errgroup"

	"github.com/NetPo4ki/go-smoke/channel"
	"github.com/NetPo4ki/go-smoke/task"
)

// Map returns a stream of f applied to every value of s, in order.
func Map[T, U any](s *Stream[T], f func(T) U) *Stream[U] {
	return New(func(out *Sender[U]) error {
		rx := s.Read(0)
		defer rx.Drop()
		for v := range rx.All() {
			if err := out.Send(f(v)); err != nil {
				return err
			}
		}
		return rx.Err()
	})
}

// Fold returns a task that reads s to the end and left-folds its values into
// init in arrival order. An error from s fails the task.
func Fold[T, A any](s *Stream[T], init A, f func(A, T) A) *task.Task[A] {
	return task.New(func(out *task.Sender[A]) error {
		rx := s.Read(0)
		defer rx.Drop()
		acc := init
		for v := range rx.All() {
			acc = f(acc, v)
		}
		if err := rx.Err(); err != nil {
			return err
		}
		return out.Send(acc)
	})
}

// Merge returns a stream of the values of every stream in streams, in the
// order they arrive. Each source keeps its own order. The first source to
// fail drops all the others and its error becomes the merged stream's error.
func Merge[T any](streams ...*Stream[T]) *Stream[T] {
	return New(func(out *Sender[T]) error {
		rxs := make([]*channel.Receiver[T], len(streams))
		for i, s := range streams {
			rxs[i] = s.Read(0)
		}
		dropAll := func() {
			for _, rx := range rxs {
				rx.Drop()
			}
		}
		var g errgroup.Group
		for _, rx := range rxs {
			relay := out.Clone()
			g.Go(func() error {
				defer rx.Drop()
				for v := range rx.All() {
					if err := relay.Send(v); err != nil {
						dropAll()
						return err
					}
				}
				if err := rx.Err(); err != nil {
					dropAll()
					return err
				}
				return nil
			})
		}
		return g.Wait()
	})
}
