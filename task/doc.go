// Package task provides Task, a deferred computation that delivers exactly
// one value.
//
// Building a Task does no work. A task runs when it is driven: by Wait on the
// calling goroutine, by Schedule on a scheduler.Scheduler, or by a combinator
// (Map, Then, All, Settle, Async) that drives it as part of its own body.
// Each task can be driven once; driving it again yields
// scheduler.ErrConsumed.
//
// The closure of a task must call Sender.Send exactly once before it returns
// nil. Returning nil without sending is a programming error and panics;
// sending twice is recovered into a scheduler.ExecutionFailure wrapping
// ErrAlreadySent.
//
//	greeting := task.Map(task.Delay(10*time.Millisecond), func(struct{}, error) string {
//	    return "hello"
//	})
//	v, err := greeting.Wait()
package task
