// Package scheduler decides how deferred work is physically executed.
//
// A Scheduler runs a closure on one of three backends: inline on the
// caller's goroutine (Sync), on a fresh goroutine per job (Thread), or on a
// bounded ThreadPool that queues excess jobs in FIFO order (Pool). Every run
// returns a Handle that resolves exactly once to the closure's value, its
// error, or an ExecutionFailure when the closure panicked. The failure
// convention is the same on every backend.
//
// Schedulers are plain values created at startup and passed to the code that
// needs them; there is no package-level default instance.
package scheduler
