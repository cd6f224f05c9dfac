// Package stream provides Stream, a deferred producer of zero or more values.
//
// A stream runs when it is read. Read and ReadUnbounded start the producing
// closure on its own goroutine and hand back a channel.Receiver. Dropping
// the receiver is the only way to stop a producer early: its next Send
// returns channel.ErrDelivery and a well-behaved closure returns at once.
//
// Map, Filter and Merge build new streams on top of existing ones; Fold
// reduces a stream into a task.Task. Like tasks, streams are single-use.
package stream
