package scheduler

import "sync"

// ThreadPool runs submitted closures on goroutines while never letting more
// than Bound of them execute at once. Excess submissions wait in FIFO order.
//
// The pool does not recover panics; a panicking job crashes the process like
// any other goroutine. Scheduler wraps its jobs so this never happens there.
type ThreadPool struct {
	mu        sync.Mutex
	queue     []func()
	bound     int
	active    int
	submitted int64
	completed int64
}

// PoolStats is a point-in-time snapshot of a ThreadPool.
type PoolStats struct {
	Bound     int
	Active    int
	Queued    int
	Submitted int64
	Completed int64
}

// NewThreadPool returns a pool running at most bound jobs concurrently.
// It panics if bound <= 0.
func NewThreadPool(bound int) *ThreadPool {
	if bound <= 0 {
		panic("scheduler: NewThreadPool requires bound > 0")
	}
	return &ThreadPool{bound: bound}
}

// Submit queues fn and starts it if a slot is free. It never blocks.
func (p *ThreadPool) Submit(fn func()) {
	p.mu.Lock()
	p.queue = append(p.queue, fn)
	p.submitted++
	p.mu.Unlock()
	p.process()
}

// process starts queued jobs while slots are free. It is a no-op when the
// pool is saturated or the queue is empty, so any goroutine may call it.
func (p *ThreadPool) process() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 || p.active >= p.bound {
			p.mu.Unlock()
			return
		}
		fn := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.active++
		p.mu.Unlock()

		go p.run(fn)
	}
}

func (p *ThreadPool) run(fn func()) {
	defer func() {
		p.mu.Lock()
		p.active--
		p.completed++
		p.mu.Unlock()
		p.process()
	}()
	fn()
}

// Stats returns a snapshot of the pool counters.
func (p *ThreadPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Bound:     p.bound,
		Active:    p.active,
		Queued:    len(p.queue),
		Submitted: p.submitted,
		Completed: p.completed,
	}
}
