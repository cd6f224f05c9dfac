package scheduler

import (
	"runtime"
	"time"

	"github.com/google/uuid"
)

type Backend int

const (
	Sync Backend = iota
	Thread
	Pool
)

func (b Backend) String() string {
	switch b {
	case Sync:
		return "sync"
	case Thread:
		return "thread"
	case Pool:
		return "pool"
	default:
		return "unknown"
	}
}

type Option func(*Options)

type Options struct {
	Name     string
	Observer Observer
}

func WithName(name string) Option { return func(o *Options) { o.Name = name } }

func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// Observer receives job lifecycle events. Implementations must be safe for
// concurrent use; hooks run on the job's goroutine.
type Observer interface {
	JobSubmitted(info JobInfo)
	JobStarted(info JobInfo)
	JobFinished(info JobInfo, dur time.Duration, err error, panicked bool)
}

// Observers fans every event out to each observer in order. Nil entries are
// skipped.
type Observers []Observer

func (obs Observers) JobSubmitted(info JobInfo) {
	for _, o := range obs {
		if o != nil {
			o.JobSubmitted(info)
		}
	}
}

func (obs Observers) JobStarted(info JobInfo) {
	for _, o := range obs {
		if o != nil {
			o.JobStarted(info)
		}
	}
}

func (obs Observers) JobFinished(info JobInfo, dur time.Duration, err error, panicked bool) {
	for _, o := range obs {
		if o != nil {
			o.JobFinished(info, dur, err, panicked)
		}
	}
}

// JobInfo describes one scheduled closure.
type JobInfo struct {
	ID        string
	Scheduler string
	Backend   Backend
	Submitted time.Time
}

// Scheduler executes closures on its backend. A *Scheduler may be shared
// freely; copies of the pointer share the same pool.
type Scheduler struct {
	backend Backend
	pool    *ThreadPool
	opts    Options
	obs     Observer
}

func newScheduler(b Backend, p *ThreadPool, optFns []Option) *Scheduler {
	s := &Scheduler{backend: b, pool: p, opts: Options{Name: b.String()}}
	for _, fn := range optFns {
		fn(&s.opts)
	}
	s.obs = s.opts.Observer
	return s
}

// NewSync returns a scheduler that runs every closure inline before Run
// returns.
func NewSync(optFns ...Option) *Scheduler { return newScheduler(Sync, nil, optFns) }

// NewThread returns a scheduler that starts one goroutine per closure.
func NewThread(optFns ...Option) *Scheduler { return newScheduler(Thread, nil, optFns) }

// NewPool returns a scheduler backed by a ThreadPool of n slots.
// It panics if n <= 0.
func NewPool(n int, optFns ...Option) *Scheduler {
	return newScheduler(Pool, NewThreadPool(n), optFns)
}

// NewDefault returns a pool scheduler sized to max(8, runtime.NumCPU()).
// Each call creates a new pool.
func NewDefault(optFns ...Option) *Scheduler {
	n := runtime.NumCPU()
	if n < 8 {
		n = 8
	}
	return NewPool(n, optFns...)
}

var threadScheduler = &Scheduler{backend: Thread, opts: Options{Name: Thread.String()}}

// OrThread returns s, or a stateless Thread scheduler when s is nil.
func OrThread(s *Scheduler) *Scheduler {
	if s == nil {
		return threadScheduler
	}
	return s
}

func (s *Scheduler) Backend() Backend { return s.backend }

func (s *Scheduler) Name() string { return s.opts.Name }

// ThreadPool returns the backing pool, or nil for Sync and Thread schedulers.
func (s *Scheduler) ThreadPool() *ThreadPool { return s.pool }

// Run executes fn on s and returns a handle to its result. A panic in fn
// resolves the handle with an *ExecutionFailure on every backend. A nil
// scheduler behaves as a Thread scheduler.
func Run[T any](s *Scheduler, fn func() (T, error)) *Handle[T] {
	s = OrThread(s)
	var info JobInfo
	if s.obs != nil {
		info = JobInfo{ID: uuid.NewString(), Scheduler: s.opts.Name, Backend: s.backend, Submitted: time.Now()}
		s.obs.JobSubmitted(info)
	}
	h := newHandle[T](info.ID)
	job := func() {
		var start time.Time
		if s.obs != nil {
			start = time.Now()
			s.obs.JobStarted(info)
		}
		v, panicked, err := guard(fn)
		// fn may have recovered the panic itself, as Task.Wait does.
		panicked = panicked || IsExecutionFailure(err)
		if s.obs != nil {
			s.obs.JobFinished(info, time.Since(start), err, panicked)
		}
		h.resolve(v, err)
	}
	switch s.backend {
	case Sync:
		job()
	case Pool:
		s.pool.Submit(job)
	default:
		go job()
	}
	return h
}

// Spawn runs fn on s without a result.
func (s *Scheduler) Spawn(fn func()) {
	Run(s, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}
