package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func backends() map[string]*Scheduler {
	return map[string]*Scheduler{
		"sync":   NewSync(),
		"thread": NewThread(),
		"pool":   NewPool(2),
	}
}

func TestRunReturnsValue(t *testing.T) {
	t.Parallel()
	for name, s := range backends() {
		h := Run(s, func() (int, error) { return 42, nil })
		v, err := h.Wait()
		if err != nil || v != 42 {
			t.Fatalf("%s: got (%d, %v), want (42, nil)", name, v, err)
		}
	}
}

func TestRunReturnsClosureError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	for name, s := range backends() {
		_, err := Run(s, func() (int, error) { return 0, boom }).Wait()
		if !errors.Is(err, boom) {
			t.Fatalf("%s: expected boom, got %v", name, err)
		}
		if IsExecutionFailure(err) {
			t.Fatalf("%s: plain error reported as execution failure", name)
		}
	}
}

func TestPanicIsExecutionFailureOnEveryBackend(t *testing.T) {
	t.Parallel()
	for name, s := range backends() {
		_, err := Run(s, func() (int, error) { panic("panic-value") }).Wait()
		var ef *ExecutionFailure
		if !errors.As(err, &ef) {
			t.Fatalf("%s: expected *ExecutionFailure, got %v", name, err)
		}
		if ef.Value != "panic-value" || ef.Stack == "" {
			t.Fatalf("%s: unexpected failure payload %#v", name, ef)
		}
	}
}

func TestPanicWithErrorUnwraps(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	_, err := Run(NewThread(), func() (int, error) { panic(boom) }).Wait()
	if !errors.Is(err, boom) {
		t.Fatalf("expected failure to unwrap to boom, got %v", err)
	}
}

func TestSyncResolvesBeforeReturn(t *testing.T) {
	t.Parallel()
	ran := false
	h := Run(NewSync(), func() (bool, error) {
		ran = true
		return true, nil
	})
	if !ran || !h.Ready() {
		t.Fatal("sync scheduler must run the closure before Run returns")
	}
	_, _ = h.Wait()
}

func TestHandleSecondWaitIsConsumed(t *testing.T) {
	t.Parallel()
	h := Run(NewThread(), func() (string, error) { return "ok", nil })
	if v, err := h.Wait(); err != nil || v != "ok" {
		t.Fatalf("first wait: got (%q, %v)", v, err)
	}
	if _, err := h.Wait(); !errors.Is(err, ErrConsumed) {
		t.Fatalf("second wait: expected ErrConsumed, got %v", err)
	}
}

func TestHandleWaitBlocksUntilResolved(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	h := Run(NewThread(), func() (int, error) {
		<-release
		return 7, nil
	})
	if h.Ready() {
		t.Fatal("handle resolved before closure finished")
	}
	time.AfterFunc(20*time.Millisecond, func() { close(release) })
	start := time.Now()
	v, err := h.Wait()
	if err != nil || v != 7 {
		t.Fatalf("got (%d, %v), want (7, nil)", v, err)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Fatal("Wait returned before the closure finished")
	}
}

func TestHandlesKeepSubmissionCorrelation(t *testing.T) {
	t.Parallel()
	s := NewPool(8)
	handles := make([]*Handle[int], 10)
	for i := range handles {
		handles[i] = Run(s, func() (int, error) {
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return i, nil
		})
	}
	for i, h := range handles {
		if v, err := h.Wait(); err != nil || v != i {
			t.Fatalf("handle %d: got (%d, %v)", i, v, err)
		}
	}
}

func TestNilSchedulerRunsOnGoroutine(t *testing.T) {
	t.Parallel()
	v, err := Run(nil, func() (int, error) { return 1, nil }).Wait()
	if err != nil || v != 1 {
		t.Fatalf("got (%d, %v)", v, err)
	}
	if OrThread(nil).Backend() != Thread {
		t.Fatal("nil scheduler should fall back to Thread")
	}
}

func TestSpawn(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	var n atomic.Int32
	s := NewPool(3)
	for i := 0; i < 9; i++ {
		wg.Add(1)
		s.Spawn(func() {
			defer wg.Done()
			n.Add(1)
		})
	}
	wg.Wait()
	if n.Load() != 9 {
		t.Fatalf("expected 9 spawned jobs, got %d", n.Load())
	}
}

func TestDefaultIsPool(t *testing.T) {
	t.Parallel()
	s := NewDefault()
	if s.Backend() != Pool || s.ThreadPool() == nil {
		t.Fatal("default scheduler should be pool-backed")
	}
	if s.ThreadPool().Stats().Bound < 8 {
		t.Fatalf("default pool too small: %d", s.ThreadPool().Stats().Bound)
	}
}

func TestCopiesShareThreadPool(t *testing.T) {
	t.Parallel()
	s := NewPool(1)
	c := *s
	if c.ThreadPool() != s.ThreadPool() {
		t.Fatal("copied scheduler must share its pool")
	}
}

type countObserver struct {
	submitted atomic.Int64
	started   atomic.Int64
	finished  atomic.Int64
	panicked  atomic.Int64
	errored   atomic.Int64
}

func (o *countObserver) JobSubmitted(JobInfo) { o.submitted.Add(1) }
func (o *countObserver) JobStarted(JobInfo)   { o.started.Add(1) }
func (o *countObserver) JobFinished(_ JobInfo, _ time.Duration, err error, panicked bool) {
	o.finished.Add(1)
	if err != nil {
		o.errored.Add(1)
	}
	if panicked {
		o.panicked.Add(1)
	}
}

func TestObserverHooks(t *testing.T) {
	t.Parallel()
	obs := &countObserver{}
	s := NewPool(2, WithObserver(obs), WithName("workers"))
	if s.Name() != "workers" {
		t.Fatalf("unexpected name %q", s.Name())
	}
	h1 := Run(s, func() (int, error) { return 1, nil })
	h2 := Run(s, func() (int, error) { panic("x") })
	h3 := Run(s, func() (int, error) { return 0, errors.New("e") })
	if h1.ID() == "" || h1.ID() == h2.ID() {
		t.Fatal("observed jobs need distinct ids")
	}
	_, _ = h1.Wait()
	_, _ = h2.Wait()
	_, _ = h3.Wait()
	if obs.submitted.Load() != 3 || obs.started.Load() != 3 || obs.finished.Load() != 3 {
		t.Fatalf("unexpected observer counts: submitted=%d started=%d finished=%d",
			obs.submitted.Load(), obs.started.Load(), obs.finished.Load())
	}
	if obs.panicked.Load() != 1 || obs.errored.Load() != 2 {
		t.Fatalf("unexpected failure counts: panicked=%d errored=%d",
			obs.panicked.Load(), obs.errored.Load())
	}
}

func TestObserversFanOut(t *testing.T) {
	t.Parallel()
	a, b := &countObserver{}, &countObserver{}
	s := NewThread(WithObserver(Observers{a, nil, b}))
	_, _ = Run(s, func() (int, error) { return 0, nil }).Wait()
	for _, o := range []*countObserver{a, b} {
		if o.submitted.Load() != 1 || o.started.Load() != 1 || o.finished.Load() != 1 {
			t.Fatal("every observer should see every event")
		}
	}
}

func TestRecoveredPanicIsReportedAsPanic(t *testing.T) {
	t.Parallel()
	obs := &countObserver{}
	s := NewThread(WithObserver(obs))
	_, err := Run(s, func() (int, error) {
		return Guard(func() (int, error) { panic("inner") })
	}).Wait()
	if !IsExecutionFailure(err) {
		t.Fatalf("expected execution failure, got %v", err)
	}
	if obs.panicked.Load() != 1 {
		t.Fatalf("expected the observer to see a panic, got panicked=%d", obs.panicked.Load())
	}
}
