package errgroup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/NetPo4ki/go-smoke/scheduler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWithContextHappy(t *testing.T) {
	t.Parallel()
	g, _ := WithContext(context.Background(), nil)
	g.Go(func() error { return nil })
	g.Go(func() error { time.Sleep(10 * time.Millisecond); return nil })
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithContextErrorCancels(t *testing.T) {
	t.Parallel()
	g, gctx := WithContext(context.Background(), scheduler.NewThread())
	done := make(chan struct{})
	boom := errors.New("boom")
	g.Go(func() error { return boom })
	g.Go(func() error {
		select {
		case <-gctx.Done():
			close(done)
			return nil
		case <-time.After(250 * time.Millisecond):
			return errors.New("expected cancel propagation")
		}
	})
	if err := g.Wait(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	select {
	case <-done:
	case <-time.After(150 * time.Millisecond):
		t.Fatal("ctx was not canceled")
	}
	if cause := context.Cause(gctx); !errors.Is(cause, boom) {
		t.Fatalf("expected cause boom, got %v", cause)
	}
}

func TestWithContextParentDeadline(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	g, gctx := WithContext(ctx, nil)
	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})
	if err := g.Wait(); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestWithContextParentCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := WithContext(ctx, nil)
	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})
	cancel()
	if err := g.Wait(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPanicIsReported(t *testing.T) {
	t.Parallel()
	g, _ := WithContext(context.Background(), scheduler.NewPool(2))
	g.Go(func() error { panic("kaboom") })
	if err := g.Wait(); !scheduler.IsExecutionFailure(err) {
		t.Fatalf("expected execution failure, got %v", err)
	}
}

func TestPoolBoundsGroup(t *testing.T) {
	t.Parallel()
	g, _ := WithContext(context.Background(), scheduler.NewPool(2))
	var cur, peak atomic.Int32
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			c := cur.Add(1)
			for {
				p := peak.Load()
				if c <= p || peak.CompareAndSwap(p, c) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			cur.Add(-1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := peak.Load(); p > 2 {
		t.Fatalf("pool of 2 ran %d functions at once", p)
	}
}

func TestSyncSchedulerRunsInline(t *testing.T) {
	t.Parallel()
	g, _ := WithContext(context.Background(), scheduler.NewSync())
	ran := false
	g.Go(func() error { ran = true; return nil })
	if !ran {
		t.Fatal("sync scheduler should run Go inline")
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Go(nil)
}
