package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStopWaitsForGoroutines(t *testing.T) {
	s := New(context.Background())

	var stopped atomic.Bool
	s.Go("worker", func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !stopped.Load() {
		t.Fatal("Stop returned before the goroutine exited")
	}
}

func TestCancelOnErrorPropagates(t *testing.T) {
	s := New(context.Background(), WithCancelOnError(true))

	boom := errors.New("boom")
	s.Go("failing", func(ctx context.Context) error { return boom })

	select {
	case <-s.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled after goroutine error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.Wait(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("Wait err = %v, want wrapped boom", err)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	s := New(context.Background(), WithCancelOnError(true))
	s.Go("panicky", func(ctx context.Context) error { panic("oops") })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err == nil {
		t.Fatal("panic must surface as error")
	}
}

func TestContextCanceledIsCleanStop(t *testing.T) {
	s := New(context.Background())
	s.Go("clean", func(ctx context.Context) error { return context.Canceled })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("context.Canceled must not count as failure, got %v", err)
	}
}

func TestGoRestartRestartsUntilCanceled(t *testing.T) {
	s := New(context.Background())

	var runs atomic.Int32
	s.GoRestart("flaky", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("transient")
	}, time.Millisecond, 2*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d runs before deadline", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err == nil {
		t.Fatal("restart loop failures must be recorded")
	}
}
