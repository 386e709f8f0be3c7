package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingSweep struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweep) Prune(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 2, c.err
}

func (c *countingSweep) ExpireInvites(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestSweeper_RunsOnInterval(t *testing.T) {
	sweep := &countingSweep{}
	s := NewSessionSweeper(sweep, 10*time.Millisecond)

	s.Start()
	deadline := time.Now().Add(2 * time.Second)
	for sweep.calls.Load() < 2 {
		if time.Now().After(deadline) {
			s.Stop()
			t.Fatalf("expected at least 2 sweeps, got %d", sweep.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	if s.IsRunning() {
		t.Error("expected stopped sweeper")
	}
}

func TestSweeper_StartStopIdempotent(t *testing.T) {
	s := NewInviteSweeper(&countingSweep{}, time.Hour)

	s.Stop() // never started
	s.Start()
	s.Start()
	if !s.IsRunning() {
		t.Fatal("expected running sweeper")
	}
	s.Stop()
	s.Stop()

	// Restart after stop
	s.Start()
	s.Stop()
}

func TestSweeper_FailureKeepsRunning(t *testing.T) {
	sweep := &countingSweep{err: errors.New("db down")}
	s := NewSweeper("test", sweep.Prune, 5*time.Millisecond)

	s.Start()
	deadline := time.Now().Add(2 * time.Second)
	for sweep.calls.Load() < 3 {
		if time.Now().After(deadline) {
			s.Stop()
			t.Fatalf("expected retries after failure, got %d calls", sweep.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
}

func TestSweeper_StopCancelsSlowSweep(t *testing.T) {
	started := make(chan struct{}, 1)
	s := NewSweeper("slow", func(ctx context.Context) (int, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return 0, ctx.Err()
	}, 5*time.Millisecond)

	s.Start()
	<-started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the in-flight sweep")
	}
}

func TestSweeper_RunOnce(t *testing.T) {
	sweep := &countingSweep{}
	s := NewInviteSweeper(sweep, 0)

	n, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || sweep.calls.Load() != 1 {
		t.Errorf("expected one sweep of 1 row, got n=%d calls=%d", n, sweep.calls.Load())
	}
	if s.interval != 15*time.Minute {
		t.Errorf("expected 15m default, got %v", s.interval)
	}
}
