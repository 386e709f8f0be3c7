package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweepFunc removes stale rows and reports how many it touched
type SweepFunc func(ctx context.Context) (int, error)

// SessionPruner deletes expired login sessions
type SessionPruner interface {
	Prune(ctx context.Context) (int, error)
}

// InviteExpirer marks pending invites past their TTL as expired
type InviteExpirer interface {
	ExpireInvites(ctx context.Context) (int, error)
}

// Sweeper runs a SweepFunc on a fixed interval
type Sweeper struct {
	name     string
	sweep    SweepFunc
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewSweeper creates a sweeper job. A zero interval defaults to one hour.
func NewSweeper(name string, sweep SweepFunc, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		name:     name,
		sweep:    sweep,
		interval: interval,
		timeout:  2 * time.Minute,
	}
}

// NewSessionSweeper prunes expired sessions, hourly by default
func NewSessionSweeper(sessions SessionPruner, interval time.Duration) *Sweeper {
	return NewSweeper("session_sweeper", sessions.Prune, interval)
}

// NewInviteSweeper expires stale couple invites, every 15 minutes by default
func NewInviteSweeper(invites InviteExpirer, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return NewSweeper("invite_expirer", invites.ExpireInvites, interval)
}

// Start begins the sweep loop. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})

	s.wg.Add(1)
	go s.run(s.stopCh)
	slog.Info("job started", "job", s.name, "interval", s.interval)
}

// Stop halts the loop and waits for an in-flight sweep to finish
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("job stopped", "job", s.name)
}

// IsRunning returns whether the sweeper is running
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce runs a single sweep (for testing or manual trigger)
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	return s.sweep(ctx)
}

func (s *Sweeper) run(stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(stop)
		case <-stop:
			return
		}
	}
}

func (s *Sweeper) tick(stop <-chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// Abandon a slow sweep when Stop is called
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	n, err := s.sweep(ctx)
	if err != nil {
		slog.Error("job failed", "job", s.name, "error", err)
		return
	}
	if n > 0 {
		slog.Info("job swept rows", "job", s.name, "count", n)
	}
}
