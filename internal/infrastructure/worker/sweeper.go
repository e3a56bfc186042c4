package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// IdleSweeper removes sessions that have been idle longer than maxIdle
type IdleSweeper interface {
	SweepIdle(ctx context.Context, maxIdle time.Duration) (int, error)
}

// SessionSweeper periodically drops abandoned chat sessions
type SessionSweeper struct {
	sweeper  IdleSweeper
	interval time.Duration
	maxIdle  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSessionSweeper creates a sweeper running every interval
func NewSessionSweeper(sweeper IdleSweeper, interval, maxIdle time.Duration, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		sweeper:  sweeper,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger,
	}
}

// Name returns the worker name
func (s *SessionSweeper) Name() string {
	return "session-sweeper"
}

// Start begins sweeping in the background until ctx ends or Stop is called
func (s *SessionSweeper) Start(ctx context.Context) error {
	if s.interval <= 0 || s.maxIdle <= 0 {
		return fmt.Errorf("sweep interval and max idle must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("session sweeper already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(ctx, s.stopCh, s.doneCh)

	s.logger.Info("Session sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("max_idle", s.maxIdle))
	return nil
}

// Stop ends the sweep loop and waits for it to exit
func (s *SessionSweeper) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	return nil
}

func (s *SessionSweeper) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	removed, err := s.sweeper.SweepIdle(ctx, s.maxIdle)
	if err != nil {
		s.logger.Error("Session sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("Idle sessions removed", zap.Int("count", removed))
	}
}
