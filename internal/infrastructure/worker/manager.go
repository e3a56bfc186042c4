package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Worker is a background loop owned by the container
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

// Manager runs the registered background loops as one unit.
// Workers stop in reverse start order.
type Manager struct {
	logger *zap.Logger

	mu      sync.Mutex
	workers []Worker
	started []Worker
	cancel  context.CancelFunc
}

// NewManager returns a manager with no workers
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register queues w for the next Start
func (m *Manager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = append(m.workers, w)
	m.logger.Debug("Worker registered", zap.String("worker", w.Name()))
}

// Start launches every registered worker. If one fails, the ones already
// running are stopped again and the start error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return fmt.Errorf("workers already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	for _, w := range m.workers {
		if err := w.Start(runCtx); err != nil {
			cancel()
			stopErr := stopInReverse(m.started, m.logger)
			m.started = nil
			return errors.Join(fmt.Errorf("start worker %s: %w", w.Name(), err), stopErr)
		}
		m.started = append(m.started, w)
		m.logger.Info("Worker started", zap.String("worker", w.Name()))
	}
	m.cancel = cancel
	return nil
}

// Stop cancels the shared context and stops the running workers.
// Stopping a manager that is not running is a no-op.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return nil
	}

	m.cancel()
	m.cancel = nil
	err := stopInReverse(m.started, m.logger)
	m.started = nil
	return err
}

func stopInReverse(workers []Worker, logger *zap.Logger) error {
	var errs []error
	for i := len(workers) - 1; i >= 0; i-- {
		w := workers[i]
		if err := w.Stop(); err != nil {
			logger.Error("Worker stop failed", zap.String("worker", w.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("stop worker %s: %w", w.Name(), err))
			continue
		}
		logger.Info("Worker stopped", zap.String("worker", w.Name()))
	}
	return errors.Join(errs...)
}

// Count returns the number of registered workers
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}

// Running reports whether Start succeeded and Stop has not been called since
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}
