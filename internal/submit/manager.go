package submit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInFlight is returned when the same submission is already being processed.
	ErrInFlight = errors.New("submission already in progress")
	// ErrStopped is returned once the manager has been shut down.
	ErrStopped = errors.New("submission manager stopped")
)

// Manager runs form submissions as cancellable tasks and refuses a second
// submission under the same key until the first one has finished.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
	Cancel(key string) bool
	InFlight(key string) bool
}

type Config struct {
	// Delay is the processing pause before a submission is applied.
	Delay   time.Duration
	Timeout time.Duration
	Logger  *logrus.Logger
}

type manager struct {
	cfg Config

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	active map[string]*taskHandle
}

type taskHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config) Manager {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:    cfg,
		active: make(map[string]*taskHandle),
	}
}

func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.cfg.Logger.Infof("submission manager started, delay: %s", m.cfg.Delay)
	return nil
}

func (m *manager) Shutdown() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
	m.cfg.Logger.Info("submission manager stopped")
}

func (m *manager) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.ctx == nil || m.ctx.Err() != nil {
		m.mu.Unlock()
		return ErrStopped
	}
	if _, busy := m.active[key]; busy {
		m.mu.Unlock()
		m.cfg.Logger.Warnf("submission %s rejected: already in flight", key)
		return ErrInFlight
	}
	taskCtx, cancel := context.WithCancel(m.ctx)
	handle := &taskHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.active[key] = handle
	m.wg.Add(1)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.active, key)
		m.mu.Unlock()
		cancel()
		close(handle.done)
		m.wg.Done()
	}()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if m.cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		taskCtx, cancelTimeout = context.WithTimeout(taskCtx, m.cfg.Timeout)
		defer cancelTimeout()
	}

	if m.cfg.Delay > 0 {
		timer := time.NewTimer(m.cfg.Delay)
		defer timer.Stop()
		select {
		case <-taskCtx.Done():
			m.cfg.Logger.Infof("submission %s cancelled before processing", key)
			return taskCtx.Err()
		case <-timer.C:
		}
	}

	if err := fn(taskCtx); err != nil {
		m.cfg.Logger.WithError(err).Debugf("submission %s failed", key)
		return err
	}
	return nil
}

// Cancel aborts an in-flight submission and waits for it to return.
func (m *manager) Cancel(key string) bool {
	m.mu.Lock()
	handle, ok := m.active[key]
	m.mu.Unlock()
	if !ok {
		return false
	}
	handle.cancel()
	<-handle.done
	return true
}

func (m *manager) InFlight(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[key]
	return ok
}
