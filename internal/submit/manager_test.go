package submit

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func startManager(t *testing.T, cfg Config) Manager {
	t.Helper()
	cfg.Logger = quietLogger()
	m := NewManager(cfg)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Shutdown)
	return m
}

func TestManager_RunsSubmission(t *testing.T) {
	m := startManager(t, Config{})

	ran := false
	err := m.Do(context.Background(), "signup:j@x.com", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, m.InFlight("signup:j@x.com"))
}

func TestManager_PropagatesError(t *testing.T) {
	m := startManager(t, Config{})
	boom := errors.New("boom")

	err := m.Do(context.Background(), "k", func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestManager_RejectsDoubleSubmit(t *testing.T) {
	m := startManager(t, Config{})

	started := make(chan struct{})
	release := make(chan struct{})
	result := make(chan error, 1)
	go func() {
		result <- m.Do(context.Background(), "apply:vac-1:user-1", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.True(t, m.InFlight("apply:vac-1:user-1"))
	err := m.Do(context.Background(), "apply:vac-1:user-1", func(ctx context.Context) error {
		t.Fatal("second submission must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrInFlight)

	other := m.Do(context.Background(), "apply:vac-2:user-1", func(ctx context.Context) error { return nil })
	assert.NoError(t, other)

	close(release)
	require.NoError(t, <-result)

	assert.NoError(t, m.Do(context.Background(), "apply:vac-1:user-1", func(ctx context.Context) error { return nil }))
}

func TestManager_DelayCancelledByCaller(t *testing.T) {
	m := startManager(t, Config{Delay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := m.Do(ctx, "k", func(ctx context.Context) error {
		t.Fatal("cancelled submission must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_CancelByKey(t *testing.T) {
	m := startManager(t, Config{Delay: time.Hour})

	result := make(chan error, 1)
	go func() {
		result <- m.Do(context.Background(), "vacancy:user-1", func(ctx context.Context) error { return nil })
	}()

	require.Eventually(t, func() bool { return m.InFlight("vacancy:user-1") }, time.Second, time.Millisecond)
	assert.True(t, m.Cancel("vacancy:user-1"))
	assert.ErrorIs(t, <-result, context.Canceled)
	assert.False(t, m.Cancel("vacancy:user-1"))
}

func TestManager_ShutdownCancelsAndStops(t *testing.T) {
	m := NewManager(Config{Delay: time.Hour, Logger: quietLogger()})
	require.NoError(t, m.Start(context.Background()))

	result := make(chan error, 1)
	go func() {
		result <- m.Do(context.Background(), "k", func(ctx context.Context) error { return nil })
	}()
	require.Eventually(t, func() bool { return m.InFlight("k") }, time.Second, time.Millisecond)

	m.Shutdown()
	assert.ErrorIs(t, <-result, context.Canceled)
	assert.ErrorIs(t, m.Do(context.Background(), "k", func(ctx context.Context) error { return nil }), ErrStopped)
}

func TestManager_NotStarted(t *testing.T) {
	m := NewManager(Config{Logger: quietLogger()})
	err := m.Do(context.Background(), "k", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}
