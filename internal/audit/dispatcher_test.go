package audit

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsTasksDetached(t *testing.T) {
	d := NewDispatcher(time.Second)
	release := make(chan struct{})
	var ran atomic.Bool

	start := time.Now()
	require.NoError(t, d.Go("upload", func(ctx context.Context) error {
		<-release
		ran.Store(true)
		return nil
	}))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, int64(1), d.InFlight())

	close(release)
	require.NoError(t, d.Shutdown(context.Background()))
	assert.True(t, ran.Load())
	assert.Equal(t, int64(0), d.InFlight())
}

func TestDispatcher_FailuresAndPanicsAreAbsorbed(t *testing.T) {
	d := NewDispatcher(time.Second)
	require.NoError(t, d.Go("sheets", func(ctx context.Context) error {
		return errors.New("permission denied")
	}))
	require.NoError(t, d.Go("drive", func(ctx context.Context) error {
		panic("boom")
	}))
	assert.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_TaskTimeout(t *testing.T) {
	d := NewDispatcher(20 * time.Millisecond)
	var ctxErr atomic.Value
	require.NoError(t, d.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		ctxErr.Store(ctx.Err())
		return ctx.Err()
	}))

	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, context.DeadlineExceeded, ctxErr.Load())
}

func TestDispatcher_ShutdownGraceExpires(t *testing.T) {
	d := NewDispatcher(time.Minute)
	cancelled := make(chan struct{})
	require.NoError(t, d.Go("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("pending task was not cancelled after grace period")
	}
}

func TestDispatcher_RejectsAfterShutdown(t *testing.T) {
	d := NewDispatcher(time.Second)
	require.NoError(t, d.Shutdown(context.Background()))

	err := d.Go("late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}
