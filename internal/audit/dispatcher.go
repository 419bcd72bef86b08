// dispatcher.go - Detached best-effort audit tasks

package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
	"github.com/bosocmputer/medicine_scan_gemini/internal/metrics"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Go after Shutdown has started
var ErrClosed = errors.New("audit dispatcher is shut down")

// Task is one unit of audit work. The context carries the per-task timeout.
type Task func(ctx context.Context) error

// Dispatcher runs audit tasks detached from the request that created them. Outcomes are
// visible only through logs and metrics; callers never wait on a task.
type Dispatcher struct {
	taskTimeout time.Duration

	baseCtx   context.Context
	cancelAll context.CancelFunc

	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// NewDispatcher creates a dispatcher whose tasks each run under taskTimeout
func NewDispatcher(taskTimeout time.Duration) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		taskTimeout: taskTimeout,
		baseCtx:     ctx,
		cancelAll:   cancel,
	}
}

// Go starts task in the background. It never blocks on the task itself.
func (d *Dispatcher) Go(name string, task Task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.RecordAuditTask(name, "rejected")
		logger.WithField("task", name).Warn("Audit task dropped: dispatcher is shut down")
		return ErrClosed
	}

	d.wg.Add(1)
	d.inFlight.Add(1)
	go d.run(name, task)
	return nil
}

func (d *Dispatcher) run(name string, task Task) {
	defer d.wg.Done()
	defer d.inFlight.Add(-1)

	ctx, cancel := context.WithTimeout(d.baseCtx, d.taskTimeout)
	defer cancel()

	start := time.Now()
	err := safeRun(ctx, task)
	log := logger.WithFields(logrus.Fields{
		"task":        name,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if err != nil {
		metrics.RecordAuditTask(name, "failed")
		log.WithError(err).Error("Audit task failed")
		return
	}
	metrics.RecordAuditTask(name, "succeeded")
	log.Debug("Audit task completed")
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit task panicked: %v", r)
		}
	}()
	return task(ctx)
}

// InFlight reports how many tasks are still running
func (d *Dispatcher) InFlight() int64 {
	return d.inFlight.Load()
}

// Shutdown stops accepting tasks and waits for running ones until ctx is done. Tasks
// still running at that point are cancelled and ctx.Err() is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancelAll()
		return nil
	case <-ctx.Done():
		pending := d.InFlight()
		d.cancelAll()
		logger.WithField("pending_tasks", pending).Warn("Audit shutdown grace expired, cancelling pending tasks")
		return ctx.Err()
	}
}
