package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yukikurage/taskflow-api/internal/logger"
)

// ErrDispatcherStopped is recorded for jobs submitted after Shutdown.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Job is a best-effort side effect. It must honour ctx cancellation.
type Job func(ctx context.Context) error

// Dispatcher runs side effects detached from the request that triggered
// them. Each job gets its own timeout; failures go to the dead-letter sink.
type Dispatcher struct {
	timeout time.Duration
	sink    DeadLetterSink
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A nil sink logs dead letters.
func NewDispatcher(timeout time.Duration, sink DeadLetterSink) *Dispatcher {
	if sink == nil {
		sink = LogSink{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		timeout: timeout,
		sink:    sink,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Go schedules job. name and payload identify it in the dead letter.
func (d *Dispatcher) Go(name string, payload interface{}, job Job) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.deadLetter(name, payload, ErrDispatcherStopped)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		if err := d.run(job); err != nil {
			d.deadLetter(name, payload, err)
			return
		}
		logger.Debug("Side effect completed", "job", name)
	}()
}

func (d *Dispatcher) run(job Job) (err error) {
	ctx := d.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return job(ctx)
}

func (d *Dispatcher) deadLetter(name string, payload interface{}, err error) {
	letter := DeadLetter{
		Job:      name,
		Payload:  payload,
		Error:    err.Error(),
		FailedAt: d.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if sinkErr := d.sink.Record(ctx, letter); sinkErr != nil {
		logger.Error("Failed to record dead letter", "job", name, "error", err, "sink_error", sinkErr)
	}
}

// Wait blocks until every scheduled job has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting jobs and waits for running ones. When ctx
// expires first the remaining jobs are cancelled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
