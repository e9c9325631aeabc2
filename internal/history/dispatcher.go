package history

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned when work is submitted to a closed Dispatcher.
var ErrClosed = errors.New("dispatcher closed")

type job struct {
	name string
	run  func(ctx context.Context)
}

// Dispatcher runs store operations on a single background worker, in
// submission order. Submit never blocks the caller.
//
// Because there is exactly one worker, operations on the same URL can never
// run concurrently, and every job observes the effects of the jobs that
// were submitted before it.
type Dispatcher struct {
	mu     sync.Mutex
	queue  []job
	closed bool
	signal chan struct{}

	timeout time.Duration
	logger  *slog.Logger
	group   errgroup.Group
}

// NewDispatcher starts a worker. Each job gets its own context bounded by
// timeout; a zero timeout means no deadline.
func NewDispatcher(timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		signal:  make(chan struct{}, 1),
		timeout: timeout,
		logger:  logger,
	}
	d.group.Go(d.run)
	return d
}

// Submit queues fn. It returns false if the dispatcher is closed.
func (d *Dispatcher) Submit(name string, fn func(ctx context.Context)) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.queue = append(d.queue, job{name: name, run: fn})
	d.mu.Unlock()

	d.wake()
	return true
}

// Flush blocks until every job submitted before the call has finished.
func (d *Dispatcher) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !d.Submit("flush", func(context.Context) { close(done) }) {
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued jobs not yet started.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Close stops accepting work, lets the queued jobs finish and waits for the
// worker to exit.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wake()
	return d.group.Wait()
}

func (d *Dispatcher) wake() {
	select {
	case d.signal <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) next() (job, bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) == 0 {
		return job{}, false, d.closed
	}
	j := d.queue[0]
	d.queue[0] = job{}
	d.queue = d.queue[1:]
	return j, true, d.closed
}

func (d *Dispatcher) run() error {
	for {
		j, ok, closed := d.next()
		if ok {
			d.exec(j)
			continue
		}
		if closed {
			return nil
		}
		<-d.signal
	}
}

func (d *Dispatcher) exec(j job) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("store job panicked", "job", j.name, "panic", r)
		}
	}()

	j.run(ctx)
}
