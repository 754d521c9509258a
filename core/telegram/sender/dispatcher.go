// Package sender runs outbound Telegram calls off the update goroutine.
//
// Jobs are sharded by the chat id found in their context, so replies to one
// chat leave in the order they were enqueued while different chats are sent
// in parallel.
package sender

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/espertofit/core/logger"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the chat's queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize is the total capacity, split evenly across workers.
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
type Dispatcher struct {
	opts   Options
	shards []chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	sent atomic.Uint64
	errs atomic.Uint64
}

// NewDispatcher starts one worker per shard.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	perShard := opts.QueueSize / opts.Workers
	if perShard < 1 {
		perShard = 1
	}

	d := &Dispatcher{
		opts:   opts,
		shards: make([]chan job, opts.Workers),
	}
	d.wg.Add(opts.Workers)
	for i := range d.shards {
		d.shards[i] = make(chan job, perShard)
		go d.worker(d.shards[i])
	}
	return d
}

// Enqueue schedules run on the shard of the chat carried by ctx.
// The run closure must be idempotent if retries are desired.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}

	select {
	case d.shardFor(ctx) <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shardFor(ctx context.Context) chan job {
	id := uint64(logger.ChatIDFrom(ctx))
	return d.shards[id%uint64(len(d.shards))]
}

// Pending reports how many jobs wait across all shards.
func (d *Dispatcher) Pending() int {
	n := 0
	for _, s := range d.shards {
		n += len(s)
	}
	return n
}

// SentCount returns the number of jobs that eventually succeeded.
func (d *Dispatcher) SentCount() uint64 {
	return d.sent.Load()
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits until queued ones are processed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, s := range d.shards {
		close(s)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(jobs <-chan job) {
	defer d.wg.Done()
	for j := range jobs {
		if err := d.deliver(j); err != nil {
			d.errs.Add(1)
			continue
		}
		d.sent.Add(1)
	}
}
