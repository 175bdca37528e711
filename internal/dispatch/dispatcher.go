package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueFull is returned when a shard's buffer has no room for more work.
var ErrQueueFull = errors.New("dispatch queue is full")

// ErrStopped is returned when work is submitted after Stop.
var ErrStopped = errors.New("dispatcher stopped")

// Job is a unit of work bound to a key.
type Job func(ctx context.Context) error

type job struct {
	ctx  context.Context
	run  Job
	done chan error
}

// Dispatcher fans work out to a fixed set of shard workers. Work for the
// same key always lands on the same shard, so per-key order is preserved
// while independent keys run concurrently.
type Dispatcher struct {
	shards []chan job
	wg     sync.WaitGroup
	logger *slog.Logger

	mu      sync.RWMutex
	stopped bool
}

// New creates a dispatcher with shardCount workers, each buffering up to
// bufferSize jobs.
func New(shardCount, bufferSize int, logger *slog.Logger) *Dispatcher {
	if shardCount < 1 {
		shardCount = 1
	}
	shards := make([]chan job, shardCount)
	for i := range shards {
		shards[i] = make(chan job, bufferSize)
	}
	return &Dispatcher{
		shards: shards,
		logger: logger,
	}
}

// Start launches the shard workers.
func (d *Dispatcher) Start() {
	for i, ch := range d.shards {
		d.wg.Add(1)
		go d.worker(i, ch)
	}
}

func (d *Dispatcher) worker(shard int, ch <-chan job) {
	defer d.wg.Done()
	for j := range ch {
		if err := j.ctx.Err(); err != nil {
			j.done <- err
			continue
		}
		err := j.run(j.ctx)
		if err != nil {
			d.logger.Error("dispatched job failed", "shard", shard, "error", err)
		}
		j.done <- err
	}
}

// Submit queues a job on the shard owning key and returns a channel that
// receives the job's result. Returns ErrQueueFull when the shard's buffer
// is full.
func (d *Dispatcher) Submit(ctx context.Context, key string, run Job) (<-chan error, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return nil, ErrStopped
	}

	j := job{ctx: ctx, run: run, done: make(chan error, 1)}
	shard := int(hashKey(key) % uint32(len(d.shards)))
	select {
	case d.shards[shard] <- j:
		return j.done, nil
	default:
		return nil, ErrQueueFull
	}
}

// Stop closes the shard queues and waits for in-flight work to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	for _, ch := range d.shards {
		close(ch)
	}
	d.wg.Wait()
}

// hashKey uses FNV-1a for better hash distribution than simple multiply-add.
func hashKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
