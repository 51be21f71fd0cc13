// Package worker provides the bounded goroutine pool that services
// inbound DNS datagrams, grounded on
// _examples/straticus1-dnsscienced/internal/worker/pool.go's generic
// Job/Pool machinery. Every accepted connection in this server's UDP and
// TCP listeners hands its datagram to the pool rather than spawning a
// goroutine per packet, bounding worst-case goroutine count under a
// flood the way spec.md's Shared Resources section requires.
//
// Unlike the teacher's pool, which queues an opaque Job interface, this
// pool is typed directly to QueryJob: a query's Handle/Deliver pair is
// the only unit of work it ever runs, and a handler returning nil (a
// malformed datagram, dropped per spec.md §4.7's parse-failure rule) is
// tracked as its own Dropped stat rather than folded into Completed or
// Failed — a flood of garbage UDP packets looks different in the stats
// than a flood of valid queries whose replies fail to write.
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrPoolClosed is returned by Submit/TrySubmit/SubmitAsync once the
	// pool has been closed.
	ErrPoolClosed = errors.New("worker: pool closed")

	// ErrJobTimeout is returned when a query waits longer than
	// Config.QueueTimeout for a free slot in the queue.
	ErrJobTimeout = errors.New("worker: query timed out waiting in queue")

	// ErrQueueFull is returned by TrySubmit/SubmitAsync when the queue has
	// no free slot.
	ErrQueueFull = errors.New("worker: query queue is full")
)

// Handler processes one raw DNS datagram and returns the wire bytes to
// send back, or nil to send nothing (a dropped malformed query).
// internal/resolver.Assembler.Handle satisfies this signature.
type Handler func(raw []byte, tcp bool) []byte

// Reply delivers a handled response to its destination — a UDP
// WriteToUDP closure bound to the client's address, or a TCP
// length-prefixed Write closure bound to the connection.
type Reply func(resp []byte) error

// QueryJob is one datagram the pool owes an answer (or a deliberate
// silent drop) to: run Raw/TCP through Handle and, if it produced a
// response, deliver it through Reply. Submitting through the pool rather
// than handling inline is what bounds a flood of inbound packets to a
// fixed number of in-flight lookups instead of one goroutine per packet.
type QueryJob struct {
	Raw     []byte
	TCP     bool
	Handle  Handler
	Deliver Reply
}

// Config configures a Pool.
type Config struct {
	// Workers is the number of long-lived goroutines draining the queue.
	// Zero selects runtime.NumCPU() * 4, matching the query-bound (not
	// CPU-bound) nature of DNS lookups.
	Workers int

	// QueueSize bounds how many queries may wait for a free worker at
	// once. Zero selects Workers * 100.
	QueueSize int

	// QueueTimeout bounds how long Submit/SubmitAsync wait for a free
	// queue slot before rejecting the query; once queued, a query is not
	// timed out. Zero means no timeout.
	QueueTimeout time.Duration

	// PanicHandler, if set, is invoked with the recovered value whenever
	// a query's Handle or Deliver panics instead of crashing the process
	// — a single malformed packet must never take the whole server down.
	PanicHandler func(interface{})
}

// Pool is a bounded worker pool dedicated to QueryJob dispatch.
type Pool struct {
	workers      int
	queue        chan *queryWrapper
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	closed       atomic.Bool
	queueSize    int
	queueTimeout time.Duration

	panicHandler func(interface{})

	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	jobsDropped   atomic.Uint64
	jobsRejected  atomic.Uint64
	jobsFailed    atomic.Uint64
	jobsTimedOut  atomic.Uint64
	totalLatency  atomic.Uint64
}

type queryWrapper struct {
	job        QueryJob
	ctx        context.Context
	resultCh   chan error
	submitTime time.Time
}

// NewPool starts cfg.Workers goroutines draining a queue of size
// cfg.QueueSize and returns the running Pool.
func NewPool(cfg Config) *Pool {
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU() * 4
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = cfg.Workers * 100
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		workers:      cfg.Workers,
		queue:        make(chan *queryWrapper, cfg.QueueSize),
		ctx:          ctx,
		cancel:       cancel,
		queueSize:    cfg.QueueSize,
		queueTimeout: cfg.QueueTimeout,
		panicHandler: cfg.PanicHandler,
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker(i)
	}

	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case wrapper, ok := <-p.queue:
			if !ok {
				return
			}
			p.executeJob(wrapper)
		}
	}
}

// executeJob runs one query to completion: Handle decodes and answers
// it, and a non-nil response is handed to Deliver. A nil response (the
// query was malformed and spec.md says to drop it silently) is counted
// as Dropped rather than Completed or Failed, so a flood of garbage
// packets shows up distinctly from a flood of valid-but-undeliverable
// replies in Stats.
func (p *Pool) executeJob(wrapper *queryWrapper) {
	defer func() {
		if r := recover(); r != nil {
			if p.panicHandler != nil {
				p.panicHandler(r)
			}
			select {
			case wrapper.resultCh <- errors.New("worker: query panicked"):
			default:
			}
			p.jobsFailed.Add(1)
		}
	}()

	start := time.Now()
	resp := wrapper.job.Handle(wrapper.job.Raw, wrapper.job.TCP)
	p.totalLatency.Add(uint64(time.Since(start).Nanoseconds()))

	if resp == nil {
		p.jobsDropped.Add(1)
		select {
		case wrapper.resultCh <- nil:
		default:
		}
		return
	}

	err := wrapper.job.Deliver(resp)
	select {
	case wrapper.resultCh <- err:
	default:
	}

	if err != nil {
		p.jobsFailed.Add(1)
	} else {
		p.jobsCompleted.Add(1)
	}
}

func (p *Pool) wrap(ctx context.Context, job QueryJob) *queryWrapper {
	p.jobsSubmitted.Add(1)
	return &queryWrapper{job: job, ctx: ctx, resultCh: make(chan error, 1), submitTime: time.Now()}
}

// Submit queues job and blocks until it completes, the queue has not
// accepted it before Config.QueueTimeout elapses (ErrJobTimeout), or ctx
// is canceled.
func (p *Pool) Submit(ctx context.Context, job QueryJob) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	wrapper := p.wrap(ctx, job)

	var timeoutCtx context.Context
	if p.queueTimeout > 0 {
		var cancel context.CancelFunc
		timeoutCtx, cancel = context.WithTimeout(ctx, p.queueTimeout)
		defer cancel()
	} else {
		timeoutCtx = ctx
	}

	select {
	case p.queue <- wrapper:
		select {
		case err := <-wrapper.resultCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	case <-timeoutCtx.Done():
		p.jobsTimedOut.Add(1)
		return ErrJobTimeout
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// TrySubmit queues job without blocking, returning ErrQueueFull if no
// slot is immediately free.
func (p *Pool) TrySubmit(ctx context.Context, job QueryJob) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	wrapper := p.wrap(ctx, job)

	select {
	case p.queue <- wrapper:
		select {
		case err := <-wrapper.resultCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	default:
		p.jobsRejected.Add(1)
		return ErrQueueFull
	}
}

// SubmitAsync queues job and returns immediately without waiting for its
// result — used by the UDP read loop, which must get back to recvfrom as
// fast as possible rather than block on one query's processing.
func (p *Pool) SubmitAsync(ctx context.Context, job QueryJob) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	wrapper := p.wrap(ctx, job)

	if p.queueTimeout > 0 {
		timeoutCtx, cancel := context.WithTimeout(ctx, p.queueTimeout)
		defer cancel()
		select {
		case p.queue <- wrapper:
			return nil
		case <-timeoutCtx.Done():
			p.jobsTimedOut.Add(1)
			return ErrJobTimeout
		case <-p.ctx.Done():
			return ErrPoolClosed
		}
	}

	select {
	case p.queue <- wrapper:
		return nil
	default:
		p.jobsRejected.Add(1)
		return ErrQueueFull
	}
}

// Close stops accepting new jobs and waits for every in-flight query to
// finish.
func (p *Pool) Close() error {
	if p.closed.Swap(true) {
		return ErrPoolClosed
	}
	close(p.queue)
	p.wg.Wait()
	p.cancel()
	return nil
}

// CloseTimeout is Close bounded by timeout; outstanding workers are
// abandoned (their context is canceled) if the deadline passes first.
func (p *Pool) CloseTimeout(timeout time.Duration) error {
	if p.closed.Swap(true) {
		return ErrPoolClosed
	}
	close(p.queue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-time.After(timeout):
		p.cancel()
		return errors.New("worker: shutdown timeout exceeded")
	}
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Workers      int
	QueueSize    int
	QueueDepth   int
	Submitted    uint64
	Completed    uint64
	Dropped      uint64
	Rejected     uint64
	Failed       uint64
	TimedOut     uint64
	AvgLatencyNs uint64
	Utilization  float64
}

// GetStats returns the current Stats.
func (p *Pool) GetStats() Stats {
	submitted := p.jobsSubmitted.Load()
	completed := p.jobsCompleted.Load()
	dropped := p.jobsDropped.Load()
	failed := p.jobsFailed.Load()
	rejected := p.jobsRejected.Load()
	timedOut := p.jobsTimedOut.Load()
	totalLatency := p.totalLatency.Load()

	var avgLatency uint64
	if completed > 0 {
		avgLatency = totalLatency / completed
	}

	inProgress := submitted - completed - dropped - failed - rejected - timedOut
	var utilization float64
	if p.workers > 0 {
		utilization = float64(inProgress) / float64(p.workers) * 100
		if utilization > 100 {
			utilization = 100
		}
	}

	return Stats{
		Workers:      p.workers,
		QueueSize:    p.queueSize,
		QueueDepth:   len(p.queue),
		Submitted:    submitted,
		Completed:    completed,
		Dropped:      dropped,
		Rejected:     rejected,
		Failed:       failed,
		TimedOut:     timedOut,
		AvgLatencyNs: avgLatency,
		Utilization:  utilization,
	}
}

// Resize grows or shrinks the pool's worker count. Growing starts the
// extra goroutines; shrinking only lowers the recorded count — no
// goroutine is stopped, and the surplus ones keep draining the queue
// until the pool is closed (this server never shrinks at runtime in practice, since
// spec.md's worker count is fixed at startup, but resize is kept for the
// same operational reason the teacher kept it — a future control-plane
// hook).
func (p *Pool) Resize(newSize int) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if newSize < 1 {
		return errors.New("worker: worker count must be at least 1")
	}

	current := p.workers
	if newSize > current {
		diff := newSize - current
		p.wg.Add(diff)
		for i := 0; i < diff; i++ {
			go p.worker(current + i)
		}
	}

	p.workers = newSize
	return nil
}

// QueueDepth reports how many jobs are currently queued.
func (p *Pool) QueueDepth() int { return len(p.queue) }

// IsHealthy reports whether the pool looks able to keep up: not closed,
// queue not nearly full, and not stuck (jobs submitted but none
// completing/dropping) or failing more than it succeeds.
func (p *Pool) IsHealthy() bool {
	if p.closed.Load() {
		return false
	}

	stats := p.GetStats()
	if float64(stats.QueueDepth)/float64(stats.QueueSize) > 0.95 {
		return false
	}
	if stats.Submitted > 100 && stats.Completed == 0 && stats.Dropped == 0 {
		return false
	}
	if stats.Failed > stats.Completed && stats.Completed > 0 {
		return false
	}
	return true
}
