package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/matsen/hairball/internal/graph"
)

// ErrPoolClosed is returned by Submit after the pool has stopped.
var ErrPoolClosed = errors.New("worker: pool closed")

// DefaultQueueSize bounds pending requests when no size is configured.
const DefaultQueueSize = 64

// executeFn is swapped in tests to exercise the recovery path.
var executeFn = Execute

// Mailbox receives responses and discards any response older than the
// newest delivered for its task type, so a late result can never
// overwrite a fresher one.
type Mailbox struct {
	mu     sync.Mutex
	newest map[TaskType]uint64
	ch     chan Response
}

// NewMailbox returns a mailbox buffering up to size responses.
func NewMailbox(size int) *Mailbox {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Mailbox{
		newest: make(map[TaskType]uint64),
		ch:     make(chan Response, size),
	}
}

// Receive is the channel fresh responses arrive on.
func (m *Mailbox) Receive() <-chan Response { return m.ch }

func (m *Mailbox) deliver(r Response) {
	m.mu.Lock()
	if r.Generation < m.newest[r.Type] {
		m.mu.Unlock()
		return
	}
	m.newest[r.Type] = r.Generation
	m.mu.Unlock()
	m.ch <- r
}

// Pool runs requests on a fixed set of worker goroutines. Workers start
// lazily on the first submission.
type Pool struct {
	workers int
	queue   chan Request
	mbox    *Mailbox
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started sync.Once
	gen     atomic.Uint64
}

// NewPool builds a pool delivering responses to mbox. Non-positive
// workers selects a CPU-based default; non-positive queueSize selects
// DefaultQueueSize.
func NewPool(ctx context.Context, workers, queueSize int, mbox *Mailbox) *Pool {
	if workers <= 0 {
		workers = optimalWorkerCount()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers: workers,
		queue:   make(chan Request, queueSize),
		mbox:    mbox,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// optimalWorkerCount sizes the pool for CPU-bound graph work.
func optimalWorkerCount() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	if n < 2 {
		return 2
	}
	return n
}

// Submit deep-copies the payload, stamps the next generation token, and
// queues the request. It blocks only when the queue is full and returns
// the stamped generation.
func (p *Pool) Submit(ctx context.Context, t TaskType, pl Payload) (uint64, error) {
	p.started.Do(p.start)

	select {
	case <-p.ctx.Done():
		return 0, ErrPoolClosed
	default:
	}

	req := Request{
		Type:       t,
		Generation: p.gen.Add(1),
		Payload:    copyPayload(pl),
	}
	select {
	case p.queue <- req:
		return req.Generation, nil
	case <-p.ctx.Done():
		return 0, ErrPoolClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Stop cancels the pool and waits for in-flight work to finish. Queued
// requests that have not started are dropped.
func (p *Pool) Stop() {
	p.cancel()
	p.started.Do(func() {})
	p.wg.Wait()
}

func (p *Pool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case req := <-p.queue:
			p.mbox.deliver(safeExecute(req))
		}
	}
}

// safeExecute converts a worker panic into a failure response instead of
// taking the goroutine down.
func safeExecute(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{
				Type:       req.Type,
				Generation: req.Generation,
				Error:      fmt.Sprintf("panic: %v", r),
			}
		}
	}()
	return executeFn(req)
}

func copyPayload(pl Payload) Payload {
	out := Payload{
		Nodes:  graph.CopyNodes(pl.Nodes),
		Edges:  graph.CopyEdges(pl.Edges),
		Reduce: pl.Reduce,
		Style:  pl.Style,
	}
	if pl.Degrees != nil {
		out.Degrees = make(graph.DegreeMap, len(pl.Degrees))
		for id, d := range pl.Degrees {
			out.Degrees[id] = d
		}
	}
	return out
}
