package render

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Scheduler runs chunked scene work on frame callbacks. Submission never
// blocks on the work completing.
type Scheduler interface {
	ScheduleChunk(work func())
}

// FrameScheduler executes chunks on a background goroutine paced at a
// fixed frame rate.
type FrameScheduler struct {
	limiter *rate.Limiter
	cancel  context.CancelFunc
	done    chan struct{}
	wake    chan struct{}

	mu    sync.Mutex
	queue []func()
}

// DefaultFrameRate paces chunk execution when no rate is configured.
const DefaultFrameRate = 60

// NewFrameScheduler starts a scheduler running at most fps chunks per
// second. A non-positive fps selects DefaultFrameRate. Stop releases the
// goroutine; ctx cancellation does too.
func NewFrameScheduler(ctx context.Context, fps float64) *FrameScheduler {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &FrameScheduler{
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
		cancel:  cancel,
		done:    make(chan struct{}),
		wake:    make(chan struct{}, 1),
	}
	go s.loop(ctx)
	return s
}

// ScheduleChunk queues work for the next available frame.
func (s *FrameScheduler) ScheduleChunk(work func()) {
	s.mu.Lock()
	s.queue = append(s.queue, work)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for it to exit. Queued work that has
// not run yet is discarded.
func (s *FrameScheduler) Stop() {
	s.cancel()
	<-s.done
}

func (s *FrameScheduler) loop(ctx context.Context) {
	defer close(s.done)
	for {
		work := s.next()
		if work == nil {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		work()
	}
}

func (s *FrameScheduler) next() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	work := s.queue[0]
	s.queue = s.queue[1:]
	return work
}

// ManualScheduler queues chunks for explicit stepping. It is intended for
// tests and is not safe for concurrent use.
type ManualScheduler struct {
	queue []func()
}

// ScheduleChunk queues work without running it.
func (s *ManualScheduler) ScheduleChunk(work func()) {
	s.queue = append(s.queue, work)
}

// Pending reports how many chunks are queued.
func (s *ManualScheduler) Pending() int { return len(s.queue) }

// Step runs the oldest queued chunk and reports whether one ran.
func (s *ManualScheduler) Step() bool {
	if len(s.queue) == 0 {
		return false
	}
	work := s.queue[0]
	s.queue = s.queue[1:]
	work()
	return true
}

// Drain runs every queued chunk, including chunks queued while draining,
// and returns how many ran.
func (s *ManualScheduler) Drain() int {
	n := 0
	for s.Step() {
		n++
	}
	return n
}
