package showcase

import (
	"context"
	"sync"
)

// Queue runs callbacks on a single goroutine in the order they were pushed.
// Push never blocks, so it is safe to call from host event handlers that must
// return immediately (browser callbacks).
type Queue struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

func (q *Queue) Push(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is done. Callbacks still pending at that
// point are dropped.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}

		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, fn := range batch {
			if ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}
