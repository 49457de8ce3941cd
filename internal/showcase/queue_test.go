package showcase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/davka-nysa/davka/internal/carousel"
	"github.com/davka-nysa/davka/internal/models"
)

func TestQueueKeepsOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewQueue()
	var mu sync.Mutex
	var got []int
	for i := range 500 {
		q.Push(func() {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, i)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 500
	}, time.Second, time.Millisecond)
	cancel()
	<-done

	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestQueueLeaveThenEnterStaysHovered(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := startWidget(t, nil, carousel.Options{})
	defer h.stop()
	h.w.Apply(models.Payload{Status: models.StatusOK, Images: live(6)})
	h.eventually(t, func(f Frame) bool { return f.Version == 2 })

	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// A fast pointer flicker across the strip edge ends hovered.
	for range 50 {
		q.Push(h.w.PointerEnter)
		q.Push(h.w.PointerLeave)
	}
	q.Push(h.w.PointerEnter)
	drained := make(chan struct{})
	q.Push(func() { close(drained) })
	<-drained

	h.eventually(t, func(f Frame) bool { return f.View.Phase == carousel.PhaseIdle })
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, carousel.PhaseIdle, h.rec.frame().View.Phase)
}
