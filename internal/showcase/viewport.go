package showcase

import (
	"sync"

	"github.com/davka-nysa/davka/internal/carousel"
)

// ViewportSource provides the current layout and notifies on resize.
type ViewportSource interface {
	Layout() carousel.Layout
	Subscribe(fn func(carousel.Layout)) (unsubscribe func())
}

// Viewport is a settable ViewportSource fed by the host's resize events.
type Viewport struct {
	mu   sync.Mutex
	cur  carousel.Layout
	next int
	subs map[int]func(carousel.Layout)
}

func NewViewport(initial carousel.Layout) *Viewport {
	return &Viewport{cur: initial, subs: map[int]func(carousel.Layout){}}
}

func (v *Viewport) Layout() carousel.Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set records a new layout and notifies subscribers when it changed.
func (v *Viewport) Set(l carousel.Layout) {
	v.mu.Lock()
	if v.cur == l {
		v.mu.Unlock()
		return
	}
	v.cur = l
	fns := make([]func(carousel.Layout), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(l)
	}
}

func (v *Viewport) Subscribe(fn func(carousel.Layout)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.next
	v.next++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}
