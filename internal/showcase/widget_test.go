package showcase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/davka-nysa/davka/internal/carousel"
	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/models"
)

type recorder struct {
	mu     sync.Mutex
	last   Frame
	frames int
}

func (r *recorder) Render(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = f
	r.frames++
}

func (r *recorder) frame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func noon() time.Time { return time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC) }

type harness struct {
	w      *Widget
	rec    *recorder
	vp     *Viewport
	lang   *locale.Switcher
	cancel context.CancelFunc
	done   chan struct{}
}

func startWidget(t *testing.T, poller *Poller, sched carousel.Options) *harness {
	t.Helper()
	h := &harness{
		rec:  &recorder{},
		vp:   NewViewport(carousel.LayoutFor(1280, 400)),
		lang: locale.NewSwitcher(locale.PL),
		done: make(chan struct{}),
	}
	h.w = NewWidget(Options{
		Viewport:  h.vp,
		Locale:    h.lang,
		Renderer:  h.rec,
		Poller:    poller,
		Scheduler: sched,
		Now:       noon,
	})
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		defer close(h.done)
		assert.NoError(t, h.w.Run(ctx))
	}()
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

func (h *harness) eventually(t *testing.T, cond func(Frame) bool) Frame {
	t.Helper()
	require.Eventually(t, func() bool { return cond(h.rec.frame()) }, 2*time.Second, 2*time.Millisecond)
	return h.rec.frame()
}

func TestWidgetStartsOnFallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := startWidget(t, nil, carousel.Options{})
	f := h.eventually(t, func(f Frame) bool { return f.Version > 0 })
	h.stop()

	assert.True(t, f.Fallback)
	assert.Len(t, f.Items, 4)
	assert.False(t, f.View.ShowArrows)
	assert.Equal(t, locale.Lookup(locale.PL).Showcase.Empty, f.Subtitle)
}

func TestWidgetAppliesPayloadAndLanguage(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := startWidget(t, nil, carousel.Options{})
	defer h.stop()
	h.eventually(t, func(f Frame) bool { return f.Version == 1 })

	h.w.Apply(models.Payload{Status: models.StatusOK, Images: live(6)})
	f := h.eventually(t, func(f Frame) bool { return f.Version == 2 })
	assert.False(t, f.Fallback)
	assert.True(t, f.View.ShowArrows)
	assert.True(t, f.View.AtStart)
	assert.Equal(t, 200.0, f.View.MaxPos)

	// Same identity set does not bump the version.
	h.w.Apply(models.Payload{Status: models.StatusOK, Images: live(6)})
	h.lang.Set(locale.DE)
	f = h.eventually(t, func(f Frame) bool { return f.Lang == locale.DE })
	assert.Equal(t, 2, f.Version)
	assert.Equal(t, "Weiter", f.Texts.Next)
}

func TestWidgetNudgeAndResize(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := startWidget(t, nil, carousel.Options{NudgeDuration: 20 * time.Millisecond, FrameInterval: 2 * time.Millisecond})
	defer h.stop()

	h.w.Apply(models.Payload{Status: models.StatusOK, Images: live(6)})
	h.eventually(t, func(f Frame) bool { return f.Version == 2 })

	h.w.Nudge(carousel.Forward)
	f := h.eventually(t, func(f Frame) bool { return f.View.Phase == carousel.PhasePause && f.View.Offset > 0 })
	assert.Equal(t, 100.0, f.View.Offset)

	// Crossing into the narrow layout reinitializes.
	h.vp.Set(carousel.LayoutFor(500, 300))
	f = h.eventually(t, func(f Frame) bool { return f.View.MaxPos == 1500 })
	assert.Zero(t, f.View.Offset)
}

func TestWidgetHoverFreezesAutoplay(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := startWidget(t, nil, carousel.Options{
		DwellWide:     time.Millisecond,
		Speed:         20000,
		FrameInterval: 2 * time.Millisecond,
	})
	defer h.stop()

	h.w.Apply(models.Payload{Status: models.StatusOK, Images: live(6)})
	h.eventually(t, func(f Frame) bool { return f.View.Phase == carousel.PhaseForward || f.View.Phase == carousel.PhaseBackward })

	h.w.PointerEnter()
	f := h.eventually(t, func(f Frame) bool { return f.View.Phase == carousel.PhaseIdle })
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, f.View.Offset, h.rec.frame().View.Offset)

	h.w.PointerLeave()
	h.eventually(t, func(f Frame) bool { return f.View.Phase != carousel.PhaseIdle })
}

func TestWidgetKeepsListWhenPollFails(t *testing.T) {
	defer goleak.VerifyNone(t, httpIdleIgnores()...)

	var broken atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if broken.Load() {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>upstream down</html>"))
			return
		}
		_ = json.NewEncoder(w).Encode(models.Payload{Status: models.StatusOK, Images: live(5)})
	}))
	defer srv.Close()

	h := startWidget(t, NewPoller(srv.URL, WithInterval(5*time.Millisecond)), carousel.Options{})
	f := h.eventually(t, func(f Frame) bool { return len(f.Items) == 5 })
	require.False(t, f.Fallback)

	broken.Store(true)
	f = h.eventually(t, func(f Frame) bool { return f.FetchErr != nil })
	h.stop()

	assert.Len(t, f.Items, 5)
	assert.False(t, f.Fallback)
}

func TestWidgetDwellSurvivesRepeatedPolls(t *testing.T) {
	defer goleak.VerifyNone(t, httpIdleIgnores()...)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Payload{Status: models.StatusOK, Images: live(6)})
	}))
	defer srv.Close()

	// Polls arrive three times per dwell; none of them may restart it.
	h := startWidget(t, NewPoller(srv.URL, WithInterval(100*time.Millisecond)), carousel.Options{
		DwellWide:     300 * time.Millisecond,
		FrameInterval: 2 * time.Millisecond,
	})
	h.eventually(t, func(f Frame) bool { return len(f.Items) == 6 })
	f := h.eventually(t, func(f Frame) bool { return f.View.Phase == carousel.PhaseForward })
	h.stop()

	assert.Equal(t, 2, f.Version)
}

func TestWidgetFetchFailedThenRecovered(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := startWidget(t, nil, carousel.Options{})
	defer h.stop()

	h.w.FetchFailed(errors.New("offline"))
	f := h.eventually(t, func(f Frame) bool { return f.FetchErr != nil })
	assert.True(t, f.Fallback)

	h.w.Apply(models.Payload{Status: models.StatusOK, Images: live(5)})
	f = h.eventually(t, func(f Frame) bool { return f.FetchErr == nil && !f.Fallback })
	assert.Len(t, f.Items, 5)
}
