package showcase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/davka-nysa/davka/internal/carousel"
	"github.com/davka-nysa/davka/internal/daily"
	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/models"
)

// Frame is everything a host needs to draw the showcase once.
type Frame struct {
	Items    []models.ImageItem
	Version  int // bumped whenever Items is replaced
	View     carousel.View
	Lang     locale.Lang
	Texts    locale.Showcase
	Subtitle string
	Status   models.Status
	Fallback bool
	FetchErr error
}

// Renderer draws frames. Render is called from the widget goroutine after
// every state change and must be idempotent.
type Renderer interface {
	Render(Frame)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(Frame)

func (f RenderFunc) Render(fr Frame) { f(fr) }

// Options configures a Widget. Viewport, Locale and Renderer are required.
type Options struct {
	Viewport  ViewportSource
	Locale    locale.Source
	Renderer  Renderer
	Poller    *Poller
	Scheduler carousel.Options
	Fallback  []models.ImageItem
	Location  *time.Location
	// Now is the wall clock used by the display rules. Frame deltas always
	// use the monotonic clock.
	Now func() time.Time
}

type eventKind int

const (
	evPointerEnter eventKind = iota
	evPointerLeave
	evNudge
	evResize
	evLang
	evPayload
)

type event struct {
	kind    eventKind
	dir     carousel.Direction
	layout  carousel.Layout
	lang    locale.Lang
	payload models.Payload
	err     error
}

// Widget owns a carousel scheduler and serializes every input onto a single
// goroutine. It keeps one timer for whatever the scheduler needs next.
type Widget struct {
	opts   Options
	sched  *carousel.Scheduler
	events chan event
	done   chan struct{}

	sel      Selection
	version  int
	lang     locale.Lang
	fetchErr error
	last     time.Time
}

func NewWidget(opts Options) *Widget {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		loc, err := time.LoadLocation(daily.DefaultTimezone)
		if err != nil {
			loc = time.Local
		}
		opts.Location = loc
	}
	if len(opts.Fallback) == 0 {
		opts.Fallback = FallbackImages
	}
	return &Widget{
		opts:   opts,
		sched:  carousel.New(opts.Scheduler),
		events: make(chan event, 64),
		done:   make(chan struct{}),
	}
}

func (w *Widget) PointerEnter() { w.post(event{kind: evPointerEnter}) }

func (w *Widget) PointerLeave() { w.post(event{kind: evPointerLeave}) }

// Nudge requests a one-slot step. It is ignored at the matching boundary.
func (w *Widget) Nudge(dir carousel.Direction) { w.post(event{kind: evNudge, dir: dir}) }

// Apply feeds a payload obtained outside the widget's own poller.
func (w *Widget) Apply(p models.Payload) { w.post(event{kind: evPayload, payload: p}) }

// FetchFailed records a failed poll; the current list stays on screen.
func (w *Widget) FetchFailed(err error) { w.post(event{kind: evPayload, err: err}) }

func (w *Widget) post(ev event) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// Run drives the widget until ctx is done. Subscriptions, the poller and the
// timer are all released before it returns.
func (w *Widget) Run(ctx context.Context) error {
	w.lang = w.opts.Locale.Current()
	w.sched.OnResize(w.opts.Viewport.Layout())
	w.applySelection(SelectWith(models.Payload{Status: models.StatusEmpty}, w.localNow(), w.opts.Fallback))

	unsubViewport := w.opts.Viewport.Subscribe(func(l carousel.Layout) {
		w.post(event{kind: evResize, layout: l})
	})
	unsubLocale := w.opts.Locale.Subscribe(func(l locale.Lang) {
		w.post(event{kind: evLang, lang: l})
	})

	pollCtx, cancelPoll := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if w.opts.Poller != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.opts.Poller.Run(pollCtx, func(p models.Payload, err error) {
				w.post(event{kind: evPayload, payload: p, err: err})
			})
		}()
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	w.last = time.Now()
	w.render()
	w.reschedule(timer)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ev := <-w.events:
			// Elapsed time is charged before the event so dwell and motion
			// keep counting across input.
			w.advance()
			w.apply(ev)
		case <-timer.C:
			w.advance()
		}
		w.render()
		w.reschedule(timer)
	}

	timer.Stop()
	w.sched.Stop()
	close(w.done)
	unsubViewport()
	unsubLocale()
	cancelPoll()
	wg.Wait()
	return nil
}

func (w *Widget) advance() {
	now := time.Now()
	w.sched.Tick(now.Sub(w.last))
	w.last = now
}

func (w *Widget) apply(ev event) {
	switch ev.kind {
	case evPointerEnter:
		w.sched.OnPointerEnter()
	case evPointerLeave:
		w.sched.OnPointerLeave()
	case evNudge:
		w.sched.OnNudge(ev.dir)
	case evResize:
		w.sched.OnResize(ev.layout)
	case evLang:
		w.lang = ev.lang
	case evPayload:
		if ev.err != nil {
			w.fetchErr = ev.err
			slog.Debug("Daily list fetch failed, keeping current showcase", "err", ev.err)
			return
		}
		w.fetchErr = nil
		w.applySelection(SelectWith(ev.payload, w.localNow(), w.opts.Fallback))
	}
}

func (w *Widget) applySelection(sel Selection) {
	w.sel = sel
	if w.sched.OnDataRefresh(sel.Images) {
		w.version++
	}
}

func (w *Widget) reschedule(timer *time.Timer) {
	timer.Stop()
	if d, ok := w.sched.NextWake(); ok {
		timer.Reset(d)
	}
}

func (w *Widget) render() {
	texts := locale.Lookup(w.lang).Showcase
	w.opts.Renderer.Render(Frame{
		Items:    w.sel.Images,
		Version:  w.version,
		View:     w.sched.View(),
		Lang:     w.lang,
		Texts:    texts,
		Subtitle: w.sel.Subtitle.Text(texts),
		Status:   w.sel.Status,
		Fallback: w.sel.Fallback,
		FetchErr: w.fetchErr,
	})
}

func (w *Widget) localNow() time.Time {
	return w.opts.Now().In(w.opts.Location)
}
