//go:build js && wasm

// Command showcase-wasm drives the landing page showcase strip in the
// browser. Build with:
//
//	GOOS=js GOARCH=wasm go build -o internal/web/static/showcase.wasm ./cmd/showcase-wasm
//
// and copy $(go env GOROOT)/lib/wasm/wasm_exec.js next to it.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"syscall/js"

	"github.com/davka-nysa/davka/internal/carousel"
	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/showcase"
)

type dom struct {
	doc      js.Value
	section  js.Value
	viewport js.Value
	track    js.Value
	subtitle js.Value
	prev     js.Value
	next     js.Value

	version int
}

func byID(doc js.Value, id string) js.Value {
	return doc.Call("getElementById", id)
}

func (d *dom) layout() carousel.Layout {
	window := js.Global().Get("window")
	return carousel.LayoutFor(window.Get("innerWidth").Float(), d.viewport.Get("clientWidth").Float())
}

// Render rebuilds the cards only when the list changed; everything else is
// attribute updates.
func (d *dom) Render(fr showcase.Frame) {
	if fr.Version != d.version {
		d.version = fr.Version
		d.track.Set("innerHTML", "")
		for _, it := range fr.Items {
			fig := d.doc.Call("createElement", "figure")
			fig.Set("className", "showcase-card")
			fig.Get("dataset").Set("id", it.ID)
			img := d.doc.Call("createElement", "img")
			img.Set("src", it.URL)
			img.Set("alt", "")
			img.Set("loading", "lazy")
			if it.Width > 0 {
				img.Set("width", strconv.Itoa(it.Width))
				img.Set("height", strconv.Itoa(it.Height))
			}
			fig.Call("appendChild", img)
			d.track.Call("appendChild", fig)
		}
	}

	d.track.Get("style").Set("transform", fr.View.Transform())
	d.subtitle.Set("textContent", fr.Subtitle)
	d.prev.Set("hidden", !fr.View.ShowArrows)
	d.next.Set("hidden", !fr.View.ShowArrows)
	d.prev.Set("disabled", fr.View.AtStart)
	d.next.Set("disabled", fr.View.AtEnd)
	d.prev.Call("setAttribute", "aria-label", fr.Texts.Prev)
	d.next.Call("setAttribute", "aria-label", fr.Texts.Next)
}

// listen registers fn for event on el. Callbacks go through q so the widget
// sees DOM events in the order they fired, and the JS event loop is never
// blocked on it.
func listen(q *showcase.Queue, el js.Value, event string, fn func()) js.Func {
	f := js.FuncOf(func(js.Value, []js.Value) any {
		q.Push(fn)
		return nil
	})
	el.Call("addEventListener", event, f)
	return f
}

func main() {
	doc := js.Global().Get("document")
	d := &dom{
		doc:      doc,
		section:  byID(doc, "witryna"),
		viewport: byID(doc, "showcase-viewport"),
		track:    byID(doc, "showcase-track"),
		subtitle: byID(doc, "showcase-subtitle"),
		prev:     byID(doc, "showcase-prev"),
		next:     byID(doc, "showcase-next"),
	}
	if d.section.IsNull() || d.track.IsNull() {
		slog.Warn("Showcase markup not found, nothing to drive")
		return
	}

	dataset := d.section.Get("dataset")
	listURL := dataset.Get("listUrl").String()
	lang, _ := locale.Parse(dataset.Get("lang").String())

	vp := showcase.NewViewport(d.layout())
	w := showcase.NewWidget(showcase.Options{
		Viewport: vp,
		Locale:   locale.NewSwitcher(lang),
		Renderer: d,
		Poller:   showcase.NewPoller(listURL),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := showcase.NewQueue()
	go q.Run(ctx)

	funcs := []js.Func{
		listen(q, js.Global().Get("window"), "resize", func() { vp.Set(d.layout()) }),
		listen(q, d.viewport, "mouseenter", w.PointerEnter),
		listen(q, d.viewport, "mouseleave", w.PointerLeave),
		listen(q, d.prev, "click", func() { w.Nudge(carousel.Backward) }),
		listen(q, d.next, "click", func() { w.Nudge(carousel.Forward) }),
	}
	defer func() {
		for _, f := range funcs {
			f.Release()
		}
	}()

	if err := w.Run(ctx); err != nil {
		slog.Error("Showcase stopped", "err", err)
	}
}
