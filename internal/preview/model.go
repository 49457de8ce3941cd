// Package preview renders the daily showcase in a terminal. It drives the
// same carousel scheduler as the site and polls the same list endpoint.
package preview

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/davka-nysa/davka/internal/carousel"
	"github.com/davka-nysa/davka/internal/daily"
	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/models"
	"github.com/davka-nysa/davka/internal/showcase"
)

// Model is the root Bubble Tea model.
type Model struct {
	sched  *carousel.Scheduler
	sel    showcase.Selection
	clock  daily.Clock
	lang   locale.Lang
	source string
	keys   keyMap

	width   int
	height  int
	cellPx  float64
	hovered bool

	// gen invalidates frame ticks scheduled before the latest event.
	gen       int
	last      time.Time
	monotonic func() time.Time

	fetchErr error
	quitting bool
}

// NewModel starts on the fallback set until the first poll lands.
// narrowColumns is the terminal width below which one card is shown; zero
// keeps the default.
func NewModel(clock daily.Clock, lang locale.Lang, source string, narrowColumns int, opts carousel.Options) Model {
	cellPx := float64(cellPixels)
	if narrowColumns > 0 {
		cellPx = carousel.NarrowBreakpoint / float64(narrowColumns)
	}
	m := Model{
		sched:     carousel.New(opts),
		cellPx:    cellPx,
		clock:     clock,
		lang:      lang,
		source:    source,
		keys:      newKeyMap(),
		monotonic: time.Now,
	}
	m.applyPayload(models.Payload{Status: models.StatusEmpty})
	m.last = m.monotonic()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.wake()
}

// Hovered reports whether the pointer is over the strip.
func (m Model) Hovered() bool { return m.hovered }

// Lang is the active display language.
func (m Model) Lang() locale.Lang { return m.lang }

// Carousel projects the scheduler state.
func (m Model) Carousel() carousel.View { return m.sched.View() }

func (m *Model) applyPayload(p models.Payload) {
	m.sel = showcase.Select(p, m.clock.Local())
	m.sched.OnDataRefresh(m.sel.Images)
}

// layoutFor converts terminal columns to the pixel layout.
func layoutFor(cols int, cellPx float64) carousel.Layout {
	inner := max(cols-2*stripMargin, 0)
	return carousel.LayoutFor(float64(cols)*cellPx, float64(inner)*cellPx)
}

// wake schedules the next frame for the current generation, if any.
func (m Model) wake() tea.Cmd {
	d, ok := m.sched.NextWake()
	if !ok {
		return nil
	}
	gen := m.gen
	return tea.Tick(d, func(time.Time) tea.Msg { return frameMsg{gen: gen} })
}

// rearm drops any outstanding tick and schedules a fresh one.
func (m Model) rearm() (Model, tea.Cmd) {
	m.gen++
	return m, m.wake()
}
