package preview

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/davka-nysa/davka/internal/carousel"
	"github.com/davka-nysa/davka/internal/locale"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.advance()
		return m.rearm()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.advance()
		m.sched.OnResize(layoutFor(msg.Width, m.cellPx))
		return m.rearm()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case payloadMsg:
		if msg.err != nil {
			m.fetchErr = msg.err
			slog.Debug("Daily list fetch failed, keeping current showcase", "err", msg.err)
			return m, nil
		}
		m.fetchErr = nil
		m.advance()
		m.applyPayload(msg.payload)
		return m.rearm()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.sched.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prev):
		m.advance()
		m.sched.OnNudge(carousel.Backward)
	case key.Matches(msg, m.keys.Next):
		m.advance()
		m.sched.OnNudge(carousel.Forward)
	case key.Matches(msg, m.keys.Hover):
		m.advance()
		m.setHovered(!m.hovered)
	case key.Matches(msg, m.keys.Lang):
		m.lang = locale.Next(m.lang)
		return m, nil
	default:
		return m, nil
	}
	return m.rearm()
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	over := msg.Y >= stripTop && msg.Y < stripTop+cardHeight
	if over == m.hovered {
		return m, nil
	}
	m.advance()
	m.setHovered(over)
	return m.rearm()
}

func (m *Model) setHovered(v bool) {
	m.hovered = v
	if v {
		m.sched.OnPointerEnter()
		return
	}
	m.sched.OnPointerLeave()
}

// advance charges the time since the last tick to the scheduler. Every
// scheduler mutation is preceded by it so dwell and motion keep counting
// across input.
func (m *Model) advance() {
	now := m.monotonic()
	m.sched.Tick(now.Sub(m.last))
	m.last = now
}
