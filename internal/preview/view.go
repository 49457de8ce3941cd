package preview

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/davka-nysa/davka/internal/carousel"
	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/models"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C8A27A"))
	subtitleStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	stripStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hoverStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E6C79C"))
	arrowStyle    = lipgloss.NewStyle().Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	texts := locale.Lookup(m.lang)
	v := m.sched.View()

	var b strings.Builder
	b.WriteString(titleStyle.Render(texts.Site.Title + " · " + texts.Showcase.Title))
	b.WriteString("  " + footerStyle.Render(strings.ToUpper(string(m.lang))))
	b.WriteString("\n")

	sub := m.sel.Subtitle.Text(texts.Showcase)
	b.WriteString(subtitleStyle.Render(sub))
	if m.fetchErr != nil {
		b.WriteString("  " + errorStyle.Render("⚠ "+m.source))
	}
	b.WriteString("\n\n")

	style := stripStyle
	if m.hovered {
		style = hoverStyle
	}
	indent := strings.Repeat(" ", stripMargin)
	for _, line := range m.stripLines(v) {
		b.WriteString(indent + style.Render(line) + "\n")
	}

	b.WriteString(renderArrows(v, texts.Showcase))
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// stripLines renders every card side by side and cuts the visible window at
// the scheduler's offset.
func (m Model) stripLines(v carousel.View) []string {
	inner := max(m.width-2*stripMargin, 0)
	if inner == 0 {
		return nil
	}
	slots := layoutFor(m.width, m.cellPx).VisibleSlots()
	slotCols := max(inner/slots, 1)

	rows := make([][]rune, cardHeight)
	for i, it := range m.sel.Images {
		for r, line := range card(it, i, len(m.sel.Images), slotCols) {
			rows[r] = append(rows[r], line...)
		}
	}

	from := int(math.Round(v.Offset / m.cellPx))
	out := make([]string, cardHeight)
	for r, row := range rows {
		start := min(from, len(row))
		end := min(start+inner, len(row))
		out[r] = string(row[start:end])
	}
	return out
}

func card(it models.ImageItem, i, total, w int) [cardHeight][]rune {
	var c [cardHeight][]rune
	if w < 4 {
		for r := range c {
			c[r] = []rune(strings.Repeat(" ", w))
		}
		return c
	}
	body := w - 4
	c[0] = []rune("┌" + strings.Repeat("─", w-2) + "┐")
	c[1] = boxed(fmt.Sprintf("%d/%d", i+1, total), body)
	c[2] = boxed(fmt.Sprintf("%d×%d", it.Width, it.Height), body)
	c[3] = boxed(it.ID, body)
	c[4] = []rune("└" + strings.Repeat("─", w-2) + "┘")
	return c
}

func boxed(s string, w int) []rune {
	r := []rune(s)
	if len(r) > w {
		r = r[:w]
	}
	line := append([]rune("│ "), r...)
	line = append(line, []rune(strings.Repeat(" ", w-len(r)))...)
	return append(line, []rune(" │")...)
}

func renderArrows(v carousel.View, t locale.Showcase) string {
	if !v.ShowArrows {
		return ""
	}
	prev := arrowStyle.Render("‹ " + t.Prev)
	if v.AtStart {
		prev = disabledStyle.Render("‹ " + t.Prev)
	}
	next := arrowStyle.Render(t.Next + " ›")
	if v.AtEnd {
		next = disabledStyle.Render(t.Next + " ›")
	}
	return strings.Repeat(" ", stripMargin) + prev + "   " + next + "   " + footerStyle.Render(v.Phase.String())
}

func (m Model) renderFooter() string {
	parts := make([]string, 0, len(m.keys.bindings()))
	for _, b := range m.keys.bindings() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return footerStyle.Render(strings.Join(parts, " • "))
}
