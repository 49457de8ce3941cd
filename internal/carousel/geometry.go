package carousel

import "math"

// NarrowBreakpoint is the window width (px) below which the strip shows a
// single slot.
const NarrowBreakpoint = 768

const (
	narrowSlots = 1
	wideSlots   = 4
)

// Layout is the viewport as seen by the scheduler. It is derived by the host
// on every resize and never stored beyond the latest value.
type Layout struct {
	ViewportWidth float64
	Narrow        bool
}

// LayoutFor derives a layout from the window width (which decides the
// breakpoint) and the inner viewport width (which decides slot size).
func LayoutFor(windowWidth, viewportWidth float64) Layout {
	return Layout{
		ViewportWidth: math.Max(0, viewportWidth),
		Narrow:        windowWidth < NarrowBreakpoint,
	}
}

// VisibleSlots is the number of images shown at once.
func (l Layout) VisibleSlots() int {
	if l.Narrow {
		return narrowSlots
	}
	return wideSlots
}

// SlotWidth is the width of one image slot in pixels.
func (l Layout) SlotWidth() float64 {
	return l.ViewportWidth / float64(l.VisibleSlots())
}

// Geometry combines the current item count with the current layout.
type Geometry struct {
	ItemCount int
	Layout    Layout
}

// MaxPos is the furthest the strip may be translated.
func (g Geometry) MaxPos() float64 {
	hidden := g.ItemCount - g.Layout.VisibleSlots()
	if hidden <= 0 {
		return 0
	}
	return math.Max(0, float64(hidden)*g.Layout.SlotWidth())
}

// Scrollable reports whether there are more items than visible slots, which
// gates the arrows and every kind of scheduler activity.
func (g Geometry) Scrollable() bool {
	return g.ItemCount > g.Layout.VisibleSlots()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
