package carousel

import (
	"math"
	"time"
)

// EaseOutCubic maps t in [0,1] to 1-(1-t)^3.
func EaseOutCubic(t float64) float64 {
	t = clamp(t, 0, 1)
	return 1 - math.Pow(1-t, 3)
}

// nudge is an eased one-slot transition in flight.
type nudge struct {
	from     float64
	to       float64
	elapsed  time.Duration
	duration time.Duration
}

// progress returns the eased position and whether the transition is done.
func (n *nudge) progress() (float64, bool) {
	p := 1.0
	if n.duration > 0 {
		p = math.Min(1, float64(n.elapsed)/float64(n.duration))
	}
	if p >= 1 {
		return n.to, true
	}
	return n.from + (n.to-n.from)*EaseOutCubic(p), false
}
