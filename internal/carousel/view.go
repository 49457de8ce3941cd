package carousel

import (
	"fmt"
	"strconv"
)

// boundaryEpsilon absorbs floating point drift at either end of the strip.
const boundaryEpsilon = 1.0

// View is the render projection of the scheduler.
type View struct {
	Offset     float64
	MaxPos     float64
	Phase      Phase
	ShowArrows bool
	AtStart    bool
	AtEnd      bool
}

// View projects the current state. It has no side effects and may be called
// any number of times.
func (s *Scheduler) View() View {
	maxPos := s.geo.MaxPos()
	v := View{
		Offset:     clamp(s.state.Position, 0, maxPos),
		MaxPos:     maxPos,
		Phase:      s.state.Phase,
		ShowArrows: s.geo.Scrollable(),
	}
	if v.ShowArrows {
		v.AtStart = v.Offset <= boundaryEpsilon
		v.AtEnd = v.Offset >= maxPos-boundaryEpsilon
	}
	return v
}

// Transform renders the offset as a CSS transform.
func (v View) Transform() string {
	return fmt.Sprintf("translate3d(-%spx,0,0)", strconv.FormatFloat(v.Offset, 'f', -1, 64))
}
