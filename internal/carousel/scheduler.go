// Package carousel implements the daily showcase strip as a pure state
// machine. Hosts feed it frame deltas and input events and project its state
// into whatever they render; it owns no timers or goroutines itself.
//
// At most one frame loop and one dwell timer are ever outstanding: the host
// asks NextWake after every call and keeps a single timer for the answer.
package carousel

import (
	"slices"
	"time"

	"github.com/davka-nysa/davka/internal/models"
)

// Scheduler drives the strip through pause, forward, backward and idle.
// It is not safe for concurrent use; hosts call it from one goroutine.
type Scheduler struct {
	opts  Options
	geo   Geometry
	ids   []string
	state State

	// primed is false until the first frame of the current phase or nudge
	// has been seen; that frame only establishes the time baseline.
	primed bool

	dwellLeft    time.Duration
	dwellPending bool

	nudge *nudge
}

// New returns a scheduler with no items and a zero-width viewport.
func New(opts Options) *Scheduler {
	s := &Scheduler{opts: opts.withDefaults()}
	s.reset()
	return s
}

// State returns a copy of the current state.
func (s *Scheduler) State() State { return s.state }

// Geometry returns the geometry the scheduler currently clamps against.
func (s *Scheduler) Geometry() Geometry { return s.geo }

// DwellPending reports whether the pause timer is armed.
func (s *Scheduler) DwellPending() bool { return s.dwellPending }

// Nudging reports whether a manual transition is in flight.
func (s *Scheduler) Nudging() bool { return s.nudge != nil }

// Tick advances the machine by one frame of dt.
func (s *Scheduler) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	switch {
	case s.nudge != nil:
		s.stepNudge(dt)
	case s.state.Phase == PhasePause:
		s.stepDwell(dt)
	case s.state.Phase == PhaseForward, s.state.Phase == PhaseBackward:
		s.stepAutoplay(dt)
	}
}

func (s *Scheduler) stepDwell(dt time.Duration) {
	if !s.dwellPending {
		return
	}
	s.dwellLeft -= dt
	if s.dwellLeft <= 0 {
		s.dwellPending = false
		s.dwellLeft = 0
		s.startForward()
	}
}

func (s *Scheduler) stepAutoplay(dt time.Duration) {
	if !s.primed {
		s.primed = true
		return
	}
	maxPos := s.geo.MaxPos()
	pos := s.state.Position + s.opts.Speed*float64(s.state.Direction)*dt.Seconds()

	if s.state.Phase == PhaseForward && pos >= maxPos {
		s.state.Position = maxPos
		s.startBackward()
		return
	}
	if s.state.Phase == PhaseBackward && pos <= 0 {
		s.state.Position = 0
		s.startPause()
		return
	}
	s.state.Position = clamp(pos, 0, maxPos)
}

func (s *Scheduler) stepNudge(dt time.Duration) {
	if !s.primed {
		s.primed = true
		return
	}
	s.nudge.elapsed += dt
	pos, done := s.nudge.progress()
	s.state.Position = clamp(pos, 0, s.geo.MaxPos())
	if done {
		s.nudge = nil
		s.startPause()
	}
}

// OnPointerEnter suspends autoplay. Position is kept and a pending dwell is
// cancelled. A nudge already in flight finishes on its own.
func (s *Scheduler) OnPointerEnter() {
	s.cancelDwell()
	if s.nudge != nil {
		return
	}
	s.state.Phase = PhaseIdle
	s.primed = false
}

// OnPointerLeave resumes autoplay forward from the current position, unless a
// dwell is pending (then the pause simply runs out) or a nudge is in flight.
func (s *Scheduler) OnPointerLeave() {
	if !s.geo.Scrollable() || s.nudge != nil || s.dwellPending {
		return
	}
	if s.state.Phase != PhaseIdle {
		return
	}
	s.startForward()
}

// OnNudge starts an eased one-slot transition in dir. It returns false when
// the strip is static or already at the boundary in that direction, which is
// when the matching control is disabled.
func (s *Scheduler) OnNudge(dir Direction) bool {
	maxPos := s.geo.MaxPos()
	if !s.geo.Scrollable() || maxPos <= 0 {
		return false
	}
	v := s.View()
	if dir == Forward && v.AtEnd || dir == Backward && v.AtStart {
		return false
	}

	s.cancelDwell()
	from := s.state.Position
	s.nudge = &nudge{
		from:     from,
		to:       clamp(from+float64(dir)*s.geo.Layout.SlotWidth(), 0, maxPos),
		duration: s.opts.NudgeDuration,
	}
	s.state.Phase = PhaseIdle
	s.primed = false
	return true
}

// OnResize applies a new layout. Crossing the breakpoint changes the number
// of visible slots and reinitializes the strip; otherwise the position is only
// ever clamped down to the new bound and the phase is left alone.
func (s *Scheduler) OnResize(l Layout) {
	slotsChanged := l.VisibleSlots() != s.geo.Layout.VisibleSlots()
	s.geo.Layout = l
	if slotsChanged {
		s.reset()
		return
	}
	if maxPos := s.geo.MaxPos(); s.state.Position > maxPos {
		s.state.Position = maxPos
	}
}

// OnDataRefresh replaces the item list. The strip is reinitialized only when
// the identity set or count changed; it reports whether that happened.
func (s *Scheduler) OnDataRefresh(items []models.ImageItem) bool {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	slices.Sort(ids)
	if slices.Equal(ids, s.ids) {
		return false
	}
	s.ids = ids
	s.geo.ItemCount = len(items)
	s.reset()
	return true
}

// Stop cancels every pending activity. Used on teardown.
func (s *Scheduler) Stop() {
	s.cancelDwell()
	s.nudge = nil
	s.primed = false
	s.state.Phase = PhaseIdle
}

// NextWake reports how long the host may wait before the next Tick. ok is
// false when nothing is scheduled (idle, static or stopped).
func (s *Scheduler) NextWake() (d time.Duration, ok bool) {
	switch {
	case s.nudge != nil:
		return s.opts.FrameInterval, true
	case s.state.Phase == PhaseForward, s.state.Phase == PhaseBackward:
		return s.opts.FrameInterval, true
	case s.state.Phase == PhasePause && s.dwellPending:
		return s.dwellLeft, true
	}
	return 0, false
}

func (s *Scheduler) reset() {
	s.state = State{Position: 0, Direction: Forward, Phase: PhasePause}
	s.nudge = nil
	s.primed = false
	s.cancelDwell()
	if s.geo.Scrollable() {
		s.armDwell()
	}
}

func (s *Scheduler) startForward() {
	s.cancelDwell()
	s.state.Phase = PhaseForward
	s.state.Direction = Forward
	s.primed = false
}

func (s *Scheduler) startBackward() {
	s.state.Phase = PhaseBackward
	s.state.Direction = Backward
	s.primed = false
}

func (s *Scheduler) startPause() {
	s.state.Phase = PhasePause
	s.primed = false
	s.armDwell()
}

func (s *Scheduler) armDwell() {
	s.dwellLeft = s.dwell()
	s.dwellPending = true
}

func (s *Scheduler) cancelDwell() {
	s.dwellPending = false
	s.dwellLeft = 0
}

func (s *Scheduler) dwell() time.Duration {
	if s.geo.Layout.Narrow {
		return s.opts.DwellNarrow
	}
	return s.opts.DwellWide
}
