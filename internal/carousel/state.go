package carousel

import "time"

// Direction of travel along the strip.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Phase of the autoplay state machine.
type Phase int

const (
	PhasePause Phase = iota
	PhaseForward
	PhaseBackward
	PhaseIdle
)

func (p Phase) String() string {
	switch p {
	case PhasePause:
		return "pause"
	case PhaseForward:
		return "forward"
	case PhaseBackward:
		return "backward"
	case PhaseIdle:
		return "idle"
	}
	return "unknown"
}

// State is the mutable part of the carousel.
type State struct {
	Position  float64
	Direction Direction
	Phase     Phase
}

const (
	DefaultSpeed         = 60.0 // px/s
	DefaultDwellNarrow   = 3 * time.Second
	DefaultDwellWide     = 120 * time.Second
	DefaultNudgeDuration = 360 * time.Millisecond
	DefaultFrameInterval = time.Second / 60
)

// Options tune the scheduler. Zero values fall back to the defaults above.
type Options struct {
	Speed         float64
	DwellNarrow   time.Duration
	DwellWide     time.Duration
	NudgeDuration time.Duration
	FrameInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Speed <= 0 {
		o.Speed = DefaultSpeed
	}
	if o.DwellNarrow <= 0 {
		o.DwellNarrow = DefaultDwellNarrow
	}
	if o.DwellWide <= 0 {
		o.DwellWide = DefaultDwellWide
	}
	if o.NudgeDuration <= 0 {
		o.NudgeDuration = DefaultNudgeDuration
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = DefaultFrameInterval
	}
	return o
}
