package affect

import (
	"time"

	"github.com/teslashibe/go-mindwave/pkg/landmark"
)

// EyeState is the open/closed state of the eye pair.
type EyeState int

const (
	EyeOpen EyeState = iota
	EyeClosed
)

func (s EyeState) String() string {
	switch s {
	case EyeOpen:
		return "open"
	case EyeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EyeReading is the per-frame output of EyeTracker.
type EyeReading struct {
	BlinkRate int  // blinks in the last window (per minute with the default window)
	Blocking  bool // eyes held shut past the blocking threshold
}

// EyeTracker detects completed blinks and prolonged closures.
type EyeTracker struct {
	cfg      EyeConfig
	state    EyeState
	closedAt time.Time
	blinks   BlinkWindow
}

// NewEyeTracker creates a tracker in the open state with an empty window.
func NewEyeTracker(cfg EyeConfig) EyeTracker {
	return EyeTracker{
		cfg:    cfg,
		blinks: NewBlinkWindow(cfg.Window),
	}
}

// EyeOpening is the mean of the left and right upper/lower lid distances in
// normalized space. The frame must carry landmark.EyeIndices.
func EyeOpening(f *landmark.Frame) float64 {
	left := f.Distance(landmark.LeftEyeUpperLid, landmark.LeftEyeLowerLid)
	right := f.Distance(landmark.RightEyeUpperLid, landmark.RightEyeLowerLid)
	return (left + right) / 2
}

// Update feeds one eye-opening measurement taken at now.
func (t *EyeTracker) Update(opening float64, now time.Time) EyeReading {
	if opening < t.cfg.ClosedThreshold {
		if t.state == EyeOpen {
			t.state = EyeClosed
			t.closedAt = now
		}
	} else if t.state == EyeClosed {
		if nonNegative(now.Sub(t.closedAt)) < t.cfg.BlinkMaxDuration {
			t.blinks.Record(now)
		}
		t.state = EyeOpen
	}
	return t.Age(now)
}

// Age prunes the blink window at now without a new measurement. Used when a
// frame carries no eye landmarks; the open/closed state is kept as is.
func (t *EyeTracker) Age(now time.Time) EyeReading {
	t.blinks.Prune(now)
	return EyeReading{
		BlinkRate: t.blinks.Len(),
		Blocking:  t.state == EyeClosed && nonNegative(now.Sub(t.closedAt)) > t.cfg.BlockingAfter,
	}
}

// State returns the current eye state.
func (t *EyeTracker) State() EyeState {
	return t.state
}

// Blinks returns the retained blink timestamps.
func (t *EyeTracker) Blinks() []time.Time {
	return t.blinks.Events()
}

func (t EyeTracker) clone() EyeTracker {
	t.blinks = t.blinks.clone()
	return t
}
