package affect

import "time"

// BlinkWindow is a time-pruned history of blink timestamps.
type BlinkWindow struct {
	retention time.Duration
	events    []time.Time
}

// NewBlinkWindow creates an empty window that keeps events younger than retention.
func NewBlinkWindow(retention time.Duration) BlinkWindow {
	return BlinkWindow{retention: retention}
}

// Record appends a blink at t.
func (w *BlinkWindow) Record(t time.Time) {
	w.events = append(w.events, t)
}

// Prune drops every event whose age at now is >= retention.
// Events stamped after now (clock skew) have age 0 and are kept.
func (w *BlinkWindow) Prune(now time.Time) {
	kept := w.events[:0]
	for _, t := range w.events {
		if nonNegative(now.Sub(t)) < w.retention {
			kept = append(kept, t)
		}
	}
	// zero the tail so dropped timestamps don't pin memory
	for i := len(kept); i < len(w.events); i++ {
		w.events[i] = time.Time{}
	}
	w.events = kept
}

// Len is the number of blinks currently in the window.
func (w *BlinkWindow) Len() int {
	return len(w.events)
}

// Events returns a copy of the retained timestamps, oldest first.
func (w *BlinkWindow) Events() []time.Time {
	return append([]time.Time(nil), w.events...)
}

func (w BlinkWindow) clone() BlinkWindow {
	w.events = append([]time.Time(nil), w.events...)
	return w
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
