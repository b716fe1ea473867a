// Package affect turns a stream of face-mesh landmark frames into a smoothed
// affect distribution and stress score.
//
// Every component is a plain value owned by a State. Step is a pure
// transition from (State, frame) to (State, DisplayMetrics); Pipeline wraps
// it with a clock for live use. Nothing in this package blocks or logs.
package affect

import (
	"math"

	"github.com/teslashibe/go-mindwave/pkg/landmark"
)

// Vector is an affect distribution in percent.
type Vector struct {
	Happiness float64 `json:"happiness"`
	Sadness   float64 `json:"sadness"`
	Anger     float64 `json:"anger"`
	Fear      float64 `json:"fear"`
	Neutral   float64 `json:"neutral"`
}

// InitialVector is the resting distribution before any frame is seen.
var InitialVector = Vector{Neutral: 100}

// Active is the sum of the four non-neutral channels.
func (v Vector) Active() float64 {
	return v.Happiness + v.Sadness + v.Anger + v.Fear
}

// Capped returns v with every channel clamped to [0,100].
func (v Vector) Capped() Vector {
	return Vector{
		Happiness: clamp(v.Happiness, 0, 100),
		Sadness:   clamp(v.Sadness, 0, 100),
		Anger:     clamp(v.Anger, 0, 100),
		Fear:      clamp(v.Fear, 0, 100),
		Neutral:   clamp(v.Neutral, 0, 100),
	}
}

// Geometry is the pixel-space face measurement feeding EstimateAffect.
type Geometry struct {
	MouthCornerDistance float64 // left to right corner
	InterBrowDistance   float64 // inner brow points
	EyeOpenDistance     float64 // left upper to lower lid
	MouthCornerDroop    float64 // mean corner y minus upper-lip y (positive = corners below)
}

// MeasureGeometry extracts Geometry from a complete frame.
func MeasureGeometry(f *landmark.Frame) Geometry {
	h := float64(f.Height)
	corners := (f.At(landmark.MouthCornerLeft).Y + f.At(landmark.MouthCornerRight).Y) / 2 * h
	center := f.At(landmark.UpperLip).Y * h

	return Geometry{
		MouthCornerDistance: f.PixelDistance(landmark.MouthCornerLeft, landmark.MouthCornerRight),
		InterBrowDistance:   f.PixelDistance(landmark.InnerBrowLeft, landmark.InnerBrowRight),
		EyeOpenDistance:     f.PixelDistance(landmark.LeftEyeUpperLid, landmark.LeftEyeLowerLid),
		MouthCornerDroop:    corners - center,
	}
}

// EstimateAffect derives the raw affect vector.
//
// Each active channel is clamp(linear term, 0, 100) plus its conditional
// boost, so a boosted channel can exceed 100. Neutral is the remainder of
// 100 after these uncapped values and is never negative. Callers cap the
// channels (Vector.Capped) at the point of display.
func EstimateAffect(g Geometry, s Signals, cfg AffectConfig) Vector {
	v := Vector{
		Happiness: clamp((g.MouthCornerDistance-cfg.HappinessOffset)*cfg.HappinessGain, 0, 100),
		Anger:     clamp((cfg.AngerOffset-g.InterBrowDistance)*cfg.AngerGain, 0, 100),
		Fear:      clamp((g.EyeOpenDistance-cfg.FearOffset)*cfg.FearGain, 0, 100),
		Sadness:   clamp((g.MouthCornerDroop-cfg.SadnessOffset)*cfg.SadnessGain, 0, 100),
	}
	if s.Tense {
		v.Anger += cfg.AngerTensionBoost
	}
	if s.BlinkRate > cfg.FearBlinkRate {
		v.Fear += cfg.FearBlinkBoost
	}
	if s.Blocking {
		v.Sadness += cfg.SadnessBlockingBoost
	}
	v.Neutral = math.Max(0, 100-v.Active())
	return v
}

// clamp bounds x to [lo,hi]; NaN maps to lo.
func clamp(x, lo, hi float64) float64 {
	if !(x >= lo) {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
