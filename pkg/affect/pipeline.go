package affect

import (
	"math"
	"time"

	"github.com/teslashibe/go-mindwave/pkg/landmark"
)

// State is the complete per-session state of the metrics pipeline.
// A State is created once per assessment session and replaced by Step on
// every frame; Step never mutates the State it is given.
type State struct {
	Config   Config
	Eyes     EyeTracker
	Jitter   JitterTracker
	Smoother Smoother
	Frames   uint64 // frames processed, tracked or not

	// Jitter and tension of the last tracked frame, reported while searching.
	LastJitter float64
	LastTense  bool
}

// NewState creates the initial session state.
func NewState(cfg Config) State {
	return State{
		Config:   cfg,
		Eyes:     NewEyeTracker(cfg.Eyes),
		Jitter:   NewJitterTracker(cfg.Jitter),
		Smoother: NewSmoother(cfg.Smoothing),
	}
}

// Clone returns a deep copy whose rolling windows share no memory with s.
func (s State) Clone() State {
	s.Eyes = s.Eyes.clone()
	s.Jitter = s.Jitter.clone()
	return s
}

// Input is one tick delivered to Step.
type Input struct {
	Frame    *landmark.Frame // nil when no face was detected
	Now      time.Time       // monotonic, shared by every component
	LowLight bool            // latest advisory from the luminance sampler
}

// Percentages are display-rounded values.
type Percentages struct {
	Happiness int `json:"happiness"`
	Sadness   int `json:"sadness"`
	Anger     int `json:"anger"`
	Fear      int `json:"fear"`
	Neutral   int `json:"neutral"`
	Stress    int `json:"stress"`
}

// DisplayMetrics is the per-frame output record for the presentation layer.
type DisplayMetrics struct {
	Affect  Vector         `json:"affect"`
	Stress  float64        `json:"stress"`
	Label   string         `json:"label"`
	Status  TrackingStatus `json:"status"`
	Display Percentages    `json:"display"`

	// Blink rate and blocking are current; jitter and tense come from the
	// last tracked frame.
	BlinkRate int     `json:"blink_rate"`
	Jitter    float64 `json:"jitter"`
	Blocking  bool    `json:"blocking"`
	Tense     bool    `json:"tense"`

	Frame uint64 `json:"frame"`
}

// Step runs one metrics pass.
//
// A frame lacking any required landmark, or carrying one outside the unit
// square, is treated as no face: the raw affect and stress fed to the
// smoother are all zero, which pulls the display toward calm. Blink history keeps aging by time regardless, and the
// eye state machine still advances if the eyelid points are present.
func Step(prev State, in Input) (State, DisplayMetrics) {
	next := prev.Clone()
	cfg := next.Config
	f := in.Frame

	var eyes EyeReading
	if f.Measurable(landmark.EyeIndices...) {
		eyes = next.Eyes.Update(EyeOpening(f), in.Now)
	} else {
		eyes = next.Eyes.Age(in.Now)
	}

	sig := Signals{BlinkRate: eyes.BlinkRate, Blocking: eyes.Blocking}
	tracked := f.Complete()

	var raw Vector
	var rawStress float64
	if tracked {
		x, y := f.PixelPoint(landmark.NoseTip)
		sig.Jitter = next.Jitter.Push(Vec{X: x, Y: y})
		sig.Tense = FrameTension(f, cfg.Tension)

		rawStress = SynthesizeStress(sig, cfg.Stress)
		raw = EstimateAffect(MeasureGeometry(f), sig, cfg.Affect).Capped()
		next.LastJitter, next.LastTense = sig.Jitter, sig.Tense
	} else {
		sig.Jitter, sig.Tense = next.LastJitter, next.LastTense
	}

	next.Smoother.Update(raw, rawStress)
	next.Frames++

	return next, next.metrics(sig, tracked, in.LowLight)
}

func (s *State) metrics(sig Signals, tracked, lowLight bool) DisplayMetrics {
	v := s.Smoother.Affect()
	stress := s.Smoother.Stress()
	return DisplayMetrics{
		Affect: v,
		Stress: stress,
		Label:  LevelFor(stress).String(),
		Status: StatusFor(tracked, lowLight),
		Display: Percentages{
			Happiness: round(v.Happiness),
			Sadness:   round(v.Sadness),
			Anger:     round(v.Anger),
			Fear:      round(v.Fear),
			Neutral:   round(v.Neutral),
			Stress:    round(stress),
		},
		BlinkRate: sig.BlinkRate,
		Jitter:    sig.Jitter,
		Blocking:  sig.Blocking,
		Tense:     sig.Tense,
		Frame:     s.Frames,
	}
}

func round(x float64) int {
	return int(math.Round(x))
}

// LowLightAdvisor reports whether the scene was last measured as too dark.
type LowLightAdvisor interface {
	LowLight() bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source. The clock must be non-decreasing.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLowLight attaches the luminance advisory.
func WithLowLight(a LowLightAdvisor) Option {
	return func(p *Pipeline) { p.lowLight = a }
}

// Pipeline owns one session's State and advances it once per frame.
// It is not safe for concurrent use: frames must be delivered serially.
type Pipeline struct {
	state    State
	now      func() time.Time
	lowLight LowLightAdvisor
}

// NewPipeline creates a pipeline with a fresh session state.
func NewPipeline(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		state: NewState(cfg),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one pass for frame, which may be nil when no face was found.
func (p *Pipeline) Process(frame *landmark.Frame) DisplayMetrics {
	in := Input{Frame: frame, Now: p.now()}
	if p.lowLight != nil {
		in.LowLight = p.lowLight.LowLight()
	}
	var m DisplayMetrics
	p.state, m = Step(p.state, in)
	return m
}

// State returns a copy of the current session state.
func (p *Pipeline) State() State {
	return p.state.Clone()
}
