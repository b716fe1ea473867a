package affect

import "time"

// Config holds every tuned constant of the metrics pipeline.
//
// Eye and tension thresholds are in normalized landmark space; affect
// geometry offsets are in pixels of the source frame. The two spaces are
// calibrated independently and must not be unified.
type Config struct {
	Eyes      EyeConfig
	Jitter    JitterConfig
	Tension   TensionConfig
	Stress    StressConfig
	Affect    AffectConfig
	Smoothing SmoothingConfig
}

// EyeConfig tunes the blink state machine.
type EyeConfig struct {
	ClosedThreshold  float64       // average lid distance below this = closed (normalized)
	BlinkMaxDuration time.Duration // closures shorter than this count as blinks
	BlockingAfter    time.Duration // closures longer than this are "blocking"
	Window           time.Duration // blink history retention
}

// JitterConfig tunes the nose-tip tremor tracker.
type JitterConfig struct {
	Capacity   int     // samples kept in the FIFO
	MinSamples int     // score is 0 until the buffer holds more than this
	PathScale  float64 // pixels of path length per Gain points
	Gain       float64
	MaxScore   float64
}

// TensionConfig tunes the mouth compression test.
type TensionConfig struct {
	Ratio float64 // lipHeight/mouthWidth below this = tense
}

// StressTier maps blink rates below Below to Base stress.
type StressTier struct {
	Below int
	Base  float64
}

// StressConfig tunes the stress synthesizer.
type StressConfig struct {
	Tiers           []StressTier // ascending by Below
	CeilingBase     float64      // base for rates above every tier
	JitterThreshold float64
	JitterBoost     float64
	BlockingBoost   float64
	TensionBoost    float64
	Max             float64
}

// AffectConfig tunes the geometric affect estimator (pixel space).
type AffectConfig struct {
	HappinessOffset float64 // mouth corner spread, px
	HappinessGain   float64

	AngerOffset       float64 // inner brow distance, px
	AngerGain         float64
	AngerTensionBoost float64

	FearOffset     float64 // upper/lower lid distance, px
	FearGain       float64
	FearBlinkRate  int // blink rates above this boost fear
	FearBlinkBoost float64

	SadnessOffset        float64 // corner droop below lip center, px
	SadnessGain          float64
	SadnessBlockingBoost float64
}

// SmoothingConfig holds the EMA weights given to each new raw sample.
type SmoothingConfig struct {
	AffectAlpha float64
	StressAlpha float64
}

// DefaultConfig returns the calibrated production constants.
func DefaultConfig() Config {
	return Config{
		Eyes: EyeConfig{
			ClosedThreshold:  0.008,
			BlinkMaxDuration: 500 * time.Millisecond,
			BlockingAfter:    1000 * time.Millisecond,
			Window:           60 * time.Second, // window = 1 min, so count = blinks/min
		},
		Jitter: JitterConfig{
			Capacity:   10,
			MinSamples: 5,
			PathScale:  10,
			Gain:       50,
			MaxScore:   100,
		},
		Tension: TensionConfig{
			Ratio: 0.15,
		},
		Stress: StressConfig{
			Tiers: []StressTier{
				{Below: 10, Base: 10},
				{Below: 20, Base: 20},
				{Below: 40, Base: 50},
				{Below: 70, Base: 80},
			},
			CeilingBase:     100,
			JitterThreshold: 30,
			JitterBoost:     15,
			BlockingBoost:   30,
			TensionBoost:    20,
			Max:             100,
		},
		Affect: AffectConfig{
			HappinessOffset: 60,
			HappinessGain:   4,

			AngerOffset:       50,
			AngerGain:         4,
			AngerTensionBoost: 20,

			FearOffset:     12,
			FearGain:       15,
			FearBlinkRate:  40,
			FearBlinkBoost: 30,

			SadnessOffset:        3,
			SadnessGain:          8,
			SadnessBlockingBoost: 40,
		},
		Smoothing: SmoothingConfig{
			AffectAlpha: 0.15,
			StressAlpha: 0.1,
		},
	}
}
