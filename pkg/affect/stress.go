package affect

import "math"

// Signals are the cross-component inputs shared by stress and affect.
type Signals struct {
	BlinkRate int
	Jitter    float64
	Blocking  bool
	Tense     bool
}

// StressBase maps a blink rate to its tier. Both suppressed and hyperactive
// blinking score high; the calm baseline sits in the middle tiers.
func StressBase(rate int, cfg StressConfig) float64 {
	for _, tier := range cfg.Tiers {
		if rate < tier.Below {
			return tier.Base
		}
	}
	return cfg.CeilingBase
}

// SynthesizeStress combines the four signals into a 0-Max score.
func SynthesizeStress(s Signals, cfg StressConfig) float64 {
	stress := StressBase(s.BlinkRate, cfg)
	if s.Jitter > cfg.JitterThreshold {
		stress += cfg.JitterBoost
	}
	if s.Blocking {
		stress += cfg.BlockingBoost
	}
	if s.Tense {
		stress += cfg.TensionBoost
	}
	return math.Min(cfg.Max, stress)
}
