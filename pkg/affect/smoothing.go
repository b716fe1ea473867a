package affect

// Smoother holds the display-stable exponential moving averages.
// There is no reset; zero input decays the values toward zero.
type Smoother struct {
	cfg    SmoothingConfig
	affect Vector
	stress float64
}

// NewSmoother starts at the resting distribution with zero stress.
func NewSmoother(cfg SmoothingConfig) Smoother {
	return Smoother{cfg: cfg, affect: InitialVector}
}

// Update blends one raw sample into every channel.
func (s *Smoother) Update(raw Vector, rawStress float64) {
	a := s.cfg.AffectAlpha
	s.affect = Vector{
		Happiness: ema(s.affect.Happiness, raw.Happiness, a),
		Sadness:   ema(s.affect.Sadness, raw.Sadness, a),
		Anger:     ema(s.affect.Anger, raw.Anger, a),
		Fear:      ema(s.affect.Fear, raw.Fear, a),
		Neutral:   ema(s.affect.Neutral, raw.Neutral, a),
	}
	s.stress = ema(s.stress, rawStress, s.cfg.StressAlpha)
}

// Affect returns the smoothed distribution.
func (s Smoother) Affect() Vector {
	return s.affect
}

// Stress returns the smoothed stress score.
func (s Smoother) Stress() float64 {
	return s.stress
}

// ema returns prev*(1-alpha) + sample*alpha.
func ema(prev, sample, alpha float64) float64 {
	return prev*(1-alpha) + sample*alpha
}
