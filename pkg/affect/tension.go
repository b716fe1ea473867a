package affect

import "github.com/teslashibe/go-mindwave/pkg/landmark"

// ClassifyTension reports mouth compression: lipHeight/mouthWidth < Ratio.
// A zero or invalid mouth width is never tense.
func ClassifyTension(lipHeight, mouthWidth float64, cfg TensionConfig) bool {
	if !(mouthWidth > 0) {
		return false
	}
	return lipHeight/mouthWidth < cfg.Ratio
}

// FrameTension applies ClassifyTension to the frame's normalized lip geometry.
func FrameTension(f *landmark.Frame, cfg TensionConfig) bool {
	if !f.Has(landmark.MouthIndices...) {
		return false
	}
	lip := f.Distance(landmark.UpperLip, landmark.LowerLip)
	width := f.Distance(landmark.MouthCornerLeft, landmark.MouthCornerRight)
	return ClassifyTension(lip, width, cfg)
}
