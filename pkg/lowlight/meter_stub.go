//go:build !gocv

package lowlight

// NewDefaultMeter returns the pure-Go meter; build with -tags gocv for OpenCV.
func NewDefaultMeter(cfg Config) Meter {
	return RedMeter{CropSize: cfg.CropSize}
}
