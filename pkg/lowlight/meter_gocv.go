//go:build gocv

package lowlight

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// GoCVMeter measures the crop's red channel with OpenCV. It is faster than
// RedMeter on full-resolution frames since only the crop is averaged in C.
type GoCVMeter struct {
	CropSize int
}

// NewDefaultMeter prefers OpenCV when built with -tags gocv.
func NewDefaultMeter(cfg Config) Meter {
	return GoCVMeter{CropSize: cfg.CropSize}
}

// Measure decodes data and returns the mean red level of the crop.
func (m GoCVMeter) Measure(data []byte) (float64, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return 0, ErrEmptyImage
	}

	crop := image.Rect(0, 0, m.CropSize, m.CropSize).Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
	if crop.Empty() {
		return 0, ErrEmptyImage
	}

	region := img.Region(crop)
	defer region.Close()

	// BGR order: Val3 is red
	return region.Mean().Val3, nil
}
