package lowlight

import "errors"

var (
	// ErrNoFrame is returned when no source image is available yet.
	ErrNoFrame = errors.New("no frame available")

	// ErrEmptyImage is returned when the crop covers no pixels.
	ErrEmptyImage = errors.New("empty image")
)
