package landmark

import "errors"

var (
	// ErrNoFace is returned when a frame carries no landmarks at all.
	ErrNoFace = errors.New("no face in frame")

	// ErrMissingLandmark is returned when a frame lacks a usable required index.
	ErrMissingLandmark = errors.New("frame missing required landmark")
)
