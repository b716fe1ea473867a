// Package landmark defines the face-mesh landmark frames consumed by the
// metrics pipeline.
//
// Landmarks follow the MediaPipe Face Mesh topology (468 points, 478 with
// refined irises). Only the handful of indices listed below are read.
package landmark

import "math"

// Face mesh indices used by the metrics pipeline.
const (
	NoseTip = 1

	UpperLip          = 13
	LowerLip          = 14
	MouthCornerLeft   = 61
	MouthCornerRight  = 291
	InnerBrowLeft     = 105
	InnerBrowRight    = 334
	LeftEyeUpperLid   = 159
	LeftEyeLowerLid   = 145
	RightEyeUpperLid  = 386
	RightEyeLowerLid  = 374
	RefinedLandmarks  = 478
	StandardLandmarks = 468
)

// EyeIndices are the eyelid points needed for eye-opening measurement.
var EyeIndices = []int{LeftEyeUpperLid, LeftEyeLowerLid, RightEyeUpperLid, RightEyeLowerLid}

// MouthIndices are the lip points needed for tension and mouth geometry.
var MouthIndices = []int{UpperLip, LowerLip, MouthCornerLeft, MouthCornerRight}

// RequiredIndices is every index the full metrics pass reads.
var RequiredIndices = []int{
	NoseTip,
	UpperLip, LowerLip, MouthCornerLeft, MouthCornerRight,
	InnerBrowLeft, InnerBrowRight,
	LeftEyeUpperLid, LeftEyeLowerLid, RightEyeUpperLid, RightEyeLowerLid,
}

// Point is a normalized landmark position. X and Y are in [0,1] relative to
// the source image; Z is the model's relative depth and is not used here.
type Point struct {
	X float64 `json:"x" cbor:"x"`
	Y float64 `json:"y" cbor:"y"`
	Z float64 `json:"z,omitempty" cbor:"z,omitempty"`
}

// Frame is one tick of landmark output for a single face.
type Frame struct {
	Points []Point `json:"points" cbor:"points"`
	Width  int     `json:"width" cbor:"width"`   // source image width in pixels
	Height int     `json:"height" cbor:"height"` // source image height in pixels
}

// Valid reports whether p is a finite position inside the unit square.
func (p Point) Valid() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Has reports whether every index is present with a valid position.
// Out-of-range or non-finite points count as missing.
func (f *Frame) Has(indices ...int) bool {
	if f == nil {
		return false
	}
	for _, i := range indices {
		if i < 0 || i >= len(f.Points) || !f.Points[i].Valid() {
			return false
		}
	}
	return true
}

// Measurable is Has plus positive pixel dimensions, the precondition for
// any pixel-space measurement.
func (f *Frame) Measurable(indices ...int) bool {
	return f != nil && f.Width > 0 && f.Height > 0 && f.Has(indices...)
}

// Complete reports whether every required index can be measured.
func (f *Frame) Complete() bool {
	return f.Measurable(RequiredIndices...)
}

// Validate returns ErrMissingLandmark if any required index is absent or
// invalid, or the frame has no pixel size.
func (f *Frame) Validate() error {
	if f == nil || len(f.Points) == 0 {
		return ErrNoFace
	}
	if !f.Complete() {
		return ErrMissingLandmark
	}
	return nil
}

// At returns the point at index i. Callers must check Has first.
func (f *Frame) At(i int) Point {
	return f.Points[i]
}

// Distance is the Euclidean distance between two landmarks in normalized space.
func (f *Frame) Distance(a, b int) float64 {
	return Distance(f.Points[a], f.Points[b], 1, 1)
}

// PixelDistance is the Euclidean distance between two landmarks after
// scaling by the frame's pixel width and height.
func (f *Frame) PixelDistance(a, b int) float64 {
	return Distance(f.Points[a], f.Points[b], float64(f.Width), float64(f.Height))
}

// PixelPoint returns landmark i scaled to pixel space.
func (f *Frame) PixelPoint(i int) (x, y float64) {
	p := f.Points[i]
	return p.X * float64(f.Width), p.Y * float64(f.Height)
}

// Distance computes the planar distance between a and b with each axis scaled
// by w and h.
func Distance(a, b Point, w, h float64) float64 {
	dx := a.X*w - b.X*w
	dy := a.Y*h - b.Y*h
	return math.Sqrt(dx*dx + dy*dy)
}
