package landmark

// NewFrame returns a frame with a full refined mesh of zeroed points.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Points: make([]Point, RefinedLandmarks),
		Width:  width,
		Height: height,
	}
}

// Set places landmark i at (x, y) and returns the frame for chaining.
// Indices beyond the current mesh grow it.
func (f *Frame) Set(i int, x, y float64) *Frame {
	if i >= len(f.Points) {
		grown := make([]Point, i+1)
		copy(grown, f.Points)
		f.Points = grown
	}
	f.Points[i] = Point{X: x, Y: y}
	return f
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	c := *f
	c.Points = append([]Point(nil), f.Points...)
	return &c
}
