package landmark

import (
	"errors"
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		w, h float64
		want float64
	}{
		{"normalized", Point{X: 0, Y: 0}, Point{X: 0.3, Y: 0.4}, 1, 1, 0.5},
		{"pixel", Point{X: 0, Y: 0}, Point{X: 0.3, Y: 0.4}, 100, 100, 50},
		{"anisotropic", Point{X: 0.1, Y: 0.1}, Point{X: 0.2, Y: 0.1}, 640, 480, 64},
		{"same point", Point{X: 0.5, Y: 0.5}, Point{X: 0.5, Y: 0.5}, 1280, 720, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b, tt.w, tt.h)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrame_Has(t *testing.T) {
	f := NewFrame(640, 480)
	if !f.Has(RequiredIndices...) {
		t.Error("full mesh should have every required index")
	}

	short := &Frame{Points: make([]Point, 100)}
	if short.Has(MouthCornerRight) {
		t.Error("100-point frame should not have index 291")
	}
	if !short.Has(NoseTip, UpperLip) {
		t.Error("100-point frame should have indices 1 and 13")
	}

	var nilFrame *Frame
	if nilFrame.Has(NoseTip) {
		t.Error("nil frame has nothing")
	}
}

func TestFrame_InvalidPointsAreMissing(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
	}{
		{"huge", 0.5, 1e308},
		{"negative", -0.1, 0.5},
		{"above one", 1.01, 0.5},
		{"nan", math.NaN(), 0.5},
		{"inf", 0.5, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(640, 480).Set(UpperLip, tt.x, tt.y)
			if f.Has(UpperLip) {
				t.Errorf("point (%v, %v) should not count as present", tt.x, tt.y)
			}
			if f.Complete() {
				t.Error("frame with an invalid required point should be incomplete")
			}
			if err := f.Validate(); !errors.Is(err, ErrMissingLandmark) {
				t.Errorf("got %v, want ErrMissingLandmark", err)
			}
			if !f.Has(NoseTip) {
				t.Error("other points are unaffected")
			}
		})
	}

	if !NewFrame(640, 480).Set(UpperLip, 1, 0).Has(UpperLip) {
		t.Error("unit square bounds are inclusive")
	}
}

func TestFrame_Measurable(t *testing.T) {
	sized := NewFrame(640, 480)
	if !sized.Measurable(RequiredIndices...) {
		t.Error("sized full mesh should be measurable")
	}

	for _, f := range []*Frame{NewFrame(0, 480), NewFrame(640, 0), NewFrame(-1, -1)} {
		if !f.Has(NoseTip) {
			t.Error("points are present regardless of size")
		}
		if f.Measurable(NoseTip) || f.Complete() {
			t.Errorf("%dx%d frame should not be measurable", f.Width, f.Height)
		}
	}
}

func TestFrame_Validate(t *testing.T) {
	var nilFrame *Frame
	if err := nilFrame.Validate(); !errors.Is(err, ErrNoFace) {
		t.Errorf("nil frame: got %v, want ErrNoFace", err)
	}
	if err := (&Frame{}).Validate(); !errors.Is(err, ErrNoFace) {
		t.Errorf("empty frame: got %v, want ErrNoFace", err)
	}
	if err := (&Frame{Points: make([]Point, 200)}).Validate(); !errors.Is(err, ErrMissingLandmark) {
		t.Errorf("short frame: got %v, want ErrMissingLandmark", err)
	}
	if err := NewFrame(640, 480).Validate(); err != nil {
		t.Errorf("full frame: unexpected error %v", err)
	}
}

func TestFrame_PixelDistance(t *testing.T) {
	f := NewFrame(1000, 500).
		Set(MouthCornerLeft, 0.40, 0.60).
		Set(MouthCornerRight, 0.47, 0.60)

	if got := f.PixelDistance(MouthCornerLeft, MouthCornerRight); math.Abs(got-70) > 1e-9 {
		t.Errorf("PixelDistance = %v, want 70", got)
	}
	if got := f.Distance(MouthCornerLeft, MouthCornerRight); math.Abs(got-0.07) > 1e-9 {
		t.Errorf("Distance = %v, want 0.07", got)
	}

	x, y := f.PixelPoint(MouthCornerLeft)
	if x != 400 || y != 300 {
		t.Errorf("PixelPoint = (%v, %v), want (400, 300)", x, y)
	}
}

func TestFrame_SetGrowsAndClone(t *testing.T) {
	f := &Frame{Width: 10, Height: 10}
	f.Set(5, 0.1, 0.2)
	if len(f.Points) != 6 {
		t.Fatalf("len = %d, want 6", len(f.Points))
	}

	c := f.Clone()
	c.Set(5, 0.9, 0.9)
	if f.At(5).X != 0.1 {
		t.Error("Clone should not share points with the original")
	}
}
