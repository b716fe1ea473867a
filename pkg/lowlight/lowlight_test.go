package lowlight

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

type staticSource struct {
	data []byte
	err  error
}

func (s staticSource) CaptureJPEG() ([]byte, error) { return s.data, s.err }

func TestMeanRed(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	// left half of the crop bright, right half dark
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			r := uint8(0)
			if x < 10 {
				r = 200
			}
			img.SetRGBA(x, y, color.RGBA{R: r, G: 255, B: 255, A: 255})
		}
	}

	got, err := MeanRed(img, 20)
	if err != nil {
		t.Fatalf("MeanRed: %v", err)
	}
	if got != 100 {
		t.Errorf("MeanRed = %v, want 100 (only red counts, crop is 20x20)", got)
	}
}

func TestMeanRed_SmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 90
	}
	got, err := MeanRed(img, 20)
	if err != nil {
		t.Fatalf("MeanRed: %v", err)
	}
	if got != 90 {
		t.Errorf("MeanRed = %v, want 90", got)
	}

	if _, err := MeanRed(image.NewRGBA(image.Rect(0, 0, 0, 0)), 20); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("empty image: got %v, want ErrEmptyImage", err)
	}
}

func TestSampler_Sample(t *testing.T) {
	tests := []struct {
		name string
		red  uint8
		dark bool
	}{
		{"dark room", 10, true},
		{"just below threshold", 39, true},
		{"at threshold", 40, false},
		{"bright room", 180, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := staticSource{data: solidPNG(t, 64, 48, color.RGBA{R: tt.red, A: 255})}
			s := NewSampler(DefaultConfig(), src, RedMeter{CropSize: 20}, nil)

			if err := s.Sample(); err != nil {
				t.Fatalf("Sample: %v", err)
			}
			if s.LowLight() != tt.dark {
				t.Errorf("LowLight = %v, want %v", s.LowLight(), tt.dark)
			}
			if s.Level() != float64(tt.red) {
				t.Errorf("Level = %v, want %v", s.Level(), tt.red)
			}
		})
	}
}

func TestSampler_ErrorKeepsAdvisory(t *testing.T) {
	frames := &LatestFrame{}
	s := NewSampler(DefaultConfig(), frames, RedMeter{CropSize: 20}, nil)

	if err := s.Sample(); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("Sample without frame: got %v, want ErrNoFrame", err)
	}

	frames.Store(solidPNG(t, 32, 32, color.RGBA{R: 5, A: 255}))
	if err := s.Sample(); err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if !s.LowLight() {
		t.Fatal("expected low light")
	}

	frames.Store([]byte("not an image"))
	if err := s.Sample(); err == nil {
		t.Fatal("expected decode error")
	}
	if !s.LowLight() {
		t.Error("a failed sample must not clear the advisory")
	}
	if s.Samples() != 1 {
		t.Errorf("Samples = %d, want 1", s.Samples())
	}
}

func TestSampler_Run(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interval = 10 * time.Millisecond
	src := staticSource{data: solidPNG(t, 32, 32, color.RGBA{R: 2, A: 255})}
	s := NewSampler(cfg, src, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if s.Samples() == 0 {
		t.Error("expected at least one sample")
	}
	if !s.LowLight() {
		t.Error("expected low light after sampling a dark frame")
	}
}
