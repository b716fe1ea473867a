// Package lowlight samples scene brightness at a low rate, independent of
// the per-frame metrics path, and exposes a "too dark" advisory.
package lowlight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// FrameSource supplies the latest source image as encoded bytes.
type FrameSource interface {
	CaptureJPEG() ([]byte, error)
}

// Meter measures the brightness (0-255) of an encoded image.
type Meter interface {
	Measure(img []byte) (float64, error)
}

// Config holds sampler parameters.
type Config struct {
	Interval  time.Duration // how often to sample
	CropSize  int           // side of the square crop at the image origin, px
	Threshold float64       // mean red level below this is low light
}

// DefaultConfig samples a 20x20 crop once per second against a level of 40.
func DefaultConfig() Config {
	return Config{
		Interval:  time.Second,
		CropSize:  20,
		Threshold: 40,
	}
}

// RedMeter averages the red channel over the top-left crop.
type RedMeter struct {
	CropSize int
}

// Measure decodes img and returns the mean 8-bit red level of the crop.
func (m RedMeter) Measure(data []byte) (float64, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}
	return MeanRed(img, m.CropSize)
}

// MeanRed averages the red channel over the size x size crop anchored at the
// image's minimum point. Crops larger than the image are truncated.
func MeanRed(img image.Image, size int) (float64, error) {
	b := img.Bounds()
	crop := image.Rect(b.Min.X, b.Min.Y, b.Min.X+size, b.Min.Y+size).Intersect(b)
	if crop.Empty() {
		return 0, ErrEmptyImage
	}

	var total uint64
	for y := crop.Min.Y; y < crop.Max.Y; y++ {
		for x := crop.Min.X; x < crop.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			total += uint64(r >> 8)
		}
	}
	return float64(total) / float64(crop.Dx()*crop.Dy()), nil
}

// Sampler periodically measures the latest frame and latches the advisory.
type Sampler struct {
	cfg    Config
	source FrameSource
	meter  Meter
	logger *slog.Logger

	dark    atomic.Bool
	level   atomic.Uint64 // math.Float64bits of the last level
	samples atomic.Uint64
}

// NewSampler creates a sampler. A nil meter uses NewDefaultMeter.
func NewSampler(cfg Config, source FrameSource, meter Meter, logger *slog.Logger) *Sampler {
	if meter == nil {
		meter = NewDefaultMeter(cfg)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		cfg:    cfg,
		source: source,
		meter:  meter,
		logger: logger,
	}
}

// Sample takes one measurement. On error the previous advisory is kept.
func (s *Sampler) Sample() error {
	if s.source == nil {
		return ErrNoFrame
	}
	data, err := s.source.CaptureJPEG()
	if err != nil {
		return err
	}
	level, err := s.meter.Measure(data)
	if err != nil {
		return err
	}

	wasDark := s.dark.Load()
	isDark := level < s.cfg.Threshold
	s.level.Store(math.Float64bits(level))
	s.dark.Store(isDark)
	s.samples.Add(1)

	if isDark != wasDark {
		s.logger.Debug("low light advisory changed", "dark", isDark, "level", level)
	}
	return nil
}

// Run samples every Interval until ctx is done.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sample(); err != nil && !errors.Is(err, ErrNoFrame) {
				s.logger.Debug("luminance sample failed", "error", err)
			}
		}
	}
}

// LowLight reports whether the last sample was below the threshold.
func (s *Sampler) LowLight() bool {
	return s.dark.Load()
}

// Level returns the last measured brightness.
func (s *Sampler) Level() float64 {
	return math.Float64frombits(s.level.Load())
}

// Samples returns how many measurements have succeeded.
func (s *Sampler) Samples() uint64 {
	return s.samples.Load()
}

// LatestFrame is a FrameSource holding the most recently pushed image.
type LatestFrame struct {
	mu   sync.RWMutex
	data []byte
}

// Store replaces the held image.
func (l *LatestFrame) Store(data []byte) {
	l.mu.Lock()
	l.data = data
	l.mu.Unlock()
}

// CaptureJPEG returns the held image or ErrNoFrame.
func (l *LatestFrame) CaptureJPEG() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.data) == 0 {
		return nil, ErrNoFrame
	}
	return l.data, nil
}
