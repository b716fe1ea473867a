package affect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJitterTracker_InsufficientHistory(t *testing.T) {
	j := NewJitterTracker(DefaultConfig().Jitter)
	for i := 0; i < 5; i++ {
		score := j.Push(Vec{X: float64(i * 40), Y: 0})
		assert.Zero(t, score, "sample %d: score must be 0 with <=5 samples", i+1)
	}

	// sixth sample: 5 deltas of 40px = 200px path
	assert.Equal(t, 100.0, j.Push(Vec{X: 200, Y: 0}))
}

func TestJitterTracker_IdenticalPoints(t *testing.T) {
	j := NewJitterTracker(DefaultConfig().Jitter)
	for i := 0; i < 25; i++ {
		assert.Zero(t, j.Push(Vec{X: 320, Y: 240}))
	}
	assert.Equal(t, 10, j.Len())
}

func TestJitterTracker_Score(t *testing.T) {
	tests := []struct {
		name  string
		step  float64 // x delta between consecutive samples
		count int
		want  float64
	}{
		{"six samples, 1px steps", 1, 6, 25},     // path 5 -> 5/10*50
		{"ten samples, 1px steps", 1, 10, 45},    // path 9
		{"full buffer after overflow", 1, 30, 45}, // still 9 deltas
		{"large motion saturates", 10, 10, 100},
		{"sub-pixel steps", 0.2, 10, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewJitterTracker(DefaultConfig().Jitter)
			var score float64
			for i := 0; i < tt.count; i++ {
				score = j.Push(Vec{X: float64(i) * tt.step, Y: 100})
			}
			assert.InDelta(t, tt.want, score, 1e-9)
		})
	}
}

func TestJitterTracker_EvictsOldest(t *testing.T) {
	j := NewJitterTracker(DefaultConfig().Jitter)
	for i := 0; i < 12; i++ {
		j.Push(Vec{X: float64(i)})
	}

	samples := j.Samples()
	assert.Len(t, samples, 10)
	assert.Equal(t, 2.0, samples[0].X, "two oldest samples evicted")
	assert.Equal(t, 11.0, samples[9].X)
}

func TestJitterTracker_DiagonalPath(t *testing.T) {
	j := NewJitterTracker(DefaultConfig().Jitter)
	for i := 0; i < 6; i++ {
		j.Push(Vec{X: float64(i) * 0.3, Y: float64(i) * 0.4})
	}
	assert.InDelta(t, 2.5, j.PathLength(), 1e-9)
	assert.InDelta(t, 12.5, j.Score(), 1e-9)
}
