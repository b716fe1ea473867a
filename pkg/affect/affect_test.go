package affect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teslashibe/go-mindwave/pkg/landmark"
)

// restingFace returns a 640x480 frame with relaxed, open-eyed geometry:
// corners 64px apart, brows 64px apart, left lids 9.6px apart, corners
// 4.8px below the upper lip.
func restingFace() *landmark.Frame {
	return landmark.NewFrame(640, 480).
		Set(landmark.NoseTip, 0.50, 0.50).
		Set(landmark.UpperLip, 0.50, 0.70).
		Set(landmark.LowerLip, 0.50, 0.73).
		Set(landmark.MouthCornerLeft, 0.45, 0.71).
		Set(landmark.MouthCornerRight, 0.55, 0.71).
		Set(landmark.InnerBrowLeft, 0.45, 0.35).
		Set(landmark.InnerBrowRight, 0.55, 0.35).
		Set(landmark.LeftEyeUpperLid, 0.42, 0.42).
		Set(landmark.LeftEyeLowerLid, 0.42, 0.44).
		Set(landmark.RightEyeUpperLid, 0.58, 0.42).
		Set(landmark.RightEyeLowerLid, 0.58, 0.44)
}

func TestMeasureGeometry(t *testing.T) {
	g := MeasureGeometry(restingFace())

	assert.InDelta(t, 64, g.MouthCornerDistance, 1e-9)
	assert.InDelta(t, 64, g.InterBrowDistance, 1e-9)
	assert.InDelta(t, 9.6, g.EyeOpenDistance, 1e-9)
	assert.InDelta(t, 4.8, g.MouthCornerDroop, 1e-9)
}

func TestEstimateAffect_RestingFace(t *testing.T) {
	cfg := DefaultConfig().Affect
	v := EstimateAffect(MeasureGeometry(restingFace()), Signals{BlinkRate: 15}, cfg)

	assert.InDelta(t, 16, v.Happiness, 1e-9) // (64-60)*4
	assert.Zero(t, v.Anger)                  // brows wide apart
	assert.Zero(t, v.Fear)                   // 9.6px < 12px offset
	assert.InDelta(t, 14.4, v.Sadness, 1e-9) // (4.8-3)*8
	assert.InDelta(t, 69.6, v.Neutral, 1e-9)
}

func TestEstimateAffect_Channels(t *testing.T) {
	cfg := DefaultConfig().Affect
	tests := []struct {
		name string
		geom Geometry
		sig  Signals
		want Vector
	}{
		{
			name: "broad smile saturates happiness",
			geom: Geometry{MouthCornerDistance: 100, InterBrowDistance: 80},
			want: Vector{Happiness: 100, Neutral: 0},
		},
		{
			name: "knitted brows",
			geom: Geometry{MouthCornerDistance: 50, InterBrowDistance: 40},
			want: Vector{Anger: 40, Neutral: 60},
		},
		{
			name: "tension boosts anger",
			geom: Geometry{MouthCornerDistance: 50, InterBrowDistance: 40},
			sig:  Signals{Tense: true},
			want: Vector{Anger: 60, Neutral: 40},
		},
		{
			name: "wide eyes",
			geom: Geometry{MouthCornerDistance: 50, InterBrowDistance: 80, EyeOpenDistance: 14},
			want: Vector{Fear: 30, Neutral: 70},
		},
		{
			name: "blink rate over 40 boosts fear",
			geom: Geometry{MouthCornerDistance: 50, InterBrowDistance: 80},
			sig:  Signals{BlinkRate: 41},
			want: Vector{Fear: 30, Neutral: 70},
		},
		{
			name: "blink rate of exactly 40 does not",
			geom: Geometry{MouthCornerDistance: 50, InterBrowDistance: 80},
			sig:  Signals{BlinkRate: 40},
			want: Vector{Neutral: 100},
		},
		{
			name: "drooping corners",
			geom: Geometry{MouthCornerDistance: 50, InterBrowDistance: 80, MouthCornerDroop: 8},
			want: Vector{Sadness: 40, Neutral: 60},
		},
		{
			name: "blocking boosts sadness",
			geom: Geometry{MouthCornerDistance: 50, InterBrowDistance: 80},
			sig:  Signals{Blocking: true},
			want: Vector{Sadness: 40, Neutral: 60},
		},
		{
			name: "boost on a saturated channel exceeds 100 before capping",
			geom: Geometry{MouthCornerDistance: 50, InterBrowDistance: 0},
			sig:  Signals{Tense: true},
			want: Vector{Anger: 120, Neutral: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateAffect(tt.geom, tt.sig, cfg)
			assert.InDelta(t, tt.want.Happiness, got.Happiness, 1e-9, "happiness")
			assert.InDelta(t, tt.want.Sadness, got.Sadness, 1e-9, "sadness")
			assert.InDelta(t, tt.want.Anger, got.Anger, 1e-9, "anger")
			assert.InDelta(t, tt.want.Fear, got.Fear, 1e-9, "fear")
			assert.InDelta(t, tt.want.Neutral, got.Neutral, 1e-9, "neutral")
		})
	}
}

func TestEstimateAffect_NeutralNeverNegative(t *testing.T) {
	cfg := DefaultConfig().Affect
	g := Geometry{
		MouthCornerDistance: 200,
		InterBrowDistance:   0,
		EyeOpenDistance:     40,
		MouthCornerDroop:    30,
	}
	v := EstimateAffect(g, Signals{BlinkRate: 80, Blocking: true, Tense: true}, cfg)

	assert.Greater(t, v.Active(), 100.0)
	assert.Zero(t, v.Neutral)

	capped := v.Capped()
	assert.Equal(t, 100.0, capped.Anger)
	assert.Equal(t, 100.0, capped.Fear)
	assert.Equal(t, 100.0, capped.Sadness)
}

func TestEstimateAffect_NeutralUsesUncappedSum(t *testing.T) {
	cfg := DefaultConfig().Affect
	// anger 80 + 20 tension = 100, fear 0, sadness 0, happiness 0
	g := Geometry{MouthCornerDistance: 50, InterBrowDistance: 30, EyeOpenDistance: 0}
	v := EstimateAffect(g, Signals{Tense: true}, cfg)
	assert.InDelta(t, 100, v.Anger, 1e-9)
	assert.Zero(t, v.Neutral)

	// anger 100 + 20 = 120 would leave neutral at -20 if allowed
	g.InterBrowDistance = 10
	v = EstimateAffect(g, Signals{Tense: true}, cfg)
	assert.InDelta(t, 120, v.Anger, 1e-9)
	assert.Zero(t, v.Neutral)
}

func TestVector_Capped(t *testing.T) {
	v := Vector{Happiness: -5, Sadness: 140, Anger: 50, Fear: 100, Neutral: 0}.Capped()
	assert.Equal(t, Vector{Happiness: 0, Sadness: 100, Anger: 50, Fear: 100, Neutral: 0}, v)
}

func TestClamp_NaNMapsToLowerBound(t *testing.T) {
	assert.Equal(t, 0.0, clamp(math.NaN(), 0, 100))
	assert.Equal(t, 100.0, clamp(math.Inf(1), 0, 100))
	assert.Equal(t, 0.0, clamp(math.Inf(-1), 0, 100))
	assert.Equal(t, InitialVector, Vector{Neutral: 100}.Capped())
	assert.Equal(t, Vector{}, Vector{Happiness: math.NaN()}.Capped())
}
