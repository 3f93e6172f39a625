package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// scriptedRand replays fixed draws in order
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		panic("scripted draw out of range")
	}
	return v
}

func (r *scriptedRand) drained() bool {
	return len(r.floats) == 0 && len(r.ints) == 0
}

// The test profile's SBP sample is {70 118 120 121 126 135 190} and its
// SBP-DBP gaps are {10 47 47 47 50 52 80}. A draw of 0.99 selects the SBP
// maximum and a draw of 0 the smallest gap.
const (
	maxSBP = 190
	minGap = 10
)

func samplingSimulator(t *testing.T, cfg Config, rng *scriptedRand) *Simulator {
	t.Helper()
	sim, err := New(testProfile(t), WithSeed(1), WithConfig(cfg))
	require.NoError(t, err)
	sim.rng = rng
	return sim
}

func TestSample_Normal(t *testing.T) {
	rng := &scriptedRand{floats: []float64{0.99, 0}}
	sim := samplingSimulator(t, DefaultConfig(), rng)

	m := sim.sample(models.StateNormal)
	assert.Equal(t, models.Measurement{SBP: maxSBP, DBP: maxSBP - minGap}, m)
	assert.True(t, rng.drained())
}

func TestSample_Missing(t *testing.T) {
	rng := &scriptedRand{}
	sim := samplingSimulator(t, DefaultConfig(), rng)

	assert.Equal(t, models.MissingMeasurement, sim.sample(models.StateMissing))
	assert.True(t, rng.drained())
}

func TestSample_Bad(t *testing.T) {
	tests := []struct {
		name     string
		legacy   bool
		signDraw int
		sign     float64
		wantGap  int
	}{
		{"legacy below", true, 0, -1, minGap / 2},
		{"legacy above", true, 1, 1, minGap / 2},
		{"signed below", false, 0, -1, minGap / 2},
		{"signed above", false, 1, 1, minGap},
	}

	for _, tt := range tests {
		for sigmaDraw := 0; sigmaDraw < 3; sigmaDraw++ {
			sigma := float64(sigmaDraw + 1)

			cfg := DefaultConfig()
			cfg.LegacyDiffHalving = tt.legacy
			rng := &scriptedRand{
				ints:   []int{sigmaDraw, tt.signDraw},
				floats: []float64{0.99, 0},
			}
			sim := samplingSimulator(t, cfg, rng)
			require.Greater(t, sim.sbpStd, 0.0)

			m := sim.sample(models.StateBad)

			wantSBP := maxSBP + tt.sign*sigma*sim.sbpStd
			assert.Equal(t, int(wantSBP), m.SBP, "%s sigma=%v", tt.name, sigma)
			assert.Equal(t, tt.wantGap, m.SBP-m.DBP, "%s sigma=%v", tt.name, sigma)
			assert.True(t, rng.drained(), tt.name)
		}
	}
}
