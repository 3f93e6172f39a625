package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanVariance(t *testing.T) {
	mean, variance := MeanVariance([]float64{120, 110, 70})
	assert.InDelta(t, 100, mean, 1e-9)
	assert.InDelta(t, 1400.0/3, variance, 1e-9)

	mean, variance = MeanVariance(nil)
	assert.True(t, math.IsNaN(mean))
	assert.True(t, math.IsNaN(variance))
}

func TestStdDev(t *testing.T) {
	assert.InDelta(t, 2, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	assert.InDelta(t, 5, Mean([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestRunningMeanOfAbsDiffs(t *testing.T) {
	diffs := AbsDiffs([]float64{120, 110, 70})
	assert.Equal(t, []float64{10, 40}, diffs)
	assert.Equal(t, []float64{10, 25}, RunningMean(diffs))
	assert.Nil(t, AbsDiffs([]float64{1}))
}

func TestInterpolate(t *testing.T) {
	values := []float64{0, 100, 0, 0, 130, 0}
	valid := []bool{false, true, false, false, true, false}

	out, ok := Interpolate(values, valid)
	assert.True(t, ok)
	assert.InDeltaSlice(t, []float64{100, 100, 110, 120, 130, 130}, out, 1e-9)

	_, ok = Interpolate([]float64{1, 2}, []bool{true, false})
	assert.False(t, ok)
}
