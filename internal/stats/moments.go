package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MeanVariance returns the population mean and variance of values.
// Both are NaN for an empty input.
func MeanVariance(values []float64) (mean, variance float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanVariance(values, nil)
}

// Mean returns the arithmetic mean of values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// StdDev returns the population standard deviation of values
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	_, std := stat.PopMeanStdDev(values, nil)
	return std
}

// AbsDiffs returns |v[i+1] - v[i]| for each adjacent pair
func AbsDiffs(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := range out {
		out[i] = math.Abs(values[i+1] - values[i])
	}
	return out
}

// RunningMean returns the cumulative mean of values at every prefix length
func RunningMean(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		out[i] = sum / float64(i+1)
	}
	return out
}

// Interpolate fills gaps (valid[i] == false) by linear interpolation over the
// index between the nearest valid neighbours. Gaps before the first or after
// the last valid value take that value. It returns ok == false when fewer than
// two valid values exist.
func Interpolate(values []float64, valid []bool) ([]float64, bool) {
	known := make([]int, 0, len(values))
	for i, v := range valid {
		if v {
			known = append(known, i)
		}
	}
	if len(known) < 2 {
		return nil, false
	}

	out := make([]float64, len(values))
	for _, i := range known {
		out[i] = values[i]
	}

	for i := 0; i < known[0]; i++ {
		out[i] = values[known[0]]
	}
	last := known[len(known)-1]
	for i := last + 1; i < len(values); i++ {
		out[i] = values[last]
	}

	for j := 0; j < len(known)-1; j++ {
		left, right := known[j], known[j+1]
		span := float64(right - left)
		for i := left + 1; i < right; i++ {
			frac := float64(i-left) / span
			out[i] = values[left] + frac*(values[right]-values[left])
		}
	}

	return out, true
}
