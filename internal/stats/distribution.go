package stats

import (
	"sort"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// Rand is the subset of *rand.Rand the samplers draw from
type Rand interface {
	Float64() float64
}

// Distribution is an empirical distribution over a finite sample. Its CDF
// interpolates linearly between adjacent order statistics.
type Distribution struct {
	sorted []float64
}

// NewDistribution builds a distribution from a sorted copy of sample
func NewDistribution(sample []float64) (*Distribution, error) {
	if len(sample) == 0 {
		return nil, &models.InvalidSampleError{Size: 0}
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	return &Distribution{sorted: sorted}, nil
}

// Len returns the sample size
func (d *Distribution) Len() int {
	return len(d.sorted)
}

// Min returns the smallest order statistic
func (d *Distribution) Min() float64 {
	return d.sorted[0]
}

// Max returns the largest order statistic
func (d *Distribution) Max() float64 {
	return d.sorted[len(d.sorted)-1]
}

// CDF returns P(X <= x) under the interpolated empirical distribution
func (d *Distribution) CDF(x float64) float64 {
	n := len(d.sorted)
	idx := sort.SearchFloat64s(d.sorted, x) // count of elements strictly below x

	if idx == 0 {
		return 0
	}
	if idx >= n {
		return 1
	}

	lo, hi := d.sorted[idx-1], d.sorted[idx]
	if hi == lo {
		return float64(idx) / float64(n)
	}
	return (float64(idx-1) + (x-lo)/(hi-lo)) / float64(n)
}

// Quantile inverts CDF for u in [0, 1). Segment k (between order statistics k
// and k+1) covers CDF values [k/n, (k+1)/n); values at or beyond (n-1)/n map
// to the maximum.
func (d *Distribution) Quantile(u float64) float64 {
	n := len(d.sorted)
	if n == 1 || u <= 0 {
		return d.sorted[0]
	}

	scaled := u * float64(n)
	k := sort.Search(n-1, func(i int) bool {
		return float64(i+1) > scaled
	})
	if k >= n-1 {
		return d.sorted[n-1]
	}

	lo, hi := d.sorted[k], d.sorted[k+1]
	if hi == lo {
		return hi
	}
	return lo + (scaled-float64(k))*(hi-lo)
}

// Sample draws one value by inverse-CDF sampling
func (d *Distribution) Sample(rng Rand) float64 {
	return d.Quantile(rng.Float64())
}
