package pointcloud

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/sampleuv"
)

// DefaultThreshold separates core from outer points by relative distance.
const DefaultThreshold = 0.7

// sampleSizeTolerance absorbs float error so that a fraction configured as
// 1/3 yields exactly n/3 (integer division) for multiples of three.
const sampleSizeTolerance = 1e-9

// Classification partitions the indices of a PointSet.
// Core and Outer are disjoint, cover every index and keep input order.
// OuterSampled is an ascending subset of Outer with no repeats.
type Classification struct {
	Threshold    float64
	Fraction     float64
	Core         []int
	Outer        []int
	OuterSampled []int
}

// Classify splits indices by relative distance: strictly below threshold is
// core, at or above threshold is outer.
func Classify(relative []float64, threshold float64) (core, outer []int) {
	core = make([]int, 0, len(relative))
	outer = make([]int, 0)
	for i, r := range relative {
		if r < threshold {
			core = append(core, i)
		} else {
			outer = append(outer, i)
		}
	}
	return core, outer
}

// SampleSize returns floor(n * fraction). Fractions outside [0, 1] (and NaN)
// are clamped.
func SampleSize(n int, fraction float64) int {
	switch {
	case math.IsNaN(fraction) || fraction <= 0 || n <= 0:
		return 0
	case fraction >= 1:
		return n
	}
	k := int(math.Floor(float64(n)*fraction + sampleSizeTolerance))
	if k > n {
		k = n
	}
	return k
}

// SampleOuter draws SampleSize(len(outer), fraction) distinct elements of
// outer uniformly at random. The same rng state and input always give the
// same result. The returned indices are sorted ascending.
func SampleOuter(outer []int, fraction float64, rng *rand.Rand) []int {
	k := SampleSize(len(outer), fraction)
	if k == 0 {
		return []int{}
	}

	picks := make([]int, k)
	sampleuv.WithoutReplacement(picks, len(outer), rng)

	out := make([]int, k)
	for i, p := range picks {
		out[i] = outer[p]
	}
	sort.Ints(out)
	return out
}

// ClassifyStats classifies s and samples its outer band.
func ClassifyStats(s Stats, threshold, fraction float64, rng *rand.Rand) Classification {
	core, outer := Classify(s.Relative, threshold)
	return Classification{
		Threshold:    threshold,
		Fraction:     fraction,
		Core:         core,
		Outer:        outer,
		OuterSampled: SampleOuter(outer, fraction, rng),
	}
}

// Shown returns the number of points displayed: all core points plus the
// sampled outer points.
func (c Classification) Shown() int {
	return len(c.Core) + len(c.OuterSampled)
}
