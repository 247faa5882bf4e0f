package pointcloud

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds the centroid-relative geometry of a PointSet.
type Stats struct {
	Centroid    Point
	Distances   []float64 // Euclidean distance of each point to Centroid
	MaxDistance float64
	Relative    []float64 // Distances / MaxDistance, in [0, 1]

	// Degenerate is set when every point coincides with the centroid.
	// Relative is then all zeros instead of NaN.
	Degenerate bool
}

// Centroid returns the componentwise arithmetic mean of ps.
func Centroid(ps PointSet) (Point, error) {
	if len(ps) == 0 {
		return nil, ErrEmptyPointSet
	}

	c := make(Point, ps.Dims())
	for axis := range c {
		c[axis] = stat.Mean(ps.Axis(axis), nil)
	}
	return c, nil
}

// ComputeStats derives centroid, distances and relative distances for ps.
func ComputeStats(ps PointSet) (Stats, error) {
	c, err := Centroid(ps)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{
		Centroid:  c,
		Distances: make([]float64, len(ps)),
		Relative:  make([]float64, len(ps)),
	}
	for i, p := range ps {
		s.Distances[i] = floats.Distance(p, c, 2)
	}
	s.MaxDistance = floats.Max(s.Distances)

	if s.MaxDistance == 0 {
		s.Degenerate = true
		return s, nil
	}

	for i, d := range s.Distances {
		s.Relative[i] = d / s.MaxDistance
	}
	return s, nil
}

// Bounds returns the per-axis minimum and maximum of ps.
func Bounds(ps PointSet) (lo, hi Point, err error) {
	if len(ps) == 0 {
		return nil, nil, ErrEmptyPointSet
	}

	lo = make(Point, ps.Dims())
	hi = make(Point, ps.Dims())
	for axis := range lo {
		values := ps.Axis(axis)
		lo[axis] = floats.Min(values)
		hi[axis] = floats.Max(values)
	}
	return lo, hi, nil
}
