package pointcloud

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidArity is returned when points are not all 2D or all 3D.
	ErrInvalidArity = errors.New("pointcloud: points must have 2 or 3 coordinates of uniform arity")

	// ErrEmptyPointSet is returned when statistics are requested for no points.
	ErrEmptyPointSet = errors.New("pointcloud: empty point set")
)

// Point is an ordered coordinate tuple of length 2 or 3.
// Points are treated as immutable once loaded.
type Point []float64

// Dims returns the number of coordinates.
func (p Point) Dims() int { return len(p) }

// X returns the first coordinate.
func (p Point) X() float64 { return p[0] }

// Y returns the second coordinate.
func (p Point) Y() float64 { return p[1] }

// Z returns the third coordinate, or 0 for a 2D point.
func (p Point) Z() float64 {
	if len(p) < 3 {
		return 0
	}
	return p[2]
}

// String formats the point as "(x, y, z)" with two decimals.
func (p Point) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.FormatFloat(v, 'f', 2, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// PointSet is an ordered sequence of points of uniform arity.
// Order is input order; duplicates are allowed.
type PointSet []Point

// NewPointSet validates that every tuple has the same arity of 2 or 3 and
// returns the tuples as a PointSet. An empty input is a valid empty set.
func NewPointSet(tuples [][]float64) (PointSet, error) {
	ps := make(PointSet, len(tuples))
	for i, t := range tuples {
		if len(t) != 2 && len(t) != 3 {
			return nil, fmt.Errorf("point %d has %d coordinates: %w", i, len(t), ErrInvalidArity)
		}
		if i > 0 && len(t) != len(tuples[0]) {
			return nil, fmt.Errorf("point %d has %d coordinates, expected %d: %w", i, len(t), len(tuples[0]), ErrInvalidArity)
		}
		ps[i] = Point(t)
	}
	return ps, nil
}

// Dims returns the arity of the set, or 0 when empty.
func (ps PointSet) Dims() int {
	if len(ps) == 0 {
		return 0
	}
	return len(ps[0])
}

// Axis returns the values of one coordinate across the set.
func (ps PointSet) Axis(axis int) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p[axis]
	}
	return out
}

// Select returns the points at the given indices, in index order given.
func (ps PointSet) Select(indices []int) PointSet {
	out := make(PointSet, len(indices))
	for i, idx := range indices {
		out[i] = ps[idx]
	}
	return out
}

// Project keeps the first dims coordinates of every point. Projecting a 3D
// set to 2 gives the X-Y plane view.
func Project(ps PointSet, dims int) (PointSet, error) {
	if dims != 2 && dims != 3 {
		return nil, fmt.Errorf("cannot project to %d dimensions: %w", dims, ErrInvalidArity)
	}
	if len(ps) > 0 && dims > ps.Dims() {
		return nil, fmt.Errorf("cannot project %dD points to %d dimensions: %w", ps.Dims(), dims, ErrInvalidArity)
	}

	out := make(PointSet, len(ps))
	for i, p := range ps {
		out[i] = p[:dims:dims]
	}
	return out, nil
}
