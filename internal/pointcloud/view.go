package pointcloud

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
)

// ViewOptions controls one visualisation pass.
type ViewOptions struct {
	Dims      int     // 2 projects to the X-Y plane, 3 keeps all axes
	Threshold float64 // relative distance separating core from outer
	Fraction  float64 // share of the outer band to keep
	Extent    float64 // axis bound used for the density figure
}

// View is the result of the statistics and classification stages for one
// dimensionality. Points holds the (possibly projected) input.
type View struct {
	Dims           int
	Points         PointSet
	Stats          Stats
	Classification Classification
	Extent         float64
}

// Analyze projects ps to opts.Dims, computes its statistics and classifies
// it. rng drives the outer sampling; the same seed gives the same View.
func Analyze(ps PointSet, opts ViewOptions, rng *rand.Rand) (*View, error) {
	if len(ps) == 0 {
		return nil, ErrEmptyPointSet
	}

	projected, err := Project(ps, opts.Dims)
	if err != nil {
		return nil, err
	}

	stats, err := ComputeStats(projected)
	if err != nil {
		return nil, err
	}

	return &View{
		Dims:           opts.Dims,
		Points:         projected,
		Stats:          stats,
		Classification: ClassifyStats(stats, opts.Threshold, opts.Fraction, rng),
		Extent:         opts.Extent,
	}, nil
}

// Density is the point count per unit area (2D) or volume (3D) of the
// plotted extent. Returns 0 when the extent is not positive.
func (v *View) Density() float64 {
	if v.Extent <= 0 {
		return 0
	}
	return float64(len(v.Points)) / math.Pow(v.Extent, float64(v.Dims))
}

// ShownPercent is the share of points that end up on the chart.
func (v *View) ShownPercent() float64 {
	if len(v.Points) == 0 {
		return 0
	}
	return 100 * float64(v.Classification.Shown()) / float64(len(v.Points))
}

// Summary is the console report for a View.
type Summary struct {
	Dims         int
	Total        int
	Core         int
	Outer        int
	OuterSampled int
	Shown        int
	ShownPercent float64
	Centroid     Point
	MaxDistance  float64
	Density      float64
	Degenerate   bool
	Lo, Hi       Point
}

// Summarize collects the figures printed after each visualisation.
func (v *View) Summarize() Summary {
	lo, hi, _ := Bounds(v.Points)
	c := v.Classification
	return Summary{
		Dims:         v.Dims,
		Total:        len(v.Points),
		Core:         len(c.Core),
		Outer:        len(c.Outer),
		OuterSampled: len(c.OuterSampled),
		Shown:        c.Shown(),
		ShownPercent: v.ShownPercent(),
		Centroid:     v.Stats.Centroid,
		MaxDistance:  v.Stats.MaxDistance,
		Density:      v.Density(),
		Degenerate:   v.Stats.Degenerate,
		Lo:           lo,
		Hi:           hi,
	}
}

// WriteTo prints the summary in a fixed human readable layout.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	var n int64
	write := func(format string, args ...interface{}) error {
		k, err := fmt.Fprintf(w, format, args...)
		n += int64(k)
		return err
	}

	lines := []struct {
		format string
		args   []interface{}
	}{
		{"%dD point cloud\n", []interface{}{s.Dims}},
		{"  total points:    %d\n", []interface{}{s.Total}},
		{"  core points:     %d\n", []interface{}{s.Core}},
		{"  outer points:    %d (%d sampled)\n", []interface{}{s.Outer, s.OuterSampled}},
		{"  shown:           %d (%.1f%%)\n", []interface{}{s.Shown, s.ShownPercent}},
		{"  centroid:        %s\n", []interface{}{s.Centroid}},
		{"  max distance:    %.2f\n", []interface{}{s.MaxDistance}},
		{"  bounds:          %s .. %s\n", []interface{}{s.Lo, s.Hi}},
		{"  density:         %.3g\n", []interface{}{s.Density}},
	}
	for _, l := range lines {
		if err := write(l.format, l.args...); err != nil {
			return n, err
		}
	}
	if s.Degenerate {
		if err := write("  note: all points coincide with the centroid\n"); err != nil {
			return n, err
		}
	}
	return n, nil
}
