package pointcloud

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ringCloud() PointSet {
	// Eight points on a cube around (10, 10, 10) plus a tight core.
	ps := PointSet{
		{0, 0, 0}, {20, 0, 0}, {0, 20, 0}, {0, 0, 20},
		{20, 20, 0}, {20, 0, 20}, {0, 20, 20}, {20, 20, 20},
	}
	for i := 0; i < 12; i++ {
		d := float64(i%3) - 1
		ps = append(ps, Point{10 + d, 10 - d, 10})
	}
	return ps
}

func TestAnalyze_3D(t *testing.T) {
	opts := ViewOptions{Dims: 3, Threshold: 0.7, Fraction: 1.0 / 3.0, Extent: 1000}

	v, err := Analyze(ringCloud(), opts, newRand(42))
	require.NoError(t, err)

	assert.Equal(t, 3, v.Dims)
	assert.Len(t, v.Classification.Core, 12)
	assert.Len(t, v.Classification.Outer, 8)
	assert.Len(t, v.Classification.OuterSampled, 2)
	assert.Equal(t, 14, v.Classification.Shown())
	assert.InDelta(t, 70.0, v.ShownPercent(), 1e-9)
	assert.InDelta(t, 20.0/1e9, v.Density(), 1e-18)
}

func TestAnalyze_2DProjection(t *testing.T) {
	opts := ViewOptions{Dims: 2, Threshold: 0.7, Fraction: 0.5, Extent: 5000}

	v, err := Analyze(ringCloud(), opts, newRand(42))
	require.NoError(t, err)

	assert.Equal(t, 2, v.Points.Dims())
	assert.Len(t, v.Stats.Centroid, 2)
	assert.Len(t, v.Classification.OuterSampled, SampleSize(len(v.Classification.Outer), 0.5))
}

func TestAnalyze_SameSeedSameView(t *testing.T) {
	opts := ViewOptions{Dims: 3, Threshold: 0.5, Fraction: 0.5, Extent: 1000}

	a, err := Analyze(ringCloud(), opts, newRand(99))
	require.NoError(t, err)
	b, err := Analyze(ringCloud(), opts, newRand(99))
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("views differ for identical seeds (-a +b):\n%s", diff)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	_, err := Analyze(PointSet{}, ViewOptions{Dims: 3}, newRand(1))
	assert.ErrorIs(t, err, ErrEmptyPointSet)
}

func TestSummary_WriteTo(t *testing.T) {
	v, err := Analyze(PointSet{{5, 5, 5}, {5, 5, 5}}, ViewOptions{Dims: 3, Threshold: 0.7, Fraction: 0.5, Extent: 10}, newRand(1))
	require.NoError(t, err)

	var sb strings.Builder
	n, err := v.Summarize().WriteTo(&sb)
	require.NoError(t, err)

	out := sb.String()
	assert.Equal(t, int64(len(out)), n)
	assert.Contains(t, out, "3D point cloud")
	assert.Contains(t, out, "total points:    2")
	assert.Contains(t, out, "centroid:        (5.00, 5.00, 5.00)")
	assert.Contains(t, out, "all points coincide")
}

func TestView_DensityWithoutExtent(t *testing.T) {
	v := &View{Dims: 2, Points: PointSet{{1, 1}}}
	assert.Equal(t, 0.0, v.Density())
}
