package pointcloud

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marsian83/ethereum-contract-recommendations/internal/fsutil"
)

func memLoader(t *testing.T, name, body string) (*Loader, string) {
	t.Helper()
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile(name, []byte(body), 0644))
	return NewLoader(fsys, "data"), name
}

func TestLoad_StrictJSON(t *testing.T) {
	loader, path := memLoader(t, "points.json", `{"data": [[1, 2, 3], [4.5, 5, -6]]}`)

	ps, report, err := loader.Load(path)
	require.NoError(t, err)

	want := PointSet{{1, 2, 3}, {4.5, 5, -6}}
	if diff := cmp.Diff(want, ps); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, StrategyStrict, report.Strategy)
	assert.False(t, report.Recovered())
	assert.Equal(t, path, report.Path)
}

func TestLoad_TwoDimensional(t *testing.T) {
	loader, path := memLoader(t, "flat.json", `{"data": [[10, 20], [30, 40], [50, 60]]}`)

	ps, _, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ps.Dims())
	assert.Len(t, ps, 3)
}

func TestLoad_TrailingCommaRepaired(t *testing.T) {
	loader, path := memLoader(t, "legacy.json", "{ \"data\": [\n[1, 2, 3],\n[4, 5, 6],\n]}\n")

	ps, report, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, PointSet{{1, 2, 3}, {4, 5, 6}}, ps)
	assert.Equal(t, StrategyTrailingComma, report.Strategy)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, StrategyStrict, report.Failures[0].Strategy)
}

func TestLoad_TrailingCommaInsideObject(t *testing.T) {
	loader, path := memLoader(t, "obj.json", `{"data": [[1, 2, 3]], "name": "x",}`)

	ps, report, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, PointSet{{1, 2, 3}}, ps)
	assert.Equal(t, StrategyTrailingComma, report.Strategy)
}

func TestLoad_TripletRegexFallback(t *testing.T) {
	loader, path := memLoader(t, "broken.txt", `garbage [10, 20, 30] more[1,2,3] {{{ [ -4 ,5, 6 ]`)

	ps, report, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, PointSet{{10, 20, 30}, {1, 2, 3}, {-4, 5, 6}}, ps)
	assert.Equal(t, StrategyTripletRegex, report.Strategy)
	assert.Len(t, report.Failures, 2)
	assert.True(t, report.Recovered())
}

func TestLoad_RegexNeverFails(t *testing.T) {
	loader, path := memLoader(t, "empty.txt", `this is not json`)

	ps, report, err := loader.Load(path)
	require.NoError(t, err)
	assert.Empty(t, ps)
	assert.Equal(t, StrategyTripletRegex, report.Strategy)
}

func TestLoad_MissingFieldFallsThrough(t *testing.T) {
	loader, path := memLoader(t, "other.json", `{"points": [[1, 2, 3], [4, 5, 6]]}`)

	ps, report, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, StrategyTripletRegex, report.Strategy)
	assert.Len(t, ps, 2)
	require.NotEmpty(t, report.Failures)
	assert.True(t, errors.Is(report.Failures[0], ErrMissingField))
}

func TestLoad_MixedArityFallsThrough(t *testing.T) {
	loader, path := memLoader(t, "mixed.json", `{"data": [[1, 2], [3, 4, 5]]}`)

	ps, report, err := loader.Load(path)
	require.NoError(t, err)

	assert.True(t, errors.Is(report.Failures[0], ErrInvalidArity))
	assert.Equal(t, PointSet{{3, 4, 5}}, ps)
}

func TestLoad_CustomField(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("c.json", []byte(`{"coords": [[7, 8, 9]]}`), 0644))

	ps, report, err := NewLoader(fsys, "coords").Load("c.json")
	require.NoError(t, err)
	assert.Equal(t, PointSet{{7, 8, 9}}, ps)
	assert.Equal(t, StrategyStrict, report.Strategy)
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	loader := NewLoader(fsutil.NewMemoryFileSystem(), "data")

	_, _, err := loader.Load("nope.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "expected ErrNotExist, got %v", err)
}

func TestLoader_NoStrategies(t *testing.T) {
	loader := &Loader{FS: fsutil.NewMemoryFileSystem()}

	_, _, err := loader.Parse([]byte(`{}`))
	assert.ErrorIs(t, err, ErrNoStrategy)
}

func TestRemoveTrailingCommas(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[1, 2,]`, `[1, 2]`},
		{"[[1,2,3],\n  ]", "[[1,2,3]]"},
		{`{"a": 1 ,  }`, `{"a": 1 }`},
		{`[1, 2]`, `[1, 2]`},
	}
	for _, tt := range tests {
		if got := string(RemoveTrailingCommas([]byte(tt.in))); got != tt.want {
			t.Errorf("RemoveTrailingCommas(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractTriplets_IgnoresNonTriplets(t *testing.T) {
	ps := ExtractTriplets([]byte(`[1, 2] [1.5, 2, 3] [4, 5, 6, 7] [8,9,10]`))
	assert.Equal(t, PointSet{{8, 9, 10}}, ps)
}

func TestGenerateSphere_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	params := DefaultSphereParams()
	n, err := GenerateSphere(&buf, params, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Greater(t, n, 0)

	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("sphere.json", buf.Bytes(), 0644))

	ps, report, err := NewLoader(fsys, "data").Load("sphere.json")
	require.NoError(t, err)
	assert.Equal(t, StrategyTrailingComma, report.Strategy)
	assert.Len(t, ps, n)

	for i, p := range ps {
		dx := p.X() - float64(params.Offset[0]) - params.Center[0]
		dy := p.Y() - float64(params.Offset[1]) - params.Center[1]
		dz := p.Z() - float64(params.Offset[2]) - params.Center[2]
		if d := math.Sqrt(dx*dx + dy*dy + dz*dz); d > params.Radius {
			t.Errorf("point %d %s lies %.2f from centre, radius %.0f", i, p, d, params.Radius)
		}
	}
}

func TestGenerateSphere_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	_, err := GenerateSphere(&a, DefaultSphereParams(), rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	_, err = GenerateSphere(&b, DefaultSphereParams(), rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestGenerateSphere_InvalidParams(t *testing.T) {
	var buf bytes.Buffer
	_, err := GenerateSphere(&buf, SphereParams{Lattice: 10}, rand.New(rand.NewPCG(1, 1)))
	assert.Error(t, err)
}
