package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestEmptyAnalysisConfig_Defaults(t *testing.T) {
	cfg := EmptyAnalysisConfig()

	assert.Equal(t, uint64(42), cfg.GetSeed())
	assert.Equal(t, 0.7, cfg.GetThreshold())
	assert.Equal(t, 0.5, cfg.GetOuterFraction2D())
	assert.InDelta(t, 1.0/3.0, cfg.GetOuterFraction3D(), 1e-12)
	assert.Equal(t, "data", cfg.GetDataField())
	assert.Equal(t, 5000.0, cfg.GetExtent2D())
	assert.Equal(t, 1000.0, cfg.GetExtent3D())
	assert.Equal(t, 100, cfg.GetGraphNodes())
	assert.Equal(t, 300, cfg.GetGraphEdges())
	assert.Equal(t, 0.75, cfg.GetUserRatio())
	assert.Equal(t, 7, cfg.GetClusterK())
	assert.Equal(t, 15, cfg.GetClusterIterations())
	assert.Equal(t, time.Second, cfg.GetBenchDuration())
	assert.Empty(t, cfg.GetEChartsAssetsHost())
	assert.NoError(t, cfg.Validate())
}

func TestLoadAnalysisConfig_Partial(t *testing.T) {
	path := writeConfig(t, "partial.json", `{
  "seed": 7,
  "outer_fraction_2d": 0.25,
  "data_field": "points",
  "bench_duration": "250ms"
}`)

	cfg, err := LoadAnalysisConfig(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.GetSeed())
	assert.Equal(t, 0.25, cfg.GetOuterFraction2D())
	assert.Equal(t, "points", cfg.GetDataField())
	assert.Equal(t, 250*time.Millisecond, cfg.GetBenchDuration())

	// Omitted fields keep their defaults.
	assert.Equal(t, 0.7, cfg.GetThreshold())
	assert.InDelta(t, 1.0/3.0, cfg.GetOuterFraction3D(), 1e-12)
}

func TestLoadAnalysisConfig_RejectsExtension(t *testing.T) {
	path := writeConfig(t, "config.yaml", `seed: 1`)

	_, err := LoadAnalysisConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".json extension")
}

func TestLoadAnalysisConfig_Missing(t *testing.T) {
	_, err := LoadAnalysisConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAnalysisConfig_BadJSON(t *testing.T) {
	path := writeConfig(t, "bad.json", `{"seed": }`)

	_, err := LoadAnalysisConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestValidate(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }
	s := func(v string) *string { return &v }

	tests := []struct {
		name    string
		cfg     AnalysisConfig
		wantErr string
	}{
		{name: "threshold too high", cfg: AnalysisConfig{Threshold: f(1.5)}, wantErr: "Threshold"},
		{name: "threshold zero", cfg: AnalysisConfig{Threshold: f(0)}, wantErr: "Threshold"},
		{name: "negative fraction", cfg: AnalysisConfig{OuterFraction2D: f(-0.1)}, wantErr: "OuterFraction2D"},
		{name: "fraction above one", cfg: AnalysisConfig{OuterFraction3D: f(1.01)}, wantErr: "OuterFraction3D"},
		{name: "empty data field", cfg: AnalysisConfig{DataField: s("")}, wantErr: "DataField"},
		{name: "bad assets host", cfg: AnalysisConfig{EChartsAssetsHost: s("not a url")}, wantErr: "EChartsAssetsHost"},
		{name: "too few nodes", cfg: AnalysisConfig{GraphNodes: i(1)}, wantErr: "GraphNodes"},
		{name: "too many edges", cfg: AnalysisConfig{GraphNodes: i(4), GraphEdges: i(7)}, wantErr: "exceeds maximum 6"},
		{name: "bad duration", cfg: AnalysisConfig{BenchDuration: s("soon")}, wantErr: "bench_duration"},
		{name: "negative duration", cfg: AnalysisConfig{BenchDuration: s("-1s")}, wantErr: "must be positive"},
		{name: "valid overrides", cfg: AnalysisConfig{Threshold: f(0.5), GraphNodes: i(4), GraphEdges: i(6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	// The defaults file mirrors the built-in defaults.
	empty := EmptyAnalysisConfig()
	assert.Equal(t, empty.GetSeed(), cfg.GetSeed())
	assert.Equal(t, empty.GetThreshold(), cfg.GetThreshold())
	assert.Equal(t, empty.GetOuterFraction2D(), cfg.GetOuterFraction2D())
	assert.InDelta(t, empty.GetOuterFraction3D(), cfg.GetOuterFraction3D(), 1e-12)
	assert.Equal(t, empty.GetGraphEdges(), cfg.GetGraphEdges())
	assert.Equal(t, empty.GetBenchDuration(), cfg.GetBenchDuration())
}
