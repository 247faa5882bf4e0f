package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// AnalysisConfig holds every tunable used by the chainviz pipelines.
// Fields are pointers so that a partial JSON file only overrides what it
// names; the Get* accessors supply defaults for the rest.
type AnalysisConfig struct {
	// Randomness
	Seed *uint64 `json:"seed,omitempty"`

	// Point cloud classification
	Threshold       *float64 `json:"threshold,omitempty" validate:"omitempty,gt=0,lt=1"`
	OuterFraction2D *float64 `json:"outer_fraction_2d,omitempty" validate:"omitempty,gte=0,lte=1"`
	OuterFraction3D *float64 `json:"outer_fraction_3d,omitempty" validate:"omitempty,gte=0,lte=1"`
	DataField       *string  `json:"data_field,omitempty" validate:"omitempty,min=1"`

	// Presentation
	Extent2D          *float64 `json:"extent_2d,omitempty" validate:"omitempty,gt=0"`
	Extent3D          *float64 `json:"extent_3d,omitempty" validate:"omitempty,gt=0"`
	PlotWidthInches   *float64 `json:"plot_width_inches,omitempty" validate:"omitempty,gt=0,lte=100"`
	PlotHeightInches  *float64 `json:"plot_height_inches,omitempty" validate:"omitempty,gt=0,lte=100"`
	EChartsAssetsHost *string  `json:"echarts_assets_host,omitempty" validate:"omitempty,url"`

	// Transaction graph
	GraphNodes    *int     `json:"graph_nodes,omitempty" validate:"omitempty,gte=2"`
	GraphEdges    *int     `json:"graph_edges,omitempty" validate:"omitempty,gte=0"`
	UserRatio     *float64 `json:"user_ratio,omitempty" validate:"omitempty,gte=0,lte=1"`
	LayoutUpdates *int     `json:"layout_updates,omitempty" validate:"omitempty,gte=1"`

	// Transaction clustering
	ClusterK          *int `json:"cluster_k,omitempty" validate:"omitempty,gte=1"`
	ClusterIterations *int `json:"cluster_iterations,omitempty" validate:"omitempty,gte=1"`

	// Signature benchmark
	BenchDuration *string `json:"bench_duration,omitempty"` // duration string like "2s"
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// EmptyAnalysisConfig returns an AnalysisConfig with all fields set to nil.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file retain their defaults.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/<pkg>/
		"../../../" + DefaultConfigPath, // from cmd/<tool>/ subpackages
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks struct tag constraints and the cross-field rules tags
// cannot express.
func (c *AnalysisConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q constraint (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return err
	}

	if c.BenchDuration != nil && *c.BenchDuration != "" {
		d, err := time.ParseDuration(*c.BenchDuration)
		if err != nil {
			return fmt.Errorf("invalid bench_duration '%s': %w", *c.BenchDuration, err)
		}
		if d <= 0 {
			return fmt.Errorf("bench_duration must be positive, got %s", d)
		}
	}

	n := c.GetGraphNodes()
	if maxEdges := n * (n - 1) / 2; c.GetGraphEdges() > maxEdges {
		return fmt.Errorf("graph_edges %d exceeds maximum %d for %d nodes", c.GetGraphEdges(), maxEdges, n)
	}

	return nil
}

// GetSeed returns the seed value or the default.
func (c *AnalysisConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 42
	}
	return *c.Seed
}

// GetThreshold returns the core/outer relative distance threshold.
func (c *AnalysisConfig) GetThreshold() float64 {
	if c.Threshold == nil {
		return 0.7
	}
	return *c.Threshold
}

// GetOuterFraction2D returns the fraction of outer points sampled in the X-Y view.
func (c *AnalysisConfig) GetOuterFraction2D() float64 {
	if c.OuterFraction2D == nil {
		return 0.5
	}
	return *c.OuterFraction2D
}

// GetOuterFraction3D returns the fraction of outer points sampled in the 3D view.
func (c *AnalysisConfig) GetOuterFraction3D() float64 {
	if c.OuterFraction3D == nil {
		return 1.0 / 3.0
	}
	return *c.OuterFraction3D
}

// GetDataField returns the JSON field holding the point array.
func (c *AnalysisConfig) GetDataField() string {
	if c.DataField == nil || *c.DataField == "" {
		return "data"
	}
	return *c.DataField
}

// GetExtent2D returns the axis upper bound of the X-Y view.
func (c *AnalysisConfig) GetExtent2D() float64 {
	if c.Extent2D == nil {
		return 5000
	}
	return *c.Extent2D
}

// GetExtent3D returns the axis upper bound of the 3D view.
func (c *AnalysisConfig) GetExtent3D() float64 {
	if c.Extent3D == nil {
		return 1000
	}
	return *c.Extent3D
}

// GetPlotWidthInches returns the PNG width.
func (c *AnalysisConfig) GetPlotWidthInches() float64 {
	if c.PlotWidthInches == nil {
		return 14
	}
	return *c.PlotWidthInches
}

// GetPlotHeightInches returns the PNG height.
func (c *AnalysisConfig) GetPlotHeightInches() float64 {
	if c.PlotHeightInches == nil {
		return 8
	}
	return *c.PlotHeightInches
}

// GetEChartsAssetsHost returns the asset host for HTML charts; empty means
// the go-echarts default CDN.
func (c *AnalysisConfig) GetEChartsAssetsHost() string {
	if c.EChartsAssetsHost == nil {
		return ""
	}
	return *c.EChartsAssetsHost
}

// GetGraphNodes returns the node count of the synthetic transaction graph.
func (c *AnalysisConfig) GetGraphNodes() int {
	if c.GraphNodes == nil {
		return 100
	}
	return *c.GraphNodes
}

// GetGraphEdges returns the edge count of the synthetic transaction graph.
func (c *AnalysisConfig) GetGraphEdges() int {
	if c.GraphEdges == nil {
		return 300
	}
	return *c.GraphEdges
}

// GetUserRatio returns the fraction of synthetic nodes labelled as users.
func (c *AnalysisConfig) GetUserRatio() float64 {
	if c.UserRatio == nil {
		return 0.75
	}
	return *c.UserRatio
}

// GetLayoutUpdates returns the number of force-directed layout iterations.
func (c *AnalysisConfig) GetLayoutUpdates() int {
	if c.LayoutUpdates == nil {
		return 50
	}
	return *c.LayoutUpdates
}

// GetClusterK returns the number of k-means clusters.
func (c *AnalysisConfig) GetClusterK() int {
	if c.ClusterK == nil {
		return 7
	}
	return *c.ClusterK
}

// GetClusterIterations returns the number of k-means iterations.
func (c *AnalysisConfig) GetClusterIterations() int {
	if c.ClusterIterations == nil {
		return 15
	}
	return *c.ClusterIterations
}

// GetBenchDuration parses and returns the per-operation measurement window.
func (c *AnalysisConfig) GetBenchDuration() time.Duration {
	if c.BenchDuration == nil || *c.BenchDuration == "" {
		return time.Second
	}
	d, err := time.ParseDuration(*c.BenchDuration)
	if err != nil {
		return time.Second // default on parse error
	}
	return d
}
