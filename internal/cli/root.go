// Package cli wires the analysis packages into the chainviz command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/marsian83/ethereum-contract-recommendations/internal/config"
	"github.com/marsian83/ethereum-contract-recommendations/internal/fsutil"
	"github.com/marsian83/ethereum-contract-recommendations/internal/monitoring"
	"github.com/marsian83/ethereum-contract-recommendations/internal/render"
	"github.com/marsian83/ethereum-contract-recommendations/internal/timeutil"
	"github.com/marsian83/ethereum-contract-recommendations/internal/version"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath string
	OutDir     string
	Seed       uint64
	Verbose    bool
}

// Env is everything a command touches outside its arguments. Tests swap in
// a mock clock.
type Env struct {
	FS    fsutil.FileSystem
	Clock timeutil.Clock
}

// DefaultEnv uses the real filesystem and clock.
func DefaultEnv() Env {
	return Env{FS: fsutil.OSFileSystem{}, Clock: timeutil.RealClock{}}
}

// app is the state shared by subcommands once the root pre-run has loaded
// configuration and logging.
type app struct {
	env    Env
	opts   RootOptions
	cfg    *config.AnalysisConfig
	logger *zap.SugaredLogger
}

// NewRootCommand creates the chainviz command with every subcommand attached.
func NewRootCommand(env Env) *cobra.Command {
	a := &app{env: env, cfg: config.EmptyAnalysisConfig()}

	cmd := &cobra.Command{
		Use:     "chainviz",
		Short:   "Exploratory analysis and plotting of blockchain activity snapshots",
		Version: version.String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.opts.ConfigPath, "config", "c", "", "analysis config JSON (default: "+config.DefaultConfigPath+" when present)")
	pf.StringVarP(&a.opts.OutDir, "out", "o", "plots", "base directory for rendered artifacts")
	pf.Uint64Var(&a.opts.Seed, "seed", 0, "random seed (overrides the config seed)")
	pf.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newPointsCommand(a),
		newSeriesCommand(a),
		newNormalizeCommand(a),
		newSynthSeriesCommand(a),
		newSynthPointsCommand(a),
		newTxGraphCommand(a),
		newSigbenchCommand(a),
		newClusterCommand(a),
		newInspectCommand(a),
		newVersionCommand(),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	logger, err := monitoring.NewLogger("chainviz", a.opts.Verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	monitoring.Install(logger)

	cfg, err := loadConfig(a.opts.ConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		seed := a.opts.Seed
		cfg.Seed = &seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	a.logger.Debugw("configuration loaded", "path", a.opts.ConfigPath, "seed", cfg.GetSeed())
	return nil
}

// loadConfig reads an explicit path, falls back to the defaults file when it
// exists and to built-in defaults otherwise.
func loadConfig(path string) (*config.AnalysisConfig, error) {
	if path != "" {
		return config.LoadAnalysisConfig(path)
	}
	cfg, err := config.LoadAnalysisConfig(config.DefaultConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.EmptyAnalysisConfig(), nil
	}
	return cfg, err
}

// rng returns a fresh generator for the configured seed so every command
// run with the same seed sees the same sequence.
func (a *app) rng() *rand.Rand {
	seed := a.cfg.GetSeed()
	return rand.New(rand.NewPCG(seed, seed))
}

func (a *app) renderOptions() render.Options {
	o := render.DefaultOptions()
	o.Width = vg.Length(a.cfg.GetPlotWidthInches()) * vg.Inch
	o.Height = vg.Length(a.cfg.GetPlotHeightInches()) * vg.Inch
	o.AssetsHost = a.cfg.GetEChartsAssetsHost()
	o.Extent2D = a.cfg.GetExtent2D()
	o.Extent3D = a.cfg.GetExtent3D()
	return o
}

func (a *app) output(command, source string) (*render.Output, error) {
	out, err := render.NewOutput(a.env.FS, a.env.Clock, a.opts.OutDir, command, source)
	if err != nil {
		return nil, err
	}
	a.logger.Infow("writing artifacts", "command", command, "dir", out.Dir, "run_id", out.RunID())
	return out, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "chainviz", version.String())
			return err
		},
	}
}

// Execute runs the command tree against os.Args and returns the process
// exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand(DefaultEnv())
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger, lerr := monitoring.NewLogger("chainviz", false)
		if lerr != nil {
			fmt.Fprintf(os.Stderr, "chainviz: %v\n", err)
			return 1
		}
		logger.Errorw("command failed", "error", err)
		_ = logger.Sync()
		return 1
	}
	return 0
}
