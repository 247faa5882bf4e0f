package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marsian83/ethereum-contract-recommendations/internal/pointcloud"
	"github.com/marsian83/ethereum-contract-recommendations/internal/render"
)

type pointsOptions struct {
	dims   string
	format string
}

func newPointsCommand(a *app) *cobra.Command {
	var o pointsOptions
	cmd := &cobra.Command{
		Use:   "points <file>",
		Short: "Plot a coordinate point cloud with core/outer classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPoints(cmd.OutOrStdout(), args[0], o)
		},
	}
	cmd.Flags().StringVar(&o.dims, "dims", "both", "view to render: 2, 3 or both")
	cmd.Flags().StringVar(&o.format, "format", "both", "artifact format: png, html or both")
	return cmd
}

// views picks the projections to render. "both" on planar input yields only
// the 2D view.
func (o pointsOptions) views(inputDims int) ([]int, error) {
	switch o.dims {
	case "2":
		return []int{2}, nil
	case "3":
		return []int{3}, nil
	case "both", "":
		if inputDims < 3 {
			return []int{2}, nil
		}
		return []int{2, 3}, nil
	}
	return nil, fmt.Errorf("unknown --dims %q (want 2, 3 or both)", o.dims)
}

func wantFormat(format, kind string) (bool, error) {
	switch format {
	case "png", "html":
		return format == kind, nil
	case "both", "":
		return true, nil
	}
	return false, fmt.Errorf("unknown --format %q (want png, html or both)", format)
}

func (a *app) viewOptions(dims int) pointcloud.ViewOptions {
	if dims == 2 {
		return pointcloud.ViewOptions{Dims: 2, Threshold: a.cfg.GetThreshold(), Fraction: a.cfg.GetOuterFraction2D(), Extent: a.cfg.GetExtent2D()}
	}
	return pointcloud.ViewOptions{Dims: 3, Threshold: a.cfg.GetThreshold(), Fraction: a.cfg.GetOuterFraction3D(), Extent: a.cfg.GetExtent3D()}
}

func (a *app) runPoints(stdout io.Writer, path string, o pointsOptions) (err error) {
	if _, err := o.views(3); err != nil {
		return err
	}
	png, err := wantFormat(o.format, "png")
	if err != nil {
		return err
	}
	html, _ := wantFormat(o.format, "html")

	ps, report, err := pointcloud.NewLoader(a.env.FS, a.cfg.GetDataField()).Load(path)
	if err != nil {
		return err
	}
	a.logger.Infow("points loaded", "path", path, "count", len(ps), "strategy", report.Strategy, "recovered", report.Recovered())
	dims, err := o.views(ps.Dims())
	if err != nil {
		return err
	}

	out, err := a.output("points", path)
	if err != nil {
		return err
	}
	// The manifest lists whatever was written, even when a later view fails.
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	ro := a.renderOptions()
	rng := a.rng()
	for _, d := range dims {
		v, err := pointcloud.Analyze(ps, a.viewOptions(d), rng)
		if err != nil {
			return err
		}
		if _, err := v.Summarize().WriteTo(stdout); err != nil {
			return err
		}

		if png {
			data, err := render.PointCloudPNG(v, ro)
			if err != nil {
				return err
			}
			if _, err := out.Write(fmt.Sprintf("points_%dd.png", d), data); err != nil {
				return err
			}
		}
		if html {
			data, err := render.PointCloudHTML(v, ro)
			if err != nil {
				return err
			}
			if _, err := out.Write(fmt.Sprintf("points_%dd.html", d), data); err != nil {
				return err
			}
		}
	}
	return nil
}

func newSynthPointsCommand(a *app) *cobra.Command {
	var file string
	params := pointcloud.DefaultSphereParams()
	cmd := &cobra.Command{
		Use:   "synth-points",
		Short: "Generate a sampled lattice sphere point document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Field = a.cfg.GetDataField()
			var buf bytes.Buffer
			n, err := pointcloud.GenerateSphere(&buf, params, a.rng())
			if err != nil {
				return err
			}
			a.logger.Infow("sphere generated", "points", n, "radius", params.Radius)
			return a.emit(cmd.OutOrStdout(), file, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "write the document here instead of stdout")
	cmd.Flags().IntVar(&params.Lattice, "lattice", params.Lattice, "points per lattice axis")
	cmd.Flags().Float64Var(&params.Radius, "radius", params.Radius, "sphere radius in lattice units")
	cmd.Flags().IntVar(&params.KeepOneIn, "keep-one-in", params.KeepOneIn, "keep each interior point with probability 1/N")
	return cmd
}

// emit writes data to file when one is named and to stdout otherwise.
func (a *app) emit(stdout io.Writer, file string, data []byte) error {
	if file == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := a.env.FS.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	a.logger.Infow("wrote file", "path", file, "bytes", len(data))
	return nil
}
