package cli

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marsian83/ethereum-contract-recommendations/internal/render"
	"github.com/marsian83/ethereum-contract-recommendations/internal/series"
)

func newSeriesCommand(a *app) *cobra.Command {
	var dataDir, file string
	var list bool
	cmd := &cobra.Command{
		Use:   "series <preset>",
		Short: "Plot a CSV time-series dashboard",
		Long: "Plot one of the named CSV dashboards. The preset decides which file is\n" +
			"read from --data and which derived metrics are charted.\n\nPresets: " +
			strings.Join(series.PresetNames(), ", "),
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, name := range series.PresetNames() {
					p, _ := series.LookupPreset(name)
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", name, p.File)
				}
				return nil
			}
			return a.runSeries(args[0], dataDir, file)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data", ".", "directory holding the preset CSV exports")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read this CSV instead of the preset's default file")
	cmd.Flags().BoolVar(&list, "list", false, "list presets and exit")
	return cmd
}

func (a *app) readSeries(path string) (*series.Series, error) {
	raw, err := a.env.FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read series: %w", err)
	}
	s, err := series.ReadCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

func (a *app) runSeries(name, dataDir, file string) error {
	p, ok := series.LookupPreset(name)
	if !ok {
		return fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(series.PresetNames(), ", "))
	}
	if file == "" {
		file = filepath.Join(dataDir, p.File)
	}

	s, err := a.readSeries(file)
	if err != nil {
		return err
	}
	if err := p.Apply(s); err != nil {
		return err
	}
	a.logger.Infow("series loaded", "preset", p.Name, "rows", s.Len(), "columns", len(s.Columns))

	out, err := a.output("series", p.Name)
	if err != nil {
		return err
	}

	if p.ChangeLog != "" {
		var buf bytes.Buffer
		if err := s.WriteCSV(&buf, series.DefaultDateLayout); err != nil {
			return err
		}
		if _, err := out.Write(p.ChangeLog, buf.Bytes()); err != nil {
			return err
		}
	}

	ro := a.renderOptions()
	charts := make([]render.LineChart, 0, len(p.Charts))
	for i, c := range p.Charts {
		obs, err := s.Melt(c.Metrics...)
		if err != nil {
			return fmt.Errorf("chart %q: %w", c.Title, err)
		}
		lc := render.LineChart{Title: c.Title, YLabel: c.YLabel, Observations: obs}
		charts = append(charts, lc)

		data, err := render.SeriesPNG(lc, ro)
		if err != nil {
			return err
		}
		if _, err := out.Write(fmt.Sprintf("%s_%d.png", p.Name, i+1), data); err != nil {
			return err
		}
	}

	page, err := render.SeriesHTML(p.Name, charts, ro)
	if err != nil {
		return err
	}
	if _, err := out.Write(p.Name+".html", page); err != nil {
		return err
	}
	return out.Close()
}

func newNormalizeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <csv>",
		Short: "Rebase every numeric column on its first row",
		Long:  "Writes normalized_<name>.csv next to the input with the first row's value\nsubtracted from every numeric column.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, err := a.readSeries(path)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := s.Normalize().WriteCSV(&buf, series.DefaultDateLayout); err != nil {
				return err
			}
			target := filepath.Join(filepath.Dir(path), "normalized_"+filepath.Base(path))
			if err := a.env.FS.WriteFile(target, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
}

func newSynthSeriesCommand(a *app) *cobra.Command {
	var file string
	params := series.DefaultSynthParams()
	cmd := &cobra.Command{
		Use:   "synth-series",
		Short: "Generate a synthetic daily series from monthly totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := series.Synthesize(params, a.rng())
			if err != nil {
				return err
			}
			return a.writeSeries(cmd.OutOrStdout(), file, s)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "write the CSV here instead of stdout")
	cmd.Flags().IntVar(&params.Days, "days", params.Days, "number of rows")
	cmd.Flags().Float64Var(&params.Factor, "factor", params.Factor, "scale applied to every monthly total")
	return cmd
}

func (a *app) writeSeries(stdout io.Writer, file string, s *series.Series) error {
	var buf bytes.Buffer
	if err := s.WriteCSV(&buf, series.LegacyDateLayout); err != nil {
		return err
	}
	return a.emit(stdout, file, buf.Bytes())
}
