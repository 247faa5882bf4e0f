package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marsian83/ethereum-contract-recommendations/internal/render"
	"github.com/marsian83/ethereum-contract-recommendations/internal/sigbench"
)

func newSigbenchCommand(a *app) *cobra.Command {
	var measure bool
	cmd := &cobra.Command{
		Use:   "sigbench",
		Short: "Chart signing and verification throughput per signature scheme",
		Long: "Charts the published throughput figures. With --measure each scheme\n" +
			"available locally is timed for the configured bench_duration and the\n" +
			"measured rates replace the published ones.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := sigbench.Published()
			if measure {
				signers, err := sigbench.DefaultSigners()
				if err != nil {
					return err
				}
				measured, err := sigbench.MeasureAll(cmd.Context(), signers, a.cfg.GetBenchDuration(), a.env.Clock)
				if err != nil {
					return err
				}
				results = sigbench.Merge(results, measured)
			}
			return a.writeBench(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().BoolVar(&measure, "measure", false, "time the schemes locally")
	return cmd
}

func writeBenchTable(w io.Writer, results []sigbench.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tSIGN/S\tVERIFY/S\tSOURCE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%s\n", r.Algorithm, r.Sign, r.Verify, r.Source)
	}
	return tw.Flush()
}

func (a *app) writeBench(stdout io.Writer, results []sigbench.Result) error {
	if err := writeBenchTable(stdout, results); err != nil {
		return err
	}

	out, err := a.output("sigbench", "")
	if err != nil {
		return err
	}
	ro := a.renderOptions()

	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if _, err := out.Write("results.json", raw); err != nil {
		return err
	}
	png, err := render.BenchPNG(results, ro)
	if err != nil {
		return err
	}
	if _, err := out.Write("sigbench.png", png); err != nil {
		return err
	}
	html, err := render.BenchHTML(results, ro)
	if err != nil {
		return err
	}
	if _, err := out.Write("sigbench.html", html); err != nil {
		return err
	}
	return out.Close()
}
