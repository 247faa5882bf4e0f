package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marsian83/ethereum-contract-recommendations/internal/render"
	"github.com/marsian83/ethereum-contract-recommendations/internal/txcluster"
)

func newClusterCommand(a *app) *cobra.Command {
	var k, iterations int
	cmd := &cobra.Command{
		Use:   "cluster <transactions.json>",
		Short: "Group transactions by value and time with k-means",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			raw, err := a.env.FS.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read transactions: %w", err)
			}
			txs, err := txcluster.ReadTransactions(bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}

			if !cmd.Flags().Changed("k") {
				k = a.cfg.GetClusterK()
			}
			if !cmd.Flags().Changed("iterations") {
				iterations = a.cfg.GetClusterIterations()
			}
			res, err := txcluster.KMeans(txs, k, iterations, a.rng())
			if err != nil {
				return err
			}

			calls := 0
			for _, tx := range txs {
				if tx.Kind == txcluster.ContractCall {
					calls++
				}
			}
			a.logger.Infow("transactions clustered", "count", len(txs), "contract_calls", calls, "k", k, "iterations", iterations)
			if err := res.WriteCentroids(cmd.OutOrStdout()); err != nil {
				return err
			}

			out, err := a.output("cluster", path)
			if err != nil {
				return err
			}
			png, err := render.ClustersPNG(res, a.renderOptions())
			if err != nil {
				return err
			}
			if _, err := out.Write("clusters.png", png); err != nil {
				return err
			}
			return out.Close()
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "number of clusters (default from config)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Lloyd iterations (default from config)")
	return cmd
}

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Pretty print a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.env.FS.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, raw, "", "    "); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			buf.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}
}
