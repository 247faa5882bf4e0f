package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marsian83/ethereum-contract-recommendations/internal/render"
	"github.com/marsian83/ethereum-contract-recommendations/internal/txgraph"
)

type txgraphOptions struct {
	nodes    int
	edges    int
	ratio    float64
	coloring string
}

func newTxGraphCommand(a *app) *cobra.Command {
	var o txgraphOptions
	cmd := &cobra.Command{
		Use:   "txgraph [snapshot.json]",
		Short: "Lay out and plot a transaction network",
		Long: "With a snapshot argument the address graph of its transactions is plotted\n" +
			"and its adjacency list saved. Without one a synthetic user/contract\n" +
			"network is generated.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			return a.runTxGraph(cmd, source, o)
		},
	}
	cmd.Flags().IntVar(&o.nodes, "nodes", 0, "synthetic node count (default from config)")
	cmd.Flags().IntVar(&o.edges, "edges", 0, "synthetic edge count (default from config)")
	cmd.Flags().Float64Var(&o.ratio, "user-ratio", -1, "share of synthetic nodes labelled users (default from config)")
	cmd.Flags().StringVar(&o.coloring, "color", "role", "node colouring: role or community")
	return cmd
}

func (a *app) runTxGraph(cmd *cobra.Command, source string, o txgraphOptions) error {
	var coloring render.GraphColoring
	switch o.coloring {
	case "role":
		coloring = render.ByRole
	case "community":
		coloring = render.ByCommunity
	default:
		return fmt.Errorf("unknown --color %q (want role or community)", o.coloring)
	}

	rng := a.rng()
	out, err := a.output("txgraph", source)
	if err != nil {
		return err
	}

	var g *txgraph.Graph
	title := "Transaction network"
	if source != "" {
		raw, err := a.env.FS.ReadFile(source)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		snap, err := txgraph.ReadSnapshot(bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("parse %s: %w", source, err)
		}
		adj := txgraph.BuildAdjacency(snap.Transactions)

		var buf bytes.Buffer
		if err := adj.WriteJSON(&buf); err != nil {
			return err
		}
		if _, err := out.Write("adjacency.json", buf.Bytes()); err != nil {
			return err
		}
		g = adj.Graph()
	} else {
		nodes, edges, ratio := a.cfg.GetGraphNodes(), a.cfg.GetGraphEdges(), a.cfg.GetUserRatio()
		if cmd.Flags().Changed("nodes") {
			nodes = o.nodes
		}
		if cmd.Flags().Changed("edges") {
			edges = o.edges
		}
		if cmd.Flags().Changed("user-ratio") {
			ratio = o.ratio
		}
		g, err = txgraph.Synthetic(nodes, edges, ratio, rng)
		if err != nil {
			return err
		}
		title = "Random transaction network (red: users, blue: contracts)"
	}

	n, e := g.Size()
	if n == 0 {
		return fmt.Errorf("graph has no nodes")
	}
	count, q := txgraph.DetectCommunities(g, rng)
	roles := g.CountRoles()
	a.logger.Infow("graph built", "nodes", n, "edges", e, "users", roles[txgraph.RoleUser], "contracts", roles[txgraph.RoleContract], "communities", count, "modularity", q)
	fmt.Fprintf(cmd.OutOrStdout(), "nodes=%d edges=%d communities=%d modularity=%.4f\n", n, e, count, q)

	dot, err := txgraph.MarshalDOT(g)
	if err != nil {
		return err
	}
	if _, err := out.Write("graph.dot", dot); err != nil {
		return err
	}

	pos := txgraph.Layout(g, a.cfg.GetLayoutUpdates(), rng)
	ro := a.renderOptions()
	png, err := render.GraphPNG(g, pos, title, coloring, ro)
	if err != nil {
		return err
	}
	if _, err := out.Write("graph.png", png); err != nil {
		return err
	}
	html, err := render.GraphHTML(g, pos, title, coloring, ro)
	if err != nil {
		return err
	}
	if _, err := out.Write("graph.html", html); err != nil {
		return err
	}
	return out.Close()
}
