package txgraph

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/simple"
)

// Synthetic builds a uniform G(n, m) random network and labels
// int(n*userRatio) randomly chosen nodes as users and the rest as contracts.
func Synthetic(n, m int, userRatio float64, rng *rand.Rand) (*Graph, error) {
	if n <= 0 {
		return nil, fmt.Errorf("synthetic graph needs at least one node, got %d", n)
	}
	if limit := n * (n - 1) / 2; m < 0 || m > limit {
		return nil, fmt.Errorf("synthetic graph with %d nodes supports 0..%d edges, got %d", n, limit, m)
	}
	if userRatio < 0 || userRatio > 1 {
		return nil, fmt.Errorf("user ratio %g outside [0, 1]", userRatio)
	}

	scratch := simple.NewUndirectedGraph()
	if err := gen.Gnm(scratch, n, m, rng); err != nil {
		return nil, fmt.Errorf("generate G(%d, %d): %w", n, m, err)
	}

	g := NewGraph()
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = g.Account(syntheticLabel(i))
	}

	// The generator picks its own node IDs; map them onto ours in ID order.
	ids := graph.NodesOf(scratch.Nodes())
	sort.Slice(ids, func(i, j int) bool { return ids[i].ID() < ids[j].ID() })
	index := make(map[int64]*Node, len(ids))
	for i, id := range ids {
		if i < n {
			index[id.ID()] = nodes[i]
		}
	}

	edges := scratch.Edges()
	for edges.Next() {
		e := edges.Edge()
		x, okx := index[e.From().ID()]
		y, oky := index[e.To().ID()]
		if okx && oky {
			g.Connect(x.Label, y.Label)
		}
	}

	users := int(float64(n) * userRatio)
	order := rng.Perm(n)
	for rank, idx := range order {
		if rank < users {
			nodes[idx].Role = RoleUser
		} else {
			nodes[idx].Role = RoleContract
		}
	}
	return g, nil
}
