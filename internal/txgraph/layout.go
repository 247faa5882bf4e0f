package txgraph

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/spatial/r2"
)

// MarshalDOT renders g as an undirected DOT graph named G. Role colours
// are emitted as node attributes.
func MarshalDOT(g *Graph) ([]byte, error) {
	b, err := dot.Marshal(g, "G", "", "\t")
	if err != nil {
		return nil, fmt.Errorf("marshal dot: %w", err)
	}
	return b, nil
}

// Positions maps node IDs to layout coordinates.
type Positions map[int64]r2.Vec

// Bounds returns the bounding box of all positions.
func (p Positions) Bounds() (lo, hi r2.Vec) {
	lo = r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi = r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, v := range p {
		lo.X, lo.Y = math.Min(lo.X, v.X), math.Min(lo.Y, v.Y)
		hi.X, hi.Y = math.Max(hi.X, v.X), math.Max(hi.Y, v.Y)
	}
	return lo, hi
}

// Layout places every node with the Eades spring embedder. The same rng
// state gives the same positions.
func Layout(g *Graph, updates int, rng *rand.Rand) Positions {
	eades := layout.EadesR2{
		Updates:   updates,
		Repulsion: 1,
		Rate:      0.05,
		Theta:     0.2,
		Src:       rng,
	}
	o := layout.NewOptimizerR2(g, eades.Update)
	for o.Update() {
	}

	pos := make(Positions, len(g.byLabel))
	for _, n := range g.Accounts() {
		pos[n.id] = o.Coord2(n.id)
	}
	return pos
}

// DetectCommunities partitions g with the Louvain method, stores the
// community index on every node and returns the number of communities and
// the partition's modularity. Graphs without edges put each node in its
// own community.
func DetectCommunities(g *Graph, rng *rand.Rand) (int, float64) {
	nodes := g.Accounts()
	if _, edges := g.Size(); edges == 0 {
		for i, n := range nodes {
			n.Community = i
		}
		return len(nodes), 0
	}

	reduced := community.Modularize(g, 1, rng)
	communities := reduced.Communities()
	for i, members := range communities {
		for _, m := range members {
			if n, ok := g.Node(m.ID()).(*Node); ok {
				n.Community = i
			}
		}
	}
	return len(communities), community.Q(g, communities, 1)
}
