// Package txgraph builds address graphs from transaction snapshots and
// generates synthetic user/contract networks for layout experiments.
package txgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/marsian83/ethereum-contract-recommendations/internal/monitoring"
)

// ErrNoTransactions is returned when a snapshot contains no transactions.
var ErrNoTransactions = errors.New("txgraph: snapshot has no transactions")

// Account references an address in an explorer export.
type Account struct {
	Hash string `json:"hash"`
}

// Transaction is the part of an explorer transaction record the graph uses.
type Transaction struct {
	From Account `json:"from"`
	To   Account `json:"to"`
}

// Snapshot is a saved page of explorer transactions.
type Snapshot struct {
	Transactions []Transaction `json:"transactions"`
}

// ReadSnapshot decodes a snapshot document.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(s.Transactions) == 0 {
		return nil, ErrNoTransactions
	}
	return &s, nil
}

// NormalizeAddress returns the checksummed form of hex addresses and the
// trimmed input otherwise.
func NormalizeAddress(s string) string {
	s = strings.TrimSpace(s)
	if common.IsHexAddress(s) {
		return common.HexToAddress(s).Hex()
	}
	return s
}

// Adjacency maps a sender to every recipient it sent to, in transaction
// order. Repeated transfers produce repeated entries.
type Adjacency map[string][]string

// BuildAdjacency groups transactions by sender. Transactions with an empty
// sender or recipient hash are skipped.
func BuildAdjacency(txs []Transaction) Adjacency {
	adj := make(Adjacency)
	skipped := 0
	for _, tx := range txs {
		from, to := NormalizeAddress(tx.From.Hash), NormalizeAddress(tx.To.Hash)
		if from == "" || to == "" {
			skipped++
			continue
		}
		adj[from] = append(adj[from], to)
	}
	if skipped > 0 {
		monitoring.Logf("Skipped %d transactions without both endpoints", skipped)
	}
	return adj
}

// Senders returns the adjacency keys in sorted order.
func (a Adjacency) Senders() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteJSON writes the adjacency list as indented JSON.
func (a Adjacency) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// Graph builds the undirected address graph. Duplicate edges collapse and
// self-transfers are dropped.
func (a Adjacency) Graph() *Graph {
	g := NewGraph()
	for _, from := range a.Senders() {
		g.Account(from)
		for _, to := range a[from] {
			g.Connect(from, to)
		}
	}
	return g
}

// Role labels a node in a synthetic network.
type Role int

const (
	RoleUnknown Role = iota
	RoleUser
	RoleContract
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleContract:
		return "contract"
	default:
		return "address"
	}
}

// Node is an address vertex.
type Node struct {
	id        int64
	Label     string
	Role      Role
	Community int
}

// ID implements graph.Node.
func (n *Node) ID() int64 { return n.id }

// DOTID implements dot.Node.
func (n *Node) DOTID() string { return n.Label }

// Attributes implements encoding.Attributer.
func (n *Node) Attributes() []encoding.Attribute {
	switch n.Role {
	case RoleUser:
		return []encoding.Attribute{{Key: "color", Value: "red"}}
	case RoleContract:
		return []encoding.Attribute{{Key: "color", Value: "blue"}}
	default:
		return nil
	}
}

// Graph is a simple undirected graph of address nodes.
type Graph struct {
	*simple.UndirectedGraph
	byLabel map[string]*Node
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		UndirectedGraph: simple.NewUndirectedGraph(),
		byLabel:         make(map[string]*Node),
	}
}

// Account returns the node for label, adding it if needed.
func (g *Graph) Account(label string) *Node {
	if n, ok := g.byLabel[label]; ok {
		return n
	}
	n := &Node{id: g.NewNode().ID(), Label: label}
	g.AddNode(n)
	g.byLabel[label] = n
	return n
}

// Lookup returns the node for label if present.
func (g *Graph) Lookup(label string) (*Node, bool) {
	n, ok := g.byLabel[label]
	return n, ok
}

// Connect adds an edge between two addresses. It reports whether a new edge
// was created.
func (g *Graph) Connect(a, b string) bool {
	if a == b {
		return false
	}
	x, y := g.Account(a), g.Account(b)
	if g.HasEdgeBetween(x.id, y.id) {
		return false
	}
	g.SetEdge(g.NewEdge(x, y))
	return true
}

// Nodes returns the nodes ordered by ID so that layout and community
// detection see a stable iteration order.
func (g *Graph) Nodes() graph.Nodes {
	return iterator.NewOrderedNodes(byID(graph.NodesOf(g.UndirectedGraph.Nodes())))
}

// From returns the neighbours of id ordered by ID.
func (g *Graph) From(id int64) graph.Nodes {
	return iterator.NewOrderedNodes(byID(graph.NodesOf(g.UndirectedGraph.From(id))))
}

func byID(nodes []graph.Node) []graph.Node {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return nodes
}

// Accounts returns every node ordered by ID.
func (g *Graph) Accounts() []*Node {
	nodes := make([]*Node, 0, len(g.byLabel))
	for _, n := range g.byLabel {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
	return nodes
}

// Links returns every edge once, ordered by endpoint IDs.
func (g *Graph) Links() [][2]*Node {
	var links [][2]*Node
	for _, n := range g.Accounts() {
		to := g.From(n.id)
		for to.Next() {
			m := to.Node().(*Node)
			if m.id > n.id {
				links = append(links, [2]*Node{n, m})
			}
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i][0].id != links[j][0].id {
			return links[i][0].id < links[j][0].id
		}
		return links[i][1].id < links[j][1].id
	})
	return links
}

// CountRoles returns how many nodes carry each role.
func (g *Graph) CountRoles() map[Role]int {
	counts := make(map[Role]int)
	for _, n := range g.byLabel {
		counts[n.Role]++
	}
	return counts
}

// Size returns node and edge counts.
func (g *Graph) Size() (nodes, edges int) {
	return g.Nodes().Len(), g.Edges().Len()
}

var _ graph.Undirected = (*Graph)(nil)

func syntheticLabel(i int) string { return "n" + strconv.Itoa(i) }
