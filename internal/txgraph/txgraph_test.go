package txgraph

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func tx(from, to string) Transaction {
	return Transaction{From: Account{Hash: from}, To: Account{Hash: to}}
}

func TestReadSnapshot(t *testing.T) {
	doc := `{"transactions": [
		{"from": {"hash": "a"}, "to": {"hash": "b"}, "value": "12"},
		{"from": {"hash": "b"}, "to": {"hash": "c"}}
	]}`

	s, err := ReadSnapshot(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, s.Transactions, 2)
	assert.Equal(t, "a", s.Transactions[0].From.Hash)
	assert.Equal(t, "c", s.Transactions[1].To.Hash)
}

func TestReadSnapshot_Errors(t *testing.T) {
	_, err := ReadSnapshot(strings.NewReader(`{"transactions": []}`))
	assert.ErrorIs(t, err, ErrNoTransactions)

	_, err = ReadSnapshot(strings.NewReader(`{"transactions": [`))
	assert.Error(t, err)
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, checksummed, NormalizeAddress(" 0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed "))
	assert.Equal(t, checksummed, NormalizeAddress("0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED"))
	assert.Equal(t, "alice.eth", NormalizeAddress("alice.eth"))
	assert.Equal(t, "", NormalizeAddress("   "))
}

func TestBuildAdjacency(t *testing.T) {
	adj := BuildAdjacency([]Transaction{
		tx("a", "b"),
		tx("a", "c"),
		tx("a", "b"),
		tx("b", "a"),
		tx("", "z"),
		tx("c", ""),
		tx("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", "a"),
	})

	assert.Equal(t, []string{"b", "c", "b"}, adj["a"])
	assert.Equal(t, []string{"a"}, adj["b"])
	assert.Equal(t, []string{"a"}, adj[checksummed])
	assert.NotContains(t, adj, "")
	assert.Equal(t, []string{checksummed, "a", "b"}, adj.Senders())
}

func TestAdjacency_WriteJSON(t *testing.T) {
	adj := Adjacency{"a": {"b", "b"}, "c": {"a"}}

	var buf bytes.Buffer
	require.NoError(t, adj.WriteJSON(&buf))
	assert.Contains(t, buf.String(), "\n  \"a\": [\n    \"b\",")

	var back Adjacency
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, adj, back)
}

func TestAdjacency_Graph(t *testing.T) {
	adj := BuildAdjacency([]Transaction{
		tx("a", "b"),
		tx("a", "b"),
		tx("b", "a"),
		tx("a", "a"),
		tx("b", "c"),
	})

	g := adj.Graph()
	nodes, edges := g.Size()
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 2, edges)

	links := g.Links()
	require.Len(t, links, 2)
	assert.Equal(t, "a", links[0][0].Label)
	assert.Equal(t, "b", links[0][1].Label)

	n, ok := g.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, RoleUnknown, n.Role)
}

func TestGraph_ConnectReportsNewEdges(t *testing.T) {
	g := NewGraph()
	assert.True(t, g.Connect("x", "y"))
	assert.False(t, g.Connect("y", "x"))
	assert.False(t, g.Connect("x", "x"))
	assert.Same(t, g.Account("x"), g.Account("x"))
}

func TestMarshalDOT(t *testing.T) {
	g := NewGraph()
	g.Connect("alice", "bob")
	g.Connect("bob", checksummed)
	g.Account("alice").Role = RoleUser
	g.Account("bob").Role = RoleContract

	b, err := MarshalDOT(g)
	require.NoError(t, err)

	out := string(b)
	assert.Contains(t, out, "graph G {")
	assert.Contains(t, out, "alice -- bob")
	assert.Contains(t, out, checksummed)
	assert.Contains(t, out, "color=red")
	assert.Contains(t, out, "color=blue")
}

func TestSynthetic(t *testing.T) {
	g, err := Synthetic(100, 300, 0.75, rand.New(rand.NewPCG(42, 42)))
	require.NoError(t, err)

	nodes, edges := g.Size()
	assert.Equal(t, 100, nodes)
	assert.Equal(t, 300, edges)

	roles := g.CountRoles()
	assert.Equal(t, 75, roles[RoleUser])
	assert.Equal(t, 25, roles[RoleContract])
	assert.Zero(t, roles[RoleUnknown])
}

func TestSynthetic_Deterministic(t *testing.T) {
	labels := func(g *Graph) []string {
		var out []string
		for _, l := range g.Links() {
			out = append(out, l[0].Label+"-"+l[1].Label)
		}
		for _, n := range g.Accounts() {
			out = append(out, n.Label+":"+n.Role.String())
		}
		return out
	}

	a, err := Synthetic(30, 60, 0.5, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	b, err := Synthetic(30, 60, 0.5, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	assert.Equal(t, labels(a), labels(b))
}

func TestSynthetic_Invalid(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	_, err := Synthetic(0, 0, 0.5, rng)
	assert.Error(t, err)

	_, err = Synthetic(5, 11, 0.5, rng)
	assert.Error(t, err)

	_, err = Synthetic(5, 3, 1.5, rng)
	assert.Error(t, err)
}

func TestSynthetic_NoEdges(t *testing.T) {
	g, err := Synthetic(4, 0, 1, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	nodes, edges := g.Size()
	assert.Equal(t, 4, nodes)
	assert.Zero(t, edges)
	assert.Equal(t, 4, g.CountRoles()[RoleUser])
}

func TestLayout(t *testing.T) {
	g, err := Synthetic(20, 40, 0.75, rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)

	pos := Layout(g, 30, rand.New(rand.NewPCG(4, 4)))
	require.Len(t, pos, 20)
	for id, v := range pos {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			t.Errorf("node %d has non-finite position %v", id, v)
		}
	}

	lo, hi := pos.Bounds()
	assert.LessOrEqual(t, lo.X, hi.X)
	assert.LessOrEqual(t, lo.Y, hi.Y)
}

func TestDetectCommunities_TwoTriangles(t *testing.T) {
	g := NewGraph()
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"x", "y"}, {"y", "z"}, {"z", "x"}} {
		g.Connect(e[0], e[1])
	}

	count, q := DetectCommunities(g, rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, 2, count)
	assert.InDelta(t, 0.5, q, 1e-9)

	a, _ := g.Lookup("a")
	b, _ := g.Lookup("b")
	x, _ := g.Lookup("x")
	assert.Equal(t, a.Community, b.Community)
	assert.NotEqual(t, a.Community, x.Community)
}

func TestDetectCommunities_NoEdges(t *testing.T) {
	g := NewGraph()
	g.Account("solo")
	g.Account("other")

	count, q := DetectCommunities(g, rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, 2, count)
	assert.Zero(t, q)
}
