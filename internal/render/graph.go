package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/marsian83/ethereum-contract-recommendations/internal/txgraph"
)

// GraphColoring selects how graph nodes are coloured.
type GraphColoring int

const (
	// ByRole colours users red and contracts blue.
	ByRole GraphColoring = iota
	// ByCommunity gives each detected community its own hue.
	ByCommunity
)

type nodePalette func(n *txgraph.Node) color.Color

func graphPalette(g *txgraph.Graph, coloring GraphColoring) nodePalette {
	if coloring == ByCommunity {
		count := 0
		for _, n := range g.Accounts() {
			if n.Community+1 > count {
				count = n.Community + 1
			}
		}
		hues := Distinct(count)
		return func(n *txgraph.Node) color.Color {
			if n.Community < 0 || n.Community >= len(hues) {
				return EdgeColor
			}
			return hues[n.Community]
		}
	}
	return func(n *txgraph.Node) color.Color {
		switch n.Role {
		case txgraph.RoleUser:
			return UserColor
		case txgraph.RoleContract:
			return ContractColor
		}
		return color.Gray{Y: 96}
	}
}

// GraphPNG draws a laid out transaction graph with hidden axes.
func GraphPNG(g *txgraph.Graph, pos txgraph.Positions, title string, coloring GraphColoring, o Options) ([]byte, error) {
	nodes := g.Accounts()
	if len(nodes) == 0 {
		return nil, fmt.Errorf("graph %q has no nodes", title)
	}

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()

	for _, link := range g.Links() {
		a, b := pos[link[0].ID()], pos[link[1].ID()]
		l, err := plotter.NewLine(plotter.XYs{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}})
		if err != nil {
			return nil, err
		}
		l.Color = EdgeColor
		l.Width = vg.Points(0.5)
		p.Add(l)
	}

	xys := make(plotter.XYs, len(nodes))
	colors := make([]color.Color, len(nodes))
	palette := graphPalette(g, coloring)
	for i, n := range nodes {
		v := pos[n.ID()]
		xys[i] = plotter.XY{X: v.X, Y: v.Y}
		colors[i] = palette(n)
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: colors[i], Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
	}
	p.Add(sc)

	if coloring == ByRole {
		for _, role := range []txgraph.Role{txgraph.RoleUser, txgraph.RoleContract} {
			c := palette(&txgraph.Node{Role: role})
			swatch, err := plotter.NewScatter(plotter.XYs{})
			if err != nil {
				return nil, err
			}
			swatch.GlyphStyle = draw.GlyphStyle{Color: c, Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
			p.Legend.Add(role.String(), swatch)
		}
		topRightLegend(p)
	}

	return encodePNG(p, o)
}

// GraphHTML renders the same graph as an interactive, pannable chart.
func GraphHTML(g *txgraph.Graph, pos txgraph.Positions, title string, coloring GraphColoring, o Options) ([]byte, error) {
	palette := graphPalette(g, coloring)

	nodes := make([]opts.GraphNode, 0)
	for _, n := range g.Accounts() {
		v := pos[n.ID()]
		nodes = append(nodes, opts.GraphNode{
			Name:       n.Label,
			X:          float32(v.X),
			Y:          float32(v.Y),
			SymbolSize: 8,
			ItemStyle:  &opts.ItemStyle{Color: Hex(palette(n))},
		})
	}
	links := make([]opts.GraphLink, 0)
	for _, l := range g.Links() {
		links = append(links, opts.GraphLink{Source: l[0].Label, Target: l[1].Label})
	}

	chart := charts.NewGraph()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "900px", AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	chart.AddSeries("accounts", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{Layout: "none", Roam: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: Hex(EdgeColor)}),
	)

	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render graph chart: %w", err)
	}
	return buf.Bytes(), nil
}
