package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/marsian83/ethereum-contract-recommendations/internal/txcluster"
)

// ClustersPNG plots transaction features coloured by cluster with each
// centroid marked by a cross.
func ClustersPNG(res *txcluster.Result, o Options) ([]byte, error) {
	if res == nil || len(res.Features) == 0 {
		return nil, fmt.Errorf("no clustered transactions to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Transaction clusters (k=%d, n=%d)", len(res.Clusters), len(res.Features))
	p.X.Label.Text = "log(value + 1)"
	p.Y.Label.Text = "timestamp mod 100000"
	p.Add(plotter.NewGrid())

	colors := Distinct(len(res.Clusters))
	for ci, c := range res.Clusters {
		if len(c.Members) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(c.Members))
		for i, m := range c.Members {
			f := res.Features[m]
			xys[i] = plotter.XY{X: f[0], Y: f[1]}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: colors[ci], Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("cluster %d (%d)", ci, len(c.Members)), sc)
	}

	centroids := make(plotter.XYs, len(res.Clusters))
	for i, c := range res.Clusters {
		centroids[i] = plotter.XY{X: c.Centroid[0], Y: c.Centroid[1]}
	}
	cs, err := plotter.NewScatter(centroids)
	if err != nil {
		return nil, err
	}
	cs.GlyphStyle = draw.GlyphStyle{Color: CentroidColor, Radius: vg.Points(6), Shape: draw.CrossGlyph{}}
	p.Add(cs)
	p.Legend.Add("centroids", cs)
	topRightLegend(p)

	return encodePNG(p, o)
}
