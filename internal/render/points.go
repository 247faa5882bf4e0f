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

	"github.com/marsian83/ethereum-contract-recommendations/internal/pointcloud"
)

func pointCloudTitle(v *pointcloud.View) string {
	return fmt.Sprintf("%dD point cloud (total %d, shown %d = %.1f%%, density %.3g)",
		v.Dims, len(v.Points), v.Classification.Shown(), v.ShownPercent(), v.Density())
}

// PointCloudPNG draws the X-Y plane of a view: core points coloured by
// relative distance on the viridis gradient, sampled outer points in red
// and the centroid as a yellow marker.
func PointCloudPNG(v *pointcloud.View, o Options) ([]byte, error) {
	p := plot.New()
	p.Title.Text = pointCloudTitle(v)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	extent := v.Extent
	if extent <= 0 {
		extent = o.Extent2D
	}
	p.X.Min, p.X.Max = 0, extent
	p.Y.Min, p.Y.Max = 0, extent
	p.Add(plotter.NewGrid())

	c := v.Classification
	if len(c.Core) > 0 {
		xys := make(plotter.XYs, len(c.Core))
		colors := make([]color.Color, len(c.Core))
		for i, idx := range c.Core {
			pt := v.Points[idx]
			xys[i] = plotter.XY{X: pt.X(), Y: pt.Y()}
			colors[i] = Viridis(v.Stats.Relative[idx])
		}
		core, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		core.GlyphStyle = draw.GlyphStyle{Color: Viridis(0), Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
		core.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: colors[i], Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
		}
		p.Add(core)
		p.Legend.Add(fmt.Sprintf("core (< %.2f)", c.Threshold), core)
	}

	if len(c.OuterSampled) > 0 {
		xys := make(plotter.XYs, len(c.OuterSampled))
		for i, idx := range c.OuterSampled {
			pt := v.Points[idx]
			xys[i] = plotter.XY{X: pt.X(), Y: pt.Y()}
		}
		outer, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		outer.GlyphStyle = draw.GlyphStyle{Color: OuterColor, Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
		p.Add(outer)
		p.Legend.Add(fmt.Sprintf("outer sample (%d of %d)", len(c.OuterSampled), len(c.Outer)), outer)
	}

	centroid, err := plotter.NewScatter(plotter.XYs{{X: v.Stats.Centroid.X(), Y: v.Stats.Centroid.Y()}})
	if err != nil {
		return nil, err
	}
	centroid.GlyphStyle = draw.GlyphStyle{Color: CentroidColor, Radius: vg.Points(6), Shape: draw.PyramidGlyph{}}
	p.Add(centroid)
	p.Legend.Add("centroid "+v.Stats.Centroid.String(), centroid)
	topRightLegend(p)

	return encodePNG(p, o)
}

const colorBands = 10

type band struct {
	color   color.Color
	members []int
}

// coreBands groups core points into tenths of relative distance so each
// group can be drawn as one series in its gradient colour. Every band is
// named "core" so the legend toggles them together.
func coreBands(v *pointcloud.View) []band {
	bands := make([]band, colorBands)
	for i := range bands {
		bands[i].color = Viridis((float64(i) + 0.5) / colorBands)
	}
	for _, idx := range v.Classification.Core {
		b := int(v.Stats.Relative[idx] * colorBands)
		if b < 0 {
			b = 0
		}
		if b >= colorBands {
			b = colorBands - 1
		}
		bands[b].members = append(bands[b].members, idx)
	}

	out := bands[:0]
	for _, b := range bands {
		if len(b.members) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// PointCloudHTML renders a view as an interactive chart: a 3D scatter for
// 3D views and a plain scatter for 2D views.
func PointCloudHTML(v *pointcloud.View, o Options) ([]byte, error) {
	if v.Dims == 3 {
		return pointCloud3DHTML(v, o)
	}
	return pointCloud2DHTML(v, o)
}

func pointCloud3DHTML(v *pointcloud.View, o Options) ([]byte, error) {
	extent := v.Extent
	if extent <= 0 {
		extent = o.Extent3D
	}
	c := v.Classification

	outer := make([]opts.Chart3DData, 0, len(c.OuterSampled))
	for _, idx := range c.OuterSampled {
		pt := v.Points[idx]
		outer = append(outer, opts.Chart3DData{Value: []interface{}{pt.X(), pt.Y(), pt.Z()}})
	}
	ctr := v.Stats.Centroid
	centroid := []opts.Chart3DData{{Name: "centroid", Value: []interface{}{ctr.X(), ctr.Y(), ctr.Z()}}}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Point Cloud (3D)", Width: "1200px", Height: "900px", AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Point Cloud", Subtitle: pointCloudTitle(v)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X", Min: 0, Max: extent}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y", Min: 0, Max: extent}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z", Min: 0, Max: extent}),
	)
	for _, b := range coreBands(v) {
		data := make([]opts.Chart3DData, len(b.members))
		for i, idx := range b.members {
			pt := v.Points[idx]
			data[i] = opts.Chart3DData{Value: []interface{}{pt.X(), pt.Y(), pt.Z()}}
		}
		scatter.AddSeries("core", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(b.color)}))
	}
	scatter.AddSeries("outer sample", outer, charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(OuterColor)}))
	scatter.AddSeries("centroid", centroid, charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(CentroidColor)}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render point cloud chart: %w", err)
	}
	return buf.Bytes(), nil
}

func pointCloud2DHTML(v *pointcloud.View, o Options) ([]byte, error) {
	extent := v.Extent
	if extent <= 0 {
		extent = o.Extent2D
	}
	c := v.Classification

	outer := make([]opts.ScatterData, 0, len(c.OuterSampled))
	for _, idx := range c.OuterSampled {
		pt := v.Points[idx]
		outer = append(outer, opts.ScatterData{Value: []interface{}{pt.X(), pt.Y()}})
	}
	ctr := v.Stats.Centroid

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Point Cloud (2D)", Width: "900px", Height: "900px", AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Point Cloud", Subtitle: pointCloudTitle(v)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: extent, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: extent, Name: "Y", NameLocation: "middle", NameGap: 30}),
	)
	for _, b := range coreBands(v) {
		data := make([]opts.ScatterData, len(b.members))
		for i, idx := range b.members {
			pt := v.Points[idx]
			data[i] = opts.ScatterData{Value: []interface{}{pt.X(), pt.Y()}}
		}
		scatter.AddSeries("core", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}), charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(b.color)}))
	}
	scatter.AddSeries("outer sample", outer, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}), charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(OuterColor)}))
	scatter.AddSeries("centroid", []opts.ScatterData{{Value: []interface{}{ctr.X(), ctr.Y()}}},
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}), charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(CentroidColor)}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render point cloud chart: %w", err)
	}
	return buf.Bytes(), nil
}
