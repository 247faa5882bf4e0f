package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/marsian83/ethereum-contract-recommendations/internal/sigbench"
)

const benchTitle = "Signature Scheme Performance"

// BenchPNG draws grouped sign/verify bars per algorithm.
func BenchPNG(results []sigbench.Result, o Options) ([]byte, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no benchmark results to plot")
	}

	names := make([]string, len(results))
	sign := make(plotter.Values, len(results))
	verify := make(plotter.Values, len(results))
	for i, r := range results {
		names[i] = r.Algorithm
		sign[i] = r.Sign
		verify[i] = r.Verify
	}

	p := plot.New()
	p.Title.Text = benchTitle
	p.Y.Label.Text = "Operations per second"
	p.Y.Min = 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(grid)

	width := vg.Points(14)
	for _, b := range []struct {
		label  string
		values plotter.Values
		color  color.Color
		offset vg.Length
	}{
		{"Sign", sign, SignColor, -width / 2},
		{"Verify", verify, VerifyColor, width / 2},
	} {
		bars, err := plotter.NewBarChart(b.values, width)
		if err != nil {
			return nil, fmt.Errorf("bars %s: %w", b.label, err)
		}
		bars.Color = b.color
		bars.LineStyle.Width = 0
		bars.Offset = b.offset
		p.Add(bars)
		p.Legend.Add(b.label, bars)
	}

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -1
	topRightLegend(p)

	return encodePNG(p, o)
}

// BenchHTML renders the same comparison as an interactive bar chart.
func BenchHTML(results []sigbench.Result, o Options) ([]byte, error) {
	names := make([]string, len(results))
	sign := make([]opts.BarData, len(results))
	verify := make([]opts.BarData, len(results))
	for i, r := range results {
		names[i] = r.Algorithm
		sign[i] = opts.BarData{Name: r.Source, Value: math.Round(r.Sign)}
		verify[i] = opts.BarData{Name: r.Source, Value: math.Round(r.Verify)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: benchTitle, Width: "1200px", Height: "700px", AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: benchTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ops/s"}),
	)
	bar.SetXAxis(names).
		AddSeries("Sign", sign, charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(SignColor)})).
		AddSeries("Verify", verify, charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(VerifyColor)}))

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render benchmark chart: %w", err)
	}
	return buf.Bytes(), nil
}
