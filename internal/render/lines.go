package render

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/marsian83/ethereum-contract-recommendations/internal/series"
)

// LineChart is one titled chart of long-form observations.
type LineChart struct {
	Title        string
	YLabel       string
	Observations []series.Observation
}

type metricLine struct {
	name   string
	dates  []time.Time
	values []float64
}

// groupByMetric splits observations into one line per metric, in order of
// first appearance.
func groupByMetric(obs []series.Observation) []*metricLine {
	var lines []*metricLine
	index := make(map[string]*metricLine)
	for _, o := range obs {
		l, ok := index[o.Metric]
		if !ok {
			l = &metricLine{name: o.Metric}
			index[o.Metric] = l
			lines = append(lines, l)
		}
		l.dates = append(l.dates, o.Date)
		l.values = append(l.values, o.Value)
	}
	return lines
}

// segments breaks a line at NaN values so gaps stay gaps.
func (l *metricLine) segments() []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, v := range l.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(l.dates[i].Unix()), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// SeriesPNG draws one line per metric against time.
func SeriesPNG(c LineChart, o Options) ([]byte, error) {
	lines := groupByMetric(c.Observations)
	if len(lines) == 0 {
		return nil, fmt.Errorf("series chart %q has no observations", c.Title)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = c.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -1
	p.Add(plotter.NewGrid())

	colors := Distinct(len(lines))
	for i, l := range lines {
		labelled := false
		for _, seg := range l.segments() {
			lp, sp, err := plotter.NewLinePoints(seg)
			if err != nil {
				return nil, fmt.Errorf("line %s: %w", l.name, err)
			}
			lp.Color = colors[i]
			lp.Width = vg.Points(1.5)
			sp.Color = colors[i]
			sp.Radius = vg.Points(2)
			p.Add(lp, sp)
			if !labelled {
				p.Legend.Add(l.name, lp, sp)
				labelled = true
			}
		}
	}
	topRightLegend(p)

	return encodePNG(p, o)
}

// SeriesHTML renders every chart as a line chart on one page.
func SeriesHTML(pageTitle string, cs []LineChart, o Options) ([]byte, error) {
	page := components.NewPage()
	page.PageTitle = pageTitle
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}

	for _, c := range cs {
		lines := groupByMetric(c.Observations)
		if len(lines) == 0 {
			continue
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: c.Title, Width: "1200px", Height: "600px", AssetsHost: o.AssetsHost}),
			charts.WithTitleOpts(opts.Title{Title: c.Title}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Date", NameLocation: "middle", NameGap: 30}),
			charts.WithYAxisOpts(opts.YAxis{Name: c.YLabel}),
		)

		// Every metric of a melted frame shares the same dates.
		x := make([]string, len(lines[0].dates))
		for i, d := range lines[0].dates {
			x[i] = d.Format("2006-01-02")
		}
		line.SetXAxis(x)
		for _, l := range lines {
			data := make([]opts.LineData, len(l.values))
			for i, v := range l.values {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					data[i] = opts.LineData{Value: "-"}
					continue
				}
				data[i] = opts.LineData{Value: v}
			}
			line.AddSeries(l.name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
		}
		page.AddCharts(line)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render series page: %w", err)
	}
	return buf.Bytes(), nil
}
