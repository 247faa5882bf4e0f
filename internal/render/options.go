// Package render draws analysis results as PNG images (gonum/plot) and
// interactive HTML pages (go-echarts). Renderers return bytes; writing them
// to disk is the caller's job (see Output).
package render

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Options holds the figure settings shared by all renderers.
type Options struct {
	Width      vg.Length
	Height     vg.Length
	AssetsHost string // go-echarts assets prefix; empty uses the library default

	// Axis bounds for point cloud charts.
	Extent2D float64
	Extent3D float64
}

// DefaultOptions returns a 14x8 inch figure and the standard point cloud
// bounds.
func DefaultOptions() Options {
	return Options{
		Width:    14 * vg.Inch,
		Height:   8 * vg.Inch,
		Extent2D: 5000,
		Extent3D: 1000,
	}
}

func encodePNG(p *plot.Plot, o Options) ([]byte, error) {
	w, h := o.Width, o.Height
	if w <= 0 || h <= 0 {
		d := DefaultOptions()
		w, h = d.Width, d.Height
	}
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// topRightLegend places the legend the same way on every chart.
func topRightLegend(p *plot.Plot) {
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
}
