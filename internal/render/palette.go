package render

import (
	"fmt"
	"image/color"
	"math"
)

// viridisStops are the ten evenly spaced stops of the viridis colour map.
var viridisStops = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// Fixed colours used across charts.
var (
	OuterColor    = color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 255}
	CentroidColor = color.RGBA{R: 0xff, G: 0xd6, B: 0x00, A: 255}
	UserColor     = color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 255}
	ContractColor = color.RGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 255}
	EdgeColor     = color.NRGBA{R: 128, G: 128, B: 128, A: 77}
	SignColor     = mustHex("#4caf50")
	VerifyColor   = mustHex("#2196f3")
)

var viridis = func() []color.RGBA {
	out := make([]color.RGBA, len(viridisStops))
	for i, s := range viridisStops {
		out[i] = mustHex(s)
	}
	return out
}()

// Viridis maps t in [0, 1] onto the viridis gradient. Values outside the
// range are clamped and NaN maps to the first stop.
func Viridis(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return viridis[0]
	}
	if t >= 1 {
		return viridis[len(viridis)-1]
	}
	pos := t * float64(len(viridis)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := viridis[i], viridis[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac)) }
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

// Hex formats c as #rrggbb.
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

func mustHex(s string) color.RGBA {
	var c color.RGBA
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		panic(fmt.Sprintf("render: bad colour %q: %v", s, err))
	}
	c.A = 255
	return c
}

// Distinct returns n colours evenly spaced in hue.
func Distinct(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
