package pointcloud

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
)

// SphereParams describes the synthetic lattice sphere document.
type SphereParams struct {
	Lattice   int        // points per axis of the cubic lattice
	Center    [3]float64 // sphere centre in lattice coordinates
	Radius    float64
	KeepOneIn int        // each interior lattice point is kept with probability 1/KeepOneIn
	Offset    [3]int     // added to every written coordinate
	Field     string     // top-level field name holding the array
}

// DefaultSphereParams returns the parameters of the reference sample file.
func DefaultSphereParams() SphereParams {
	return SphereParams{
		Lattice:   100,
		Center:    [3]float64{50, 50, 50},
		Radius:    30,
		KeepOneIn: 200,
		Offset:    [3]int{230, 780, 130},
		Field:     "data",
	}
}

// GenerateSphere writes a point document sampled from the lattice points
// inside a sphere. The output keeps the legacy layout, including the comma
// after the final tuple, so strict parsing fails and the trailing-comma
// strategy has to repair it. It returns the number of points written.
func GenerateSphere(w io.Writer, p SphereParams, rng *rand.Rand) (int, error) {
	if p.Lattice <= 0 || p.KeepOneIn <= 0 || p.Radius <= 0 {
		return 0, fmt.Errorf("invalid sphere parameters: lattice=%d keep=1/%d radius=%g", p.Lattice, p.KeepOneIn, p.Radius)
	}
	if p.Field == "" {
		p.Field = "data"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "{ %q: [\n", p.Field)

	r2 := p.Radius * p.Radius
	count := 0
	for x := 0; x < p.Lattice; x++ {
		for y := 0; y < p.Lattice; y++ {
			for z := 0; z < p.Lattice; z++ {
				dx := float64(x) - p.Center[0]
				dy := float64(y) - p.Center[1]
				dz := float64(z) - p.Center[2]
				if dx*dx+dy*dy+dz*dz > r2 {
					continue
				}
				if rng.IntN(p.KeepOneIn) != 0 {
					continue
				}
				fmt.Fprintf(bw, "[%d, %d, %d],\n", x+p.Offset[0], y+p.Offset[1], z+p.Offset[2])
				count++
			}
		}
	}

	fmt.Fprint(bw, "]}\n")
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("write sphere document: %w", err)
	}
	return count, nil
}
