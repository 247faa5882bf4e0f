package series

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// SynthParams controls daily series synthesis from monthly totals.
type SynthParams struct {
	Monthly     []float64
	Factor      float64 // applied to each monthly total, then rounded up
	DaysInMonth int
	Jitter      float64 // each day is scaled by 1 + U[0, Jitter)
	Start       time.Time
	Days        int
}

// DefaultMonthly are the monthly new-address totals the reference series was
// interpolated from.
var DefaultMonthly = []float64{
	863231, 784842, 863231, 635343, 756754, 598894,
	999576, 1077765, 849877, 971288, 813428, 1214110,
}

// DefaultSynthParams returns the parameters of the reference output.csv.
func DefaultSynthParams() SynthParams {
	return SynthParams{
		Monthly:     DefaultMonthly,
		Factor:      1.2253,
		DaysInMonth: 30,
		Jitter:      0.4,
		Start:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:        365,
	}
}

// DailyValues spreads each monthly total over DaysInMonth jittered days.
func DailyValues(p SynthParams, rng *rand.Rand) []float64 {
	days := make([]float64, 0, len(p.Monthly)*p.DaysInMonth)
	for _, m := range p.Monthly {
		month := math.Ceil(m * p.Factor)
		for j := 0; j < p.DaysInMonth; j++ {
			days = append(days, math.Ceil(month/float64(p.DaysInMonth)*(1+rng.Float64()*p.Jitter)))
		}
	}
	return days
}

// Synthesize builds a Days-row series starting at Start with UnixTimeStamp
// and Value columns. Daily values wrap around when Days exceeds the number
// of generated days.
func Synthesize(p SynthParams, rng *rand.Rand) (*Series, error) {
	if len(p.Monthly) == 0 || p.DaysInMonth <= 0 || p.Days <= 0 {
		return nil, fmt.Errorf("invalid synth parameters: %d months, %d days/month, %d days", len(p.Monthly), p.DaysInMonth, p.Days)
	}

	daily := DailyValues(p, rng)
	s := &Series{Dates: make([]time.Time, p.Days)}
	stamps := make([]float64, p.Days)
	values := make([]float64, p.Days)
	for i := 0; i < p.Days; i++ {
		d := p.Start.AddDate(0, 0, i)
		s.Dates[i] = d
		stamps[i] = float64(d.Unix())
		values[i] = daily[i%len(daily)]
	}
	s.Columns = []*Column{
		{Name: "UnixTimeStamp", Values: stamps},
		{Name: "Value", Values: values},
	}
	return s, nil
}
