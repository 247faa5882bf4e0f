package series

import (
	"fmt"
	"sort"
)

// Transform derives a metric from its source column.
type Transform int

const (
	// Copy takes the source values as they are.
	Copy Transform = iota
	// Change is the row-over-row difference.
	Change
	// Running is the cumulative total with gaps counted as zero.
	Running
)

func (t Transform) String() string {
	switch t {
	case Copy:
		return "copy"
	case Change:
		return "diff"
	case Running:
		return "cumsum"
	default:
		return fmt.Sprintf("Transform(%d)", int(t))
	}
}

func (t Transform) apply(values []float64) []float64 {
	switch t {
	case Change:
		return Diff(values)
	case Running:
		return CumSum(values)
	default:
		return append([]float64(nil), values...)
	}
}

// Metric is a derived column. Source may name a file column or an earlier
// metric of the same preset.
type Metric struct {
	Name      string
	Source    string
	Transform Transform
}

// Chart is one line chart drawn from a preset.
type Chart struct {
	Title   string
	YLabel  string
	Metrics []string
}

// Preset is a named dashboard over one CSV export.
type Preset struct {
	Name    string
	File    string
	Metrics []Metric
	Charts  []Chart

	// ChangeLog, when set, names the CSV the derived table is saved to.
	ChangeLog string
}

// Apply adds the preset's derived metrics to s in declaration order.
func (p Preset) Apply(s *Series) error {
	for _, m := range p.Metrics {
		src, err := s.Values(m.Source)
		if err != nil {
			return fmt.Errorf("preset %s metric %q: %w", p.Name, m.Name, err)
		}
		if err := s.SetColumn(m.Name, m.Transform.apply(src)); err != nil {
			return fmt.Errorf("preset %s metric %q: %w", p.Name, m.Name, err)
		}
	}
	return nil
}

var presets = map[string]Preset{
	"address-count": {
		Name: "address-count",
		File: "normalized_address-count.csv",
		Metrics: []Metric{
			{Name: "Daily Change", Source: "Value", Transform: Change},
		},
		Charts: []Chart{
			{Title: "Value Over Time", YLabel: "Total Value", Metrics: []string{"Value"}},
			{Title: "Daily Change in Value", YLabel: "users", Metrics: []string{"Daily Change"}},
		},
		ChangeLog: "logged_changes.csv",
	},
	"daily-active-addresses": {
		Name: "daily-active-addresses",
		File: "daily-active-eth-address.csv",
		Metrics: []Metric{
			{Name: "Total Active Users", Source: "Unique Address Total Count"},
			{Name: "Receive", Source: "Unique Address Receive Count"},
			{Name: "Sent", Source: "Unique Address Sent Count"},
		},
		Charts: []Chart{
			{Title: "Daily Unique User Addresses", YLabel: "tokens", Metrics: []string{"Total Active Users", "Receive", "Sent"}},
		},
	},
	"daily-active-tokens": {
		Name: "daily-active-tokens",
		File: "daily-active-token-address.csv",
		Metrics: []Metric{
			{Name: "Total Tokens interacted with", Source: "Unique Address Total Count"},
		},
		Charts: []Chart{
			{Title: "Daily Active Token Addresses", YLabel: "Daily Change", Metrics: []string{"Total Tokens interacted with"}},
		},
	},
	"deployed-contracts": {
		Name: "deployed-contracts",
		File: "deployed-contracts.csv",
		Metrics: []Metric{
			{Name: "contracts", Source: "No. of Deployed Contracts"},
			{Name: "Total Count", Source: "contracts", Transform: Running},
		},
		Charts: []Chart{
			{Title: "Daily and Total Deployed Contracts", YLabel: "Contracts", Metrics: []string{"contracts", "Total Count"}},
		},
	},
	"exchange-txns": {
		Name: "exchange-txns",
		File: "exchange-txns.csv",
		Metrics: []Metric{
			{Name: "txns", Source: "Value"},
		},
		Charts: []Chart{
			{Title: "Daily Exchange Txns", YLabel: "txns", Metrics: []string{"txns"}},
		},
	},
	"token-txns": {
		Name: "token-txns",
		File: "token-txns.csv",
		Metrics: []Metric{
			{Name: "txns", Source: "Transactions"},
			{Name: "Total txns", Source: "txns", Transform: Running},
		},
		Charts: []Chart{
			{Title: "Total (non unique) Transactions marked 'Token'", YLabel: "Contracts", Metrics: []string{"txns", "Total txns"}},
		},
	},
	"tx-growth": {
		Name: "tx-growth",
		File: "tx-growth.csv",
		Metrics: []Metric{
			{Name: "txns", Source: "Transactions"},
			{Name: "Total txns", Source: "txns", Transform: Running},
		},
		Charts: []Chart{
			{Title: "Total Transactions Daily", YLabel: "Contracts", Metrics: []string{"txns", "Total txns"}},
		},
	},
}

// LookupPreset returns the preset registered under name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames lists the registered presets in the order the dashboards were
// originally walked through.
func PresetNames() []string {
	order := map[string]int{
		"address-count":          1,
		"daily-active-addresses": 2,
		"daily-active-tokens":    3,
		"deployed-contracts":     4,
		"exchange-txns":          5,
		"token-txns":             6,
		"tx-growth":              7,
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })
	return names
}
