package pointcloud

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/marsian83/ethereum-contract-recommendations/internal/fsutil"
	"github.com/marsian83/ethereum-contract-recommendations/internal/monitoring"
)

// Strategy names reported in LoadReport.Strategy.
const (
	StrategyStrict        = "strict"
	StrategyTrailingComma = "trailing-comma"
	StrategyTripletRegex  = "triplet-regex"
)

var (
	// ErrMissingField is returned when the document has no point array field.
	ErrMissingField = errors.New("pointcloud: data field missing")

	// ErrNoStrategy is returned when every parse strategy failed.
	ErrNoStrategy = errors.New("pointcloud: no parse strategy succeeded")
)

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	tripletRe       = regexp.MustCompile(`\[\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*\]`)
)

// Strategy turns raw document bytes into a PointSet or reports why it could not.
type Strategy interface {
	Name() string
	Parse(raw []byte) (PointSet, error)
}

// StrategyError records a failed strategy attempt.
type StrategyError struct {
	Strategy string
	Err      error
}

// Error implements the error interface.
func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *StrategyError) Unwrap() error { return e.Err }

// LoadReport describes how a PointSet was obtained.
type LoadReport struct {
	Path     string
	Strategy string
	Failures []*StrategyError
}

// Recovered reports whether a fallback strategy produced the result.
// Results from the triplet-regex strategy are unverified.
func (r LoadReport) Recovered() bool { return len(r.Failures) > 0 }

// StrictJSON parses a well-formed JSON object and reads the point array
// stored under Field.
type StrictJSON struct {
	Field string
}

// Name implements Strategy.
func (s StrictJSON) Name() string { return StrategyStrict }

// Parse implements Strategy.
func (s StrictJSON) Parse(raw []byte) (PointSet, error) {
	return parseField(raw, s.Field)
}

// TrailingCommaRepair removes commas that directly precede a closing bracket
// or brace, then parses like StrictJSON.
type TrailingCommaRepair struct {
	Field string
}

// Name implements Strategy.
func (s TrailingCommaRepair) Name() string { return StrategyTrailingComma }

// Parse implements Strategy.
func (s TrailingCommaRepair) Parse(raw []byte) (PointSet, error) {
	return parseField(RemoveTrailingCommas(raw), s.Field)
}

// TripletExtract ignores all document structure and collects every
// "[int, int, int]" substring in order of appearance. It never fails;
// the result may be empty and is not validated against any schema.
type TripletExtract struct{}

// Name implements Strategy.
func (TripletExtract) Name() string { return StrategyTripletRegex }

// Parse implements Strategy.
func (TripletExtract) Parse(raw []byte) (PointSet, error) {
	return ExtractTriplets(raw), nil
}

// RemoveTrailingCommas deletes every comma (and following whitespace) that
// sits immediately before a ']' or '}'.
func RemoveTrailingCommas(raw []byte) []byte {
	return trailingCommaRe.ReplaceAll(raw, []byte("$1"))
}

// ExtractTriplets returns every bracketed integer triplet found in raw.
func ExtractTriplets(raw []byte) PointSet {
	matches := tripletRe.FindAllSubmatch(raw, -1)
	ps := make(PointSet, 0, len(matches))
	for _, m := range matches {
		p := make(Point, 3)
		ok := true
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(string(m[i+1]), 64)
			if err != nil {
				ok = false
				break
			}
			p[i] = v
		}
		if ok {
			ps = append(ps, p)
		}
	}
	return ps
}

func parseField(raw []byte, field string) (PointSet, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	data, ok := doc[field]
	if !ok {
		return nil, fmt.Errorf("field %q: %w", field, ErrMissingField)
	}

	var tuples [][]float64
	if err := json.Unmarshal(data, &tuples); err != nil {
		return nil, fmt.Errorf("field %q: %w", field, err)
	}

	return NewPointSet(tuples)
}

// DefaultStrategies returns the strict, repair and extraction strategies in
// the order they are tried.
func DefaultStrategies(field string) []Strategy {
	return []Strategy{
		StrictJSON{Field: field},
		TrailingCommaRepair{Field: field},
		TripletExtract{},
	}
}

// Loader reads point documents through an ordered strategy chain.
type Loader struct {
	FS         fsutil.FileSystem
	Strategies []Strategy
}

// NewLoader creates a Loader using the default strategy chain.
func NewLoader(fsys fsutil.FileSystem, field string) *Loader {
	return &Loader{
		FS:         fsys,
		Strategies: DefaultStrategies(field),
	}
}

// Load reads path and parses it. Read errors are fatal and returned as-is
// (wrapped); parse problems are recovered by the strategy chain.
func (l *Loader) Load(path string) (PointSet, LoadReport, error) {
	raw, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, LoadReport{Path: path}, fmt.Errorf("read point file: %w", err)
	}

	ps, report, err := l.Parse(raw)
	report.Path = path
	if err != nil {
		return nil, report, fmt.Errorf("parse %s: %w", path, err)
	}
	return ps, report, nil
}

// Parse tries each strategy in order and returns the first success.
func (l *Loader) Parse(raw []byte) (PointSet, LoadReport, error) {
	var report LoadReport

	for _, s := range l.Strategies {
		ps, err := s.Parse(raw)
		if err == nil {
			report.Strategy = s.Name()
			if report.Recovered() {
				monitoring.Logf("Loaded %d points using %s strategy after %d failed attempt(s)", len(ps), s.Name(), len(report.Failures))
			}
			return ps, report, nil
		}

		report.Failures = append(report.Failures, &StrategyError{Strategy: s.Name(), Err: err})
		monitoring.Logf("Point document rejected by %s strategy: %v", s.Name(), err)
	}

	return nil, report, ErrNoStrategy
}
