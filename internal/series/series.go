// Package series loads daily CSV exports (one row per UTC date), derives
// change and running-total columns, and reshapes them for line charts.
package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateColumn is the header of the date column in every export.
const DateColumn = "Date(UTC)"

// Date layouts accepted by ReadCSV, tried in order.
const (
	LegacyDateLayout  = "1/2/2006"
	DefaultDateLayout = "2006-01-02"
	DateTimeLayout    = "2006-01-02 15:04:05"
)

var dateLayouts = []string{LegacyDateLayout, DefaultDateLayout, DateTimeLayout}

var (
	// ErrNoDateColumn is returned when the header has no Date(UTC) column.
	ErrNoDateColumn = errors.New("series: no " + DateColumn + " column")

	// ErrUnknownColumn is returned when a named column does not exist.
	ErrUnknownColumn = errors.New("series: unknown column")

	// ErrLengthMismatch is returned when a column has the wrong number of rows.
	ErrLengthMismatch = errors.New("series: column length does not match row count")
)

// Column is one non-date column. Text is nil for numeric columns; a column
// with any non-empty cell that does not parse as a number is kept as text.
type Column struct {
	Name   string
	Values []float64
	Text   []string
}

// Numeric reports whether the column holds numbers.
func (c *Column) Numeric() bool { return c.Text == nil }

// Series is a date-indexed table. Columns keep file order; derived columns
// are appended.
type Series struct {
	Dates   []time.Time
	Columns []*Column
}

// Len returns the number of rows.
func (s *Series) Len() int { return len(s.Dates) }

// Column looks up a column by name.
func (s *Series) Column(name string) (*Column, error) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Values returns the numbers of a numeric column.
func (s *Series) Values(name string) ([]float64, error) {
	c, err := s.Column(name)
	if err != nil {
		return nil, err
	}
	if !c.Numeric() {
		return nil, fmt.Errorf("column %q is not numeric", name)
	}
	return c.Values, nil
}

// SetColumn replaces the values of an existing column or appends a new one.
func (s *Series) SetColumn(name string, values []float64) error {
	if len(values) != s.Len() {
		return fmt.Errorf("%w: %q has %d values, want %d", ErrLengthMismatch, name, len(values), s.Len())
	}
	if c, err := s.Column(name); err == nil {
		c.Values = values
		c.Text = nil
		return nil
	}
	s.Columns = append(s.Columns, &Column{Name: name, Values: values})
	return nil
}

// ParseDate parses a date cell using the accepted layouts. Results are UTC.
func ParseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, cell, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", cell)
}

// ReadCSV reads a CSV export with a header row. The Date(UTC) column is
// required; empty numeric cells become NaN.
func ReadCSV(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == DateColumn {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, ErrNoDateColumn
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	s := &Series{Dates: make([]time.Time, len(records))}
	for row, rec := range records {
		t, err := ParseDate(rec[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+2, err)
		}
		s.Dates[row] = t
	}

	for col, name := range header {
		if col == dateIdx {
			continue
		}
		s.Columns = append(s.Columns, parseColumn(strings.TrimSpace(name), col, records))
	}
	return s, nil
}

func parseColumn(name string, col int, records [][]string) *Column {
	c := &Column{Name: name, Values: make([]float64, len(records))}
	for row, rec := range records {
		cell := strings.TrimSpace(rec[col])
		if cell == "" {
			c.Values[row] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			text := make([]string, len(records))
			for i, r := range records {
				text[i] = r[col]
			}
			return &Column{Name: name, Text: text}
		}
		c.Values[row] = v
	}
	return c
}

// WriteCSV writes the table with Date(UTC) first, formatted with dateLayout.
// NaN is written as an empty cell.
func (s *Series) WriteCSV(w io.Writer, dateLayout string) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(s.Columns)+1)
	header = append(header, DateColumn)
	for _, c := range s.Columns {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, d := range s.Dates {
		row[0] = d.Format(dateLayout)
		for j, c := range s.Columns {
			if !c.Numeric() {
				row[j+1] = c.Text[i]
				continue
			}
			row[j+1] = formatValue(c.Values[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Diff returns v[i] - v[i-1] with NaN for the first row.
func Diff(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i] - values[i-1]
	}
	return out
}

// CumSum returns the running total, counting NaN as zero.
func CumSum(values []float64) []float64 {
	out := make([]float64, len(values))
	total := 0.0
	for i, v := range values {
		if !math.IsNaN(v) {
			total += v
		}
		out[i] = total
	}
	return out
}

// Normalize returns a copy in which the first row's value has been
// subtracted from every numeric column. Text columns are copied unchanged.
func (s *Series) Normalize() *Series {
	out := &Series{Dates: append([]time.Time(nil), s.Dates...)}
	for _, c := range s.Columns {
		if !c.Numeric() {
			out.Columns = append(out.Columns, &Column{Name: c.Name, Text: append([]string(nil), c.Text...)})
			continue
		}
		values := make([]float64, len(c.Values))
		if len(values) > 0 {
			base := c.Values[0]
			for i, v := range c.Values {
				values[i] = v - base
			}
		}
		out.Columns = append(out.Columns, &Column{Name: c.Name, Values: values})
	}
	return out
}

// Observation is one row of a melted table.
type Observation struct {
	Date   time.Time
	Metric string
	Value  float64
}

// Melt reshapes the named numeric columns into long form: all rows of the
// first metric, then all rows of the next, and so on.
func (s *Series) Melt(metrics ...string) ([]Observation, error) {
	out := make([]Observation, 0, len(metrics)*s.Len())
	for _, m := range metrics {
		values, err := s.Values(m)
		if err != nil {
			return nil, err
		}
		for i, d := range s.Dates {
			out = append(out, Observation{Date: d, Metric: m, Value: values[i]})
		}
	}
	return out, nil
}
