// Package export writes analysis curves as CSV, JSON, XLSX, SVG and PDF.
//
// Every format is fed from a Table: one abscissa column followed by any
// number of value columns of the same length.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

type Column struct {
	Name   string    `json:"name"`
	Unit   string    `json:"unit,omitempty"`
	Values []float64 `json:"values"`
}

// Header is "name (unit)", or the bare name when the column has no unit.
func (c Column) Header() string {
	if c.Unit == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Unit)
}

func parseHeader(h string) (name, unit string) {
	h = strings.TrimSpace(h)
	if strings.HasSuffix(h, ")") {
		if i := strings.LastIndex(h, " ("); i > 0 {
			return h[:i], h[i+2 : len(h)-1]
		}
	}
	return h, ""
}

// Table is a set of equal-length columns. Columns[0] is the abscissa.
type Table struct {
	Title   string   `json:"title,omitempty"`
	Columns []Column `json:"columns"`
}

// NewTable starts a table from its abscissa column.
func NewTable(title string, x Column) *Table {
	return &Table{Title: title, Columns: []Column{x}}
}

// CurveTable builds a table from the abscissa x and the Y values of each
// curve. names and units are matched to curves by position.
func CurveTable(title string, x Column, names, units []string, curves ...dynamo.Curve) (*Table, error) {
	if len(names) != len(curves) || len(units) != len(curves) {
		return nil, dynamo.Invalid("got %d curves for %d names and %d units", len(curves), len(names), len(units))
	}
	t := NewTable(title, x)
	for i, c := range curves {
		if err := t.Add(Column{Name: names[i], Unit: units[i], Values: c.Ys()}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add appends a column. Its length must match the abscissa.
func (t *Table) Add(c Column) error {
	if n := t.Rows(); len(c.Values) != n {
		return dynamo.Invalid("column %q has %d values, table has %d rows", c.Name, len(c.Values), n)
	}
	t.Columns = append(t.Columns, c)
	return nil
}

func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

func (t *Table) Headers() []string {
	h := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		h[i] = c.Header()
	}
	return h
}

// Column looks a column up by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Curve pairs the abscissa with the named column.
func (t *Table) Curve(name string) (dynamo.Curve, error) {
	c, ok := t.Column(name)
	if !ok || len(t.Columns) == 0 {
		return nil, dynamo.Invalid("no column %q", name)
	}
	return dynamo.NewCurve(t.Columns[0].Values, c.Values)
}

// Row returns the values of row i across all columns.
func (t *Table) Row(i int) []float64 {
	row := make([]float64, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}
