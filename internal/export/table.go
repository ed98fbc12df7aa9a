// Package export renders the report tables of a run as CSV files and one
// xlsx workbook.
package export

import (
	"math"
	"strconv"
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// Table is one flat report.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

func newTable(name string, header ...string) *Table {
	return &Table{Name: name, Header: header}
}

func (t *Table) add(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// Strings renders row i for CSV output.
func (t *Table) Strings(i int) []string {
	out := make([]string, len(t.Rows[i]))
	for j, v := range t.Rows[i] {
		out[j] = format(v)
	}
	return out
}

// Stringify returns copies of tables whose cells are all rendered strings,
// suitable for JSON round trips.
func Stringify(tables []*Table) []*Table {
	out := make([]*Table, len(tables))
	for i, t := range tables {
		c := &Table{Name: t.Name, Header: t.Header, Rows: make([][]any, len(t.Rows))}
		for r := range t.Rows {
			strs := t.Strings(r)
			row := make([]any, len(strs))
			for j, s := range strs {
				row[j] = s
			}
			c.Rows[r] = row
		}
		out[i] = c
	}
	return out
}

const dateLayout = "2006-01-02"

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(dateLayout)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case warehouse.Warehouse:
		return string(x)
	case warehouse.Label:
		return x.String()
	default:
		return ""
	}
}

// cell converts a value for the workbook. Dates become strings so sheets
// read the same as the CSV files.
func cell(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case int, string, bool:
		return x
	default:
		if s := format(v); s != "" {
			return s
		}
		return nil
	}
}
