// Package source reads the legacy warehouse-management exports into
// untyped string tables.
package source

import "strings"

// Role names a logical export table. The value is the file stem used by the
// warehouse-management system.
type Role string

const (
	RoleReceiptPreviews Role = "cohd"
	RoleDispatchHeaders Role = "rpshd"
	RoleProductLines    Role = "rpsdt"
	RoleReceipts        Role = "incompra"
	RoleMovements       Role = "inmovid"
	RoleLedger          Role = "inmovih"
	RoleStock           Role = "insaldo"
	RoleProductModels   Role = "inmodelo"
	RoleCenters         Role = "ctcentro"
	RoleClients         Role = "incontac"
)

// Roles lists every role in load order.
var Roles = []Role{
	RoleReceiptPreviews, RoleDispatchHeaders, RoleProductLines, RoleReceipts, RoleMovements,
	RoleLedger, RoleStock, RoleProductModels, RoleCenters, RoleClients,
}

// Table is a header plus string rows. Every row has exactly len(Header) cells.
type Table struct {
	Name    string
	Header  []string
	Rows    [][]string
	Skipped int // malformed source lines dropped while reading
}

// NewTable creates an empty table with normalized column names.
func NewTable(name string, header []string) *Table {
	h := make([]string, len(header))
	for i, c := range header {
		h[i] = normalizeHeader(c)
	}
	return &Table{Name: name, Header: h}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Col returns the index of the first column matching any of names, or -1.
func (t *Table) Col(names ...string) int {
	if t == nil {
		return -1
	}
	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[normalizeColumnName(name)] = struct{}{}
	}
	for i, h := range t.Header {
		if _, ok := targets[normalizeColumnName(h)]; ok {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries a column.
func (t *Table) Has(name string) bool {
	return t.Col(name) >= 0
}

// Get returns the trimmed cell at idx, or "" when idx is out of range.
func Get(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Value reads a named column of row i.
func (t *Table) Value(i int, name string) string {
	return Get(t.Rows[i], t.Col(name))
}

// AddColumn appends a column computed from each row and returns its index.
// An existing column with the same name is overwritten instead.
func (t *Table) AddColumn(name string, fn func(row []string) string) int {
	idx := t.Col(name)
	if idx < 0 {
		t.Header = append(t.Header, normalizeHeader(name))
		idx = len(t.Header) - 1
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], "")
		}
	}
	for i, row := range t.Rows {
		t.Rows[i][idx] = fn(row)
	}
	return idx
}

// Rename renames a column if present.
func (t *Table) Rename(from, to string) {
	if idx := t.Col(from); idx >= 0 {
		t.Header[idx] = normalizeHeader(to)
	}
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Name:    t.Name,
		Header:  append([]string(nil), t.Header...),
		Rows:    make([][]string, len(t.Rows)),
		Skipped: t.Skipped,
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// Concat stacks tables by column union. Columns missing from a table are
// filled with empty cells. Column order follows first appearance.
func Concat(name string, tables ...*Table) *Table {
	out := &Table{Name: name}
	pos := make(map[string]int)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, h := range t.Header {
			if _, ok := pos[h]; !ok {
				pos[h] = len(out.Header)
				out.Header = append(out.Header, h)
			}
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		out.Skipped += t.Skipped
		for _, r := range t.Rows {
			row := make([]string, len(out.Header))
			for i, h := range t.Header {
				if i < len(r) {
					row[pos[h]] = r[i]
				}
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

func normalizeHeader(name string) string {
	return strings.TrimSpace(strings.ToLower(strings.TrimPrefix(name, "\ufeff")))
}
