// Package summary builds the monthly reception and dispatch summaries and
// the row-level facts the billing stage reconstructs pallets from.
package summary

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// UnknownClient names rows whose client id has no dimension row.
const UnknownClient = "Unknown"

// Monthly is one (month, warehouse, client) line of a summary.
type Monthly struct {
	Month      time.Time
	Warehouse  warehouse.Warehouse
	Client     string
	IDContacto string
	// Date is the first event date of the group, used for window filters.
	Date    time.Time
	Pallets int
	Units   float64
	CBM     float64
	// PostPeriodRelease is the split adjustment already folded into CBM.
	PostPeriodRelease float64
}

// WarehouseTotal aggregates a summary per warehouse.
type WarehouseTotal struct {
	Warehouse warehouse.Warehouse
	CBM       float64
	Pallets   int
	Units     float64
}

// monthKey groups facts before client names are attached.
type monthKey struct {
	month     time.Time
	contact   string
	warehouse warehouse.Warehouse
}

type clientKey struct {
	month     time.Time
	warehouse warehouse.Warehouse
	client    string
}

// clientDirectory pads client ids to a common width and resolves names.
type clientDirectory struct {
	width int
	names map[string]string
}

func newClientDirectory(clients []records.Client, width int) clientDirectory {
	d := clientDirectory{width: width, names: make(map[string]string, len(clients))}
	for _, c := range clients {
		id := d.pad(c.IDContacto)
		if _, ok := d.names[id]; !ok {
			d.names[id] = strings.TrimSpace(c.Name)
		}
	}
	return d
}

func (d clientDirectory) pad(id string) string {
	return records.ZFill(strings.TrimSpace(id), d.width)
}

func (d clientDirectory) name(id string) string {
	if n, ok := d.names[id]; ok {
		return n
	}
	return UnknownClient
}

func clientIDs(clients []records.Client) []string {
	out := make([]string, len(clients))
	for i, c := range clients {
		out[i] = strings.TrimSpace(c.IDContacto)
	}
	return out
}

// rollUp folds (month, client, warehouse) partials into (month, warehouse,
// client name) lines ordered by month, warehouse and client.
func rollUp(partials []Monthly, dir clientDirectory) []Monthly {
	groups := records.GroupBy(partials, func(m Monthly) clientKey {
		return clientKey{month: m.Month, warehouse: m.Warehouse, client: dir.name(m.IDContacto)}
	})
	out := make([]Monthly, 0, len(groups))
	for _, g := range groups {
		first := g.Rows[0]
		line := Monthly{
			Month:      g.Key.month,
			Warehouse:  g.Key.warehouse,
			Client:     g.Key.client,
			IDContacto: first.IDContacto,
			Date:       first.Date,
		}
		for _, r := range g.Rows {
			line.Pallets += r.Pallets
			line.Units += r.Units
			line.CBM += r.CBM
			line.PostPeriodRelease += r.PostPeriodRelease
		}
		out = append(out, line)
	}
	slices.SortStableFunc(out, func(a, b Monthly) int {
		if c := a.Month.Compare(b.Month); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Warehouse, b.Warehouse); c != 0 {
			return c
		}
		return cmp.Compare(a.Client, b.Client)
	})
	return out
}

// ByWarehouse totals reception and dispatch summaries per warehouse over the
// lines whose first date falls in [start, end]. Both results are ordered by
// CBM, largest first.
func ByWarehouse(receptions, dispatches []Monthly, start, end time.Time) (in, out []WarehouseTotal) {
	return totals(receptions, start, end), totals(dispatches, start, end)
}

func totals(lines []Monthly, start, end time.Time) []WarehouseTotal {
	var kept []Monthly
	for _, l := range lines {
		if !l.Date.IsZero() && records.InRange(l.Date, start, end) {
			kept = append(kept, l)
		}
	}
	groups := records.GroupBy(kept, func(m Monthly) warehouse.Warehouse { return m.Warehouse })
	out := make([]WarehouseTotal, 0, len(groups))
	for _, g := range groups {
		t := WarehouseTotal{Warehouse: g.Key}
		for _, r := range g.Rows {
			t.CBM += r.CBM
			t.Pallets += r.Pallets
			t.Units += r.Units
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b WarehouseTotal) int {
		if c := cmp.Compare(b.CBM, a.CBM); c != 0 {
			return c
		}
		return cmp.Compare(a.Warehouse, b.Warehouse)
	})
	return out
}
