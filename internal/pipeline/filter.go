package pipeline

import (
	"slices"
	"strings"

	"github.com/andresuchdata/warehouse-recon/internal/billing"
	"github.com/andresuchdata/warehouse-recon/internal/inventory"
	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/summary"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

func filterSlice[T any](rows []T, keep func(T) bool) []T {
	var out []T
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// matchClient compares client ids ignoring zero padding. An empty filter
// matches everything.
func matchClient(filter []string, id string) bool {
	if len(filter) == 0 {
		return true
	}
	id = strings.TrimLeft(strings.TrimSpace(id), "0")
	for _, f := range filter {
		if strings.TrimLeft(strings.TrimSpace(f), "0") == id {
			return true
		}
	}
	return false
}

func matchWarehouse(filter []warehouse.Warehouse, w warehouse.Warehouse) bool {
	return len(filter) == 0 || slices.Contains(filter, w)
}

func matchLabel(filter []warehouse.Warehouse, l warehouse.Label) bool {
	return len(filter) == 0 || (l.Valid && slices.Contains(filter, l.Value))
}

// applyFilters restricts the client and warehouse keyed report tables. The
// time series was already restricted to the selected clients before its
// monthly roll-up.
func applyFilters(res *Result, p Params) {
	c, w := p.Clients, p.Warehouses
	if len(c) == 0 && len(w) == 0 {
		return
	}

	monthly := func(m summary.Monthly) bool { return matchClient(c, m.IDContacto) && matchWarehouse(w, m.Warehouse) }
	res.ReceptionSummary = filterSlice(res.ReceptionSummary, monthly)
	res.DispatchSummary = filterSlice(res.DispatchSummary, monthly)
	res.ReceptionFact = filterSlice(res.ReceptionFact, func(f summary.ReceptionFact) bool {
		return matchClient(c, f.IDContacto) && matchWarehouse(w, f.Bodega)
	})
	res.DispatchFact = filterSlice(res.DispatchFact, func(f summary.DispatchFact) bool {
		return matchClient(c, f.IDContacto) && matchLabel(w, f.Bodega)
	})
	byWarehouse := func(t summary.WarehouseTotal) bool { return matchWarehouse(w, t.Warehouse) }
	res.InByWarehouse = filterSlice(res.InByWarehouse, byWarehouse)
	res.OutByWarehouse = filterSlice(res.OutByWarehouse, byWarehouse)
	res.ReceiptPreviews = filterSlice(res.ReceiptPreviews, func(r records.ReceiptPreview) bool { return matchClient(c, r.IDContacto) })

	res.Capacity.Fact = filterSlice(res.Capacity.Fact, func(r records.StockRow) bool {
		return matchClient(c, r.IDContacto) && matchLabel(w, r.Bodega)
	})
	res.Capacity.Summary = filterSlice(res.Capacity.Summary, func(s inventory.ClientCapacity) bool {
		return matchClient(c, s.IDContacto) && matchWarehouse(w, s.Warehouse)
	})

	inflow := func(r billing.InflowRecord) bool { return matchClient(c, r.IDContacto) && matchWarehouse(w, r.Warehouse) }
	outflow := func(r billing.OutflowRecord) bool { return matchClient(c, r.IDContacto) && matchWarehouse(w, r.Warehouse) }
	res.Billing.InflowHistory = filterSlice(res.Billing.InflowHistory, inflow)
	res.Billing.Inflow = filterSlice(res.Billing.Inflow, inflow)
	res.Billing.OutflowHistory = filterSlice(res.Billing.OutflowHistory, outflow)
	res.Billing.Outflow = filterSlice(res.Billing.Outflow, outflow)
	res.Billing.Current = filterSlice(res.Billing.Current, func(r billing.CurrentRecord) bool {
		return matchClient(c, r.IDContacto) && matchWarehouse(w, r.Warehouse)
	})
}
