// Package inventory reports on the current stock snapshot: volumetric
// complement for BODE, capacity per warehouse and client, product
// proportions and the age of stored products.
package inventory

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/reference"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// DefaultCubicaje is used for stock lines whose model has no volumetric
// classification yet.
const DefaultCubicaje = 1.5

const activeStatus = "01"

// ComplementBODE replaces the volumetric value of BODE stock with the
// classified cubicaje of its model and fills every remaining blank volume
// with DefaultCubicaje. The input is not modified.
func ComplementBODE(stock []records.StockRow, ref *reference.Tables) []records.StockRow {
	out := slices.Clone(stock)
	for i := range out {
		r := &out[i]
		if r.Bodega.Is(warehouse.BODE) {
			if v, ok := ref.Cubicaje(r.IDModelo); ok {
				r.Inicial = v
			} else {
				r.Inicial = math.NaN()
			}
		}
		if math.IsNaN(r.Inicial) {
			r.Inicial = DefaultCubicaje
		}
	}
	return out
}

// classified returns active stock, most recent first, with the volume of
// every classified model replaced by its cubicaje.
func classified(stock []records.StockRow, ref *reference.Tables) []records.StockRow {
	var out []records.StockRow
	for _, r := range stock {
		if r.IDStatus != activeStatus {
			continue
		}
		r.IDModelo = strings.TrimSpace(r.IDModelo)
		if v, ok := ref.Cubicaje(r.IDModelo); ok {
			r.Inicial = v
		}
		out = append(out, r)
	}
	return records.SortByDateDesc(out, func(r records.StockRow) time.Time { return r.Fecha })
}

func dedup(stock []records.StockRow) []records.StockRow {
	return records.Dedup(stock, records.StockRow.DupKey)
}

// ClientCapacity is the stored volume of one client in one warehouse.
type ClientCapacity struct {
	Warehouse  warehouse.Warehouse
	IDContacto string
	CBM        float64
	Pallets    int
	Units      float64
}

// Capacity is the classified stock fact and its per warehouse and client
// totals.
type Capacity struct {
	Fact    []records.StockRow
	Summary []ClientCapacity
}

// MeasureCapacity builds the capacity fact used by billing and the volume
// stored per warehouse and client.
func MeasureCapacity(stock []records.StockRow, clients []records.Client, ref *reference.Tables) Capacity {
	fact := classified(stock, ref)

	stockIDs := make([]string, len(fact))
	for i, r := range fact {
		stockIDs[i] = strings.TrimSpace(r.IDContacto)
	}
	clientIDs := make([]string, len(clients))
	for i, c := range clients {
		clientIDs[i] = strings.TrimSpace(c.IDContacto)
	}
	width := records.MaxLen(stockIDs, clientIDs)
	for i := range fact {
		fact[i].IDContacto = records.ZFill(strings.TrimSpace(fact[i].IDContacto), width)
	}

	type key struct {
		w       warehouse.Warehouse
		contact string
	}
	groups := records.GroupBy(dedup(fact), func(r records.StockRow) key {
		return key{w: r.Bodega.Value, contact: r.IDContacto}
	})
	summary := make([]ClientCapacity, 0, len(groups))
	for _, g := range groups {
		c := ClientCapacity{Warehouse: g.Key.w, IDContacto: g.Key.contact}
		for _, r := range g.Rows {
			c.CBM += records.Nz(r.Inicial)
			c.Units += records.Nz(r.PesoKgs)
			if r.IDModelo != "" {
				c.Pallets++
			}
		}
		summary = append(summary, c)
	}
	slices.SortStableFunc(summary, func(a, b ClientCapacity) int {
		if c := cmp.Compare(a.Warehouse, b.Warehouse); c != 0 {
			return c
		}
		return cmp.Compare(a.IDContacto, b.IDContacto)
	})
	return Capacity{Fact: fact, Summary: summary}
}

// ProductShare is one product's share of the stored volume.
type ProductShare struct {
	ProductID  string
	ModelID    string
	CBM        float64
	Units      float64
	Pallets    int
	CBMPct     float64
	PalletsPct float64
	UnitsPct   float64
}

// ProportionsByProduct splits active stock by product model, largest CBM
// share first.
func ProportionsByProduct(stock []records.StockRow, ref *reference.Tables) []ProductShare {
	groups := records.GroupBy(dedup(classified(stock, ref)), func(r records.StockRow) string { return r.IDModelo })
	out := make([]ProductShare, 0, len(groups))
	for _, g := range groups {
		s := ProductShare{ProductID: g.Key, ModelID: g.Rows[0].IDColDis}
		for _, r := range g.Rows {
			s.CBM += records.Nz(r.Inicial)
			s.Units += records.Nz(r.PesoKgs)
			s.Pallets++
		}
		out = append(out, s)
	}

	var cbm, units float64
	var pallets int
	for _, s := range out {
		cbm += s.CBM
		units += s.Units
		pallets += s.Pallets
	}
	for i := range out {
		out[i].CBMPct = percent(out[i].CBM, cbm)
		out[i].UnitsPct = percent(out[i].Units, units)
		out[i].PalletsPct = percent(float64(out[i].Pallets), float64(pallets))
	}
	slices.SortStableFunc(out, func(a, b ProductShare) int { return cmp.Compare(b.CBMPct, a.CBMPct) })
	return out
}

// AgedProduct is the stock of one model received on one day.
type AgedProduct struct {
	Date            time.Time
	DaysInInventory int
	ProductShare
}

// OldestProducts groups active stock by intake date and model, oldest
// first, with the age of each group at now.
func OldestProducts(stock []records.StockRow, ref *reference.Tables, now time.Time) []AgedProduct {
	type key struct {
		date  time.Time
		model string
	}
	rows := dedup(classified(stock, ref))
	groups := records.GroupBy(rows, func(r records.StockRow) key { return key{date: r.Fecha, model: r.IDModelo} })

	out := make([]AgedProduct, 0, len(groups))
	var cbm, units float64
	var pallets int
	today := records.Day(now)
	for _, g := range groups {
		a := AgedProduct{Date: g.Key.date, ProductShare: ProductShare{ProductID: g.Key.model, ModelID: g.Rows[0].IDColDis}}
		if !a.Date.IsZero() {
			a.DaysInInventory = int(today.Sub(a.Date).Hours() / 24)
		}
		for _, r := range g.Rows {
			a.CBM += records.Nz(r.Inicial)
			a.Units += records.Nz(r.PesoKgs)
			a.Pallets++
		}
		cbm += a.CBM
		units += a.Units
		pallets += a.Pallets
		out = append(out, a)
	}
	for i := range out {
		out[i].CBMPct = percent(out[i].CBM, cbm)
		out[i].UnitsPct = percent(out[i].Units, units)
		out[i].PalletsPct = percent(float64(out[i].Pallets), float64(pallets))
	}
	slices.SortStableFunc(out, func(a, b AgedProduct) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return out
}

func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}
