package billing

import (
	"cmp"
	"slices"
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// CurrentRecord is the stock of one intake still in the warehouse.
type CurrentRecord struct {
	IDIngreso  string
	ItemNo     string
	DupKey     string
	Date       time.Time
	Days       int
	IDContacto string
	LocationID string
	CBM        float64
	Units      float64
	Pallets    int
	Warehouse  warehouse.Warehouse
}

// palletUnit is one physical pallet: every line sharing a real location, or
// a single line without one.
type palletUnit struct {
	intake, itemNo, dupKey string
	date                   time.Time
	contact, location      string
	cbm, units             float64
	warehouse              warehouse.Warehouse
}

// CurrentInventory counts one pallet per distinct real location plus one
// per line without a real location, and reports the stock per intake with
// its age in days at now.
func CurrentInventory(stock []records.StockRow, now time.Time) []CurrentRecord {
	var located, loose []records.StockRow
	for _, r := range stock {
		if RealLocation(r) != "" {
			located = append(located, r)
		} else {
			loose = append(loose, r)
		}
	}

	units := make([]palletUnit, 0, len(stock))
	for _, g := range records.GroupBy(located, RealLocation) {
		u := unitOf(g.Rows[0])
		u.itemNo = g.Rows[len(g.Rows)-1].ItemNo
		u.cbm, u.units = 0, 0
		for _, r := range g.Rows {
			u.cbm += records.Nz(r.Inicial)
			u.units += records.Nz(r.PesoKgs)
		}
		units = append(units, u)
	}
	for _, r := range loose {
		units = append(units, unitOf(r))
	}

	today := records.Day(now)
	groups := records.GroupBy(units, func(u palletUnit) string { return u.intake })
	out := make([]CurrentRecord, 0, len(groups))
	for _, g := range groups {
		first := g.Rows[0]
		rec := CurrentRecord{
			IDIngreso:  g.Key,
			ItemNo:     first.itemNo,
			DupKey:     first.dupKey,
			Date:       first.date,
			IDContacto: first.contact,
			LocationID: first.location,
			Pallets:    len(g.Rows),
			Warehouse:  first.warehouse,
		}
		if !rec.Date.IsZero() {
			rec.Days = int(today.Sub(rec.Date).Hours()/24) + 1
		}
		for _, u := range g.Rows {
			rec.CBM += u.cbm
			rec.Units += u.units
		}
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b CurrentRecord) int { return cmp.Compare(a.IDIngreso, b.IDIngreso) })
	return out
}

func unitOf(r records.StockRow) palletUnit {
	return palletUnit{
		intake:    r.IDIngreso,
		itemNo:    r.ItemNo,
		dupKey:    r.DupKey(),
		date:      r.Fecha,
		contact:   r.IDContacto,
		location:  r.IDUbica,
		cbm:       records.Nz(r.Inicial),
		units:     records.Nz(r.PesoKgs),
		warehouse: r.Bodega.Value,
	}
}
