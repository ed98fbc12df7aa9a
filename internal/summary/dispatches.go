package summary

import (
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// DispatchFact is one dispatch movement joined to the dispatched stock line
// of its intake.
type DispatchFact struct {
	Trannum    string
	Numero     string
	IDIngreso  string
	ItemNo     string
	IDModelo   string
	IDContacto string
	// Fecha is the shipping date, ArrivalDate the intake date of the stock line.
	Fecha       time.Time
	ArrivalDate time.Time
	Cantidad    float64
	PesoKgs     float64
	// StockLocation is the pallet location of the matched stock line.
	StockLocation string
	Matched       bool
	Bodega        warehouse.Label
}

// DupKey identifies the fact line.
func (f DispatchFact) DupKey() string { return f.IDIngreso + f.ItemNo }

// DispatchInput is what the dispatch summary reads.
type DispatchInput struct {
	Movements       []records.Movement
	DispatchedStock []records.StockRow
	Clients         []records.Client
}

// Dispatches is the dispatch summary and its fact table.
type Dispatches struct {
	Summary    []Monthly
	Fact       []DispatchFact
	Backfilled int
}

// BuildDispatches joins dispatch movements to the dispatched stock on
// intake id, backfills unknown warehouses from clients served by a single
// warehouse and summarizes per month, warehouse and client.
func BuildDispatches(in DispatchInput) Dispatches {
	moveContacts := make([]string, len(in.Movements))
	moveIntakes := make([]string, len(in.Movements))
	for i, m := range in.Movements {
		moveContacts[i] = strings.TrimSpace(m.IDContacto)
		moveIntakes[i] = strings.TrimSpace(m.IDIngreso)
	}
	stockIntakes := make([]string, len(in.DispatchedStock))
	for i, s := range in.DispatchedStock {
		stockIntakes[i] = strings.TrimSpace(s.IDIngreso)
	}
	dir := newClientDirectory(in.Clients, records.MaxLen(moveContacts, clientIDs(in.Clients)))
	intakeWidth := records.MaxLen(moveIntakes, stockIntakes)
	padIntake := func(id string) string { return records.ZFill(strings.TrimSpace(id), intakeWidth) }

	stock := records.SortByDateDesc(in.DispatchedStock, func(r records.StockRow) time.Time { return r.Fecha })
	stockByIntake := make(map[string][]records.StockRow)
	for _, s := range stock {
		k := padIntake(s.IDIngreso)
		stockByIntake[k] = append(stockByIntake[k], s)
	}

	moves := records.SortByDateDesc(in.Movements, func(m records.Movement) time.Time { return m.Fecha })
	var fact []DispatchFact
	for _, m := range moves {
		base := DispatchFact{
			Trannum:    m.Trannum,
			Numero:     m.Numero,
			IDIngreso:  padIntake(m.IDIngreso),
			ItemNo:     m.ItemNo,
			IDModelo:   m.IDModelo,
			IDContacto: dir.pad(m.IDContacto),
			Fecha:      m.Fecha,
			Cantidad:   m.Cantidad,
			PesoKgs:    math.NaN(),
			Bodega:     m.Bodega.OrUnknown(),
		}
		lines := stockByIntake[base.IDIngreso]
		if len(lines) == 0 {
			fact = append(fact, base)
			continue
		}
		for _, s := range lines {
			f := base
			f.ArrivalDate = s.Fecha
			f.PesoKgs = s.PesoKgs
			f.StockLocation = s.IDUbica1
			f.Matched = true
			fact = append(fact, f)
		}
	}
	fact = records.Dedup(fact, DispatchFact.DupKey)

	fact, backfilled := warehouse.BackfillUnknown(fact,
		func(f DispatchFact) string { return f.IDContacto },
		func(f DispatchFact) warehouse.Label { return f.Bodega },
		func(f *DispatchFact, l warehouse.Label) { f.Bodega = l },
	)

	var partials []Monthly
	for _, g := range records.GroupBy(fact, func(f DispatchFact) monthKey {
		return monthKey{month: monthOf(f.Fecha), contact: f.IDContacto, warehouse: f.Bodega.Value}
	}) {
		if g.Key.month.IsZero() {
			continue
		}
		m := Monthly{
			Month:      g.Key.month,
			Warehouse:  g.Key.warehouse,
			IDContacto: g.Key.contact,
			Date:       g.Rows[0].Fecha,
			Pallets:    len(g.Rows),
		}
		for _, f := range g.Rows {
			m.Units += records.Nz(f.PesoKgs)
			m.CBM += records.Nz(f.Cantidad)
		}
		partials = append(partials, m)
	}

	summary := rollUp(partials, dir)
	log.Info().
		Int("fact_rows", len(fact)).
		Int("summary_rows", len(summary)).
		Int("backfilled", backfilled).
		Msg("summary: dispatches built")
	return Dispatches{Summary: summary, Fact: fact, Backfilled: backfilled}
}
