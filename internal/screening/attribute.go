package screening

import (
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

const unknownLocation = string(warehouse.Unknown)

// Stats counts attribution outcomes worth monitoring.
type Stats struct {
	UnknownReceipts  int
	UnknownMovements int
	DroppedLedger    int
	SuffixOverrides  int
}

// Attribute assigns a warehouse to stock, receipts, product lines,
// movements and ledger entries. The input is not modified.
func Attribute(in *Tables) (*Tables, Stats) {
	var stats Stats
	out := *in

	// 1. Stock is classified by its own location.
	out.Stock = slices.Clone(in.Stock)
	for i := range out.Stock {
		out.Stock[i].Bodega = warehouse.Known(warehouse.Classify(out.Stock[i].IDUbica))
	}

	// 2. Receipts collapse to one row per intake and inherit the location
	// of the most recent stock row of that intake.
	stockByIntake := records.FirstBy(out.Stock, func(r records.StockRow) string { return r.IDIngreso })
	out.Receipts = collapseReceipts(in.Receipts)
	for i := range out.Receipts {
		r := &out.Receipts[i]
		if s, ok := stockByIntake[r.IDIngreso]; ok {
			r.IDUbica = s.IDUbica
			r.Bodega = s.Bodega
		}
		if strings.TrimSpace(r.IDUbica) == "" {
			r.IDUbica = unknownLocation
		}
		r.Bodega = r.Bodega.OrUnknown()
		if r.Bodega.Is(warehouse.Unknown) {
			stats.UnknownReceipts++
		}
	}

	// 3. Product lines are classified by their picking location.
	out.ProductLines = slices.Clone(in.ProductLines)
	for i := range out.ProductLines {
		out.ProductLines[i].Bodega = warehouse.Known(warehouse.Classify(out.ProductLines[i].IDUbica))
	}

	// 4. Movements inherit from the first product line of the intake.
	lineByIntake := records.FirstBy(out.ProductLines, func(l records.ProductLine) string { return l.IDIngreso })
	out.Movements = slices.Clone(in.Movements)
	for i := range out.Movements {
		m := &out.Movements[i]
		m.IDUbica, m.Bodega = "", warehouse.Label{}
		if l, ok := lineByIntake[m.IDIngreso]; ok {
			m.IDUbica = l.IDUbica
			m.Bodega = l.Bodega
		}
		if m.IDUbica == "" {
			m.IDUbica = unknownLocation
		}
		m.Bodega = m.Bodega.OrUnknown()
		if m.Bodega.Is(warehouse.Unknown) {
			stats.UnknownMovements++
		}
	}

	// 5. Ledger entries inherit from the first movement of the transaction.
	// Entries without a movement have no warehouse and are dropped.
	moveByTran := records.FirstBy(out.Movements, func(m records.Movement) string { return m.Trannum })
	out.Ledger = make([]records.LedgerEntry, 0, len(in.Ledger))
	for _, e := range in.Ledger {
		m, ok := moveByTran[e.Trannum]
		if !ok || !m.Bodega.Valid {
			stats.DroppedLedger++
			continue
		}
		e.IDUbica = m.IDUbica
		e.Bodega = m.Bodega
		out.Ledger = append(out.Ledger, e)
	}

	// 6. Source suffix on the client id is authoritative.
	override := func(contact string, l *warehouse.Label) {
		next := warehouse.ApplySuffixOverride(contact, *l)
		if next != *l {
			stats.SuffixOverrides++
			*l = next
		}
	}
	for i := range out.Stock {
		override(out.Stock[i].IDContacto, &out.Stock[i].Bodega)
	}
	for i := range out.Receipts {
		override(out.Receipts[i].IDContacto, &out.Receipts[i].Bodega)
	}
	for i := range out.Movements {
		override(out.Movements[i].IDContacto, &out.Movements[i].Bodega)
	}
	for i := range out.ProductLines {
		override(out.ProductLines[i].IDContacto, &out.ProductLines[i].Bodega)
	}

	log.Debug().
		Int("unknown_receipts", stats.UnknownReceipts).
		Int("unknown_movements", stats.UnknownMovements).
		Int("dropped_ledger", stats.DroppedLedger).
		Int("suffix_overrides", stats.SuffixOverrides).
		Msg("screening: attribution done")

	return &out, stats
}

// collapseReceipts keeps one receipt per intake, taking the first non-blank
// value of every field in the current (most recent first) order. The result
// is ordered by intake id.
func collapseReceipts(in []records.Receipt) []records.Receipt {
	groups := records.GroupBy(in, func(r records.Receipt) string { return r.IDIngreso })
	out := make([]records.Receipt, 0, len(groups))
	for _, g := range groups {
		r := records.Receipt{IDIngreso: g.Key}
		for _, x := range g.Rows {
			if r.Fecha.IsZero() {
				r.Fecha = x.Fecha
			}
			r.Items = firstNonBlank(r.Items, x.Items)
			r.TranStatus = firstNonBlank(r.TranStatus, x.TranStatus)
			r.Descrip = firstNonBlank(r.Descrip, x.Descrip)
			r.IDContacto = firstNonBlank(r.IDContacto, x.IDContacto)
			r.Retnum = firstNonBlank(r.Retnum, x.Retnum)
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b records.Receipt) int { return strings.Compare(a.IDIngreso, b.IDIngreso) })
	return out
}

func firstNonBlank(cur, next string) string {
	if cur != "" {
		return cur
	}
	return next
}
