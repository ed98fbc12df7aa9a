package summary

import (
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// ReceptionFact is one receipt line joined to its stock line and to the
// first product line of the intake.
type ReceptionFact struct {
	IDIngreso  string
	ItemNo     string
	Fecha      time.Time
	Descrip    string
	IDContacto string
	Retnum     string
	IDModelo   string
	IDColDis   string
	Modifica   time.Time

	ReceiptLocation string
	StockLocation   string
	LineLocation    string
	ReceiptBodega   warehouse.Label
	LineBodega      warehouse.Label

	PesoKgs float64
	Inicial float64
	Salidas float64
	// DDMA carries the order id of a split released after the receipt
	// month, or 0.
	DDMA float64

	Bodega warehouse.Warehouse
}

// DupKey identifies the fact line.
func (f ReceptionFact) DupKey() string { return f.IDIngreso + f.ItemNo }

// Split reports whether the line is a post-period release.
func (f ReceptionFact) Split() bool { return f.DDMA > 0 }

// ReceptionInput is what the reception summary reads.
type ReceptionInput struct {
	Receipts        []records.Receipt
	UnfilteredStock []records.StockRow
	ProductLines    []records.ProductLine
	Clients         []records.Client
}

// Receptions is the reception summary and its fact table.
type Receptions struct {
	Summary []Monthly
	Fact    []ReceptionFact
	// Incoherent counts fact lines whose two warehouse labels conflict.
	Incoherent int
	// SuffixOverrides counts fact lines whose resolved warehouse was replaced
	// by the client suffix.
	SuffixOverrides int
}

// postPeriodRelease returns the order id of a stock line that was touched in
// or after its intake month but holds no quantity, withdrawals or weight.
func postPeriodRelease(s records.StockRow) float64 {
	if s.Modifica.IsZero() || s.Fecha.IsZero() {
		return 0
	}
	if records.MonthStart(s.Modifica).Before(records.MonthStart(s.Fecha)) {
		return 0
	}
	if s.Inicial != 0 || s.Salidas != 0 || s.PesoKgs != 0 {
		return 0
	}
	return records.Nz(records.ParseNumber(s.IDPedido))
}

// BuildReceptions joins receipts to the unfiltered stock on intake id,
// flags post-period releases, resolves the warehouse of every line and
// summarizes per month, warehouse and client.
func BuildReceptions(in ReceptionInput) Receptions {
	receiptIDs := make([]string, len(in.Receipts))
	for i, r := range in.Receipts {
		receiptIDs[i] = strings.TrimSpace(r.IDContacto)
	}
	dir := newClientDirectory(in.Clients, records.MaxLen(receiptIDs, clientIDs(in.Clients)))

	stock := records.SortByDateDesc(in.UnfilteredStock, func(r records.StockRow) time.Time { return r.Fecha })
	stockByIntake := make(map[string][]records.StockRow)
	for _, s := range stock {
		stockByIntake[s.IDIngreso] = append(stockByIntake[s.IDIngreso], s)
	}
	lineByIntake := records.FirstBy(in.ProductLines, func(l records.ProductLine) string { return l.IDIngreso })

	receipts := records.SortByDateDesc(in.Receipts, func(r records.Receipt) time.Time { return r.Fecha })
	var fact []ReceptionFact
	for _, r := range receipts {
		base := ReceptionFact{
			IDIngreso:       r.IDIngreso,
			Fecha:           r.Fecha,
			Descrip:         r.Descrip,
			IDContacto:      dir.pad(r.IDContacto),
			Retnum:          r.Retnum,
			ReceiptLocation: r.IDUbica,
			ReceiptBodega:   upper(r.Bodega),
			PesoKgs:         math.NaN(),
			Inicial:         math.NaN(),
			Salidas:         math.NaN(),
		}
		if l, ok := lineByIntake[r.IDIngreso]; ok {
			base.LineLocation = l.IDUbica
			base.LineBodega = upper(l.Bodega)
		}
		lines := stockByIntake[r.IDIngreso]
		if len(lines) == 0 {
			fact = append(fact, base)
			continue
		}
		for _, s := range lines {
			f := base
			f.ItemNo = s.ItemNo
			f.StockLocation = s.IDUbica
			f.IDModelo = s.IDModelo
			f.IDColDis = s.IDColDis
			f.Modifica = s.Modifica
			f.PesoKgs = s.PesoKgs
			f.Inicial = s.Inicial
			f.Salidas = s.Salidas
			f.DDMA = postPeriodRelease(s)
			fact = append(fact, f)
		}
	}
	fact = records.Dedup(fact, ReceptionFact.DupKey)

	// A suffixed client forces its source warehouse over whatever the two
	// labels resolve to.
	incoherent, overridden := 0, 0
	for i := range fact {
		f := &fact[i]
		resolved := warehouse.Resolve(f.ReceiptBodega, f.LineBodega, f.ReceiptLocation, f.LineLocation)
		f.Bodega = warehouse.ApplySuffixOverride(f.IDContacto, warehouse.Known(resolved)).Value
		if f.Bodega != resolved {
			overridden++
		}
		if f.Bodega == warehouse.Incoherent {
			incoherent++
		}
	}

	var partials []Monthly
	for _, g := range records.GroupBy(fact, func(f ReceptionFact) monthKey {
		return monthKey{month: monthOf(f.Fecha), contact: f.IDContacto, warehouse: f.Bodega}
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
			m.CBM += records.Nz(f.Inicial)
			m.PostPeriodRelease += f.DDMA
		}
		m.CBM += m.PostPeriodRelease
		partials = append(partials, m)
	}

	summary := rollUp(partials, dir)
	log.Info().
		Int("fact_rows", len(fact)).
		Int("summary_rows", len(summary)).
		Int("incoherent", incoherent).
		Int("suffix_overrides", overridden).
		Msg("summary: receptions built")
	return Receptions{Summary: summary, Fact: fact, Incoherent: incoherent, SuffixOverrides: overridden}
}

func monthOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return records.MonthStart(t)
}

func upper(l warehouse.Label) warehouse.Label {
	if !l.Valid {
		return l
	}
	return warehouse.Label{Value: warehouse.Warehouse(strings.ToUpper(strings.TrimSpace(string(l.Value)))), Valid: true}
}
