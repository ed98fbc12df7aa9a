package billing

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/summary"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// UnknownDescription fills descriptive fields without a join partner.
const UnknownDescription = "Unknown"

// intakeWidth is the fixed width intake ids are padded to for joins.
const intakeWidth = 10

// OutflowRecord is the reconstructed shipment of one model in one
// transaction.
type OutflowRecord struct {
	Trannum      string
	IDModelo     string
	ArrivalDate  time.Time
	ShippingDate time.Time
	// Days is the mean lead time between arrival and shipping.
	Days        float64
	Description string
	IDContacto  string
	Client      string
	CBM         float64
	Pallets     float64
	Units       float64
	ModeCount   float64
	Warehouse   warehouse.Warehouse
}

// NormalizeIntake pads an intake id to the fixed join width. Purely numeric
// ids are rendered without their own leading zeros first, so "5" and
// "0005" normalize alike.
func NormalizeIntake(id string) string {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n >= 0 {
		id = fmt.Sprintf("%0*d", intakeWidth, n)
	}
	return records.ZFill(id, intakeWidth)
}

// OutflowInput is what the outflow reconstruction reads.
type OutflowInput struct {
	Facts []summary.DispatchFact
	// Modes is the items-per-pallet estimate from stock; Reference the
	// maintained table keyed by unsuffixed model.
	Modes     map[string]int
	Reference map[string]float64
	Receipts  []records.Receipt
	Clients   []records.Client
}

// Outflow estimates pallets per transaction and model as
// ceil(lines / items per pallet), where items per pallet is the larger of
// the stock estimate and the reference table.
func Outflow(in OutflowInput) []OutflowRecord {
	descriptions := make(map[string]string, len(in.Receipts))
	for _, r := range in.Receipts {
		k := NormalizeIntake(r.IDIngreso)
		if _, ok := descriptions[k]; !ok {
			descriptions[k] = r.Descrip
		}
	}

	factIDs := make([]string, len(in.Facts))
	for i, f := range in.Facts {
		factIDs[i] = strings.TrimSpace(f.IDContacto)
	}
	clientIDs := make([]string, len(in.Clients))
	for i, c := range in.Clients {
		clientIDs[i] = strings.TrimSpace(c.IDContacto)
	}
	width := records.MaxLen(factIDs, clientIDs)
	names := make(map[string]string, len(in.Clients))
	for _, c := range in.Clients {
		id := records.ZFill(strings.TrimSpace(c.IDContacto), width)
		if _, ok := names[id]; !ok {
			names[id] = strings.TrimSpace(c.Name)
		}
	}

	facts := records.Dedup(in.Facts, summary.DispatchFact.DupKey)
	type tranModel struct{ tran, model string }
	groups := records.GroupBy(facts, func(f summary.DispatchFact) tranModel {
		return tranModel{tran: f.Trannum, model: f.IDModelo}
	})

	out := make([]OutflowRecord, 0, len(groups))
	for _, g := range groups {
		first, last := g.Rows[0], g.Rows[len(g.Rows)-1]
		mode := float64(in.Modes[g.Key.model])
		if mode <= 0 {
			mode = 1
		}
		if ref, ok := in.Reference[warehouse.StripSuffix(g.Key.model)]; ok && ref > mode {
			mode = ref
		}

		contact := records.ZFill(strings.TrimSpace(first.IDContacto), width)
		rec := OutflowRecord{
			Trannum:      g.Key.tran,
			IDModelo:     g.Key.model,
			ShippingDate: first.Fecha,
			ArrivalDate:  last.ArrivalDate,
			Description:  UnknownDescription,
			IDContacto:   contact,
			Client:       UnknownDescription,
			Pallets:      math.Ceil(float64(len(g.Rows)) / mode),
			ModeCount:    mode,
			Warehouse:    first.Bodega.Value,
		}
		if d, ok := descriptions[NormalizeIntake(first.IDIngreso)]; ok {
			rec.Description = d
		}
		if n, ok := names[contact]; ok {
			rec.Client = n
		}

		var leadTotal float64
		var leadCount int
		for _, f := range g.Rows {
			rec.CBM += records.Nz(f.Cantidad)
			rec.Units += records.Nz(f.PesoKgs)
			if !f.Fecha.IsZero() && !f.ArrivalDate.IsZero() {
				leadTotal += math.Abs(f.Fecha.Sub(f.ArrivalDate).Hours()/24) + 1
				leadCount++
			}
		}
		if leadCount > 0 {
			rec.Days = math.Round(leadTotal/float64(leadCount)*100) / 100
		}
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b OutflowRecord) int {
		if c := cmp.Compare(a.Trannum, b.Trannum); c != 0 {
			return c
		}
		return cmp.Compare(a.IDModelo, b.IDModelo)
	})
	return out
}

// OutflowWindow keeps the records shipped within [start, end].
func OutflowWindow(in []OutflowRecord, start, end time.Time) []OutflowRecord {
	var out []OutflowRecord
	for _, r := range in {
		if records.InRange(r.ShippingDate, start, end) {
			out = append(out, r)
		}
	}
	return out
}
