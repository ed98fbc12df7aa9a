package billing

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/reference"
	"github.com/andresuchdata/warehouse-recon/internal/summary"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// InflowRecord is the reconstructed reception of one model in one intake.
type InflowRecord struct {
	IDIngreso   string
	IDModelo    string
	Date        time.Time
	Description string
	IDContacto  string
	CBM         float64
	Units       float64
	Pallets     float64
	ModeCount   int
	Splits      int
	Warehouse   warehouse.Warehouse
}

type intakeModel struct{ intake, model string }

// Inflow estimates pallets per intake and model from the reception facts:
// ceil(lines / items per pallet), replaced by the official count when one
// exists, minus one pallet per post-period split and never below zero.
func Inflow(facts []summary.ReceptionFact, modes map[string]int, overrides map[reference.OverrideKey]float64) []InflowRecord {
	groups := records.GroupBy(facts, func(f summary.ReceptionFact) intakeModel {
		return intakeModel{intake: f.IDIngreso, model: f.IDModelo}
	})

	out := make([]InflowRecord, 0, len(groups))
	for _, g := range groups {
		first := g.Rows[0]
		mode := modes[g.Key.model]
		if mode <= 0 {
			mode = 1
		}
		rec := InflowRecord{
			IDIngreso:   g.Key.intake,
			IDModelo:    g.Key.model,
			Date:        first.Fecha,
			Description: first.Descrip,
			IDContacto:  first.IDContacto,
			ModeCount:   mode,
			Warehouse:   first.Bodega,
		}
		for _, f := range g.Rows {
			rec.CBM += records.Nz(f.Inicial)
			rec.Units += records.Nz(f.PesoKgs)
			if f.Split() {
				rec.Splits++
			}
		}

		pallets := math.Ceil(float64(len(g.Rows)) / float64(mode))
		if official, ok := overrides[reference.OverrideKey{IDIngreso: g.Key.intake, IDModelo: g.Key.model}]; ok {
			pallets = official
		}
		rec.Pallets = math.Max(0, pallets-float64(rec.Splits))
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b InflowRecord) int {
		if c := cmp.Compare(a.IDIngreso, b.IDIngreso); c != 0 {
			return c
		}
		return cmp.Compare(a.IDModelo, b.IDModelo)
	})
	return out
}

// InflowWindow keeps the records dated within [start, end].
func InflowWindow(in []InflowRecord, start, end time.Time) []InflowRecord {
	var out []InflowRecord
	for _, r := range in {
		if records.InRange(r.Date, start, end) {
			out = append(out, r)
		}
	}
	return out
}
