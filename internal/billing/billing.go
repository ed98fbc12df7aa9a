// Package billing reconstructs the pallet-level inflow, current inventory
// and outflow tables that billing is computed from. Pallets are not
// recorded by the source systems and are estimated from how many stock
// lines usually share one pallet location.
package billing

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/reference"
	"github.com/andresuchdata/warehouse-recon/internal/summary"
)

// Input is everything the reconstruction reads.
type Input struct {
	// Capacity is the classified active stock fact.
	Capacity   []records.StockRow
	Receptions []summary.ReceptionFact
	Dispatches []summary.DispatchFact
	Receipts   []records.Receipt
	Clients    []records.Client
	Reference  *reference.Tables
	Start, End time.Time
	Now        time.Time
}

// Result holds the full-history tables and their windowed views.
type Result struct {
	InflowHistory  []InflowRecord
	OutflowHistory []OutflowRecord
	Inflow         []InflowRecord
	Outflow        []OutflowRecord
	Current        []CurrentRecord
}

// Reconstruct runs the three reconstructions over the full history and
// then applies the [Start, End] window.
func Reconstruct(in Input) Result {
	var overrides map[reference.OverrideKey]float64
	var refModes map[string]float64
	if in.Reference != nil {
		overrides = in.Reference.PalletOverride
		refModes = in.Reference.PalletMode
	}

	inflow := Inflow(in.Receptions, PalletModes(in.Capacity, InflowLocations()), overrides)
	outflow := Outflow(OutflowInput{
		Facts:     in.Dispatches,
		Modes:     PalletModes(in.Capacity, RealLocation),
		Reference: refModes,
		Receipts:  in.Receipts,
		Clients:   in.Clients,
	})
	current := CurrentInventory(in.Capacity, in.Now)

	res := Result{
		InflowHistory:  inflow,
		OutflowHistory: outflow,
		Inflow:         InflowWindow(inflow, in.Start, in.End),
		Outflow:        OutflowWindow(outflow, in.Start, in.End),
		Current:        current,
	}
	res.logTotals()
	return res
}

func (r Result) logTotals() {
	var inPallets, inCBM, outPallets, outCBM, curCBM float64
	var curPallets int
	for _, x := range r.Inflow {
		inPallets += x.Pallets
		inCBM += x.CBM
	}
	for _, x := range r.Outflow {
		outPallets += x.Pallets
		outCBM += x.CBM
	}
	for _, x := range r.Current {
		curPallets += x.Pallets
		curCBM += x.CBM
	}
	log.Info().
		Float64("pallets_received", inPallets).
		Float64("cbm_received", inCBM).
		Float64("pallets_shipped", outPallets).
		Float64("cbm_shipped", outCBM).
		Int("pallets_in_inventory", curPallets).
		Float64("cbm_in_inventory", curCBM).
		Msg("billing: reconstruction totals")
}
