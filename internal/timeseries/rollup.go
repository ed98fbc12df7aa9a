package timeseries

import (
	"cmp"
	"slices"
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/billing"
	"github.com/andresuchdata/warehouse-recon/internal/records"
)

// Total is the sum over all clients for one day.
type Total struct {
	Date         time.Time
	Inflow       float64
	Outflow      float64
	UnitsIn      float64
	UnitsOut     float64
	PalletsIn    float64
	PalletsOut   float64
	Opening      float64
	Level        float64
	UnitsLevel   float64
	PalletsLevel float64
}

// Month is one calendar month of the totals.
type Month struct {
	Month      time.Time
	Inflow     float64
	Outflow    float64
	UnitsIn    float64
	UnitsOut   float64
	PalletsIn  float64
	PalletsOut float64
	// Initial is the opening level of the first day, Final the level of the
	// last day.
	Initial float64
	Final   float64
	Days    int
}

// Share is a client's part of the total inflow.
type Share struct {
	Client     string
	Inflow     float64
	InflowPct  float64
	Outflow    float64
	OutflowPct float64
}

// Totals sums the days of all clients per date, in date order.
func Totals(days []Day) []Total {
	groups := records.GroupBy(days, func(d Day) time.Time { return d.Date })
	out := make([]Total, 0, len(groups))
	for _, g := range groups {
		t := Total{Date: g.Key}
		for _, d := range g.Rows {
			t.Inflow += d.Inflow
			t.Outflow += d.Outflow
			t.UnitsIn += d.UnitsIn
			t.UnitsOut += d.UnitsOut
			t.PalletsIn += d.PalletsIn
			t.PalletsOut += d.PalletsOut
			t.Opening += d.Opening
			t.Level += d.Level
			t.UnitsLevel += d.UnitsLevel
			t.PalletsLevel += d.PalletsLevel
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b Total) int { return a.Date.Compare(b.Date) })
	return out
}

// Monthly rolls the daily totals up per calendar month: flows are summed,
// the initial level is the first day's opening and the final level the last
// day's closing.
func Monthly(totals []Total) []Month {
	groups := records.GroupBy(totals, func(t Total) time.Time { return records.MonthStart(t.Date) })
	out := make([]Month, 0, len(groups))
	for _, g := range groups {
		m := Month{Month: g.Key, Days: len(g.Rows)}
		for _, t := range g.Rows {
			m.Inflow += t.Inflow
			m.Outflow += t.Outflow
			m.UnitsIn += t.UnitsIn
			m.UnitsOut += t.UnitsOut
			m.PalletsIn += t.PalletsIn
			m.PalletsOut += t.PalletsOut
		}
		m.Initial = g.Rows[0].Opening
		m.Final = g.Rows[len(g.Rows)-1].Level
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b Month) int { return a.Month.Compare(b.Month) })
	return out
}

// ClientShare reports each client's percentage of the inflow and outflow
// in days, largest inflow share first.
func ClientShare(days []Day) []Share {
	groups := records.GroupBy(days, func(d Day) string { return d.Client })
	out := make([]Share, 0, len(groups))
	var in, outTotal float64
	for _, g := range groups {
		s := Share{Client: g.Key}
		for _, d := range g.Rows {
			s.Inflow += d.Inflow
			s.Outflow += d.Outflow
		}
		in += s.Inflow
		outTotal += s.Outflow
		out = append(out, s)
	}
	for i := range out {
		if in != 0 {
			out[i].InflowPct = out[i].Inflow / in * 100
		}
		if outTotal != 0 {
			out[i].OutflowPct = out[i].Outflow / outTotal * 100
		}
	}
	slices.SortStableFunc(out, func(a, b Share) int {
		if c := cmp.Compare(b.InflowPct, a.InflowPct); c != 0 {
			return c
		}
		return cmp.Compare(a.Client, b.Client)
	})
	return out
}

// InflowFlows turns reconstructed receptions into flows.
func InflowFlows(recs []billing.InflowRecord) []Flow {
	out := make([]Flow, 0, len(recs))
	for _, r := range recs {
		out = append(out, Flow{Date: r.Date, Client: r.IDContacto, CBM: r.CBM, Units: r.Units, Pallets: r.Pallets})
	}
	return out
}

// OutflowFlows turns reconstructed shipments into flows.
func OutflowFlows(recs []billing.OutflowRecord) []Flow {
	out := make([]Flow, 0, len(recs))
	for _, r := range recs {
		out = append(out, Flow{Date: r.ShippingDate, Client: r.IDContacto, CBM: r.CBM, Units: r.Units, Pallets: r.Pallets})
	}
	return out
}
