// Package timeseries rebuilds the daily inventory level of every client from
// reconstructed inflows and outflows.
package timeseries

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/warehouse-recon/internal/records"
)

// nearZero is the magnitude below which values are reported as zero.
const nearZero = 1e-6

// Flow is one dated movement of stock for a client.
type Flow struct {
	Date    time.Time
	Client  string
	CBM     float64
	Units   float64
	Pallets float64
}

// Day is the state of one client on one calendar day.
type Day struct {
	Date   time.Time
	Client string

	Inflow     float64
	Outflow    float64
	UnitsIn    float64
	UnitsOut   float64
	PalletsIn  float64
	PalletsOut float64

	// Opening is derived as Level - Inflow + Outflow.
	Opening      float64
	Level        float64
	UnitsLevel   float64
	PalletsLevel float64
	Clamped      bool
}

// Options controls the calendar and starting levels.
type Options struct {
	// From and To bound the calendar. Zero values use the first and last
	// flow date.
	From, To time.Time
	// InitialInventory is the CBM level of each client before the first day.
	// Keys are padded like the flow client ids.
	InitialInventory map[string]float64
	// Workers bounds the number of clients folded concurrently.
	Workers int
}

// Series is the complete client by day grid.
type Series struct {
	Days    []Day
	Clients []string
	// Clamps counts the days on which an outflow larger than the available
	// stock was cut down to keep the level at zero.
	Clamps int
}

type dayClient struct {
	date   time.Time
	client string
}

// Build aggregates flows per day and client over a complete calendar and
// folds every client's level in date order. Clients are independent and
// are folded concurrently.
func Build(ctx context.Context, inflow, outflow []Flow, opts Options) (*Series, error) {
	// Client ids from both sides are padded to one width so that the same
	// client joins up regardless of which export padded it.
	var ids []string
	for _, f := range slices.Concat(inflow, outflow) {
		ids = append(ids, f.Client)
	}
	for c := range opts.InitialInventory {
		ids = append(ids, c)
	}
	width := records.MaxLen(ids)

	// A client with opening stock is tracked even without flows.
	clientSet := make(map[string]struct{})
	initial := make(map[string]float64, len(opts.InitialInventory))
	for c, v := range opts.InitialInventory {
		c = records.ZFill(c, width)
		initial[c] = v
		clientSet[c] = struct{}{}
	}

	from, to := opts.From, opts.To
	in := make(map[dayClient]Flow)
	out := make(map[dayClient]Flow)
	for _, side := range []struct {
		flows []Flow
		acc   map[dayClient]Flow
	}{{inflow, in}, {outflow, out}} {
		for _, f := range side.flows {
			if f.Date.IsZero() {
				continue
			}
			d := records.Day(f.Date)
			client := records.ZFill(f.Client, width)
			clientSet[client] = struct{}{}
			if opts.From.IsZero() && (from.IsZero() || d.Before(from)) {
				from = d
			}
			if opts.To.IsZero() && (to.IsZero() || d.After(to)) {
				to = d
			}
			k := dayClient{date: d, client: client}
			acc := side.acc[k]
			acc.CBM += records.Nz(f.CBM)
			acc.Units += records.Nz(f.Units)
			acc.Pallets += records.Nz(f.Pallets)
			side.acc[k] = acc
		}
	}

	clients := records.SortedKeys(clientSet)
	s := &Series{Clients: clients}
	if len(clients) == 0 || from.IsZero() || to.Before(from) {
		return s, nil
	}
	from, to = records.Day(from), records.Day(to)
	var calendar []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		calendar = append(calendar, d)
	}

	perClient := make([][]Day, len(clients))
	clamps := make([]int, len(clients))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, c := range clients {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			days := make([]Day, len(calendar))
			for j, d := range calendar {
				k := dayClient{date: d, client: c}
				days[j] = Day{
					Date:       d,
					Client:     c,
					Inflow:     in[k].CBM,
					UnitsIn:    in[k].Units,
					PalletsIn:  in[k].Pallets,
					Outflow:    out[k].CBM,
					UnitsOut:   out[k].Units,
					PalletsOut: out[k].Pallets,
				}
			}
			clamps[i] = Fold(days, initial[c])
			perClient[i] = days
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Order by date, then client.
	s.Days = make([]Day, 0, len(calendar)*len(clients))
	for j := range calendar {
		for i := range clients {
			s.Days = append(s.Days, perClient[i][j])
		}
	}
	for _, n := range clamps {
		s.Clamps += n
	}

	log.Info().
		Int("clients", len(clients)).
		Int("days", len(calendar)).
		Int("clamps", s.Clamps).
		Msg("timeseries: levels rebuilt")
	return s, nil
}

// Fold computes the running levels of one client's days in place, starting
// from initial. The CBM level never goes below zero: when an outflow
// exceeds the available stock it is cut to what is available and the unit
// and pallet outflows are scaled by the same factor. Units and pallets are
// reset whenever the CBM level is zero. It returns the number of clamped
// days.
func Fold(days []Day, initial float64) int {
	level, units, pallets := initial, 0.0, 0.0
	clamps := 0
	for i := range days {
		d := &days[i]
		unitsOut, palletsOut := d.UnitsOut, d.PalletsOut
		if next := level + d.Inflow - d.Outflow; next < 0 {
			factor := 0.0
			if d.Outflow != 0 {
				factor = (level + d.Inflow) / d.Outflow
			}
			unitsOut *= factor
			palletsOut *= factor
			level = 0
			d.Clamped = true
			clamps++
		} else {
			level = next
		}
		units = math.Max(units+d.UnitsIn-unitsOut, 0)
		pallets = math.Max(pallets+d.PalletsIn-palletsOut, 0)
		if level == 0 {
			units, pallets = 0, 0
		}

		d.Level = clip(level)
		d.UnitsLevel = clip(units)
		d.PalletsLevel = clip(pallets)
		d.Opening = clip(level - d.Inflow + d.Outflow)
	}
	return clamps
}

// Window keeps the days within [start, end].
func Window(days []Day, start, end time.Time) []Day {
	var out []Day
	for _, d := range days {
		if records.InRange(d.Date, start, end) {
			out = append(out, d)
		}
	}
	return out
}

// ForClient returns one client's days in date order.
func (s *Series) ForClient(client string) []Day {
	var out []Day
	for _, d := range s.Days {
		if d.Client == client {
			out = append(out, d)
		}
	}
	return slices.Clip(out)
}

func clip(v float64) float64 {
	if math.Abs(v) < nearZero {
		return 0
	}
	return v
}
