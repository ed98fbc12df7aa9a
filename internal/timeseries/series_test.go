package timeseries

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/warehouse-recon/internal/records"
)

func date(s string) time.Time { return records.ParseDate(s) }

func TestBuildClampsAtZero(t *testing.T) {
	inflow := []Flow{{Date: date("2024-01-10"), Client: "C1", CBM: 10}}
	outflow := []Flow{{Date: date("2024-02-05"), Client: "C1", CBM: 15}}

	s, err := Build(context.Background(), inflow, outflow, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"C1"}, s.Clients)
	assert.Len(t, s.Days, 27, "complete calendar from first to last event")
	assert.Equal(t, 1, s.Clamps)

	months := Monthly(Totals(s.Days))
	require.Len(t, months, 2)
	assert.Equal(t, 10.0, months[0].Final)
	assert.Equal(t, 0.0, months[1].Final, "clamped, not -5")
	assert.Equal(t, 15.0, months[1].Outflow)
	assert.Equal(t, 10.0, months[1].Initial)
}

func TestFoldScalesUnitsAndPallets(t *testing.T) {
	days := []Day{
		{Inflow: 10, UnitsIn: 100, PalletsIn: 4},
		{Outflow: 20, UnitsOut: 80, PalletsOut: 4},
		{Inflow: 5, UnitsIn: 10, PalletsIn: 1},
		{Outflow: 2, UnitsOut: 4, PalletsOut: 2},
	}
	clamps := Fold(days, 0)
	assert.Equal(t, 1, clamps)

	assert.Equal(t, 10.0, days[0].Level)
	assert.Equal(t, 100.0, days[0].UnitsLevel)

	assert.True(t, days[1].Clamped)
	assert.Zero(t, days[1].Level)
	assert.Zero(t, days[1].UnitsLevel, "units reset with an empty level")
	assert.Equal(t, 20.0, days[1].Opening, "opening is derived from the clamped level")

	assert.Equal(t, 3.0, days[3].Level)
	assert.Equal(t, 6.0, days[3].UnitsLevel)
	assert.Zero(t, days[3].PalletsLevel, "pallets never go negative")
}

func TestFoldStartsFromInitialInventory(t *testing.T) {
	days := []Day{{Outflow: 3}}
	Fold(days, 5)
	assert.Equal(t, 2.0, days[0].Level)
	assert.Equal(t, 5.0, days[0].Opening)
}

func TestFoldProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 50; run++ {
		days := make([]Day, 60)
		for i := range days {
			if rng.IntN(3) == 0 {
				days[i].Inflow = float64(rng.IntN(20))
			}
			if rng.IntN(3) == 0 {
				days[i].Outflow = float64(rng.IntN(25))
			}
		}
		Fold(days, 0)

		prev := 0.0
		for i, d := range days {
			require.GreaterOrEqual(t, d.Level, 0.0)
			if d.Clamped {
				assert.Zero(t, d.Level)
				assert.Less(t, d.Inflow, d.Outflow-prev, "day %d", i)
			} else {
				assert.InDelta(t, prev+d.Inflow-d.Outflow, d.Level, 1e-9, "day %d", i)
			}
			prev = d.Level
		}
	}
}

func TestBuildClientsAreIndependent(t *testing.T) {
	inflow := []Flow{
		{Date: date("2024-01-01"), Client: "1", CBM: 4},
		{Date: date("2024-01-01"), Client: "002", CBM: 1},
		{Date: date("2024-01-02"), Client: "002", CBM: 1},
	}
	outflow := []Flow{
		{Date: date("2024-01-03"), Client: "001", CBM: 9},
	}
	s, err := Build(context.Background(), inflow, outflow, Options{
		Workers:          1,
		InitialInventory: map[string]float64{"002": 10},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"001", "002"}, s.Clients, "ids padded to one width")
	require.Len(t, s.Days, 6)

	c1 := s.ForClient("001")
	assert.Equal(t, []float64{4, 4, 0}, []float64{c1[0].Level, c1[1].Level, c1[2].Level})
	c2 := s.ForClient("002")
	assert.Equal(t, []float64{11, 12, 12}, []float64{c2[0].Level, c2[1].Level, c2[2].Level})

	assert.Equal(t, date("2024-01-01"), s.Days[0].Date)
	assert.Equal(t, "002", s.Days[1].Client)

	totals := Totals(s.Days)
	require.Len(t, totals, 3)
	assert.Equal(t, 15.0, totals[0].Level)
	assert.Equal(t, 12.0, totals[2].Level)

	share := ClientShare(s.Days)
	require.Len(t, share, 2)
	assert.Equal(t, "001", share[0].Client)
	assert.InDelta(t, 66.666, share[0].InflowPct, 1e-2)
	assert.InDelta(t, 100, share[0].OutflowPct, 1e-9)
}

func TestBuildKeepsClientWithOnlyOpeningStock(t *testing.T) {
	inflow := []Flow{{Date: date("2024-01-01"), Client: "1", CBM: 2}}
	outflow := []Flow{{Date: date("2024-01-02"), Client: "1", CBM: 1}}
	s, err := Build(context.Background(), inflow, outflow, Options{
		InitialInventory: map[string]float64{"7": 3},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "7"}, s.Clients)

	idle := s.ForClient("7")
	require.Len(t, idle, 2)
	assert.Equal(t, 3.0, idle[0].Level)
	assert.Equal(t, 3.0, idle[1].Level)

	totals := Totals(s.Days)
	require.Len(t, totals, 2)
	assert.Equal(t, 5.0, totals[0].Level)
	assert.Equal(t, 4.0, totals[1].Level)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, []Flow{{Date: date("2024-01-01"), Client: "x", CBM: 1}}, nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildEmpty(t *testing.T) {
	s, err := Build(context.Background(), nil, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, s.Days)
}

func TestWindow(t *testing.T) {
	days := []Day{{Date: date("2024-01-01")}, {Date: date("2024-01-02")}, {Date: date("2024-01-03")}}
	got := Window(days, date("2024-01-02"), date("2024-01-02"))
	require.Len(t, got, 1)
	assert.Equal(t, date("2024-01-02"), got[0].Date)
}
