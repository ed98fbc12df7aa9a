package summary

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

func day(s string) time.Time { return records.ParseDate(s) }

func TestBuildReceptions(t *testing.T) {
	in := ReceptionInput{
		Receipts: []records.Receipt{
			{IDIngreso: "R1", Fecha: day("2024-01-05"), IDContacto: "1", Descrip: "sofas", IDUbica: "A01", Bodega: warehouse.Known(warehouse.BODA)},
			{IDIngreso: "R2", Fecha: day("2024-02-03"), IDContacto: "22", IDUbica: "DESCONOCIDO", Bodega: warehouse.Known(warehouse.Unknown)},
		},
		UnfilteredStock: []records.StockRow{
			{IDIngreso: "R1", ItemNo: "1", IDModelo: "M1", Fecha: day("2024-01-05"), Inicial: 2, PesoKgs: 10, Salidas: 0},
			{IDIngreso: "R1", ItemNo: "2", IDModelo: "M1", Fecha: day("2024-01-05"), Modifica: day("2024-02-10"), IDPedido: "7"},
			{IDIngreso: "R1", ItemNo: "2", IDModelo: "M1", Fecha: day("2024-01-01"), Inicial: 99},
		},
		ProductLines: []records.ProductLine{
			{IDIngreso: "R1", IDUbica: "A02", Bodega: warehouse.Known(warehouse.BODA)},
			{IDIngreso: "R2", IDUbica: "C01", Bodega: warehouse.Known(warehouse.BODC)},
		},
		Clients: []records.Client{{IDContacto: "01", Name: "ACME"}},
	}

	got := BuildReceptions(in)
	require.Len(t, got.Fact, 3, "duplicate stock line is dropped")

	r1 := got.Fact[0]
	assert.Equal(t, "R2", r1.IDIngreso, "most recent receipt first")
	assert.Equal(t, warehouse.BODC, r1.Bodega)
	assert.True(t, math.IsNaN(r1.Inicial))

	split := got.Fact[2]
	assert.Equal(t, "2", split.ItemNo)
	assert.True(t, split.Split())
	assert.Equal(t, 7.0, split.DDMA)
	assert.Equal(t, "01", split.IDContacto)

	require.Len(t, got.Summary, 2)
	jan := got.Summary[0]
	assert.Equal(t, day("2024-01-01"), jan.Month)
	assert.Equal(t, warehouse.BODA, jan.Warehouse)
	assert.Equal(t, "ACME", jan.Client)
	assert.Equal(t, 2, jan.Pallets)
	assert.InDelta(t, 9, jan.CBM, 1e-9, "split order id is added to CBM")
	assert.InDelta(t, 10, jan.Units, 1e-9)

	feb := got.Summary[1]
	assert.Equal(t, UnknownClient, feb.Client)
	assert.Equal(t, "22", feb.IDContacto)
	assert.Equal(t, 1, feb.Pallets)
	assert.Zero(t, got.Incoherent)
}

func TestBuildReceptionsSuffixWinsOverResolution(t *testing.T) {
	in := ReceptionInput{
		Receipts: []records.Receipt{
			{IDIngreso: "R9", Fecha: day("2024-03-02"), IDContacto: "9_c", IDUbica: "E01", Bodega: warehouse.Known(warehouse.BODC)},
		},
		UnfilteredStock: []records.StockRow{
			{IDIngreso: "R9", ItemNo: "1", Fecha: day("2024-03-02"), Inicial: 1},
		},
		ProductLines: []records.ProductLine{
			{IDIngreso: "R9", IDUbica: "E05", Bodega: warehouse.Known(warehouse.BODE)},
		},
	}

	got := BuildReceptions(in)
	require.Len(t, got.Fact, 1)
	f := got.Fact[0]
	assert.Equal(t, warehouse.BODE, f.LineBodega.Value)
	assert.Equal(t, warehouse.BODC, f.Bodega, "client suffix decides")
	assert.Equal(t, 1, got.SuffixOverrides)
	assert.Zero(t, got.Incoherent)

	require.Len(t, got.Summary, 1)
	assert.Equal(t, warehouse.BODC, got.Summary[0].Warehouse)
}

func TestPostPeriodRelease(t *testing.T) {
	base := records.StockRow{Fecha: day("2024-03-10"), Modifica: day("2024-03-20"), IDPedido: "15"}
	assert.Equal(t, 15.0, postPeriodRelease(base))

	earlier := base
	earlier.Modifica = day("2024-02-28")
	assert.Zero(t, postPeriodRelease(earlier))

	moved := base
	moved.Salidas = 1
	assert.Zero(t, postPeriodRelease(moved))

	unparsed := base
	unparsed.Inicial = math.NaN()
	assert.Zero(t, postPeriodRelease(unparsed))
}

func TestBuildDispatches(t *testing.T) {
	in := DispatchInput{
		Movements: []records.Movement{
			{Trannum: "T1", IDIngreso: "5", ItemNo: "1", IDContacto: "1", Fecha: day("2024-03-02"), Cantidad: 4, Bodega: warehouse.Known(warehouse.BODA)},
			{Trannum: "T2", IDIngreso: "0006", ItemNo: "1", IDContacto: "1", Fecha: day("2024-03-01"), Cantidad: 2, Bodega: warehouse.Known(warehouse.Unknown)},
			{Trannum: "T3", IDIngreso: "5", ItemNo: "1", IDContacto: "1", Fecha: day("2024-02-01"), Cantidad: 9, Bodega: warehouse.Known(warehouse.BODA)},
		},
		DispatchedStock: []records.StockRow{
			{IDIngreso: "0005", ItemNo: "1", Fecha: day("2024-01-01"), PesoKgs: 3, IDUbica1: "TA01"},
		},
		Clients: []records.Client{{IDContacto: "1", Name: "ACME"}},
	}

	got := BuildDispatches(in)
	require.Len(t, got.Fact, 2)
	assert.Equal(t, 1, got.Backfilled)

	first := got.Fact[0]
	assert.Equal(t, "0005", first.IDIngreso)
	assert.True(t, first.Matched)
	assert.Equal(t, day("2024-01-01"), first.ArrivalDate)
	assert.Equal(t, "TA01", first.StockLocation)

	second := got.Fact[1]
	assert.False(t, second.Matched)
	assert.True(t, second.Bodega.Is(warehouse.BODA), "single-warehouse client is backfilled")

	require.Len(t, got.Summary, 1)
	mar := got.Summary[0]
	assert.Equal(t, "ACME", mar.Client)
	assert.Equal(t, 2, mar.Pallets)
	assert.InDelta(t, 6, mar.CBM, 1e-9)
	assert.InDelta(t, 3, mar.Units, 1e-9)
}

func TestByWarehouse(t *testing.T) {
	lines := []Monthly{
		{Warehouse: warehouse.BODA, Date: day("2024-01-03"), CBM: 1, Pallets: 1},
		{Warehouse: warehouse.BODC, Date: day("2024-01-04"), CBM: 5, Pallets: 2},
		{Warehouse: warehouse.BODA, Date: day("2024-01-20"), CBM: 2, Pallets: 3, Units: 4},
		{Warehouse: warehouse.BODG, Date: day("2024-05-01"), CBM: 50},
	}
	in, out := ByWarehouse(lines, nil, day("2024-01-01"), day("2024-01-31"))
	assert.Empty(t, out)
	require.Len(t, in, 2)
	assert.Equal(t, WarehouseTotal{Warehouse: warehouse.BODC, CBM: 5, Pallets: 2}, in[0])
	assert.Equal(t, WarehouseTotal{Warehouse: warehouse.BODA, CBM: 3, Pallets: 4, Units: 4}, in[1])
}
