package inventory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/reference"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

var ref = &reference.Tables{Classification: map[string]reference.Classification{
	"M1": {IDModelo: "M1", Cubicaje: 2},
	"M2": {IDModelo: "M2", Cubicaje: math.NaN()},
}}

func TestComplementBODE(t *testing.T) {
	stock := []records.StockRow{
		{IDModelo: "M1", Inicial: 9, Bodega: warehouse.Known(warehouse.BODE)},
		{IDModelo: "M3", Inicial: 9, Bodega: warehouse.Known(warehouse.BODE)},
		{IDModelo: "M1", Inicial: math.NaN(), Bodega: warehouse.Known(warehouse.BODA)},
		{IDModelo: "M1", Inicial: 4, Bodega: warehouse.Known(warehouse.BODA)},
	}
	got := ComplementBODE(stock, ref)
	assert.Equal(t, []float64{2, DefaultCubicaje, DefaultCubicaje, 4},
		[]float64{got[0].Inicial, got[1].Inicial, got[2].Inicial, got[3].Inicial})
	assert.Equal(t, 9.0, stock[0].Inicial, "input untouched")
}

func TestMeasureCapacity(t *testing.T) {
	stock := []records.StockRow{
		{IDIngreso: "I1", ItemNo: "1", IDStatus: "01", IDModelo: "M1", IDContacto: "7", Inicial: 5, PesoKgs: 1, Bodega: warehouse.Known(warehouse.BODA)},
		{IDIngreso: "I1", ItemNo: "1", IDStatus: "01", IDModelo: "M1", IDContacto: "7", Inicial: 5, Bodega: warehouse.Known(warehouse.BODA)},
		{IDIngreso: "I2", ItemNo: "1", IDStatus: "01", IDModelo: "M9", IDContacto: "7", Inicial: 3, PesoKgs: 2, Bodega: warehouse.Known(warehouse.BODA)},
		{IDIngreso: "I3", ItemNo: "1", IDStatus: "02", IDModelo: "M9", IDContacto: "7", Inicial: 3, Bodega: warehouse.Known(warehouse.BODA)},
	}
	clients := []records.Client{{IDContacto: "007", Name: "ACME"}}

	got := MeasureCapacity(stock, clients, ref)
	require.Len(t, got.Fact, 3, "fact keeps duplicates, drops inactive")
	assert.Equal(t, "007", got.Fact[0].IDContacto)
	assert.Equal(t, 2.0, got.Fact[0].Inicial, "cubicaje replaces volume")

	require.Len(t, got.Summary, 1)
	assert.Equal(t, ClientCapacity{Warehouse: warehouse.BODA, IDContacto: "007", CBM: 5, Pallets: 2, Units: 3}, got.Summary[0])
}

func TestProportionsByProduct(t *testing.T) {
	stock := []records.StockRow{
		{IDIngreso: "I1", ItemNo: "1", IDStatus: "01", IDModelo: "A", IDColDis: "c1", Inicial: 1},
		{IDIngreso: "I1", ItemNo: "2", IDStatus: "01", IDModelo: "B", Inicial: 3},
	}
	got := ProportionsByProduct(stock, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].ProductID)
	assert.InDelta(t, 75, got[0].CBMPct, 1e-9)
	assert.InDelta(t, 50, got[1].PalletsPct, 1e-9)
	assert.Zero(t, got[1].UnitsPct)
}

func TestOldestProducts(t *testing.T) {
	stock := []records.StockRow{
		{IDIngreso: "I1", ItemNo: "1", IDStatus: "01", IDModelo: "A", Fecha: records.ParseDate("2024-03-01"), Inicial: 1},
		{IDIngreso: "I2", ItemNo: "1", IDStatus: "01", IDModelo: "A", Fecha: records.ParseDate("2024-01-01"), Inicial: 1},
		{IDIngreso: "I3", ItemNo: "1", IDStatus: "01", IDModelo: "A", Fecha: records.ParseDate("2024-01-01"), Inicial: 2},
	}
	got := OldestProducts(stock, nil, records.ParseDate("2024-01-11"))
	require.Len(t, got, 2)
	assert.Equal(t, records.ParseDate("2024-01-01"), got[0].Date)
	assert.Equal(t, 10, got[0].DaysInInventory)
	assert.Equal(t, 2, got[0].Pallets)
	assert.InDelta(t, 75, got[0].CBMPct, 1e-9)
}
