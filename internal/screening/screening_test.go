package screening

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/warehouse-recon/internal/source"
	"github.com/andresuchdata/warehouse-recon/internal/unify"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

func tbl(role source.Role, header []string, rows ...[]string) *source.Table {
	t := source.NewTable(string(role), header)
	t.Rows = rows
	return t
}

func fixture() *unify.Unified {
	primary := &source.WarehouseSet{
		Source: source.WarehouseSource{Name: "main"},
		Tables: map[source.Role]*source.Table{
			source.RoleStock: tbl(source.RoleStock,
				[]string{"idingreso", "itemno", "idstatus", "idubica", "idcontacto", "fecha", "inicial"},
				[]string{"R1", "1", "01", "A01", "001", "2024-01-05", "2"},
				[]string{"R1", "2", "01", "G01", "001", "2024-01-10", "3"},
				[]string{"R2", "1", "02", "A01", "001", "2024-01-05", "1"},
				[]string{"R3", "1", "XX", "DT1H2", "001", "2024-01-05", "1"},
				[]string{"R4", "1", "03", "C01", "001", "2024-01-05", "1"},
			),
			source.RoleReceipts: tbl(source.RoleReceipts,
				[]string{"idingreso", "fecha", "idcontacto", "descrip"},
				[]string{"R1", "2024-01-01", "001", ""},
				[]string{"R1", "2024-01-02", "", "late"},
				[]string{"R9", "2024-01-03", "001", "orphan"},
			),
			source.RoleProductLines: tbl(source.RoleProductLines,
				[]string{"numero", "idproducto", "idubica", "idcontacto"},
				[]string{"D1", "R1XXXXXXXX01", "B01", "001"},
				[]string{"D2", "R5XXXXXXXX01", "", "001"},
			),
			source.RoleMovements: tbl(source.RoleMovements,
				[]string{"trannum", "idingreso", "idclase", "idcontacto", "fecha"},
				[]string{"T1", "R1XXXXXXXX", "TR01", "001", "2024-02-01"},
				[]string{"T2", "R7XXXXXXXX", "TR01", "001", "2024-02-02"},
				[]string{"T3", "R1XXXXXXXX", "AJ01", "001", "2024-02-03"},
			),
			source.RoleLedger: tbl(source.RoleLedger,
				[]string{"trannum", "idclase"},
				[]string{"T1", "TR01"},
				[]string{"T8", "TR01"},
			),
			source.RoleDispatchHeaders: tbl(source.RoleDispatchHeaders,
				[]string{"numero", "estatus"},
				[]string{"D1", "1"}, []string{"D2", "9"}, []string{"D3", "5"},
			),
			source.RoleClients: tbl(source.RoleClients,
				[]string{"idcontacto", "descrip"},
				[]string{"001", "ACME"}, []string{"000099", "internal"},
			),
		},
	}
	bodc := &source.WarehouseSet{
		Source: source.WarehouseSource{Name: "c", Suffix: "_c"},
		Tables: map[source.Role]*source.Table{
			source.RoleStock: tbl(source.RoleStock,
				[]string{"idingreso", "itemno", "idstatus", "idubica", "idcontacto", "fecha"},
				[]string{"R1", "1", "01", "E01", "123", "2024-01-07"},
			),
		},
	}
	return unify.Unify([]*source.WarehouseSet{primary, bodc})
}

func TestProjectFiltersAndSorts(t *testing.T) {
	p := Project(fixture())

	require.Len(t, p.Stock, 3)
	assert.Equal(t, "R1", p.Stock[0].IDIngreso)
	assert.Equal(t, "2", p.Stock[0].ItemNo, "most recent first")
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), p.Stock[0].Fecha)

	require.Len(t, p.DispatchedStock, 1)
	assert.Equal(t, "R4", p.DispatchedStock[0].IDIngreso)
	assert.Len(t, p.UnfilteredStock, 5, "only dispatched rows at blocked locations are removed")

	assert.Len(t, p.Movements, 2)
	assert.Len(t, p.DispatchHeaders, 1)
	assert.Len(t, p.Clients, 1)
	assert.Equal(t, unknownLocation, p.ProductLines[1].IDUbica)
}

func TestAttribute(t *testing.T) {
	p := Project(fixture())
	a, stats := Attribute(p)

	// stock classified by location
	assert.True(t, a.Stock[0].Bodega.Is(warehouse.BODG))

	// receipts collapsed, first non-blank field wins
	require.Len(t, a.Receipts, 2)
	r1 := a.Receipts[0]
	assert.Equal(t, "R1", r1.IDIngreso)
	assert.Equal(t, "late", r1.Descrip)
	assert.Equal(t, "001", r1.IDContacto)
	assert.Equal(t, "G01", r1.IDUbica)
	assert.True(t, r1.Bodega.Is(warehouse.BODG))
	assert.True(t, a.Receipts[1].Bodega.Is(warehouse.Unknown))
	assert.Equal(t, unknownLocation, a.Receipts[1].IDUbica)

	// movements inherit from product lines
	byTran := map[string]warehouse.Label{}
	for _, m := range a.Movements {
		byTran[m.Trannum] = m.Bodega
	}
	assert.True(t, byTran["T1"].Is(warehouse.BODJ))
	assert.True(t, byTran["T2"].Is(warehouse.Unknown))

	// ledger entries without a movement are dropped
	require.Len(t, a.Ledger, 1)
	assert.True(t, a.Ledger[0].Bodega.Is(warehouse.BODJ))
	assert.Equal(t, 1, stats.DroppedLedger)

	// input untouched
	assert.False(t, p.Stock[0].Bodega.Valid)
}

func TestAttributeSuffixOverridesLocation(t *testing.T) {
	a, stats := Attribute(Project(fixture()))

	var found bool
	for _, s := range a.Stock {
		if s.IDContacto == "123_c" {
			found = true
			assert.Equal(t, "E01", s.IDUbica)
			assert.True(t, s.Bodega.Is(warehouse.BODC), "BODE by location, forced to BODC by the _c client")
		}
	}
	assert.True(t, found)
	assert.GreaterOrEqual(t, stats.SuffixOverrides, 1)
}
