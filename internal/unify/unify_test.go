package unify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/warehouse-recon/internal/source"
)

func set(suffix string, tables map[source.Role]*source.Table) *source.WarehouseSet {
	return &source.WarehouseSet{
		Source: source.WarehouseSource{Name: "w" + suffix, Suffix: suffix},
		Tables: tables,
	}
}

func table(role source.Role, header []string, rows ...[]string) *source.Table {
	t := source.NewTable(string(role), header)
	t.Rows = rows
	return t
}

func TestUnifySuffixesNonPrimaryIdentifiers(t *testing.T) {
	primary := set("", map[source.Role]*source.Table{
		source.RoleReceipts: table(source.RoleReceipts, []string{"idingreso", "idcontacto", "fecha"},
			[]string{"0000000001", "000123", "01/02/2024"}),
	})
	bodc := set("_c", map[source.Role]*source.Table{
		source.RoleReceipts: table(source.RoleReceipts, []string{"idingreso", "idcontacto", "descrip"},
			[]string{"0000000001", "000123", "x"},
			[]string{"0000000002", "", "y"}),
	})

	u := Unify([]*source.WarehouseSet{primary, bodc})
	rec := u.Table(source.RoleReceipts)

	require.Equal(t, 3, rec.Len())
	assert.Equal(t, []string{"idingreso", "idcontacto", "fecha", "descrip"}, rec.Header)
	assert.Equal(t, "0000000001", rec.Value(0, "idingreso"))
	assert.Equal(t, "0000000001_c", rec.Value(1, "idingreso"))
	assert.Equal(t, "000123_c", rec.Value(1, "idcontacto"))
	assert.Equal(t, "", rec.Value(2, "idcontacto"), "blank identifiers stay blank")

	dups, err := DuplicateKeys(rec, "idingreso")
	require.NoError(t, err)
	assert.Empty(t, dups)

	// inputs untouched
	assert.Equal(t, "0000000001", bodc.Tables[source.RoleReceipts].Rows[0][0])
}

func TestUnifyDerivesProductLineIntakeBeforeSuffix(t *testing.T) {
	e := set("_e", map[source.Role]*source.Table{
		source.RoleProductLines: table(source.RoleProductLines, []string{"numero", "idproducto"},
			[]string{"55", "A000000001XYZ"}),
	})
	u := Unify([]*source.WarehouseSet{set("", nil), e})
	lines := u.Table(source.RoleProductLines)

	require.Equal(t, 1, lines.Len())
	assert.Equal(t, "A000000001_e", lines.Value(0, "idingreso"))
	assert.Equal(t, "55_e", lines.Value(0, "numero"))
	assert.Equal(t, "A000000001XYZ", lines.Value(0, "idproducto"))
}

func TestUnifyRenamesClientColumns(t *testing.T) {
	s := set("", map[source.Role]*source.Table{
		source.RoleClients: table(source.RoleClients, []string{"codigo", "nombre"}, []string{"001", "ACME"}),
	})
	u := Unify([]*source.WarehouseSet{s})
	clients := u.Table(source.RoleClients)
	assert.Equal(t, "001", clients.Value(0, "idcontacto"))
	assert.Equal(t, "ACME", clients.Value(0, "descrip"))
}

func TestUnifyCopiesStockTables(t *testing.T) {
	s := set("", map[source.Role]*source.Table{
		source.RoleStock: table(source.RoleStock, []string{"idingreso"}, []string{"1"}),
	})
	u := Unify([]*source.WarehouseSet{s})
	u.DispatchedStock.Rows[0][0] = "changed"
	assert.Equal(t, "1", u.Table(source.RoleStock).Rows[0][0])
	assert.Equal(t, "1", u.UnfilteredStock.Rows[0][0])
}

func TestDuplicateKeysReportsPrimaryCollisions(t *testing.T) {
	tbl := table(source.RoleStock, []string{"idingreso", "itemno"},
		[]string{"1", "1"}, []string{"1", "1"}, []string{"1", "2"})
	dups, err := DuplicateKeys(tbl, "idingreso", "itemno")
	require.NoError(t, err)
	assert.Len(t, dups, 1)

	_, err = DuplicateKeys(tbl, "nope")
	assert.Error(t, err)
}
