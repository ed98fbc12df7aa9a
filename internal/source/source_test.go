package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSVSkipsMalformedLines(t *testing.T) {
	in := "IdIngreso,ItemNo,IdUbica\n" +
		"A1,1,C01\n" +
		"A2,2,C02,extra\n" +
		"A3\n"

	tbl, err := decodeCSV("insaldo", strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"idingreso", "itemno", "idubica"}, tbl.Header)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, 1, tbl.Skipped)
	assert.Equal(t, []string{"A3", "", ""}, tbl.Rows[1])
}

func TestReadCSVDecodesLatin1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "incontac.csv")
	// "Almacén" in ISO-8859-1.
	require.NoError(t, os.WriteFile(path, []byte("codigo,nombre\n001,Almac\xe9n\n"), 0o644))

	tbl, err := ReadCSV("incontac", path)
	require.NoError(t, err)
	assert.Equal(t, "Almacén", tbl.Value(0, "nombre"))
}

func TestConcatUnionsColumns(t *testing.T) {
	a := NewTable("a", []string{"idingreso", "fecha"})
	a.Rows = [][]string{{"1", "2024-01-01"}}
	b := NewTable("b", []string{"idingreso", "retnum"})
	b.Rows = [][]string{{"2_c", "R9"}}

	out := Concat("all", a, b)
	assert.Equal(t, []string{"idingreso", "fecha", "retnum"}, out.Header)
	assert.Equal(t, [][]string{{"1", "2024-01-01", ""}, {"2_c", "", "R9"}}, out.Rows)
}

func TestTableColNormalizesNames(t *testing.T) {
	tbl := NewTable("t", []string{"Id_Contacto", "descrip"})
	assert.Equal(t, 0, tbl.Col("idcontacto"))
	assert.Equal(t, -1, tbl.Col("missing"))

	tbl.Rows = [][]string{{"7", "x"}}
	tbl.AddColumn("dup_key", func(r []string) string { return r[0] + r[1] })
	assert.Equal(t, "7x", tbl.Value(0, "dup_key"))

	clone := tbl.Clone()
	clone.Rows[0][0] = "8"
	assert.Equal(t, "7", tbl.Rows[0][0])
}

func TestLoadAllKeepsOrderAndToleratesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "insaldo.csv"), []byte("idingreso\nA\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "insaldo_c.csv"), []byte("idingreso\nB\nC\n"), 0o644))

	sets, err := LoadAll(context.Background(), []WarehouseSource{
		{Name: "main", Dir: dir},
		{Name: "c", Dir: dir, Suffix: "_c"},
	})
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, 1, sets[0].Tables[RoleStock].Len())
	assert.Equal(t, 2, sets[1].Tables[RoleStock].Len())
	assert.Equal(t, 0, sets[1].Tables[RoleClients].Len())
}
