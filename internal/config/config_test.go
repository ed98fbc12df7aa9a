package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSources(t *testing.T) {
	got := ParseSources("main=./data/a, c=./data/c:_c ,./data/e:_e")
	require.Len(t, got, 3)
	assert.Equal(t, SourceConfig{Name: "main", Dir: "./data/a"}, got[0])
	assert.Equal(t, SourceConfig{Name: "c", Dir: "./data/c", Suffix: "_c"}, got[1])
	assert.Equal(t, SourceConfig{Name: "source2", Dir: "./data/e", Suffix: "_e"}, got[2])

	primary := ParseSources("main=./data/a:_x")
	assert.Empty(t, primary[0].Suffix, "primary never carries a suffix")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	cls := filepath.Join(dir, "cls.xlsx")
	mode := filepath.Join(dir, "mode.xlsx")
	require.NoError(t, os.WriteFile(cls, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(mode, []byte("x"), 0o644))

	cfg := &Config{
		Sources:   ParseSources("main=" + dir),
		Reference: ReferenceConfig{Classification: cls, PalletMode: mode},
	}
	require.NoError(t, cfg.Validate())

	cfg.Reference.PalletOverride = filepath.Join(dir, "nope.xlsx")
	assert.ErrorIs(t, cfg.Validate(), ErrMissingReference)

	cfg.Reference.PalletOverride = ""
	cfg.Reference.PalletMode = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingReference)

	cfg.Reference.PalletMode = mode
	cfg.Sources = append(cfg.Sources, SourceConfig{Name: "c", Dir: dir})
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", d.DSN())
}
