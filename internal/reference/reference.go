// Package reference loads the externally maintained xlsx tables the
// pipeline depends on: product classification, pallet mode and pallet
// overrides.
package reference

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/warehouse-recon/internal/records"
)

// Classification is one product model's volumetric classification.
type Classification struct {
	IDModelo      string
	Descrip       string
	Clasificacion string
	Cubicaje      float64
}

// OverrideKey identifies an intake and model pair.
type OverrideKey struct {
	IDIngreso string
	IDModelo  string
}

// Tables holds every reference input of a run.
type Tables struct {
	Classification map[string]Classification
	PalletMode     map[string]float64
	PalletOverride map[OverrideKey]float64
}

// Cubicaje returns the volumetric value of a model when it is known.
func (t *Tables) Cubicaje(idModelo string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	c, ok := t.Classification[strings.TrimSpace(idModelo)]
	if !ok || math.IsNaN(c.Cubicaje) {
		return 0, false
	}
	return c.Cubicaje, true
}

// Paths names the reference files. Override is optional.
type Paths struct {
	Classification string
	PalletMode     string
	Override       string
}

// Load reads all reference tables.
func Load(p Paths) (*Tables, error) {
	cls, err := LoadClassification(p.Classification)
	if err != nil {
		return nil, err
	}
	mode, err := LoadPalletMode(p.PalletMode)
	if err != nil {
		return nil, err
	}
	t := &Tables{Classification: cls, PalletMode: mode, PalletOverride: map[OverrideKey]float64{}}
	if p.Override != "" {
		if t.PalletOverride, err = LoadPalletOverride(p.Override); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// LoadClassification reads idmodelo, descrip, clasificacion and cubicaje
// from the first sheet.
func LoadClassification(path string) (map[string]Classification, error) {
	sheet, err := readSheet(path, "idmodelo", "cubicaje")
	if err != nil {
		return nil, err
	}
	out := make(map[string]Classification, len(sheet.rows))
	for _, row := range sheet.rows {
		id := sheet.get(row, "idmodelo")
		if id == "" {
			continue
		}
		if _, dup := out[id]; dup {
			continue
		}
		out[id] = Classification{
			IDModelo:      id,
			Descrip:       sheet.get(row, "descrip"),
			Clasificacion: sheet.get(row, "clasificacion"),
			Cubicaje:      records.ParseNumber(sheet.get(row, "cubicaje")),
		}
	}
	return out, nil
}

// LoadPalletMode reads the authoritative items-per-pallet table
// (idmodelo, mode_count).
func LoadPalletMode(path string) (map[string]float64, error) {
	sheet, err := readSheet(path, "idmodelo", "mode_count")
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(sheet.rows))
	for _, row := range sheet.rows {
		id := sheet.get(row, "idmodelo")
		v := records.ParseNumber(sheet.get(row, "mode_count"))
		if id == "" || math.IsNaN(v) {
			continue
		}
		if _, dup := out[id]; !dup {
			out[id] = v
		}
	}
	return out, nil
}

// LoadPalletOverride reads the official pallet count per intake and model
// (idingreso, idmodelo, pallet_oficial).
func LoadPalletOverride(path string) (map[OverrideKey]float64, error) {
	sheet, err := readSheet(path, "idingreso", "idmodelo", "pallet_oficial")
	if err != nil {
		return nil, err
	}
	out := make(map[OverrideKey]float64, len(sheet.rows))
	for _, row := range sheet.rows {
		v := records.ParseNumber(sheet.get(row, "pallet_oficial"))
		if math.IsNaN(v) {
			continue
		}
		k := OverrideKey{IDIngreso: sheet.get(row, "idingreso"), IDModelo: sheet.get(row, "idmodelo")}
		if _, dup := out[k]; !dup {
			out[k] = v
		}
	}
	return out, nil
}

type sheetData struct {
	idx  map[string]int
	rows [][]string
}

func (s *sheetData) get(row []string, col string) string {
	i, ok := s.idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// readSheet loads the first sheet and checks that the required columns are
// present in the header row.
func readSheet(path string, required ...string) (*sheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("reference file %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reference file %s is empty", path)
	}

	s := &sheetData{idx: make(map[string]int, len(rows[0])), rows: rows[1:]}
	for i, h := range rows[0] {
		s.idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := s.idx[col]; !ok {
			return nil, fmt.Errorf("reference file %s: missing column %q", path, col)
		}
	}
	return s, nil
}
