package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// WorkbookName is the file name of the combined workbook.
const WorkbookName = "reports.xlsx"

// maxSheetName is the sheet name limit of the xlsx format.
const maxSheetName = 31

// FlushFunc receives every written file, e.g. to upload it.
type FlushFunc func(ctx context.Context, path string) error

// Writer writes report tables under Dir.
type Writer struct {
	Dir   string
	Flush FlushFunc
}

func NewWriter(dir string, flush FlushFunc) *Writer {
	return &Writer{Dir: dir, Flush: flush}
}

// Write renders every table as <name>.csv plus one workbook with a sheet
// per table. It returns the written paths in order.
func (w *Writer) Write(ctx context.Context, tables []*Table) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := filepath.Join(w.Dir, t.Name+".csv")
		if err := writeCSV(path, t); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Debug().Str("table", t.Name).Int("rows", len(t.Rows)).Str("path", path).Msg("export: csv written")
		paths = append(paths, path)
	}

	book := filepath.Join(w.Dir, WorkbookName)
	if err := writeWorkbook(book, tables); err != nil {
		return paths, fmt.Errorf("failed to write workbook: %w", err)
	}
	paths = append(paths, book)

	if w.Flush != nil {
		for _, p := range paths {
			if err := w.Flush(ctx, p); err != nil {
				return paths, fmt.Errorf("flush callback failed for %s: %w", p, err)
			}
		}
	}

	log.Info().Int("files", len(paths)).Str("dir", w.Dir).Msg("export: reports written")
	return paths, nil
}

func writeCSV(path string, t *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	for i := range t.Rows {
		if err := writer.Write(t.Strings(i)); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func writeWorkbook(path string, tables []*Table) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	for i, t := range tables {
		name := sheetName(t.Name)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		sw, err := f.NewStreamWriter(name)
		if err != nil {
			return err
		}
		header := make([]any, len(t.Header))
		for j, h := range t.Header {
			header[j] = h
		}
		if err := sw.SetRow("A1", header); err != nil {
			return err
		}
		for r, row := range t.Rows {
			cells := make([]any, len(row))
			for j, v := range row {
				cells[j] = cell(v)
			}
			addr, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := sw.SetRow(addr, cells); err != nil {
				return err
			}
		}
		if err := sw.Flush(); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
