package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ReadCSV reads a Latin-1 encoded export. Lines with more fields than the
// header or broken quoting are skipped and counted; short lines are padded.
func ReadCSV(name, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return decodeCSV(name, transform.NewReader(file, charmap.ISO8859_1.NewDecoder()))
}

func decodeCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewTable(name, nil), nil
		}
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}

	t := NewTable(name, header)
	width := len(t.Header)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			t.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if len(record) > width {
			t.Skipped++
			continue
		}
		row := make([]string, width)
		copy(row, record)
		t.Rows = append(t.Rows, row)
	}

	if t.Skipped > 0 {
		log.Warn().Str("table", name).Int("skipped", t.Skipped).Msg("source: malformed lines skipped")
	}
	return t, nil
}
