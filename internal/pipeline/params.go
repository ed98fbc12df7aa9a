package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

var (
	ErrUnparsableDate   = errors.New("unparsable date")
	ErrInvalidDateRange = errors.New("start date is after end date")
)

var dateLayouts = []string{"02-01-2006", "02-01-06", "02/01/2006", "02/01/06"}

// ParseDate reads a day-first date. An empty string is the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, s)
}

// NewParams parses and checks the run parameters.
func NewParams(start, end string, clients, warehouses []string, initial float64) (Params, error) {
	var p Params
	var err error
	if p.Start, err = ParseDate(start); err != nil {
		return Params{}, fmt.Errorf("start date: %w", err)
	}
	if p.End, err = ParseDate(end); err != nil {
		return Params{}, fmt.Errorf("end date: %w", err)
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.Start.After(p.End) {
		return Params{}, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, start, end)
	}
	for _, w := range warehouses {
		parsed, err := warehouse.Parse(w)
		if err != nil {
			return Params{}, err
		}
		p.Warehouses = append(p.Warehouses, parsed)
	}
	p.Clients = clients
	if initial != 0 && len(clients) > 0 {
		p.InitialInventory = make(map[string]float64, len(clients))
		for _, c := range clients {
			p.InitialInventory[c] = initial
		}
	}
	return p, nil
}
