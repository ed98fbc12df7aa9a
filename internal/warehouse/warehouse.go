// Package warehouse holds the physical warehouse enumeration and the rules
// that attribute inventory rows to a warehouse.
package warehouse

import (
	"fmt"
	"strings"
)

// Warehouse is a resolved warehouse code. Sentinel states (unknown,
// incoherent) are regular values so they can be grouped in reports.
type Warehouse string

const (
	BODA       Warehouse = "BODA"
	BODC       Warehouse = "BODC"
	BODE       Warehouse = "BODE"
	BODG       Warehouse = "BODG"
	BODJ       Warehouse = "BODJ"
	OPL        Warehouse = "OPL"
	Intemperie Warehouse = "INTEMPERIE"
	Piso       Warehouse = "PISO"
	Unknown    Warehouse = "DESCONOCIDO"
	Incoherent Warehouse = "INCOHERENT VALUES"
)

// StoreCode is the generic floor/store location id. It never counts as a
// real backing location during conflict resolution.
const StoreCode = "TIENDA"

var selectable = []Warehouse{BODA, BODC, BODE, BODG, BODJ, OPL, Incoherent, Unknown, Intemperie, Piso}

// Selectable returns the warehouses a report can be filtered by.
func Selectable() []Warehouse {
	out := make([]Warehouse, len(selectable))
	copy(out, selectable)
	return out
}

// Parse maps a user supplied name onto a selectable warehouse.
func Parse(s string) (Warehouse, error) {
	norm := Warehouse(strings.ToUpper(strings.TrimSpace(s)))
	for _, w := range selectable {
		if w == norm {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown warehouse %q", s)
}

func (w Warehouse) String() string { return string(w) }

// Label is a nullable warehouse. The zero value is null.
type Label struct {
	Value Warehouse
	Valid bool
}

// Known wraps w as a non-null label.
func Known(w Warehouse) Label {
	return Label{Value: w, Valid: true}
}

// LabelOf parses a raw cell. Blank cells are null.
func LabelOf(s string) Label {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Label{}
	}
	return Known(Warehouse(s))
}

// Is reports whether l is non-null and equal to w.
func (l Label) Is(w Warehouse) bool {
	return l.Valid && l.Value == w
}

// String renders null as the empty string.
func (l Label) String() string {
	if !l.Valid {
		return ""
	}
	return string(l.Value)
}

// OrUnknown replaces a null label with DESCONOCIDO.
func (l Label) OrUnknown() Label {
	if !l.Valid {
		return Known(Unknown)
	}
	return l
}
