package warehouse

import "strings"

// Source warehouse suffixes appended to identifiers of non-primary exports.
const (
	SuffixC   = "_c"
	SuffixE   = "_e"
	SuffixOPL = "_opl"
)

var suffixWarehouses = []struct {
	suffix string
	w      Warehouse
}{
	{SuffixC, BODC},
	{SuffixE, BODE},
	{SuffixOPL, OPL},
}

// SuffixOverride returns the warehouse forced by a suffixed client id.
func SuffixOverride(contact string) (Warehouse, bool) {
	for _, s := range suffixWarehouses {
		if strings.HasSuffix(contact, s.suffix) {
			return s.w, true
		}
	}
	return "", false
}

// ApplySuffixOverride returns current unless contact carries a source suffix.
func ApplySuffixOverride(contact string, current Label) Label {
	if w, ok := SuffixOverride(contact); ok {
		return Known(w)
	}
	return current
}

// StripSuffix removes a source warehouse suffix from an identifier.
func StripSuffix(id string) string {
	for _, s := range suffixWarehouses {
		if strings.HasSuffix(id, s.suffix) {
			return strings.TrimSuffix(id, s.suffix)
		}
	}
	return id
}
