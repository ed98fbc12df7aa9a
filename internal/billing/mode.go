package billing

import (
	"strconv"
	"strings"

	"github.com/andresuchdata/warehouse-recon/internal/records"
)

// ModeCount returns the most frequent value of counts. Ties go to the
// smallest value; an empty input gives 0.
func ModeCount(counts []int) int {
	freq := make(map[int]int, len(counts))
	for _, c := range counts {
		freq[c]++
	}
	best, bestFreq := 0, 0
	for v, f := range freq {
		if f > bestFreq || (f == bestFreq && v < best) {
			best, bestFreq = v, f
		}
	}
	return best
}

// PalletModes estimates items per pallet for every product model: stock
// lines are counted per (model, location) and the mode of those counts is
// taken per model. Lines for which location returns "" are ignored.
func PalletModes(stock []records.StockRow, location func(records.StockRow) string) map[string]int {
	type key struct{ model, loc string }
	counts := make(map[key]int)
	var order []key
	for _, r := range stock {
		if r.IDModelo == "" {
			continue
		}
		k := key{model: r.IDModelo, loc: location(r)}
		if k.loc == "" {
			continue
		}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	perModel := make(map[string][]int)
	for _, k := range order {
		perModel[k.model] = append(perModel[k.model], counts[k])
	}
	out := make(map[string]int, len(perModel))
	for m, cs := range perModel {
		out[m] = ModeCount(cs)
	}
	return out
}

// isRealLocation reports whether a pallet location is usable: not blank and
// not a reserved (R) or temporary (TM) zone.
func isRealLocation(loc string) bool {
	loc = strings.TrimSpace(loc)
	return loc != "" && !strings.HasPrefix(loc, "R") && !strings.HasPrefix(loc, "TM")
}

// RealLocation is the location selector for outflow and current inventory.
func RealLocation(r records.StockRow) string {
	if isRealLocation(r.IDUbica1) {
		return strings.TrimSpace(r.IDUbica1)
	}
	return ""
}

// fillerLocations hands out synthetic pallet locations so that stock
// without a standard location counts as its own pallet.
type fillerLocations struct{ n int }

func (f *fillerLocations) next() string {
	f.n++
	return "filler-" + strconv.Itoa(f.n)
}

// InflowLocations returns the location selector for inflow estimation.
// Only rack locations (TA prefix) are kept; every other line gets a unique
// filler location.
func InflowLocations() func(records.StockRow) string {
	fillers := &fillerLocations{}
	return func(r records.StockRow) string {
		loc := strings.TrimSpace(r.IDUbica1)
		if strings.HasPrefix(loc, "TA") {
			return loc
		}
		return fillers.next()
	}
}
