package records

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical rendering of every date column.
const DateLayout = "2006-01-02"

// sourceDateLayouts are tried in order. Slash dates are month first.
var sourceDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
}

// ParseDate parses a source date cell. Unparsable cells give the zero time,
// which stands for a null date.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range sourceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t)
		}
	}
	return time.Time{}
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD, or "" for a null date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseNumber parses a numeric cell. Unparsable or blank cells give NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Nz turns NaN into zero.
func Nz(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Sum adds values, skipping NaN.
func Sum(vals ...float64) float64 {
	var s float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			s += v
		}
	}
	return s
}

// ZFill left-pads s with zeros to width, keeping a leading sign in front.
func ZFill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := strings.Repeat("0", width-len(s))
	if s != "" && (s[0] == '-' || s[0] == '+') {
		return s[:1] + pad + s[1:]
	}
	return pad + s
}

// MaxLen returns the longest string length across all columns.
func MaxLen(cols ...[]string) int {
	n := 0
	for _, c := range cols {
		for _, v := range c {
			if len(v) > n {
				n = len(v)
			}
		}
	}
	return n
}
