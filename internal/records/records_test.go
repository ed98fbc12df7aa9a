package records

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, ParseDate("2024-03-05"))
	assert.Equal(t, want, ParseDate("2024-03-05 13:45:00"))
	assert.Equal(t, want, ParseDate("03/05/2024"))
	assert.True(t, ParseDate("not a date").IsZero())
	assert.True(t, ParseDate("").IsZero())

	assert.Equal(t, "2024-03-05", FormatDate(want))
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 1234.5, ParseNumber("1,234.5"))
	assert.True(t, math.IsNaN(ParseNumber("abc")))
	assert.Equal(t, 3.0, Sum(1, math.NaN(), 2))
	assert.Equal(t, 0.0, Nz(math.NaN()))
}

func TestZFill(t *testing.T) {
	assert.Equal(t, "000123", ZFill("123", 6))
	assert.Equal(t, "-0012", ZFill("-12", 5))
	assert.Equal(t, "123456", ZFill("123456", 3))
	assert.Equal(t, 5, MaxLen([]string{"a", "abcde"}, []string{"abc"}))
}

func TestDedupIsIdempotent(t *testing.T) {
	rows := []StockRow{
		{IDIngreso: "A", ItemNo: "1", Inicial: 1},
		{IDIngreso: "A", ItemNo: "1", Inicial: 2},
		{IDIngreso: "A", ItemNo: "2", Inicial: 3},
	}
	once := Dedup(rows, StockRow.DupKey)
	twice := Dedup(once, StockRow.DupKey)

	assert.Len(t, once, 2)
	assert.Equal(t, 1.0, once[0].Inicial, "first occurrence wins")
	assert.Equal(t, once, twice)
}

func TestSortByDateDesc(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	rows := []Receipt{{IDIngreso: "old", Fecha: d(1)}, {IDIngreso: "null"}, {IDIngreso: "new", Fecha: d(9)}}
	out := SortByDateDesc(rows, func(r Receipt) time.Time { return r.Fecha })

	assert.Equal(t, "new", out[0].IDIngreso)
	assert.Equal(t, "old", out[1].IDIngreso)
	assert.Equal(t, "null", out[2].IDIngreso)
	assert.Equal(t, "old", rows[0].IDIngreso)
}

func TestGroupBy(t *testing.T) {
	groups := GroupBy([]string{"b", "a", "b"}, func(s string) string { return s })
	assert.Len(t, groups, 2)
	assert.Equal(t, "b", groups[0].Key)
	assert.Len(t, groups[0].Rows, 2)
}

func TestInRange(t *testing.T) {
	d := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, InRange(d, d, d))
	assert.True(t, InRange(d, time.Time{}, time.Time{}))
	assert.False(t, InRange(d, d.AddDate(0, 0, 1), time.Time{}))
	assert.False(t, InRange(time.Time{}, time.Time{}, time.Time{}))
}
