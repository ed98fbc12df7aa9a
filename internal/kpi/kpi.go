// Package kpi derives monthly inventory indicators from the rebuilt
// inventory series.
package kpi

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/timeseries"
)

// MonthLayout renders the month column.
const MonthLayout = "2006-01"

// Row holds the indicators of one month. Every value is rounded to two
// decimals; undefined ratios are reported as 0.
type Row struct {
	Month            string
	Inflow           float64
	Outflow          float64
	Level            float64
	AverageInventory float64
	Turnover         float64
	DaysOnHand       float64
	InflowMoM        float64
	OutflowMoM       float64
	LevelMoM         float64
}

// Compute derives the indicators for every month and keeps the months from
// start's month to end's month. Zero bounds are open.
//
// The average inventory of a month is the mean of its final level and the
// previous month's final level. It is undefined for the first month, whose
// turnover is therefore 0. The opening level of a month is not used: after a
// clamp on its first day it differs from the previous closing level.
func Compute(months []timeseries.Month, start, end time.Time) []Row {
	var out []Row
	for i, m := range months {
		avg := math.NaN()
		if i > 0 {
			avg = (m.Final + months[i-1].Final) / 2
		}
		row := Row{
			Month:            m.Month.Format(MonthLayout),
			Inflow:           round(m.Inflow),
			Outflow:          round(m.Outflow),
			Level:            round(m.Final),
			AverageInventory: round(avg),
			Turnover:         round(ratio(m.Outflow, avg)),
			DaysOnHand:       round(daysOnHand(m)),
		}
		if i > 0 {
			prev := months[i-1]
			row.InflowMoM = round(pctChange(prev.Inflow, m.Inflow))
			row.OutflowMoM = round(pctChange(prev.Outflow, m.Outflow))
			row.LevelMoM = round(pctChange(prev.Final, m.Final))
		}
		if inMonths(m.Month, start, end) {
			out = append(out, row)
		}
	}
	return out
}

func daysOnHand(m timeseries.Month) float64 {
	if m.Outflow == 0 {
		return 0
	}
	return ratio(m.Final, m.Outflow/float64(daysIn(m.Month)))
}

func daysIn(month time.Time) int {
	return records.MonthStart(month).AddDate(0, 1, -1).Day()
}

// ratio divides, mapping undefined and infinite results to 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func pctChange(prev, cur float64) float64 {
	return ratio(cur-prev, prev) * 100
}

func round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func inMonths(month, start, end time.Time) bool {
	m := records.MonthStart(month)
	if !start.IsZero() && m.Before(records.MonthStart(start)) {
		return false
	}
	if !end.IsZero() && m.After(records.MonthStart(end)) {
		return false
	}
	return true
}
