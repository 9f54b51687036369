package main

import (
	"errors"
	"math"
	"sort"
)

// kcalPerKG is the energy content assumed for one kilogram of body mass
// change. 7700 kcal/kg is the conventional figure for mixed tissue.
const kcalPerKG = 7700.0

// Recommended daily offsets relative to the estimated expenditure.
const (
	surplusOffset = 300.0
	deficitOffset = 500.0
)

// smoothingSpan is the centered window size for smoothing the rolling
// estimate series.
const smoothingSpan = 7

// ErrInsufficientData is returned when a window does not contain enough
// observations to estimate expenditure (fewer than two weigh-ins, or
// both weigh-ins on the same day).
var ErrInsufficientData = errors.New("insufficient data for tdee estimate")

/* ─── Single-window estimate ─────────────────────────────────────────── */

// EstimateTDEE estimates total daily energy expenditure over a window from
// the energy-balance identity: expenditure equals mean intake minus the
// energy stored or released by body-mass change across the window.
//
//	TDEE = mean(actual kcal) − ΔweightKG × 7700 / days
//
// The weight delta runs from the first to the last weigh-in inside the
// window; days is the calendar span between those two weigh-ins. Intake is
// averaged over entries that carry actual calories, so days without a logged
// intake do not drag the mean toward zero.
func EstimateTDEE(entries []DailyEntry, win Window) (TdeeEstimate, error) {
	filtered := filterWindow(entries, win)

	type weighIn struct {
		date DateOnly
		kg   float64
	}
	var weights []weighIn
	var kcalSum float64
	var kcalN int
	for i := range filtered {
		e := &filtered[i]
		if e.WeightKG != nil {
			weights = append(weights, weighIn{e.Date, *e.WeightKG})
		}
		if e.ActualCalories != nil {
			kcalSum += *e.ActualCalories
			kcalN++
		}
	}

	if len(weights) < 2 || kcalN == 0 {
		return TdeeEstimate{}, ErrInsufficientData
	}

	first, last := weights[0], weights[len(weights)-1]
	days := int(last.date.Sub(first.date.Time).Hours() / 24)
	if days <= 0 {
		return TdeeEstimate{}, ErrInsufficientData
	}

	meanKcal := kcalSum / float64(kcalN)
	deltaKG := last.kg - first.kg
	tdee := meanKcal - deltaKG*kcalPerKG/float64(days)

	est := TdeeEstimate{
		WindowStart:        first.date,
		WindowEnd:          last.date,
		Days:               days,
		WeightDeltaKG:      round2(deltaKG),
		MeanActualCalories: round2(meanKcal),
		TDEE:               math.Round(tdee),
		SurplusTarget:      math.Round(tdee + surplusOffset),
		DeficitTarget:      math.Round(tdee - deficitOffset),
	}
	return est, nil
}

/* ─── Rolling series ─────────────────────────────────────────────────── */

// RollingTDEE produces one estimate per calendar day from the first to the
// last entry date, each computed over the trailing windowDays-day window
// ending on that day. Diary gaps still get a point as long as the window
// holds enough weigh-ins; days whose window cannot support an estimate are
// skipped.
func RollingTDEE(entries []DailyEntry, windowDays int) []TdeePoint {
	if windowDays < 2 {
		windowDays = 2
	}
	if len(entries) == 0 {
		return nil
	}

	first, last := entries[0].Date.Time, entries[0].Date.Time
	for i := range entries {
		if t := entries[i].Date.Time; t.Before(first) {
			first = t
		} else if t.After(last) {
			last = t
		}
	}

	var points []TdeePoint
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		end := DateOnly{day}
		start := DateOnly{day.AddDate(0, 0, -(windowDays - 1))}
		est, err := EstimateTDEE(entries, Window{Start: &start, End: &end})
		if err != nil {
			continue
		}
		points = append(points, TdeePoint{
			Date:               end,
			TDEE:               est.TDEE,
			WindowStart:        est.WindowStart,
			WindowEnd:          est.WindowEnd,
			MeanActualCalories: est.MeanActualCalories,
			WeightDeltaKG:      est.WeightDeltaKG,
			Days:               est.Days,
		})
	}

	smooth(points)
	return points
}

// smooth fills each point's Smoothed field with a centered moving average
// over up to smoothingSpan neighbours. Edges use whatever neighbours exist
// rather than dropping the point.
func smooth(points []TdeePoint) {
	half := smoothingSpan / 2
	for i := range points {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(points) {
			hi = len(points) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += points[j].TDEE
		}
		points[i].Smoothed = math.Round(sum / float64(hi-lo+1))
	}
}

// BuildTdeeReport bundles the whole-window estimate with the rolling series
// and its summary statistics. A report is still produced when the window
// cannot support even one estimate; its Estimate is nil and Points empty,
// which downstream rendering treats as "not enough data yet".
func BuildTdeeReport(entries []DailyEntry, win Window, windowDays int) TdeeReport {
	report := TdeeReport{}

	if est, err := EstimateTDEE(entries, win); err == nil {
		report.Estimate = &est
	}

	report.Points = RollingTDEE(filterWindow(entries, win), windowDays)
	if len(report.Points) == 0 {
		return report
	}

	values := make([]float64, len(report.Points))
	for i, p := range report.Points {
		values[i] = p.TDEE
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := math.Round(sum / float64(len(values)))

	sort.Float64s(values)
	mid := len(values) / 2
	var median float64
	if len(values)%2 == 1 {
		median = values[mid]
	} else {
		median = (values[mid-1] + values[mid]) / 2
	}
	median = math.Round(median)

	report.MeanTDEE = &mean
	report.MedianTDEE = &median
	return report
}
