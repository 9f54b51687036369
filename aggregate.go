package main

import "sort"

// Window is a closed date range; a nil bound is unbounded on that side.
type Window struct {
	Start *DateOnly
	End   *DateOnly
}

func (w Window) contains(d DateOnly) bool {
	if w.Start != nil && d.Before(w.Start.Time) {
		return false
	}
	if w.End != nil && d.After(w.End.Time) {
		return false
	}
	return true
}

// filterWindow returns the entries inside the window, preserving order.
func filterWindow(entries []DailyEntry, win Window) []DailyEntry {
	out := make([]DailyEntry, 0, len(entries))
	for _, e := range entries {
		if win.contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// Aggregate folds a date-ordered entry sequence into summary statistics
// over the window. Pure function of its inputs: the same sequence and
// window always produce the identical summary.
func Aggregate(entries []DailyEntry, win Window) AggregateSummary {
	filtered := filterWindow(entries, win)

	summary := AggregateSummary{EntryCount: len(filtered)}
	if len(filtered) == 0 {
		return summary
	}

	summary.Start = filtered[0].Date
	summary.End = filtered[len(filtered)-1].Date

	summary.WeightKG = statsOf(filtered, func(e *DailyEntry) *float64 { return e.WeightKG })
	summary.BodyfatPct = statsOf(filtered, func(e *DailyEntry) *float64 { return e.BodyfatPct })
	summary.SleepH = statsOf(filtered, func(e *DailyEntry) *float64 {
		if e.Sleep == nil {
			return nil
		}
		h := e.Sleep.Hours()
		return &h
	})
	summary.TargetCalories = statsOf(filtered, func(e *DailyEntry) *float64 { return e.TargetCalories })
	summary.ActualCalories = statsOf(filtered, func(e *DailyEntry) *float64 { return e.ActualCalories })
	summary.ActualProteinG = statsOf(filtered, func(e *DailyEntry) *float64 { return e.ActualProteinG })
	summary.ActualFatG = statsOf(filtered, func(e *DailyEntry) *float64 { return e.ActualFatG })
	summary.ActualCarbsG = statsOf(filtered, func(e *DailyEntry) *float64 { return e.ActualCarbsG })
	summary.ConsumedCalories = statsOf(filtered, func(e *DailyEntry) *float64 {
		v := e.ConsumedCalories
		return &v
	})

	summary.Last, summary.DuplicateDates = lastEntry(filtered)

	return summary
}

// statsOf computes mean and median over only the entries that carry the
// field. Entries without it stay out of the denominator entirely; absence
// is not zero intake.
func statsOf(entries []DailyEntry, get func(*DailyEntry) *float64) FieldStats {
	var values []float64
	for i := range entries {
		if v := get(&entries[i]); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return FieldStats{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = sorted[mid]
	} else {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return FieldStats{Mean: &mean, Median: &median, Count: len(values)}
}

// lastEntry picks the entry with the maximum date. Duplicate dates are a
// data-integrity problem worth surfacing: each duplicated date is flagged
// once, and the first-encountered entry for a date always wins, so the
// result is stable no matter how often the run repeats.
func lastEntry(entries []DailyEntry) (*DailyEntry, []DateOnly) {
	var last *DailyEntry
	seen := map[string]bool{}
	flagged := map[string]bool{}
	var duplicates []DateOnly

	for i := range entries {
		e := &entries[i]
		key := e.Date.Format("2006-01-02")
		if seen[key] {
			if !flagged[key] {
				flagged[key] = true
				duplicates = append(duplicates, e.Date)
			}
			continue
		}
		seen[key] = true
		if last == nil || e.Date.After(last.Date.Time) {
			last = e
		}
	}

	if last == nil {
		return nil, duplicates
	}
	cp := *last
	return &cp, duplicates
}
