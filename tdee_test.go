package main

import (
	"errors"
	"math"
	"testing"
)

// flatDays builds n consecutive daily entries starting at start, with
// weight interpolated linearly from startKG to endKG and a constant intake.
func flatDays(start string, n int, startKG, endKG, kcal float64) []DailyEntry {
	entries := make([]DailyEntry, n)
	for i := 0; i < n; i++ {
		w := startKG + (endKG-startKG)*float64(i)/float64(n-1)
		entries[i] = DailyEntry{
			Source:         "day.md",
			Date:           DateOnly{d(start).AddDate(0, 0, i)},
			WeightKG:       fptr(w),
			ActualCalories: fptr(kcal),
		}
	}
	return entries
}

/* ─── Single-window estimate ─────────────────────────────────────────── */

// TestEstimateTDEE_KnownExample verifies the estimate for a 21-day span
// with 0.1 kg lost at a steady 2359 kcal/day intake:
// 2359 + 0.1*7700/21 = 2395.67, rounded to 2396.
func TestEstimateTDEE_KnownExample(t *testing.T) {
	entries := flatDays("2025-06-01", 22, 80.0, 79.9, 2359)

	est, err := EstimateTDEE(entries, Window{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Days != 21 {
		t.Errorf("days = %d, want 21", est.Days)
	}
	if math.Abs(est.WeightDeltaKG-(-0.1)) > 1e-9 {
		t.Errorf("weight delta = %v, want -0.1", est.WeightDeltaKG)
	}
	if est.MeanActualCalories != 2359 {
		t.Errorf("mean calories = %v, want 2359", est.MeanActualCalories)
	}
	if est.TDEE != 2396 {
		t.Errorf("tdee = %v, want 2396", est.TDEE)
	}
}

// TestEstimateTDEE_Recommendations verifies the surplus and deficit
// offsets relative to the estimate.
func TestEstimateTDEE_Recommendations(t *testing.T) {
	entries := flatDays("2025-06-01", 15, 80, 80, 2500)

	est, err := EstimateTDEE(entries, Window{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.TDEE != 2500 {
		t.Fatalf("tdee = %v, want 2500 for stable weight", est.TDEE)
	}
	if est.SurplusTarget != 2800 {
		t.Errorf("surplus target = %v, want 2800", est.SurplusTarget)
	}
	if est.DeficitTarget != 2000 {
		t.Errorf("deficit target = %v, want 2000", est.DeficitTarget)
	}
}

// TestEstimateTDEE_InsufficientData covers the guard arms: no weigh-ins,
// one weigh-in, and two weigh-ins on the same day.
func TestEstimateTDEE_InsufficientData(t *testing.T) {
	cases := []struct {
		name    string
		entries []DailyEntry
	}{
		{"no entries", nil},
		{"no weights", []DailyEntry{day("2025-06-01", nil, fptr(2400))}},
		{"one weight", []DailyEntry{day("2025-06-01", fptr(80), fptr(2400))}},
		{"same-day weights", []DailyEntry{
			day("2025-06-01", fptr(80), fptr(2400)),
			day("2025-06-01", fptr(80.4), fptr(2400)),
		}},
		{"weights but no calories", []DailyEntry{
			day("2025-06-01", fptr(80), nil),
			day("2025-06-08", fptr(79.5), nil),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EstimateTDEE(tc.entries, Window{})
			if !errors.Is(err, ErrInsufficientData) {
				t.Errorf("err = %v, want ErrInsufficientData", err)
			}
		})
	}
}

// TestEstimateTDEE_WindowRestricts verifies that the window bounds which
// weigh-ins anchor the delta.
func TestEstimateTDEE_WindowRestricts(t *testing.T) {
	entries := flatDays("2025-06-01", 30, 84, 81, 2400)

	start, end := d("2025-06-10"), d("2025-06-20")
	est, err := EstimateTDEE(entries, Window{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.WindowStart != start || est.WindowEnd != end {
		t.Errorf("window = %v..%v, want %v..%v", est.WindowStart, est.WindowEnd, start, end)
	}
	if est.Days != 10 {
		t.Errorf("days = %d, want 10", est.Days)
	}
}

/* ─── Rolling series ─────────────────────────────────────────────────── */

// TestRollingTDEE verifies that the rolling series yields one point per
// day once enough history exists, with smoothed values populated.
func TestRollingTDEE(t *testing.T) {
	entries := flatDays("2025-06-01", 21, 82, 81, 2400)

	points := RollingTDEE(entries, 14)
	if len(points) == 0 {
		t.Fatal("no rolling points produced")
	}

	// Steady loss at steady intake: every window estimates above intake.
	for _, p := range points {
		if p.TDEE <= 2400 {
			t.Errorf("point %v: tdee = %v, want > 2400 while losing weight", p.Date, p.TDEE)
		}
		if p.Smoothed == 0 {
			t.Errorf("point %v: smoothed value not populated", p.Date)
		}
		if p.Days <= 0 || p.Days > 13 {
			t.Errorf("point %v: window span = %d days, want 1..13", p.Date, p.Days)
		}
	}

	// The last point's window must end on the last entry date.
	last := points[len(points)-1]
	if last.Date != d("2025-06-21") {
		t.Errorf("last point at %v, want 2025-06-21", last.Date)
	}
}

// TestRollingTDEE_GapDays verifies that the series anchors one estimate
// per calendar day, not per entry: a diary gap still gets points while the
// trailing window holds enough weigh-ins.
func TestRollingTDEE_GapDays(t *testing.T) {
	entries := flatDays("2025-06-01", 10, 82, 81.1, 2400)
	entries = append(entries, day("2025-06-20", fptr(80.5), fptr(2400)))

	points := RollingTDEE(entries, 14)

	// June 1 has only one weigh-in in its window; every day from June 2
	// through June 20 supports an estimate, including the June 11-19 gap.
	if len(points) != 19 {
		t.Fatalf("got %d points, want 19 (one per calendar day)", len(points))
	}

	var gapDay *TdeePoint
	for i := range points {
		if points[i].Date == d("2025-06-15") {
			gapDay = &points[i]
			break
		}
	}
	if gapDay == nil {
		t.Fatal("no estimate anchored at 2025-06-15 despite a viable window")
	}
	if gapDay.WindowEnd != d("2025-06-10") {
		t.Errorf("gap-day window ends at %v, want last weigh-in 2025-06-10", gapDay.WindowEnd)
	}
}

// TestBuildTdeeReport verifies the bundled report: overall estimate,
// series, and series statistics.
func TestBuildTdeeReport(t *testing.T) {
	entries := flatDays("2025-06-01", 28, 83, 82, 2450)

	report := BuildTdeeReport(entries, Window{}, 14)
	if report.Estimate == nil {
		t.Fatal("report has no overall estimate")
	}
	if len(report.Points) == 0 {
		t.Fatal("report has no rolling points")
	}
	if report.MeanTDEE == nil || report.MedianTDEE == nil {
		t.Fatal("report missing series statistics")
	}
	if *report.MeanTDEE < 2450 {
		t.Errorf("mean tdee = %v, want above intake while losing weight", *report.MeanTDEE)
	}
}

// TestBuildTdeeReport_Empty verifies the degraded report for data that
// supports no estimate at all.
func TestBuildTdeeReport_Empty(t *testing.T) {
	report := BuildTdeeReport([]DailyEntry{day("2025-06-01", fptr(80), fptr(2400))}, Window{}, 14)
	if report.Estimate != nil || len(report.Points) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
	if report.MeanTDEE != nil {
		t.Errorf("mean tdee = %v, want nil", *report.MeanTDEE)
	}
}
