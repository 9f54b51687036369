package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Hours wraps time.Duration to serialize as decimal hours in JSON
// ("7:30" sleep shows up as 7.5, matching how the rest of the numeric
// fields are stored in one canonical system).
type Hours struct{ time.Duration }

func (h Hours) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%.2f", h.Hours())), nil
}

func (h *Hours) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	h.Duration = time.Duration(f * float64(time.Hour))
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// RawEntry is one diary day as unstructured text, produced by file
// discovery. Source is the file name and doubles as a date hint when the
// header has no date line.
type RawEntry struct {
	Source string
	Text   string
}

// MealMention is one logged food occurrence exactly as written:
// "125 g Vollkornreis" becomes {RawName: "Vollkornreis", Qty: 125, Unit: "g"}.
type MealMention struct {
	RawName string  `json:"raw_name"`
	Qty     float64 `json:"qty"`
	Unit    string  `json:"unit"`
}

// MatchKind tags how a mention was resolved against the food database.
type MatchKind string

const (
	MatchExact     MatchKind = "exact"
	MatchAlias     MatchKind = "alias"
	MatchFuzzy     MatchKind = "fuzzy"
	MatchUnmatched MatchKind = "unmatched"
)

// Reason codes for unmatched contributions. A name that isn't in the
// database is a database gap; an unsupported unit is a logging problem,
// so the two are never merged in reporting.
const (
	ReasonNoMatch         = "no_match"
	ReasonUnsupportedUnit = "unsupported_unit"
)

// ResolvedContribution is the nutrition contributed by one mention.
// Unmatched mentions carry zero nutrition and a reason code.
type ResolvedContribution struct {
	Food       string    `json:"food,omitempty"`
	Calories   float64   `json:"calories"`
	ProteinG   float64   `json:"protein_g"`
	FatG       float64   `json:"fat_g"`
	CarbsG     float64   `json:"carbs_g"`
	Kind       MatchKind `json:"kind"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason,omitempty"`
}

// DailyEntry is one normalized diary day. Nullable metrics use pointers so
// "not logged" is distinguishable from zero and JSON omits them naturally.
// All numeric fields are canonical (kg, kcal, grams) regardless of how the
// source text wrote them; normalization happens once, at parse time.
type DailyEntry struct {
	Source string   `json:"source"`
	Date   DateOnly `json:"date"`

	WeightKG   *float64 `json:"weight_kg,omitempty"`
	BodyfatPct *float64 `json:"bodyfat_pct,omitempty"`
	Sleep      *Hours   `json:"sleep_h,omitempty"`

	TargetCalories *float64 `json:"target_calories,omitempty"`
	TargetProteinG *float64 `json:"target_protein_g,omitempty"`
	TargetFatG     *float64 `json:"target_fat_g,omitempty"`
	TargetCarbsG   *float64 `json:"target_carbs_g,omitempty"`

	// Actual intake as reported by an external tracker in the header.
	// When absent and the day has resolved meals, filled from the consumed totals.
	ActualCalories *float64 `json:"actual_calories,omitempty"`
	ActualProteinG *float64 `json:"actual_protein_g,omitempty"`
	ActualFatG     *float64 `json:"actual_fat_g,omitempty"`
	ActualCarbsG   *float64 `json:"actual_carbs_g,omitempty"`

	Comment string `json:"comment,omitempty"`

	// Extra holds unknown header keys verbatim so nothing is dropped at the
	// parse boundary.
	Extra map[string]string `json:"extra,omitempty"`

	Mentions      []MealMention          `json:"meals,omitempty"`
	Contributions []ResolvedContribution `json:"contributions,omitempty"`

	// Totals summed from the resolved contributions of this day.
	ConsumedCalories float64 `json:"consumed_calories"`
	ConsumedProteinG float64 `json:"consumed_protein_g"`
	ConsumedFatG     float64 `json:"consumed_fat_g"`
	ConsumedCarbsG   float64 `json:"consumed_carbs_g"`
}

// MissingFoodReport counts unmatched food names (normalized) per run.
// This is the mechanism by which database gaps surface to the maintainer.
type MissingFoodReport map[string]int

// ParseError is a fatal per-entry failure: the entry is dropped from the
// run, the rest of the batch continues.
type ParseError struct {
	Source string `json:"source"`
	Field  string `json:"field"`
	Raw    string `json:"raw"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: field %q: cannot parse %q", e.Source, e.Field, e.Raw)
}

// MentionWarning is a recoverable per-item problem: the mention is skipped,
// the entry is still produced.
type MentionWarning struct {
	Source string `json:"source"`
	Line   string `json:"line"`
	Reason string `json:"reason"`
}

// RunResult is everything one pipeline invocation produced: the resolved,
// date-sorted entries plus all collected errors and warnings. Callers get
// the full picture rather than having to scrape logs.
type RunResult struct {
	ID          string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Entries     []DailyEntry      `json:"entries"`
	Missing     MissingFoodReport `json:"missing_foods"`
	Errors      []ParseError      `json:"errors,omitempty"`
	Warnings    []MentionWarning  `json:"warnings,omitempty"`
}

/* ─── Derived views ──────────────────────────────────────────────────── */

// FieldStats is the mean/median of one metric over the entries that have it.
// Mean and Median are nil when no entry in the window carries the field.
type FieldStats struct {
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Count  int      `json:"count"`
}

// AggregateSummary is a read-only view over a window of entries.
// Computed on demand; identical input always yields identical output.
type AggregateSummary struct {
	Start      DateOnly `json:"start"`
	End        DateOnly `json:"end"`
	EntryCount int      `json:"entry_count"`

	WeightKG         FieldStats `json:"weight_kg"`
	BodyfatPct       FieldStats `json:"bodyfat_pct"`
	SleepH           FieldStats `json:"sleep_h"`
	TargetCalories   FieldStats `json:"target_calories"`
	ActualCalories   FieldStats `json:"actual_calories"`
	ActualProteinG   FieldStats `json:"actual_protein_g"`
	ActualFatG       FieldStats `json:"actual_fat_g"`
	ActualCarbsG     FieldStats `json:"actual_carbs_g"`
	ConsumedCalories FieldStats `json:"consumed_calories"`

	// Last is the entry with the maximum date in the window. On duplicate
	// dates the first-encountered entry wins and the date is flagged below.
	Last           *DailyEntry `json:"last,omitempty"`
	DuplicateDates []DateOnly  `json:"duplicate_dates,omitempty"`
}

// TdeeEstimate is a maintenance-calorie estimate over one window, plus the
// derived surplus/deficit targets. Immutable once computed.
type TdeeEstimate struct {
	WindowStart DateOnly `json:"window_start"`
	WindowEnd   DateOnly `json:"window_end"`
	Days        int      `json:"days"`

	WeightDeltaKG      float64 `json:"weight_delta_kg"`
	MeanActualCalories float64 `json:"mean_actual_calories"`
	TDEE               float64 `json:"tdee"`

	SurplusTarget float64 `json:"surplus_target"`
	DeficitTarget float64 `json:"deficit_target"`
}

// TdeePoint is one rolling-window estimate, anchored at Date.
type TdeePoint struct {
	Date     DateOnly `json:"date"`
	TDEE     float64  `json:"tdee"`
	Smoothed float64  `json:"tdee_smooth"`

	WindowStart        DateOnly `json:"window_start"`
	WindowEnd          DateOnly `json:"window_end"`
	MeanActualCalories float64  `json:"mean_cal"`
	WeightDeltaKG      float64  `json:"delta_w"`
	Days               int      `json:"days"`
}

// TdeeReport bundles the whole-window estimate with the rolling series.
// Estimate is nil when the window has insufficient data; the series may
// still contain points from sub-windows that do.
type TdeeReport struct {
	Estimate   *TdeeEstimate `json:"estimate,omitempty"`
	Points     []TdeePoint   `json:"estimates,omitempty"`
	MeanTDEE   *float64      `json:"tdee_mean,omitempty"`
	MedianTDEE *float64      `json:"tdee_median,omitempty"`
}
