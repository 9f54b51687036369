package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// writeJSON writes v as indented JSON to path, creating parent directories
// as needed.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteRunArtifacts writes the full artifact set for a run under outDir:
// run.json, summary.json, missing_foods.json, tdee.json, protocol.md and
// tdee_summary.md.
func WriteRunArtifacts(outDir string, run *RunResult, summary AggregateSummary, tdee TdeeReport) error {
	if err := writeJSON(filepath.Join(outDir, "run.json"), run); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "summary.json"), summary); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "missing_foods.json"), run.Missing); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "tdee.json"), tdee); err != nil {
		return err
	}

	protocol := filepath.Join(outDir, "protocol.md")
	if err := os.WriteFile(protocol, []byte(ProtocolMarkdown(run.Entries)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", protocol, err)
	}
	tdeeMD := filepath.Join(outDir, "tdee_summary.md")
	if err := os.WriteFile(tdeeMD, []byte(TdeeMarkdown(tdee)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tdeeMD, err)
	}
	return nil
}

/* ─── Protocol table ─────────────────────────────────────────────────── */

// protocolColumns is the fixed leading column order; extra header keys
// follow, sorted, so the column set is the union over all entries.
var protocolColumns = []string{
	"date", "weight_kg", "bodyfat_pct", "sleep_h",
	"target_calories", "actual_calories",
	"actual_protein_g", "actual_fat_g", "actual_carbs_g",
	"comment",
}

// ProtocolMarkdown renders all entries as one markdown pipe table, one row
// per entry in date order. Columns are the fixed metric set plus the sorted
// union of every Extra key seen; cells for absent values stay empty.
func ProtocolMarkdown(entries []DailyEntry) string {
	extraSet := map[string]bool{}
	for i := range entries {
		for k := range entries[i].Extra {
			extraSet[k] = true
		}
	}
	extras := make([]string, 0, len(extraSet))
	for k := range extraSet {
		extras = append(extras, k)
	}
	sort.Strings(extras)

	cols := append(append([]string(nil), protocolColumns...), extras...)

	var b strings.Builder
	b.WriteString("# Protocol\n\n")
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")

	for i := range entries {
		e := &entries[i]
		row := make([]string, 0, len(cols))
		row = append(row,
			e.Date.Format("2006-01-02"),
			fmtPtr(e.WeightKG),
			fmtPtr(e.BodyfatPct),
			fmtHours(e.Sleep),
			fmtPtr(e.TargetCalories),
			fmtPtr(e.ActualCalories),
			fmtPtr(e.ActualProteinG),
			fmtPtr(e.ActualFatG),
			fmtPtr(e.ActualCarbsG),
			escapeCell(e.Comment),
		)
		for _, k := range extras {
			row = append(row, escapeCell(e.Extra[k]))
		}
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}

func fmtPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return trimFloat(*v)
}

func fmtHours(h *Hours) string {
	if h == nil {
		return ""
	}
	return trimFloat(round2(h.Hours()))
}

// trimFloat prints a float without trailing zeros, keeping at most two
// decimals. Whole numbers print without a decimal point.
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// escapeCell makes a free-text value safe inside a pipe table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

/* ─── TDEE summary ───────────────────────────────────────────────────── */

// TdeeMarkdown renders the estimate report as a short human-readable
// summary: the estimation range, mean and median of the rolling series,
// the latest window estimate, and bulk/cut recommendations.
func TdeeMarkdown(report TdeeReport) string {
	var b strings.Builder
	b.WriteString("# TDEE Summary\n\n")

	if len(report.Points) == 0 && report.Estimate == nil {
		b.WriteString("Not enough data yet: at least two weigh-ins on different days ")
		b.WriteString("and logged calories are required.\n")
		return b.String()
	}

	if n := len(report.Points); n > 0 {
		first, last := report.Points[0], report.Points[n-1]
		fmt.Fprintf(&b, "**Estimation range:** %s to %s\n\n",
			first.WindowStart.Format("2006-01-02"), last.WindowEnd.Format("2006-01-02"))
		fmt.Fprintf(&b, "**Estimates:** %d\n\n", n)
	}

	if report.MeanTDEE != nil && report.MedianTDEE != nil {
		b.WriteString("## Key figures\n\n")
		fmt.Fprintf(&b, "- Mean estimated TDEE: **%.0f kcal/day**\n", *report.MeanTDEE)
		fmt.Fprintf(&b, "- Median estimated TDEE: **%.0f kcal/day**\n\n", *report.MedianTDEE)
	}

	if est := report.Estimate; est != nil {
		b.WriteString("## Latest estimate\n\n")
		fmt.Fprintf(&b, "- Window: %s to %s (%d days)\n",
			est.WindowStart.Format("2006-01-02"), est.WindowEnd.Format("2006-01-02"), est.Days)
		fmt.Fprintf(&b, "- Estimated TDEE: **%.0f kcal/day**\n", est.TDEE)
		fmt.Fprintf(&b, "- Mean logged calories in window: %.0f kcal/day\n", est.MeanActualCalories)
		fmt.Fprintf(&b, "- Weight change in window: %+.2f kg\n\n", est.WeightDeltaKG)

		b.WriteString("## Recommendations\n\n")
		fmt.Fprintf(&b, "- Lean bulk: **%.0f kcal/day** (TDEE + %.0f)\n", est.SurplusTarget, surplusOffset)
		fmt.Fprintf(&b, "- Cut: **%.0f kcal/day** (TDEE - %.0f)\n\n", est.DeficitTarget, deficitOffset)
	}

	b.WriteString("## Methodology\n\n")
	b.WriteString("- Estimates come from weight change over time plus logged `actual_calories`, ")
	b.WriteString("assuming 1 kg of body mass is about 7700 kcal.\n")
	b.WriteString("- Short-term fluctuations (water, glycogen) distort individual windows; ")
	b.WriteString("longer observation periods give more robust values.\n")
	return b.String()
}
