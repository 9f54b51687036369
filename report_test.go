package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

/* ─── Markdown rendering ─────────────────────────────────────────────── */

// TestProtocolMarkdown verifies the table shape: fixed columns plus the
// sorted union of extra keys, one row per entry, escaped cells.
func TestProtocolMarkdown(t *testing.T) {
	e1 := day("2025-06-01", fptr(80), fptr(2400))
	e1.Extra = map[string]string{"mood": "good | great"}
	e2 := day("2025-06-02", fptr(79.8), nil)
	e2.Extra = map[string]string{"gym": "push"}

	md := ProtocolMarkdown([]DailyEntry{e1, e2})
	lines := strings.Split(strings.TrimSpace(md), "\n")

	// Title, blank, header, separator, two rows.
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), md)
	}
	header := lines[2]
	if !strings.Contains(header, "| date |") || !strings.Contains(header, "| gym | mood |") {
		t.Errorf("header = %q, want fixed columns then sorted extras", header)
	}
	if !strings.Contains(lines[4], "| 2025-06-01 | 80 |") {
		t.Errorf("first row = %q", lines[4])
	}
	if !strings.Contains(lines[4], `good \| great`) {
		t.Errorf("pipe not escaped in %q", lines[4])
	}
}

// TestTdeeMarkdown verifies the populated summary sections and the
// degraded not-enough-data form.
func TestTdeeMarkdown(t *testing.T) {
	entries := flatDays("2025-06-01", 22, 80.0, 79.9, 2359)
	report := BuildTdeeReport(entries, Window{}, 14)

	md := TdeeMarkdown(report)
	for _, want := range []string{
		"# TDEE Summary",
		"## Key figures",
		"## Latest estimate",
		"**2396 kcal/day**",
		"## Recommendations",
		"**2696 kcal/day**",
		"**1896 kcal/day**",
		"## Methodology",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("summary missing %q:\n%s", want, md)
		}
	}

	empty := TdeeMarkdown(TdeeReport{})
	if !strings.Contains(empty, "Not enough data") {
		t.Errorf("degraded summary = %q", empty)
	}
}

// TestTrimFloat verifies the cell formatting rules.
func TestTrimFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{80, "80"},
		{79.8, "79.8"},
		{79.85, "79.85"},
		{2400, "2400"},
	}
	for _, tc := range cases {
		if got := trimFloat(tc.in); got != tc.want {
			t.Errorf("trimFloat(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

/* ─── Artifact files ─────────────────────────────────────────────────── */

// TestWriteRunArtifacts verifies that the full artifact set lands on disk
// and the JSON files parse back.
func TestWriteRunArtifacts(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "outputs")

	run := &RunResult{
		ID:          "test-run",
		GeneratedAt: time.Now().UTC(),
		Entries:     []DailyEntry{day("2025-06-01", fptr(80), fptr(2400))},
		Missing:     MissingFoodReport{"zzqwxyv": 2},
	}
	summary := Aggregate(run.Entries, Window{})
	tdee := BuildTdeeReport(run.Entries, Window{}, 14)

	if err := WriteRunArtifacts(outDir, run, summary, tdee); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{
		"run.json", "summary.json", "missing_foods.json", "tdee.json",
		"protocol.md", "tdee_summary.md",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("artifact %s: %v", name, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(outDir, "missing_foods.json"))
	if err != nil {
		t.Fatal(err)
	}
	var missing MissingFoodReport
	if err := json.Unmarshal(raw, &missing); err != nil {
		t.Fatalf("missing_foods.json does not parse: %v", err)
	}
	if missing["zzqwxyv"] != 2 {
		t.Errorf("missing_foods.json = %v", missing)
	}
}
