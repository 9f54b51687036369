package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

/* ─── Header key normalization ───────────────────────────────────────── */

// canonicalKeys maps the header-key variants seen in real diary files to
// canonical field names. Keys not listed here are preserved verbatim in the
// entry's Extra map, never dropped.
var canonicalKeys = map[string]string{
	"date":               "date",
	"weight":             "weight_kg",
	"weight_kg":          "weight_kg",
	"bodyfat":            "bodyfat_pct",
	"bodyfat_pct":        "bodyfat_pct",
	"bodyfat_percentage": "bodyfat_pct",
	"calories":           "target_calories",
	"target_calories":    "target_calories",
	"target_protein":     "target_protein_g",
	"target_protein_g":   "target_protein_g",
	"target_fat":         "target_fat_g",
	"target_fat_g":       "target_fat_g",
	"target_carbs":       "target_carbs_g",
	"target_carbs_g":     "target_carbs_g",
	"actual_calories":    "actual_calories",
	"actual_protein":     "actual_protein_g",
	"actual_protein_g":   "actual_protein_g",
	"actual_fat":         "actual_fat_g",
	"actual_fat_g":       "actual_fat_g",
	"actual_carbs":       "actual_carbs_g",
	"actual_carbs_g":     "actual_carbs_g",
	"sleep":              "sleep",
	"comment":            "comment",
}

var (
	numberRe   = regexp.MustCompile(`[+-]?[0-9]+\.?[0-9]*`)
	clockRe    = regexp.MustCompile(`^([0-9]{1,2}):([0-9]{2})$`)
	dateHintRe = regexp.MustCompile(`[0-9]{4}-[0-9]{2}-[0-9]{2}`)

	// delimiterRe matches header fence lines: "---" but also the fancy
	// punctuation some note apps insert ("⸻").
	delimiterRe = regexp.MustCompile(`^[^\w\s]+$`)

	bulletRe = regexp.MustCompile(`^[-*]\s+`)

	// mealLineRe captures "<qty> [unit] <name>", e.g. "25 g oats",
	// "125g Vollkornreis", "0,5 kg Quark". The unit is optional; bare
	// "2 Bananen" style lines default to the food's own basis unit.
	mealLineRe = regexp.MustCompile(`(?i)^([+-]?[0-9]+[.,]?[0-9]*)\s*(g\.?|gramm|kg|mg|ml|stk|el|tl)?\s+(.+)$`)

	headingRe = regexp.MustCompile(`(?i)^(?:#{1,6}\s*|\*\*)?\s*(status|agenda)\s*(?:\*\*)?\s*$`)
)

// maxCommentLen bounds the comment captured from a Status/Agenda section.
const maxCommentLen = 120

/* ─── Value normalization ────────────────────────────────────────────── */

// parseNumber extracts a canonical float from free-form numeric text.
// Accepts "." or "," as the decimal separator and ignores surrounding unit
// suffixes: "70,9 kg" -> 70.9, "2.359 " -> 2.359.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseClock converts "H:MM" notation to a duration: "7:30" -> 7h30m.
// Plain numbers are read as decimal hours so "sleep: 7.5" also works.
func parseClock(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if m := clockRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if min >= 60 {
			return 0, false
		}
		return time.Duration(h)*time.Hour + time.Duration(min)*time.Minute, true
	}
	if f, ok := parseNumber(s); ok && f >= 0 {
		return time.Duration(f * float64(time.Hour)), true
	}
	return 0, false
}

/* ─── Header extraction ──────────────────────────────────────────────── */

// splitHeader separates the leading metadata block from the body. Two forms
// are accepted: a fenced frontmatter block (between punctuation-only
// delimiter lines) and a plain "key: value" block terminated by the first
// blank line. Returns the raw key -> value map plus the remaining body text.
func splitHeader(text string) (map[string]string, string) {
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i < len(lines) && delimiterRe.MatchString(strings.TrimSpace(lines[i])) {
		for j := i + 1; j < len(lines); j++ {
			if s := strings.TrimSpace(lines[j]); s != "" && delimiterRe.MatchString(s) {
				block := strings.Join(lines[i+1:j], "\n")
				body := strings.Join(lines[j+1:], "\n")
				return parseHeaderBlock(block), body
			}
		}
	}

	// Plain header: key: value lines from the top until the first blank or
	// non key-value line. Files that open with meal lines have no header.
	header := map[string]string{}
	end := len(lines)
	for n := i; n < len(lines); n++ {
		line := strings.TrimSpace(lines[n])
		if line == "" {
			end = n
			break
		}
		k, v, found := strings.Cut(line, ":")
		if !found || bulletRe.MatchString(line) || mealLineRe.MatchString(line) {
			end = n - 1
			break
		}
		header[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if end >= len(lines)-1 {
		return header, ""
	}
	return header, strings.Join(lines[end+1:], "\n")
}

// parseHeaderBlock reads a fenced header as YAML, falling back to naive
// "key: value" splitting when the block isn't valid YAML.
func parseHeaderBlock(block string) map[string]string {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err == nil && raw != nil {
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			out[k] = stringifyYAML(v)
		}
		return out
	}

	out := map[string]string{}
	for _, line := range strings.Split(block, "\n") {
		k, v, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// stringifyYAML renders a frontmatter value back to text. yaml.v3 resolves
// unquoted ISO dates into time.Time, which must come back out as YYYY-MM-DD.
func stringifyYAML(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("2006-01-02")
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

/* ─── Entry parsing ──────────────────────────────────────────────────── */

// parseEntry converts one raw diary file into a DailyEntry. A nil entry
// with a non-nil *ParseError means the whole entry is dropped; warnings
// cover skipped meal lines on an otherwise valid entry.
func parseEntry(raw RawEntry) (*DailyEntry, *ParseError, []MentionWarning) {
	header, body := splitHeader(raw.Text)

	entry := &DailyEntry{Source: raw.Source}
	var warnings []MentionWarning

	// Normalize header keys once, keeping unknown ones.
	meta := make(map[string]string, len(header))
	for k, v := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), " ", "_")
		if canon, known := canonicalKeys[key]; known {
			meta[canon] = v
		} else {
			if entry.Extra == nil {
				entry.Extra = map[string]string{}
			}
			entry.Extra[key] = v
		}
	}

	// Date is mandatory. The header wins; a YYYY-MM-DD in the source name
	// (the usual file naming scheme) is the fallback.
	dateRaw := meta["date"]
	if dateRaw == "" {
		dateRaw = dateHintRe.FindString(raw.Source)
	}
	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		return nil, &ParseError{Source: raw.Source, Field: "date", Raw: dateRaw}, warnings
	}
	entry.Date = DateOnly{date.UTC()}

	// Typed numeric fields. A present-but-malformed value is a hard error
	// for the entry; silently defaulting would poison every statistic
	// downstream.
	numericFields := []struct {
		key  string
		dest **float64
	}{
		{"weight_kg", &entry.WeightKG},
		{"bodyfat_pct", &entry.BodyfatPct},
		{"target_calories", &entry.TargetCalories},
		{"target_protein_g", &entry.TargetProteinG},
		{"target_fat_g", &entry.TargetFatG},
		{"target_carbs_g", &entry.TargetCarbsG},
		{"actual_calories", &entry.ActualCalories},
		{"actual_protein_g", &entry.ActualProteinG},
		{"actual_fat_g", &entry.ActualFatG},
		{"actual_carbs_g", &entry.ActualCarbsG},
	}
	for _, f := range numericFields {
		v, present := meta[f.key]
		if !present || v == "" {
			continue
		}
		n, ok := parseNumber(v)
		if !ok {
			return nil, &ParseError{Source: raw.Source, Field: f.key, Raw: v}, warnings
		}
		*f.dest = &n
	}

	if v, present := meta["sleep"]; present && v != "" {
		d, ok := parseClock(v)
		if !ok {
			return nil, &ParseError{Source: raw.Source, Field: "sleep", Raw: v}, warnings
		}
		entry.Sleep = &Hours{d}
	}

	entry.Comment = meta["comment"]

	// Body: meal mentions plus an optional Status/Agenda paragraph.
	warnings = append(warnings, parseBody(entry, raw.Source, body)...)

	return entry, nil, warnings
}

// parseBody scans the body lines for meal mentions and the status comment.
func parseBody(entry *DailyEntry, source, body string) []MentionWarning {
	var warnings []MentionWarning
	lines := strings.Split(body, "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if headingRe.MatchString(line) && entry.Comment == "" {
			entry.Comment = collectStatus(lines[i+1:])
			continue
		}

		wasBullet := bulletRe.MatchString(line)
		line = bulletRe.ReplaceAllString(line, "")

		m := mealLineRe.FindStringSubmatch(line)
		if m == nil {
			// A bulleted line with digits was meant to be a meal; anything
			// else is prose and of no interest here.
			if wasBullet && strings.ContainsAny(line, "0123456789") {
				warnings = append(warnings, MentionWarning{
					Source: source, Line: line, Reason: "unparseable meal line",
				})
			}
			continue
		}

		qty, ok := parseNumber(m[1])
		if !ok || qty < 0 {
			warnings = append(warnings, MentionWarning{
				Source: source, Line: line, Reason: "invalid quantity",
			})
			continue
		}

		entry.Mentions = append(entry.Mentions, MealMention{
			RawName: strings.TrimSpace(m[3]),
			Qty:     qty,
			Unit:    strings.TrimSpace(m[2]),
		})
	}

	return warnings
}

// collectStatus gathers the non-empty lines following a Status/Agenda
// heading into a single comment, truncated to a readable length.
func collectStatus(rest []string) string {
	var buf []string
	for _, line := range rest {
		s := strings.TrimSpace(line)
		if s == "" {
			break
		}
		if strings.HasPrefix(s, "#") || strings.HasPrefix(s, "**") {
			break
		}
		buf = append(buf, s)
	}
	status := strings.Join(buf, " ")
	if len(status) > maxCommentLen {
		status = status[:maxCommentLen-3] + "..."
	}
	return status
}
