package main

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Pipeline runs the full ingestion flow: parse every raw entry, resolve its
// meal mentions, and produce one RunResult. Each invocation owns its own
// missing-food report and error lists; the food database is the only shared
// (read-only) input.
type Pipeline struct {
	resolver *Resolver
}

func NewPipeline(db *FoodDB, fuzzyThreshold float64) *Pipeline {
	return &Pipeline{resolver: NewResolver(db, fuzzyThreshold)}
}

// Run processes a batch of raw entries. The unit of failure isolation is
// the single entry: a ParseError drops that entry and is collected, a bad
// mention drops that mention and is collected, and nothing aborts the rest
// of the batch. The context is honored between entries so a caller can
// abandon a long batch.
func (p *Pipeline) Run(ctx context.Context, raws []RawEntry) (*RunResult, error) {
	res := &RunResult{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Missing:     MissingFoodReport{},
	}

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, perr, warnings := parseEntry(raw)
		res.Warnings = append(res.Warnings, warnings...)
		if perr != nil {
			res.Errors = append(res.Errors, *perr)
			continue
		}

		p.resolveEntry(entry, res)
		res.Entries = append(res.Entries, *entry)
	}

	// Input order is whatever discovery produced; downstream consumers
	// need a fixed date order for deterministic summaries. Stable so
	// duplicate dates keep their first-encountered precedence.
	sort.SliceStable(res.Entries, func(i, j int) bool {
		return res.Entries[i].Date.Before(res.Entries[j].Date.Time)
	})

	return res, nil
}

// resolveEntry computes every mention's contribution and the day's consumed
// totals, then backfills the actual_* fields for days where no tracker
// value was logged but meals were.
func (p *Pipeline) resolveEntry(entry *DailyEntry, res *RunResult) {
	for _, m := range entry.Mentions {
		c := p.resolver.Resolve(m, res.Missing)
		if c.Reason == ReasonUnsupportedUnit {
			res.Warnings = append(res.Warnings, MentionWarning{
				Source: entry.Source,
				Line:   m.RawName,
				Reason: ReasonUnsupportedUnit,
			})
		}
		entry.Contributions = append(entry.Contributions, c)
		entry.ConsumedCalories += c.Calories
		entry.ConsumedProteinG += c.ProteinG
		entry.ConsumedFatG += c.FatG
		entry.ConsumedCarbsG += c.CarbsG
	}

	entry.ConsumedCalories = round2(entry.ConsumedCalories)
	entry.ConsumedProteinG = round2(entry.ConsumedProteinG)
	entry.ConsumedFatG = round2(entry.ConsumedFatG)
	entry.ConsumedCarbsG = round2(entry.ConsumedCarbsG)

	if len(entry.Mentions) == 0 {
		return
	}
	if entry.ActualCalories == nil {
		v := entry.ConsumedCalories
		entry.ActualCalories = &v
	}
	if entry.ActualProteinG == nil {
		v := entry.ConsumedProteinG
		entry.ActualProteinG = &v
	}
	if entry.ActualFatG == nil {
		v := entry.ConsumedFatG
		entry.ActualFatG = &v
	}
	if entry.ActualCarbsG == nil {
		v := entry.ConsumedCarbsG
		entry.ActualCarbsG = &v
	}
}
