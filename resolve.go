package main

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unitFactors converts a written mass unit into grams, the database basis.
// Anything not in this table (volumes, pieces, spoons) cannot be converted
// without food-specific densities and makes the mention unresolvable.
var unitFactors = map[string]float64{
	"":      1, // bare quantity: assume the food's own basis unit
	"g":     1,
	"g.":    1,
	"gramm": 1,
	"kg":    1000,
	"mg":    0.001,
}

var punctRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// stripDiacritics removes combining marks after NFD decomposition, so
// "Müsli" and "Musli" normalize to the same key.
var stripDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// normalizeName produces the canonical matching key for a food name:
// diacritic-stripped, lower-cased, punctuation collapsed to single spaces.
func normalizeName(name string) string {
	s, _, err := transform.String(stripDiacritics, name)
	if err != nil {
		s = name
	}
	s = strings.ToLower(s)
	s = punctRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// similarity is an edit-distance ratio in [0,1]: 1 means equal strings.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := math.Max(float64(len([]rune(a))), float64(len([]rune(b))))
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/longest
}

// Resolver maps meal mentions to food-database entries. The database is
// read-only and shared; the missing-food report is owned by the caller and
// threaded through each call, never global state.
type Resolver struct {
	db        *FoodDB
	threshold float64
}

func NewResolver(db *FoodDB, threshold float64) *Resolver {
	return &Resolver{db: db, threshold: threshold}
}

// match runs the ranked strategy chain: exact canonical, exact alias,
// both again on the normalized name, last-token alias, then fuzzy
// similarity against every alias. First hit wins; ties inside the fuzzy
// scan break toward the lexicographically smaller alias so the result is
// stable across runs.
func (r *Resolver) match(name string) (slug string, kind MatchKind, confidence float64) {
	lower := strings.ToLower(strings.TrimSpace(name))

	if _, ok := r.db.foods[lower]; ok {
		return lower, MatchExact, 1
	}
	if s, ok := r.db.slugByAlias[lower]; ok {
		if s == lower || strings.EqualFold(r.db.foods[s].Name, name) {
			return s, MatchExact, 1
		}
		return s, MatchAlias, 1
	}

	normalized := normalizeName(name)
	if normalized != lower {
		if _, ok := r.db.foods[normalized]; ok {
			return normalized, MatchExact, 1
		}
		if s, ok := r.db.slugByAlias[normalized]; ok {
			return s, MatchAlias, 1
		}
	}

	// Brand-prefixed names ("Uncle Bens Vollkornreis") often end in the
	// actual food word; try tokens right to left.
	tokens := strings.Fields(normalized)
	for i := len(tokens) - 1; i >= 0; i-- {
		if s, ok := r.db.slugByAlias[tokens[i]]; ok {
			return s, MatchFuzzy, 0.9
		}
	}

	var bestAlias string
	best := 0.0
	for _, alias := range r.db.aliases {
		if score := similarity(normalized, alias); score > best {
			best = score
			bestAlias = alias
		}
	}
	if best >= r.threshold {
		return r.db.slugByAlias[bestAlias], MatchFuzzy, best
	}

	return "", MatchUnmatched, 0
}

// Resolve turns one mention into its nutrition contribution. Unmatched
// names increment the missing-food report; unsupported units are reported
// with their own reason code and stay out of the database-gap report.
func (r *Resolver) Resolve(m MealMention, missing MissingFoodReport) ResolvedContribution {
	slug, kind, confidence := r.match(m.RawName)
	if kind == MatchUnmatched {
		missing[normalizeName(m.RawName)]++
		return ResolvedContribution{Kind: MatchUnmatched, Reason: ReasonNoMatch}
	}

	food := r.db.foods[slug]
	grams, ok := convertQuantity(m.Qty, m.Unit, food.Unit)
	if !ok {
		return ResolvedContribution{Kind: MatchUnmatched, Reason: ReasonUnsupportedUnit}
	}

	factor := grams / 100
	return ResolvedContribution{
		Food:       slug,
		Calories:   round2(food.KcalPer100 * factor),
		ProteinG:   round2(food.ProteinPer100 * factor),
		FatG:       round2(food.FatPer100 * factor),
		CarbsG:     round2(food.CarbsPer100 * factor),
		Kind:       kind,
		Confidence: confidence,
	}
}

// Suggestion is one fuzzy candidate for an unmatched food name.
type Suggestion struct {
	Food       string  `json:"food"`
	Confidence float64 `json:"confidence"`
}

// Suggest ranks the closest database entries for a raw name, for surfacing
// next to the missing-food report. Results are deterministic: sorted by
// score, then alias order.
func (r *Resolver) Suggest(name string, limit int) []Suggestion {
	normalized := normalizeName(name)

	type scored struct {
		slug  string
		score float64
	}
	// Every slug is a candidate, even at similarity 0, so a full limit of
	// results always comes back when the database is large enough.
	bestBySlug := map[string]float64{}
	for _, alias := range r.db.aliases {
		score := similarity(normalized, alias)
		slug := r.db.slugByAlias[alias]
		if cur, seen := bestBySlug[slug]; !seen || score > cur {
			bestBySlug[slug] = score
		}
	}

	ranked := make([]scored, 0, len(bestBySlug))
	for slug, score := range bestBySlug {
		ranked = append(ranked, scored{slug, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].slug < ranked[j].slug
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]Suggestion, 0, limit)
	for _, s := range ranked[:limit] {
		out = append(out, Suggestion{Food: s.slug, Confidence: round2(s.score)})
	}
	return out
}

// convertQuantity converts a written quantity into the food's basis unit.
// Mass units interconvert through grams; any other unit only works when it
// matches the food's own basis exactly.
func convertQuantity(qty float64, written, basis string) (float64, bool) {
	written = strings.ToLower(strings.TrimSpace(written))
	basis = strings.ToLower(strings.TrimSpace(basis))

	if written == basis {
		return qty, true
	}
	wf, wok := unitFactors[written]
	bf, bok := unitFactors[basis]
	if !wok || !bok {
		return 0, false
	}
	return qty * wf / bf, true
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
