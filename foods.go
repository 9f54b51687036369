package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Food is one reference-database entry. Nutrition values are per 100 of
// Unit (grams unless the database says otherwise).
type Food struct {
	Name          string   `yaml:"name" json:"name"`
	Unit          string   `yaml:"unit" json:"unit"`
	KcalPer100    float64  `yaml:"kcal_per_100g" json:"kcal_per_100g"`
	ProteinPer100 float64  `yaml:"protein_g_per_100g" json:"protein_g_per_100g"`
	FatPer100     float64  `yaml:"fat_g_per_100g" json:"fat_g_per_100g"`
	CarbsPer100   float64  `yaml:"carbs_g_per_100g" json:"carbs_g_per_100g"`
	Aliases       []string `yaml:"aliases" json:"aliases,omitempty"`
}

// FoodDB is the read-only reference database the resolver matches against.
// Safe to share across goroutines once built; nothing mutates it after New.
type FoodDB struct {
	foods       map[string]Food   // canonical slug -> entry
	slugByAlias map[string]string // lower-cased alias -> slug
	aliases     []string          // sorted unique lower-cased aliases, for deterministic fuzzy scans
}

// NewFoodDB builds the alias index over fully-loaded food entries. Each
// food is findable by its slug, its display name, and every alias.
func NewFoodDB(foods map[string]Food) *FoodDB {
	db := &FoodDB{
		foods:       make(map[string]Food, len(foods)),
		slugByAlias: make(map[string]string),
	}

	// Index slugs in sorted order so alias collisions resolve the same way
	// on every run.
	slugs := make([]string, 0, len(foods))
	for slug := range foods {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		f := foods[slug]
		if f.Name == "" {
			f.Name = slug
		}
		if f.Unit == "" {
			f.Unit = "g"
		}
		db.foods[slug] = f

		names := append([]string{slug, f.Name}, f.Aliases...)
		for _, a := range names {
			key := strings.ToLower(strings.TrimSpace(a))
			if key == "" {
				continue
			}
			if _, taken := db.slugByAlias[key]; !taken {
				db.slugByAlias[key] = slug
				db.aliases = append(db.aliases, key)
			}
		}
	}
	sort.Strings(db.aliases)
	return db
}

// LoadFoodDB reads the YAML food database: a map of canonical slug to
// per-100g nutrition plus aliases.
func LoadFoodDB(path string) (*FoodDB, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read food database: %w", err)
	}

	var foods map[string]Food
	if err := yaml.Unmarshal(raw, &foods); err != nil {
		return nil, fmt.Errorf("parse food database %s: %w", path, err)
	}
	if len(foods) == 0 {
		return nil, fmt.Errorf("food database %s is empty", path)
	}
	return NewFoodDB(foods), nil
}

// Lookup returns the entry for a canonical slug.
func (db *FoodDB) Lookup(slug string) (Food, bool) {
	f, ok := db.foods[slug]
	return f, ok
}

// Len reports the number of canonical entries.
func (db *FoodDB) Len() int { return len(db.foods) }
