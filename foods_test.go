package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadFoodDB verifies the YAML database shape end to end: slugs,
// display names and aliases all resolve, and defaults are filled in.
func TestLoadFoodDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foods.yaml")
	yaml := `
haferflocken:
  name: Haferflocken
  kcal_per_100g: 372
  protein_g_per_100g: 13.5
  fat_g_per_100g: 7
  carbs_g_per_100g: 58.7
  aliases: [oats]
milch:
  name: Milch
  unit: ml
  kcal_per_100g: 47
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := LoadFoodDB(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.Len() != 2 {
		t.Errorf("len = %d, want 2", db.Len())
	}

	f, ok := db.Lookup("haferflocken")
	if !ok || f.KcalPer100 != 372 {
		t.Errorf("haferflocken = (%+v, %v)", f, ok)
	}
	if f.Unit != "g" {
		t.Errorf("default unit = %q, want g", f.Unit)
	}
	for _, alias := range []string{"haferflocken", "oats"} {
		if slug := db.slugByAlias[alias]; slug != "haferflocken" {
			t.Errorf("slugByAlias[%q] = %q, want haferflocken", alias, slug)
		}
	}
	if slug := db.slugByAlias["milch"]; slug != "milch" {
		t.Errorf("slugByAlias[milch] = %q, want milch", slug)
	}
}

// TestLoadFoodDB_Empty verifies that an empty database is rejected rather
// than silently making every food a miss.
func TestLoadFoodDB_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foods.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFoodDB(path); err == nil {
		t.Fatal("expected error for empty database")
	}
}

// TestNewFoodDB_AliasCollision verifies that a shared alias resolves to
// the same slug on every build: the lexicographically first slug claims it.
func TestNewFoodDB_AliasCollision(t *testing.T) {
	foods := map[string]Food{
		"magerquark": {Aliases: []string{"quark"}},
		"speisequark": {Aliases: []string{"quark"}},
	}
	for i := 0; i < 10; i++ {
		db := NewFoodDB(foods)
		if slug := db.slugByAlias["quark"]; slug != "magerquark" {
			t.Fatalf("build %d: slugByAlias[quark] = %q, want magerquark", i, slug)
		}
	}
}
