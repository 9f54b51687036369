package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists finished runs to a local SQLite file so results can
// be queried with ordinary SQL tooling after the process exits.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        generated_at DATETIME NOT NULL,
        entry_count INTEGER NOT NULL,
        error_count INTEGER NOT NULL,
        warning_count INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS days (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        source TEXT NOT NULL,
        date TEXT NOT NULL,
        weight_kg REAL,
        bodyfat_pct REAL,
        sleep_h REAL,
        target_calories REAL,
        actual_calories REAL,
        actual_protein_g REAL,
        actual_fat_g REAL,
        actual_carbs_g REAL,
        consumed_calories REAL NOT NULL,
        consumed_protein_g REAL NOT NULL,
        consumed_fat_g REAL NOT NULL,
        consumed_carbs_g REAL NOT NULL,
        comment TEXT NOT NULL,
        FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS missing_foods (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        name TEXT NOT NULL,
        occurrences INTEGER NOT NULL,
        FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_days_run_date ON days(run_id, date);
    CREATE INDEX IF NOT EXISTS idx_missing_run ON missing_foods(run_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveRun writes a run and all of its days and missing-food counts in one
// transaction; a failed save leaves the database untouched.
func (s *SQLiteStore) SaveRun(run *RunResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
        INSERT INTO runs (id, generated_at, entry_count, error_count, warning_count)
        VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.GeneratedAt, len(run.Entries), len(run.Errors), len(run.Warnings))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	dayStmt := `
        INSERT INTO days (run_id, source, date, weight_kg, bodyfat_pct, sleep_h,
            target_calories, actual_calories, actual_protein_g, actual_fat_g,
            actual_carbs_g, consumed_calories, consumed_protein_g,
            consumed_fat_g, consumed_carbs_g, comment)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range run.Entries {
		e := &run.Entries[i]
		var sleepH *float64
		if e.Sleep != nil {
			h := round2(e.Sleep.Hours())
			sleepH = &h
		}
		_, err = tx.Exec(dayStmt,
			run.ID, e.Source, e.Date.Format("2006-01-02"),
			e.WeightKG, e.BodyfatPct, sleepH,
			e.TargetCalories, e.ActualCalories, e.ActualProteinG,
			e.ActualFatG, e.ActualCarbsG,
			e.ConsumedCalories, e.ConsumedProteinG,
			e.ConsumedFatG, e.ConsumedCarbsG, e.Comment)
		if err != nil {
			return fmt.Errorf("insert day %s: %w", e.Source, err)
		}
	}

	for name, count := range run.Missing {
		_, err = tx.Exec(`
            INSERT INTO missing_foods (run_id, name, occurrences)
            VALUES (?, ?, ?)`, run.ID, name, count)
		if err != nil {
			return fmt.Errorf("insert missing food %q: %w", name, err)
		}
	}

	return tx.Commit()
}
