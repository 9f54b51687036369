package main

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// config holds all runtime settings. Values come from the environment with
// sensible defaults for a checkout that mirrors the protocol repo layout
// (logs under logs/daily, database under data, artifacts under outputs).
type config struct {
	LogDir     string
	FoodsPath  string
	OutDir     string
	SQLitePath string
	ListenAddr string

	// FuzzyThreshold is the minimum similarity ratio the resolver accepts
	// before a mention counts as unmatched. 0.6 matches the tuned default
	// of the matching heuristic this pipeline grew out of.
	FuzzyThreshold float64

	// TdeeWindowDays is the rolling-window length for TDEE estimates.
	TdeeWindowDays int
}

// loadConfig reads .env (if present) and the environment. A missing .env is
// not an error; running purely off exported variables is fine.
func loadConfig() config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	return config{
		LogDir:         envOr("LOG_DIR", "logs/daily"),
		FoodsPath:      envOr("FOODS_PATH", "data/foods.yaml"),
		OutDir:         envOr("OUT_DIR", "outputs"),
		SQLitePath:     envOr("SQLITE_PATH", "outputs/protocol.db"),
		ListenAddr:     envOr("LISTEN_ADDR", "localhost:3000"),
		FuzzyThreshold: envFloatOr("FUZZY_THRESHOLD", 0.6),
		TdeeWindowDays: envIntOr("TDEE_WINDOW_DAYS", 14),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("warning: invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("warning: invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return n
}
