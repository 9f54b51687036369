package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DiscoverRawEntries reads every *.md file under dir (non-recursive) into a
// RawEntry, sorted by filename so date-named files arrive in order.
func DiscoverRawEntries(dir string) ([]RawEntry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}
	sort.Strings(paths)

	entries := make([]RawEntry, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		entries = append(entries, RawEntry{Source: filepath.Base(p), Text: string(data)})
	}
	return entries, nil
}
