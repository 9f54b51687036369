package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDiscoverRawEntries verifies glob filtering and filename ordering.
func TestDiscoverRawEntries(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"2025-06-02.md": "date: 2025-06-02\n",
		"2025-06-01.md": "date: 2025-06-01\n",
		"notes.txt":     "not a diary file",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := DiscoverRawEntries(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Source != "2025-06-01.md" || entries[1].Source != "2025-06-02.md" {
		t.Errorf("order = %s, %s, want filename-sorted", entries[0].Source, entries[1].Source)
	}
	if entries[0].Text != "date: 2025-06-01\n" {
		t.Errorf("text = %q", entries[0].Text)
	}
}

// TestDiscoverRawEntries_EmptyDir verifies the no-files result.
func TestDiscoverRawEntries_EmptyDir(t *testing.T) {
	entries, err := DiscoverRawEntries(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}
