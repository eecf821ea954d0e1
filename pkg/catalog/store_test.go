package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const artifactSrc = `// Category: drums
// Description: Test kick
package main

func TestKickPlugin() {}
`

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestPutAndList(t *testing.T) {
	s := openTestStore(t)
	entry, err := s.Put("test-kick.go", []byte(artifactSrc))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if entry.ID != "test-kick" || !entry.Enabled {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Category != "drums" || entry.Description != "Test kick" {
		t.Errorf("comment metadata not extracted: %+v", entry)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "test-kick" {
		t.Errorf("List = %+v", entries)
	}
}

func TestPutRejectsWrongSymbol(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Put("mismatch.go", []byte("package main\nfunc Other() {}\n")); err == nil {
		t.Error("accepted artifact without its constructor symbol")
	}
	if _, err := s.Put("notgo.txt", []byte("hi")); err == nil {
		t.Error("accepted non-Go artifact")
	}
}

func TestSetEnabledAndDelete(t *testing.T) {
	s := openTestStore(t)
	s.Put("test-kick.go", []byte(artifactSrc))

	if err := s.SetEnabled("test-kick", false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	entries, _ := s.List()
	if entries[0].Enabled {
		t.Error("disable did not stick")
	}

	if err := s.Delete("test-kick"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "test-kick.go")); !os.IsNotExist(err) {
		t.Error("artifact file survived delete")
	}
	if err := s.Delete("test-kick"); err == nil {
		t.Error("second delete did not error")
	}
}

func TestListSynthesisesDefaults(t *testing.T) {
	s := openTestStore(t)
	// dropped into the directory out of band, no metadata
	path := filepath.Join(s.Dir(), "side-load.go")
	if err := os.WriteFile(path, []byte("package main\nfunc SideLoadPlugin() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List = %+v", entries)
	}
	e := entries[0]
	if e.ID != "side-load" || e.Name != "Side Load" || !e.Enabled {
		t.Errorf("synthesised entry = %+v", e)
	}
}

func TestMetadataSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir, nil)
	s.Put("test-kick.go", []byte(artifactSrc))
	s.SetEnabled("test-kick", false)

	reopened, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	entries, _ := reopened.List()
	if len(entries) != 1 || entries[0].Enabled {
		t.Errorf("persisted state lost: %+v", entries)
	}
}
