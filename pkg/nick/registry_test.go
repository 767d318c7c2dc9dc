package nick

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nicks.txt")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := r.Get("1.2.3.4"); ok {
		t.Error("Get on empty registry found an entry")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestSetThenGetThenReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nicks.txt")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.Set("127.0.0.1", "alice"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := r.Get("127.0.0.1")
	if !ok || got != "alice" {
		t.Errorf("Get() = %q, %v, want alice, true", got, ok)
	}

	// Reopening from disk should see the persisted value.
	r2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got2, ok := r2.Get("127.0.0.1")
	if !ok || got2 != "alice" {
		t.Errorf("reopened Get() = %q, %v, want alice, true", got2, ok)
	}
}

func TestOpenMalformedLineIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nicks.txt")
	if err := os.WriteFile(path, []byte("not a valid line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Error("expected error for malformed nickname file")
	}
}

func TestOpenMalformedIPIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nicks.txt")
	if err := os.WriteFile(path, []byte("not-an-ip = bob\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Error("expected error for malformed IP")
	}
}

func TestSetOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nicks.txt")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = r.Set("10.0.0.1", "first")
	_ = r.Set("10.0.0.1", "second")

	got, _ := r.Get("10.0.0.1")
	if got != "second" {
		t.Errorf("Get() = %q, want second", got)
	}
}
