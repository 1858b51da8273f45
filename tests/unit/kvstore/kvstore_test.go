package kvstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/splitpilot/splitpilot/internal/kvstore"
)

func TestMemory_Roundtrip(t *testing.T) {
	store := kvstore.NewMemory()

	if _, err := store.Get("missing"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	if err := store.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if got, err := store.Get("k"); err != nil || got != "v" {
		t.Errorf("got (%q, %v), want (v, nil)", got, err)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("k"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("got %v after delete, want ErrNotFound", err)
	}
}

func TestFileStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	store, err := kvstore.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen and read back.
	store, err = kvstore.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if got, err := store.Get("k"); err != nil || got != "v" {
		t.Errorf("got (%q, %v) after reopen, want (v, nil)", got, err)
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	store, err := kvstore.OpenFile(path)
	if err != nil {
		t.Fatalf("missing file should open empty, got %v", err)
	}
	defer store.Close()

	if _, err := store.Get("k"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestFileStore_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := kvstore.OpenFile(path)
	if err != nil {
		t.Fatalf("corrupt file should open empty, got %v", err)
	}
	defer store.Close()

	if _, err := store.Get("k"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	// Writes over the corrupt file succeed and persist.
	if err := store.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	reopened, err := kvstore.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if got, _ := reopened.Get("k"); got != "v" {
		t.Errorf("got %q after recovery, want v", got)
	}
}

func TestNamespaced_Isolation(t *testing.T) {
	backend := kvstore.NewMemory()
	a := kvstore.Namespace(backend, "visitor_a")
	b := kvstore.Namespace(backend, "visitor_b")

	if err := a.Set("k", "from_a"); err != nil {
		t.Fatal(err)
	}
	if err := b.Set("k", "from_b"); err != nil {
		t.Fatal(err)
	}

	if got, _ := a.Get("k"); got != "from_a" {
		t.Errorf("scope a sees %q, want from_a", got)
	}
	if got, _ := b.Get("k"); got != "from_b" {
		t.Errorf("scope b sees %q, want from_b", got)
	}

	if err := a.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Get("k"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("scope a still sees key after delete: %v", err)
	}
	if got, _ := b.Get("k"); got != "from_b" {
		t.Errorf("delete in scope a leaked into scope b: %q", got)
	}
}

func TestNamespaced_CloseLeavesBackendOpen(t *testing.T) {
	backend := kvstore.NewMemory()
	scope := kvstore.Namespace(backend, "v")

	if err := backend.Set("other", "v"); err != nil {
		t.Fatal(err)
	}
	if err := scope.Close(); err != nil {
		t.Fatal(err)
	}
	if got, err := backend.Get("other"); err != nil || got != "v" {
		t.Errorf("backend unusable after scope close: (%q, %v)", got, err)
	}
}
