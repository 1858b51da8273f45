package kvstore_test

import (
	"errors"
	"testing"

	"github.com/splitpilot/splitpilot/internal/kvstore"
)

func TestBadgerStore_Roundtrip(t *testing.T) {
	store, err := kvstore.OpenBadger(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

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

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := kvstore.OpenBadger(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := kvstore.OpenBadger(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if got, err := reopened.Get("k"); err != nil || got != "v" {
		t.Errorf("got (%q, %v) after reopen, want (v, nil)", got, err)
	}
}

func TestBadgerStore_WorksAsAssignmentScope(t *testing.T) {
	store, err := kvstore.OpenBadger(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	a := kvstore.Namespace(store, "visitor_a")
	b := kvstore.Namespace(store, "visitor_b")

	if err := a.Set("sp_assignments", `{"t1":{"variant":"control"}}`); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Get("sp_assignments"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("scope b sees scope a's data: %v", err)
	}
	if got, _ := a.Get("sp_assignments"); got == "" {
		t.Error("scope a lost its data")
	}
}
