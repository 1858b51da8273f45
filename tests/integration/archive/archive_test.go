package archive_test

import (
	"context"
	"testing"

	"github.com/splitpilot/splitpilot/internal/archive"
	"github.com/splitpilot/splitpilot/tests/testutil"
)

func record(t *testing.T, store *archive.Store, testID, variantID, event, visitor string) {
	t.Helper()
	if err := store.RecordEvent(context.Background(), testID, variantID, event, visitor, nil); err != nil {
		t.Fatalf("failed to record event: %v", err)
	}
}

func TestRecordAndReadEvents(t *testing.T) {
	store := testutil.SetupArchive(t)

	record(t, store, "t1", "control", archive.EventAssignment, "v1")
	record(t, store, "t1", "control", archive.EventConversion, "v1")
	record(t, store, "t2", "variant", archive.EventAssignment, "v1")

	events, err := store.Events(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events for t1, want 2", len(events))
	}
	for _, e := range events {
		if e.TestID != "t1" || e.VisitorID != "v1" {
			t.Errorf("event leaked across tests: %+v", e)
		}
	}
}

func TestRecordEvent_DedupPerVisitor(t *testing.T) {
	store := testutil.SetupArchive(t)

	// The same visitor reporting the same event twice counts once.
	record(t, store, "t1", "control", archive.EventConversion, "v1")
	record(t, store, "t1", "control", archive.EventConversion, "v1")
	record(t, store, "t1", "control", archive.EventConversion, "v2")

	events, err := store.Events(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2 (duplicate collapsed)", len(events))
	}
}

func TestVariantStats(t *testing.T) {
	store := testutil.SetupArchive(t)

	record(t, store, "t1", "control", archive.EventAssignment, "v1")
	record(t, store, "t1", "control", archive.EventAssignment, "v2")
	record(t, store, "t1", "control", archive.EventConversion, "v1")
	record(t, store, "t1", "variant", archive.EventAssignment, "v3")
	// Custom events do not count as conversions.
	record(t, store, "t1", "variant", "cta_click", "v3")

	statsByVariant := map[string]archive.VariantStats{}
	stats, err := store.VariantStats(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range stats {
		statsByVariant[s.VariantID] = s
	}

	control := statsByVariant["control"]
	if control.Exposures != 2 || control.Conversions != 1 {
		t.Errorf("control stats %+v, want 2 exposures / 1 conversion", control)
	}
	variant := statsByVariant["variant"]
	if variant.Exposures != 1 || variant.Conversions != 0 {
		t.Errorf("variant stats %+v, want 1 exposure / 0 conversions", variant)
	}
}

func TestTestIDs(t *testing.T) {
	store := testutil.SetupArchive(t)

	record(t, store, "b_test", "control", archive.EventAssignment, "v1")
	record(t, store, "a_test", "control", archive.EventAssignment, "v1")

	ids, err := store.TestIDs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d test ids, want 2", len(ids))
	}
}

func TestEventValueStored(t *testing.T) {
	store := testutil.SetupArchive(t)

	value := 49.99
	if err := store.RecordEvent(context.Background(), "t1", "control", archive.EventConversion, "v1", &value); err != nil {
		t.Fatal(err)
	}

	events, err := store.Events(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Value == nil || *events[0].Value != value {
		t.Errorf("value not stored: %+v", events[0])
	}
}
