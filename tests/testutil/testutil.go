package testutil

import (
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/splitpilot/splitpilot/internal/abtest"
	"github.com/splitpilot/splitpilot/internal/archive"
	"github.com/splitpilot/splitpilot/internal/kvstore"
)

// SetupArchive creates a test analytics archive with a cleanup hook.
// Uses t.TempDir() for automatic cleanup on test completion.
func SetupArchive(t *testing.T) *archive.Store {
	t.Helper()

	dbPath := t.TempDir() + "/test.db"

	s, err := archive.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// SetupHub builds a hub over in-memory stores with the given tests
// registered. Registration failures fail the test immediately.
func SetupHub(t *testing.T, tests ...abtest.Test) (*abtest.Hub, *kvstore.Memory, *kvstore.Memory) {
	t.Helper()

	registry := abtest.NewRegistry()
	if err := registry.RegisterAll(tests); err != nil {
		t.Fatalf("failed to register tests: %v", err)
	}

	primary := kvstore.NewMemory()
	secondary := kvstore.NewMemory()
	hub := abtest.NewHub(registry, primary, secondary, abtest.NopReporter{}, zap.NewNop())

	return hub, primary, secondary
}

// TwoVariantTest is the canonical 50/50 active test used across suites.
func TwoVariantTest(id string) abtest.Test {
	return abtest.Test{
		ID:     id,
		Name:   id,
		Active: true,
		Variants: []abtest.Variant{
			{ID: "control", Name: "Control", Weight: 0.5},
			{ID: "variant", Name: "Variant", Weight: 0.5},
		},
	}
}

// SpyReporter records every signal it receives, for assertions on what
// the framework forwarded.
type SpyReporter struct {
	mu          sync.Mutex
	Assignments []string // "testID/variantID"
	Events      []string // "testID/variantID/name"
	Conversions []string // "testID/variantID"
}

func (s *SpyReporter) Assignment(testID, variantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Assignments = append(s.Assignments, testID+"/"+variantID)
}

func (s *SpyReporter) Event(testID, variantID, name string, value *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, testID+"/"+variantID+"/"+name)
}

func (s *SpyReporter) Conversion(testID, variantID string, value *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Conversions = append(s.Conversions, testID+"/"+variantID)
}

// PanicReporter panics on every call; the framework must contain it.
type PanicReporter struct{}

func (PanicReporter) Assignment(testID, variantID string) {
	panic("assignment reporter failure")
}

func (PanicReporter) Event(testID, variantID, name string, value *float64) {
	panic("event reporter failure")
}

func (PanicReporter) Conversion(testID, variantID string, value *float64) {
	panic("conversion reporter failure")
}
