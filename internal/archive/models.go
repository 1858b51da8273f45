package archive

import "time"

// Event is one archived analytics signal.
type Event struct {
	ID        int64
	TestID    string
	VariantID string
	EventName string
	VisitorID string
	Value     *float64
	CreatedAt time.Time
}

// VariantStats aggregates archived events for one variant of a test.
// Exposures counts distinct visitors with an assignment event,
// Conversions distinct visitors with a conversion event.
type VariantStats struct {
	VariantID   string
	Exposures   int
	Conversions int
}

// Event names with aggregate meaning. Everything else is a custom
// event and only shows up in exports.
const (
	EventAssignment = "assignment"
	EventConversion = "conversion"
)
