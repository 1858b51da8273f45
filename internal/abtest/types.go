// Package abtest implements deterministic visitor bucketing, durable
// variant assignment and event tracking for experiments on a marketing
// site. Assignment is idempotent per visitor, persisted to two
// independent key-value scopes, and expires after a retention window.
package abtest

import "time"

const (
	// ControlVariantID is the safe default returned when a test is
	// unknown or no variant can be resolved.
	ControlVariantID = "control"

	// WeightTolerance is how far a test's variant weights may drift
	// from summing to 1 before registration rejects them (and before
	// the selector renormalizes them at runtime).
	WeightTolerance = 0.01

	// DefaultRetention is how long an assignment sticks before a
	// visitor becomes eligible for re-randomization.
	DefaultRetention = 7 * 24 * time.Hour

	// EventLogCapacity bounds the per-visitor stored event log.
	// Oldest entries are evicted first.
	EventLogCapacity = 1000
)

// Variant is one treatment arm of a test.
type Variant struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Weight      float64 `yaml:"weight" json:"weight"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
}

// Test is a named experiment with a weighted variant list. Variant
// order matters: it breaks cumulative-weight ties and supplies the
// fallback variant, so reordering an in-flight test moves visitors.
type Test struct {
	ID           string     `yaml:"id" json:"id"`
	Name         string     `yaml:"name" json:"name"`
	Description  string     `yaml:"description,omitempty" json:"description,omitempty"`
	Variants     []Variant  `yaml:"variants" json:"variants"`
	Active       bool       `yaml:"active" json:"active"`
	TargetMetric string     `yaml:"target_metric,omitempty" json:"targetMetric,omitempty"`
	StartDate    *time.Time `yaml:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate      *time.Time `yaml:"end_date,omitempty" json:"endDate,omitempty"`
}

// Assignment binds one visitor to one variant of one test. Immutable
// once written; expiry removes it wholesale.
type Assignment struct {
	VariantID  string `json:"variantId"`
	AssignedAt int64  `json:"assignedAt"` // epoch milliseconds
	UserID     string `json:"userId,omitempty"`
}

// Event is one tracked occurrence attributed to a visitor's assigned
// variant. Metadata keys are documented per event name by the caller;
// the framework treats them as opaque.
type Event struct {
	TestID    string            `json:"testId"`
	VariantID string            `json:"variantId"`
	Name      string            `json:"eventName"`
	Value     *float64          `json:"eventValue,omitempty"`
	Timestamp int64             `json:"timestamp"` // epoch milliseconds
	UserID    string            `json:"userId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
