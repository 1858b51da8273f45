package abtest

import (
	"fmt"
	"math"
	"sync"
)

// Registry holds test definitions in registration order. A
// misconfigured test is a deploy-time bug: Register rejects it outright
// instead of patching it up (contrast with the selector's runtime
// renormalization).
type Registry struct {
	mu    sync.RWMutex
	order []string
	tests map[string]Test
}

func NewRegistry() *Registry {
	return &Registry{tests: make(map[string]Test)}
}

// Register validates and stores a test definition, replacing any prior
// definition with the same id.
func (r *Registry) Register(t Test) error {
	if t.ID == "" {
		return fmt.Errorf("test id is required")
	}
	if len(t.Variants) == 0 {
		return fmt.Errorf("test %q has no variants", t.ID)
	}

	sum := 0.0
	for _, v := range t.Variants {
		if v.ID == "" {
			return fmt.Errorf("test %q has a variant without an id", t.ID)
		}
		sum += v.Weight
	}
	if math.Abs(sum-1) > WeightTolerance {
		return fmt.Errorf("test %q variant weights sum to %.3f, want 1", t.ID, sum)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tests[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	r.tests[t.ID] = t
	return nil
}

// RegisterAll registers tests in order, stopping at the first failure.
// Earlier successes are not rolled back; callers treat any error as
// fatal at startup anyway.
func (r *Registry) RegisterAll(tests []Test) error {
	for _, t := range tests {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Get(id string) (Test, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tests[id]
	return t, ok
}

// Active returns all active tests in registration order.
func (r *Registry) Active() []Test {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Test
	for _, id := range r.order {
		if t := r.tests[id]; t.Active {
			out = append(out, t)
		}
	}
	return out
}

// All returns every registered test in registration order.
func (r *Registry) All() []Test {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Test, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tests[id])
	}
	return out
}
