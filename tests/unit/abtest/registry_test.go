package abtest_test

import (
	"testing"

	"github.com/splitpilot/splitpilot/internal/abtest"
)

func validTest(id string, active bool) abtest.Test {
	return abtest.Test{
		ID:     id,
		Name:   id,
		Active: active,
		Variants: []abtest.Variant{
			{ID: "control", Weight: 0.5},
			{ID: "variant", Weight: 0.5},
		},
	}
}

func TestRegister_Valid(t *testing.T) {
	r := abtest.NewRegistry()

	if err := r.Register(validTest("t1", true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := r.Get("t1")
	if !ok {
		t.Fatal("registered test not found")
	}
	if len(got.Variants) != 2 {
		t.Errorf("got %d variants, want 2", len(got.Variants))
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		test abtest.Test
	}{
		{
			name: "missing id",
			test: abtest.Test{Variants: []abtest.Variant{{ID: "a", Weight: 1}}},
		},
		{
			name: "no variants",
			test: abtest.Test{ID: "x"},
		},
		{
			name: "variant without id",
			test: abtest.Test{ID: "x", Variants: []abtest.Variant{{Weight: 1}}},
		},
		{
			name: "weights sum below 1",
			test: abtest.Test{ID: "x", Variants: []abtest.Variant{
				{ID: "a", Weight: 0.3},
				{ID: "b", Weight: 0.3},
			}},
		},
		{
			name: "weights sum above 1",
			test: abtest.Test{ID: "x", Variants: []abtest.Variant{
				{ID: "a", Weight: 0.6},
				{ID: "b", Weight: 0.6},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := abtest.NewRegistry()
			if err := r.Register(tt.test); err == nil {
				t.Error("expected registration to fail")
			}
			if len(r.Active()) != 0 || len(r.All()) != 0 {
				t.Error("rejected test must not be stored")
			}
		})
	}
}

func TestRegister_WeightTolerance(t *testing.T) {
	// 0.34 + 0.33 + 0.33 = 1.00 exactly; 0.333*3 = 0.999 is inside the
	// ±0.01 tolerance.
	r := abtest.NewRegistry()
	err := r.Register(abtest.Test{ID: "t", Variants: []abtest.Variant{
		{ID: "a", Weight: 0.333},
		{ID: "b", Weight: 0.333},
		{ID: "c", Weight: 0.333},
	}})
	if err != nil {
		t.Errorf("sum 0.999 should pass tolerance, got %v", err)
	}
}

func TestRegister_ReplacesPriorDefinition(t *testing.T) {
	r := abtest.NewRegistry()

	if err := r.Register(validTest("t1", false)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(validTest("t1", true)); err != nil {
		t.Fatal(err)
	}

	got, _ := r.Get("t1")
	if !got.Active {
		t.Error("re-registration did not replace the definition")
	}
	if len(r.All()) != 1 {
		t.Errorf("got %d definitions, want 1", len(r.All()))
	}
}

func TestRegisterAll_StopsAtFirstFailure(t *testing.T) {
	r := abtest.NewRegistry()

	err := r.RegisterAll([]abtest.Test{
		validTest("ok1", true),
		{ID: "bad", Variants: []abtest.Variant{{ID: "a", Weight: 0.3}}},
		validTest("ok2", true),
	})
	if err == nil {
		t.Fatal("expected batch registration to fail")
	}

	if _, ok := r.Get("ok1"); !ok {
		t.Error("earlier success should not be rolled back")
	}
	if _, ok := r.Get("ok2"); ok {
		t.Error("tests after the failure must not be registered")
	}
}

func TestActive_OrderAndFiltering(t *testing.T) {
	r := abtest.NewRegistry()

	for _, tc := range []struct {
		id     string
		active bool
	}{
		{"first", true},
		{"second", false},
		{"third", true},
	} {
		if err := r.Register(validTest(tc.id, tc.active)); err != nil {
			t.Fatal(err)
		}
	}

	active := r.Active()
	if len(active) != 2 {
		t.Fatalf("got %d active tests, want 2", len(active))
	}
	if active[0].ID != "first" || active[1].ID != "third" {
		t.Errorf("active tests out of registration order: %s, %s", active[0].ID, active[1].ID)
	}
}
