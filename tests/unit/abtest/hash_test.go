package abtest_test

import (
	"fmt"
	"testing"

	"github.com/splitpilot/splitpilot/internal/abtest"
)

func TestBucket_Deterministic(t *testing.T) {
	inputs := []string{"", "a", "user_1718000000000_a1b2c3d4_cta_test", "ssr-user_cta_test"}

	for _, in := range inputs {
		first := abtest.Bucket(in)
		for i := 0; i < 10; i++ {
			if got := abtest.Bucket(in); got != first {
				t.Errorf("Bucket(%q) changed between calls: %f vs %f", in, first, got)
			}
		}
	}
}

func TestBucket_Range(t *testing.T) {
	for i := 0; i < 10000; i++ {
		in := fmt.Sprintf("visitor_%d_some_test", i)
		h := abtest.Bucket(in)
		if h < 0 || h >= 1 {
			t.Fatalf("Bucket(%q) = %f, want [0, 1)", in, h)
		}
	}
}

func TestBucket_EmptyString(t *testing.T) {
	if got := abtest.Bucket(""); got != 0 {
		t.Errorf("Bucket(\"\") = %f, want 0", got)
	}
}

func TestBucket_Spread(t *testing.T) {
	// Distinct inputs should not all collapse into one bucket half.
	low := 0
	for i := 0; i < 1000; i++ {
		if abtest.Bucket(fmt.Sprintf("v%d", i)) < 0.5 {
			low++
		}
	}
	if low < 300 || low > 700 {
		t.Errorf("got %d/1000 inputs below 0.5, hash looks skewed", low)
	}
}
