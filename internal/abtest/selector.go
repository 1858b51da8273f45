package abtest

import (
	"math"

	"go.uber.org/zap"
)

// Selector deterministically picks a variant for a visitor by walking
// the cumulative weight distribution at the visitor's bucket position.
type Selector struct {
	log *zap.Logger
}

func NewSelector(log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{log: log}
}

// Select returns the variant for (testID, visitorID). The same inputs
// always yield the same variant. Weights that fail to sum to 1 are
// proportionally renormalized here as a runtime safety net; the
// registry still rejects them at registration time.
//
// Variants must be non-empty; the registry guarantees that for
// registered tests.
func (s *Selector) Select(testID string, variants []Variant, visitorID string) Variant {
	weights := make([]float64, len(variants))
	sum := 0.0
	for i, v := range variants {
		weights[i] = v.Weight
		sum += v.Weight
	}

	if math.Abs(sum-1) > WeightTolerance && sum > 0 {
		s.log.Warn("variant weights do not sum to 1, renormalizing",
			zap.String("test", testID),
			zap.Float64("sum", sum))
		for i := range weights {
			weights[i] /= sum
		}
	}

	h := Bucket(visitorID + "_" + testID)

	cumulative := 0.0
	for i, v := range variants {
		cumulative += weights[i]
		if h < cumulative {
			return v
		}
	}

	// Floating-point error left h at or past the final cumulative
	// weight; first variant is the documented fallback.
	return variants[0]
}
