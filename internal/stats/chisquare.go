// Package stats holds the illustrative chi-squared confidence helper
// used by the dashboard and the results command. It is deliberately
// simple and not part of the assignment contract.
package stats

import (
	"math"

	"github.com/splitpilot/splitpilot/internal/abtest"
	"github.com/splitpilot/splitpilot/internal/archive"
)

// ChiSquaredConfidence runs a 2x2 chi-squared test of independence on
// two variants' exposure/conversion counts and returns the confidence
// (0-1) that their conversion rates differ.
func ChiSquaredConfidence(aConv, aExp, bConv, bExp int) float64 {
	a := float64(aConv)
	b := float64(aExp - aConv)
	c := float64(bConv)
	d := float64(bExp - bConv)

	if a < 0 || b < 0 || c < 0 || d < 0 {
		return 0
	}

	n := a + b + c + d
	row1 := a + b
	row2 := c + d
	col1 := a + c
	col2 := b + d

	if row1 == 0 || row2 == 0 || col1 == 0 || col2 == 0 {
		return 0
	}

	diff := a*d - b*c
	chi2 := n * diff * diff / (row1 * row2 * col1 * col2)

	// CDF of chi-squared with 1 degree of freedom.
	return 2*normalCDF(math.Sqrt(chi2)) - 1
}

// Result represents statistical analysis of a test
type Result struct {
	Variants   []VariantResult
	Leading    int     // index into Variants
	Confidence float64 // 0-1, leading variant vs control
	Confident  bool    // >= 95% confidence
}

// VariantResult contains statistics for a single variant
type VariantResult struct {
	VariantID   string
	Name        string
	Exposures   int
	Conversions int
	Rate        float64
}

// Analyze combines a test definition with archived variant stats,
// keeping the definition's variant order. The confidence compares the
// leading variant against the control (first variant), or against the
// best challenger when control itself leads.
func Analyze(test abtest.Test, variantStats []archive.VariantStats) *Result {
	statsMap := make(map[string]archive.VariantStats)
	for _, s := range variantStats {
		statsMap[s.VariantID] = s
	}

	variants := make([]VariantResult, len(test.Variants))
	maxRate := 0.0
	leading := 0

	for i, v := range test.Variants {
		stat := statsMap[v.ID] // zero-valued if no events yet

		rate := 0.0
		if stat.Exposures > 0 {
			rate = float64(stat.Conversions) / float64(stat.Exposures)
		}

		variants[i] = VariantResult{
			VariantID:   v.ID,
			Name:        v.Name,
			Exposures:   stat.Exposures,
			Conversions: stat.Conversions,
			Rate:        rate,
		}

		if rate > maxRate {
			maxRate = rate
			leading = i
		}
	}

	var confidence float64
	if len(variants) >= 2 {
		other := 0
		if leading == 0 {
			// Control leads; compare against the best challenger.
			other = 1
			bestRate := -1.0
			for i := 1; i < len(variants); i++ {
				if variants[i].Rate > bestRate {
					bestRate = variants[i].Rate
					other = i
				}
			}
		}
		confidence = ChiSquaredConfidence(
			variants[leading].Conversions, variants[leading].Exposures,
			variants[other].Conversions, variants[other].Exposures,
		)
	}

	return &Result{
		Variants:   variants,
		Leading:    leading,
		Confidence: confidence,
		Confident:  confidence >= 0.95,
	}
}

// normalCDF approximates the cumulative distribution function
// of the standard normal distribution
func normalCDF(x float64) float64 {
	// Use the approximation from Abramowitz and Stegun
	// Handbook of Mathematical Functions, formula 7.1.26
	a1 := 0.254829592
	a2 := -0.284496736
	a3 := 1.421413741
	a4 := -1.453152027
	a5 := 1.061405429
	p := 0.3275911

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt(2)

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}
