package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/splitpilot/splitpilot/internal/archive"
	"github.com/splitpilot/splitpilot/internal/config"
	"github.com/splitpilot/splitpilot/internal/stats"
)

var resultsCmd = &cobra.Command{
	Use:   "results <id>",
	Short: "Show detailed results for a test",
	Long:  `Show per-variant conversion rates and an illustrative chi-squared confidence.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	id := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	test, ok := cfg.Test(id)
	if !ok {
		return fmt.Errorf("test '%s' not found in %s", id, configPath)
	}

	return withArchive(func(s *archive.Store) error {
		variantStats, err := s.VariantStats(context.Background(), id)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		result := stats.Analyze(test, variantStats)

		// Print header
		fmt.Printf("TEST: %s (%s)\n", test.Name, test.ID)
		state := "inactive"
		if test.Active {
			state = "active"
		}
		fmt.Printf("STATE: %s\n", state)
		if test.TargetMetric != "" {
			fmt.Printf("METRIC: %s\n", test.TargetMetric)
		}
		fmt.Println()

		// Print table header
		fmt.Println("VARIANT           WEIGHT   EXPOSURES  CONVERSIONS  RATE")
		fmt.Println(strings.Repeat("─", 58))

		for i, v := range result.Variants {
			indicator := ""
			if i == result.Leading && len(result.Variants) > 1 {
				indicator = " ← LEADING"
			}

			// Truncate name if too long
			name := v.Name
			if len(name) > 16 {
				name = name[:13] + "..."
			}

			fmt.Printf("%-16s  %-7s  %-9d  %-11d  %s%s\n",
				name,
				fmt.Sprintf("%.0f%%", test.Variants[i].Weight*100),
				v.Exposures,
				v.Conversions,
				formatPercent(v.Rate),
				indicator,
			)
		}

		fmt.Println()

		if len(result.Variants) > 1 {
			leadingName := result.Variants[result.Leading].Name
			confPct := result.Confidence * 100

			if result.Confident {
				fmt.Printf("Chi-squared (illustrative): %.1f%% confident \"%s\" is the winner\n", confPct, leadingName)
			} else if confPct >= 90 {
				fmt.Printf("Chi-squared (illustrative): %.1f%% confident \"%s\" leads (not yet significant)\n", confPct, leadingName)
			} else {
				fmt.Println("Chi-squared (illustrative): not enough data to determine a winner")
			}
		}

		return nil
	})
}

func formatPercent(rate float64) string {
	if rate == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", rate*100)
}
