package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/splitpilot/splitpilot/internal/archive"
	"github.com/splitpilot/splitpilot/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tests",
	Long:  `List all configured A/B tests with their status and statistics.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if len(cfg.Tests) == 0 {
		fmt.Println("No tests yet.")
		fmt.Println()
		fmt.Println("Add one with:")
		fmt.Println(`  splitpilot create cta_test --variants "control=0.5,variant=0.5" --active`)
		return nil
	}

	return withArchive(func(s *archive.Store) error {
		ctx := context.Background()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATE\tVARIANTS\tEXPOSURES\tCONVERSIONS\tMETRIC")

		for _, test := range cfg.Tests {
			stats, err := s.VariantStats(ctx, test.ID)
			if err != nil {
				return fmt.Errorf("failed to get stats for test %s: %w", test.ID, err)
			}

			totalExposures := 0
			totalConversions := 0
			for _, stat := range stats {
				totalExposures += stat.Exposures
				totalConversions += stat.Conversions
			}

			state := "INACTIVE"
			if test.Active {
				state = "ACTIVE"
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				test.ID,
				test.Name,
				state,
				len(test.Variants),
				formatNumber(totalExposures),
				formatNumber(totalConversions),
				test.TargetMetric,
			)
		}

		return w.Flush()
	})
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
