package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splitpilot/splitpilot/internal/archive"
	"github.com/splitpilot/splitpilot/internal/reporter"
)

func init() {
	rootCmd.AddCommand(newAssignCmd())
}

func newAssignCmd() *cobra.Command {
	var visitorID string

	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Assign a visitor to a variant",
		Long: `Run a real assignment through the framework and print the variant.
Useful for server-rendered integrations and for checking determinism:
the same visitor id always lands on the same variant.

Example:
  splitpilot assign cta_test --visitor user_1718000000000_a1b2c3d4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			testID := args[0]

			logger := newLogger()
			defer logger.Sync()

			hub, _, cleanup, err := openHub(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return withArchive(func(s *archive.Store) error {
				session := hub.SessionWith(visitorID, reporter.NewArchive(s, visitorID, logger))
				variant := session.AssignVariant(testID)

				fmt.Printf("%s\n", variant)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&visitorID, "visitor", "", "visitor id (required)")
	cmd.MarkFlagRequired("visitor")

	return cmd
}
