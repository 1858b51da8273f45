package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/splitpilot/splitpilot/internal/abtest"
	"github.com/splitpilot/splitpilot/internal/config"
)

func init() {
	rootCmd.AddCommand(newCreateCmd())
}

func newCreateCmd() *cobra.Command {
	var (
		name        string
		description string
		variants    string
		metric      string
		active      bool
	)

	cmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Add an A/B test to the config file",
		Long: `Add a test definition to splitpilot.yaml. Weights must sum to 1;
a bad weight distribution is rejected here, never silently fixed.

Examples:
  splitpilot create cta_test --variants "control=0.5,variant=0.5" --active
  splitpilot create pricing --name "Pricing layout" \
    --variants "control=0.34,cards=0.33,table=0.33" --metric signup --active`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			testID := args[0]

			variantList, err := parseVariants(variants)
			if err != nil {
				return err
			}

			if name == "" {
				name = testID
			}

			test := abtest.Test{
				ID:           testID,
				Name:         name,
				Description:  description,
				Variants:     variantList,
				Active:       active,
				TargetMetric: metric,
			}

			// Same validation path the registry applies at startup.
			if err := abtest.NewRegistry().Register(test); err != nil {
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if _, exists := cfg.Test(testID); exists {
				ok, err := confirmOverwrite(testID)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Aborted.")
					return nil
				}
			}

			cfg.Upsert(test)
			if err := config.Save(configPath, cfg); err != nil {
				return err
			}

			fmt.Printf("Added test '%s' with %d variants:\n", test.ID, len(test.Variants))
			for _, v := range test.Variants {
				fmt.Printf("  %s: %.0f%%\n", v.ID, v.Weight*100)
			}
			if !active {
				fmt.Println("Test is inactive; set active: true in the config to start it.")
			}
			fmt.Println("Restart the server to pick up the new definition.")

			return nil
		},
	}

	cmd.Flags().StringVarP(&variants, "variants", "v", "", `comma-separated "id=weight" pairs (required)`)
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the id)")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	cmd.Flags().StringVar(&metric, "metric", "", "target metric label")
	cmd.Flags().BoolVar(&active, "active", false, "activate the test immediately")
	cmd.MarkFlagRequired("variants")

	return cmd
}

func parseVariants(spec string) ([]abtest.Variant, error) {
	parts := strings.Split(spec, ",")
	if len(parts) < 2 {
		return nil, fmt.Errorf(`need at least 2 variants. Example: --variants "control=0.5,variant=0.5"`)
	}

	var out []abtest.Variant
	for _, part := range parts {
		id, weightStr, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return nil, fmt.Errorf("invalid variant %q, want id=weight", part)
		}
		weight, err := strconv.ParseFloat(weightStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight in %q: %w", part, err)
		}
		out = append(out, abtest.Variant{ID: id, Name: id, Weight: weight})
	}
	return out, nil
}

func confirmOverwrite(testID string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Test '%s' already exists. Replace it", testID),
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if err == promptui.ErrAbort || err == promptui.ErrInterrupt {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
