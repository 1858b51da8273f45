package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Start the server with integration instructions",
	Long: `Start the splitpilot server and show integration instructions for
your site framework.

Tests are defined in splitpilot.yaml; use 'splitpilot create' to add one.

Example:
  splitpilot init
  splitpilot init --port 8080`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	// Prompt for framework to show appropriate instructions
	framework, err := promptFramework()
	if err != nil {
		return err
	}

	printStartupInstructions(framework)

	return runServe(serveCmd, args)
}

func promptFramework() (string, error) {
	frameworks := []string{
		"HTML (vanilla JavaScript)",
		"React / Next.js",
		"Server-rendered (Go templates, Laravel, Django)",
		"Other",
	}

	prompt := promptui.Select{
		Label: "Your framework",
		Items: frameworks,
		Size:  4,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			os.Exit(0)
		}
		return "", err
	}

	switch idx {
	case 1:
		return "react", nil
	case 2:
		return "ssr", nil
	default:
		return "html", nil
	}
}

func printStartupInstructions(framework string) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Println()

	fmt.Println("1. Create a test")
	fmt.Println()
	fmt.Println(`   splitpilot create cta_test --name "CTA wording" \
     --variants "control=0.5,variant=0.5" --active`)
	fmt.Println()

	fmt.Println("2. Add the script to your site")
	fmt.Println()
	fmt.Println("   <script src=\"https://YOUR-URL/sp.js\" defer></script>")
	fmt.Println()

	fmt.Println("3. Mark up your page")
	fmt.Println()
	printFrameworkExample(framework)
	fmt.Println()

	fmt.Println(strings.Repeat("-", 60))
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  results <id>     Show test statistics")
	fmt.Println("  list             List all tests")
	fmt.Println("  export <id>      Export raw event data")
	fmt.Println("  otp              Show dashboard URL")
	fmt.Println()
}

func printFrameworkExample(framework string) {
	switch framework {
	case "react":
		fmt.Println(`   <h1
     data-sp-test="cta_test"
     data-sp-variants='{"control":"Get started","variant":"Check your maturity"}'
   >
     Get started
   </h1>
   <button data-sp-convert="cta_test">Sign Up</button>`)
	case "ssr":
		fmt.Println(`   Call GET /api/assign?test=cta_test&vid=<visitor-id> while
   rendering and emit the matching copy. Without a visitor id the
   framework falls back to the first variant.`)
	default:
		fmt.Println(`   <h1 data-sp-test="cta_test" data-sp-variants='{"control":"A","variant":"B"}'>A</h1>
   <button data-sp-convert="cta_test">Sign Up</button>`)
	}
}
