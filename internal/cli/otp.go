package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var otpCmd = &cobra.Command{
	Use:   "otp",
	Short: "Show the dashboard URL with the current token",
	Long: `Print the dashboard URL including the one-time token of the running
server. The token rotates on every server start.`,
	RunE: runOTP,
}

func init() {
	rootCmd.AddCommand(otpCmd)
}

func runOTP(cmd *cobra.Command, args []string) error {
	tokenFile := filepath.Join(filepath.Dir(configPath), ".splitpilot-token")

	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no token file found; is the server running?")
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	portPart := getEnvOrDefault("SP_PORT", "8080")

	fmt.Printf("http://localhost:%s/dashboard?token=%s\n", portPart, token)
	return nil
}
