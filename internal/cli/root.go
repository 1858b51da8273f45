package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	dbPath     string
	dataDir    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "splitpilot",
	Short: "splitpilot - self-hosted A/B testing and event tracking for marketing sites",
	Long: `splitpilot assigns visitors to experiment variants deterministically,
persists assignments across two storage scopes, and tracks conversion
events into an embedded analytics archive. Single Go binary.

Running without a subcommand starts the server (same as 'splitpilot serve').`,
	RunE: runServe, // Default action is to start server
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", getEnvOrDefault("SP_CONFIG", "./splitpilot.yaml"), "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", getEnvOrDefault("SP_DB_PATH", "./splitpilot.db"), "analytics archive path")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", getEnvOrDefault("SP_DATA_DIR", "./splitpilot-data"), "assignment store directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// newLogger builds the process logger. CLI command output stays on
// stdout via fmt; this logger carries the framework's warnings.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
