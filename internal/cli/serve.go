package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/splitpilot/splitpilot/internal/archive"
	"github.com/splitpilot/splitpilot/internal/server"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the splitpilot HTTP server.

The server provides:
  - Global script at /sp.js
  - Assignment endpoint for server- and client-rendered pages
  - Beacon endpoint for tracking events
  - Dashboard for viewing results

Example:
  splitpilot serve --port 8080`,
	RunE: runServe,
}

func init() {
	defaultPort := 8080
	if p := os.Getenv("SP_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			defaultPort = parsed
		}
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", defaultPort, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	hub, cfg, cleanup, err := openHub(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	arch, err := archive.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer arch.Close()

	listenPort := cfg.Server.Port
	if cmd.Flags().Changed("port") || os.Getenv("SP_PORT") != "" {
		listenPort = port
	}

	// Token file path (alongside config)
	tokenFile := filepath.Join(filepath.Dir(configPath), ".splitpilot-token")

	srv := server.New(hub, arch, listenPort, tokenFile, cfg.Server.BeaconURL, logger)
	return srv.Start()
}
