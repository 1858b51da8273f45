package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/splitpilot/splitpilot/internal/abtest"
	"github.com/splitpilot/splitpilot/internal/archive"
	"github.com/splitpilot/splitpilot/internal/config"
	"github.com/splitpilot/splitpilot/internal/kvstore"
)

// withArchive opens the analytics archive, executes the function, and
// handles cleanup.
func withArchive(fn func(*archive.Store) error) error {
	s, err := archive.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer s.Close()

	return fn(s)
}

// openHub loads the config, registers its tests (a bad definition is a
// fatal configuration error), and wires the dual assignment stores.
// The returned cleanup closes both stores.
func openHub(logger *zap.Logger) (*abtest.Hub, *config.File, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if dataDir != "" {
		cfg.Server.DataDir = dataDir
	}

	registry := abtest.NewRegistry()
	if err := registry.RegisterAll(cfg.Tests); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid test configuration: %w", err)
	}

	primary, err := kvstore.OpenBadger(cfg.Server.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}

	fallbackPath, err := kvstore.DefaultFilePath(cfg.Server.DataDir)
	if err != nil {
		primary.Close()
		return nil, nil, nil, err
	}
	secondary, err := kvstore.OpenFile(fallbackPath)
	if err != nil {
		primary.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		primary.Close()
		secondary.Close()
	}

	hub := abtest.NewHub(registry, primary, secondary, abtest.NopReporter{}, logger)
	return hub, cfg, cleanup, nil
}
