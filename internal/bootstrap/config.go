// Package bootstrap wires configuration, stores, and components for the
// suggester service.
package bootstrap

import (
	"fmt"

	"github.com/suqly/category-suggester/internal/config"
	"github.com/suqly/category-suggester/internal/logger"
)

// DefaultConfigPath is used when CONFIG_PATH is not set.
const DefaultConfigPath = "config.yml"

// LoadConfig loads configuration and builds the service logger.
func LoadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(config.Path(DefaultConfigPath))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	log.Info("configuration loaded",
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version))

	return cfg, log, nil
}
