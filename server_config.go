package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ocupoint/linksim/pkg/pipeline"
)

// serverConfig is the server's own startup configuration: bind address,
// where to look for an external DFE/CDR, and the scenario the server
// starts with. Distinct from pipeline.Config, which describes one run.
type serverConfig struct {
	ListenAddr string          `yaml:"listen_addr"`
	DFEAddr    string          `yaml:"dfe_addr"`
	Default    pipeline.Config `yaml:"default_run"`
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		ListenAddr: ":8080",
		Default:    pipeline.DefaultConfig(),
	}
}

// loadServerConfig loads a YAML startup config file.
func loadServerConfig(filename string) (serverConfig, error) {
	cfg := defaultServerConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read server config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse server config file: %w", err)
	}
	return cfg, nil
}
