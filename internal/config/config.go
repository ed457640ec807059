// Package config loads the YAML configuration for SerialNode, applying
// defaults and rejecting inconsistent node definitions.
package config

import (
	"fmt"
	"os"

	"SerialNode/internal/model"

	"gopkg.in/yaml.v3"
)

// Defaults applied to unset fields.
const (
	DefaultHubAddr  = ":10000"
	DefaultLogLevel = "info"
	DefaultBaud     = 9600
	DefaultLogPath  = "log.txt"
)

// Load reads and validates the configuration at path.
func Load(path string) (*model.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes into a validated configuration.
func Parse(raw []byte) (*model.Config, error) {
	var cfg model.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(c *model.Config) {
	if c.Global.HubAddr == "" {
		c.Global.HubAddr = DefaultHubAddr
	}
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}
	for i := range c.Nodes {
		n := &c.Nodes[i]
		if n.Source == "" {
			n.Source = model.SourceSerial
		}
		switch n.Source {
		case model.SourceSerial:
			if n.Baud == 0 {
				n.Baud = DefaultBaud
			}
		case model.SourceFile:
			if n.Path == "" {
				n.Path = DefaultLogPath
			}
		}
	}
}

func validate(c *model.Config) error {
	seen := make(map[string]bool, len(c.Nodes))
	stdin := 0
	for i, n := range c.Nodes {
		if n.ID == "" {
			return fmt.Errorf("nodes[%d].id is required", i)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true

		switch n.Source {
		case model.SourceSerial:
			if n.Device == "" {
				return fmt.Errorf("node %s: device is required for serial source", n.ID)
			}
			if n.Baud < 0 {
				return fmt.Errorf("node %s: baud must be positive", n.ID)
			}
		case model.SourceFile:
		case model.SourceStdin:
			stdin++
		default:
			return fmt.Errorf("node %s: unknown source %q", n.ID, n.Source)
		}
	}
	if stdin > 1 {
		return fmt.Errorf("at most one stdin node allowed, got %d", stdin)
	}
	return nil
}
