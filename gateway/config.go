package gateway

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the gateway configuration file.
type Config struct {
	// Listen is the HTTP bind address.
	Listen string `yaml:"listen"`
	// Database is the path of the SQLite catalog. Empty keeps the catalog
	// in memory.
	Database string `yaml:"database"`
	// Programs are loaded into the catalog at startup.
	Programs []ProgramConfig `yaml:"programs"`
}

// ProgramConfig points at one program's schema on disk: either compact
// schema JSON produced by discovery, or an Anchor IDL to convert.
type ProgramConfig struct {
	Address string `yaml:"address"`
	Schema  string `yaml:"schema"`
	IDL     string `yaml:"idl"`
}

// DefaultListen is used when the config file sets no bind address.
const DefaultListen = ":8090"

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gateway: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("gateway: parse config: %w", err)
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	for i, p := range cfg.Programs {
		if p.Address == "" {
			return nil, fmt.Errorf("gateway: program %d has no address", i)
		}
		if p.Schema == "" && p.IDL == "" {
			return nil, fmt.Errorf("gateway: program %q has neither schema nor idl", p.Address)
		}
	}
	return &cfg, nil
}
