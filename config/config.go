// Package config loads library and CLI configuration from files and the
// environment.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/vehiclepass/infra/metrics"
)

type Config struct {
	Credentials CredentialsConfig `json:"credentials"`
	Cloud       CloudConfig       `json:"cloud"`
	Command     CommandConfig     `json:"command"`
	Units       UnitsConfig       `json:"units"`
	Metrics     metrics.Config    `json:"metrics"`
}

// Default returns a configuration with all defaults applied and empty
// credentials.
func Default() *Config {
	var cfg Config
	cfg.Cloud.SetDefaults()
	cfg.Command.SetDefaults()
	cfg.Units.SetDefaults()
	cfg.Metrics.SetDefaults()
	return &cfg
}

// Load reads the configuration file and applies environment overrides
// (VP_ prefix, "__" as the section separator, e.g. VP_CREDENTIALS__VIN).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	return finish(k)
}

// LoadEnv builds a configuration from the environment alone, for library
// callers without a config file.
func LoadEnv() (*Config, error) {
	return finish(koanf.New("."))
}

func finish(k *koanf.Koanf) (*Config, error) {
	if err := k.Load(env.Provider("VP_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "vp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Cloud.SetDefaults()
	cfg.Command.SetDefaults()
	cfg.Units.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Command.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Units.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
