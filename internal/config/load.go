package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths are probed in order when no config path is given on the
// command line.
var DefaultSearchPaths = []string{
	"/etc/blunux/config.yaml",
	"/root/config.yaml",
	"./config.yaml",
}

// FindConfigFile returns the first existing path from DefaultSearchPaths.
func FindConfigFile() (string, bool) {
	for _, path := range DefaultSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// LoadFile reads and parses the installer configuration from a YAML file.
// Fields absent from the file keep their defaults; the swap mode string is
// normalized; the result is validated.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	// "language" accepts a single string or a list.
	normalizeLanguage(rawConfig)

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(rawConfig); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Disk.Swap = ParseSwapMode(string(cfg.Disk.Swap))
	cfg.LoadedFromFile = true

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func normalizeLanguage(rawConfig map[string]interface{}) {
	localeMap, ok := rawConfig["locale"].(map[string]interface{})
	if !ok {
		return
	}
	if s, ok := localeMap["language"].(string); ok {
		localeMap["language"] = []interface{}{s}
	}
}
