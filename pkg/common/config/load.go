package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

var validate = validator.New()

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// apply defaults
	if err := cfg.Schemes.ApplyDefaults(); err != nil {
		return nil, err
	}

	// validate
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("struct validation failed: %w", err)
	}

	for name, sc := range cfg.Schemes.Items {
		if b := sc.backend(); b != nil {
			if err := validate.Struct(b); err != nil {
				return nil, fmt.Errorf("scheme %s validation failed: %w", name, err)
			}
		}
	}

	if _, ok := cfg.Schemes.Items[cfg.DefaultScheme]; !ok {
		return nil, fmt.Errorf("default scheme %s is not configured", cfg.DefaultScheme)
	}

	if cfg.Nats.Enabled && cfg.Nats.URL == "" {
		return nil, fmt.Errorf("nats enabled without url")
	}

	return &cfg, nil
}
