package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trend-relay/internal/risk"
	"trend-relay/internal/strategy"
)

// Params bundles the tunable strategy and risk parameters. The zero file (or
// an absent path) yields the chart-strategy defaults.
type Params struct {
	Strategy strategy.Params `yaml:"strategy"`
	Risk     risk.Parameters `yaml:"risk"`
}

// LoadParams reads strategy/risk parameters from a YAML file. An empty path
// returns the defaults.
func LoadParams(path string) (Params, error) {
	p := Params{
		Strategy: strategy.DefaultParams(),
		Risk:     risk.DefaultParameters(),
	}
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read params file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse params file: %w", err)
	}
	return p, nil
}
