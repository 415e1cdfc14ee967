// Package config loads the simulator's YAML configuration file: world
// seed, species table path, step cadence and log level. It is the only
// other fatal-configuration-error surface besides catalog.Load.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the simulator's top-level configuration. SpeciesTable,
// StepPeriodMs and LogLevel left unset in the YAML source fall back to the
// defaults applied by Load, never to Go's zero values (a step_period_ms of
// 0 would busy-loop); an unset world_seed stays 0.
type Config struct {
	WorldSeed    int64  `yaml:"world_seed"`
	SpeciesTable string `yaml:"species_table"`
	StepPeriodMs int    `yaml:"step_period_ms"`
	LogLevel     string `yaml:"log_level"`
}

const (
	defaultSpeciesTable = "./testdata/species.csv"
	defaultStepPeriodMs = 1000
	defaultLogLevel     = "info"
)

// Load reads and parses the YAML configuration file at path. A missing
// file or malformed YAML is a fatal configuration error; a field simply
// absent from the document is filled in with its documented default.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if c.SpeciesTable == "" {
		c.SpeciesTable = defaultSpeciesTable
	}
	if c.StepPeriodMs <= 0 {
		c.StepPeriodMs = defaultStepPeriodMs
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	return c, nil
}
