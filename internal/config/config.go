// Package config loads the solver configuration from an optional YAML file
// layered over the built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tobik/skua/sat"
)

// Config holds every tunable of the solver and of the driver.
type Config struct {
	VarDecay       float64       `yaml:"var_decay"`
	ClauseDecay    float64       `yaml:"clause_decay"`
	PhasePeriod    int           `yaml:"phase_period"`
	RestartBase    int64         `yaml:"restart_base"`
	RestartCeiling int64         `yaml:"restart_ceiling"`
	DemotePeriod   int64         `yaml:"demote_period"`
	DemoteWindow   int64         `yaml:"demote_window"`
	ForgetPeriod   int64         `yaml:"forget_period"`
	Seed           int64         `yaml:"seed"`
	MaxConflicts   int64         `yaml:"max_conflicts"`
	Timeout        time.Duration `yaml:"timeout"`

	// ModelFile is where the model of the last satisfiable instance is
	// written.
	ModelFile string `yaml:"model_file"`
}

// Default returns the configuration matching sat.DefaultOptions.
func Default() Config {
	o := sat.DefaultOptions
	return Config{
		VarDecay:       o.VariableDecay,
		ClauseDecay:    o.ClauseDecay,
		PhasePeriod:    o.PhasePeriod,
		RestartBase:    o.RestartBase,
		RestartCeiling: o.RestartCeiling,
		DemotePeriod:   o.DemotePeriod,
		DemoteWindow:   o.DemoteWindow,
		ForgetPeriod:   o.ForgetPeriod,
		Seed:           o.Seed,
		MaxConflicts:   o.MaxConflicts,
		Timeout:        o.Timeout,
		ModelFile:      "model.out",
	}
}

// Load reads the YAML file at path and merges it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file %q: %s", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file %q: %s", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.VarDecay <= 0 || c.VarDecay > 1 {
		return fmt.Errorf("var_decay must be in (0, 1], got %v", c.VarDecay)
	}
	if c.ClauseDecay <= 0 || c.ClauseDecay > 1 {
		return fmt.Errorf("clause_decay must be in (0, 1], got %v", c.ClauseDecay)
	}
	if c.PhasePeriod <= 0 {
		return fmt.Errorf("phase_period must be positive, got %d", c.PhasePeriod)
	}
	if c.RestartBase <= 0 || c.RestartCeiling < c.RestartBase {
		return fmt.Errorf("restart schedule must satisfy 0 < restart_base <= restart_ceiling")
	}
	if c.ModelFile == "" {
		return fmt.Errorf("model_file must not be empty")
	}
	return nil
}

// SolverOptions converts the configuration to solver options.
func (c Config) SolverOptions() sat.Options {
	return sat.Options{
		VariableDecay:  c.VarDecay,
		ClauseDecay:    c.ClauseDecay,
		PhasePeriod:    c.PhasePeriod,
		RestartBase:    c.RestartBase,
		RestartCeiling: c.RestartCeiling,
		DemotePeriod:   c.DemotePeriod,
		DemoteWindow:   c.DemoteWindow,
		ForgetPeriod:   c.ForgetPeriod,
		Seed:           c.Seed,
		MaxConflicts:   c.MaxConflicts,
		Timeout:        c.Timeout,
	}
}
