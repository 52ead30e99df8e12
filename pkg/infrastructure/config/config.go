// Package config resolves process-wide settings once at start-up from
// defaults, an optional YAML file and BLEND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BLEND_SOLVER_TIME_LIMIT
const EnvPrefix = "BLEND"

// Config is the resolved configuration
type Config struct {
	Solver  SolverConfig  `mapstructure:"solver"`
	Sweep   SweepConfig   `mapstructure:"sweep"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SolverConfig configures the solve adapter and the in-process solver
type SolverConfig struct {
	Backend              string        `mapstructure:"backend"`
	TimeLimit            time.Duration `mapstructure:"time_limit"`
	CancelGrace          time.Duration `mapstructure:"cancel_grace"`
	MaxNodes             int           `mapstructure:"max_nodes"`
	IntegralityTolerance float64       `mapstructure:"integrality_tolerance"`
	FeasibilityTolerance float64       `mapstructure:"feasibility_tolerance"`
}

// SweepConfig configures parameter sweeps
type SweepConfig struct {
	Workers int `mapstructure:"workers"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("solver.backend", "branchbound")
	v.SetDefault("solver.time_limit", 60*time.Second)
	v.SetDefault("solver.cancel_grace", 2*time.Second)
	v.SetDefault("solver.max_nodes", 100000)
	v.SetDefault("solver.integrality_tolerance", 1e-6)
	v.SetDefault("solver.feasibility_tolerance", 1e-6)
	v.SetDefault("sweep.workers", 4)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// flagKeys maps command-line flags onto configuration keys
var flagKeys = map[string]string{
	"time-limit": "solver.time_limit",
	"max-nodes":  "solver.max_nodes",
	"workers":    "sweep.workers",
	"log-level":  "logging.level",
}

// Load resolves the configuration. path may be empty; flags may be nil.
// Precedence, highest first: changed flags, environment, file, defaults.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the resolved values
func (c *Config) Validate() error {
	var errs []error
	if c.Solver.Backend != "branchbound" {
		errs = append(errs, fmt.Errorf("solver.backend: unknown backend %q", c.Solver.Backend))
	}
	if c.Solver.TimeLimit < 0 {
		errs = append(errs, fmt.Errorf("solver.time_limit: cannot be negative, got %s", c.Solver.TimeLimit))
	}
	if c.Solver.CancelGrace < 0 {
		errs = append(errs, fmt.Errorf("solver.cancel_grace: cannot be negative, got %s", c.Solver.CancelGrace))
	}
	if c.Solver.MaxNodes <= 0 {
		errs = append(errs, fmt.Errorf("solver.max_nodes: must be positive, got %d", c.Solver.MaxNodes))
	}
	if c.Solver.IntegralityTolerance <= 0 || c.Solver.IntegralityTolerance >= 0.5 {
		errs = append(errs, fmt.Errorf("solver.integrality_tolerance: must be in (0, 0.5), got %g", c.Solver.IntegralityTolerance))
	}
	if c.Solver.FeasibilityTolerance <= 0 {
		errs = append(errs, fmt.Errorf("solver.feasibility_tolerance: must be positive, got %g", c.Solver.FeasibilityTolerance))
	}
	if c.Sweep.Workers <= 0 {
		errs = append(errs, fmt.Errorf("sweep.workers: must be positive, got %d", c.Sweep.Workers))
	}
	return errors.Join(errs...)
}
