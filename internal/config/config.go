package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

var (
	once sync.Once
	cfg  *Config
)

// GetConfig loads config.yaml from the working directory as the
// application configuration singleton.
func GetConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		cfg = nil
		return nil, fmt.Errorf("failed to read config file: %s", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		cfg = nil
		return nil, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	if err := cfg.Validate(); err != nil {
		cfg = nil
		return nil, fmt.Errorf("failed to validate config: %s", err)
	}

	if cfg == nil {
		return nil, errors.New("failed to load configuration")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.integrator", "verlet")
	v.SetDefault("run.timestep", 1.0/60.0)
	v.SetDefault("run.steps", 600)
	v.SetDefault("run.gravitational_constant_scale", 1.0)
	v.SetDefault("run.softening", 1e3)
	v.SetDefault("run.storage_layout", "sparse")
	v.SetDefault("run.simd_enabled", true)
	v.SetDefault("run.diagnostic_sample_every", 10)
	v.SetDefault("server.addr", ":8090")
	v.SetDefault("report.output_dir", "./report")
}

// Reset clears the configuration singleton, for test isolation.
func Reset() {
	cfg = nil
}

// Validate checks that every field required to run a simulation is
// present and well-formed.
func (cfg *Config) Validate() error {
	if cfg.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if cfg.App.Version == "" {
		return fmt.Errorf("app.version is required")
	}
	if cfg.Logging.Level == "" {
		return fmt.Errorf("logging.level is required")
	}
	if cfg.Run.Scenario == "" {
		return fmt.Errorf("run.scenario is required")
	}
	if cfg.Run.Integrator != "verlet" && cfg.Run.Integrator != "rk4" {
		return fmt.Errorf("run.integrator must be \"verlet\" or \"rk4\", got %q", cfg.Run.Integrator)
	}
	if cfg.Run.Timestep <= 0 {
		return fmt.Errorf("run.timestep must be positive")
	}
	if cfg.Run.Steps <= 0 {
		return fmt.Errorf("run.steps must be positive")
	}
	if cfg.Run.StorageLayout != "sparse" && cfg.Run.StorageLayout != "dense" {
		return fmt.Errorf("run.storage_layout must be \"sparse\" or \"dense\", got %q", cfg.Run.StorageLayout)
	}
	return nil
}
