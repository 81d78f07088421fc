package qthought

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/theapemachine/errnie"
)

// DefaultTolerance is the numeric tolerance used when no config is given.
const DefaultTolerance = 1e-9

type Config struct {
	Tolerance      float64        `mapstructure:"tolerance"`
	Seed           uint64         `mapstructure:"seed"`
	Interpretation string         `mapstructure:"interpretation"`
	Collapse       CollapseConfig `mapstructure:"collapse"`
	Ensemble       EnsembleConfig `mapstructure:"ensemble"`
}

// CollapseConfig parameterizes the dynamical collapse interpretation.
type CollapseConfig struct {
	Rate      float64 `mapstructure:"rate"`
	Duration  float64 `mapstructure:"duration"`
	Threshold float64 `mapstructure:"threshold"`
}

// EnsembleConfig controls Monte Carlo sampling of independent runs.
type EnsembleConfig struct {
	Runs    int    `mapstructure:"runs"`
	Workers int    `mapstructure:"workers"`
	Seed    uint64 `mapstructure:"seed"`
}

func NewConfig() *Config {
	return &Config{
		Tolerance:      DefaultTolerance,
		Interpretation: "copenhagen",
		Collapse: CollapseConfig{
			Rate:      1e3,
			Duration:  1e-2,
			Threshold: 1e-3,
		},
		Ensemble: EnsembleConfig{
			Runs:    100,
			Workers: 4,
		},
	}
}

/*
LoadConfig reads configuration from an optional file and from QTHOUGHT_*
environment variables, layered over the values of NewConfig. Nested keys map
to variables with underscores, e.g. QTHOUGHT_COLLAPSE_RATE.
*/
func LoadConfig(path string) (*Config, error) {
	defaults := NewConfig()

	v := viper.New()
	v.SetEnvPrefix("qthought")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("tolerance", defaults.Tolerance)
	v.SetDefault("seed", defaults.Seed)
	v.SetDefault("interpretation", defaults.Interpretation)
	v.SetDefault("collapse.rate", defaults.Collapse.Rate)
	v.SetDefault("collapse.duration", defaults.Collapse.Duration)
	v.SetDefault("collapse.threshold", defaults.Collapse.Threshold)
	v.SetDefault("ensemble.runs", defaults.Ensemble.Runs)
	v.SetDefault("ensemble.workers", defaults.Ensemble.Workers)
	v.SetDefault("ensemble.seed", defaults.Ensemble.Seed)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("tolerance must be positive, got %v", cfg.Tolerance)
	}

	errnie.Info(
		"LoadConfig - interpretation %v, tolerance %v, ensemble %+v",
		cfg.Interpretation,
		cfg.Tolerance,
		cfg.Ensemble,
	)

	return cfg, nil
}

func (c *Config) tolerance() float64 {
	if c == nil || c.Tolerance <= 0 {
		return DefaultTolerance
	}
	return c.Tolerance
}
