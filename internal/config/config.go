package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Subject  Subject  `yaml:"subject"`
	Sampling Sampling `yaml:"sampling"`
	Defaults Defaults `yaml:"defaults"`
	Results  Results  `yaml:"results"`
}

// Subject describes the executable under test and how to launch it.
type Subject struct {
	Path      string `yaml:"path"`
	Launcher  string `yaml:"launcher"`
	ThreadEnv string `yaml:"thread_env"`
}

type Sampling struct {
	IntervalMS int `yaml:"interval_ms"`
}

type Defaults struct {
	Tolerance            float64 `yaml:"tolerance"`
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`
}

type Results struct {
	Dir     string `yaml:"dir"`
	Plots   bool   `yaml:"plots"`
	Archive string `yaml:"archive"`
}

// Interval returns the sampling interval as a duration.
func (s Sampling) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Subject.Path == "" {
		cfg.Subject.Path = "./lulesh2.0"
	}
	if cfg.Subject.Launcher == "" {
		cfg.Subject.Launcher = "mpirun"
	}
	if cfg.Subject.ThreadEnv == "" {
		cfg.Subject.ThreadEnv = "OMP_NUM_THREADS"
	}
	if cfg.Sampling.IntervalMS == 0 {
		cfg.Sampling.IntervalMS = 100
	}
	if cfg.Defaults.Tolerance == 0 {
		cfg.Defaults.Tolerance = 1e-5
	}
	if cfg.Defaults.ConvergenceThreshold == 0 {
		cfg.Defaults.ConvergenceThreshold = 1e-6
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
}

func validate(cfg *Config) error {
	if cfg.Sampling.IntervalMS < 0 {
		return fmt.Errorf("sampling interval_ms must be positive")
	}
	if cfg.Defaults.Tolerance < 0 {
		return fmt.Errorf("tolerance must be positive")
	}
	if cfg.Defaults.ConvergenceThreshold < 0 {
		return fmt.Errorf("convergence_threshold must be positive")
	}
	return nil
}
