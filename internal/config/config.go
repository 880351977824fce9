// Package config loads breeding run settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"weasel/internal/evo"
)

const (
	DefaultTarget       = "METHINKS IT IS LIKE A WEASEL"
	DefaultOffspring    = 100
	DefaultAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz "
	DefaultMutationRate = 0.05
)

// Config is the full set of knobs for weaselctl.
type Config struct {
	Target         string  `yaml:"target"`
	Alphabet       string  `yaml:"alphabet"`
	Offspring      int     `yaml:"offspring"`
	MutationRate   float64 `yaml:"mutation_rate"`
	MaxGenerations *int    `yaml:"max_generations,omitempty"`
	Fitness        string  `yaml:"fitness"`
	Seed           int64   `yaml:"seed"`

	Store        StoreConfig   `yaml:"store"`
	ArtifactsDir string        `yaml:"artifacts_dir"`
	MetricsFile  string        `yaml:"metrics_file"`
	Logging      LoggingConfig `yaml:"logging"`
}

type StoreConfig struct {
	Kind   string `yaml:"kind"`
	DBPath string `yaml:"db_path"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Target:       DefaultTarget,
		Alphabet:     DefaultAlphabet,
		Offspring:    DefaultOffspring,
		MutationRate: DefaultMutationRate,
		Fitness:      evo.DefaultFitnessName,
		Store: StoreConfig{
			Kind:   "memory",
			DBPath: "weasel.db",
		},
		ArtifactsDir: "runs",
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads path over the defaults and applies WEASEL_* environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Fraction validates the configured mutation rate.
func (c *Config) Fraction() (evo.Fraction, error) {
	return evo.NewFraction(c.MutationRate)
}

func (c *Config) Validate() error {
	if _, err := c.Fraction(); err != nil {
		return fmt.Errorf("mutation rate: %w", err)
	}
	if _, err := evo.BuildAlphabet(c.Alphabet); err != nil {
		return err
	}
	if c.Offspring < 1 {
		return fmt.Errorf("offspring must be >= 1, got %d", c.Offspring)
	}
	if c.MaxGenerations != nil && *c.MaxGenerations < 0 {
		return fmt.Errorf("max generations must be >= 0, got %d", *c.MaxGenerations)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("WEASEL_TARGET"); v != "" {
		c.Target = v
	}
	if v := os.Getenv("WEASEL_ALPHABET"); v != "" {
		c.Alphabet = v
	}
	if v := os.Getenv("WEASEL_FITNESS"); v != "" {
		c.Fitness = v
	}
	if v := os.Getenv("WEASEL_OFFSPRING"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WEASEL_OFFSPRING: %w", err)
		}
		c.Offspring = n
	}
	if v := os.Getenv("WEASEL_MAX_GENERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WEASEL_MAX_GENERATIONS: %w", err)
		}
		c.MaxGenerations = &n
	}
	if v := os.Getenv("WEASEL_MUTATION_RATE"); v != "" {
		f, err := evo.ParseFraction(v)
		if err != nil {
			return fmt.Errorf("WEASEL_MUTATION_RATE: %w", err)
		}
		c.MutationRate = f.Value()
	}
	if v := os.Getenv("WEASEL_STORE"); v != "" {
		c.Store.Kind = v
	}
	if v := os.Getenv("WEASEL_DB_PATH"); v != "" {
		c.Store.DBPath = v
	}
	if v := os.Getenv("WEASEL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}
