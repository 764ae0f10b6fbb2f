package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/subgroup"
	"github.com/tuneforge/regtemp/internal/temperament"
)

const (
	DefaultSubgroup     = "2.3.5"
	DefaultWeighting    = "tenney"
	DefaultWeightAmount = 1.0
	DefaultOrder        = 2.0
	DefaultOptimizer    = "numeric"
	DefaultNType        = "breed"
)

type Config struct {
	Mapping      [][]int `yaml:"mapping,flow"`
	Subgroup     string  `yaml:"subgroup"`
	Weighting    string  `yaml:"weighting"`
	WeightAmount float64 `yaml:"weight_amount"`
	Skew         float64 `yaml:"skew"`
	Order        float64 `yaml:"order"`
	Optimizer    string  `yaml:"optimizer"`
	Enforce      string  `yaml:"enforce,omitempty"`
	NType        string  `yaml:"ntype"`
}

func DefaultConfig() *Config {
	return &Config{
		Mapping:      [][]int{{1, 0, -4}, {0, 1, 4}},
		Subgroup:     DefaultSubgroup,
		Weighting:    DefaultWeighting,
		WeightAmount: DefaultWeightAmount,
		Order:        DefaultOrder,
		Optimizer:    DefaultOptimizer,
		NType:        DefaultNType,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Profile translates the norm fields. Unset fields resolve to their
// defaults downstream.
func (c *Config) Profile() norm.Profile {
	return norm.Profile{
		Weighting: norm.Weighting(c.Weighting),
		Amount:    c.WeightAmount,
		Skew:      c.Skew,
		Order:     c.Order,
	}
}

// ParseSubgroup reads the subgroup field. Empty means the default
// prime basis for the mapping width.
func (c *Config) ParseSubgroup() (*subgroup.Subgroup, error) {
	if c.Subgroup == "" {
		return nil, nil
	}
	return subgroup.Parse(c.Subgroup)
}

// Temperament builds the configured temperament.
func (c *Config) Temperament(opts temperament.Options) (*temperament.Temperament, error) {
	sg, err := c.ParseSubgroup()
	if err != nil {
		return nil, err
	}
	return temperament.New(c.Mapping, sg, opts)
}

// TuneOptions translates the tuning fields.
func (c *Config) TuneOptions() temperament.TuneOptions {
	return temperament.TuneOptions{
		Optimizer: c.Optimizer,
		Profile:   c.Profile(),
		Enforce:   c.Enforce,
	}
}
