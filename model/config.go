package model

import (
	"os"

	"github.com/siherrmann/ontograph/helper"
	"gopkg.in/yaml.v3"
)

// GraphConfig bounds a single graph traversal.
// The zero value stands for DefaultGraphConfig; set MaxNodes below zero for an unbounded traversal.
type GraphConfig struct {
	// MaxNodes stops the traversal once the graph holds this many nodes. Zero or less disables the bound.
	MaxNodes int `json:"max_nodes" yaml:"max_nodes"`
	// MaxDepth is the deepest hop distance from the root that is expanded. Zero or less disables the bound.
	MaxDepth int `json:"max_depth,omitempty" yaml:"max_depth"`
	// PrefetchWorkers fetches relations of upcoming frontier entities concurrently when greater than one.
	PrefetchWorkers int `json:"prefetch_workers,omitempty" yaml:"prefetch_workers"`
}

// DefaultGraphConfig returns the default traversal bounds
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		MaxNodes:        500,
		MaxDepth:        0, // Unlimited
		PrefetchWorkers: 1, // Sequential
	}
}

// WithDefaults returns DefaultGraphConfig for the zero value and c otherwise.
func (c GraphConfig) WithDefaults() GraphConfig {
	if c == (GraphConfig{}) {
		return DefaultGraphConfig()
	}
	return c
}

// Config is the file based configuration of an ontograph instance.
type Config struct {
	LogLevel string      `yaml:"log_level"`
	Graph    GraphConfig `yaml:"graph"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Graph:    DefaultGraphConfig(),
	}
}

// LoadConfig reads a YAML configuration file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, helper.NewError("read config", err)
	}

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return config, helper.NewError("parse config", err)
	}

	return config, nil
}
