package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputPath   string   // directory of layer images
	ConfigPaths []string // table files or directories
	OutputPath  string   // artifact directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	MaxPatternLen int    // 0 means the compressor default
	JSON          bool   // also write the JSON encoding
	Archive       bool   // bundle the artifacts after a run
	IndexDB       string // SQLite run index; empty disables it
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OutputPath is a required configuration field and cannot be empty")
	}
	if len(cfg.ConfigPaths) == 0 {
		// Tables usually sit next to the images.
		cfg.ConfigPaths = []string{cfg.InputPath}
	}
	if cfg.MaxPatternLen < 0 {
		return nil, fmt.Errorf("MaxPatternLen must not be negative, got %d", cfg.MaxPatternLen)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("HealthcheckPort must be between 0 and 65535, got %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
