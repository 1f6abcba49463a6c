// Package config loads module configuration and per-tenant company data.
// The engine configuration comes from an optional YAML file with environment
// overrides; company data is one JSON document per tenant, loaded once at
// startup and treated as immutable afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds engine tuning for the orchestration module.
type Config struct {
	// ArtifactsDir is the root under which one directory per run is created.
	ArtifactsDir string `yaml:"artifacts_dir"`
	// CompanyDir holds one <company_id>.json per tenant.
	CompanyDir string `yaml:"company_dir"`
	// DefaultCompany selects the tenant used when none is specified.
	DefaultCompany string `yaml:"default_company"`
	// MaxTurns caps total conversational turns per run.
	MaxTurns int `yaml:"max_turns"`
	// MaxIterations caps the revision loop per run.
	MaxIterations int `yaml:"max_iterations"`
	// Model selects the completion model identifier for pricing and adapters.
	Model string `yaml:"model"`
}

func defaults() Config {
	return Config{
		ArtifactsDir:   "tmp",
		CompanyDir:     "data",
		DefaultCompany: "solaris",
		MaxTurns:       30,
		MaxIterations:  3,
		Model:          "gpt-4.1",
	}
}

// Load reads the YAML config named by AITEAM_CONFIG (default
// config/aiteam.yaml), falling back to defaults when the file is absent, then
// applies environment overrides.
func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("AITEAM_CONFIG")
	if path == "" {
		path = "config/aiteam.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AITEAM_ARTIFACTS_DIR"); v != "" {
		cfg.ArtifactsDir = v
	}
	if v := os.Getenv("AITEAM_COMPANY_DIR"); v != "" {
		cfg.CompanyDir = v
	}
	if v := os.Getenv("COMPANY_ID"); v != "" {
		cfg.DefaultCompany = v
	}
	if v := os.Getenv("AITEAM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("AITEAM_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTurns = n
		}
	}
	if v := os.Getenv("AITEAM_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxIterations = n
		}
	}
}
