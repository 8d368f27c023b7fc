/*
Package config handles loading and saving the risk engine configuration.

Configuration is stored in ~/.hea-risk.json. Missing files produce a
default configuration; missing fields fall back to defaults on load, so
older config files keep working after upgrades.

Schema:

	{
	  "databasePath": "~/.hea-risk/hea.db",
	  "baselineWindowDays": 30,
	  "baselineMinSamples": 5,
	  "deviationClamp": 4.0,
	  "extractorTimeoutSeconds": 2,
	  "maxDisplayedSignals": 6,
	  "signalGain": 0.5,
	  "retentionDays": 365
	}
*/
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all engine tunables.
type Config struct {
	// DatabasePath is the SQLite database location.
	DatabasePath string `json:"databasePath,omitempty"`

	// BaselineWindowDays is the trailing window the exponentially
	// weighted baseline adapts over.
	BaselineWindowDays int `json:"baselineWindowDays,omitempty"`

	// BaselineMinSamples is the cold-start cutoff: below this sample
	// count a metric falls back to population defaults.
	BaselineMinSamples int `json:"baselineMinSamples,omitempty"`

	// DeviationClamp bounds z-like deviation scores to [-c, c].
	DeviationClamp float64 `json:"deviationClamp,omitempty"`

	// ExtractorTimeoutSeconds bounds each extractor call; on timeout
	// the pipeline proceeds without that extractor's candidates.
	ExtractorTimeoutSeconds int `json:"extractorTimeoutSeconds,omitempty"`

	// MaxDisplayedSignals truncates the ranked signal list shown on an
	// assessment. The confidence computation still sees all signals.
	MaxDisplayedSignals int `json:"maxDisplayedSignals,omitempty"`

	// SignalGain scales calibrated signal weights before the
	// probabilistic-OR confidence combination.
	SignalGain float64 `json:"signalGain,omitempty"`

	// RetentionDays is how long raw inputs and feedback are kept by
	// the cleanup job.
	RetentionDays int `json:"retentionDays,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DatabasePath:            defaultDatabasePath(),
		BaselineWindowDays:      30,
		BaselineMinSamples:      5,
		DeviationClamp:          4.0,
		ExtractorTimeoutSeconds: 2,
		MaxDisplayedSignals:     6,
		SignalGain:              0.5,
		RetentionDays:           365,
	}
}

// defaultDatabasePath returns ~/.hea-risk/hea.db, or a relative path if
// the home directory cannot be determined.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hea.db"
	}
	return filepath.Join(home, ".hea-risk", "hea.db")
}

// Path returns the config file location (~/.hea-risk.json).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".hea-risk.json"), nil
}

// LoadOrCreate loads the config file, creating it with defaults when it
// does not exist yet.
func LoadOrCreate() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFrom(path)
	if os.IsNotExist(err) {
		cfg = Default()
		if saveErr := cfg.SaveTo(path); saveErr != nil {
			return nil, saveErr
		}
		return cfg, nil
	}
	return cfg, err
}

// LoadFrom reads a config file and fills unset fields with defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// SaveTo writes the config as indented JSON.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// applyDefaults fills zero-valued fields with defaults.
func (c *Config) applyDefaults() {
	d := Default()
	if c.DatabasePath == "" {
		c.DatabasePath = d.DatabasePath
	}
	if c.BaselineWindowDays <= 0 {
		c.BaselineWindowDays = d.BaselineWindowDays
	}
	if c.BaselineMinSamples <= 0 {
		c.BaselineMinSamples = d.BaselineMinSamples
	}
	if c.DeviationClamp <= 0 {
		c.DeviationClamp = d.DeviationClamp
	}
	if c.ExtractorTimeoutSeconds <= 0 {
		c.ExtractorTimeoutSeconds = d.ExtractorTimeoutSeconds
	}
	if c.MaxDisplayedSignals <= 0 {
		c.MaxDisplayedSignals = d.MaxDisplayedSignals
	}
	if c.SignalGain <= 0 {
		c.SignalGain = d.SignalGain
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = d.RetentionDays
	}
}
