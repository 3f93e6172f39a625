package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/synheart/synheart-bpsim/internal/history"
	"github.com/synheart/synheart-bpsim/internal/models"
	"github.com/synheart/synheart-bpsim/internal/patient"
	"github.com/synheart/synheart-bpsim/internal/simulator"
)

// FileName is the config file looked up when no path is given
const FileName = "bpsim.yaml"

// Config is the bpsim configuration
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Simulation SimulationConfig `yaml:"simulation"`
	Log        LogConfig        `yaml:"log"`
	Stream     StreamConfig     `yaml:"stream"`
}

// DataConfig locates the historical diary
type DataConfig struct {
	history.Source `yaml:",inline"`
	Columns        history.Columns  `yaml:"columns"`
	Thresholds     ThresholdsConfig `yaml:"thresholds"`
}

// ThresholdsConfig are the clinical bounds used to classify the diary
type ThresholdsConfig struct {
	MinSBP float64 `yaml:"min_sbp"`
	MaxSBP float64 `yaml:"max_sbp"`
	MinDBP float64 `yaml:"min_dbp"`
	MaxDBP float64 `yaml:"max_dbp"`
}

// Thresholds converts the bounds for classification
func (t ThresholdsConfig) Thresholds() models.Thresholds {
	return models.Thresholds{MinSBP: t.MinSBP, MaxSBP: t.MaxSBP, MinDBP: t.MinDBP, MaxDBP: t.MaxDBP}
}

// SimulationConfig controls the measurement simulator
type SimulationConfig struct {
	Days                   int     `yaml:"days"`
	Seed                   *int64  `yaml:"seed"`
	Scenario               string  `yaml:"scenario"`
	Transition             string  `yaml:"transition"`
	LegacyDiffHalving      bool    `yaml:"legacy_diff_halving"`
	TriggerIntervalHours   float64 `yaml:"trigger_interval_hours"`
	ProcessingLatencyHours float64 `yaml:"processing_latency_hours"`
}

// LogConfig controls logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StreamConfig controls the live stream server
type StreamConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Encoding string        `yaml:"encoding"`
	Tick     time.Duration `yaml:"tick"` // wall-clock time per simulated day
	Buffer   int           `yaml:"buffer"`
}

// Default returns the built-in configuration
func Default() *Config {
	sim := simulator.DefaultConfig()
	return &Config{
		Data: DataConfig{
			Columns: history.DefaultColumns(),
			Thresholds: ThresholdsConfig{
				MinSBP: 80,
				MaxSBP: 180,
				MinDBP: 50,
				MaxDBP: 120,
			},
		},
		Simulation: SimulationConfig{
			Days:                   100,
			Transition:             patient.TwoSided{}.Name(),
			LegacyDiffHalving:      sim.LegacyDiffHalving,
			TriggerIntervalHours:   sim.TriggerInterval,
			ProcessingLatencyHours: sim.ProcessingLatency,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Stream: StreamConfig{
			Host:     "127.0.0.1",
			Port:     8787,
			Encoding: "json",
			Tick:     time.Second,
			Buffer:   100,
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path searches for bpsim.yaml; a missing file is only an
// error when path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Find()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the first bpsim.yaml in the working directory or next to the
// executable, or "" when there is none
func Find() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	exe, err := os.Executable()
	if err == nil {
		candidate := filepath.Join(filepath.Dir(exe), FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BPSIM_DATA_PATH"); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv("BPSIM_DATA_DRIVER"); v != "" {
		c.Data.Driver = history.Driver(v)
	}
	if v := os.Getenv("BPSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid BPSIM_SEED %q: %w", v, err)
		}
		c.Simulation.Seed = &seed
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Simulation.Days <= 0 {
		return fmt.Errorf("simulation.days must be positive, got %d", c.Simulation.Days)
	}
	if c.Simulation.TriggerIntervalHours <= 0 {
		return fmt.Errorf("simulation.trigger_interval_hours must be positive")
	}
	if c.Simulation.ProcessingLatencyHours < 0 {
		return fmt.Errorf("simulation.processing_latency_hours must not be negative")
	}
	if _, err := patient.PolicyByName(c.Simulation.Transition); err != nil {
		return fmt.Errorf("simulation.transition: %w", err)
	}
	if c.Stream.Port < 0 || c.Stream.Port > 65535 {
		return fmt.Errorf("stream.port out of range: %d", c.Stream.Port)
	}
	if c.Stream.Tick <= 0 {
		return fmt.Errorf("stream.tick must be positive")
	}
	th := c.Data.Thresholds
	if th.MinSBP >= th.MaxSBP || th.MinDBP >= th.MaxDBP {
		return fmt.Errorf("data.thresholds: lower bounds must be below upper bounds")
	}
	return nil
}

// SimulatorConfig converts the simulation section
func (c *Config) SimulatorConfig() simulator.Config {
	return simulator.Config{
		TriggerInterval:   c.Simulation.TriggerIntervalHours,
		ProcessingLatency: c.Simulation.ProcessingLatencyHours,
		LegacyDiffHalving: c.Simulation.LegacyDiffHalving,
	}
}
