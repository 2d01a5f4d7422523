package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deeeed/expo-audio-stream/internal/audio"
	"github.com/deeeed/expo-audio-stream/internal/fixtures"
)

// DefaultPackage is the application monitored when none is given.
const DefaultPackage = "net.siteed.audioplayground.development"

// MaxInterval is the longest accepted polling interval, in seconds.
const MaxInterval = 3600

// Config represents the complete tool configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Generator GeneratorConfig `yaml:"generator"`
	Monitor   MonitorConfig   `yaml:"monitor"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// GeneratorConfig contains fixture generation parameters
type GeneratorConfig struct {
	OutputDir string             `yaml:"output_dir"`
	Amplitude float64            `yaml:"amplitude"`
	Fixtures  []fixtures.Fixture `yaml:"fixtures"`
}

// MonitorConfig contains memory monitor parameters
type MonitorConfig struct {
	Package          string  `yaml:"package"`
	Interval         int     `yaml:"interval"` // seconds
	ADBPath          string  `yaml:"adb_path"`
	ListenAddress    string  `yaml:"listen_address"`
	WarnNativeMB     float64 `yaml:"warn_native_mb"`
	CriticalNativeMB float64 `yaml:"critical_native_mb"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Generator: GeneratorConfig{
			OutputDir: ".",
			Amplitude: audio.DefaultAmplitude,
			Fixtures:  fixtures.Default(),
		},
		Monitor: MonitorConfig{
			Package:          DefaultPackage,
			Interval:         2,
			ADBPath:          "adb",
			WarnNativeMB:     10,
			CriticalNativeMB: 20,
		},
	}
}

// Load reads and parses the configuration file over the defaults. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of every section
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator config: %w", err)
	}

	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// Validate validates generator configuration
func (g *GeneratorConfig) Validate() error {
	if g.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}

	if g.Amplitude < 0 || g.Amplitude > 1 {
		return fmt.Errorf("amplitude must be between 0 and 1, got %f", g.Amplitude)
	}

	if len(g.Fixtures) == 0 {
		return fmt.Errorf("at least one fixture is required")
	}

	seen := make(map[string]bool, len(g.Fixtures))
	for i, f := range g.Fixtures {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("fixtures[%d]: %w", i, err)
		}
		if seen[f.Name] {
			return fmt.Errorf("fixtures[%d]: duplicate name '%s'", i, f.Name)
		}
		seen[f.Name] = true
	}

	return nil
}

// Validate validates monitor configuration
func (m *MonitorConfig) Validate() error {
	if m.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}

	if m.Interval < 1 || m.Interval > MaxInterval {
		return fmt.Errorf("interval must be between 1 and %d seconds, got %d", MaxInterval, m.Interval)
	}

	if m.ADBPath == "" {
		return fmt.Errorf("adb_path cannot be empty")
	}

	if m.WarnNativeMB <= 0 {
		return fmt.Errorf("warn_native_mb must be positive, got %f", m.WarnNativeMB)
	}

	if m.CriticalNativeMB <= m.WarnNativeMB {
		return fmt.Errorf("critical_native_mb (%f) must be greater than warn_native_mb (%f)",
			m.CriticalNativeMB, m.WarnNativeMB)
	}

	return nil
}

// GetIntervalDuration returns the polling interval as a time.Duration
func (m *MonitorConfig) GetIntervalDuration() time.Duration {
	return time.Duration(m.Interval) * time.Second
}
