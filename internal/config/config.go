// Package config loads the project configuration file (xlsform.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "xlsform.yaml"

// Output formats accepted by output.format.
const (
	FormatText       = "text"
	FormatJSON       = "json"
	FormatYAML       = "yaml"
	FormatStructured = "structured"
)

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML, FormatStructured}

// ValidLogLevels lists the accepted log levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Config is the project configuration.
type Config struct {
	// XLSFormFile is the workbook validated when no file argument is given.
	XLSFormFile string `yaml:"xlsform_file"`

	ODK    ODKConfig    `yaml:"odk"`
	Rules  RulesConfig  `yaml:"rules"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// ODKConfig configures the external ODK Validate run.
type ODKConfig struct {
	Enabled bool   `yaml:"enabled"`
	JarPath string `yaml:"jar_path"`
	Timeout string `yaml:"timeout"`
}

// RulesConfig tunes the rule engine.
type RulesConfig struct {
	Disabled          []string `yaml:"disabled,omitempty"`
	BlankRunThreshold int      `yaml:"blank_run_threshold"`
}

// OutputConfig selects the report encoding.
type OutputConfig struct {
	Format      string `yaml:"format"` // text, json, yaml, structured
	Color       bool   `yaml:"color"`
	TemplateDir string `yaml:"template_dir,omitempty"` // overrides report.tpl for text output
}

// LogConfig configures the zap logger built by the CLI.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		XLSFormFile: "survey.xlsx",
		ODK: ODKConfig{
			Enabled: true,
			Timeout: "180s",
		},
		Rules: RulesConfig{
			BlankRunThreshold: 20,
		},
		Output: OutputConfig{
			Format: FormatText,
			Color:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Path returns the configuration path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("XLSFORM_FILE")); v != "" {
		c.XLSFormFile = v
	}
	if v := strings.TrimSpace(os.Getenv("XLSFORM_LOG_LEVEL")); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate rejects unknown formats, log levels and negative thresholds.
func (c *Config) Validate() error {
	if !contains(ValidFormats, c.Output.Format) {
		return fmt.Errorf("config: invalid output.format %q (valid: %v)", c.Output.Format, ValidFormats)
	}
	if !contains(ValidLogLevels, c.Log.Level) {
		return fmt.Errorf("config: invalid log.level %q (valid: %v)", c.Log.Level, ValidLogLevels)
	}
	if c.Rules.BlankRunThreshold < 0 {
		return fmt.Errorf("config: rules.blank_run_threshold must not be negative, got %d", c.Rules.BlankRunThreshold)
	}
	if c.ODK.Timeout != "" {
		if _, err := time.ParseDuration(c.ODK.Timeout); err != nil {
			return fmt.Errorf("config: invalid odk.timeout %q: %w", c.ODK.Timeout, err)
		}
	}
	return nil
}

// GetODKTimeout returns the external validator timeout as a duration.
func (c *Config) GetODKTimeout() time.Duration {
	d, err := time.ParseDuration(c.ODK.Timeout)
	if err != nil || d <= 0 {
		return 180 * time.Second
	}
	return d
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
