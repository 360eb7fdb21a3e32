// Package config loads the jsnb configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config location.
const EnvConfigPath = "JSNB_CONFIG"

// Evaluator modes.
const (
	ModeLocal  = "local"  // Embedded sandbox runtime
	ModeRemote = "remote" // HTTP evaluation service
)

// DefaultTimeout bounds every block evaluation unless overridden.
const DefaultTimeout = 5 * time.Second

// Config represents the jsnb configuration file.
type Config struct {
	DBPath    string          `yaml:"db_path,omitempty"`
	Log       LogConfig       `yaml:"log"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// EvaluatorConfig selects and tunes the script evaluator.
type EvaluatorConfig struct {
	Mode    string        `yaml:"mode"`          // local | remote
	URL     string        `yaml:"url,omitempty"` // required for remote
	Timeout time.Duration `yaml:"timeout"`
	Latency time.Duration `yaml:"latency,omitempty"`
}

// TelemetryConfig controls OpenTelemetry export. An empty endpoint disables it.
type TelemetryConfig struct {
	OTLPEndpoint string  `yaml:"otlp_endpoint,omitempty"`
	Insecure     bool    `yaml:"insecure,omitempty"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Evaluator: EvaluatorConfig{
			Mode:    ModeLocal,
			Timeout: DefaultTimeout,
		},
		Telemetry: TelemetryConfig{
			SampleRate: 1.0,
		},
	}
}

// DefaultPath returns ~/.jsnb/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".jsnb", "config.yaml"), nil
}

// ResolvePath picks the config location.
// Resolution order: explicit path, $JSNB_CONFIG, then ~/.jsnb/config.yaml.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, nil
	}
	return DefaultPath()
}

// Load reads the config file at path over the defaults.
// A missing file is not an error and yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects unknown modes, levels and formats.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Evaluator.Mode {
	case ModeLocal:
	case ModeRemote:
		if c.Evaluator.URL == "" {
			return errors.New("evaluator.url is required in remote mode")
		}
	default:
		return fmt.Errorf("unknown evaluator mode %q", c.Evaluator.Mode)
	}
	if c.Evaluator.Timeout <= 0 {
		return fmt.Errorf("evaluator.timeout must be positive, got %s", c.Evaluator.Timeout)
	}
	if c.Evaluator.Latency < 0 {
		return fmt.Errorf("evaluator.latency must not be negative, got %s", c.Evaluator.Latency)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be within [0, 1], got %v", c.Telemetry.SampleRate)
	}
	return nil
}
