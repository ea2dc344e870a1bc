package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/aist/internal/cost"
)

// Telemetry configures OTLP metric export.
type Telemetry struct {
	Endpoint string `yaml:"endpoint,omitempty"` // host:port of an OTLP gRPC collector
	Insecure bool   `yaml:"insecure,omitempty"`
}

// Config holds all configurable aist settings.
type Config struct {
	ProjectsDir    string       `yaml:"projects_dir,omitempty"`
	IgnorePatterns []string     `yaml:"ignore_patterns,omitempty"`
	Workers        int          `yaml:"workers,omitempty"`
	DefaultLimit   int          `yaml:"default_limit,omitempty"`
	Pricing        cost.Pricing `yaml:"pricing"`
	Telemetry      Telemetry    `yaml:"telemetry"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		ProjectsDir:    filepath.Join(home, ".claude", "projects"),
		IgnorePatterns: []string{},
		Workers:        8,
		DefaultLimit:   10,
		Pricing:        cost.DefaultPricing,
	}
}

// GlobalPath returns the global config file location, honouring
// XDG_CONFIG_HOME.
func GlobalPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aist", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "aist", "config.yaml"), nil
}

// LoadGlobal reads the global config file.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .aist.yaml in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".aist.yaml", false)
}

// loadFile reads and parses a YAML config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	cfg.ProjectsDir = expandHome(cfg.ProjectsDir)
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults. Zero values count as
// missing.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.ProjectsDir != "" {
			result.ProjectsDir = c.ProjectsDir
		}
		if len(c.IgnorePatterns) > 0 {
			result.IgnorePatterns = c.IgnorePatterns
		}
		if c.Workers > 0 {
			result.Workers = c.Workers
		}
		if c.DefaultLimit > 0 {
			result.DefaultLimit = c.DefaultLimit
		}
		if c.Pricing.InputPerMillion > 0 {
			result.Pricing.InputPerMillion = c.Pricing.InputPerMillion
		}
		if c.Pricing.OutputPerMillion > 0 {
			result.Pricing.OutputPerMillion = c.Pricing.OutputPerMillion
		}
		if c.Telemetry.Endpoint != "" {
			result.Telemetry.Endpoint = c.Telemetry.Endpoint
		}
		if c.Telemetry.Insecure {
			result.Telemetry.Insecure = true
		}
	}
	return result
}

// ApplyEnv overrides cfg from AIST_PROJECTS_DIR, AIST_OTEL_ENDPOINT and
// AIST_OTEL_INSECURE.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("AIST_PROJECTS_DIR"); v != "" {
		cfg.ProjectsDir = expandHome(v)
	}
	if v := os.Getenv("AIST_OTEL_ENDPOINT"); v != "" {
		cfg.Telemetry.Endpoint = v
	}
	if v := os.Getenv("AIST_OTEL_INSECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AIST_OTEL_INSECURE %q: %w", v, err)
		}
		cfg.Telemetry.Insecure = b
	}
	return nil
}

// Load merges defaults, the global file, the project file and the
// environment.
func Load() (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, err
	}
	project, err := LoadProject()
	if err != nil {
		return Config{}, err
	}
	cfg := Merge(global, project)
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
