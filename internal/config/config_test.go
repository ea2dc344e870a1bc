package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/aist/internal/cost"
)

// Feature: aist, Property 13: Config merge precedence
func TestConfigMergePrecedence(t *testing.T) {
	// Generator for a non-empty string field value.
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.-]{1,20}`)

	// Each field is independently either unset or set.
	configGen := rapid.Custom(func(t *rapid.T) *Config {
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasProjectsDir") {
			cfg.ProjectsDir = nonEmptyString.Draw(t, "projectsDir")
		}
		if rapid.Bool().Draw(t, "hasEndpoint") {
			cfg.Telemetry.Endpoint = nonEmptyString.Draw(t, "endpoint")
		}
		if rapid.Bool().Draw(t, "hasWorkers") {
			cfg.Workers = rapid.IntRange(1, 64).Draw(t, "workers")
		}
		if rapid.Bool().Draw(t, "hasLimit") {
			cfg.DefaultLimit = rapid.IntRange(1, 100).Draw(t, "limit")
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")

		merged := Merge(global, project)
		defaults := Defaults()

		checkField(t, "ProjectsDir",
			global.ProjectsDir, project.ProjectsDir, defaults.ProjectsDir,
			merged.ProjectsDir)
		checkField(t, "Telemetry.Endpoint",
			global.Telemetry.Endpoint, project.Telemetry.Endpoint, defaults.Telemetry.Endpoint,
			merged.Telemetry.Endpoint)
		checkField(t, "Workers",
			global.Workers, project.Workers, defaults.Workers,
			merged.Workers)
		checkField(t, "DefaultLimit",
			global.DefaultLimit, project.DefaultLimit, defaults.DefaultLimit,
			merged.DefaultLimit)
	})
}

// checkField asserts the merge precedence rule for a single field:
//   - project set → merged == project
//   - project unset, global set → merged == global
//   - both unset → merged == defaultVal
func checkField[T comparable](t *rapid.T, name string, globalVal, projectVal, defaultVal, mergedVal T) {
	t.Helper()
	var zero T
	switch {
	case projectVal != zero:
		if mergedVal != projectVal {
			t.Fatalf("%s: both set, expected project value %v, got %v", name, projectVal, mergedVal)
		}
	case globalVal != zero:
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set, expected global value %v, got %v", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set, expected default %v, got %v", name, defaultVal, mergedVal)
		}
	}
}

func TestDefaultsValues(t *testing.T) {
	t.Setenv("HOME", "/home/dev")
	d := Defaults()
	if d.ProjectsDir != "/home/dev/.claude/projects" {
		t.Errorf("ProjectsDir: got %q", d.ProjectsDir)
	}
	if d.Workers != 8 || d.DefaultLimit != 10 {
		t.Errorf("Workers/DefaultLimit: got %d/%d", d.Workers, d.DefaultLimit)
	}
	if d.Pricing != cost.DefaultPricing {
		t.Errorf("Pricing: got %+v", d.Pricing)
	}
	if d.IgnorePatterns == nil || len(d.IgnorePatterns) != 0 {
		t.Errorf("IgnorePatterns: want empty slice, got %v", d.IgnorePatterns)
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	if !reflect.DeepEqual(*cfg, Defaults()) {
		t.Errorf("want defaults, got %+v", cfg)
	}
}

func TestLoadGlobalXDG(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))
	writeFile(t, filepath.Join(tmp, "xdg", "aist", "config.yaml"), `
projects_dir: ~/transcripts
ignore_patterns: ["scratch-*"]
workers: 2
pricing:
  input_per_million: 3
telemetry:
  endpoint: localhost:4317
  insecure: true
`)

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjectsDir != filepath.Join(tmp, "transcripts") {
		t.Errorf("ProjectsDir: got %q", cfg.ProjectsDir)
	}
	merged := Merge(cfg, nil)
	if merged.Workers != 2 || merged.DefaultLimit != 10 {
		t.Errorf("Workers/DefaultLimit: got %d/%d", merged.Workers, merged.DefaultLimit)
	}
	if merged.Pricing.InputPerMillion != 3 || merged.Pricing.OutputPerMillion != 75 {
		t.Errorf("Pricing: got %+v", merged.Pricing)
	}
	if merged.Telemetry != (Telemetry{Endpoint: "localhost:4317", Insecure: true}) {
		t.Errorf("Telemetry: got %+v", merged.Telemetry)
	}
	if !reflect.DeepEqual(merged.IgnorePatterns, []string{"scratch-*"}) {
		t.Errorf("IgnorePatterns: got %v", merged.IgnorePatterns)
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, ".aist.yaml"), "default_limit: 3\n")

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || cfg.DefaultLimit != 3 {
		t.Errorf("DefaultLimit: got %+v", cfg)
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", "")

	// Write an invalid YAML file where LoadGlobal expects it.
	writeFile(t, filepath.Join(tmp, ".config", "aist", "config.yaml"), "workers: [unclosed")

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid YAML, got nil")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if parseErr.Path != filepath.Join(tmp, ".config", "aist", "config.yaml") {
		t.Errorf("Path: got %q", parseErr.Path)
	}
	if errors.Unwrap(err) == nil {
		t.Error("ParseError should unwrap to the YAML error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("HOME", "/home/dev")
	t.Setenv("AIST_PROJECTS_DIR", "~/elsewhere")
	t.Setenv("AIST_OTEL_ENDPOINT", "collector:4317")
	t.Setenv("AIST_OTEL_INSECURE", "true")

	cfg := Defaults()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjectsDir != "/home/dev/elsewhere" {
		t.Errorf("ProjectsDir: got %q", cfg.ProjectsDir)
	}
	if cfg.Telemetry != (Telemetry{Endpoint: "collector:4317", Insecure: true}) {
		t.Errorf("Telemetry: got %+v", cfg.Telemetry)
	}

	t.Setenv("AIST_OTEL_INSECURE", "maybe")
	if err := ApplyEnv(&cfg); err == nil {
		t.Error("expected an error for a non-boolean AIST_OTEL_INSECURE")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
