package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hargabyte/cppast/internal/parser"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Parser.FollowIncludes {
		t.Error("expected follow_includes to default to true")
	}

	if cfg.Parser.ParseMacros {
		t.Error("expected parse_macros to default to false")
	}

	if !cfg.Parser.ParseTokenAttributes || !cfg.Parser.ParseSystemAttributes {
		t.Error("expected attribute engines to default to on")
	}

	if cfg.Parser.TargetCPU != "x86_64" {
		t.Errorf("expected target_cpu x86_64, got %s", cfg.Parser.TargetCPU)
	}

	if cfg.Parser.TokenCacheSize != 1024 {
		t.Errorf("expected token_cache_size 1024, got %d", cfg.Parser.TokenCacheSize)
	}

	if cfg.Output.Format != "yaml" {
		t.Errorf("expected format yaml, got %s", cfg.Output.Format)
	}

	if cfg.Output.Density != "medium" {
		t.Errorf("expected density medium, got %s", cfg.Output.Density)
	}

	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected backend sqlite, got %s", cfg.Store.Backend)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestIsValidDensity(t *testing.T) {
	tests := []struct {
		density string
		valid   bool
	}{
		{"sparse", true},
		{"medium", true},
		{"dense", true},
		{"invalid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.density, func(t *testing.T) {
			if got := IsValidDensity(tt.density); got != tt.valid {
				t.Errorf("IsValidDensity(%q) = %v, want %v", tt.density, got, tt.valid)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid density",
			modify:  func(c *Config) { c.Output.Density = "huge" },
			wantErr: true,
		},
		{
			name:    "invalid format",
			modify:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "dolt backend",
			modify:  func(c *Config) { c.Store.Backend = "dolt" },
			wantErr: false,
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Store.Backend = "postgres" },
			wantErr: true,
		},
		{
			name:    "arm target",
			modify:  func(c *Config) { c.Parser.TargetCPU = "arm" },
			wantErr: false,
		},
		{
			name:    "unknown target",
			modify:  func(c *Config) { c.Parser.TargetCPU = "mips" },
			wantErr: true,
		},
		{
			name:    "unknown language",
			modify:  func(c *Config) { c.Parser.Language = "rust" },
			wantErr: true,
		},
		{
			name:    "zero token cache",
			modify:  func(c *Config) { c.Parser.TokenCacheSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative parallelism",
			modify:  func(c *Config) { c.Parser.Parallelism = -1 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestFindConfigDir(t *testing.T) {
	tmpDir := t.TempDir()

	projectDir := filepath.Join(tmpDir, "project")
	subDir := filepath.Join(projectDir, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("no config dir returns error", func(t *testing.T) {
		_, err := FindConfigDir(subDir)
		if err == nil {
			t.Error("expected error when no .cppast directory exists")
		}
	})

	configDir := filepath.Join(projectDir, ConfigDirName)
	if err := os.Mkdir(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("finds config dir in current directory", func(t *testing.T) {
		found, err := FindConfigDir(projectDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})

	t.Run("finds config dir in parent directory", func(t *testing.T) {
		found, err := FindConfigDir(subDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})
}

func TestEnsureConfigDir(t *testing.T) {
	tmpDir := t.TempDir()

	dir, err := EnsureConfigDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedDir := filepath.Join(tmpDir, ConfigDirName)
	if dir != expectedDir {
		t.Errorf("expected %s, got %s", expectedDir, dir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("config directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory, got file")
	}

	again, err := EnsureConfigDir(tmpDir)
	if err != nil || again != expectedDir {
		t.Errorf("second call = %s, %v", again, err)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("loads valid config file", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		content := `
parser:
  defines: [NDEBUG, "VERSION=2"]
  parse_macros: true
  parse_token_attributes: false
output:
  format: json
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFromPath(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Parser.Defines) != 2 {
			t.Errorf("expected 2 defines, got %d", len(cfg.Parser.Defines))
		}
		if !cfg.Parser.ParseMacros {
			t.Error("expected parse_macros true")
		}
		if cfg.Parser.ParseTokenAttributes {
			t.Error("an explicit false must override the default")
		}
		if cfg.Output.Format != "json" {
			t.Errorf("expected format json, got %s", cfg.Output.Format)
		}

		// Missing keys keep their defaults.
		if !cfg.Parser.ParseSystemAttributes {
			t.Error("expected parse_system_attributes default true")
		}
		if cfg.Output.Density != "medium" {
			t.Errorf("expected default density, got %s", cfg.Output.Density)
		}
	})

	t.Run("returns defaults for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromPath(filepath.Join(tmpDir, "nonexistent.yaml"))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.Output.Density != DefaultConfig().Output.Density {
			t.Errorf("expected default density, got %s", cfg.Output.Density)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("invalid: yaml: content"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadFromPath(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns error for invalid config values", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "bad-values.yaml")
		content := `
parser:
  target_cpu: sparc
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadFromPath(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("returns defaults when no config dir exists", func(t *testing.T) {
		cfg, err := Load(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.Store.Backend != DefaultConfig().Store.Backend {
			t.Errorf("expected default config")
		}
	})

	t.Run("loads config from .cppast directory", func(t *testing.T) {
		configDir := filepath.Join(tmpDir, ConfigDirName)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatal(err)
		}

		content := `
store:
  backend: dolt
  path: .cppast/dolt
`
		configPath := filepath.Join(configDir, ConfigFileName)
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.Store.Backend != "dolt" {
			t.Errorf("expected backend dolt, got %s", cfg.Store.Backend)
		}
	})
}

func TestSaveDefault(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("creates default config file", func(t *testing.T) {
		configPath, err := SaveDefault(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expectedPath := filepath.Join(tmpDir, ConfigDirName, ConfigFileName)
		if configPath != expectedPath {
			t.Errorf("expected path %s, got %s", expectedPath, configPath)
		}

		cfg, err := LoadFromPath(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if cfg.Parser.TokenCacheSize != DefaultConfig().Parser.TokenCacheSize {
			t.Errorf("saved config doesn't match defaults")
		}
	})

	t.Run("fails if config already exists", func(t *testing.T) {
		if _, err := SaveDefault(tmpDir); err == nil {
			t.Error("expected error when config already exists")
		}
	})
}

func TestCompileOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Parser.Defines = []string{"NDEBUG"}
	cfg.Parser.ParseMacros = true
	cfg.Parser.Language = "c"
	cfg.Parser.TargetCPU = "arm"
	cfg.Parser.Parallelism = 3

	opts := cfg.CompileOptions()

	if opts.Parser.Language != parser.C {
		t.Errorf("expected language c, got %s", opts.Parser.Language)
	}
	if opts.Parser.TargetCPU != "arm" {
		t.Errorf("expected target arm, got %s", opts.Parser.TargetCPU)
	}
	if len(opts.Parser.Defines) != 1 || opts.Parser.Defines[0] != "NDEBUG" {
		t.Errorf("unexpected defines %v", opts.Parser.Defines)
	}
	if !opts.Builder.ParseMacros || !opts.Builder.AutoSquashTypedef {
		t.Errorf("builder options not carried over: %+v", opts.Builder)
	}
	if opts.Builder.TokenCacheSize != 1024 {
		t.Errorf("expected token cache 1024, got %d", opts.Builder.TokenCacheSize)
	}
	if opts.Parallelism != 3 {
		t.Errorf("expected parallelism 3, got %d", opts.Parallelism)
	}
}
