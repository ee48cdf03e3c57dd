package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hargabyte/cppast/internal/builder"
	"github.com/hargabyte/cppast/internal/compile"
	"github.com/hargabyte/cppast/internal/parser"
)

// ConfigFileName is the name of the cppast configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the cppast configuration directory
const ConfigDirName = ".cppast"

// Config holds all cppast configuration
type Config struct {
	Parser ParserConfig `yaml:"parser"`
	Output OutputConfig `yaml:"output"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

// ParserConfig holds front-end and model builder settings
type ParserConfig struct {
	Defines                []string `yaml:"defines"`
	IncludeFolders         []string `yaml:"include_folders"`
	SystemIncludeFolders   []string `yaml:"system_include_folders"`
	AdditionalArguments    []string `yaml:"additional_arguments"`
	FollowIncludes         bool     `yaml:"follow_includes"`
	ParseMacros            bool     `yaml:"parse_macros"`
	ParseSystemAttributes  bool     `yaml:"parse_system_attributes"`
	ParseTokenAttributes   bool     `yaml:"parse_token_attributes"`
	ParseCommentAttributes bool     `yaml:"parse_comment_attributes"`
	ParseComments          bool     `yaml:"parse_comments"`
	AutoSquashTypedef      bool     `yaml:"auto_squash_typedef"`
	StrictSyntax           bool     `yaml:"strict_syntax"`
	TargetCPU              string   `yaml:"target_cpu"`
	Language               string   `yaml:"language"`
	TokenCacheSize         int      `yaml:"token_cache_size"`
	Parallelism            int      `yaml:"parallelism"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format        string `yaml:"format"`
	Density       string `yaml:"density"`
	IncludeSystem bool   `yaml:"include_system"`
}

// StoreConfig selects the export database
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .cppast/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Keys missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigDir locates the .cppast directory by walking up from startDir.
// Returns the path to the .cppast directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .cppast directory if it doesn't exist.
// Returns the path to the .cppast directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if !oneOf(cfg.Output.Density, ValidDensities) {
		return fmt.Errorf("%w: density must be one of %v, got %q",
			ErrInvalidConfig, ValidDensities, cfg.Output.Density)
	}

	if !oneOf(cfg.Output.Format, ValidFormats) {
		return fmt.Errorf("%w: format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}

	if !oneOf(cfg.Store.Backend, ValidBackends) {
		return fmt.Errorf("%w: backend must be one of %v, got %q",
			ErrInvalidConfig, ValidBackends, cfg.Store.Backend)
	}

	if !oneOf(cfg.Parser.TargetCPU, ValidTargets) {
		return fmt.Errorf("%w: target_cpu must be one of %v, got %q",
			ErrInvalidConfig, ValidTargets, cfg.Parser.TargetCPU)
	}

	if !oneOf(cfg.Parser.Language, ValidLanguages) {
		return fmt.Errorf("%w: language must be one of %v, got %q",
			ErrInvalidConfig, ValidLanguages, cfg.Parser.Language)
	}

	if !oneOf(cfg.Log.Level, ValidLogLevels) {
		return fmt.Errorf("%w: log level must be one of %v, got %q",
			ErrInvalidConfig, ValidLogLevels, cfg.Log.Level)
	}

	if !oneOf(cfg.Log.Format, ValidLogFormats) {
		return fmt.Errorf("%w: log format must be one of %v, got %q",
			ErrInvalidConfig, ValidLogFormats, cfg.Log.Format)
	}

	if cfg.Parser.TokenCacheSize <= 0 {
		return fmt.Errorf("%w: token_cache_size must be positive, got %d",
			ErrInvalidConfig, cfg.Parser.TokenCacheSize)
	}

	if cfg.Parser.Parallelism < 0 {
		return fmt.Errorf("%w: parallelism must be non-negative, got %d",
			ErrInvalidConfig, cfg.Parser.Parallelism)
	}

	return nil
}

// SaveDefault writes the default configuration to .cppast/config.yaml in workDir.
// Creates the .cppast directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# cppast configuration\n# Command-line flags override these values.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}

// CompileOptions converts the parser section into batch compile options.
func (c *Config) CompileOptions() compile.Options {
	p := c.Parser
	opts := compile.DefaultOptions()

	opts.Parser.Defines = p.Defines
	opts.Parser.IncludeFolders = p.IncludeFolders
	opts.Parser.SystemIncludeFolders = p.SystemIncludeFolders
	opts.Parser.FollowIncludes = p.FollowIncludes
	opts.Parser.StrictSyntax = p.StrictSyntax
	opts.Parser.TargetCPU = p.TargetCPU
	opts.Parser.ParseComments = p.ParseComments || p.ParseCommentAttributes
	opts.Parser.Language = parser.Language(strings.ToLower(p.Language))

	opts.Builder = builder.Options{
		ParseMacros:            p.ParseMacros,
		ParseSystemAttributes:  p.ParseSystemAttributes,
		ParseTokenAttributes:   p.ParseTokenAttributes,
		ParseCommentAttributes: p.ParseCommentAttributes,
		ParseComments:          p.ParseComments,
		AutoSquashTypedef:      p.AutoSquashTypedef,
		TokenCacheSize:         p.TokenCacheSize,
	}
	opts.AdditionalArguments = p.AdditionalArguments
	opts.Parallelism = p.Parallelism
	return opts
}
