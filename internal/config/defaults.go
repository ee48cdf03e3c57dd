package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			FollowIncludes:        true,
			ParseSystemAttributes: true,
			ParseTokenAttributes:  true,
			ParseComments:         true,
			AutoSquashTypedef:     true,
			TargetCPU:             "x86_64",
			Language:              "cpp",
			TokenCacheSize:        1024,
		},
		Output: OutputConfig{
			Format:  "yaml",
			Density: "medium",
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    ConfigDirName + "/cppast.db",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// ValidDensities lists the valid values for output density
var ValidDensities = []string{"sparse", "medium", "dense"}

// ValidFormats lists the valid output formats
var ValidFormats = []string{"yaml", "json"}

// ValidBackends lists the valid store backends
var ValidBackends = []string{"sqlite", "dolt"}

// ValidTargets lists the supported target CPUs
var ValidTargets = []string{"x86", "x86_64", "arm", "arm64"}

// ValidLanguages lists the supported source languages
var ValidLanguages = []string{"c", "cpp"}

// ValidLogLevels lists the valid log levels
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the valid log output formats
var ValidLogFormats = []string{"text", "json"}

// IsValidDensity checks if the given density value is valid
func IsValidDensity(density string) bool {
	return oneOf(density, ValidDensities)
}

func oneOf(value string, valid []string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
