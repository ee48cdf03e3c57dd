package output

import (
	"fmt"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	// FormatYAML is the default output format
	FormatYAML Format = "yaml"

	// FormatJSON is the JSON output format
	FormatJSON Format = "json"
)

// ParseFormat parses a format string into a Format value.
// Accepts: "yaml", "json" (case-insensitive)
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected yaml or json)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Density represents the level of detail in output.
//   - Sparse: declaration names, kinds and locations
//   - Medium: adds types, signatures, enum values, bases and attributes (default)
//   - Dense: adds layout, doc comments, initializers, macro tokens and includes
type Density string

const (
	// DensitySparse lists declarations only
	// Example: {name: area, location: shapes.h:12}
	DensitySparse Density = "sparse"

	// DensityMedium provides balanced detail (default)
	DensityMedium Density = "medium"

	// DensityDense provides full detail
	DensityDense Density = "dense"
)

// ParseDensity parses a density string into a Density value.
// Accepts: "sparse", "medium", "dense" (case-insensitive)
func ParseDensity(s string) (Density, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sparse":
		return DensitySparse, nil
	case "medium":
		return DensityMedium, nil
	case "dense":
		return DensityDense, nil
	default:
		return "", fmt.Errorf("invalid density: %q (expected sparse, medium, or dense)", s)
	}
}

// String returns the string representation of the density.
func (d Density) String() string {
	return string(d)
}

// IncludesTypes returns true if this density level includes types and signatures.
func (d Density) IncludesTypes() bool {
	return d == DensityMedium || d == DensityDense
}

// IncludesAttributes returns true if this density level includes attributes.
func (d Density) IncludesAttributes() bool {
	return d == DensityMedium || d == DensityDense
}

// IncludesLayout returns true if this density level includes sizes and offsets.
func (d Density) IncludesLayout() bool {
	return d == DensityDense
}

// IncludesComments returns true if this density level includes doc comments.
func (d Density) IncludesComments() bool {
	return d == DensityDense
}

// IncludesTokens returns true if this density level includes macro tokens
// and inclusion directives.
func (d Density) IncludesTokens() bool {
	return d == DensityDense
}

// DefaultFormat is the default output format when none is specified.
const DefaultFormat = FormatYAML

// DefaultDensity is the default density level when none is specified.
const DefaultDensity = DensityMedium

// ValidateDensity checks if a density value is valid.
func ValidateDensity(d Density) bool {
	switch d {
	case DensitySparse, DensityMedium, DensityDense:
		return true
	default:
		return false
	}
}
