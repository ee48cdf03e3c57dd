package output

import (
	"testing"
)

// TestGetFormatterYAML tests that GetFormatter returns a YAML formatter
func TestGetFormatterYAML(t *testing.T) {
	formatter, err := GetFormatter(FormatYAML)
	if err != nil {
		t.Fatalf("GetFormatter(FormatYAML) failed: %v", err)
	}

	_, ok := formatter.(*YAMLFormatter)
	if !ok {
		t.Errorf("expected *YAMLFormatter, got %T", formatter)
	}
}

// TestGetFormatterJSON tests that GetFormatter returns a JSON formatter
func TestGetFormatterJSON(t *testing.T) {
	formatter, err := GetFormatter(FormatJSON)
	if err != nil {
		t.Fatalf("GetFormatter(FormatJSON) failed: %v", err)
	}

	_, ok := formatter.(*JSONFormatter)
	if !ok {
		t.Errorf("expected *JSONFormatter, got %T", formatter)
	}
}

// TestGetFormatterInvalid tests that GetFormatter returns error for invalid format
func TestGetFormatterInvalid(t *testing.T) {
	_, err := GetFormatter(Format("cgf"))
	if err == nil {
		t.Error("GetFormatter should return error for invalid format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"yaml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"  yaml  ", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseDensity(t *testing.T) {
	tests := []struct {
		input    string
		expected Density
		wantErr  bool
	}{
		{"sparse", DensitySparse, false},
		{"SPARSE", DensitySparse, false},
		{"medium", DensityMedium, false},
		{"dense", DensityDense, false},
		{"  medium  ", DensityMedium, false},
		{"smart", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDensity(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDensity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseDensity(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDensityIncludes(t *testing.T) {
	tests := []struct {
		density    Density
		types      bool
		attributes bool
		layout     bool
		comments   bool
		tokens     bool
	}{
		{DensitySparse, false, false, false, false, false},
		{DensityMedium, true, true, false, false, false},
		{DensityDense, true, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.density), func(t *testing.T) {
			if got := tt.density.IncludesTypes(); got != tt.types {
				t.Errorf("IncludesTypes() = %v, want %v", got, tt.types)
			}
			if got := tt.density.IncludesAttributes(); got != tt.attributes {
				t.Errorf("IncludesAttributes() = %v, want %v", got, tt.attributes)
			}
			if got := tt.density.IncludesLayout(); got != tt.layout {
				t.Errorf("IncludesLayout() = %v, want %v", got, tt.layout)
			}
			if got := tt.density.IncludesComments(); got != tt.comments {
				t.Errorf("IncludesComments() = %v, want %v", got, tt.comments)
			}
			if got := tt.density.IncludesTokens(); got != tt.tokens {
				t.Errorf("IncludesTokens() = %v, want %v", got, tt.tokens)
			}
		})
	}
}

func TestValidateDensity(t *testing.T) {
	tests := []struct {
		density  Density
		expected bool
	}{
		{DensitySparse, true},
		{DensityMedium, true},
		{DensityDense, true},
		{Density("smart"), false},
		{Density(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.density), func(t *testing.T) {
			got := ValidateDensity(tt.density)
			if got != tt.expected {
				t.Errorf("ValidateDensity(%s) = %v, want %v", tt.density, got, tt.expected)
			}
		})
	}
}

func TestDefaultConstants(t *testing.T) {
	if DefaultFormat != FormatYAML {
		t.Errorf("DefaultFormat should be YAML, got %s", DefaultFormat)
	}

	if DefaultDensity != DensityMedium {
		t.Errorf("DefaultDensity should be medium, got %s", DefaultDensity)
	}
}
