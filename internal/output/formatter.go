package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hargabyte/cppast/internal/model"
)

// Formatter writes a Compilation in one output format.
type Formatter interface {
	// Format renders comp at the given density and returns the text.
	Format(comp *model.Compilation, opts Options) (string, error)

	// FormatToWriter writes the rendered compilation directly to a writer.
	FormatToWriter(w io.Writer, comp *model.Compilation, opts Options) error
}

// Options select what a formatter emits.
type Options struct {
	Density Density
	// IncludeSystem adds the system declaration forest to the document.
	IncludeSystem bool
}

// YAMLFormatter formats compilations as YAML output.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format formats a compilation as YAML.
func (f *YAMLFormatter) Format(comp *model.Compilation, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, comp, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes YAML output to a writer.
func (f *YAMLFormatter) FormatToWriter(w io.Writer, comp *model.Compilation, opts Options) error {
	doc := NewDocument(comp, opts)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(doc)
}

// JSONFormatter formats compilations as JSON output.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format formats a compilation as JSON.
func (f *JSONFormatter) Format(comp *model.Compilation, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, comp, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes JSON output to a writer.
func (f *JSONFormatter) FormatToWriter(w io.Writer, comp *model.Compilation, opts Options) error {
	doc := NewDocument(comp, opts)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(doc)
}

// GetFormatter returns a formatter for the specified format.
func GetFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
