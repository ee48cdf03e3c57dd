package mcp

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hargabyte/cppast/internal/compile"
)

func testServer(t *testing.T, tools ...string) *Server {
	t.Helper()
	s, err := New(Config{
		Tools:   tools,
		Compile: compile.DefaultOptions(),
		Logger:  slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func TestGetToolSchemas(t *testing.T) {
	expectedTools := []string{"cpp_parse", "cpp_find", "cpp_attributes"}

	for _, name := range expectedTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(expectedTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(expectedTools))
	}

	if got := len(testServer(t).GetToolSchemas()); got != len(expectedTools) {
		t.Errorf("GetToolSchemas returned %d schemas, want %d", got, len(expectedTools))
	}
}

func TestToolSchemaParameters(t *testing.T) {
	tests := []struct {
		tool          string
		requiredParam string
	}{
		{"cpp_find", "name"},
		{"cpp_attributes", "name"},
	}

	for _, tt := range tests {
		schema, ok := toolSchemaRegistry[tt.tool]
		if !ok {
			t.Fatalf("missing tool: %s", tt.tool)
		}

		found := false
		for _, p := range schema.Parameters {
			if p.Name == tt.requiredParam {
				found = true
				if !p.Required {
					t.Errorf("tool %s param %s should be required", tt.tool, tt.requiredParam)
				}
			}
		}
		if !found {
			t.Errorf("tool %s missing parameter %s", tt.tool, tt.requiredParam)
		}
	}

	for _, p := range toolSchemaRegistry["cpp_parse"].Parameters {
		if p.Required {
			t.Errorf("cpp_parse param %s is marked required but should not be", p.Name)
		}
	}
}

func TestAllToolsMatchesRegistry(t *testing.T) {
	registryNames := make([]string, 0, len(toolSchemaRegistry))
	for name := range toolSchemaRegistry {
		registryNames = append(registryNames, name)
	}
	sort.Strings(registryNames)

	allToolsCopy := make([]string, len(AllTools))
	copy(allToolsCopy, AllTools)
	sort.Strings(allToolsCopy)

	if strings.Join(registryNames, ",") != strings.Join(allToolsCopy, ",") {
		t.Errorf("schema registry %v does not match AllTools %v", registryNames, allToolsCopy)
	}
}

func TestNewRejectsUnknownTool(t *testing.T) {
	if _, err := New(Config{Tools: []string{"cpp_nope"}}); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestCallToolUnregistered(t *testing.T) {
	s := testServer(t, "cpp_parse")
	if _, err := s.CallTool(context.Background(), "cpp_find", map[string]any{"name": "x"}); err == nil {
		t.Error("expected error for a tool that was not registered")
	}
	if got := s.ListTools(); len(got) != 1 || got[0] != "cpp_parse" {
		t.Errorf("ListTools() = %v", got)
	}
}

const sample = `
namespace geo {
struct Point { int x; int y; };
__declspec(dllexport) int area(Point p);
}
`

func TestCallToolParse(t *testing.T) {
	s := testServer(t)

	out, err := s.CallTool(context.Background(), "cpp_parse", map[string]any{
		"code":    sample,
		"density": "sparse",
	})
	if err != nil {
		t.Fatalf("cpp_parse: %v", err)
	}

	var doc struct {
		Namespaces []struct {
			Name    string `yaml:"name"`
			Classes []struct {
				Name string `yaml:"name"`
			} `yaml:"classes"`
		} `yaml:"namespaces"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("result is not YAML: %v\n%s", err, out)
	}
	if len(doc.Namespaces) != 1 || doc.Namespaces[0].Name != "geo" {
		t.Fatalf("unexpected namespaces in\n%s", out)
	}
	if len(doc.Namespaces[0].Classes) != 1 || doc.Namespaces[0].Classes[0].Name != "Point" {
		t.Errorf("unexpected classes in\n%s", out)
	}
}

func TestCallToolParseErrors(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	if _, err := s.CallTool(ctx, "cpp_parse", map[string]any{}); !errors.Is(err, errNoInput) {
		t.Errorf("expected errNoInput, got %v", err)
	}
	if _, err := s.CallTool(ctx, "cpp_parse", map[string]any{"code": "int x;", "density": "huge"}); err == nil {
		t.Error("expected error for invalid density")
	}
}

func TestCallToolFind(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	out, err := s.CallTool(ctx, "cpp_find", map[string]any{"code": sample, "name": "geo::Point"})
	if err != nil {
		t.Fatalf("cpp_find: %v", err)
	}

	var res struct {
		Kind        string `yaml:"kind"`
		FullName    string `yaml:"full_name"`
		Declaration struct {
			Fields []struct {
				Name string `yaml:"name"`
				Type string `yaml:"type"`
			} `yaml:"fields"`
		} `yaml:"declaration"`
	}
	if err := yaml.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("result is not YAML: %v\n%s", err, out)
	}
	if res.Kind != "struct" || res.FullName != "geo::Point" {
		t.Errorf("unexpected result\n%s", out)
	}
	if len(res.Declaration.Fields) != 2 || res.Declaration.Fields[1].Type != "int" {
		t.Errorf("unexpected fields\n%s", out)
	}

	_, err = s.CallTool(ctx, "cpp_find", map[string]any{"code": sample, "name": "geo::Missing"})
	if !errors.Is(err, errNotFound) {
		t.Errorf("expected errNotFound, got %v", err)
	}

	if _, err := s.CallTool(ctx, "cpp_find", map[string]any{"code": sample}); err == nil {
		t.Error("expected error without a name")
	}
}

func TestCallToolAttributes(t *testing.T) {
	s := testServer(t)

	out, err := s.CallTool(context.Background(), "cpp_attributes", map[string]any{
		"code": sample,
		"name": "geo::area",
	})
	if err != nil {
		t.Fatalf("cpp_attributes: %v", err)
	}

	var res struct {
		Declaration  string `yaml:"declaration"`
		PublicExport bool   `yaml:"public_export"`
		Attributes   []struct {
			Name string `yaml:"name"`
		} `yaml:"attributes"`
	}
	if err := yaml.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("result is not YAML: %v\n%s", err, out)
	}
	if res.Declaration != "geo::area" || !res.PublicExport {
		t.Errorf("unexpected result\n%s", out)
	}
	if len(res.Attributes) == 0 || res.Attributes[0].Name != "dllexport" {
		t.Errorf("expected dllexport attribute\n%s", out)
	}
}
