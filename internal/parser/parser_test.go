package parser

import (
	"context"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

const testCppSource = `#include <stdint.h>

namespace geo {

// Shape is the base of all shapes.
class Shape {
public:
	virtual ~Shape() = default;
	virtual double area() const = 0;
};

struct Point {
	int32_t x;
	int32_t y;
};

double distance(const Point &a, const Point &b);

} // namespace geo
`

const testCSource = `struct node {
	int value;
	struct node *next;
};

static int count(const struct node *head) {
	int n = 0;
	for (; head; head = head->next) n++;
	return n;
}
`

func TestNewParser(t *testing.T) {
	t.Run("creates C++ parser", func(t *testing.T) {
		p, err := NewParser(Cpp)
		if err != nil {
			t.Fatalf("NewParser(Cpp) failed: %v", err)
		}
		defer p.Close()

		if p.lang != Cpp {
			t.Errorf("expected language %s, got %s", Cpp, p.lang)
		}
	})

	t.Run("creates C parser", func(t *testing.T) {
		p, err := NewParser(C)
		if err != nil {
			t.Fatalf("NewParser(C) failed: %v", err)
		}
		defer p.Close()

		if p.lang != C {
			t.Errorf("expected language %s, got %s", C, p.lang)
		}
	})

	t.Run("rejects unsupported language", func(t *testing.T) {
		_, err := NewParser(Language("fortran"))
		if err == nil {
			t.Fatal("expected error for unsupported language")
		}

		if _, ok := err.(*UnsupportedLanguageError); !ok {
			t.Errorf("expected UnsupportedLanguageError, got %T", err)
		}
	})
}

func TestParser_Parse(t *testing.T) {
	p, err := NewParser(Cpp)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	t.Run("parses valid C++ source", func(t *testing.T) {
		result, err := p.ParseCtx(context.Background(), []byte(testCppSource))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if result.Root == nil {
			t.Fatal("expected non-nil root node")
		}

		if result.Root.Type() != "translation_unit" {
			t.Errorf("expected root type 'translation_unit', got %q", result.Root.Type())
		}

		if result.Language != Cpp {
			t.Errorf("expected language %s, got %s", Cpp, result.Language)
		}
	})

	t.Run("preserves source", func(t *testing.T) {
		source := []byte(testCppSource)
		result, err := p.ParseCtx(context.Background(), source)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if string(result.Source) != string(source) {
			t.Error("source was not preserved")
		}
	})
}

// nodesOfType collects the nodes of one type in walk order.
func nodesOfType(r *ParseResult, typ string) []*sitter.Node {
	var nodes []*sitter.Node
	r.WalkNodes(func(n *sitter.Node) bool {
		if n.Type() == typ {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

func TestParseResult_NodesByType(t *testing.T) {
	p, err := NewParser(Cpp)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.ParseCtx(context.Background(), []byte(testCppSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	t.Run("finds class and struct specifiers", func(t *testing.T) {
		classes := nodesOfType(result, "class_specifier")
		if len(classes) != 1 {
			t.Errorf("expected 1 class_specifier, got %d", len(classes))
		}
		structs := nodesOfType(result, "struct_specifier")
		if len(structs) != 1 {
			t.Errorf("expected 1 struct_specifier, got %d", len(structs))
		}
	})

	t.Run("finds namespace", func(t *testing.T) {
		namespaces := nodesOfType(result, "namespace_definition")
		if len(namespaces) != 1 {
			t.Fatalf("expected 1 namespace_definition, got %d", len(namespaces))
		}
		name := namespaces[0].ChildByFieldName("name")
		if got := name.Content(result.Source); got != "geo" {
			t.Errorf("expected namespace 'geo', got %q", got)
		}
	})

	t.Run("finds include", func(t *testing.T) {
		includes := nodesOfType(result, "preproc_include")
		if len(includes) != 1 {
			t.Errorf("expected 1 preproc_include, got %d", len(includes))
		}
	})
}

func TestParseResult_WalkNodes(t *testing.T) {
	p, err := NewParser(C)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.ParseCtx(context.Background(), []byte(testCSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	t.Run("visits all nodes", func(t *testing.T) {
		count := 0
		result.WalkNodes(func(node *sitter.Node) bool {
			count++
			return true
		})

		if count == 0 {
			t.Error("expected to visit some nodes")
		}
	})

	t.Run("stops on false return", func(t *testing.T) {
		count := 0
		limit := 5
		result.WalkNodes(func(node *sitter.Node) bool {
			count++
			return count < limit
		})

		if count != limit {
			t.Errorf("expected to visit %d nodes, visited %d", limit, count)
		}
	})
}

func TestParseResult_Source(t *testing.T) {
	p, err := NewParser(C)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.ParseCtx(context.Background(), []byte(testCSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	funcs := nodesOfType(result, "function_definition")
	if len(funcs) != 1 {
		t.Fatalf("expected 1 function_definition, got %d", len(funcs))
	}

	text := funcs[0].Content(result.Source)
	if !strings.HasPrefix(text, "static int count(") {
		t.Errorf("expected function text to start with the signature, got %q", text)
	}
}

func TestParseResult_HasErrors(t *testing.T) {
	p, err := NewParser(Cpp)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	t.Run("valid source has no errors", func(t *testing.T) {
		result, err := p.ParseCtx(context.Background(), []byte(testCppSource))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if result.HasErrors() {
			t.Error("expected no parse errors for valid source")
		}
	})

	t.Run("invalid source has errors", func(t *testing.T) {
		invalidSource := `class Broken {
	int f( {
};
`
		result, err := p.ParseCtx(context.Background(), []byte(invalidSource))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if !result.HasErrors() {
			t.Error("expected parse errors for invalid source")
		}
	})
}

func TestLanguageFromExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Language
	}{
		{".c", C},
		{".h", Cpp},
		{".cpp", Cpp},
		{".hpp", Cpp},
		{".cc", Cpp},
		{".go", ""},
	}
	for _, tt := range tests {
		if got := LanguageFromExtension(tt.ext); got != tt.want {
			t.Errorf("LanguageFromExtension(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestParseError(t *testing.T) {
	t.Run("formats with file", func(t *testing.T) {
		err := &ParseError{
			Message: "syntax error",
			File:    "main.cpp",
			Line:    10,
			Column:  5,
		}
		expected := "main.cpp:10:5: syntax error"
		if got := err.Error(); got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	})

	t.Run("formats without file", func(t *testing.T) {
		err := &ParseError{
			Message: "syntax error",
			Line:    10,
			Column:  5,
		}
		expected := "10:5: syntax error"
		if got := err.Error(); got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	})
}

func TestUnsupportedLanguageError(t *testing.T) {
	err := &UnsupportedLanguageError{Language: "fortran"}
	expected := "unsupported language: fortran"
	if got := err.Error(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestIncludeError(t *testing.T) {
	err := &IncludeError{Name: "missing.h", From: "main.cpp"}
	expected := "'missing.h' file not found (included from main.cpp)"
	if got := err.Error(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}
