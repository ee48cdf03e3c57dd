package compile

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/hargabyte/cppast/internal/model"
	"github.com/hargabyte/cppast/internal/parser"
)

func parseText(t *testing.T, src string, configure ...func(*Options)) *model.Compilation {
	t.Helper()
	opts := DefaultOptions()
	for _, fn := range configure {
		fn(&opts)
	}
	comp, err := ParseText(context.Background(), opts, "test.cpp", src)
	require.NoError(t, err)
	require.False(t, comp.HasErrors(), "diagnostics: %v", comp.Diagnostics)
	return comp
}

func function(t *testing.T, comp *model.Compilation, name string) *model.Function {
	t.Helper()
	f, ok := comp.FindByFullName(name).(*model.Function)
	require.True(t, ok, "no function %s", name)
	return f
}

func TestMacroTokens(t *testing.T) {
	comp := parseText(t, "#define MACRO3(x) x + 1\n", func(o *Options) {
		o.Builder.ParseMacros = true
	})

	m, ok := comp.Macros.Find("MACRO3")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, m.Parameters)
	assert.Equal(t, "x+1", m.Value)
	assert.Equal(t, []model.Token{
		{Kind: model.TokenIdentifier, Text: "x"},
		{Kind: model.TokenPunctuation, Text: "+"},
		{Kind: model.TokenLiteral, Text: "1"},
	}, m.Tokens)
}

func TestAttributes(t *testing.T) {
	comp := parseText(t, `
struct [[deprecated]] S {};
__declspec(dllexport) void f();
void *fun2(int align) __attribute__((alloc_align(1)));
`)

	t.Run("c++11 group on a record", func(t *testing.T) {
		s, ok := comp.Classes.Find("S")
		require.True(t, ok)
		require.Len(t, s.Attributes, 1)
		assert.Equal(t, "deprecated", s.Attributes[0].Name)
		assert.Empty(t, s.Attributes[0].Arguments)
	})

	t.Run("declspec", func(t *testing.T) {
		f := function(t, comp, "f")
		require.NotEmpty(t, f.Attributes)
		assert.Equal(t, "dllexport", f.Attributes[0].Name)
		assert.True(t, model.IsPublicExport(f))
	})

	t.Run("gnu attribute after the declarator", func(t *testing.T) {
		f := function(t, comp, "fun2")
		a := model.FindAttribute(f.Attributes, "alloc_align")
		require.NotNil(t, a)
		assert.Equal(t, "1", a.Arguments)
		assert.False(t, model.IsPublicExport(f))
	})
}

func TestMacroAttributes(t *testing.T) {
	comp := parseText(t, `#define DEPR [[deprecated("m")]]
DEPR void g();
struct DEPR S {};
DEPR int v;
`)

	check := func(t *testing.T, list []*model.Attribute) {
		t.Helper()
		a := model.FindAttribute(list, "deprecated")
		require.NotNil(t, a, "attributes: %v", list)
		assert.Equal(t, model.TokenAttribute, a.Kind)
		assert.Equal(t, `"m"`, a.Arguments)
	}

	t.Run("function", func(t *testing.T) {
		check(t, function(t, comp, "g").Attributes)
	})
	t.Run("record", func(t *testing.T) {
		s, ok := comp.Classes.Find("S")
		require.True(t, ok)
		check(t, s.Attributes)
	})
	t.Run("variable", func(t *testing.T) {
		v, ok := comp.Fields.Find("v")
		require.True(t, ok)
		check(t, v.Attributes)
	})
}

func TestVariadicSpecializationSpelling(t *testing.T) {
	comp := parseText(t, "template<typename... T> struct variant {};\nvariant<int, float> v;\n")

	v, ok := comp.Fields.Find("v")
	require.True(t, ok)
	cls, ok := v.Type.(*model.Class)
	require.True(t, ok, "type is %T", v.Type)
	assert.Equal(t, model.TemplateSpecializedClass, cls.TemplateKind)
	require.Len(t, cls.TemplateSpecializedArguments, 1)
	arg := cls.TemplateSpecializedArguments[0]
	assert.Equal(t, model.TemplateArgumentUnknown, arg.Kind)
	assert.Equal(t, "int, float", arg.ArgString)
	assert.Equal(t, "variant<int, float>", cls.String())
}

func TestConstantInitializer(t *testing.T) {
	comp := parseText(t, "const int x = (0 + 1) << 2;\n")

	x, ok := comp.Fields.Find("x")
	require.True(t, ok)
	require.NotNil(t, x.InitExpression)
	assert.Equal(t, "(0 + 1) << 2", x.InitExpression.String())
	assert.Equal(t, int64(4), x.InitValue)
	assert.True(t, model.HasQualifier(x.Type, model.QualifierConst))
}

func TestAnonymousStructField(t *testing.T) {
	comp := parseText(t, `
struct P {
	int a;
	struct {
		int x;
		int y;
	};
	int b;
};
`)

	p, ok := comp.Classes.Find("P")
	require.True(t, ok)
	require.Equal(t, 3, p.Fields.Len())
	anon := p.Fields.At(1)
	assert.True(t, anon.IsAnonymous)
	assert.Equal(t, int64(4), anon.Offset)
	assert.Equal(t, int64(12), p.Fields.At(2).Offset)
	assert.Equal(t, int64(16), p.Size)
}

func TestNamespacesMergeAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.h")
	b := filepath.Join(dir, "b.h")
	require.NoError(t, os.WriteFile(a, []byte("namespace ns { struct A {}; void f(); }\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("namespace ns { struct B {}; void g(); }\n"), 0o644))

	opts := DefaultOptions()
	opts.Parallelism = 2
	comp, err := ParseFiles(context.Background(), opts, a, b)
	require.NoError(t, err)

	require.Equal(t, 1, comp.Namespaces.Len())
	ns := comp.Namespaces.At(0)
	require.Equal(t, 2, ns.Classes.Len())
	assert.Equal(t, "A", ns.Classes.At(0).Name, "files are built in input order")
	assert.Equal(t, "B", ns.Classes.At(1).Name)
	assert.Equal(t, 2, ns.Functions.Len())
}

func TestMissingFileBecomesDiagnostic(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.h")
	require.NoError(t, os.WriteFile(good, []byte("int ok;\n"), 0o644))

	comp, err := ParseFiles(context.Background(), DefaultOptions(), filepath.Join(dir, "missing.h"), good)
	require.NoError(t, err)
	assert.True(t, comp.HasErrors())
	_, ok := comp.Fields.Find("ok")
	assert.True(t, ok, "other files are still built")
}

func TestParseFilesRecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	dir := t.TempDir()
	good := filepath.Join(dir, "good.h")
	require.NoError(t, os.WriteFile(good, []byte("int ok;\n"), 0o644))

	opts := DefaultOptions()
	opts.TracerProvider = tp
	_, err := ParseFiles(context.Background(), opts, good, filepath.Join(dir, "missing.h"))
	require.NoError(t, err)

	var runs, parses, failed int
	for _, span := range rec.Ended() {
		switch span.Name() {
		case "compile.Run":
			runs++
		case "compile.Parse":
			parses++
			if span.Status().Code == codes.Error {
				failed++
			}
		}
	}
	assert.Equal(t, 1, runs)
	assert.Equal(t, 2, parses, "one span per file")
	assert.Equal(t, 1, failed, "the missing file is marked failed")
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseText(ctx, DefaultOptions(), "test.cpp", "int x;")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdditionalArguments(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, p parser.Options)
		wantErr error
	}{
		{
			name: "defines joined and split",
			args: []string{"-DFOO=1", "-D", "BAR"},
			check: func(t *testing.T, p parser.Options) {
				assert.Equal(t, []string{"FOO=1", "BAR"}, p.Defines)
			},
		},
		{
			name: "include folders",
			args: []string{"-Iinc", "-I", "more", "-isystem/opt/sys"},
			check: func(t *testing.T, p parser.Options) {
				assert.Equal(t, []string{"inc", "more"}, p.IncludeFolders)
				assert.Equal(t, []string{"/opt/sys"}, p.SystemIncludeFolders)
			},
		},
		{
			name: "language",
			args: []string{"-std=c11", "-Wall"},
			check: func(t *testing.T, p parser.Options) {
				assert.Equal(t, parser.C, p.Language)
			},
		},
		{
			name: "explicit c++",
			args: []string{"-x", "c++"},
			check: func(t *testing.T, p parser.Options) {
				assert.Equal(t, parser.Cpp, p.Language)
			},
		},
		{
			name:    "missing operand",
			args:    []string{"-I"},
			wantErr: ErrMissingArgumentValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.AdditionalArguments = tt.args
			p, err := opts.parserOptions(log)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestTokenize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.h")
	require.NoError(t, os.WriteFile(path, []byte("int x = 1; // one\n"), 0o644))

	toks, err := Tokenize(context.Background(), DefaultOptions(), path)
	require.NoError(t, err)

	var spellings []string
	for _, tok := range toks {
		spellings = append(spellings, tok.Spelling)
	}
	assert.Equal(t, []string{"int", "x", "=", "1", ";"}, spellings)
	assert.Equal(t, path, toks[1].Extent.Start.File)

	_, err = Tokenize(context.Background(), DefaultOptions(), filepath.Join(t.TempDir(), "missing.h"))
	assert.Error(t, err)
}
