package attrs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
	"github.com/hargabyte/cppast/internal/tokens"
)

var testKeywords = map[string]bool{
	"void": true, "int": true, "char": true, "struct": true, "class": true,
	"const": true, "template": true, "typename": true, "static": true,
	"inline": true, "unsigned": true, "using": true, "enum": true,
	"__attribute__": true, "__declspec": true, "alignas": true, "noexcept": true,
}

// lex is a small tokenizer good enough for attribute test inputs.
func lex(src string) *tokens.Array {
	var out []frontend.Token
	puncts := []string{"...", "::", ">>", "[", "]", "(", ")", "<", ">", ",", ";", "*", "&", "{", "}", "=", ":", "+", "~"}
	i := 0
	emit := func(kind frontend.TokenKind, s string) {
		out = append(out, frontend.Token{
			Kind:     kind,
			Spelling: s,
			Extent: frontend.SourceRange{
				Start: frontend.SourceLocation{Offset: i},
				End:   frontend.SourceLocation{Offset: i + len(s)},
			},
		})
		i += len(s)
	}
outer:
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\n' || c == '\t':
			i++
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				j++
			}
			emit(frontend.TokenLiteral, src[i:j+1])
		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			emit(frontend.TokenLiteral, src[i:j])
		case isIdentByte(c):
			j := i
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			word := src[i:j]
			if testKeywords[word] {
				emit(frontend.TokenKeyword, word)
			} else {
				emit(frontend.TokenIdentifier, word)
			}
		default:
			for _, p := range puncts {
				if strings.HasPrefix(src[i:], p) {
					emit(frontend.TokenPunctuation, p)
					continue outer
				}
			}
			i++
		}
	}
	return tokens.FromTokens(out)
}

func names(attrs []*model.Attribute) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.String()
	}
	return out
}

func TestScanDeclarationHead(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{name: "c++11 between struct and name", src: "struct [[deprecated]] S {};", want: []string{"deprecated"}},
		{name: "scoped with arguments", src: `[[gnu::deprecated("use g"), nodiscard]] int f();`, want: []string{`gnu::deprecated("use g")`, "nodiscard"}},
		{name: "using prefix", src: "[[using clang: a, b(1)]] int x;", want: []string{"clang::a", "clang::b(1)"}},
		{name: "gnu", src: `__attribute__((visibility("default"), packed)) struct S {};`, want: []string{`visibility("default")`, "packed"}},
		{name: "declspec juxtaposed", src: "__declspec(dllexport noinline) void f();", want: []string{"dllexport", "noinline"}},
		{name: "alignas", src: "alignas(sizeof(int)*2) char buf[8];", want: []string{"alignas(sizeof(int)*2)"}},
		{name: "skips template clause", src: "template<typename T, int N = (1>>1)> struct [[nodiscard]] A;", want: []string{"nodiscard"}},
		{name: "variadic pack", src: "[[a(b)...]] int x;", want: []string{"a(b)..."}},
		{name: "stops at identifier", src: "MyType [[deprecated]] x;", want: nil},
		{name: "empty group", src: "[[]] int x;", want: nil},
	}
	s := &Scanner{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Scan(lex(tt.src))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, names(got))
			for _, a := range got {
				assert.Equal(t, model.TokenAttribute, a.Kind)
			}
		})
	}
}

func TestScanMismatchIsSilent(t *testing.T) {
	s := &Scanner{}
	assert.Empty(t, s.Scan(lex("__attribute__((broken( int x;")))
	assert.Empty(t, s.Scan(lex("[[a b]] int x;")))

	// A malformed group is abandoned, but scanning resumes after keywords.
	got := s.Scan(lex("__attribute__(x) [[ok]] int y;"))
	assert.Empty(t, got, "the scan stops on the punctuation after the unmatched keyword")
}

func TestScanFunctionTail(t *testing.T) {
	s := &Scanner{}
	got := s.ScanFunction(lex("void *fun2(int align) __attribute__((alloc_align(1)));"), "fun2")
	require.Len(t, got, 1)
	assert.Equal(t, "alloc_align", got[0].Name)
	assert.Equal(t, "1", got[0].Arguments)

	got = s.ScanFunction(lex("__declspec(dllexport) void f();"), "f")
	require.Len(t, got, 1)
	assert.Equal(t, "dllexport", got[0].Name)
	assert.Empty(t, got[0].Arguments)

	got = s.ScanFunction(lex("[[nodiscard]] int get(int (*cb)(int)) const override [[deprecated]];"), "get")
	assert.Equal(t, []string{"nodiscard", "deprecated"}, names(got))

	got = s.ScanFunction(lex("template<class T> T max(T a, T b) noexcept __attribute__((pure));"), "max")
	assert.Equal(t, []string{"pure"}, names(got))

	got = s.ScanFunction(lex("~Foo() __attribute__((cold));"), "~Foo")
	assert.Equal(t, []string{"cold"}, names(got))
}

func TestScanMacroAttribute(t *testing.T) {
	s := &Scanner{Macros: map[string]string{
		"DEPRECATED": "[[deprecated(\"old api\")]]",
		"EXPORT":     "[[gnu::visibility(\"default\")]]",
		"NOT_ATTR":   "42",
	}}
	got := s.Scan(lex("DEPRECATED EXPORT int x;"))
	require.Len(t, got, 2)
	assert.Equal(t, "deprecated", got[0].Name)
	assert.Equal(t, `"old api"`, got[0].Arguments)
	assert.Equal(t, "gnu", got[1].Scope)
	assert.Equal(t, "visibility", got[1].Name)

	assert.Empty(t, s.Scan(lex("NOT_ATTR int y;")))

	assert.True(t, s.IsAttributeMacro("DEPRECATED"))
	assert.False(t, s.IsAttributeMacro("NOT_ATTR"))
	assert.False(t, s.IsAttributeMacro("UNDEFINED"))
	assert.False(t, (&Scanner{}).IsAttributeMacro("DEPRECATED"))
}

func TestScanIsRepeatable(t *testing.T) {
	s := &Scanner{}
	toks := lex("struct [[a]] __attribute__((b)) S {};")
	first := names(s.Scan(toks))
	second := names(s.Scan(toks))
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b"}, first)
}

func TestParseComment(t *testing.T) {
	got := ParseComment("/// Widget docs [[meta::tag(1, \"a,b\"), hidden]]\n/// more [[x]]")
	assert.Equal(t, []string{`meta::tag(1, "a,b")`, "hidden", "x"}, names(got))
	for _, a := range got {
		assert.Equal(t, model.CommentAttribute, a.Kind)
	}
	assert.Empty(t, ParseComment("/// plain text"))
}
