package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargabyte/cppast/internal/frontend"
)

func spellings(toks []lexToken) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Spelling
	}
	return out
}

func TestLexerKinds(t *testing.T) {
	toks := NewLexer("a.h", []byte(`const char *s = u8"x\"y"; // tail`)).Tokenize()
	require.Len(t, toks, 8)
	want := []struct {
		kind     frontend.TokenKind
		spelling string
	}{
		{frontend.TokenKeyword, "const"},
		{frontend.TokenKeyword, "char"},
		{frontend.TokenPunctuation, "*"},
		{frontend.TokenIdentifier, "s"},
		{frontend.TokenPunctuation, "="},
		{frontend.TokenLiteral, `u8"x\"y"`},
		{frontend.TokenPunctuation, ";"},
		{frontend.TokenComment, "// tail"},
	}
	for i, w := range want {
		assert.Equal(t, w.kind, toks[i].Kind, "token %d", i)
		assert.Equal(t, w.spelling, toks[i].Spelling, "token %d", i)
	}
}

func TestLexerLocations(t *testing.T) {
	toks := NewLexer("a.h", []byte("int a;\n  long b;")).Tokenize()
	require.Len(t, toks, 6)
	b := toks[4]
	assert.Equal(t, "b", b.Spelling)
	assert.Equal(t, 2, b.Extent.Start.Line)
	assert.Equal(t, 8, b.Extent.Start.Column)
	assert.Equal(t, 14, b.Extent.Start.Offset)
	assert.Equal(t, 15, b.Extent.End.Offset)
	assert.Equal(t, "a.h", b.Extent.Start.File)
}

func TestLexerPunctuationIsLongestFirst(t *testing.T) {
	toks := NewLexer("", []byte("a<<=b->*c...d::e")).Tokenize()
	assert.Equal(t, []string{"a", "<<=", "b", "->*", "c", "...", "d", "::", "e"}, spellings(toks))
}

func TestLexerNumbers(t *testing.T) {
	toks := NewLexer("", []byte("1.5e-3 0x1E+2 1'000'000 42ull")).Tokenize()
	assert.Equal(t, []string{"1.5e-3", "0x1E", "+", "2", "1'000'000", "42ull"}, spellings(toks))
	for _, tok := range toks {
		if tok.Spelling != "+" {
			assert.Equal(t, frontend.TokenLiteral, tok.Kind, tok.Spelling)
		}
	}
}

func TestLexerRawString(t *testing.T) {
	toks := NewLexer("", []byte(`auto s = R"x(a ")" b)x";`)).Tokenize()
	require.Len(t, toks, 5)
	assert.Equal(t, `R"x(a ")" b)x"`, toks[3].Spelling)
}

func TestLexerDirectives(t *testing.T) {
	src := "#define A \\\n  1\nint x; /* c */ # notdirective\n  // note\n#endif\n"
	toks := NewLexer("", []byte(src)).Tokenize()

	var directive []string
	for _, tok := range toks {
		if tok.Directive {
			directive = append(directive, tok.Spelling)
		}
	}
	assert.Equal(t, []string{"#", "define", "A", "1", "#", "endif"}, directive)

	for _, tok := range toks {
		if tok.Spelling == "endif" {
			assert.False(t, tok.LineStart)
		}
		if tok.Spelling == "int" {
			assert.True(t, tok.LineStart)
		}
	}
}
