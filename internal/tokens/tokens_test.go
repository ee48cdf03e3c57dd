package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargabyte/cppast/internal/frontend"
)

type countingTokenizer struct {
	calls int
	toks  []frontend.Token
}

func (c *countingTokenizer) Tokenize(r frontend.SourceRange) []frontend.Token {
	c.calls++
	return c.toks
}

func tok(kind frontend.TokenKind, s string) frontend.Token {
	return frontend.Token{Kind: kind, Spelling: s}
}

func TestJoinAdjacencyRule(t *testing.T) {
	tests := []struct {
		name string
		toks []frontend.Token
		want string
	}{
		{
			name: "macro body",
			toks: []frontend.Token{
				tok(frontend.TokenIdentifier, "x"),
				tok(frontend.TokenPunctuation, "+"),
				tok(frontend.TokenLiteral, "1"),
			},
			want: "x+1",
		},
		{
			name: "words are spaced",
			toks: []frontend.Token{
				tok(frontend.TokenKeyword, "unsigned"),
				tok(frontend.TokenKeyword, "int"),
				tok(frontend.TokenIdentifier, "x"),
			},
			want: "unsigned int x",
		},
		{
			name: "literal next to word",
			toks: []frontend.Token{
				tok(frontend.TokenIdentifier, "sizeof"),
				tok(frontend.TokenPunctuation, "("),
				tok(frontend.TokenIdentifier, "T"),
				tok(frontend.TokenPunctuation, ")"),
				tok(frontend.TokenLiteral, "2"),
				tok(frontend.TokenIdentifier, "u"),
			},
			want: "sizeof(T)2u",
		},
		{
			name: "comments dropped",
			toks: []frontend.Token{
				tok(frontend.TokenIdentifier, "a"),
				tok(frontend.TokenComment, "/* c */"),
				tok(frontend.TokenIdentifier, "b"),
			},
			want: "a b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Join(tt.toks))
		})
	}
}

func TestArrayIsLazy(t *testing.T) {
	src := &countingTokenizer{toks: []frontend.Token{tok(frontend.TokenIdentifier, "a")}}
	arr := NewArray(src, frontend.SourceRange{})
	assert.Equal(t, 0, src.calls)
	assert.Equal(t, 1, arr.Len())
	assert.Equal(t, "a", arr.At(0).Spelling)
	assert.Equal(t, 1, src.calls)
}

func TestCacheReturnsSameTokens(t *testing.T) {
	src := &countingTokenizer{toks: []frontend.Token{tok(frontend.TokenKeyword, "int")}}
	cache, err := NewCache(src, 8)
	require.NoError(t, err)

	r := frontend.SourceRange{End: frontend.SourceLocation{Offset: 3}}
	first := cache.Tokenize(r)
	second := cache.Tokenize(r)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, cache.Len())

	disabled, err := NewCache(src, 0)
	require.NoError(t, err)
	disabled.Tokenize(r)
	disabled.Tokenize(r)
	assert.Equal(t, 3, src.calls)
}
