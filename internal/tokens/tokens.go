// Package tokens adapts front-end tokenization into lazily materialized,
// indexed token arrays and rebuilds source text from tokens.
package tokens

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hargabyte/cppast/internal/frontend"
)

// Tokenizer produces the tokens of a source range.
type Tokenizer interface {
	Tokenize(r frontend.SourceRange) []frontend.Token
}

// Array is the token list of a source range. The range is only tokenized
// the first time a token is requested.
type Array struct {
	src    Tokenizer
	rng    frontend.SourceRange
	toks   []frontend.Token
	loaded bool
}

// NewArray creates a lazy token array over rng.
func NewArray(src Tokenizer, rng frontend.SourceRange) *Array {
	return &Array{src: src, rng: rng}
}

// FromTokens wraps an already tokenized list.
func FromTokens(toks []frontend.Token) *Array {
	return &Array{toks: toks, loaded: true}
}

func (a *Array) load() {
	if a.loaded {
		return
	}
	a.loaded = true
	if a.src != nil {
		a.toks = a.src.Tokenize(a.rng)
	}
}

// Range returns the source range the array covers.
func (a *Array) Range() frontend.SourceRange { return a.rng }

// Len returns the number of tokens.
func (a *Array) Len() int {
	a.load()
	return len(a.toks)
}

// At returns the i-th token.
func (a *Array) At(i int) frontend.Token {
	a.load()
	return a.toks[i]
}

// Tokens returns all tokens.
func (a *Array) Tokens() []frontend.Token {
	a.load()
	return a.toks
}

// Join rebuilds text from tokens, inserting a single space only between
// two adjacent identifier or keyword tokens. Comment tokens are dropped.
func Join(toks []frontend.Token) string {
	var b strings.Builder
	prevWord := false
	for _, tok := range toks {
		if tok.Kind == frontend.TokenComment {
			continue
		}
		word := tok.IsIdentifierOrKeyword()
		if word && prevWord {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Spelling)
		prevWord = word
	}
	return b.String()
}

// Cache memoizes tokenization per source range. Results are identical to
// calling the underlying tokenizer directly.
type Cache struct {
	src Tokenizer
	lru *lru.Cache[frontend.SourceRange, []frontend.Token]
}

// NewCache wraps src with an LRU of the given size. A size below one
// disables caching.
func NewCache(src Tokenizer, size int) (*Cache, error) {
	c := &Cache{src: src}
	if size < 1 {
		return c, nil
	}
	l, err := lru.New[frontend.SourceRange, []frontend.Token](size)
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// Tokenize implements Tokenizer.
func (c *Cache) Tokenize(r frontend.SourceRange) []frontend.Token {
	if c.lru == nil {
		return c.src.Tokenize(r)
	}
	if toks, ok := c.lru.Get(r); ok {
		return toks
	}
	toks := c.src.Tokenize(r)
	c.lru.Add(r, toks)
	return toks
}

// Len returns the number of cached ranges.
func (c *Cache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
