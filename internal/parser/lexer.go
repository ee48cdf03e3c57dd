package parser

import (
	"strings"

	"github.com/hargabyte/cppast/internal/frontend"
)

var keywords = map[string]bool{
	"alignas": true, "alignof": true, "asm": true, "auto": true, "bool": true,
	"break": true, "case": true, "catch": true, "char": true, "char8_t": true,
	"char16_t": true, "char32_t": true, "class": true, "concept": true,
	"const": true, "consteval": true, "constexpr": true, "constinit": true,
	"const_cast": true, "continue": true, "decltype": true, "default": true,
	"delete": true, "do": true, "double": true, "dynamic_cast": true,
	"else": true, "enum": true, "explicit": true, "export": true, "extern": true,
	"false": true, "float": true, "for": true, "friend": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "mutable": true,
	"namespace": true, "new": true, "noexcept": true, "nullptr": true,
	"operator": true, "private": true, "protected": true, "public": true,
	"register": true, "reinterpret_cast": true, "requires": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "static_assert": true, "static_cast": true,
	"struct": true, "switch": true, "template": true, "this": true,
	"thread_local": true, "throw": true, "true": true, "try": true,
	"typedef": true, "typeid": true, "typename": true, "union": true,
	"unsigned": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "wchar_t": true, "while": true,
	"_Alignas": true, "_Alignof": true, "_Atomic": true, "_Bool": true,
	"_Noreturn": true, "_Static_assert": true, "_Thread_local": true,
	"__attribute__": true, "__attribute": true, "__declspec": true,
	"__cdecl": true, "__stdcall": true, "__fastcall": true, "__thiscall": true,
	"__vectorcall": true, "__forceinline": true, "__inline": true,
	"__restrict": true, "__restrict__": true, "__int64": true, "__int128": true,
	"__extension__": true, "__typeof__": true, "__alignof__": true,
}

// punctuators is ordered longest first.
var punctuators = []string{
	"...", "<<=", ">>=", "->*", "<=>",
	"::", "->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ".*", "##",
	"{", "}", "[", "]", "(", ")", ";", ":", ",", ".", "?", "~", "!",
	"+", "-", "*", "/", "%", "^", "&", "|", "=", "<", ">", "#",
}

// lexToken is a token plus the preprocessor context it was read in.
type lexToken struct {
	frontend.Token
	// Directive is set for every token of a # directive line.
	Directive bool
	// LineStart is set on the first token of a line.
	LineStart bool
}

// Lexer tokenizes C and C++ source without preprocessing it.
type Lexer struct {
	file   string
	input  []byte
	pos    int
	line   int
	column int

	directive bool
	lineStart bool
	tokens    []lexToken
}

// NewLexer creates a new lexer for the given input.
func NewLexer(file string, input []byte) *Lexer {
	return &Lexer{
		file:      file,
		input:     input,
		line:      1,
		column:    1,
		lineStart: true,
	}
}

// Tokenize processes the entire input and returns all tokens, comments
// included.
func (l *Lexer) Tokenize() []lexToken {
	for l.pos < len(l.input) {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}

		ch := l.input[l.pos]
		switch {
		case ch == '/' && l.peek() == '/':
			l.readLineComment()
		case ch == '/' && l.peek() == '*':
			l.readBlockComment()
		case ch == '#' && l.lineStart:
			l.directive = true
			l.readPunctuation()
		case l.isStringStart():
			l.readString()
		case isDigit(ch) || ch == '.' && isDigit(l.peek()):
			l.readNumber()
		case isIdentStart(ch):
			l.readIdentifier()
		default:
			l.readPunctuation()
		}
	}
	return l.tokens
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.pos++
	}
}

func (l *Lexer) peek() byte {
	if l.pos+1 < len(l.input) {
		return l.input[l.pos+1]
	}
	return 0
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\\' && (l.peek() == '\n' || l.peek() == '\r'):
			// Line continuation keeps a directive going.
			l.advance()
			if l.input[l.pos] == '\r' {
				l.advance()
			}
			l.advance()
		case ch == '\n':
			l.directive = false
			l.lineStart = true
			l.advance()
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) readLineComment() {
	start, loc := l.pos, l.location()
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.advance()
	}
	l.emitComment(start, loc)
}

func (l *Lexer) readBlockComment() {
	start, loc := l.pos, l.location()
	l.advance()
	l.advance()
	for l.pos < len(l.input) {
		if l.input[l.pos] == '*' && l.peek() == '/' {
			l.advance()
			l.advance()
			break
		}
		l.advance()
	}
	l.emitComment(start, loc)
}

// emitComment records a comment without touching lineStart, so a directive
// after a comment on its own line is still recognized.
func (l *Lexer) emitComment(start int, loc frontend.SourceLocation) {
	keep := l.lineStart
	l.emit(frontend.TokenComment, start, loc)
	l.lineStart = keep
}

func (l *Lexer) isStringStart() bool {
	ch := l.input[l.pos]
	if ch == '"' || ch == '\'' {
		return true
	}
	rest := l.input[l.pos:]
	for _, prefix := range []string{"u8R\"", "uR\"", "UR\"", "LR\"", "R\"", "u8\"", "u8'", "u\"", "u'", "U\"", "U'", "L\"", "L'"} {
		if strings.HasPrefix(string(rest[:min(len(rest), len(prefix))]), prefix) {
			return true
		}
	}
	return false
}

func (l *Lexer) readString() {
	start, loc := l.pos, l.location()
	for l.input[l.pos] != '"' && l.input[l.pos] != '\'' {
		l.advance()
	}
	quote := l.input[l.pos]
	raw := quote == '"' && l.pos > start && l.input[l.pos-1] == 'R'
	l.advance()

	if raw {
		open := l.pos
		for l.pos < len(l.input) && l.input[l.pos] != '(' {
			l.advance()
		}
		closer := ")" + string(l.input[open:l.pos]) + "\""
		for l.pos < len(l.input) && !strings.HasPrefix(string(l.input[l.pos:min(len(l.input), l.pos+len(closer))]), closer) {
			l.advance()
		}
		for i := 0; i < len(closer) && l.pos < len(l.input); i++ {
			l.advance()
		}
		l.emit(frontend.TokenLiteral, start, loc)
		return
	}

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			l.advance()
			l.advance()
			continue
		}
		if ch == '\n' {
			break // Unterminated literal
		}
		l.advance()
		if ch == quote {
			break
		}
	}
	l.emit(frontend.TokenLiteral, start, loc)
}

func (l *Lexer) readIdentifier() {
	start, loc := l.pos, l.location()
	for l.pos < len(l.input) && isIdentByte(l.input[l.pos]) {
		l.advance()
	}
	kind := frontend.TokenIdentifier
	if keywords[string(l.input[start:l.pos])] {
		kind = frontend.TokenKeyword
	}
	l.emit(kind, start, loc)
}

// readNumber reads a preprocessing number: digits, letters, '.', digit
// separators and signed exponents.
func (l *Lexer) readNumber() {
	start, loc := l.pos, l.location()
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case (ch == '+' || ch == '-') && l.pos > start && strings.IndexByte("eEpP", l.input[l.pos-1]) >= 0 &&
			!isHexPrefix(l.input[start:l.pos], l.input[l.pos-1]):
			l.advance()
		case ch == '\'' && isIdentByte(l.peek()):
			l.advance()
		case isIdentByte(ch) || ch == '.':
			l.advance()
		default:
			l.emit(frontend.TokenLiteral, start, loc)
			return
		}
	}
	l.emit(frontend.TokenLiteral, start, loc)
}

// isHexPrefix reports whether an 'e'/'E' before a sign is a hex digit
// rather than an exponent marker.
func isHexPrefix(text []byte, last byte) bool {
	if last != 'e' && last != 'E' {
		return false
	}
	return len(text) > 1 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X')
}

func (l *Lexer) readPunctuation() {
	start, loc := l.pos, l.location()
	rest := l.input[l.pos:]
	for _, p := range punctuators {
		if len(rest) >= len(p) && string(rest[:len(p)]) == p {
			for range p {
				l.advance()
			}
			l.emit(frontend.TokenPunctuation, start, loc)
			return
		}
	}
	// Stray byte, e.g. '@' or '$' or a non-ASCII character.
	l.advance()
	l.emit(frontend.TokenPunctuation, start, loc)
}

func (l *Lexer) location() frontend.SourceLocation {
	return frontend.SourceLocation{File: l.file, Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) emit(kind frontend.TokenKind, start int, loc frontend.SourceLocation) {
	l.tokens = append(l.tokens, lexToken{
		Token: frontend.Token{
			Kind:     kind,
			Spelling: string(l.input[start:l.pos]),
			Extent:   frontend.SourceRange{Start: loc, End: l.location()},
		},
		Directive: l.directive,
		LineStart: l.lineStart,
	})
	l.lineStart = false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
