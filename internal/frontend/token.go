package frontend

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenPunctuation TokenKind = iota
	TokenKeyword
	TokenIdentifier
	TokenLiteral
	TokenComment
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenPunctuation:
		return "Punctuation"
	case TokenKeyword:
		return "Keyword"
	case TokenIdentifier:
		return "Identifier"
	case TokenLiteral:
		return "Literal"
	case TokenComment:
		return "Comment"
	default:
		return "Unknown"
	}
}

// Token is one lexical token with its own extent.
type Token struct {
	Kind     TokenKind
	Spelling string
	Extent   SourceRange
}

// IsIdentifierOrKeyword reports whether the token is a word token.
func (t Token) IsIdentifierOrKeyword() bool {
	return t.Kind == TokenIdentifier || t.Kind == TokenKeyword
}

// Is reports whether the token is the given punctuation or keyword text.
func (t Token) Is(spelling string) bool {
	return t.Kind != TokenLiteral && t.Kind != TokenComment && t.Spelling == spelling
}
