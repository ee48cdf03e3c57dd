// Package frontend defines the contract between the declaration model
// builder and a C/C++ semantic front-end.
//
// A front-end exposes a cursor tree (one cursor per syntactic/semantic
// entity), type handles, a tokenizer over source ranges, parsed doc
// comments, constant evaluation and raw file bytes. The builder only ever
// talks to these interfaces; internal/parser provides the tree-sitter
// implementation and frontendtest provides an in-memory fake.
package frontend

import "fmt"

// SourceLocation is a position in a source file.
type SourceLocation struct {
	File   string
	Offset int
	Line   int
	Column int
}

// String formats the location as file:line:column.
func (l SourceLocation) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// SourceRange is a half-open byte range [Start, End) within one file.
type SourceRange struct {
	Start SourceLocation
	End   SourceLocation
}

// IsEmpty reports whether the range covers no bytes.
func (r SourceRange) IsEmpty() bool {
	return r.End.Offset <= r.Start.Offset
}

// Contains reports whether r fully contains other.
func (r SourceRange) Contains(other SourceRange) bool {
	return r.Start.File == other.Start.File &&
		other.Start.Offset >= r.Start.Offset && other.End.Offset <= r.End.Offset
}

// Severity is the severity of a front-end diagnostic.
type Severity int

const (
	SeverityIgnored Severity = iota
	SeverityNote
	SeverityWarning
	SeverityError
	SeverityFatal
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityIgnored:
		return "ignored"
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic is a message reported by the front-end while translating a file.
type Diagnostic struct {
	Severity Severity
	Message  string
	Location SourceLocation
}

// TranslationUnit is one parsed input file and everything it includes.
type TranslationUnit interface {
	// Root returns the translation-unit cursor.
	Root() Cursor
	// MainFile returns the path of the file that was translated.
	MainFile() string
	// Tokenize returns the tokens fully contained in the range.
	Tokenize(r SourceRange) []Token
	// Diagnostics returns the front-end's own diagnostics.
	Diagnostics() []Diagnostic
	// FileContents returns the raw bytes of a file seen during translation.
	FileContents(file string) ([]byte, bool)
	// Close releases front-end resources.
	Close()
}
