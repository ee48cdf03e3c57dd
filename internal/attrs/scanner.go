package attrs

import (
	"strings"

	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
	"github.com/hargabyte/cppast/internal/tokens"
)

// Scanner matches attribute syntax in declaration tokens.
type Scanner struct {
	// Macros maps object-like macro names to their expanded text. A macro
	// expanding to [[...]] is reported as a token attribute where used.
	Macros map[string]string
}

// Scan returns the attributes written at the head of a declaration: after
// an optional template<...> clause, through any keywords, up to the first
// token that is neither an attribute nor a keyword.
func (s *Scanner) Scan(arr *tokens.Array) []*model.Attribute {
	toks := withoutComments(arr.Tokens())
	out, _ := s.scan(toks, skipTemplateClause(toks, 0), false)
	return out
}

// ScanFunction returns the head attributes of a function declaration plus
// the trailing ones written after its parameter list.
func (s *Scanner) ScanFunction(arr *tokens.Array, name string) []*model.Attribute {
	toks := withoutComments(arr.Tokens())
	out, _ := s.scan(toks, skipTemplateClause(toks, 0), false)

	i := findFunctionName(toks, name)
	if i < 0 {
		return out
	}
	i = skipBalanced(toks, i, "(", ")")
	if i < 0 {
		return out
	}
	tail, _ := s.scan(toks, i, true)
	return append(out, tail...)
}

func (s *Scanner) scan(toks []frontend.Token, i int, tail bool) ([]*model.Attribute, int) {
	var out []*model.Attribute
	for i < len(toks) {
		if found, next, ok := s.match(toks, i); ok {
			out = append(out, found...)
			i = next
			continue
		}
		if attr := s.expandMacro(toks[i]); attr != nil {
			out = append(out, attr)
			i++
			continue
		}
		if toks[i].Kind == frontend.TokenKeyword {
			i++
			continue
		}
		if tail && (toks[i].Spelling == "override" || toks[i].Spelling == "final") {
			i++
			continue
		}
		break
	}
	return out, i
}

// match tries each attribute grammar at position i.
func (s *Scanner) match(toks []frontend.Token, i int) ([]*model.Attribute, int, bool) {
	if out, next, ok := matchCpp11(toks, i); ok {
		return out, next, true
	}
	if out, next, ok := matchGNU(toks, i); ok {
		return out, next, true
	}
	if out, next, ok := matchDeclspec(toks, i); ok {
		return out, next, true
	}
	if out, next, ok := matchAlignas(toks, i); ok {
		return out, next, true
	}
	return nil, i, false
}

// matchCpp11 matches [[ attr, attr... ]] including a C++17 "using ns:" prefix.
func matchCpp11(toks []frontend.Token, i int) ([]*model.Attribute, int, bool) {
	if !at(toks, i, "[") || !at(toks, i+1, "[") {
		return nil, i, false
	}
	j := i + 2
	defaultScope := ""
	if at(toks, j, "using") && j+2 < len(toks) && toks[j+2].Is(":") {
		defaultScope = toks[j+1].Spelling
		j += 3
	}
	out, j, ok := parseList(toks, j, "]", ",")
	if !ok || !at(toks, j, "]") || !at(toks, j+1, "]") {
		return nil, i, false
	}
	for _, a := range out {
		if a.Scope == "" {
			a.Scope = defaultScope
		}
	}
	return out, j + 2, true
}

// matchGNU matches __attribute__((attr, attr...)).
func matchGNU(toks []frontend.Token, i int) ([]*model.Attribute, int, bool) {
	if !at(toks, i, "__attribute__") && !at(toks, i, "__attribute") {
		return nil, i, false
	}
	if !at(toks, i+1, "(") || !at(toks, i+2, "(") {
		return nil, i, false
	}
	out, j, ok := parseList(toks, i+3, ")", ",")
	if !ok || !at(toks, j, ")") || !at(toks, j+1, ")") {
		return nil, i, false
	}
	return out, j + 2, true
}

// matchDeclspec matches __declspec(attr attr...). Entries may be separated
// by spaces or commas.
func matchDeclspec(toks []frontend.Token, i int) ([]*model.Attribute, int, bool) {
	if !at(toks, i, "__declspec") || !at(toks, i+1, "(") {
		return nil, i, false
	}
	out, j, ok := parseList(toks, i+2, ")", "")
	if !ok || !at(toks, j, ")") {
		return nil, i, false
	}
	return out, j + 1, true
}

// matchAlignas matches alignas(expr).
func matchAlignas(toks []frontend.Token, i int) ([]*model.Attribute, int, bool) {
	if !at(toks, i, "alignas") && !at(toks, i, "_Alignas") {
		return nil, i, false
	}
	if !at(toks, i+1, "(") {
		return nil, i, false
	}
	end := skipBalanced(toks, i+1, "(", ")")
	if end < 0 {
		return nil, i, false
	}
	attr := &model.Attribute{
		Kind:      model.TokenAttribute,
		Name:      toks[i].Spelling,
		Arguments: tokens.Join(toks[i+2 : end-1]),
		Span:      spanOf(toks[i], toks[end-1]),
	}
	return []*model.Attribute{attr}, end, true
}

// parseList parses attributes until the closing token. sep is the required
// separator, or empty when entries may simply follow each other.
func parseList(toks []frontend.Token, j int, closer, sep string) ([]*model.Attribute, int, bool) {
	var out []*model.Attribute
	for j < len(toks) && !toks[j].Is(closer) {
		if sep != "" && toks[j].Is(sep) {
			j++
			continue
		}
		if sep == "" && toks[j].Is(",") {
			j++
			continue
		}
		attr, next, ok := parseOne(toks, j)
		if !ok {
			return nil, j, false
		}
		out = append(out, attr)
		j = next
		if j < len(toks) && sep != "" && !toks[j].Is(sep) && !toks[j].Is(closer) {
			return nil, j, false
		}
	}
	if j >= len(toks) {
		return nil, j, false
	}
	return out, j, true
}

// parseOne parses [scope ::] name [( args )] [...].
func parseOne(toks []frontend.Token, j int) (*model.Attribute, int, bool) {
	if j >= len(toks) || !toks[j].IsIdentifierOrKeyword() {
		return nil, j, false
	}
	first := toks[j]
	attr := &model.Attribute{Kind: model.TokenAttribute, Name: first.Spelling}
	last := first
	j++
	if at(toks, j, "::") {
		if j+1 >= len(toks) || !toks[j+1].IsIdentifierOrKeyword() {
			return nil, j, false
		}
		attr.Scope = attr.Name
		attr.Name = toks[j+1].Spelling
		last = toks[j+1]
		j += 2
	}
	if at(toks, j, "(") {
		end := skipBalanced(toks, j, "(", ")")
		if end < 0 {
			return nil, j, false
		}
		attr.Arguments = tokens.Join(toks[j+1 : end-1])
		last = toks[end-1]
		j = end
	}
	if at(toks, j, "...") {
		attr.IsVariadic = true
		last = toks[j]
		j++
	}
	attr.Span = spanOf(first, last)
	return attr, j, true
}

// IsAttributeMacro reports whether name is an object-like macro expanding
// to a single [[...]] group.
func (s *Scanner) IsAttributeMacro(name string) bool {
	_, ok := s.macroAttribute(name)
	return ok
}

func (s *Scanner) macroAttribute(name string) (string, bool) {
	value, ok := s.Macros[name]
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "[[") || !strings.HasSuffix(value, "]]") {
		return "", false
	}
	return value, true
}

// expandMacro reports a token attribute for a macro expanding to [[...]].
func (s *Scanner) expandMacro(tok frontend.Token) *model.Attribute {
	if tok.Kind != frontend.TokenIdentifier {
		return nil
	}
	value, ok := s.macroAttribute(tok.Spelling)
	if !ok {
		return nil
	}
	attr := splitAttribute(strings.TrimSpace(value[2 : len(value)-2]))
	if attr == nil {
		return nil
	}
	attr.Kind = model.TokenAttribute
	attr.Span = spanOf(tok, tok)
	return attr
}

// splitAttribute splits "scope::name(args)" text into an attribute.
func splitAttribute(text string) *model.Attribute {
	attr := &model.Attribute{}
	head := text
	if open := strings.IndexByte(text, '('); open >= 0 {
		shut := strings.LastIndexByte(text, ')')
		if shut < open {
			return nil
		}
		head = text[:open]
		attr.Arguments = strings.TrimSpace(text[open+1 : shut])
	}
	head = strings.TrimSpace(head)
	if strings.HasSuffix(head, "...") {
		attr.IsVariadic = true
		head = strings.TrimSpace(strings.TrimSuffix(head, "..."))
	}
	if scope, name, ok := strings.Cut(head, "::"); ok {
		attr.Scope = strings.TrimSpace(scope)
		head = strings.TrimSpace(name)
	}
	if head == "" {
		return nil
	}
	attr.Name = head
	return attr
}

// findFunctionName returns the index of the "(" opening the parameter list
// that follows the function's name.
func findFunctionName(toks []frontend.Token, name string) int {
	target := strings.TrimPrefix(name, "~")
	if strings.HasPrefix(name, "operator") {
		for i := 0; i < len(toks); i++ {
			if !toks[i].Is("operator") {
				continue
			}
			j := i + 1
			if at(toks, j, "(") && at(toks, j+1, ")") {
				j += 2
			}
			for j < len(toks) && !toks[j].Is("(") {
				j++
			}
			if j < len(toks) {
				return j
			}
		}
		return -1
	}
	depth := 0
	for i := 0; i+1 < len(toks); i++ {
		switch {
		case toks[i].Is("<"):
			depth++
		case toks[i].Is(">"):
			depth--
		case toks[i].Is(">>"):
			depth -= 2
		}
		if depth <= 0 && toks[i].Kind == frontend.TokenIdentifier && toks[i].Spelling == target && toks[i+1].Is("(") {
			return i + 1
		}
	}
	return -1
}

// skipTemplateClause skips a leading template<...> clause.
func skipTemplateClause(toks []frontend.Token, i int) int {
	for at(toks, i, "template") && at(toks, i+1, "<") {
		depth, parens := 0, 0
		j := i + 1
		for ; j < len(toks); j++ {
			switch {
			case toks[j].Is("("):
				parens++
			case toks[j].Is(")"):
				parens--
			case parens > 0:
			case toks[j].Is("<"):
				depth++
			case toks[j].Is(">"):
				depth--
			case toks[j].Is(">>"):
				depth -= 2
			}
			if depth <= 0 {
				break
			}
		}
		if j >= len(toks) {
			return i
		}
		i = j + 1
	}
	return i
}

// skipBalanced returns the index after the closer matching the opener at
// i, or -1 when the brackets are unbalanced.
func skipBalanced(toks []frontend.Token, i int, opener, closer string) int {
	if !at(toks, i, opener) {
		return -1
	}
	depth := 0
	for j := i; j < len(toks); j++ {
		switch {
		case toks[j].Is(opener):
			depth++
		case toks[j].Is(closer):
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return -1
}

func at(toks []frontend.Token, i int, spelling string) bool {
	return i >= 0 && i < len(toks) && toks[i].Is(spelling)
}

func withoutComments(toks []frontend.Token) []frontend.Token {
	for _, t := range toks {
		if t.Kind == frontend.TokenComment {
			out := make([]frontend.Token, 0, len(toks))
			for _, t := range toks {
				if t.Kind != frontend.TokenComment {
					out = append(out, t)
				}
			}
			return out
		}
	}
	return toks
}

func spanOf(first, last frontend.Token) model.SourceSpan {
	return model.SourceSpan{Start: toLocation(first.Extent.Start), End: toLocation(last.Extent.End)}
}

func toLocation(l frontend.SourceLocation) model.Location {
	return model.Location{File: l.File, Offset: l.Offset, Line: l.Line, Column: l.Column}
}
