package builder

import (
	"strings"

	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
	"github.com/hargabyte/cppast/internal/tokens"
)

// visitMacro records a #define. Object-like values always feed the
// attribute scanner; the model only gets user-file macros when enabled.
func (b *Builder) visitMacro(c frontend.Cursor) {
	toks := b.tokenize(c.Extent())
	if len(toks) == 0 {
		return
	}
	name := c.Spelling()
	body := toks[1:]

	var params []string
	if c.IsMacroFunctionLike() {
		params = []string{}
		if len(body) > 0 && body[0].Is("(") {
			i := 1
			for ; i < len(body) && !body[i].Is(")"); i++ {
				if !body[i].Is(",") {
					params = append(params, body[i].Spelling)
				}
			}
			body = body[min(i+1, len(body)):]
		}
	}
	value := tokens.Join(body)
	if params == nil {
		b.macroText[name] = value
	}
	span := sourceSpan(c.Extent())
	if !b.opts.ParseMacros || c.IsInSystemHeader() || b.directives[span] {
		return
	}
	b.directives[span] = true

	m := &model.Macro{Parameters: params, Value: value}
	m.Name = name
	m.Span = span
	for _, t := range body {
		m.Tokens = append(m.Tokens, model.Token{Kind: tokenKind(t.Kind), Text: t.Spelling})
	}
	if b.opts.ParseComments {
		m.Comment = convertComment(c.ParsedComment())
	}
	b.comp.Macros.Add(m)
	b.added++
}

func tokenKind(k frontend.TokenKind) model.TokenKind {
	switch k {
	case frontend.TokenKeyword:
		return model.TokenKeyword
	case frontend.TokenIdentifier:
		return model.TokenIdentifier
	case frontend.TokenLiteral:
		return model.TokenLiteral
	case frontend.TokenComment:
		return model.TokenComment
	}
	return model.TokenPunctuation
}

// visitInclusion records an #include written in a user file.
func (b *Builder) visitInclusion(c frontend.Cursor) {
	span := sourceSpan(c.Extent())
	if c.IsInSystemHeader() || b.directives[span] {
		return
	}
	b.directives[span] = true
	system := false
	for _, t := range b.tokenize(c.Extent()) {
		if strings.HasPrefix(t.Spelling, "<") {
			system = true
			break
		}
	}
	b.comp.InclusionDirectives = append(b.comp.InclusionDirectives, &model.InclusionDirective{
		FileName:     c.Spelling(),
		IncludedFile: c.DisplayName(),
		IsSystem:     system,
		Span:         span,
	})
}
