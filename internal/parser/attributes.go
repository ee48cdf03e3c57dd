package parser

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hargabyte/cppast/internal/attrs"
	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
	"github.com/hargabyte/cppast/internal/tokens"
)

// defaultAlignment is what aligned with no argument means: the largest
// alignment the target ever uses.
const defaultAlignment = 16

// assignAttributes turns the attribute spans masked out of f into
// attribute cursors on the declarations they belong to. [[...]] groups only
// affect layout here; callers read them from tokens.
func (u *Unit) assignAttributes(f *sourceFile) {
	if len(f.Attrs) == 0 {
		return
	}
	var decls []*cursor
	for _, c := range u.allCursors {
		if c.file == f && !c.implicit && c.isDecl() {
			decls = append(decls, c)
		}
	}

	found := make(map[*cursor][]*cursor)
	var order []*cursor
	for _, span := range f.Attrs {
		if span.Syntax == syntaxKeyword {
			continue
		}
		target := f.attributeTarget(decls, span)
		if target == nil {
			continue
		}
		cursors := u.attributeCursors(f, span, target)
		if len(cursors) == 0 {
			continue
		}
		if _, ok := found[target]; !ok {
			order = append(order, target)
		}
		found[target] = append(found[target], cursors...)
	}
	for _, target := range order {
		target.children = append(found[target], target.children...)
	}
}

// attrStart walks a declaration start back over attribute spans that
// precede it with only whitespace between.
func (f *sourceFile) attrStart(start int) int {
	for {
		i := sort.Search(len(f.Attrs), func(i int) bool { return f.Attrs[i].End > start }) - 1
		if i < 0 || !isBlank(f.Source[f.Attrs[i].End:start]) {
			return start
		}
		start = f.Attrs[i].Start
	}
}

// attributeTarget picks the innermost declaration containing the span, or
// else the widest declaration ending right before it.
func (f *sourceFile) attributeTarget(decls []*cursor, span attrSpan) *cursor {
	var best *cursor
	bestSize := 0
	for _, c := range decls {
		start := f.attrStart(c.start)
		if span.Start < start || span.End > c.end || inBody(c, span) {
			continue
		}
		if size := c.end - start; best == nil || size < bestSize {
			best, bestSize = c, size
		}
	}
	if best != nil {
		return best
	}
	for _, c := range decls {
		if c.end > span.Start || !isBlank(f.Source[c.end:span.Start]) {
			continue
		}
		if size := c.end - c.start; best == nil || size > bestSize {
			best, bestSize = c, size
		}
	}
	return best
}

// inBody reports whether the span lies in the body of c rather than in its
// declaration head.
func inBody(c *cursor, span attrSpan) bool {
	if c.node == nil {
		return false
	}
	body := c.node.ChildByFieldName("body")
	if body == nil {
		return false
	}
	return span.Start >= int(body.StartByte()) && span.End <= int(body.EndByte())
}

func isBlank(b []byte) bool {
	for _, ch := range b {
		switch ch {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		default:
			return false
		}
	}
	return true
}

// attributeCursors scans one span and applies its layout effects to target.
func (u *Unit) attributeCursors(f *sourceFile, span attrSpan, target *cursor) []*cursor {
	var toks []frontend.Token
	if span.Syntax == syntaxMacro {
		for _, t := range NewLexer(f.Path, []byte(span.Text)).Tokenize() {
			toks = append(toks, t.Token)
		}
	} else {
		i := sort.Search(len(f.Tokens), func(i int) bool { return f.Tokens[i].Extent.Start.Offset >= span.Start })
		for ; i < len(f.Tokens) && f.Tokens[i].Extent.End.Offset <= span.End; i++ {
			toks = append(toks, f.Tokens[i].Token)
		}
	}
	scanner := &attrs.Scanner{}
	found := scanner.Scan(tokens.FromTokens(toks))
	tokenOnly := span.Syntax == syntaxCpp11 ||
		span.Syntax == syntaxMacro && len(toks) > 1 && toks[0].Is("[") && toks[1].Is("[")

	var out []*cursor
	for _, a := range found {
		kind := u.applyAttribute(a, target)
		if tokenOnly {
			continue
		}
		start, end := a.Span.Start.Offset, a.Span.End.Offset
		if span.Syntax == syntaxMacro {
			start, end = span.Start, span.End
		}
		name := a.Name
		if kind == frontend.CursorAnnotateAttr {
			name = unquote(a.Arguments)
		}
		c := &cursor{
			unit:     u,
			kind:     kind,
			name:     name,
			display:  a.Arguments,
			file:     f,
			start:    start,
			end:      end,
			loc:      start,
			system:   f.System,
			semantic: target,
			lexical:  target,
			bitWidth: -1,
		}
		u.register(c)
		out = append(out, c)
	}
	return out
}

// applyAttribute sets the layout effects of a and returns its cursor kind.
func (u *Unit) applyAttribute(a *model.Attribute, target *cursor) frontend.CursorKind {
	if a.Scope != "" && a.Scope != "gnu" && a.Scope != "__gnu__" {
		return frontend.CursorUnexposedAttr
	}
	switch strings.Trim(a.Name, "_") {
	case "annotate":
		return frontend.CursorAnnotateAttr
	case "visibility":
		return frontend.CursorVisibilityAttr
	case "aligned", "align", "alignas", "Alignas":
		if v := u.alignValue(a.Arguments); v > target.align {
			target.align = v
		}
		return frontend.CursorAlignedAttr
	case "packed":
		target.packed = true
	case "dllexport":
		return frontend.CursorDLLExport
	case "dllimport":
		return frontend.CursorDLLImport
	}
	return frontend.CursorUnexposedAttr
}

// alignValue evaluates an alignment argument: a constant expression or a
// builtin type name.
func (u *Unit) alignValue(args string) int64 {
	args = normalize(args)
	if args == "" {
		return defaultAlignment
	}
	if v, _, ok := parseIntLiteral(args); ok {
		return v
	}
	if kind, ok := primitiveKinds[args]; ok {
		_, align := u.builtinSize(kind)
		return align
	}
	var toks []lexToken
	for _, t := range NewLexer("", []byte(args)).Tokenize() {
		if t.Kind != frontend.TokenComment {
			toks = append(toks, t)
		}
	}
	e := &ppEval{toks: toks}
	if v := e.conditional(); v > 0 {
		return v
	}
	return 0
}

func unquote(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return strings.Trim(s, `"`)
}
