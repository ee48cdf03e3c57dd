package builder

import (
	"github.com/hargabyte/cppast/internal/attrs"
	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
)

// decorate attaches the attributes and doc comment of c to d. The
// attribute list is recomputed from c each time, so decorating twice from
// the same cursor changes nothing.
func (b *Builder) decorate(d *model.Decl, c frontend.Cursor) {
	d.Attributes = b.attributes(c)
	if b.opts.ParseComments && d.Comment == nil {
		d.Comment = convertComment(c.ParsedComment())
	}
}

// attributes collects the attributes of c from each enabled engine in
// turn: front-end attribute cursors, declaration tokens, doc comment.
func (b *Builder) attributes(c frontend.Cursor) []*model.Attribute {
	var out []*model.Attribute
	if b.opts.ParseSystemAttributes {
		c.VisitChildren(func(child, _ frontend.Cursor) frontend.ChildVisitResult {
			if child.Kind().IsAttribute() {
				out = mergeAttributes(out, []*model.Attribute{systemAttribute(child)})
			}
			return frontend.VisitContinue
		})
	}
	if b.opts.ParseTokenAttributes {
		out = mergeAttributes(out, b.tokenAttributes(c))
	}
	if b.opts.ParseCommentAttributes {
		out = mergeAttributes(out, attrs.ParseComment(c.RawComment()))
	}
	return out
}

func systemAttribute(c frontend.Cursor) *model.Attribute {
	a := &model.Attribute{Kind: model.SystemAttribute, Name: c.Spelling(), Span: sourceSpan(c.Extent())}
	if c.Kind() == frontend.CursorAnnotateAttr {
		a.Kind = model.AnnotateAttribute
		a.Name = "annotate"
		a.Arguments = c.Spelling()
		return a
	}
	if display := c.DisplayName(); display != c.Spelling() {
		a.Arguments = display
	}
	return a
}

// tokenAttributes scans the declaration's tokens, widened backwards over
// attribute syntax written before the front-end's extent.
func (b *Builder) tokenAttributes(c frontend.Cursor) []*model.Attribute {
	ext := c.Extent()
	if b.tu != nil {
		if src, ok := b.tu.FileContents(ext.Start.File); ok {
			ext.Start.Offset = attrs.ExtendStart(src, ext.Start.Offset, b.scanner.IsAttributeMacro)
		}
	}
	toks := b.tokenArray(ext)
	if toks.Len() == 0 {
		return nil
	}
	switch c.Kind() {
	case frontend.CursorFunctionDecl, frontend.CursorCXXMethod, frontend.CursorConstructor,
		frontend.CursorDestructor, frontend.CursorConversionFunction, frontend.CursorFunctionTemplate:
		return b.scanner.ScanFunction(toks, c.Spelling())
	}
	return b.scanner.Scan(toks)
}

// mergeAttributes appends the attributes of add not already in list. The
// first engine to report an attribute keeps it.
func mergeAttributes(list, add []*model.Attribute) []*model.Attribute {
	for _, a := range add {
		dup := false
		for _, have := range list {
			if have.SameAs(a) {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, a)
		}
	}
	return list
}
