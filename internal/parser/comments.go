package parser

import (
	"sort"
	"strings"

	"github.com/hargabyte/cppast/internal/attrs"
	"github.com/hargabyte/cppast/internal/frontend"
)

// attachComment finds the comment documenting c: the contiguous block of
// comments ending on the line before the declaration, or a trailing
// "///<" comment on the declaration's last line.
func (u *Unit) attachComment(c *cursor) {
	if c.commentDone {
		return
	}
	c.commentDone = true
	if !u.opts.ParseComments || c.file == nil || c.implicit {
		return
	}
	if !c.isDecl() && c.kind != frontend.CursorMacroDefinition {
		return
	}
	f := c.file
	raw := leadingComment(f, attrs.ExtendStart(f.Source, f.attrStart(c.start), nil))
	if raw == "" {
		raw = trailingComment(f, c.end)
	}
	if raw == "" {
		return
	}
	c.rawComment = raw
	c.comment = parseDoxygen(raw)
	resolveParamIndexes(c.comment, c)
}

func leadingComment(f *sourceFile, start int) string {
	toks := f.Tokens
	i := sort.Search(len(toks), func(i int) bool { return toks[i].Extent.Start.Offset >= start }) - 1
	first, last := -1, -1
	next := start
	for ; i >= 0; i-- {
		t := toks[i]
		if t.Kind != frontend.TokenComment {
			break
		}
		if strings.Count(string(f.Source[t.Extent.End.Offset:next]), "\n") > 1 {
			break
		}
		if !t.LineStart {
			break
		}
		if last < 0 {
			last = i
		}
		first = i
		next = t.Extent.Start.Offset
	}
	if first < 0 {
		return ""
	}
	return string(f.Source[toks[first].Extent.Start.Offset:toks[last].Extent.End.Offset])
}

func trailingComment(f *sourceFile, end int) string {
	toks := f.Tokens
	i := sort.Search(len(toks), func(i int) bool { return toks[i].Extent.Start.Offset >= end })
	for ; i < len(toks); i++ {
		t := toks[i]
		if t.LineStart {
			return ""
		}
		if t.Kind == frontend.TokenComment {
			if isTrailingDoc(t.Spelling) {
				return t.Spelling
			}
			return ""
		}
		if !t.Is(",") && !t.Is(";") {
			return ""
		}
	}
	return ""
}

func isTrailingDoc(text string) bool {
	for _, p := range []string{"///<", "//!<", "/**<", "/*!<"} {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// resolveParamIndexes points \param commands at the documented
// parameters, or -1 when no parameter has that name.
func resolveParamIndexes(n *frontend.Comment, c *cursor) {
	if n == nil {
		return
	}
	for _, child := range n.Children {
		if child.Kind != frontend.CommentParamCommand {
			continue
		}
		child.ParamIndex = -1
		for i, p := range c.params {
			if p.name == child.ParamName {
				child.ParamIndex = i
				break
			}
		}
	}
}
