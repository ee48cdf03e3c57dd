package model

import (
	"strings"
)

// CommentKind is the variant of a Comment node.
type CommentKind int

const (
	CommentKindText CommentKind = iota
	CommentKindParagraph
	CommentKindInlineCommand
	CommentKindBlockCommand
	CommentKindParamCommand
	CommentKindTemplateParamCommand
	CommentKindHTMLStartTag
	CommentKindHTMLEndTag
	CommentKindVerbatimBlockCommand
	CommentKindVerbatimBlockLine
	CommentKindVerbatimLine
	CommentKindFull
)

// Comment is a structured doc-comment node that renders itself.
type Comment interface {
	CommentKind() CommentKind
	Children() []Comment
	String() string
}

type commentNode struct {
	children []Comment
}

func (n *commentNode) Children() []Comment { return n.children }

// Append adds a child node.
func (n *commentNode) Append(c Comment) { n.children = append(n.children, c) }

// TrimTrailingEmptyParagraph removes a last paragraph with no text.
func (n *commentNode) TrimTrailingEmptyParagraph() {
	if len(n.children) == 0 {
		return
	}
	last, ok := n.children[len(n.children)-1].(*CommentParagraph)
	if ok && strings.TrimSpace(last.String()) == "" {
		n.children = n.children[:len(n.children)-1]
	}
}

// CommentText is plain text.
type CommentText struct {
	Text string
}

func (c *CommentText) CommentKind() CommentKind { return CommentKindText }
func (c *CommentText) Children() []Comment      { return nil }
func (c *CommentText) String() string           { return c.Text }

// CommentParagraph groups inline content.
type CommentParagraph struct {
	commentNode
}

func (c *CommentParagraph) CommentKind() CommentKind { return CommentKindParagraph }

func (c *CommentParagraph) String() string {
	var b strings.Builder
	for i, child := range c.children {
		if i > 0 {
			if _, ok := child.(*CommentText); ok {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(child.String())
	}
	return b.String()
}

// InlineRenderKind is how an inline command renders its argument.
type InlineRenderKind int

const (
	InlineRenderNormal InlineRenderKind = iota
	InlineRenderBold
	InlineRenderMonospaced
	InlineRenderEmphasized
	InlineRenderAnchor
)

// CommentInlineCommand is an inline command such as \c or \p.
type CommentInlineCommand struct {
	CommandName string
	Arguments   []string
	RenderKind  InlineRenderKind
}

func (c *CommentInlineCommand) CommentKind() CommentKind { return CommentKindInlineCommand }
func (c *CommentInlineCommand) Children() []Comment      { return nil }

func (c *CommentInlineCommand) String() string {
	return strings.TrimSpace("@" + c.CommandName + " " + strings.Join(c.Arguments, " "))
}

// CommentBlockCommand is a block command such as \brief or \return.
type CommentBlockCommand struct {
	commentNode
	CommandName string
	Arguments   []string
}

func (c *CommentBlockCommand) CommentKind() CommentKind { return CommentKindBlockCommand }

func (c *CommentBlockCommand) String() string {
	head := strings.TrimSpace("@" + c.CommandName + " " + strings.Join(c.Arguments, " "))
	return joinHead(head, c.children)
}

// ParamDirection is the documented passing direction of a parameter.
type ParamDirection int

const (
	ParamDirectionIn ParamDirection = iota
	ParamDirectionOut
	ParamDirectionInOut
)

// String returns the doxygen direction spelling.
func (d ParamDirection) String() string {
	switch d {
	case ParamDirectionOut:
		return "out"
	case ParamDirectionInOut:
		return "in,out"
	default:
		return "in"
	}
}

// CommentParamCommand documents a function parameter.
type CommentParamCommand struct {
	commentNode
	ParamName           string
	ParamIndex          int
	Direction           ParamDirection
	IsDirectionExplicit bool
}

func (c *CommentParamCommand) CommentKind() CommentKind { return CommentKindParamCommand }

func (c *CommentParamCommand) String() string {
	head := "@param"
	if c.IsDirectionExplicit {
		head += "[" + c.Direction.String() + "]"
	}
	return joinHead(head+" "+c.ParamName, c.children)
}

// CommentTemplateParamCommand documents a template parameter.
type CommentTemplateParamCommand struct {
	commentNode
	ParamName string
}

func (c *CommentTemplateParamCommand) CommentKind() CommentKind {
	return CommentKindTemplateParamCommand
}

func (c *CommentTemplateParamCommand) String() string {
	return joinHead("@tparam "+c.ParamName, c.children)
}

// HTMLAttribute is one attribute of an HTML start tag.
type HTMLAttribute struct {
	Name  string
	Value string
}

// CommentHTMLStartTag is an opening HTML tag inside a comment.
type CommentHTMLStartTag struct {
	TagName       string
	Attributes    []HTMLAttribute
	IsSelfClosing bool
}

func (c *CommentHTMLStartTag) CommentKind() CommentKind { return CommentKindHTMLStartTag }
func (c *CommentHTMLStartTag) Children() []Comment      { return nil }

func (c *CommentHTMLStartTag) String() string {
	var b strings.Builder
	b.WriteString("<" + c.TagName)
	for _, a := range c.Attributes {
		b.WriteString(" " + a.Name + `="` + a.Value + `"`)
	}
	if c.IsSelfClosing {
		b.WriteString("/")
	}
	b.WriteString(">")
	return b.String()
}

// CommentHTMLEndTag is a closing HTML tag.
type CommentHTMLEndTag struct {
	TagName string
}

func (c *CommentHTMLEndTag) CommentKind() CommentKind { return CommentKindHTMLEndTag }
func (c *CommentHTMLEndTag) Children() []Comment      { return nil }
func (c *CommentHTMLEndTag) String() string           { return "</" + c.TagName + ">" }

// CommentVerbatimBlockCommand is a \code ... \endcode style block.
type CommentVerbatimBlockCommand struct {
	commentNode
	CommandName string
}

func (c *CommentVerbatimBlockCommand) CommentKind() CommentKind {
	return CommentKindVerbatimBlockCommand
}

func (c *CommentVerbatimBlockCommand) String() string {
	lines := []string{"@" + c.CommandName}
	for _, child := range c.children {
		lines = append(lines, child.String())
	}
	lines = append(lines, "@end"+c.CommandName)
	return strings.Join(lines, "\n")
}

// CommentVerbatimBlockLine is one line of a verbatim block.
type CommentVerbatimBlockLine struct {
	Text string
}

func (c *CommentVerbatimBlockLine) CommentKind() CommentKind { return CommentKindVerbatimBlockLine }
func (c *CommentVerbatimBlockLine) Children() []Comment      { return nil }
func (c *CommentVerbatimBlockLine) String() string           { return c.Text }

// CommentVerbatimLine is a one-line verbatim command such as \fn.
type CommentVerbatimLine struct {
	Text string
}

func (c *CommentVerbatimLine) CommentKind() CommentKind { return CommentKindVerbatimLine }
func (c *CommentVerbatimLine) Children() []Comment      { return nil }
func (c *CommentVerbatimLine) String() string           { return c.Text }

// CommentFull is the root of a doc comment.
type CommentFull struct {
	commentNode
}

func (c *CommentFull) CommentKind() CommentKind { return CommentKindFull }

func (c *CommentFull) String() string {
	parts := make([]string, 0, len(c.children))
	for _, child := range c.children {
		if s := child.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func joinHead(head string, children []Comment) string {
	var b strings.Builder
	b.WriteString(head)
	for _, child := range children {
		s := child.String()
		if s == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(s)
	}
	return b.String()
}
