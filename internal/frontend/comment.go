package frontend

// CommentKind identifies the node kind of a parsed doc comment.
type CommentKind int

const (
	CommentNull CommentKind = iota
	CommentText
	CommentInlineCommand
	CommentHTMLStartTag
	CommentHTMLEndTag
	CommentParagraph
	CommentBlockCommand
	CommentParamCommand
	CommentTParamCommand
	CommentVerbatimBlockCommand
	CommentVerbatimBlockLine
	CommentVerbatimLine
	CommentFullComment
)

// InlineRenderKind describes how an inline command renders its argument.
type InlineRenderKind int

const (
	RenderNormal InlineRenderKind = iota
	RenderBold
	RenderMonospaced
	RenderEmphasized
	RenderAnchor
)

// ParamDirection is the passing direction of a documented parameter.
type ParamDirection int

const (
	DirectionIn ParamDirection = iota
	DirectionOut
	DirectionInOut
)

// HTMLAttribute is one name="value" pair of an HTML start tag.
type HTMLAttribute struct {
	Name  string
	Value string
}

// Comment is one node of a parsed doc-comment tree. Which fields are
// meaningful depends on Kind.
type Comment struct {
	Kind     CommentKind
	Children []*Comment

	// Text holds the text of Text, VerbatimBlockLine and VerbatimLine nodes.
	Text         string
	IsWhitespace bool

	// CommandName and Arguments belong to command nodes.
	CommandName string
	Arguments   []string
	RenderKind  InlineRenderKind

	// Param and TParam commands.
	ParamName           string
	ParamIndex          int
	Direction           ParamDirection
	IsDirectionExplicit bool

	// HTML tags.
	TagName       string
	Attributes    []HTMLAttribute
	IsSelfClosing bool
}
