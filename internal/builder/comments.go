package builder

import (
	"strings"

	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
)

// appender is a comment node that owns children.
type appender interface {
	model.Comment
	Append(model.Comment)
}

// trimmer drops a trailing paragraph that holds only whitespace.
type trimmer interface {
	TrimTrailingEmptyParagraph()
}

// convertComment translates a parsed doc comment. Text nodes lose their
// leading whitespace.
func convertComment(c *frontend.Comment) model.Comment {
	if c == nil {
		return nil
	}
	var out model.Comment
	switch c.Kind {
	case frontend.CommentText:
		return &model.CommentText{Text: strings.TrimLeft(c.Text, " \t")}
	case frontend.CommentInlineCommand:
		return &model.CommentInlineCommand{
			CommandName: c.CommandName,
			Arguments:   c.Arguments,
			RenderKind:  model.InlineRenderKind(c.RenderKind),
		}
	case frontend.CommentHTMLStartTag:
		tag := &model.CommentHTMLStartTag{TagName: c.TagName, IsSelfClosing: c.IsSelfClosing}
		for _, a := range c.Attributes {
			tag.Attributes = append(tag.Attributes, model.HTMLAttribute{Name: a.Name, Value: a.Value})
		}
		return tag
	case frontend.CommentHTMLEndTag:
		return &model.CommentHTMLEndTag{TagName: c.TagName}
	case frontend.CommentVerbatimBlockLine:
		return &model.CommentVerbatimBlockLine{Text: c.Text}
	case frontend.CommentVerbatimLine:
		return &model.CommentVerbatimLine{Text: c.Text}
	case frontend.CommentParagraph:
		out = &model.CommentParagraph{}
	case frontend.CommentBlockCommand:
		out = &model.CommentBlockCommand{CommandName: c.CommandName, Arguments: c.Arguments}
	case frontend.CommentParamCommand:
		out = &model.CommentParamCommand{
			ParamName:           c.ParamName,
			ParamIndex:          c.ParamIndex,
			Direction:           model.ParamDirection(c.Direction),
			IsDirectionExplicit: c.IsDirectionExplicit,
		}
	case frontend.CommentTParamCommand:
		out = &model.CommentTemplateParamCommand{ParamName: c.ParamName}
	case frontend.CommentVerbatimBlockCommand:
		out = &model.CommentVerbatimBlockCommand{CommandName: c.CommandName}
	case frontend.CommentFullComment:
		out = &model.CommentFull{}
	default:
		return nil
	}

	parent := out.(appender)
	for _, child := range c.Children {
		if m := convertComment(child); m != nil {
			parent.Append(m)
		}
	}
	switch c.Kind {
	case frontend.CommentBlockCommand, frontend.CommentParamCommand, frontend.CommentTParamCommand:
		out.(trimmer).TrimTrailingEmptyParagraph()
	}
	return out
}
