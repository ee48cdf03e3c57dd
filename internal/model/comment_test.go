package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentRendering(t *testing.T) {
	full := &CommentFull{}

	brief := &CommentParagraph{}
	brief.Append(&CommentText{Text: "Adds two numbers."})
	full.Append(brief)

	param := &CommentParamCommand{ParamName: "a", Direction: ParamDirectionIn}
	body := &CommentParagraph{}
	body.Append(&CommentText{Text: "first operand"})
	param.Append(body)
	param.Append(&CommentParagraph{})
	param.TrimTrailingEmptyParagraph()
	full.Append(param)

	tparam := &CommentTemplateParamCommand{ParamName: "T"}
	tbody := &CommentParagraph{}
	tbody.Append(&CommentText{Text: "value type"})
	tparam.Append(tbody)
	full.Append(tparam)

	ret := &CommentBlockCommand{CommandName: "return"}
	rbody := &CommentParagraph{}
	rbody.Append(&CommentText{Text: "the sum"})
	rbody.Append(&CommentInlineCommand{CommandName: "c", Arguments: []string{"int"}})
	ret.Append(rbody)
	full.Append(ret)

	assert.Len(t, param.Children(), 1)
	assert.Equal(t,
		"Adds two numbers.\n@param a first operand\n@tparam T value type\n@return the sum @c int",
		full.String())
}

func TestCommentVerbatimAndHTML(t *testing.T) {
	code := &CommentVerbatimBlockCommand{CommandName: "code"}
	code.Append(&CommentVerbatimBlockLine{Text: "int x = 1;"})
	assert.Equal(t, "@code\nint x = 1;\n@endcode", code.String())

	tag := &CommentHTMLStartTag{TagName: "a", Attributes: []HTMLAttribute{{Name: "href", Value: "x"}}}
	assert.Equal(t, `<a href="x">`, tag.String())
	assert.Equal(t, "</a>", (&CommentHTMLEndTag{TagName: "a"}).String())
}
