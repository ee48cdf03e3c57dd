package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/cppast/internal/frontend"
)

var exprKinds = map[string]frontend.CursorKind{
	"string_literal":           frontend.CursorStringLiteral,
	"raw_string_literal":       frontend.CursorStringLiteral,
	"concatenated_string":      frontend.CursorStringLiteral,
	"char_literal":             frontend.CursorCharacterLiteral,
	"true":                     frontend.CursorBoolLiteralExpr,
	"false":                    frontend.CursorBoolLiteralExpr,
	"nullptr":                  frontend.CursorNullPtrLiteralExpr,
	"parenthesized_expression": frontend.CursorParenExpr,
	"unary_expression":         frontend.CursorUnaryOperator,
	"pointer_expression":       frontend.CursorUnaryOperator,
	"update_expression":        frontend.CursorUnaryOperator,
	"binary_expression":        frontend.CursorBinaryOperator,
	"conditional_expression":   frontend.CursorConditionalOperator,
	"initializer_list":         frontend.CursorInitListExpr,
	"argument_list":            frontend.CursorCallExpr,
	"identifier":               frontend.CursorDeclRefExpr,
	"qualified_identifier":     frontend.CursorDeclRefExpr,
	"field_expression":         frontend.CursorMemberRefExpr,
	"call_expression":          frontend.CursorCallExpr,
	"cast_expression":          frontend.CursorCastExpr,
	"sizeof_expression":        frontend.CursorSizeOfExpr,
	"alignof_expression":       frontend.CursorSizeOfExpr,
	"lambda_expression":        frontend.CursorLambdaExpr,
	"parameter_pack_expansion": frontend.CursorPackExpansionExpr,
}

// expr adds the expression cursor for n under parent, with its operand
// cursors below it.
func (w *walker) expr(n *sitter.Node, parent *cursor) *cursor {
	kind, ok := exprKinds[n.Type()]
	if !ok {
		kind = frontend.CursorUnexposedExpr
	}
	if n.Type() == "number_literal" {
		kind = frontend.CursorIntegerLiteral
		if v, ok := parseNumber(w.f.text(n)); ok && v.kind == frontend.EvalFloat {
			kind = frontend.CursorFloatingLiteral
		}
	}
	c := &cursor{
		unit:      w.unit,
		kind:      kind,
		file:      w.f,
		node:      n,
		start:     int(n.StartByte()),
		end:       int(n.EndByte()),
		loc:       int(n.StartByte()),
		system:    w.f.System,
		scope:     parent.scope,
		valueNode: n,
		bitWidth:  -1,
	}
	switch kind {
	case frontend.CursorDeclRefExpr, frontend.CursorMemberRefExpr:
		c.name = normalize(w.f.text(n))
		if field := n.ChildByFieldName("field"); field != nil {
			c.name = w.f.text(field)
		}
	case frontend.CursorCallExpr:
		if fn := n.ChildByFieldName("function"); fn != nil {
			c.name = normalize(w.f.text(fn))
		}
	case frontend.CursorBinaryOperator, frontend.CursorUnaryOperator:
		if op := n.ChildByFieldName("operator"); op != nil {
			c.display = strings.TrimSpace(w.f.text(op))
		}
	}
	parent.add(c)

	switch n.Type() {
	case "lambda_expression", "string_literal", "raw_string_literal", "char_literal", "number_literal":
		return c
	case "call_expression":
		if args := n.ChildByFieldName("arguments"); args != nil {
			w.operands(args, c)
		}
		return c
	case "cast_expression":
		if v := n.ChildByFieldName("value"); v != nil {
			w.expr(v, c)
		}
		return c
	case "sizeof_expression", "alignof_expression":
		if v := n.ChildByFieldName("value"); v != nil {
			w.expr(v, c)
		}
		return c
	}
	w.operands(n, c)
	return c
}

func (w *walker) operands(n *sitter.Node, parent *cursor) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "comment", "type_descriptor", "field_identifier", "primitive_type", "template_argument_list":
			continue
		}
		w.expr(child, parent)
	}
}
