package builder

import (
	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
	"github.com/hargabyte/cppast/internal/tokens"
)

// firstExpression returns the first expression child of c, or nil.
func firstExpression(c frontend.Cursor) frontend.Cursor {
	var found frontend.Cursor
	c.VisitChildren(func(child, _ frontend.Cursor) frontend.ChildVisitResult {
		if child.Kind().IsExpression() {
			found = child
			return frontend.VisitBreak
		}
		return frontend.VisitContinue
	})
	return found
}

func expressionChildren(c frontend.Cursor) []frontend.Cursor {
	var out []frontend.Cursor
	c.VisitChildren(func(child, _ frontend.Cursor) frontend.ChildVisitResult {
		if child.Kind().IsExpression() {
			out = append(out, child)
		}
		return frontend.VisitContinue
	})
	return out
}

// expression converts an expression cursor into an expression tree.
// Forms without a dedicated node keep their source tokens.
func (b *Builder) expression(c frontend.Cursor) model.Expression {
	switch c.Kind() {
	case frontend.CursorIntegerLiteral, frontend.CursorFloatingLiteral,
		frontend.CursorStringLiteral, frontend.CursorCharacterLiteral,
		frontend.CursorBoolLiteralExpr, frontend.CursorNullPtrLiteralExpr:
		return &model.LiteralExpression{Value: b.sourceText(c)}
	case frontend.CursorParenExpr:
		if inner := firstExpression(c); inner != nil {
			return &model.ParenExpression{Inner: b.expression(inner)}
		}
	case frontend.CursorInitListExpr:
		list := &model.InitListExpression{}
		for _, item := range expressionChildren(c) {
			list.Items = append(list.Items, b.expression(item))
		}
		return list
	case frontend.CursorUnaryOperator:
		if e := b.unary(c); e != nil {
			return e
		}
	case frontend.CursorBinaryOperator:
		if e := b.binary(c); e != nil {
			return e
		}
	}
	return &model.RawExpression{Text: b.sourceText(c), CursorKind: c.Kind().String()}
}

func (b *Builder) unary(c frontend.Cursor) model.Expression {
	operand := firstExpression(c)
	toks := b.tokenize(c.Extent())
	if operand == nil || len(toks) == 0 {
		return nil
	}
	e := &model.UnaryExpression{Operand: b.expression(operand)}
	if toks[0].Extent.Start.Offset < operand.Extent().Start.Offset {
		e.Operator = toks[0].Spelling
	} else {
		e.Operator = toks[len(toks)-1].Spelling
		e.IsPostfix = true
	}
	return e
}

// binary builds both operands first, then reads the operator from the
// tokens between them.
func (b *Builder) binary(c frontend.Cursor) model.Expression {
	kids := expressionChildren(c)
	if len(kids) != 2 {
		return nil
	}
	left, right := b.expression(kids[0]), b.expression(kids[1])
	between := frontend.SourceRange{Start: kids[0].Extent().End, End: kids[1].Extent().Start}
	op := tokens.Join(b.tokenize(between))
	if op == "" {
		op = c.DisplayName()
	}
	return &model.BinaryExpression{Operator: op, Left: left, Right: right}
}

func (b *Builder) sourceText(c frontend.Cursor) string {
	if text := tokens.Join(b.tokenize(c.Extent())); text != "" {
		return text
	}
	return c.Spelling()
}
