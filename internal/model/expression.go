package model

import "strings"

// ExpressionKind is the variant of an Expression.
type ExpressionKind int

const (
	ExpressionLiteral ExpressionKind = iota
	ExpressionUnary
	ExpressionBinary
	ExpressionParen
	ExpressionInitList
	ExpressionRaw
)

// Expression is an initializer or constant expression tree.
type Expression interface {
	ExpressionKind() ExpressionKind
	String() string
}

// LiteralExpression is an integer, float, string, char, bool or null literal.
type LiteralExpression struct {
	Value string
}

func (e *LiteralExpression) ExpressionKind() ExpressionKind { return ExpressionLiteral }
func (e *LiteralExpression) String() string                 { return e.Value }

// UnaryExpression applies a prefix or postfix operator.
type UnaryExpression struct {
	Operator  string
	Operand   Expression
	IsPostfix bool
}

func (e *UnaryExpression) ExpressionKind() ExpressionKind { return ExpressionUnary }

func (e *UnaryExpression) String() string {
	operand := exprString(e.Operand)
	if e.IsPostfix {
		return operand + e.Operator
	}
	return e.Operator + operand
}

// BinaryExpression is Left Operator Right.
type BinaryExpression struct {
	Operator string
	Left     Expression
	Right    Expression
}

func (e *BinaryExpression) ExpressionKind() ExpressionKind { return ExpressionBinary }

func (e *BinaryExpression) String() string {
	return exprString(e.Left) + " " + e.Operator + " " + exprString(e.Right)
}

// ParenExpression is a parenthesized expression.
type ParenExpression struct {
	Inner Expression
}

func (e *ParenExpression) ExpressionKind() ExpressionKind { return ExpressionParen }
func (e *ParenExpression) String() string                 { return "(" + exprString(e.Inner) + ")" }

// InitListExpression is a braced initializer list.
type InitListExpression struct {
	Items []Expression
}

func (e *InitListExpression) ExpressionKind() ExpressionKind { return ExpressionInitList }

func (e *InitListExpression) String() string {
	parts := make([]string, len(e.Items))
	for i, it := range e.Items {
		parts[i] = exprString(it)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// RawExpression keeps the source tokens of an expression form that has no
// dedicated node.
type RawExpression struct {
	Text string
	// CursorKind names the front-end expression kind it came from.
	CursorKind string
}

func (e *RawExpression) ExpressionKind() ExpressionKind { return ExpressionRaw }
func (e *RawExpression) String() string                 { return e.Text }

func exprString(e Expression) string {
	if e == nil {
		return ""
	}
	return e.String()
}
