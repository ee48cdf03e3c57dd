package parser

import (
	"github.com/hargabyte/cppast/internal/frontend"
)

// evalCondition evaluates the expression of an #if or #elif line.
// Unknown identifiers are 0 and function-like macro calls evaluate to 0.
func (p *preprocessor) evalCondition(f *sourceFile, args []lexToken) int64 {
	toks := p.expandCondition(f, args, map[string]bool{})
	e := &ppEval{toks: toks}
	return e.conditional()
}

// expandCondition resolves defined, __has_* queries and macros into
// literal tokens.
func (p *preprocessor) expandCondition(f *sourceFile, in []lexToken, active map[string]bool) []lexToken {
	var out []lexToken
	lit := func(v string) {
		out = append(out, lexToken{Token: frontend.Token{Kind: frontend.TokenLiteral, Spelling: v}})
	}
	for i := 0; i < len(in); i++ {
		t := in[i]
		if t.Kind != frontend.TokenIdentifier && t.Kind != frontend.TokenKeyword {
			out = append(out, t)
			continue
		}
		switch t.Spelling {
		case "defined":
			name := ""
			if i+1 < len(in) && in[i+1].Spelling == "(" {
				if i+2 < len(in) {
					name = in[i+2].Spelling
				}
				i += 3
			} else if i+1 < len(in) {
				name = in[i+1].Spelling
				i++
			}
			if p.macros[name] != nil {
				lit("1")
			} else {
				lit("0")
			}
			continue
		case "__has_include", "__has_include_next":
			end := balancedEnd(in, i+1, "(", ")")
			if end < 0 {
				lit("0")
				continue
			}
			name, angled := includeOperand(in[i+2 : end-1])
			if _, _, ok := p.unit.resolveInclude(f, name, angled); ok {
				lit("1")
			} else {
				lit("0")
			}
			i = end - 1
			continue
		case "__has_attribute", "__has_cpp_attribute", "__has_c_attribute", "__has_declspec_attribute",
			"__has_builtin", "__has_feature", "__has_extension":
			end := balancedEnd(in, i+1, "(", ")")
			lit("1")
			if end > 0 {
				i = end - 1
			}
			continue
		case "true":
			lit("1")
			continue
		case "false":
			lit("0")
			continue
		}
		m := p.macros[t.Spelling]
		switch {
		case m == nil || active[t.Spelling]:
			lit("0")
		case m.FunctionLike:
			if end := balancedEnd(in, i+1, "(", ")"); end > 0 {
				i = end - 1
			}
			lit("0")
		default:
			active[t.Spelling] = true
			out = append(out, p.expandCondition(f, withoutCommentTokens(m.Body), active)...)
			delete(active, t.Spelling)
		}
	}
	return out
}

// includeOperand reads the operand of __has_include.
func includeOperand(toks []lexToken) (string, bool) {
	if len(toks) == 1 && toks[0].Kind == frontend.TokenLiteral {
		s := toks[0].Spelling
		if len(s) >= 2 {
			return s[1 : len(s)-1], false
		}
	}
	name := ""
	for _, t := range toks {
		if t.Spelling != "<" && t.Spelling != ">" {
			name += t.Spelling
		}
	}
	return name, true
}

// ppEval is a precedence-climbing evaluator over expanded tokens.
type ppEval struct {
	toks []lexToken
	pos  int
}

var ppPrecedence = map[string]int{
	"||": 1, "&&": 2, "|": 3, "^": 4, "&": 5,
	"==": 6, "!=": 6, "<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8, "+": 9, "-": 9, "*": 10, "/": 10, "%": 10,
}

func (e *ppEval) peek() string {
	if e.pos < len(e.toks) {
		return e.toks[e.pos].Spelling
	}
	return ""
}

func (e *ppEval) conditional() int64 {
	cond := e.binary(1)
	if e.peek() != "?" {
		return cond
	}
	e.pos++
	a := e.conditional()
	if e.peek() == ":" {
		e.pos++
	}
	b := e.conditional()
	if cond != 0 {
		return a
	}
	return b
}

func (e *ppEval) binary(minPrec int) int64 {
	left := e.unary()
	for {
		op := e.peek()
		prec, ok := ppPrecedence[op]
		if !ok || prec < minPrec {
			return left
		}
		e.pos++
		right := e.binary(prec + 1)
		left = applyIntOp(op, left, right)
	}
}

func (e *ppEval) unary() int64 {
	switch e.peek() {
	case "!":
		e.pos++
		return boolInt(e.unary() == 0)
	case "~":
		e.pos++
		return ^e.unary()
	case "-":
		e.pos++
		return -e.unary()
	case "+":
		e.pos++
		return e.unary()
	}
	return e.primary()
}

func (e *ppEval) primary() int64 {
	if e.pos >= len(e.toks) {
		return 0
	}
	t := e.toks[e.pos]
	e.pos++
	if t.Spelling == "(" {
		v := e.conditional()
		if e.peek() == ")" {
			e.pos++
		}
		return v
	}
	if t.Kind == frontend.TokenLiteral {
		if v, ok := parseCharLiteral(t.Spelling); ok {
			return v
		}
		if v, _, ok := parseIntLiteral(t.Spelling); ok {
			return v
		}
	}
	return 0
}

// applyIntOp applies a binary operator with C semantics on int64. Division
// by zero yields 0.
func applyIntOp(op string, a, b int64) int64 {
	switch op {
	case "||":
		return boolInt(a != 0 || b != 0)
	case "&&":
		return boolInt(a != 0 && b != 0)
	case "|":
		return a | b
	case "^":
		return a ^ b
	case "&":
		return a & b
	case "==":
		return boolInt(a == b)
	case "!=":
		return boolInt(a != b)
	case "<":
		return boolInt(a < b)
	case ">":
		return boolInt(a > b)
	case "<=":
		return boolInt(a <= b)
	case ">=":
		return boolInt(a >= b)
	case "<<":
		return a << uint64(b&63)
	case ">>":
		return a >> uint64(b&63)
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		if b == 0 {
			return 0
		}
		return a / b
	case "%":
		if b == 0 {
			return 0
		}
		return a % b
	}
	return 0
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
