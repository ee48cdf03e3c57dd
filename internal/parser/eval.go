package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/cppast/internal/frontend"
)

// value is an intermediate constant.
type value struct {
	kind     frontend.EvalKind
	i        int64
	unsigned bool
	f        float64
	s        string
}

func intValue(i int64, unsigned bool) value {
	return value{kind: frontend.EvalInt, i: i, unsigned: unsigned}
}

func (v value) float() float64 {
	if v.kind == frontend.EvalFloat {
		return v.f
	}
	if v.unsigned {
		return float64(uint64(v.i))
	}
	return float64(v.i)
}

func (v value) int() int64 {
	if v.kind == frontend.EvalFloat {
		return int64(v.f)
	}
	return v.i
}

func (v value) truthy() bool {
	if v.kind == frontend.EvalFloat {
		return v.f != 0
	}
	return v.i != 0
}

func (v value) result() frontend.EvalResult {
	return frontend.EvalResult{Kind: v.kind, Int: v.i, IsUnsigned: v.unsigned, Float: v.f, Str: v.s}
}

// evaluate folds the initializer of a declaration or the expression a
// cursor stands for.
func (u *Unit) evaluate(c *cursor) frontend.EvalResult {
	if c.kind == frontend.CursorEnumConstantDecl {
		return frontend.EvalResult{Kind: frontend.EvalInt, Int: u.enumConstant(c)}
	}
	if c.valueNode == nil {
		return frontend.EvalResult{}
	}
	v, ok := u.evalNode(c.valueNode, c.file, c.scope, nil)
	if !ok {
		return frontend.EvalResult{}
	}
	if !c.kind.IsExpression() {
		v = u.convert(v, u.cursorType(c))
	}
	return v.result()
}

// enumConstant returns an enumerator's value: its initializer, or one
// more than the previous enumerator.
func (u *Unit) enumConstant(c *cursor) int64 {
	if c.kind != frontend.CursorEnumConstantDecl || c.semantic == nil {
		return 0
	}
	if c.enumDone {
		return c.enumValue
	}
	enum := c.semantic
	var next int64
	for _, item := range enum.children {
		if item.kind != frontend.CursorEnumConstantDecl {
			continue
		}
		if !item.enumDone {
			item.enumDone = true
			item.enumValue = next
			if item.valueNode != nil {
				if v, ok := u.evalNode(item.valueNode, item.file, enum.inner, nil); ok {
					item.enumValue = v.int()
				}
			}
		}
		next = item.enumValue + 1
		if item == c {
			break
		}
	}
	return c.enumValue
}

// evalInt folds n to an integer, or returns def.
func (u *Unit) evalInt(n *sitter.Node, f *sourceFile, sc *scope, subst substitution, def int64) int64 {
	v, ok := u.evalNode(n, f, sc, subst)
	if !ok || (v.kind != frontend.EvalInt && v.kind != frontend.EvalFloat) {
		return def
	}
	return v.int()
}

func (u *Unit) evalNode(n *sitter.Node, f *sourceFile, sc *scope, subst substitution) (value, bool) {
	e := &evaluator{u: u, f: f, sc: sc, subst: subst}
	return e.eval(n)
}

type evaluator struct {
	u     *Unit
	f     *sourceFile
	sc    *scope
	subst substitution
	depth int
}

func (e *evaluator) resolver() *resolver {
	return e.u.resolverFor(e.f, e.sc, e.subst)
}

func (e *evaluator) eval(n *sitter.Node) (value, bool) {
	if n == nil || e.depth > 64 {
		return value{}, false
	}
	e.depth++
	defer func() { e.depth-- }()

	text := e.f.text(n)
	switch n.Type() {
	case "number_literal":
		return parseNumber(text)
	case "char_literal":
		v, ok := parseCharLiteral(text)
		return intValue(v, false), ok
	case "true":
		return intValue(1, false), true
	case "false":
		return intValue(0, false), true
	case "string_literal", "raw_string_literal":
		s, ok := stringValue(text)
		return value{kind: frontend.EvalString, s: s}, ok
	case "concatenated_string":
		var b strings.Builder
		for i := 0; i < int(n.NamedChildCount()); i++ {
			s, ok := stringValue(e.f.text(n.NamedChild(i)))
			if !ok {
				return value{}, false
			}
			b.WriteString(s)
		}
		return value{kind: frontend.EvalString, s: b.String()}, true
	case "parenthesized_expression":
		return e.eval(n.NamedChild(0))
	case "unary_expression":
		return e.unary(n)
	case "binary_expression":
		return e.binary(n)
	case "conditional_expression":
		cond, ok := e.eval(n.ChildByFieldName("condition"))
		if !ok {
			return value{}, false
		}
		if cond.truthy() {
			return e.eval(n.ChildByFieldName("consequence"))
		}
		return e.eval(n.ChildByFieldName("alternative"))
	case "identifier", "type_identifier", "qualified_identifier":
		return e.name(n)
	case "sizeof_expression", "alignof_expression":
		return e.sizeof(n)
	case "cast_expression":
		v, ok := e.eval(n.ChildByFieldName("value"))
		if !ok {
			return value{}, false
		}
		return e.u.convert(v, e.resolver().descriptor(n.ChildByFieldName("type"))), true
	case "initializer_list":
		if n.NamedChildCount() == 1 {
			return e.eval(n.NamedChild(0))
		}
	case "call_expression":
		return e.call(n)
	}
	return value{}, false
}

func (e *evaluator) unary(n *sitter.Node) (value, bool) {
	op := e.f.text(n.ChildByFieldName("operator"))
	v, ok := e.eval(n.ChildByFieldName("argument"))
	if !ok {
		return value{}, false
	}
	switch op {
	case "+":
		return v, true
	case "-":
		if v.kind == frontend.EvalFloat {
			v.f = -v.f
			return v, true
		}
		v.i = -v.i
		return v, v.kind == frontend.EvalInt
	case "!":
		return intValue(boolInt(!v.truthy()), false), v.kind != frontend.EvalString
	case "~":
		v.i = ^v.i
		return v, v.kind == frontend.EvalInt
	}
	return value{}, false
}

func (e *evaluator) binary(n *sitter.Node) (value, bool) {
	op := e.f.text(n.ChildByFieldName("operator"))
	l, ok := e.eval(n.ChildByFieldName("left"))
	if !ok {
		return value{}, false
	}
	r, ok := e.eval(n.ChildByFieldName("right"))
	if !ok || l.kind == frontend.EvalString || r.kind == frontend.EvalString {
		return value{}, false
	}
	if l.kind == frontend.EvalFloat || r.kind == frontend.EvalFloat {
		a, b := l.float(), r.float()
		switch op {
		case "+":
			return value{kind: frontend.EvalFloat, f: a + b}, true
		case "-":
			return value{kind: frontend.EvalFloat, f: a - b}, true
		case "*":
			return value{kind: frontend.EvalFloat, f: a * b}, true
		case "/":
			return value{kind: frontend.EvalFloat, f: a / b}, true
		case "<":
			return intValue(boolInt(a < b), false), true
		case ">":
			return intValue(boolInt(a > b), false), true
		case "<=":
			return intValue(boolInt(a <= b), false), true
		case ">=":
			return intValue(boolInt(a >= b), false), true
		case "==":
			return intValue(boolInt(a == b), false), true
		case "!=":
			return intValue(boolInt(a != b), false), true
		case "&&":
			return intValue(boolInt(a != 0 && b != 0), false), true
		case "||":
			return intValue(boolInt(a != 0 || b != 0), false), true
		}
		return value{}, false
	}
	unsigned := l.unsigned || r.unsigned
	if unsigned {
		a, b := uint64(l.i), uint64(r.i)
		switch op {
		case "/":
			if b == 0 {
				return value{}, false
			}
			return intValue(int64(a/b), true), true
		case "%":
			if b == 0 {
				return value{}, false
			}
			return intValue(int64(a%b), true), true
		case ">>":
			return intValue(int64(a>>(b&63)), true), true
		case "<":
			return intValue(boolInt(a < b), false), true
		case ">":
			return intValue(boolInt(a > b), false), true
		case "<=":
			return intValue(boolInt(a <= b), false), true
		case ">=":
			return intValue(boolInt(a >= b), false), true
		}
	}
	if (op == "/" || op == "%") && r.i == 0 {
		return value{}, false
	}
	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return intValue(applyIntOp(op, l.i, r.i), false), true
	}
	return intValue(applyIntOp(op, l.i, r.i), unsigned), true
}

func (e *evaluator) name(n *sitter.Node) (value, bool) {
	var decl *cursor
	if n.Type() == "qualified_identifier" {
		parts, global := flattenQualified(n)
		last := e.f.text(parts[len(parts)-1])
		var s *scope
		if len(parts) == 1 {
			s = e.u.global
		} else if owner := e.resolver().scopeCursor(parts[:len(parts)-1], global); owner != nil {
			s = e.u.scopeOf(owner)
		}
		if s != nil {
			decl = s.local(last, isValueDecl, map[*scope]bool{})
		}
	} else if e.sc != nil {
		decl = e.sc.lookup(e.f.text(n), isValueDecl)
	}
	if decl == nil {
		return value{}, false
	}
	switch decl.kind {
	case frontend.CursorEnumConstantDecl:
		return intValue(e.u.enumConstant(decl), false), true
	case frontend.CursorNonTypeTemplateParameter:
		if a, ok := e.subst[decl]; ok && a.kind == frontend.TemplateArgumentIntegral {
			return intValue(a.value, false), true
		}
	case frontend.CursorVarDecl, frontend.CursorFieldDecl:
		if decl.valueNode == nil {
			return value{}, false
		}
		t := e.u.cursorType(decl)
		if t == nil || !(t.isConst || decl.flags.Has(frontend.FlagConstExpr)) {
			return value{}, false
		}
		sub := &evaluator{u: e.u, f: decl.file, sc: decl.scope, depth: e.depth}
		v, ok := sub.eval(decl.valueNode)
		if !ok {
			return value{}, false
		}
		return e.u.convert(v, t), true
	}
	return value{}, false
}

func (e *evaluator) sizeof(n *sitter.Node) (value, bool) {
	align := n.Type() == "alignof_expression" || strings.HasPrefix(e.f.text(n), "alignof") ||
		strings.HasPrefix(e.f.text(n), "_Alignof")
	var t *ctype
	if tn := n.ChildByFieldName("type"); tn != nil {
		t = e.resolver().descriptor(tn)
	} else if v := n.ChildByFieldName("value"); v != nil {
		inner := v
		for inner.Type() == "parenthesized_expression" && inner.NamedChildCount() == 1 {
			inner = inner.NamedChild(0)
		}
		if inner.Type() == "identifier" {
			name := e.f.text(inner)
			if d := e.sc.lookup(name, nil); d != nil && isValueDecl(d) {
				t = e.u.cursorType(d)
			} else {
				t = e.resolver().named(name)
			}
		}
	} else if desc := childOfType(n, "type_descriptor"); desc != nil {
		t = e.resolver().descriptor(desc)
	}
	if t == nil {
		return value{}, false
	}
	size, alignment := e.u.sizeAndAlign(t)
	if align {
		size = alignment
	}
	if size < 0 {
		return value{}, false
	}
	return intValue(size, true), true
}

// call folds functional casts such as int(3) and static_cast<T>(x).
func (e *evaluator) call(n *sitter.Node) (value, bool) {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fn == nil || args == nil || args.NamedChildCount() != 1 {
		return value{}, false
	}
	v, ok := e.eval(args.NamedChild(0))
	if !ok {
		return value{}, false
	}
	switch fn.Type() {
	case "primitive_type", "sized_type_specifier":
		return e.u.convert(v, e.resolver().specifier(fn)), true
	case "template_function":
		name := e.f.text(fn.ChildByFieldName("name"))
		if name != "static_cast" {
			return value{}, false
		}
		list := fn.ChildByFieldName("arguments")
		if list == nil || list.NamedChildCount() != 1 {
			return value{}, false
		}
		return e.u.convert(v, e.resolver().descriptor(list.NamedChild(0))), true
	}
	return value{}, false
}

// convert applies the conversion to t that initializing a declaration of
// that type performs.
func (u *Unit) convert(v value, t *ctype) value {
	if t == nil || v.kind == frontend.EvalString {
		return v
	}
	c := t.canonical().base()
	switch c.kind {
	case frontend.TypeFloat, frontend.TypeDouble, frontend.TypeLongDouble:
		return value{kind: frontend.EvalFloat, f: v.float()}
	case frontend.TypeBool:
		return intValue(boolInt(v.truthy()), false)
	}
	if !c.kind.IsBuiltin() && c.kind != frontend.TypeEnum {
		return v
	}
	if c.kind == frontend.TypeVoid || c.kind == frontend.TypeAuto || c.kind == frontend.TypeNullPtr {
		return v
	}
	size, _ := u.sizeAndAlign(c)
	unsigned := isUnsignedKind(c.kind)
	if c.kind == frontend.TypeEnum {
		if under := u.underlyingOf(c.decl); under != nil {
			unsigned = isUnsignedKind(under.canonical().base().kind)
		}
	}
	i := v.int()
	if size > 0 && size < 8 {
		bits := uint(size * 8)
		mask := int64(1)<<bits - 1
		i &= mask
		if !unsigned && i&(int64(1)<<(bits-1)) != 0 {
			i -= int64(1) << bits
		}
	}
	return intValue(i, unsigned)
}

func isUnsignedKind(k frontend.TypeKind) bool {
	switch k {
	case frontend.TypeUChar, frontend.TypeUShort, frontend.TypeUInt, frontend.TypeULong,
		frontend.TypeULongLong, frontend.TypeUInt128, frontend.TypeChar16, frontend.TypeChar32:
		return true
	}
	return false
}

func parseNumber(text string) (value, bool) {
	t := strings.ReplaceAll(text, "'", "")
	lower := strings.ToLower(t)
	hex := strings.HasPrefix(lower, "0x")
	if strings.Contains(lower, ".") || (!hex && strings.Contains(lower, "e")) || (hex && strings.Contains(lower, "p")) {
		f, ok := parseFloatLiteral(t)
		return value{kind: frontend.EvalFloat, f: f}, ok
	}
	i, unsigned, ok := parseIntLiteral(t)
	return intValue(i, unsigned), ok
}

func parseFloatLiteral(text string) (float64, bool) {
	t := strings.TrimRight(text, "fFlL")
	f, err := strconv.ParseFloat(t, 64)
	return f, err == nil
}

// parseIntLiteral parses a C integer literal with optional base prefix,
// digit separators and u/l/z suffixes.
func parseIntLiteral(text string) (int64, bool, bool) {
	t := strings.ReplaceAll(text, "'", "")
	end := len(t)
	for end > 0 && strings.IndexByte("uUlLzZ", t[end-1]) >= 0 {
		end--
	}
	unsigned := strings.ContainsAny(t[end:], "uU")
	digits := t[:end]
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base, digits = 16, digits[2:]
	case strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0B"):
		base, digits = 2, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base, digits = 8, digits[1:]
	}
	if digits == "" {
		return 0, false, false
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, false, false
	}
	if v > math.MaxInt64 {
		unsigned = true
	}
	return int64(v), unsigned, true
}

// parseCharLiteral returns the value of a character literal. Plain
// single-byte literals are signed char values; multi-character literals
// pack their bytes.
func parseCharLiteral(text string) (int64, bool) {
	open := strings.IndexByte(text, '\'')
	if open < 0 || len(text) < open+3 || text[len(text)-1] != '\'' {
		return 0, false
	}
	prefix := text[:open]
	body := text[open+1 : len(text)-1]
	var v int64
	count := 0
	for i := 0; i < len(body); {
		var c int64
		var n int
		if prefix != "" && prefix != "u8" && body[i] >= 0x80 {
			r, size := utf8.DecodeRuneInString(body[i:])
			c, n = int64(r), size
		} else {
			c, n = decodeEscape(body[i:])
		}
		v = v<<8 | c
		if count == 0 {
			v = c
		}
		i += n
		count++
	}
	if count == 0 {
		return 0, false
	}
	if count == 1 && prefix == "" && v > 127 && v < 256 {
		v = int64(int8(v))
	}
	return v, true
}

// decodeEscape decodes one possibly escaped character at the start of s.
func decodeEscape(s string) (int64, int) {
	if s[0] != '\\' || len(s) < 2 {
		return int64(s[0]), 1
	}
	switch s[1] {
	case 'n':
		return '\n', 2
	case 't':
		return '\t', 2
	case 'r':
		return '\r', 2
	case 'a':
		return 7, 2
	case 'b':
		return 8, 2
	case 'f':
		return 12, 2
	case 'v':
		return 11, 2
	case 'e':
		return 27, 2
	case 'x':
		j := 2
		for j < len(s) && isHexDigit(s[j]) {
			j++
		}
		v, _ := strconv.ParseUint(s[2:j], 16, 64)
		return int64(v), j
	case 'u', 'U':
		width := 4
		if s[1] == 'U' {
			width = 8
		}
		if len(s) < 2+width {
			return int64(s[1]), 2
		}
		v, _ := strconv.ParseUint(s[2:2+width], 16, 32)
		return int64(v), 2 + width
	}
	if s[1] >= '0' && s[1] <= '7' {
		j := 1
		for j < len(s) && j < 4 && s[j] >= '0' && s[j] <= '7' {
			j++
		}
		v, _ := strconv.ParseUint(s[1:j], 8, 64)
		return int64(v), j
	}
	return int64(s[1]), 2
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// stringValue decodes a string literal, raw or not.
func stringValue(text string) (string, bool) {
	quote := strings.IndexByte(text, '"')
	if quote < 0 || len(text) < quote+2 {
		return "", false
	}
	prefix := text[:quote]
	body := text[quote+1 : len(text)-1]
	if strings.HasSuffix(prefix, "R") {
		open := strings.IndexByte(body, '(')
		shut := strings.LastIndexByte(body, ')')
		if open < 0 || shut < open {
			return "", false
		}
		return body[open+1 : shut], true
	}
	var b strings.Builder
	for i := 0; i < len(body); {
		if body[i] != '\\' {
			b.WriteByte(body[i])
			i++
			continue
		}
		c, n := decodeEscape(body[i:])
		if c < 0x80 || (body[i+1] != 'u' && body[i+1] != 'U') {
			b.WriteByte(byte(c))
		} else {
			b.WriteRune(rune(c))
		}
		i += n
	}
	return b.String(), true
}
