package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/cppast/internal/frontend"
)

// resolver turns type syntax into types. Names resolve in sc, and template
// parameters bound in subst are replaced by their arguments.
type resolver struct {
	u     *Unit
	f     *sourceFile
	sc    *scope
	subst substitution
}

func (u *Unit) resolverFor(f *sourceFile, sc *scope, subst substitution) *resolver {
	if sc == nil {
		sc = u.global
	}
	return &resolver{u: u, f: f, sc: sc, subst: subst}
}

// cursorType returns the declared type of a cursor, computed once.
func (u *Unit) cursorType(c *cursor) *ctype {
	if c == nil {
		return nil
	}
	if !c.tyDone {
		c.tyDone = true
		c.ty = u.computeType(c, nil)
	}
	return c.ty
}

// typeIn returns the type of c with template parameters replaced.
func (u *Unit) typeIn(c *cursor, subst substitution) *ctype {
	if len(subst) == 0 {
		return u.cursorType(c)
	}
	return u.computeType(c, subst)
}

func (u *Unit) computeType(c *cursor, subst substitution) *ctype {
	r := u.resolverFor(c.file, c.scope, subst)
	switch c.kind {
	case frontend.CursorStructDecl, frontend.CursorClassDecl, frontend.CursorUnionDecl,
		frontend.CursorClassTemplate, frontend.CursorClassTemplatePartialSpecialization,
		frontend.CursorEnumDecl, frontend.CursorTypedefDecl, frontend.CursorTypeAliasDecl:
		return u.declType(c)
	case frontend.CursorTemplateTypeParameter:
		return r.typeForDecl(c)
	case frontend.CursorEnumConstantDecl:
		if u.opts.Language == C || c.semantic == nil {
			return u.builtin(frontend.TypeInt)
		}
		return u.declType(c.semantic)
	case frontend.CursorCXXBaseSpecifier:
		return r.specifier(c.typeNode)
	case frontend.CursorFieldDecl, frontend.CursorVarDecl, frontend.CursorNonTypeTemplateParameter:
		return r.declared(c)
	case frontend.CursorParmDecl:
		return decay(u, r.declared(c))
	case frontend.CursorFunctionDecl, frontend.CursorCXXMethod, frontend.CursorConstructor,
		frontend.CursorDestructor, frontend.CursorConversionFunction, frontend.CursorFunctionTemplate:
		return r.declared(c)
	}
	if c.kind.IsExpression() {
		return u.expressionType(c)
	}
	return nil
}

// decay applies the array-to-pointer and function-to-pointer conversions
// of parameter types.
func decay(u *Unit, t *ctype) *ctype {
	if t == nil {
		return nil
	}
	switch t.base().kind {
	case frontend.TypeConstantArray, frontend.TypeIncompleteArray:
		return u.pointerTo(t.base().elem)
	case frontend.TypeFunctionProto:
		return u.pointerTo(t)
	}
	return t
}

// declared applies the cursor's declarator to its specifier type.
func (r *resolver) declared(c *cursor) *ctype {
	var t *ctype
	if c.typeNode == nil {
		t = r.u.builtin(frontend.TypeVoid)
	} else {
		t = r.specifier(c.typeNode)
	}
	t = r.u.qualified(t, c.specConst, c.specVolat)
	_, t = r.declarator(c.declarator, t, c)
	return t
}

func isFunctionKind(k frontend.CursorKind) bool {
	switch k {
	case frontend.CursorFunctionDecl, frontend.CursorCXXMethod, frontend.CursorConstructor,
		frontend.CursorDestructor, frontend.CursorConversionFunction, frontend.CursorFunctionTemplate:
		return true
	}
	return false
}

// declarator wraps t in the derived types of declarator d, outermost
// first, and returns the name node it reaches. When owner is a function,
// its result type is recorded on the way.
func (r *resolver) declarator(d *sitter.Node, t *ctype, owner *cursor) (*sitter.Node, *ctype) {
	for d != nil {
		switch d.Type() {
		case "pointer_declarator", "abstract_pointer_declarator":
			isConst, isVolatile := qualifiersOf(r.f, d)
			t = r.u.qualified(r.u.pointerTo(t), isConst, isVolatile)
			d = d.ChildByFieldName("declarator")
		case "reference_declarator", "abstract_reference_declarator":
			rvalue := d.ChildCount() > 0 && r.f.text(d.Child(0)) == "&&"
			t = r.u.referenceTo(t, rvalue)
			d = innerDeclarator(d)
		case "array_declarator", "abstract_array_declarator":
			size := d.ChildByFieldName("size")
			switch {
			case size == nil:
				t = r.u.arrayOf(t, -1)
			default:
				if n := r.u.evalInt(size, r.f, r.sc, r.subst, -1); n >= 0 {
					t = r.u.arrayOf(t, n)
				} else {
					t = r.u.unexposed(t.spelling+"["+normalize(r.f.text(size))+"]", nil, -1)
				}
			}
			d = d.ChildByFieldName("declarator")
		case "function_declarator", "abstract_function_declarator":
			if trailing := childOfType(d, "trailing_return_type"); trailing != nil && t.base().kind == frontend.TypeAuto {
				if desc := childOfType(trailing, "type_descriptor"); desc != nil {
					t = r.descriptor(desc)
				}
			}
			params, variadic := r.paramTypes(d.ChildByFieldName("parameters"))
			inner := d.ChildByFieldName("declarator")
			if owner != nil && isFunctionKind(owner.kind) && r.subst == nil && isNamePosition(unparen(inner)) {
				owner.result = t
			}
			t = r.u.functionType(t, params, variadic)
			d = inner
		case "operator_cast":
			t = r.specifier(d.ChildByFieldName("type"))
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator", "abstract_parenthesized_declarator",
			"init_declarator", "attributed_declarator", "variadic_declarator":
			d = innerDeclarator(d)
		default:
			if isNamePosition(d) {
				return d, t
			}
			return nil, t
		}
	}
	return nil, t
}

// isNamePosition reports whether d is where a declarator names its
// entity. An absent declarator is the name position of an abstract one.
func isNamePosition(d *sitter.Node) bool {
	if d == nil {
		return true
	}
	switch d.Type() {
	case "identifier", "field_identifier", "type_identifier", "qualified_identifier",
		"destructor_name", "operator_name", "template_function":
		return true
	}
	return false
}

func qualifiersOf(f *sourceFile, n *sitter.Node) (isConst, isVolatile bool) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "type_qualifier" {
			continue
		}
		switch f.text(child) {
		case "const", "constexpr":
			isConst = true
		case "volatile":
			isVolatile = true
		}
	}
	return isConst, isVolatile
}

// paramTypes returns the decayed parameter types of a parameter list.
func (r *resolver) paramTypes(list *sitter.Node) ([]*ctype, bool) {
	if list == nil {
		return nil, false
	}
	var out []*ctype
	variadic := false
	count := int(list.NamedChildCount())
	for i := 0; i < int(list.ChildCount()); i++ {
		p := list.Child(i)
		switch p.Type() {
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
		default:
			if p.Type() == "variadic_parameter" || r.f.text(p) == "..." {
				variadic = true
			}
			continue
		}
		typeNode := p.ChildByFieldName("type")
		decl := p.ChildByFieldName("declarator")
		if count == 1 && decl == nil && typeNode != nil && r.f.text(typeNode) == "void" {
			return nil, false
		}
		isConst, isVolatile := qualifiersOf(r.f, p)
		t := r.u.qualified(r.specifier(typeNode), isConst, isVolatile)
		_, t = r.declarator(decl, t, nil)
		out = append(out, decay(r.u, t))
	}
	return out, variadic
}

// descriptor resolves a type_descriptor: specifiers plus an abstract
// declarator.
func (r *resolver) descriptor(n *sitter.Node) *ctype {
	if n == nil {
		return r.u.builtin(frontend.TypeInt)
	}
	if n.Type() != "type_descriptor" {
		return r.specifier(n)
	}
	isConst, isVolatile := qualifiersOf(r.f, n)
	t := r.u.qualified(r.specifier(n.ChildByFieldName("type")), isConst, isVolatile)
	_, t = r.declarator(n.ChildByFieldName("declarator"), t, nil)
	return t
}

// specifier resolves a type specifier node.
func (r *resolver) specifier(n *sitter.Node) *ctype {
	if n == nil {
		return r.u.builtin(frontend.TypeInt)
	}
	text := normalize(r.f.text(n))
	switch n.Type() {
	case "primitive_type":
		return r.u.primitive(text)
	case "sized_type_specifier":
		return r.sized(n)
	case "type_identifier":
		return r.named(text)
	case "qualified_identifier":
		return r.qualifiedType(n)
	case "template_type":
		return r.templateType(n, r.sc, false)
	case "struct_specifier", "class_specifier", "union_specifier", "enum_specifier":
		return r.tagType(n)
	case "placeholder_type_specifier", "auto":
		if strings.Contains(text, "decltype") {
			return r.u.unexposed(text, nil, -1)
		}
		return r.u.builtin(frontend.TypeAuto)
	case "dependent_type":
		if inner := n.NamedChild(0); inner != nil {
			if t := r.specifier(inner); t.kind != frontend.TypeUnexposed {
				return t
			}
		}
		return r.u.unexposed(strings.TrimPrefix(text, "typename "), nil, -1)
	case "type_descriptor":
		return r.descriptor(n)
	}
	return r.u.unexposed(text, nil, -1)
}

var primitiveKinds = map[string]frontend.TypeKind{
	"void": frontend.TypeVoid, "bool": frontend.TypeBool, "_Bool": frontend.TypeBool,
	"char": frontend.TypeCharS, "int": frontend.TypeInt, "float": frontend.TypeFloat,
	"double": frontend.TypeDouble, "wchar_t": frontend.TypeWChar, "char8_t": frontend.TypeUChar,
	"char16_t": frontend.TypeChar16, "char32_t": frontend.TypeChar32,
	"short": frontend.TypeShort, "long": frontend.TypeLong, "signed": frontend.TypeInt,
	"unsigned": frontend.TypeUInt, "__int128": frontend.TypeInt128,
}

// primitive resolves a builtin type keyword or a well-known library
// typedef spelled as a primitive.
func (u *Unit) primitive(name string) *ctype {
	if kind, ok := primitiveKinds[name]; ok {
		return u.builtin(kind)
	}
	if name == "nullptr_t" {
		return u.builtin(frontend.TypeNullPtr)
	}
	if decl := u.libraryTypedef(name); decl != nil {
		return u.declType(decl)
	}
	return u.unexposed(name, nil, -1)
}

// sized resolves signed/unsigned/short/long combinations.
func (r *resolver) sized(n *sitter.Node) *ctype {
	words := strings.Fields(r.f.text(n))
	var unsigned, signed, short, char, double, int128 bool
	longs := 0
	for _, w := range words {
		switch w {
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "short":
			short = true
		case "long":
			longs++
		case "char":
			char = true
		case "double":
			double = true
		case "__int128":
			int128 = true
		}
	}
	pick := func(s, u frontend.TypeKind) *ctype {
		if unsigned {
			return r.u.builtin(u)
		}
		return r.u.builtin(s)
	}
	switch {
	case char && unsigned:
		return r.u.builtin(frontend.TypeUChar)
	case char && signed:
		return r.u.builtin(frontend.TypeSChar)
	case char:
		return r.u.builtin(frontend.TypeCharS)
	case double:
		return r.u.builtin(frontend.TypeLongDouble)
	case int128:
		return pick(frontend.TypeInt128, frontend.TypeUInt128)
	case short:
		return pick(frontend.TypeShort, frontend.TypeUShort)
	case longs >= 2:
		return pick(frontend.TypeLongLong, frontend.TypeULongLong)
	case longs == 1:
		return pick(frontend.TypeLong, frontend.TypeULong)
	}
	return pick(frontend.TypeInt, frontend.TypeUInt)
}

// named resolves an unqualified type name. C keeps struct tags apart from
// ordinary names, so only typedefs are found there.
func (r *resolver) named(name string) *ctype {
	pred := isTypeDecl
	if r.u.opts.Language == C {
		pred = func(c *cursor) bool { return c.kind == frontend.CursorTypedefDecl }
	}
	if decl := r.sc.lookup(name, pred); decl != nil {
		return r.typeForDecl(decl)
	}
	if decl := r.u.libraryTypedef(name); decl != nil {
		return r.u.declType(decl)
	}
	return r.u.unexposed(name, nil, -1)
}

func (r *resolver) typeForDecl(decl *cursor) *ctype {
	switch decl.kind {
	case frontend.CursorTemplateTypeParameter:
		if a, ok := r.subst[decl]; ok && a.ty != nil {
			return a.ty
		}
		return r.u.declType(decl)
	case frontend.CursorTemplateTemplateParameter:
		return r.u.unexposed(decl.name, nil, -1)
	}
	return r.u.declType(decl)
}

// qualifiedType resolves a::b::T.
func (r *resolver) qualifiedType(n *sitter.Node) *ctype {
	text := normalize(r.f.text(n))
	parts, global := flattenQualified(n)
	last := parts[len(parts)-1]
	var s *scope
	switch {
	case len(parts) == 1:
		s = r.u.global
	default:
		if owner := r.scopeCursor(parts[:len(parts)-1], global); owner != nil {
			s = r.u.scopeOf(owner)
		}
	}
	if s == nil {
		return r.u.unexposed(text, nil, -1)
	}
	var t *ctype
	if last.Type() == "template_type" {
		t = r.templateType(last, s, true)
	} else if decl := s.local(r.f.text(last), isTypeDecl, map[*scope]bool{}); decl != nil {
		t = r.typeForDecl(decl)
	} else {
		return r.u.unexposed(text, nil, -1)
	}
	return r.u.elaborated(t, text)
}

// scopeCursor resolves a chain of scope names to the namespace or type
// they denote.
func (r *resolver) scopeCursor(parts []*sitter.Node, global bool) *cursor {
	if len(parts) == 0 {
		return nil
	}
	var cur *cursor
	for i, p := range parts {
		nameNode := p
		if p.Type() == "template_type" || p.Type() == "template_function" {
			nameNode = p.ChildByFieldName("name")
		}
		name := r.f.text(nameNode)
		var found *cursor
		switch {
		case i == 0 && global:
			found = r.u.global.local(name, isScopeDecl, map[*scope]bool{})
		case i == 0:
			found = r.sc.lookup(name, isScopeDecl)
		default:
			s := r.u.scopeOf(cur)
			if s == nil {
				return nil
			}
			found = s.local(name, isScopeDecl, map[*scope]bool{})
		}
		if found == nil {
			return nil
		}
		switch found.kind {
		case frontend.CursorTemplateTypeParameter:
			a, ok := r.subst[found]
			if !ok || a.ty == nil {
				return nil
			}
			found = a.ty.recordDecl()
			if found == nil {
				return nil
			}
		case frontend.CursorClassTemplate:
			if p.Type() == "template_type" {
				found = r.u.specialize(found, r.u.templateArgs(p.ChildByFieldName("arguments"), r.f, r.sc, r.subst))
			}
		}
		cur = found
	}
	return cur
}

// templateType resolves Name<args>. Qualified lookups stay within s.
func (r *resolver) templateType(n *sitter.Node, s *scope, qualified bool) *ctype {
	name := r.f.text(n.ChildByFieldName("name"))
	args := r.u.templateArgs(n.ChildByFieldName("arguments"), r.f, r.sc, r.subst)
	pred := func(c *cursor) bool {
		return c.kind == frontend.CursorClassTemplate || c.kind == frontend.CursorTemplateTemplateParameter ||
			(c.kind == frontend.CursorTypeAliasDecl && len(c.tparams) > 0)
	}
	var generic *cursor
	if qualified {
		generic = s.local(name, pred, map[*scope]bool{})
	} else {
		generic = s.lookup(name, pred)
	}
	if generic == nil || generic.kind == frontend.CursorTemplateTemplateParameter {
		return r.u.unexposed(normalize(r.f.text(n)), argTypes(args), -1)
	}
	if generic.kind == frontend.CursorTypeAliasDecl {
		return r.u.aliasInstance(generic, args)
	}
	return r.u.declType(r.u.specialize(generic, args))
}

func argTypes(args []templateArg) []*ctype {
	out := make([]*ctype, len(args))
	for i, a := range args {
		out[i] = a.ty
	}
	return out
}

var tagKeywords = map[string]string{
	"struct_specifier": "struct", "class_specifier": "class",
	"union_specifier": "union", "enum_specifier": "enum",
}

// tagType resolves struct/class/union/enum specifiers used as types.
func (r *resolver) tagType(n *sitter.Node) *ctype {
	keyword := tagKeywords[n.Type()]
	if c := r.u.cursorFor(r.f, n); c != nil {
		t := r.u.declType(c)
		if c.name == "" {
			return t
		}
		return r.u.elaborated(t, keyword+" "+c.name)
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return r.u.unexposed(normalize(r.f.text(n)), nil, -1)
	}
	text := normalize(r.f.text(nameNode))
	pred := func(c *cursor) bool {
		if keyword == "enum" {
			return c.kind == frontend.CursorEnumDecl
		}
		return c.kind.IsRecord() && c.kind != frontend.CursorClassTemplatePartialSpecialization
	}
	parts, global := flattenQualified(nameNode)
	last := parts[len(parts)-1]
	s := r.sc
	qualified := len(parts) > 1 || global
	if len(parts) > 1 {
		owner := r.scopeCursor(parts[:len(parts)-1], global)
		if owner == nil {
			return r.u.unexposed(keyword+" "+text, nil, -1)
		}
		s = r.u.scopeOf(owner)
	} else if global {
		s = r.u.global
	}
	if s == nil {
		return r.u.unexposed(keyword+" "+text, nil, -1)
	}
	if last.Type() == "template_type" {
		return r.u.elaborated(r.templateType(last, s, qualified), keyword+" "+text)
	}
	name := r.f.text(last)
	var decl *cursor
	if qualified {
		decl = s.local(name, pred, map[*scope]bool{})
	} else {
		decl = s.lookup(name, pred)
	}
	if decl == nil {
		decl = r.u.forwardDeclare(keyword, name, r.f, n, r.sc)
	}
	return r.u.elaborated(r.u.declType(decl), keyword+" "+text)
}

// forwardDeclare creates the implicit declaration introduced by the first
// use of an unknown tag name, in the nearest enclosing namespace.
func (u *Unit) forwardDeclare(keyword, name string, f *sourceFile, n *sitter.Node, from *scope) *cursor {
	target := u.global
	for s := from; s != nil; s = s.parent {
		if s.owner != nil && (s.owner.kind == frontend.CursorNamespace || s.owner.kind == frontend.CursorTranslationUnit) {
			target = s
			break
		}
	}
	kind := frontend.CursorEnumDecl
	if keyword != "enum" {
		kind = recordKindOf(keyword + "_specifier")
	}
	c := &cursor{
		unit:       u,
		kind:       kind,
		recordKind: kind,
		name:       name,
		file:       f,
		node:       n,
		start:      int(n.StartByte()),
		end:        int(n.EndByte()),
		loc:        int(n.StartByte()),
		system:     f.System,
		implicit:   true,
		semantic:   target.owner,
		lexical:    target.owner,
		scope:      target,
		bitWidth:   -1,
	}
	c.inner = newScope(c, target)
	target.declare(name, c)
	u.register(c)
	return c
}

// underlyingOf returns the aliased type of a typedef or the integer type
// of an enum.
func (u *Unit) underlyingOf(c *cursor) *ctype {
	if c == nil {
		return nil
	}
	if c.underOK {
		return c.under
	}
	c.underOK = true
	r := u.resolverFor(c.file, c.scope, nil)
	switch c.kind {
	case frontend.CursorTypedefDecl:
		c.under = r.declared(c)
	case frontend.CursorTypeAliasDecl:
		c.under = r.descriptor(c.typeNode)
	case frontend.CursorEnumDecl:
		if c.typeNode != nil {
			c.under = r.specifier(c.typeNode)
		} else {
			c.under = u.defaultEnumType(c)
		}
	}
	return c.under
}

// defaultEnumType picks unsigned int for enums without negative values,
// int otherwise, the way C compilers do for unfixed enums.
func (u *Unit) defaultEnumType(c *cursor) *ctype {
	if c.flags.Has(frontend.FlagScopedEnum) {
		return u.builtin(frontend.TypeInt)
	}
	for _, child := range c.children {
		if child.kind == frontend.CursorEnumConstantDecl && u.enumConstant(child) < 0 {
			return u.builtin(frontend.TypeInt)
		}
	}
	return u.builtin(frontend.TypeUInt)
}

// aliasInstance substitutes arguments into an alias template.
func (u *Unit) aliasInstance(alias *cursor, args []templateArg) *ctype {
	_, subst := u.completeArgs(alias, args)
	r := u.resolverFor(alias.file, alias.scope, subst)
	return r.descriptor(alias.typeNode)
}

// libraryTypedef returns the implicit typedef for a well-known C library
// type name such as size_t or uint32_t.
func (u *Unit) libraryTypedef(name string) *cursor {
	if c, ok := u.builtins[name]; ok {
		return c
	}
	kind, ok := u.libraryKind(name)
	if !ok {
		return nil
	}
	c := &cursor{
		unit:     u,
		kind:     frontend.CursorTypedefDecl,
		name:     name,
		file:     u.builtinTU,
		system:   true,
		implicit: true,
		isDef:    true,
		semantic: u.root,
		lexical:  u.root,
		scope:    u.global,
		under:    u.builtin(kind),
		underOK:  true,
		bitWidth: -1,
	}
	u.builtins[name] = c
	u.register(c)
	return c
}

func (u *Unit) libraryKind(name string) (frontend.TypeKind, bool) {
	lp64 := u.layout.long == 8
	long64 := frontend.TypeLongLong
	ulong64 := frontend.TypeULongLong
	if lp64 {
		long64, ulong64 = frontend.TypeLong, frontend.TypeULong
	}
	word, uword := frontend.TypeInt, frontend.TypeUInt
	if u.layout.pointer == 8 {
		word, uword = long64, ulong64
	}
	switch name {
	case "size_t", "uintptr_t":
		return uword, true
	case "ssize_t", "ptrdiff_t", "intptr_t":
		return word, true
	case "int8_t", "int_least8_t", "int_fast8_t":
		return frontend.TypeSChar, true
	case "uint8_t", "uint_least8_t", "uint_fast8_t":
		return frontend.TypeUChar, true
	case "int16_t", "int_least16_t":
		return frontend.TypeShort, true
	case "uint16_t", "uint_least16_t":
		return frontend.TypeUShort, true
	case "int32_t", "int_least32_t":
		return frontend.TypeInt, true
	case "uint32_t", "uint_least32_t":
		return frontend.TypeUInt, true
	case "int64_t", "int_least64_t", "intmax_t", "int_fast16_t", "int_fast32_t", "int_fast64_t":
		return long64, true
	case "uint64_t", "uint_least64_t", "uintmax_t", "uint_fast16_t", "uint_fast32_t", "uint_fast64_t":
		return ulong64, true
	case "max_align_t":
		return frontend.TypeLongDouble, true
	}
	return 0, false
}

// expressionType is the type of a literal expression, or nil.
func (u *Unit) expressionType(c *cursor) *ctype {
	switch c.kind {
	case frontend.CursorIntegerLiteral, frontend.CursorCharacterLiteral:
		return u.builtin(frontend.TypeInt)
	case frontend.CursorFloatingLiteral:
		return u.builtin(frontend.TypeDouble)
	case frontend.CursorBoolLiteralExpr:
		return u.builtin(frontend.TypeBool)
	case frontend.CursorNullPtrLiteralExpr:
		return u.builtin(frontend.TypeNullPtr)
	}
	return nil
}

// normalize collapses runs of whitespace to single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// functionDisplayName spells a function with its parameter types.
func (u *Unit) functionDisplayName(c *cursor) string {
	parts := make([]string, 0, len(c.params)+1)
	for _, p := range c.params {
		if t := u.cursorType(p); t != nil {
			parts = append(parts, t.spelling)
		}
	}
	if c.variadic {
		parts = append(parts, "...")
	}
	return c.name + "(" + strings.Join(parts, ", ") + ")"
}
