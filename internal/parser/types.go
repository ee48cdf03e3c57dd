package parser

import (
	"fmt"
	"strings"

	"github.com/hargabyte/cppast/internal/frontend"
)

// ctype is the parser's implementation of frontend.Type. Instances are
// interned per unit by id, so equal types share one pointer.
type ctype struct {
	unit       *Unit
	kind       frontend.TypeKind
	spelling   string
	decl       *cursor
	elem       *ctype
	params     []*ctype
	variadic   bool
	count      int64
	isConst    bool
	isVolatile bool
	unqual     *ctype
	targs      []*ctype
	size       int64
	align      int64
	id         string
}

var _ frontend.Type = (*ctype)(nil)

func (t *ctype) Kind() frontend.TypeKind { return t.kind }

func (t *ctype) Spelling() string { return t.spelling }

func (t *ctype) Declaration() frontend.Cursor { return asCursor(t.decl) }

func (t *ctype) Pointee() frontend.Type {
	switch t.kind {
	case frontend.TypePointer, frontend.TypeLValueReference, frontend.TypeRValueReference, frontend.TypeMemberPointer:
		return asType(t.elem)
	}
	return nil
}

func (t *ctype) Result() frontend.Type {
	if t.kind == frontend.TypeFunctionProto || t.kind == frontend.TypeFunctionNoProto {
		return asType(t.elem)
	}
	return nil
}

func (t *ctype) ArgTypes() []frontend.Type {
	out := make([]frontend.Type, len(t.params))
	for i, p := range t.params {
		out[i] = p
	}
	return out
}

func (t *ctype) IsFunctionVariadic() bool { return t.variadic }

func (t *ctype) ArrayElement() frontend.Type {
	if t.kind == frontend.TypeConstantArray || t.kind == frontend.TypeIncompleteArray {
		return asType(t.elem)
	}
	return nil
}

func (t *ctype) ArraySize() int64 {
	if t.kind == frontend.TypeConstantArray {
		return t.count
	}
	return -1
}

func (t *ctype) SizeOf() int64 {
	size, _ := t.unit.sizeAndAlign(t)
	return size
}

func (t *ctype) AlignOf() int64 {
	_, align := t.unit.sizeAndAlign(t)
	return align
}

func (t *ctype) NumTemplateArguments() int {
	if decl := t.recordDecl(); decl != nil && decl.specialized != nil {
		return len(decl.templateArgs())
	}
	if t.kind == frontend.TypeUnexposed && t.targs != nil {
		return len(t.targs)
	}
	return -1
}

func (t *ctype) TemplateArgument(i int) frontend.Type {
	if decl := t.recordDecl(); decl != nil && decl.specialized != nil {
		return decl.TemplateArgumentType(i)
	}
	if i >= 0 && i < len(t.targs) {
		return asType(t.targs[i])
	}
	return nil
}

func (t *ctype) IsConst() bool { return t.isConst }

func (t *ctype) IsVolatile() bool { return t.isVolatile }

func (t *ctype) Unqualified() frontend.Type {
	if t.unqual != nil {
		return t.unqual
	}
	return t
}

func (t *ctype) NamedType() frontend.Type {
	if t.kind == frontend.TypeElaborated {
		return asType(t.elem)
	}
	return nil
}

func (t *ctype) Canonical() frontend.Type {
	return t.canonical()
}

func (t *ctype) Identity() string { return t.id }

func (t *ctype) base() *ctype {
	if t.unqual != nil {
		return t.unqual
	}
	return t
}

// canonical strips typedefs and elaboration.
func (t *ctype) canonical() *ctype {
	u := t.unit
	b := t.base()
	var out *ctype
	switch b.kind {
	case frontend.TypeTypedef:
		out = u.underlyingOf(b.decl).canonical()
	case frontend.TypeElaborated:
		out = b.elem.canonical()
	case frontend.TypePointer:
		out = u.pointerTo(b.elem.canonical())
	case frontend.TypeLValueReference, frontend.TypeRValueReference:
		out = u.referenceTo(b.elem.canonical(), b.kind == frontend.TypeRValueReference)
	case frontend.TypeConstantArray, frontend.TypeIncompleteArray:
		out = u.arrayOf(b.elem.canonical(), b.count)
	default:
		out = b
	}
	if t.isConst || t.isVolatile {
		out = u.qualified(out, t.isConst, t.isVolatile)
	}
	return out
}

// recordDecl returns the record cursor behind a record type, looking
// through qualifiers, elaboration and typedefs. It is nil-safe.
func (t *ctype) recordDecl() *cursor {
	if t == nil {
		return nil
	}
	c := t.canonical()
	if c.kind == frontend.TypeRecord {
		return c.decl
	}
	return nil
}

func (u *Unit) intern(t *ctype) *ctype {
	if existing, ok := u.types[t.id]; ok {
		return existing
	}
	t.unit = u
	if t.size == 0 {
		t.size, t.align = -2, -2
	}
	u.types[t.id] = t
	return t
}

var builtinSpellings = map[frontend.TypeKind]string{
	frontend.TypeVoid: "void", frontend.TypeBool: "bool", frontend.TypeCharS: "char",
	frontend.TypeSChar: "signed char", frontend.TypeUChar: "unsigned char",
	frontend.TypeWChar: "wchar_t", frontend.TypeChar16: "char16_t", frontend.TypeChar32: "char32_t",
	frontend.TypeShort: "short", frontend.TypeUShort: "unsigned short", frontend.TypeInt: "int",
	frontend.TypeUInt: "unsigned int", frontend.TypeLong: "long", frontend.TypeULong: "unsigned long",
	frontend.TypeLongLong: "long long", frontend.TypeULongLong: "unsigned long long",
	frontend.TypeInt128: "__int128", frontend.TypeUInt128: "unsigned __int128",
	frontend.TypeFloat: "float", frontend.TypeDouble: "double", frontend.TypeLongDouble: "long double",
	frontend.TypeNullPtr: "std::nullptr_t", frontend.TypeAuto: "auto",
}

func (u *Unit) builtin(kind frontend.TypeKind) *ctype {
	spelling := builtinSpellings[kind]
	if kind == frontend.TypeBool && u.opts.Language == C {
		spelling = "_Bool"
	}
	return u.intern(&ctype{kind: kind, spelling: spelling, id: "B" + kind.String()})
}

func (u *Unit) pointerTo(elem *ctype) *ctype {
	spelling := elem.spelling + " *"
	if elem.base().kind == frontend.TypeFunctionProto {
		f := elem.base()
		spelling = f.elem.spelling + " (*)" + f.paramSpelling()
	}
	return u.intern(&ctype{kind: frontend.TypePointer, spelling: spelling, elem: elem, id: "P" + elem.id})
}

func (u *Unit) referenceTo(elem *ctype, rvalue bool) *ctype {
	kind, mark := frontend.TypeLValueReference, "&"
	if rvalue {
		kind, mark = frontend.TypeRValueReference, "&&"
	}
	return u.intern(&ctype{kind: kind, spelling: elem.spelling + " " + mark, elem: elem, id: "R" + mark + elem.id})
}

// arrayOf builds T[n]; n < 0 makes an incomplete array.
func (u *Unit) arrayOf(elem *ctype, n int64) *ctype {
	dims := "[]"
	kind := frontend.TypeIncompleteArray
	if n >= 0 {
		dims = fmt.Sprintf("[%d]", n)
		kind = frontend.TypeConstantArray
	}
	spelling := elem.spelling + dims
	if b := elem.base(); b.kind == frontend.TypeConstantArray || b.kind == frontend.TypeIncompleteArray {
		if i := strings.IndexByte(elem.spelling, '['); i >= 0 {
			spelling = elem.spelling[:i] + dims + elem.spelling[i:]
		}
	}
	return u.intern(&ctype{kind: kind, spelling: spelling, elem: elem, count: n, id: fmt.Sprintf("A%d%s", n, elem.id)})
}

// qualified adds const/volatile to t.
func (u *Unit) qualified(t *ctype, isConst, isVolatile bool) *ctype {
	isConst = isConst || t.isConst
	isVolatile = isVolatile || t.isVolatile
	b := t.base()
	if !isConst && !isVolatile {
		return b
	}
	var quals []string
	if isConst {
		quals = append(quals, "const")
	}
	if isVolatile {
		quals = append(quals, "volatile")
	}
	q := strings.Join(quals, " ")
	spelling := q + " " + b.spelling
	if b.kind == frontend.TypePointer {
		spelling = b.spelling + q
	}
	return u.intern(&ctype{
		kind: b.kind, spelling: spelling, decl: b.decl, elem: b.elem, params: b.params,
		variadic: b.variadic, count: b.count, targs: b.targs,
		isConst: isConst, isVolatile: isVolatile, unqual: b,
		id: fmt.Sprintf("Q%t%t%s", isConst, isVolatile, b.id),
	})
}

func (u *Unit) functionType(result *ctype, params []*ctype, variadic bool) *ctype {
	ids := make([]string, len(params))
	for i, p := range params {
		ids[i] = p.id
	}
	t := &ctype{kind: frontend.TypeFunctionProto, elem: result, params: params, variadic: variadic,
		id: fmt.Sprintf("F%s(%s;%t)", result.id, strings.Join(ids, ","), variadic)}
	t.spelling = result.spelling + " " + t.paramSpelling()
	return u.intern(t)
}

func (t *ctype) paramSpelling() string {
	parts := make([]string, 0, len(t.params)+1)
	for _, p := range t.params {
		parts = append(parts, p.spelling)
	}
	if t.variadic {
		parts = append(parts, "...")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// declType builds the type of a record, enum, typedef or template
// parameter declaration.
func (u *Unit) declType(decl *cursor) *ctype {
	var kind frontend.TypeKind
	spelling := decl.qualifiedName()
	switch decl.kind {
	case frontend.CursorEnumDecl:
		kind = frontend.TypeEnum
	case frontend.CursorTypedefDecl, frontend.CursorTypeAliasDecl:
		kind = frontend.TypeTypedef
	case frontend.CursorTemplateTypeParameter:
		kind = frontend.TypeTemplateTypeParm
		spelling = decl.name
	default:
		kind = frontend.TypeRecord
		if decl.kind == frontend.CursorClassTemplate {
			spelling += u.paramListSpelling(decl)
		}
	}
	if decl.name == "" {
		spelling = u.anonymousSpelling(decl)
	}
	return u.intern(&ctype{kind: kind, spelling: spelling, decl: decl, id: fmt.Sprintf("D%d%p", kind, decl)})
}

func (u *Unit) anonymousSpelling(decl *cursor) string {
	what := "struct"
	switch decl.recordKind {
	case frontend.CursorUnionDecl:
		what = "union"
	case frontend.CursorClassDecl:
		what = "class"
	}
	if decl.kind == frontend.CursorEnumDecl {
		what = "enum"
	}
	loc := decl.Location()
	return fmt.Sprintf("(anonymous %s at %s)", what, loc)
}

// elaborated wraps a named type with the spelling it was written with.
func (u *Unit) elaborated(named *ctype, spelling string) *ctype {
	if named == nil {
		return nil
	}
	return u.intern(&ctype{kind: frontend.TypeElaborated, spelling: spelling, elem: named, id: "E" + spelling + "|" + named.id})
}

// unexposed is a type the front-end could not classify. size is -1 when
// unknown.
func (u *Unit) unexposed(spelling string, targs []*ctype, size int64) *ctype {
	ids := make([]string, len(targs))
	for i, a := range targs {
		if a != nil {
			ids[i] = a.id
		}
	}
	t := &ctype{kind: frontend.TypeUnexposed, spelling: spelling, targs: targs,
		id: "U" + spelling + "<" + strings.Join(ids, ",") + ">"}
	if size >= 0 {
		t.size, t.align = size, size
	}
	return u.intern(t)
}
