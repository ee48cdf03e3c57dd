package parser

import (
	"strconv"
	"strings"

	"github.com/hargabyte/cppast/internal/frontend"
)

// usrOf builds a clang-style unified symbol resolution id.
func (u *Unit) usrOf(c *cursor) string {
	parent := u.parentUSR(c)
	switch c.kind {
	case frontend.CursorNamespace:
		if c.name == "" {
			return parent + "@aN"
		}
		return parent + "@N@" + c.name
	case frontend.CursorStructDecl, frontend.CursorClassDecl, frontend.CursorUnionDecl:
		tag := "@S"
		if c.recordKind == frontend.CursorUnionDecl {
			tag = "@U"
		}
		if c.name == "" {
			return parent + tag + "a@" + u.fileTag(c)
		}
		usr := parent + tag + "@" + c.name
		if c.specialized != nil {
			usr += ">" + u.argsCode(c.templateArgs())
		}
		return usr
	case frontend.CursorClassTemplate:
		return parent + "@ST" + u.paramsCode(c) + "@" + c.name
	case frontend.CursorClassTemplatePartialSpecialization:
		return parent + "@SP" + u.paramsCode(c) + "@" + c.name + ">" + u.argsCode(c.templateArgs())
	case frontend.CursorEnumDecl:
		if c.name == "" {
			for _, child := range c.children {
				if child.kind == frontend.CursorEnumConstantDecl {
					return parent + "@Ea@" + child.name
				}
			}
			return parent + "@Ea@" + u.fileTag(c)
		}
		return parent + "@E@" + c.name
	case frontend.CursorEnumConstantDecl:
		return parent + "@" + c.name
	case frontend.CursorFieldDecl:
		return parent + "@FI@" + c.name
	case frontend.CursorVarDecl:
		if c.storage == frontend.StorageStatic && !isRecordParent(c) {
			return "c:" + baseName(c) + parent[2:] + "@" + c.name
		}
		return parent + "@" + c.name
	case frontend.CursorTypedefDecl, frontend.CursorTypeAliasDecl:
		return parent + "@T@" + c.name
	case frontend.CursorFunctionDecl, frontend.CursorCXXMethod, frontend.CursorConstructor,
		frontend.CursorDestructor, frontend.CursorConversionFunction, frontend.CursorFunctionTemplate:
		return u.functionUSR(c, parent)
	case frontend.CursorMacroDefinition:
		return "c:@macro@" + c.name
	}
	return ""
}

func isRecordParent(c *cursor) bool {
	return c.semantic != nil && c.semantic.kind.IsRecord()
}

func baseName(c *cursor) string {
	if c.file == nil {
		return ""
	}
	path := c.file.Path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return path
}

// fileTag distinguishes unnamed entities by where they are written.
func (u *Unit) fileTag(c *cursor) string {
	return baseName(c) + "@" + strconv.Itoa(c.start)
}

func (u *Unit) parentUSR(c *cursor) string {
	p := c.semantic
	for p != nil && p.kind == frontend.CursorLinkageSpec {
		p = p.semantic
	}
	if p == nil || p.kind == frontend.CursorTranslationUnit {
		return "c:"
	}
	if p.kind == frontend.CursorEnumDecl && c.kind != frontend.CursorEnumConstantDecl {
		return u.parentUSR(p)
	}
	usr := p.USR()
	if usr == "" {
		return "c:"
	}
	return usr
}

func (u *Unit) functionUSR(c *cursor, parent string) string {
	var b strings.Builder
	b.WriteString(parent)
	if c.kind == frontend.CursorFunctionTemplate {
		b.WriteString("@FT@")
		b.WriteString(u.paramsCode(c))
	} else {
		if c.storage == frontend.StorageStatic && !isRecordParent(c) {
			b.Reset()
			b.WriteString("c:" + baseName(c) + parent[2:])
		}
		b.WriteString("@F@")
	}
	b.WriteString(c.name)
	if u.opts.Language == C {
		return b.String()
	}
	b.WriteByte('#')
	for _, p := range c.params {
		b.WriteString(u.typeCode(u.cursorType(p)))
	}
	if c.variadic {
		b.WriteString(".")
	}
	var quals int
	if c.flags.Has(frontend.FlagConst) {
		quals |= 1
	}
	if c.flags.Has(frontend.FlagVolatile) {
		quals |= 4
	}
	if quals != 0 {
		b.WriteString("#" + strconv.Itoa(quals))
	}
	return b.String()
}

// paramsCode encodes a template parameter list as ">N#T#N...".
func (u *Unit) paramsCode(c *cursor) string {
	var b strings.Builder
	b.WriteString(">" + strconv.Itoa(len(c.tparams)))
	for _, p := range c.tparams {
		b.WriteByte('#')
		if p.variadic {
			b.WriteByte('p')
		}
		switch p.kind {
		case frontend.CursorTemplateTypeParameter:
			b.WriteByte('T')
		case frontend.CursorNonTypeTemplateParameter:
			b.WriteString("N" + u.typeCode(u.cursorType(p)))
		default:
			b.WriteByte('t')
		}
	}
	return b.String()
}

func (u *Unit) argsCode(args []templateArg) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteByte('#')
		switch a.kind {
		case frontend.TemplateArgumentType:
			b.WriteString(u.typeCode(a.ty))
		case frontend.TemplateArgumentIntegral:
			b.WriteString("V" + strconv.FormatInt(a.value, 10))
		case frontend.TemplateArgumentPack:
			b.WriteString("p" + strconv.Itoa(len(a.pack)) + u.argsCode(a.pack))
		default:
			b.WriteString("X" + a.spelling)
		}
	}
	return b.String()
}

var builtinCodes = map[frontend.TypeKind]string{
	frontend.TypeVoid: "v", frontend.TypeBool: "b", frontend.TypeUChar: "c",
	frontend.TypeChar16: "q", frontend.TypeChar32: "w", frontend.TypeUShort: "s",
	frontend.TypeUInt: "i", frontend.TypeULong: "l", frontend.TypeULongLong: "k",
	frontend.TypeUInt128: "j", frontend.TypeCharS: "C", frontend.TypeSChar: "r",
	frontend.TypeWChar: "W", frontend.TypeShort: "S", frontend.TypeInt: "I",
	frontend.TypeLong: "L", frontend.TypeLongLong: "K", frontend.TypeInt128: "J",
	frontend.TypeFloat: "f", frontend.TypeDouble: "d", frontend.TypeLongDouble: "D",
	frontend.TypeNullPtr: "n", frontend.TypeAuto: "a",
}

// typeCode encodes a type for function and specialization USRs.
func (u *Unit) typeCode(t *ctype) string {
	if t == nil {
		return "?"
	}
	t = t.canonical()
	prefix := ""
	quals := 0
	if t.isConst {
		quals |= 1
	}
	if t.isVolatile {
		quals |= 4
	}
	if quals != 0 {
		prefix = strconv.Itoa(quals)
	}
	b := t.base()
	if code, ok := builtinCodes[b.kind]; ok {
		return prefix + code
	}
	switch b.kind {
	case frontend.TypePointer:
		return prefix + "*" + u.typeCode(b.elem)
	case frontend.TypeLValueReference:
		return prefix + "&" + u.typeCode(b.elem)
	case frontend.TypeRValueReference:
		return prefix + "&&" + u.typeCode(b.elem)
	case frontend.TypeConstantArray:
		return prefix + "{" + strconv.FormatInt(b.count, 10) + u.typeCode(b.elem)
	case frontend.TypeIncompleteArray:
		return prefix + "{" + u.typeCode(b.elem)
	case frontend.TypeFunctionProto:
		var params strings.Builder
		for _, p := range b.params {
			params.WriteString(u.typeCode(p))
		}
		return prefix + "F" + u.typeCode(b.elem) + "(" + params.String() + ")"
	case frontend.TypeTemplateTypeParm:
		return prefix + "t" + b.decl.name
	case frontend.TypeRecord, frontend.TypeEnum:
		return prefix + "$" + b.decl.USR()
	}
	return prefix + "?" + b.spelling
}
