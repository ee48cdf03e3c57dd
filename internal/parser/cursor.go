package parser

import (
	"hash/fnv"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/cppast/internal/frontend"
)

// cursor is the parser's implementation of frontend.Cursor.
type cursor struct {
	unit    *Unit
	kind    frontend.CursorKind
	name    string
	display string

	file       *sourceFile
	start, end int
	loc        int

	semantic *cursor
	lexical  *cursor
	children []*cursor
	system   bool
	// implicit cursors exist for lookup and types only and never appear
	// among their parent's children.
	implicit bool

	// Syntax the declaration was built from.
	node       *sitter.Node
	typeNode   *sitter.Node
	declarator *sitter.Node
	valueNode  *sitter.Node
	specConst  bool
	specVolat  bool
	// scope resolves the names used by the declaration; inner is the scope
	// the declaration opens.
	scope *scope
	inner *scope

	flags        frontend.DeclFlags
	access       frontend.AccessSpecifier
	storage      frontend.StorageClass
	isDef        bool
	variadic     bool
	functionLike bool
	bitWidth     int
	recordKind   frontend.CursorKind
	hasVirtual   bool
	anonField    bool

	usr     string
	usrDone bool
	ty      *ctype
	tyDone  bool
	result  *ctype
	under   *ctype
	underOK bool
	params  []*cursor

	enumValue int64
	enumDone  bool

	// Templates.
	tparams     []*cursor
	specialized *cursor
	pattern     *cursor
	targs       []templateArg
	targsNode   *sitter.Node
	targsDone   bool
	subst       substitution

	layout     *recordLayout
	layingOut  bool
	align      int64
	packed     bool

	comment     *frontend.Comment
	rawComment  string
	commentDone bool
}

var _ frontend.Cursor = (*cursor)(nil)

func asCursor(c *cursor) frontend.Cursor {
	if c == nil {
		return nil
	}
	return c
}

func asType(t *ctype) frontend.Type {
	if t == nil {
		return nil
	}
	return t
}

func (c *cursor) Kind() frontend.CursorKind { return c.kind }

func (c *cursor) Spelling() string { return c.name }

func (c *cursor) DisplayName() string {
	if c.display != "" {
		return c.display
	}
	switch c.kind {
	case frontend.CursorFunctionDecl, frontend.CursorCXXMethod, frontend.CursorConstructor,
		frontend.CursorDestructor, frontend.CursorConversionFunction, frontend.CursorFunctionTemplate:
		return c.unit.functionDisplayName(c)
	case frontend.CursorClassTemplate:
		return c.name + c.unit.paramListSpelling(c)
	case frontend.CursorStructDecl, frontend.CursorClassDecl, frontend.CursorUnionDecl,
		frontend.CursorClassTemplatePartialSpecialization:
		if c.specialized != nil {
			return c.name + c.unit.argListSpelling(c.templateArgs())
		}
	}
	return c.name
}

func (c *cursor) USR() string {
	if !c.usrDone {
		c.usrDone = true
		c.usr = c.unit.usrOf(c)
	}
	return c.usr
}

func (c *cursor) SemanticParent() frontend.Cursor { return asCursor(c.semantic) }

func (c *cursor) LexicalParent() frontend.Cursor { return asCursor(c.lexical) }

func (c *cursor) Extent() frontend.SourceRange {
	if c.file == nil {
		return frontend.SourceRange{}
	}
	return c.file.rangeOf(c.start, c.end)
}

func (c *cursor) Location() frontend.SourceLocation {
	if c.file == nil {
		return frontend.SourceLocation{}
	}
	return c.file.location(c.loc)
}

func (c *cursor) Type() frontend.Type {
	return asType(c.unit.cursorType(c))
}

func (c *cursor) IsDefinition() bool { return c.isDef }

func (c *cursor) Definition() frontend.Cursor {
	if c.isDef {
		return c
	}
	for _, other := range c.unit.byUSR(c.USR()) {
		if other.isDef && other.kind == c.kind {
			return other
		}
	}
	return nil
}

func (c *cursor) Hash() uint64 {
	h := fnv.New64a()
	if c.file != nil {
		h.Write([]byte(c.file.Path))
	}
	h.Write([]byte(strconv.Itoa(c.start)))
	h.Write([]byte(c.kind.String()))
	h.Write([]byte(c.name))
	if c.pattern != nil {
		h.Write([]byte(c.USR()))
	}
	return h.Sum64()
}

func (c *cursor) IsInSystemHeader() bool { return c.system }

func (c *cursor) VisitChildren(visit frontend.Visitor) bool {
	for _, child := range c.children {
		switch visit(child, c) {
		case frontend.VisitBreak:
			return true
		case frontend.VisitRecurse:
			if child.VisitChildren(visit) {
				return true
			}
		}
	}
	return false
}

func (c *cursor) Flags() frontend.DeclFlags { return c.flags }

func (c *cursor) Access() frontend.AccessSpecifier { return c.access }

func (c *cursor) StorageClass() frontend.StorageClass { return c.storage }

func (c *cursor) SpecializedTemplate() frontend.Cursor { return asCursor(c.specialized) }

func (c *cursor) templateArgs() []templateArg {
	if !c.targsDone {
		c.targsDone = true
		if c.targsNode != nil {
			c.targs = c.unit.templateArgs(c.targsNode, c.file, c.scope, nil)
		}
	}
	return c.targs
}

func (c *cursor) NumTemplateArguments() int {
	if c.specialized == nil {
		return -1
	}
	return len(c.templateArgs())
}

func (c *cursor) arg(i int) (templateArg, bool) {
	args := c.templateArgs()
	if i < 0 || i >= len(args) {
		return templateArg{}, false
	}
	return args[i], true
}

func (c *cursor) TemplateArgumentKind(i int) frontend.TemplateArgumentKind {
	a, ok := c.arg(i)
	if !ok {
		return frontend.TemplateArgumentInvalid
	}
	return a.kind
}

func (c *cursor) TemplateArgumentType(i int) frontend.Type {
	a, ok := c.arg(i)
	if !ok || a.kind != frontend.TemplateArgumentType {
		return nil
	}
	return asType(a.ty)
}

func (c *cursor) TemplateArgumentValue(i int) int64 {
	a, _ := c.arg(i)
	return a.value
}

func (c *cursor) TemplateArgumentSpelling(i int) string {
	a, _ := c.arg(i)
	return a.spelling
}

func (c *cursor) TypedefUnderlyingType() frontend.Type {
	if c.kind != frontend.CursorTypedefDecl && c.kind != frontend.CursorTypeAliasDecl {
		return nil
	}
	return asType(c.unit.underlyingOf(c))
}

func (c *cursor) EnumIntegerType() frontend.Type {
	if c.kind != frontend.CursorEnumDecl {
		return nil
	}
	return asType(c.unit.underlyingOf(c))
}

func (c *cursor) EnumConstantValue() int64 {
	return c.unit.enumConstant(c)
}

func (c *cursor) ResultType() frontend.Type {
	c.unit.cursorType(c)
	return asType(c.result)
}

func (c *cursor) Arguments() []frontend.Cursor {
	out := make([]frontend.Cursor, len(c.params))
	for i, p := range c.params {
		out[i] = p
	}
	return out
}

func (c *cursor) IsVariadic() bool { return c.variadic }

func (c *cursor) FieldOffset() int64 {
	return c.unit.fieldOffset(c)
}

func (c *cursor) BitFieldWidth() int { return c.bitWidth }

func (c *cursor) ParsedComment() *frontend.Comment {
	c.unit.attachComment(c)
	return c.comment
}

func (c *cursor) RawComment() string {
	c.unit.attachComment(c)
	return c.rawComment
}

func (c *cursor) Evaluate() frontend.EvalResult {
	return c.unit.evaluate(c)
}

func (c *cursor) IsMacroFunctionLike() bool { return c.functionLike }

// add appends children, making c their semantic and lexical parent.
func (c *cursor) add(children ...*cursor) {
	for _, child := range children {
		child.semantic = c
		child.lexical = c
	}
	c.children = append(c.children, children...)
}

// isDecl reports whether the cursor declares a named entity that doc
// comments and attributes can attach to.
func (c *cursor) isDecl() bool {
	switch c.kind {
	case frontend.CursorNamespace, frontend.CursorStructDecl, frontend.CursorClassDecl,
		frontend.CursorUnionDecl, frontend.CursorEnumDecl, frontend.CursorEnumConstantDecl,
		frontend.CursorFieldDecl, frontend.CursorVarDecl, frontend.CursorFunctionDecl,
		frontend.CursorCXXMethod, frontend.CursorConstructor, frontend.CursorDestructor,
		frontend.CursorConversionFunction, frontend.CursorFunctionTemplate,
		frontend.CursorClassTemplate, frontend.CursorClassTemplatePartialSpecialization,
		frontend.CursorTypedefDecl, frontend.CursorTypeAliasDecl, frontend.CursorParmDecl:
		return true
	}
	return false
}

// qualifiedName joins the names of the semantic parents with "::".
func (c *cursor) qualifiedName() string {
	name := c.name
	if c.specialized != nil {
		name += c.unit.argListSpelling(c.templateArgs())
	}
	for p := c.semantic; p != nil; p = p.semantic {
		switch p.kind {
		case frontend.CursorNamespace, frontend.CursorStructDecl, frontend.CursorClassDecl,
			frontend.CursorUnionDecl, frontend.CursorClassTemplate, frontend.CursorEnumDecl:
			if p.kind == frontend.CursorEnumDecl && !p.flags.Has(frontend.FlagScopedEnum) {
				continue
			}
			if p.name == "" {
				continue
			}
			name = p.name + "::" + name
		}
	}
	return name
}
