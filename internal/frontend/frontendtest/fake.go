// Package frontendtest provides an in-memory front-end for driving the
// declaration builder in tests without a real parser.
package frontendtest

import (
	"fmt"
	"hash/fnv"

	"github.com/hargabyte/cppast/internal/frontend"
)

// Unit is a fake translation unit.
type Unit struct {
	File   string
	Source []byte
	Cursor *Cursor
	Tokens []frontend.Token
	Diags  []frontend.Diagnostic
}

// NewUnit creates a unit with a translation-unit root cursor.
func NewUnit(file string, source string) *Unit {
	root := &Cursor{K: frontend.CursorTranslationUnit, Name: file}
	return &Unit{File: file, Source: []byte(source), Cursor: root}
}

// Root implements frontend.TranslationUnit.
func (u *Unit) Root() frontend.Cursor { return u.Cursor }

// MainFile implements frontend.TranslationUnit.
func (u *Unit) MainFile() string { return u.File }

// Tokenize returns the configured tokens that fall inside r.
func (u *Unit) Tokenize(r frontend.SourceRange) []frontend.Token {
	var out []frontend.Token
	for _, tok := range u.Tokens {
		if tok.Extent.Start.Offset >= r.Start.Offset && tok.Extent.End.Offset <= r.End.Offset {
			out = append(out, tok)
		}
	}
	return out
}

// Diagnostics implements frontend.TranslationUnit.
func (u *Unit) Diagnostics() []frontend.Diagnostic { return u.Diags }

// FileContents implements frontend.TranslationUnit.
func (u *Unit) FileContents(file string) ([]byte, bool) {
	if file == u.File || file == "" {
		return u.Source, true
	}
	return nil, false
}

// Close implements frontend.TranslationUnit.
func (u *Unit) Close() {}

// Add appends top-level cursors to the unit root.
func (u *Unit) Add(children ...*Cursor) *Unit {
	u.Cursor.Add(children...)
	return u
}

// TemplateArg is one template argument of a fake specialization.
type TemplateArg struct {
	Kind     frontend.TemplateArgumentKind
	Type     *Type
	Value    int64
	Spelling string
}

// Cursor is a fake cursor whose behavior is fully described by its fields.
type Cursor struct {
	K        frontend.CursorKind
	Name     string
	Display  string
	Usr      string
	Parent   *Cursor
	Lexical  *Cursor
	Ext      frontend.SourceRange
	Ty       *Type
	Def      bool
	DefOf    *Cursor
	HashSeed uint64
	System   bool
	Children []*Cursor

	DeclFlags   frontend.DeclFlags
	AccessLevel frontend.AccessSpecifier
	Storage     frontend.StorageClass

	Template     *Cursor
	TemplateArgs []TemplateArg

	Underlying   *Type
	EnumType     *Type
	EnumValue    int64
	Result       *Type
	Args         []*Cursor
	Variadic     bool
	Offset       int64
	OffsetKnown  bool
	BitWidth     int
	IsBitField   bool
	Comment      *frontend.Comment
	Raw          string
	Eval         frontend.EvalResult
	FunctionLike bool
}

// Add appends children and sets their parents.
func (c *Cursor) Add(children ...*Cursor) *Cursor {
	for _, child := range children {
		if child.Parent == nil {
			child.Parent = c
		}
		if child.Lexical == nil {
			child.Lexical = c
		}
		c.Children = append(c.Children, child)
	}
	return c
}

// At sets the cursor's extent to the byte range [start, end).
func (c *Cursor) At(start, end int) *Cursor {
	c.Ext = Range(start, end)
	return c
}

// Range builds a source range over [start, end) in the fake file.
func Range(start, end int) frontend.SourceRange {
	return frontend.SourceRange{
		Start: frontend.SourceLocation{File: "test.h", Offset: start, Line: 1, Column: start + 1},
		End:   frontend.SourceLocation{File: "test.h", Offset: end, Line: 1, Column: end + 1},
	}
}

func cursorOrNil(c *Cursor) frontend.Cursor {
	if c == nil {
		return nil
	}
	return c
}

func typeOrNil(t *Type) frontend.Type {
	if t == nil {
		return nil
	}
	return t
}

func (c *Cursor) Kind() frontend.CursorKind { return c.K }
func (c *Cursor) Spelling() string          { return c.Name }

func (c *Cursor) DisplayName() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Name
}

func (c *Cursor) USR() string                      { return c.Usr }
func (c *Cursor) SemanticParent() frontend.Cursor  { return cursorOrNil(c.Parent) }
func (c *Cursor) LexicalParent() frontend.Cursor   { return cursorOrNil(c.Lexical) }
func (c *Cursor) Extent() frontend.SourceRange     { return c.Ext }
func (c *Cursor) Location() frontend.SourceLocation { return c.Ext.Start }
func (c *Cursor) Type() frontend.Type              { return typeOrNil(c.Ty) }
func (c *Cursor) IsDefinition() bool               { return c.Def }

func (c *Cursor) Definition() frontend.Cursor {
	if c.Def {
		return c
	}
	return cursorOrNil(c.DefOf)
}

func (c *Cursor) Hash() uint64 {
	if c.HashSeed != 0 {
		return c.HashSeed
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s:%d", c.K, c.Ext.Start.File, c.Ext.Start.Offset)
	return h.Sum64()
}

func (c *Cursor) IsInSystemHeader() bool { return c.System }

// VisitChildren walks children depth-first following the visitor's result.
func (c *Cursor) VisitChildren(visit frontend.Visitor) bool {
	for _, child := range c.Children {
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

func (c *Cursor) Flags() frontend.DeclFlags              { return c.DeclFlags }
func (c *Cursor) Access() frontend.AccessSpecifier       { return c.AccessLevel }
func (c *Cursor) StorageClass() frontend.StorageClass    { return c.Storage }
func (c *Cursor) SpecializedTemplate() frontend.Cursor   { return cursorOrNil(c.Template) }
func (c *Cursor) NumTemplateArguments() int              { return len(c.TemplateArgs) }
func (c *Cursor) TemplateArgumentValue(i int) int64      { return c.TemplateArgs[i].Value }
func (c *Cursor) TemplateArgumentSpelling(i int) string  { return c.TemplateArgs[i].Spelling }
func (c *Cursor) TypedefUnderlyingType() frontend.Type   { return typeOrNil(c.Underlying) }
func (c *Cursor) EnumIntegerType() frontend.Type         { return typeOrNil(c.EnumType) }
func (c *Cursor) EnumConstantValue() int64               { return c.EnumValue }
func (c *Cursor) ResultType() frontend.Type              { return typeOrNil(c.Result) }
func (c *Cursor) IsVariadic() bool                       { return c.Variadic }
func (c *Cursor) ParsedComment() *frontend.Comment       { return c.Comment }
func (c *Cursor) RawComment() string                     { return c.Raw }
func (c *Cursor) Evaluate() frontend.EvalResult          { return c.Eval }
func (c *Cursor) IsMacroFunctionLike() bool              { return c.FunctionLike }

func (c *Cursor) TemplateArgumentKind(i int) frontend.TemplateArgumentKind {
	return c.TemplateArgs[i].Kind
}

func (c *Cursor) TemplateArgumentType(i int) frontend.Type {
	return typeOrNil(c.TemplateArgs[i].Type)
}

func (c *Cursor) Arguments() []frontend.Cursor {
	out := make([]frontend.Cursor, len(c.Args))
	for i, a := range c.Args {
		out[i] = a
	}
	return out
}

func (c *Cursor) FieldOffset() int64 {
	if !c.OffsetKnown {
		return -1
	}
	return c.Offset
}

func (c *Cursor) BitFieldWidth() int {
	if !c.IsBitField {
		return -1
	}
	return c.BitWidth
}

// Type is a fake type handle.
type Type struct {
	K        frontend.TypeKind
	Name     string
	Decl     *Cursor
	Elem     *Type
	Res      *Type
	Params   []*Type
	Variadic bool
	Count    int64
	Size     int64
	Align    int64
	TArgs    []*Type
	Const    bool
	Volatile bool
	Unqual   *Type
	Named    *Type
	Canon    *Type
	ID       string
}

func (t *Type) Kind() frontend.TypeKind       { return t.K }
func (t *Type) Spelling() string              { return t.Name }
func (t *Type) Declaration() frontend.Cursor  { return cursorOrNil(t.Decl) }
func (t *Type) Pointee() frontend.Type        { return typeOrNil(t.Elem) }
func (t *Type) Result() frontend.Type         { return typeOrNil(t.Res) }
func (t *Type) IsFunctionVariadic() bool      { return t.Variadic }
func (t *Type) ArrayElement() frontend.Type   { return typeOrNil(t.Elem) }
func (t *Type) ArraySize() int64              { return t.Count }
func (t *Type) SizeOf() int64                 { return t.Size }
func (t *Type) AlignOf() int64                { return t.Align }
func (t *Type) NumTemplateArguments() int     { return len(t.TArgs) }
func (t *Type) IsConst() bool                 { return t.Const }
func (t *Type) IsVolatile() bool              { return t.Volatile }
func (t *Type) NamedType() frontend.Type      { return typeOrNil(t.Named) }

func (t *Type) ArgTypes() []frontend.Type {
	out := make([]frontend.Type, len(t.Params))
	for i, p := range t.Params {
		out[i] = p
	}
	return out
}

func (t *Type) TemplateArgument(i int) frontend.Type {
	return typeOrNil(t.TArgs[i])
}

func (t *Type) Unqualified() frontend.Type {
	if t.Unqual != nil {
		return t.Unqual
	}
	return t
}

func (t *Type) Canonical() frontend.Type {
	if t.Canon != nil {
		return t.Canon
	}
	return t
}

func (t *Type) Identity() string {
	if t.ID != "" {
		return t.ID
	}
	return fmt.Sprintf("%p", t)
}

// Builtin returns a builtin type of the given kind and size.
func Builtin(kind frontend.TypeKind, name string, size int64) *Type {
	return &Type{K: kind, Name: name, Size: size, Align: size, ID: name}
}

// Int returns the builtin int type.
func Int() *Type { return Builtin(frontend.TypeInt, "int", 4) }

// Pointer returns a pointer to elem.
func Pointer(elem *Type) *Type {
	return &Type{K: frontend.TypePointer, Name: elem.Name + " *", Elem: elem, Size: 8, Align: 8}
}

// Const returns a const-qualified copy of t.
func Const(t *Type) *Type {
	c := *t
	c.Const = true
	c.Name = "const " + t.Name
	c.Unqual = t
	c.ID = ""
	return &c
}

// Array returns a constant array of n elements.
func Array(elem *Type, n int64) *Type {
	return &Type{
		K:     frontend.TypeConstantArray,
		Name:  fmt.Sprintf("%s[%d]", elem.Name, n),
		Elem:  elem,
		Count: n,
		Size:  elem.Size * n,
		Align: elem.Align,
	}
}

// Record returns the record type declared by decl.
func Record(decl *Cursor, size int64) *Type {
	t := &Type{K: frontend.TypeRecord, Name: decl.Name, Decl: decl, Size: size, Align: 4}
	decl.Ty = t
	return t
}
