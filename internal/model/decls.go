package model

// Namespace is a C++ namespace. Reopened namespaces share one instance.
type Namespace struct {
	Decl
	Members
	Namespaces *Collection[*Namespace]
	IsInline   bool
}

// NewNamespace creates an empty namespace.
func NewNamespace(name string) *Namespace {
	ns := &Namespace{}
	ns.Name = name
	ns.Members = newMembers(ns)
	ns.Namespaces = NewCollection[*Namespace](ns)
	return ns
}

// Enum is an enumeration. It is also a Type.
type Enum struct {
	Decl
	Items       *Collection[*EnumItem]
	IntegerType Type
	IsScoped    bool
	IsAnonymous bool
	Visibility  Visibility
}

// NewEnum creates an empty enum.
func NewEnum(name string) *Enum {
	e := &Enum{}
	e.Name = name
	e.Items = NewCollection[*EnumItem](e)
	return e
}

func (e *Enum) TypeKind() TypeKind { return TypeKindEnum }
func (e *Enum) String() string     { return FullName(e) }

// SizeOf is the size of the underlying integer type.
func (e *Enum) SizeOf() int64 {
	if e.IntegerType == nil {
		return 4
	}
	return e.IntegerType.SizeOf()
}

// EnumItem is one enumerator.
type EnumItem struct {
	Decl
	Value          int64
	InitExpression Expression
}

// FunctionFlags are boolean properties of a function.
type FunctionFlags uint32

const (
	FunctionFlagConst FunctionFlags = 1 << iota
	FunctionFlagVirtual
	FunctionFlagPure
	FunctionFlagStatic
	FunctionFlagInline
	FunctionFlagVariadic
	FunctionFlagConstructor
	FunctionFlagDestructor
	FunctionFlagDeleted
	FunctionFlagDefaulted
	FunctionFlagExplicit
	FunctionFlagOverride
	FunctionFlagFinal
	FunctionFlagNoExcept
	FunctionFlagConstExpr
	FunctionFlagMethod
	FunctionFlagFunctionTemplate
	FunctionFlagConversion
)

var functionFlagNames = []struct {
	flag FunctionFlags
	name string
}{
	{FunctionFlagConst, "const"},
	{FunctionFlagVirtual, "virtual"},
	{FunctionFlagPure, "pure"},
	{FunctionFlagStatic, "static"},
	{FunctionFlagInline, "inline"},
	{FunctionFlagVariadic, "variadic"},
	{FunctionFlagConstructor, "constructor"},
	{FunctionFlagDestructor, "destructor"},
	{FunctionFlagDeleted, "deleted"},
	{FunctionFlagDefaulted, "defaulted"},
	{FunctionFlagExplicit, "explicit"},
	{FunctionFlagOverride, "override"},
	{FunctionFlagFinal, "final"},
	{FunctionFlagNoExcept, "noexcept"},
	{FunctionFlagConstExpr, "constexpr"},
	{FunctionFlagMethod, "method"},
	{FunctionFlagFunctionTemplate, "template"},
	{FunctionFlagConversion, "conversion"},
}

// Names returns the names of the set flags in declaration order.
func (f FunctionFlags) Names() []string {
	var names []string
	for _, fn := range functionFlagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

// Parameter is one function parameter.
type Parameter struct {
	Name           string
	Type           Type
	InitExpression Expression
	InitValue      any
	Attributes     []*Attribute
	Span           SourceSpan
}

// Function is a free function, method, constructor or destructor.
type Function struct {
	Decl
	ReturnType         Type
	Parameters         []*Parameter
	Flags              FunctionFlags
	StorageQualifier   StorageQualifier
	Visibility         Visibility
	TemplateParameters []Type
	IsDefinition       bool
}

// NewFunction creates a function with no parameters.
func NewFunction(name string) *Function {
	f := &Function{}
	f.Name = name
	return f
}

// Has reports whether all of the given flags are set.
func (f *Function) Has(flags FunctionFlags) bool {
	return f.Flags&flags == flags
}

// Signature renders the function's parameter types.
func (f *Function) Signature() string {
	ft := &FunctionType{ReturnType: f.ReturnType, Parameters: f.Parameters, IsVariadic: f.Has(FunctionFlagVariadic)}
	if f.ReturnType == nil {
		ft.ReturnType = &PrimitiveType{Kind: PrimitiveVoid}
	}
	return ft.String()
}

// Field is a member variable, or a global variable when owned by a
// namespace or compilation root.
type Field struct {
	Decl
	Type             Type
	Visibility       Visibility
	StorageQualifier StorageQualifier
	IsAnonymous      bool
	IsBitField       bool
	BitFieldWidth    int
	// Offset is the byte offset inside the enclosing record.
	Offset         int64
	IsConstExpr    bool
	InitExpression Expression
	InitValue      any
}

// NewField creates a field of the given type.
func NewField(name string, typ Type) *Field {
	f := &Field{Type: typ}
	f.Name = name
	return f
}

// Typedef is a typedef or alias declaration. It is also a Type.
type Typedef struct {
	Decl
	ElementType Type
	Visibility  Visibility
}

// NewTypedef creates a typedef naming elem.
func NewTypedef(name string, elem Type) *Typedef {
	t := &Typedef{ElementType: elem}
	t.Name = name
	return t
}

func (t *Typedef) TypeKind() TypeKind { return TypeKindTypedef }
func (t *Typedef) Element() Type      { return t.ElementType }
func (t *Typedef) String() string     { return FullName(t) }

// SizeOf is derived from the aliased type.
func (t *Typedef) SizeOf() int64 {
	if t.ElementType == nil {
		return 0
	}
	return t.ElementType.SizeOf()
}

// TokenKind classifies a macro token.
type TokenKind int

const (
	TokenPunctuation TokenKind = iota
	TokenKeyword
	TokenIdentifier
	TokenLiteral
	TokenComment
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenPunctuation:
		return "Punctuation"
	case TokenKeyword:
		return "Keyword"
	case TokenIdentifier:
		return "Identifier"
	case TokenLiteral:
		return "Literal"
	default:
		return "Comment"
	}
}

// Token is one token of a macro body.
type Token struct {
	Kind TokenKind
	Text string
}

// Macro is a #define. Parameters is nil for object-like macros.
type Macro struct {
	Decl
	Parameters []string
	Tokens     []Token
	Value      string
}

// IsFunctionLike reports whether the macro takes parameters.
func (m *Macro) IsFunctionLike() bool {
	return m.Parameters != nil
}

// InclusionDirective is an #include seen in a user file.
type InclusionDirective struct {
	FileName     string
	IncludedFile string
	IsSystem     bool
	Span         SourceSpan
}
