package frontend

// CursorKind identifies what a cursor represents.
type CursorKind int

const (
	CursorInvalid CursorKind = iota
	CursorTranslationUnit

	// Declarations.
	CursorNamespace
	CursorLinkageSpec
	CursorStructDecl
	CursorClassDecl
	CursorUnionDecl
	CursorEnumDecl
	CursorEnumConstantDecl
	CursorFieldDecl
	CursorVarDecl
	CursorFunctionDecl
	CursorCXXMethod
	CursorConstructor
	CursorDestructor
	CursorConversionFunction
	CursorFunctionTemplate
	CursorClassTemplate
	CursorClassTemplatePartialSpecialization
	CursorTypedefDecl
	CursorTypeAliasDecl
	CursorCXXAccessSpecifier
	CursorCXXBaseSpecifier
	CursorParmDecl
	CursorTemplateTypeParameter
	CursorNonTypeTemplateParameter
	CursorTemplateTemplateParameter
	CursorUsingDirective
	CursorUsingDeclaration
	CursorStaticAssert
	CursorFriendDecl

	// Preprocessing.
	CursorMacroDefinition
	CursorMacroExpansion
	CursorInclusionDirective

	// References.
	CursorTypeRef
	CursorTemplateRef
	CursorNamespaceRef

	// Attributes.
	CursorUnexposedAttr
	CursorAnnotateAttr
	CursorVisibilityAttr
	CursorAlignedAttr
	CursorDLLImport
	CursorDLLExport

	// Expressions.
	CursorIntegerLiteral
	CursorFloatingLiteral
	CursorStringLiteral
	CursorCharacterLiteral
	CursorBoolLiteralExpr
	CursorNullPtrLiteralExpr
	CursorParenExpr
	CursorUnaryOperator
	CursorBinaryOperator
	CursorConditionalOperator
	CursorInitListExpr
	CursorDeclRefExpr
	CursorMemberRefExpr
	CursorCallExpr
	CursorCastExpr
	CursorSizeOfExpr
	CursorLambdaExpr
	CursorPackExpansionExpr
	CursorUnexposedExpr
)

var cursorKindNames = map[CursorKind]string{
	CursorInvalid:                            "Invalid",
	CursorTranslationUnit:                    "TranslationUnit",
	CursorNamespace:                          "Namespace",
	CursorLinkageSpec:                        "LinkageSpec",
	CursorStructDecl:                         "StructDecl",
	CursorClassDecl:                          "ClassDecl",
	CursorUnionDecl:                          "UnionDecl",
	CursorEnumDecl:                           "EnumDecl",
	CursorEnumConstantDecl:                   "EnumConstantDecl",
	CursorFieldDecl:                          "FieldDecl",
	CursorVarDecl:                            "VarDecl",
	CursorFunctionDecl:                       "FunctionDecl",
	CursorCXXMethod:                          "CXXMethod",
	CursorConstructor:                        "Constructor",
	CursorDestructor:                         "Destructor",
	CursorConversionFunction:                 "ConversionFunction",
	CursorFunctionTemplate:                   "FunctionTemplate",
	CursorClassTemplate:                      "ClassTemplate",
	CursorClassTemplatePartialSpecialization: "ClassTemplatePartialSpecialization",
	CursorTypedefDecl:                        "TypedefDecl",
	CursorTypeAliasDecl:                      "TypeAliasDecl",
	CursorCXXAccessSpecifier:                 "CXXAccessSpecifier",
	CursorCXXBaseSpecifier:                   "CXXBaseSpecifier",
	CursorParmDecl:                           "ParmDecl",
	CursorTemplateTypeParameter:              "TemplateTypeParameter",
	CursorNonTypeTemplateParameter:           "NonTypeTemplateParameter",
	CursorTemplateTemplateParameter:          "TemplateTemplateParameter",
	CursorUsingDirective:                     "UsingDirective",
	CursorUsingDeclaration:                   "UsingDeclaration",
	CursorStaticAssert:                       "StaticAssert",
	CursorFriendDecl:                         "FriendDecl",
	CursorMacroDefinition:                    "MacroDefinition",
	CursorMacroExpansion:                     "MacroExpansion",
	CursorInclusionDirective:                 "InclusionDirective",
	CursorTypeRef:                            "TypeRef",
	CursorTemplateRef:                        "TemplateRef",
	CursorNamespaceRef:                       "NamespaceRef",
	CursorUnexposedAttr:                      "UnexposedAttr",
	CursorAnnotateAttr:                       "AnnotateAttr",
	CursorVisibilityAttr:                     "VisibilityAttr",
	CursorAlignedAttr:                        "AlignedAttr",
	CursorDLLImport:                          "DLLImport",
	CursorDLLExport:                          "DLLExport",
	CursorIntegerLiteral:                     "IntegerLiteral",
	CursorFloatingLiteral:                    "FloatingLiteral",
	CursorStringLiteral:                      "StringLiteral",
	CursorCharacterLiteral:                   "CharacterLiteral",
	CursorBoolLiteralExpr:                    "BoolLiteralExpr",
	CursorNullPtrLiteralExpr:                 "NullPtrLiteralExpr",
	CursorParenExpr:                          "ParenExpr",
	CursorUnaryOperator:                      "UnaryOperator",
	CursorBinaryOperator:                     "BinaryOperator",
	CursorConditionalOperator:                "ConditionalOperator",
	CursorInitListExpr:                       "InitListExpr",
	CursorDeclRefExpr:                        "DeclRefExpr",
	CursorMemberRefExpr:                      "MemberRefExpr",
	CursorCallExpr:                           "CallExpr",
	CursorCastExpr:                           "CastExpr",
	CursorSizeOfExpr:                         "SizeOfExpr",
	CursorLambdaExpr:                         "LambdaExpr",
	CursorPackExpansionExpr:                  "PackExpansionExpr",
	CursorUnexposedExpr:                      "UnexposedExpr",
}

// String returns the clang-style name of the kind.
func (k CursorKind) String() string {
	if name, ok := cursorKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsAttribute reports whether the kind is one of the attribute kinds.
func (k CursorKind) IsAttribute() bool {
	return k >= CursorUnexposedAttr && k <= CursorDLLExport
}

// IsExpression reports whether the kind is an expression kind.
func (k CursorKind) IsExpression() bool {
	return k >= CursorIntegerLiteral && k <= CursorUnexposedExpr
}

// IsRecord reports whether the kind declares a struct, class or union.
func (k CursorKind) IsRecord() bool {
	switch k {
	case CursorStructDecl, CursorClassDecl, CursorUnionDecl,
		CursorClassTemplate, CursorClassTemplatePartialSpecialization:
		return true
	}
	return false
}

// IsTemplateParameter reports whether the kind is a template parameter.
func (k CursorKind) IsTemplateParameter() bool {
	return k == CursorTemplateTypeParameter || k == CursorNonTypeTemplateParameter ||
		k == CursorTemplateTemplateParameter
}

// ChildVisitResult controls VisitChildren traversal.
type ChildVisitResult int

const (
	// VisitBreak stops the traversal.
	VisitBreak ChildVisitResult = iota
	// VisitContinue moves on to the next sibling.
	VisitContinue
	// VisitRecurse descends into the current cursor's children.
	VisitRecurse
)

// Visitor is called for each child cursor with the child and its parent.
type Visitor func(cursor, parent Cursor) ChildVisitResult

// AccessSpecifier is a C++ member access level.
type AccessSpecifier int

const (
	AccessInvalid AccessSpecifier = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

// StorageClass is the storage class of a variable or function.
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageExtern
	StorageStatic
	StorageThreadLocal
)

// TemplateArgumentKind classifies a template argument.
type TemplateArgumentKind int

const (
	TemplateArgumentNull TemplateArgumentKind = iota
	TemplateArgumentType
	TemplateArgumentDeclaration
	TemplateArgumentNullPtr
	TemplateArgumentIntegral
	TemplateArgumentTemplate
	TemplateArgumentTemplateExpansion
	TemplateArgumentExpression
	TemplateArgumentPack
	TemplateArgumentInvalid
)

// String returns the argument kind name.
func (k TemplateArgumentKind) String() string {
	switch k {
	case TemplateArgumentNull:
		return "Null"
	case TemplateArgumentType:
		return "Type"
	case TemplateArgumentDeclaration:
		return "Declaration"
	case TemplateArgumentNullPtr:
		return "NullPtr"
	case TemplateArgumentIntegral:
		return "Integral"
	case TemplateArgumentTemplate:
		return "Template"
	case TemplateArgumentTemplateExpansion:
		return "TemplateExpansion"
	case TemplateArgumentExpression:
		return "Expression"
	case TemplateArgumentPack:
		return "Pack"
	default:
		return "Invalid"
	}
}

// DeclFlags are boolean properties of function and record declarations.
type DeclFlags uint32

const (
	FlagConst DeclFlags = 1 << iota
	FlagVolatile
	FlagVirtual
	FlagPureVirtual
	FlagStatic
	FlagInline
	FlagExplicit
	FlagDeleted
	FlagDefaulted
	FlagNoExcept
	FlagOverride
	FlagFinal
	FlagConstExpr
	FlagVirtualBase
	FlagScopedEnum
	FlagAnonymous
	FlagInlineNamespace
	FlagAbstract
)

// Has reports whether all bits of f are set.
func (d DeclFlags) Has(f DeclFlags) bool {
	return d&f == f
}

// EvalKind is the kind of a constant evaluation result.
type EvalKind int

const (
	EvalUnexposed EvalKind = iota
	EvalInt
	EvalFloat
	EvalString
)

// EvalResult is the result of constant-folding an initializer.
type EvalResult struct {
	Kind       EvalKind
	Int        int64
	IsUnsigned bool
	Float      float64
	Str        string
}

// Value returns the folded value as a Go value, or nil when unexposed.
func (e EvalResult) Value() any {
	switch e.Kind {
	case EvalInt:
		if e.IsUnsigned {
			return uint64(e.Int)
		}
		return e.Int
	case EvalFloat:
		return e.Float
	case EvalString:
		return e.Str
	default:
		return nil
	}
}

// Cursor is a node of the front-end's semantic tree.
type Cursor interface {
	Kind() CursorKind
	Spelling() string
	DisplayName() string
	// USR is the unified symbol resolution id, stable across occurrences.
	USR() string
	SemanticParent() Cursor
	LexicalParent() Cursor
	Extent() SourceRange
	Location() SourceLocation
	// Type returns the declared type, or nil for cursors without one.
	Type() Type
	IsDefinition() bool
	// Definition returns the defining cursor for this entity, or nil.
	Definition() Cursor
	// Hash is a structural hash distinguishing anonymous entities.
	Hash() uint64
	IsInSystemHeader() bool
	// VisitChildren walks children depth-first. It returns true if the
	// visitor broke out of the traversal.
	VisitChildren(visit Visitor) bool

	// Flags returns boolean properties of the declaration.
	Flags() DeclFlags
	Access() AccessSpecifier
	StorageClass() StorageClass

	// SpecializedTemplate returns the generic template a specialization
	// or instantiation was produced from.
	SpecializedTemplate() Cursor
	NumTemplateArguments() int
	TemplateArgumentKind(i int) TemplateArgumentKind
	TemplateArgumentType(i int) Type
	TemplateArgumentValue(i int) int64
	TemplateArgumentSpelling(i int) string

	TypedefUnderlyingType() Type
	EnumIntegerType() Type
	EnumConstantValue() int64
	ResultType() Type
	Arguments() []Cursor
	IsVariadic() bool

	// FieldOffset returns the field's byte offset, or -1 when unknown.
	FieldOffset() int64
	// BitFieldWidth returns the width in bits, or -1 for ordinary fields.
	BitFieldWidth() int

	// ParsedComment returns the doc comment attached to the declaration.
	ParsedComment() *Comment
	RawComment() string
	Evaluate() EvalResult

	IsMacroFunctionLike() bool
}
