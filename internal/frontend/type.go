package frontend

// TypeKind classifies a front-end type handle.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeUnexposed
	TypeVoid
	TypeBool
	TypeCharS
	TypeSChar
	TypeUChar
	TypeWChar
	TypeChar16
	TypeChar32
	TypeShort
	TypeUShort
	TypeInt
	TypeUInt
	TypeLong
	TypeULong
	TypeLongLong
	TypeULongLong
	TypeInt128
	TypeUInt128
	TypeFloat
	TypeDouble
	TypeLongDouble
	TypeNullPtr
	TypeAuto
	TypePointer
	TypeLValueReference
	TypeRValueReference
	TypeRecord
	TypeEnum
	TypeTypedef
	TypeElaborated
	TypeConstantArray
	TypeIncompleteArray
	TypeFunctionProto
	TypeFunctionNoProto
	TypeTemplateTypeParm
	TypeMemberPointer
)

var typeKindNames = map[TypeKind]string{
	TypeInvalid:          "Invalid",
	TypeUnexposed:        "Unexposed",
	TypeVoid:             "Void",
	TypeBool:             "Bool",
	TypeCharS:            "Char_S",
	TypeSChar:            "SChar",
	TypeUChar:            "UChar",
	TypeWChar:            "WChar",
	TypeChar16:           "Char16",
	TypeChar32:           "Char32",
	TypeShort:            "Short",
	TypeUShort:           "UShort",
	TypeInt:              "Int",
	TypeUInt:             "UInt",
	TypeLong:             "Long",
	TypeULong:            "ULong",
	TypeLongLong:         "LongLong",
	TypeULongLong:        "ULongLong",
	TypeInt128:           "Int128",
	TypeUInt128:          "UInt128",
	TypeFloat:            "Float",
	TypeDouble:           "Double",
	TypeLongDouble:       "LongDouble",
	TypeNullPtr:          "NullPtr",
	TypeAuto:             "Auto",
	TypePointer:          "Pointer",
	TypeLValueReference:  "LValueReference",
	TypeRValueReference:  "RValueReference",
	TypeRecord:           "Record",
	TypeEnum:             "Enum",
	TypeTypedef:          "Typedef",
	TypeElaborated:       "Elaborated",
	TypeConstantArray:    "ConstantArray",
	TypeIncompleteArray:  "IncompleteArray",
	TypeFunctionProto:    "FunctionProto",
	TypeFunctionNoProto:  "FunctionNoProto",
	TypeTemplateTypeParm: "TemplateTypeParm",
	TypeMemberPointer:    "MemberPointer",
}

// String returns the clang-style name of the kind.
func (k TypeKind) String() string {
	if name, ok := typeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsBuiltin reports whether the kind is a builtin arithmetic or void type.
func (k TypeKind) IsBuiltin() bool {
	return k >= TypeVoid && k <= TypeAuto
}

// Type is a front-end type handle.
type Type interface {
	Kind() TypeKind
	Spelling() string
	// Declaration returns the declaring cursor for record, enum, typedef
	// and template-parameter types, or nil.
	Declaration() Cursor
	Pointee() Type
	Result() Type
	ArgTypes() []Type
	IsFunctionVariadic() bool
	ArrayElement() Type
	// ArraySize returns the element count, or -1 for incomplete arrays.
	ArraySize() int64
	// SizeOf returns the size in bytes, or -1 when the size is unknown.
	SizeOf() int64
	AlignOf() int64
	NumTemplateArguments() int
	// TemplateArgument returns the i-th template argument as a type, or
	// nil when the argument is not a type.
	TemplateArgument(i int) Type
	IsConst() bool
	IsVolatile() bool
	// Unqualified returns the type without top-level const/volatile.
	Unqualified() Type
	// NamedType returns the type an elaborated type refers to.
	NamedType() Type
	Canonical() Type
	// Identity is a stable key for memoizing translations of this type.
	Identity() string
}
