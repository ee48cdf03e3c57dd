package model

import (
	"fmt"
	"strings"
)

// TypeKind identifies the variant of a Type.
type TypeKind int

const (
	TypeKindPrimitive TypeKind = iota
	TypeKindPointer
	TypeKindReference
	TypeKindArray
	TypeKindQualified
	TypeKindFunction
	TypeKindTypedef
	TypeKindStructOrClass
	TypeKindEnum
	TypeKindTemplateParameterType
	TypeKindTemplateParameterNonType
	TypeKindTemplateArgument
	TypeKindUnexposed
)

var typeKindNames = [...]string{
	TypeKindPrimitive:                "primitive",
	TypeKindPointer:                  "pointer",
	TypeKindReference:                "reference",
	TypeKindArray:                    "array",
	TypeKindQualified:                "qualified",
	TypeKindFunction:                 "function",
	TypeKindTypedef:                  "typedef",
	TypeKindStructOrClass:            "class",
	TypeKindEnum:                     "enum",
	TypeKindTemplateParameterType:    "template_parameter",
	TypeKindTemplateParameterNonType: "template_parameter_non_type",
	TypeKindTemplateArgument:         "template_argument",
	TypeKindUnexposed:                "unexposed",
}

// String returns the kind name.
func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "unknown"
}

// Type is the closed set of model types.
type Type interface {
	TypeKind() TypeKind
	// SizeOf returns the size in bytes. Wrapper types derive it from their
	// element on every call.
	SizeOf() int64
	String() string
}

// ElementTyped is implemented by wrapper types around one element type.
type ElementTyped interface {
	Type
	Element() Type
}

// PrimitiveKind identifies a builtin type.
type PrimitiveKind int

const (
	PrimitiveVoid PrimitiveKind = iota
	PrimitiveBool
	PrimitiveChar
	PrimitiveSignedChar
	PrimitiveUnsignedChar
	PrimitiveWChar
	PrimitiveChar16
	PrimitiveChar32
	PrimitiveShort
	PrimitiveUnsignedShort
	PrimitiveInt
	PrimitiveUnsignedInt
	PrimitiveLong
	PrimitiveUnsignedLong
	PrimitiveLongLong
	PrimitiveUnsignedLongLong
	PrimitiveInt128
	PrimitiveUnsignedInt128
	PrimitiveFloat
	PrimitiveDouble
	PrimitiveLongDouble
	PrimitiveNullPtr
	PrimitiveAuto
)

var primitiveNames = [...]string{
	PrimitiveVoid:             "void",
	PrimitiveBool:             "bool",
	PrimitiveChar:             "char",
	PrimitiveSignedChar:       "signed char",
	PrimitiveUnsignedChar:     "unsigned char",
	PrimitiveWChar:            "wchar_t",
	PrimitiveChar16:           "char16_t",
	PrimitiveChar32:           "char32_t",
	PrimitiveShort:            "short",
	PrimitiveUnsignedShort:    "unsigned short",
	PrimitiveInt:              "int",
	PrimitiveUnsignedInt:      "unsigned int",
	PrimitiveLong:             "long",
	PrimitiveUnsignedLong:     "unsigned long",
	PrimitiveLongLong:         "long long",
	PrimitiveUnsignedLongLong: "unsigned long long",
	PrimitiveInt128:           "__int128",
	PrimitiveUnsignedInt128:   "unsigned __int128",
	PrimitiveFloat:            "float",
	PrimitiveDouble:           "double",
	PrimitiveLongDouble:       "long double",
	PrimitiveNullPtr:          "std::nullptr_t",
	PrimitiveAuto:             "auto",
}

// String returns the C spelling of the builtin.
func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveNames) {
		return primitiveNames[k]
	}
	return "unknown"
}

// PrimitiveType is a builtin type.
type PrimitiveType struct {
	Kind PrimitiveKind
	Size int64
}

func (t *PrimitiveType) TypeKind() TypeKind { return TypeKindPrimitive }
func (t *PrimitiveType) SizeOf() int64      { return t.Size }
func (t *PrimitiveType) String() string     { return t.Kind.String() }

// PointerType is a pointer to ElementType.
type PointerType struct {
	ElementType Type
	width       int64
}

// NewPointerType returns a pointer of the given pointer width.
func NewPointerType(elem Type, width int64) *PointerType {
	return &PointerType{ElementType: elem, width: width}
}

func (t *PointerType) TypeKind() TypeKind { return TypeKindPointer }
func (t *PointerType) SizeOf() int64      { return t.width }
func (t *PointerType) Element() Type      { return t.ElementType }
func (t *PointerType) String() string     { return typeString(t.ElementType) + " *" }

// ReferenceType is an lvalue or rvalue reference to ElementType.
type ReferenceType struct {
	ElementType Type
	IsRValue    bool
	width       int64
}

// NewReferenceType returns a reference occupying the given pointer width.
func NewReferenceType(elem Type, rvalue bool, width int64) *ReferenceType {
	return &ReferenceType{ElementType: elem, IsRValue: rvalue, width: width}
}

func (t *ReferenceType) TypeKind() TypeKind { return TypeKindReference }
func (t *ReferenceType) SizeOf() int64      { return t.width }
func (t *ReferenceType) Element() Type      { return t.ElementType }

func (t *ReferenceType) String() string {
	if t.IsRValue {
		return typeString(t.ElementType) + " &&"
	}
	return typeString(t.ElementType) + " &"
}

// ArrayType is a fixed or incomplete array. Count is -1 when incomplete.
type ArrayType struct {
	ElementType Type
	Count       int64
}

func (t *ArrayType) TypeKind() TypeKind { return TypeKindArray }
func (t *ArrayType) Element() Type      { return t.ElementType }

// SizeOf returns Count times the element size, or 0 for incomplete arrays.
func (t *ArrayType) SizeOf() int64 {
	if t.Count < 0 || t.ElementType == nil {
		return 0
	}
	return t.ElementType.SizeOf() * t.Count
}

// String renders dimensions outermost first: int[2][3] is two arrays of
// three ints.
func (t *ArrayType) String() string {
	var dims strings.Builder
	var elem Type = t
	for {
		a, ok := elem.(*ArrayType)
		if !ok {
			break
		}
		if a.Count < 0 {
			dims.WriteString("[]")
		} else {
			fmt.Fprintf(&dims, "[%d]", a.Count)
		}
		elem = a.ElementType
	}
	return typeString(elem) + dims.String()
}

// TypeQualifier is a cv-qualifier.
type TypeQualifier int

const (
	QualifierConst TypeQualifier = iota
	QualifierVolatile
)

// String returns the qualifier keyword.
func (q TypeQualifier) String() string {
	if q == QualifierVolatile {
		return "volatile"
	}
	return "const"
}

// QualifiedType applies one qualifier to ElementType.
type QualifiedType struct {
	ElementType Type
	Qualifier   TypeQualifier
}

func (t *QualifiedType) TypeKind() TypeKind { return TypeKindQualified }
func (t *QualifiedType) Element() Type      { return t.ElementType }

func (t *QualifiedType) SizeOf() int64 {
	if t.ElementType == nil {
		return 0
	}
	return t.ElementType.SizeOf()
}

func (t *QualifiedType) String() string {
	return t.Qualifier.String() + " " + typeString(t.ElementType)
}

// HasQualifier reports whether t is already qualified with q, looking
// through nested qualifiers.
func HasQualifier(t Type, q TypeQualifier) bool {
	for {
		qt, ok := t.(*QualifiedType)
		if !ok {
			return false
		}
		if qt.Qualifier == q {
			return true
		}
		t = qt.ElementType
	}
}

// FunctionType is the type of a function or function pointer target.
type FunctionType struct {
	ReturnType Type
	Parameters []*Parameter
	IsVariadic bool
}

func (t *FunctionType) TypeKind() TypeKind { return TypeKindFunction }
func (t *FunctionType) SizeOf() int64      { return 0 }

func (t *FunctionType) String() string {
	params := make([]string, 0, len(t.Parameters)+1)
	for _, p := range t.Parameters {
		params = append(params, typeString(p.Type))
	}
	if t.IsVariadic {
		params = append(params, "...")
	}
	return fmt.Sprintf("%s (%s)", typeString(t.ReturnType), strings.Join(params, ", "))
}

// TemplateParameterType is a template type parameter, or a template
// template parameter when IsTemplateTemplate is set.
type TemplateParameterType struct {
	Name               string
	IsVariadic         bool
	IsTemplateTemplate bool
}

func (t *TemplateParameterType) TypeKind() TypeKind { return TypeKindTemplateParameterType }
func (t *TemplateParameterType) SizeOf() int64      { return 0 }
func (t *TemplateParameterType) String() string     { return t.Name }

// TemplateParameterNonType is a non-type template parameter.
type TemplateParameterNonType struct {
	Name       string
	ValueType  Type
	IsVariadic bool
}

func (t *TemplateParameterNonType) TypeKind() TypeKind { return TypeKindTemplateParameterNonType }
func (t *TemplateParameterNonType) SizeOf() int64      { return 0 }
func (t *TemplateParameterNonType) String() string     { return t.Name }

// TemplateArgumentKind is the variant of a TemplateArgument.
type TemplateArgumentKind int

const (
	TemplateArgumentAsType TemplateArgumentKind = iota
	TemplateArgumentAsInteger
	TemplateArgumentAsExpression
	TemplateArgumentUnknown
)

// String returns the variant name.
func (k TemplateArgumentKind) String() string {
	switch k {
	case TemplateArgumentAsType:
		return "type"
	case TemplateArgumentAsInteger:
		return "integer"
	case TemplateArgumentAsExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// TemplateArgument binds one specialization argument to the generic
// template parameter it specializes.
type TemplateArgument struct {
	Kind                  TemplateArgumentKind
	ArgType               Type
	ArgInteger            int64
	ArgExpression         Expression
	ArgString             string
	SourceParam           Type
	IsSpecializedArgument bool
}

func (a *TemplateArgument) TypeKind() TypeKind { return TypeKindTemplateArgument }

func (a *TemplateArgument) SizeOf() int64 {
	if a.Kind == TemplateArgumentAsType && a.ArgType != nil {
		return a.ArgType.SizeOf()
	}
	return 0
}

func (a *TemplateArgument) String() string {
	switch a.Kind {
	case TemplateArgumentAsType:
		return typeString(a.ArgType)
	case TemplateArgumentAsInteger:
		return fmt.Sprintf("%d", a.ArgInteger)
	case TemplateArgumentAsExpression:
		if a.ArgExpression != nil {
			return a.ArgExpression.String()
		}
	}
	return a.ArgString
}

// UnexposedType is a type the front-end could not classify, kept as its
// spelling plus whatever template arguments could be recovered.
type UnexposedType struct {
	Name              string
	TemplateArguments []Type
	Size              int64
}

func (t *UnexposedType) TypeKind() TypeKind { return TypeKindUnexposed }
func (t *UnexposedType) SizeOf() int64      { return t.Size }
func (t *UnexposedType) String() string     { return t.Name }

func typeString(t Type) string {
	if t == nil {
		return "<null>"
	}
	return t.String()
}
