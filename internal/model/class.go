package model

import (
	"hash/fnv"
	"strings"
)

// ClassKind distinguishes class, struct and union records.
type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindStruct
	ClassKindUnion
)

// String returns the record keyword.
func (k ClassKind) String() string {
	switch k {
	case ClassKindStruct:
		return "struct"
	case ClassKindUnion:
		return "union"
	default:
		return "class"
	}
}

// DefaultVisibility is the member visibility before any access specifier.
func (k ClassKind) DefaultVisibility() Visibility {
	if k == ClassKindClass {
		return VisibilityPrivate
	}
	return VisibilityPublic
}

// TemplateKind tells whether a class is a template or a specialization.
type TemplateKind int

const (
	NormalClass TemplateKind = iota
	TemplateClass
	PartialTemplateClass
	TemplateSpecializedClass
)

// String returns the template kind name.
func (k TemplateKind) String() string {
	switch k {
	case TemplateClass:
		return "template"
	case PartialTemplateClass:
		return "partial_specialization"
	case TemplateSpecializedClass:
		return "specialization"
	default:
		return "normal"
	}
}

// BaseType is one entry of a class's base-specifier list.
type BaseType struct {
	Type       Type
	Visibility Visibility
	IsVirtual  bool
}

// Class is a struct, class or union declaration. It is also a Type.
type Class struct {
	Decl
	Members

	ClassKind    ClassKind
	TemplateKind TemplateKind
	// TemplateParameters are shared by reference between a generic
	// template and its specializations.
	TemplateParameters           []Type
	SpecializedTemplate          *Class
	TemplateSpecializedArguments []*TemplateArgument

	BaseTypes    []*BaseType
	Constructors *Collection[*Function]
	Destructors  *Collection[*Function]

	Visibility   Visibility
	IsDefinition bool
	IsAnonymous  bool
	IsAbstract   bool
	IsFinal      bool
	Size         int64
	Align        int64
}

// NewClass creates an empty class of the given kind.
func NewClass(kind ClassKind, name string) *Class {
	c := &Class{ClassKind: kind}
	c.Name = name
	c.Members = newMembers(c)
	c.Constructors = NewCollection[*Function](c)
	c.Destructors = NewCollection[*Function](c)
	return c
}

func (c *Class) TypeKind() TypeKind { return TypeKindStructOrClass }
func (c *Class) SizeOf() int64      { return c.Size }

// String renders the qualified name with template parameters or
// specialization arguments.
func (c *Class) String() string {
	var b strings.Builder
	b.WriteString(FullName(c))
	switch {
	case len(c.TemplateSpecializedArguments) > 0:
		b.WriteByte('<')
		for i, a := range c.TemplateSpecializedArguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	case c.TemplateKind == TemplateClass && len(c.TemplateParameters) > 0:
		b.WriteByte('<')
		for i, p := range c.TemplateParameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

// Key is the structural identity of the class: kind, qualified name,
// template parameters and specialized arguments.
func (c *Class) Key() string {
	return c.ClassKind.String() + " " + c.TemplateKind.String() + " " + c.String()
}

// Equal reports whether two classes denote the same entity.
func (c *Class) Equal(other *Class) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.Key() == other.Key()
}

// Hash returns a hash consistent with Equal.
func (c *Class) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(c.Key()))
	return h.Sum64()
}
