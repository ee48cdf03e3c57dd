// Package model defines the declaration model produced by the builder:
// namespaces, classes, enums, functions, fields, typedefs, macros, types,
// expressions, attributes and doc comments.
//
// Every element has exactly one owner for its lifetime. Ownership is
// transferred by Collection.Add, which refuses an element that already has
// a parent.
package model

import "strings"

// Node is any element of the model that can be owned by another.
type Node interface {
	Parent() Node
	setParent(Node)
}

type node struct {
	parent Node
}

// Parent returns the owner of this element, or nil for a root.
func (n *node) Parent() Node { return n.parent }

func (n *node) setParent(p Node) { n.parent = p }

// Location is a position in a source file.
type Location struct {
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
	Offset int    `json:"offset" yaml:"offset"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// SourceSpan is the start and end of a declaration.
type SourceSpan struct {
	Start Location `json:"start" yaml:"start"`
	End   Location `json:"end" yaml:"end"`
}

// Visibility is the access level of a member.
type Visibility int

const (
	VisibilityDefault Visibility = iota
	VisibilityPublic
	VisibilityProtected
	VisibilityPrivate
)

// String returns the C++ keyword for the visibility.
func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	default:
		return "default"
	}
}

// StorageQualifier is the storage class of a variable or function.
type StorageQualifier int

const (
	StorageNone StorageQualifier = iota
	StorageExtern
	StorageStatic
	StorageThreadLocal
)

// String returns the C++ keyword for the storage qualifier.
func (s StorageQualifier) String() string {
	switch s {
	case StorageExtern:
		return "extern"
	case StorageStatic:
		return "static"
	case StorageThreadLocal:
		return "thread_local"
	default:
		return ""
	}
}

// Decl holds what every named declaration carries.
type Decl struct {
	node
	Name       string
	Comment    Comment
	Attributes []*Attribute
	Span       SourceSpan
}

// GetName returns the declaration's unqualified name.
func (d *Decl) GetName() string { return d.Name }

// GetDecl returns the shared declaration data.
func (d *Decl) GetDecl() *Decl { return d }

// Declaration is a named model element.
type Declaration interface {
	Node
	GetName() string
	GetDecl() *Decl
}

// Container is an element owning ordered member lists.
type Container interface {
	Node
	Children() *Members
}

// Members are the ordered child lists shared by namespaces, classes and
// the compilation roots.
type Members struct {
	Fields    *Collection[*Field]
	Functions *Collection[*Function]
	Enums     *Collection[*Enum]
	Classes   *Collection[*Class]
	Typedefs  *Collection[*Typedef]
}

func newMembers(owner Node) Members {
	return Members{
		Fields:    NewCollection[*Field](owner),
		Functions: NewCollection[*Function](owner),
		Enums:     NewCollection[*Enum](owner),
		Classes:   NewCollection[*Class](owner),
		Typedefs:  NewCollection[*Typedef](owner),
	}
}

// Children returns the member lists.
func (m *Members) Children() *Members { return m }

// IsEmpty reports whether no member was added.
func (m *Members) IsEmpty() bool {
	return m.Fields.Len() == 0 && m.Functions.Len() == 0 && m.Enums.Len() == 0 &&
		m.Classes.Len() == 0 && m.Typedefs.Len() == 0
}

// FullName returns the "::"-qualified name of a declaration.
func FullName(d Declaration) string {
	parts := []string{d.GetName()}
	for p := d.Parent(); p != nil; p = p.Parent() {
		pd, ok := p.(Declaration)
		if !ok {
			break
		}
		if pd.GetName() != "" {
			parts = append(parts, pd.GetName())
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// KindOf returns a lowercase name for the declaration's kind. Classes
// report their record keyword.
func KindOf(d Declaration) string {
	switch v := d.(type) {
	case *Namespace:
		return "namespace"
	case *Class:
		return v.ClassKind.String()
	case *Enum:
		return "enum"
	case *EnumItem:
		return "enum_item"
	case *Function:
		return "function"
	case *Field:
		return "field"
	case *Typedef:
		return "typedef"
	case *Macro:
		return "macro"
	default:
		return "declaration"
	}
}
