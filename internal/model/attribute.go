package model

import (
	"strconv"
	"strings"
)

// AttributeKind records which engine produced an attribute.
type AttributeKind int

const (
	// SystemAttribute comes from a dedicated front-end attribute cursor.
	SystemAttribute AttributeKind = iota
	// AnnotateAttribute comes from __attribute__((annotate("..."))).
	AnnotateAttribute
	// CommentAttribute is written inside a doc comment.
	CommentAttribute
	// TokenAttribute was recovered by re-tokenizing declaration source.
	TokenAttribute
)

// String returns the kind name.
func (k AttributeKind) String() string {
	switch k {
	case AnnotateAttribute:
		return "annotate"
	case CommentAttribute:
		return "comment"
	case TokenAttribute:
		return "token"
	default:
		return "system"
	}
}

// Attribute is one attribute attached to a declaration. An empty
// Arguments means the attribute had no argument list.
type Attribute struct {
	Kind       AttributeKind
	Name       string
	Scope      string
	Arguments  string
	IsVariadic bool
	Span       SourceSpan
}

// FullName returns scope::name, or name without a scope.
func (a *Attribute) FullName() string {
	if a.Scope == "" {
		return a.Name
	}
	return a.Scope + "::" + a.Name
}

// String renders the attribute in C++11 syntax.
func (a *Attribute) String() string {
	var b strings.Builder
	b.WriteString(a.FullName())
	if a.Arguments != "" {
		b.WriteByte('(')
		b.WriteString(a.Arguments)
		b.WriteByte(')')
	}
	if a.IsVariadic {
		b.WriteString("...")
	}
	return b.String()
}

// SameAs reports whether both attributes have the same name, scope and
// arguments, regardless of which engine produced them. A quoted argument
// equals its unquoted text.
func (a *Attribute) SameAs(other *Attribute) bool {
	return a.Name == other.Name && a.Scope == other.Scope &&
		unquote(a.Arguments) == unquote(other.Arguments)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return s
}

// FindAttribute returns the first attribute with the given name.
func FindAttribute(attrs []*Attribute, name string) *Attribute {
	for _, a := range attrs {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// IsPublicExport reports whether the declaration is exported from a shared
// library: __declspec(dllexport) or visibility("default").
func IsPublicExport(d Declaration) bool {
	for _, a := range d.GetDecl().Attributes {
		switch a.Name {
		case "dllexport":
			return true
		case "visibility":
			if strings.Trim(a.Arguments, `" `) == "default" {
				return true
			}
		}
	}
	return false
}
