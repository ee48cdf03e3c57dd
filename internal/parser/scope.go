package parser

import (
	"github.com/hargabyte/cppast/internal/frontend"
)

// scope maps names to the cursors declaring them.
type scope struct {
	owner  *cursor
	parent *scope
	names  map[string][]*cursor
	// usings are scopes whose names are visible here: using-directives,
	// inline and anonymous namespaces.
	usings []*scope
}

func newScope(owner *cursor, parent *scope) *scope {
	return &scope{owner: owner, parent: parent, names: make(map[string][]*cursor)}
}

func (s *scope) declare(name string, c *cursor) {
	if name == "" {
		return
	}
	s.names[name] = append(s.names[name], c)
}

func (s *scope) use(other *scope) {
	if other == nil || other == s {
		return
	}
	for _, u := range s.usings {
		if u == other {
			return
		}
	}
	s.usings = append(s.usings, other)
}

// local finds name in s itself, its using scopes and, for records, its
// base classes.
func (s *scope) local(name string, pred func(*cursor) bool, seen map[*scope]bool) *cursor {
	if s == nil || seen[s] {
		return nil
	}
	seen[s] = true
	if found := pick(s.names[name], pred); found != nil {
		return found
	}
	for _, u := range s.usings {
		if found := u.local(name, pred, seen); found != nil {
			return found
		}
	}
	if s.owner != nil && s.owner.kind.IsRecord() {
		for _, base := range s.owner.children {
			if base.kind != frontend.CursorCXXBaseSpecifier {
				continue
			}
			t := s.owner.unit.cursorType(base)
			if decl := t.recordDecl(); decl != nil {
				if found := decl.inner.local(name, pred, seen); found != nil {
					return found
				}
			}
		}
	}
	return nil
}

// pick prefers a definition among same-named candidates.
func pick(candidates []*cursor, pred func(*cursor) bool) *cursor {
	var first *cursor
	for _, c := range candidates {
		if pred != nil && !pred(c) {
			continue
		}
		if c.isDef {
			return c
		}
		if first == nil {
			first = c
		}
	}
	return first
}

// lookup performs unqualified lookup outward from s.
func (s *scope) lookup(name string, pred func(*cursor) bool) *cursor {
	for sc := s; sc != nil; sc = sc.parent {
		if found := sc.local(name, pred, map[*scope]bool{}); found != nil {
			return found
		}
	}
	return nil
}

func isTypeDecl(c *cursor) bool {
	switch c.kind {
	case frontend.CursorStructDecl, frontend.CursorClassDecl, frontend.CursorUnionDecl,
		frontend.CursorClassTemplate, frontend.CursorEnumDecl, frontend.CursorTypedefDecl,
		frontend.CursorTypeAliasDecl, frontend.CursorTemplateTypeParameter,
		frontend.CursorTemplateTemplateParameter:
		return true
	}
	return false
}

func isScopeDecl(c *cursor) bool {
	return c.kind == frontend.CursorNamespace || isTypeDecl(c)
}

func isValueDecl(c *cursor) bool {
	switch c.kind {
	case frontend.CursorVarDecl, frontend.CursorFieldDecl, frontend.CursorEnumConstantDecl,
		frontend.CursorNonTypeTemplateParameter, frontend.CursorParmDecl:
		return true
	}
	return false
}

// namespaceScope returns the scope shared by every definition of a
// namespace within parent.
func (u *Unit) namespaceScope(owner *cursor, parent *scope, name string) *scope {
	key := nsKey{parent: parent, name: name}
	if s, ok := u.nsScopes[key]; ok {
		return s
	}
	s := newScope(owner, parent)
	u.nsScopes[key] = s
	return s
}

// scopeOf returns the scope a declaration opens, following typedefs to the
// record they name.
func (u *Unit) scopeOf(c *cursor) *scope {
	switch c.kind {
	case frontend.CursorTypedefDecl, frontend.CursorTypeAliasDecl:
		if decl := u.underlyingOf(c).recordDecl(); decl != nil {
			return decl.inner
		}
		return nil
	}
	if c.pattern != nil {
		return c.pattern.inner
	}
	return c.inner
}
