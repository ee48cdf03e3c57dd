package model

import "strings"

// Global is the root of one declaration forest.
type Global struct {
	node
	Members
	Namespaces *Collection[*Namespace]
	IsSystem   bool
}

func newGlobal(system bool) *Global {
	g := &Global{IsSystem: system}
	g.Members = newMembers(g)
	g.Namespaces = NewCollection[*Namespace](g)
	return g
}

// Compilation is the result of one parse call. The embedded Global holds
// user declarations; System holds declarations from system headers.
type Compilation struct {
	*Global
	System              *Global
	Macros              *Collection[*Macro]
	InclusionDirectives []*InclusionDirective
	Diagnostics         *Diagnostics
}

// NewCompilation creates an empty compilation.
func NewCompilation() *Compilation {
	c := &Compilation{
		Global:      newGlobal(false),
		System:      newGlobal(true),
		Diagnostics: &Diagnostics{},
	}
	c.Macros = NewCollection[*Macro](c.Global)
	return c
}

// HasErrors reports whether an error diagnostic was recorded.
func (c *Compilation) HasErrors() bool {
	return c.Diagnostics.HasErrors()
}

// FindByFullName resolves a "::"-qualified name in the user forest, then
// in the system forest.
func (c *Compilation) FindByFullName(name string) Declaration {
	if d := c.Global.FindByFullName(name); d != nil {
		return d
	}
	return c.System.FindByFullName(name)
}

// FindByFullName resolves a "::"-qualified name inside this forest.
func (g *Global) FindByFullName(name string) Declaration {
	parts := strings.Split(strings.TrimPrefix(name, "::"), "::")
	return findIn(g, g.Namespaces, parts)
}

func findIn(scope Container, namespaces *Collection[*Namespace], parts []string) Declaration {
	head, rest := parts[0], parts[1:]
	if namespaces != nil {
		if ns, ok := namespaces.Find(head); ok {
			if len(rest) == 0 {
				return ns
			}
			if d := findIn(ns, ns.Namespaces, rest); d != nil {
				return d
			}
		}
	}
	m := scope.Children()
	if cls, ok := m.Classes.Find(head); ok {
		if len(rest) == 0 {
			return cls
		}
		if d := findIn(cls, nil, rest); d != nil {
			return d
		}
	}
	if len(rest) > 0 {
		if e, ok := m.Enums.Find(head); ok && len(rest) == 1 {
			if item, ok := e.Items.Find(rest[0]); ok {
				return item
			}
		}
		return nil
	}
	if e, ok := m.Enums.Find(head); ok {
		return e
	}
	if f, ok := m.Functions.Find(head); ok {
		return f
	}
	if f, ok := m.Fields.Find(head); ok {
		return f
	}
	if t, ok := m.Typedefs.Find(head); ok {
		return t
	}
	return nil
}

// Walk calls fn for every declaration of the forest depth-first, in
// insertion order. Returning false from fn skips the declaration's children.
func (g *Global) Walk(fn func(Declaration) bool) {
	walkNamespaces(g.Namespaces, fn)
	walkMembers(&g.Members, fn)
}

func walkNamespaces(nss *Collection[*Namespace], fn func(Declaration) bool) {
	for _, ns := range nss.Items() {
		if fn(ns) {
			walkNamespaces(ns.Namespaces, fn)
			walkMembers(&ns.Members, fn)
		}
	}
}

func walkMembers(m *Members, fn func(Declaration) bool) {
	for _, e := range m.Enums.Items() {
		if fn(e) {
			for _, item := range e.Items.Items() {
				fn(item)
			}
		}
	}
	for _, c := range m.Classes.Items() {
		if fn(c) {
			walkMembers(&c.Members, fn)
			for _, f := range c.Constructors.Items() {
				fn(f)
			}
			for _, f := range c.Destructors.Items() {
				fn(f)
			}
		}
	}
	for _, t := range m.Typedefs.Items() {
		fn(t)
	}
	for _, f := range m.Fields.Items() {
		fn(f)
	}
	for _, f := range m.Functions.Items() {
		fn(f)
	}
}
