package builder

import (
	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
)

// declKey identifies a front-end entity across all the cursors that
// mention it.
type declKey struct {
	usr    string
	kind   frontend.CursorKind
	hash   uint64
	system bool
}

// keyOf builds the cache key of c. Unnamed entities and entities without a
// symbol id are told apart by their structural hash.
func keyOf(c frontend.Cursor) declKey {
	k := declKey{usr: c.USR(), kind: c.Kind()}
	switch k.kind {
	case frontend.CursorClassDecl, frontend.CursorUnionDecl:
		// A class may be forward-declared as a struct and defined as a
		// class. The symbol id already tells unions apart.
		k.kind = frontend.CursorStructDecl
	}
	if k.usr == "" || c.Spelling() == "" {
		k.hash = c.Hash()
	}
	return k
}

// scope is the build state of one container.
type scope struct {
	parent     *scope
	members    *model.Members
	namespaces *model.Collection[*model.Namespace]
	namespace  *model.Namespace
	class      *model.Class
	enum       *model.Enum
	system     bool

	// visibility is the access level in effect for the next member.
	visibility model.Visibility
	// visited is set once the defining cursor's children were walked.
	visited bool
	// pending is an unnamed record declared in this class whose role is
	// decided by the sibling that follows it.
	pending *model.Class
}

func globalScope(g *model.Global) *scope {
	return &scope{
		members:    &g.Members,
		namespaces: g.Namespaces,
		system:     g.IsSystem,
		visibility: model.VisibilityPublic,
		visited:    true,
	}
}

// scopeOf returns the container scope for declarations whose semantic
// parent is c.
func (b *Builder) scopeOf(c frontend.Cursor, system bool) *scope {
	if c == nil {
		return b.global(system)
	}
	switch k := c.Kind(); {
	case k == frontend.CursorTranslationUnit:
		return b.global(system)
	case k == frontend.CursorNamespace:
		return b.namespaceScope(c, system)
	case k == frontend.CursorEnumDecl:
		return b.enumScope(c)
	case k.IsRecord():
		return b.classScope(c)
	}
	// Linkage specs and function bodies flatten into their container.
	return b.scopeOf(c.SemanticParent(), system)
}

// ownerOf returns the scope that owns the declaration c.
func (b *Builder) ownerOf(c frontend.Cursor) *scope {
	return b.scopeOf(c.SemanticParent(), c.IsInSystemHeader())
}

func (b *Builder) namespaceScope(c frontend.Cursor, system bool) *scope {
	key := keyOf(c)
	key.system = system
	if s, ok := b.scopes[key]; ok {
		if s.namespace == nil {
			invariant("namespace %q is cached as another kind of container", c.Spelling())
		}
		return s
	}
	owner := b.scopeOf(c.SemanticParent(), system)
	if owner.namespaces == nil {
		invariant("namespace %q declared inside a non-namespace scope", c.Spelling())
	}
	ns := model.NewNamespace(c.Spelling())
	ns.IsInline = c.Flags().Has(frontend.FlagInlineNamespace)
	ns.Span = sourceSpan(c.Extent())
	s := &scope{
		parent:     owner,
		members:    &ns.Members,
		namespaces: ns.Namespaces,
		namespace:  ns,
		system:     system,
		visibility: model.VisibilityPublic,
		visited:    true,
	}
	b.scopes[key] = s
	b.decorate(&ns.Decl, c)
	owner.namespaces.Add(ns)
	b.added++
	return s
}

// classScope returns the scope of the record c, creating the class on
// first sight. Unnamed records nested in a class are left unowned until
// the sibling that follows them decides their role.
func (b *Builder) classScope(c frontend.Cursor) *scope {
	key := keyOf(c)
	if s, ok := b.scopes[key]; ok {
		if s.class == nil {
			invariant("record %q is cached as another kind of container", c.Spelling())
		}
		return s
	}
	owner := b.ownerOf(c)
	cls := model.NewClass(b.classKind(c), c.Spelling())
	cls.IsAnonymous = c.Spelling() == ""
	cls.Visibility = owner.visibility
	s := &scope{
		parent:     owner,
		members:    &cls.Members,
		class:      cls,
		system:     owner.system,
		visibility: cls.ClassKind.DefaultVisibility(),
	}
	b.scopes[key] = s
	if !cls.IsAnonymous || owner.class == nil {
		owner.members.Classes.Add(cls)
	}
	b.updateClass(cls, c)
	b.resolveTemplate(cls, c)
	b.added++
	return s
}

func (b *Builder) enumScope(c frontend.Cursor) *scope {
	key := keyOf(c)
	if s, ok := b.scopes[key]; ok {
		if s.enum == nil {
			invariant("enum %q is cached as another kind of container", c.Spelling())
		}
		return s
	}
	owner := b.ownerOf(c)
	e := model.NewEnum(c.Spelling())
	e.IsAnonymous = c.Spelling() == ""
	e.IsScoped = c.Flags().Has(frontend.FlagScopedEnum)
	e.Visibility = owner.visibility
	e.Span = sourceSpan(c.Extent())
	s := &scope{parent: owner, enum: e, system: owner.system}
	b.scopes[key] = s
	owner.members.Enums.Add(e)
	e.IntegerType = b.resolveType(c.EnumIntegerType())
	b.decorate(&e.Decl, c)
	b.added++
	return s
}

// classKind reads the record keyword. Class templates carry it after
// their template parameter list.
func (b *Builder) classKind(c frontend.Cursor) model.ClassKind {
	switch c.Kind() {
	case frontend.CursorStructDecl:
		return model.ClassKindStruct
	case frontend.CursorUnionDecl:
		return model.ClassKindUnion
	case frontend.CursorClassDecl:
		return model.ClassKindClass
	}
	depth := 0
	for _, t := range b.tokenize(c.Extent()) {
		switch {
		case t.Is("<"):
			depth++
		case t.Is(">"):
			depth--
		case t.Is(">>"):
			depth -= 2
		case depth > 0:
		case t.Is("struct"):
			return model.ClassKindStruct
		case t.Is("union"):
			return model.ClassKindUnion
		case t.Is("class"):
			return model.ClassKindClass
		}
	}
	return model.ClassKindClass
}
