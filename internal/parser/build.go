package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/cppast/internal/frontend"
)

// walker turns tree-sitter syntax into the cursor tree.
type walker struct {
	unit *Unit
	f    *sourceFile
}

// walkCtx is where new cursors go and how names resolve there.
type walkCtx struct {
	parent   *cursor
	scope    *scope
	access   frontend.AccessSpecifier
	inRecord bool
	head     *templateHead
}

// templateHead is a template<...> clause waiting for its declaration.
type templateHead struct {
	node     *sitter.Node
	params   []*cursor
	scope    *scope
	explicit bool
}

// declSpecs are the specifiers written before the declarators.
type declSpecs struct {
	storage    frontend.StorageClass
	flags      frontend.DeclFlags
	isConst    bool
	isVolatile bool
}

var declaratorTypes = map[string]bool{
	"identifier": true, "field_identifier": true, "type_identifier": true,
	"pointer_declarator": true, "reference_declarator": true, "array_declarator": true,
	"function_declarator": true, "init_declarator": true, "parenthesized_declarator": true,
	"attributed_declarator": true, "qualified_identifier": true, "operator_name": true,
	"destructor_name": true, "template_function": true, "operator_cast": true,
	"structured_binding_declarator": true,
}

func (w *walker) file(f *sourceFile, parent *cursor) {
	w.visitFile(f, &walkCtx{parent: parent, scope: w.unit.global})
}

func (w *walker) visitFile(f *sourceFile, ctx *walkCtx) {
	prev := w.f
	w.f = f
	f.visited = true
	w.children(f.Result.Root, ctx)
	w.f = prev
}

func (w *walker) children(n *sitter.Node, ctx *walkCtx) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.visit(n.NamedChild(i), ctx)
	}
}

func (w *walker) visit(n *sitter.Node, ctx *walkCtx) {
	switch n.Type() {
	case "preproc_include":
		w.include(n, ctx)
	case "preproc_def", "preproc_function_def":
		w.macro(n, ctx)
	case "namespace_definition":
		w.namespace(n, ctx)
	case "linkage_specification":
		w.linkage(n, ctx)
	case "template_declaration":
		w.template(n, ctx)
	case "struct_specifier", "class_specifier", "union_specifier":
		w.record(n, ctx)
	case "enum_specifier":
		w.enum(n, ctx)
	case "declaration", "field_declaration", "function_definition":
		w.declaration(n, ctx)
	case "type_definition":
		w.typedef(n, ctx)
	case "alias_declaration":
		w.alias(n, ctx)
	case "using_declaration":
		w.using(n, ctx)
	case "access_specifier":
		w.accessSpecifier(n, ctx)
	case "static_assert_declaration":
		w.newCursor(frontend.CursorStaticAssert, "", n, ctx)
	case "friend_declaration":
		w.newCursor(frontend.CursorFriendDecl, "", n, ctx)
	case "declaration_list", "field_declaration_list", "preproc_ifdef", "preproc_if",
		"preproc_else", "preproc_elif", "ERROR":
		w.children(n, ctx)
	}
}

// newCursor creates a cursor for node n under ctx.parent.
func (w *walker) newCursor(kind frontend.CursorKind, name string, n *sitter.Node, ctx *walkCtx) *cursor {
	c := &cursor{
		unit:     w.unit,
		kind:     kind,
		name:     name,
		file:     w.f,
		node:     n,
		start:    int(n.StartByte()),
		end:      int(n.EndByte()),
		loc:      int(n.StartByte()),
		system:   w.f.System,
		scope:    ctx.scope,
		access:   ctx.access,
		bitWidth: -1,
	}
	ctx.parent.add(c)
	if ctx.parent.kind == frontend.CursorLinkageSpec {
		c.semantic = ctx.parent.semantic
	}
	w.unit.register(c)
	return c
}

// adopt makes a template clause's parameters children of c.
func (w *walker) adopt(c *cursor, head *templateHead) {
	if head == nil {
		return
	}
	c.start = int(head.node.StartByte())
	c.scope = head.scope
	head.scope.owner = c
	c.tparams = head.params
	for _, p := range head.params {
		p.semantic, p.lexical = c, c
	}
	c.children = append(c.children, head.params...)
}

func (w *walker) include(n *sitter.Node, ctx *walkCtx) {
	path := n.ChildByFieldName("path")
	name := strings.Trim(w.f.text(path), "<>\"")
	c := w.newCursor(frontend.CursorInclusionDirective, name, n, ctx)
	c.end = trimSpaceBack(w.f.Source, c.start, c.end)
	for _, site := range w.f.Includes {
		if site.Offset != int(n.StartByte()) {
			continue
		}
		c.display = site.Path
		if site.File != nil && !site.File.visited {
			w.visitFile(site.File, ctx)
		}
		return
	}
}

func (w *walker) macro(n *sitter.Node, ctx *walkCtx) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	c := w.newCursor(frontend.CursorMacroDefinition, w.f.text(name), n, ctx)
	c.start, c.loc = int(name.StartByte()), int(name.StartByte())
	end := name.EndByte()
	if params := n.ChildByFieldName("parameters"); params != nil {
		end = params.EndByte()
	}
	if value := n.ChildByFieldName("value"); value != nil {
		end = value.EndByte()
	}
	c.end = trimSpaceBack(w.f.Source, c.start, int(end))
	c.functionLike = n.Type() == "preproc_function_def"
	c.isDef = true
}

func (w *walker) namespace(n *sitter.Node, ctx *walkCtx) {
	nameNode := n.ChildByFieldName("name")
	names := []string{""}
	if nameNode != nil {
		names = strings.Split(w.f.text(nameNode), "::")
	}
	inline := hasChildText(w.f, n, "inline")
	cur := ctx
	for i, name := range names {
		name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "inline "))
		c := w.newCursor(frontend.CursorNamespace, name, n, cur)
		c.isDef = true
		if nameNode != nil {
			c.loc = int(nameNode.StartByte())
		}
		last := i == len(names)-1
		if last && inline {
			c.flags |= frontend.FlagInlineNamespace
		}
		inner, created := w.unit.namespaceScopeFor(c, cur.scope, name)
		if created {
			cur.scope.declare(name, c)
		}
		if name == "" || (last && inline) {
			cur.scope.use(inner)
		}
		c.inner = inner
		cur = &walkCtx{parent: c, scope: inner}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		w.children(body, cur)
	}
}

func (w *walker) linkage(n *sitter.Node, ctx *walkCtx) {
	c := w.newCursor(frontend.CursorLinkageSpec, "", n, ctx)
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	inner := &walkCtx{parent: c, scope: ctx.scope, access: ctx.access, inRecord: ctx.inRecord}
	if body.Type() == "declaration_list" {
		w.children(body, inner)
		return
	}
	w.visit(body, inner)
}

func (w *walker) template(n *sitter.Node, ctx *walkCtx) {
	head := &templateHead{node: n, scope: newScope(nil, ctx.scope)}
	var decl *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "template_parameter_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				w.templateParam(child.NamedChild(j), head)
			}
		case "comment", "requires_clause":
		default:
			decl = child
		}
	}
	head.explicit = len(head.params) == 0
	if decl == nil {
		return
	}
	inner := *ctx
	inner.head = head
	w.visit(decl, &inner)
}

func (w *walker) templateParam(p *sitter.Node, head *templateHead) {
	c := &cursor{
		unit:     w.unit,
		file:     w.f,
		node:     p,
		start:    int(p.StartByte()),
		end:      int(p.EndByte()),
		loc:      int(p.StartByte()),
		system:   w.f.System,
		scope:    head.scope,
		bitWidth: -1,
	}
	var nameNode *sitter.Node
	switch p.Type() {
	case "type_parameter_declaration", "variadic_type_parameter_declaration":
		c.kind = frontend.CursorTemplateTypeParameter
		nameNode = lastNamedOfType(p, "type_identifier")
		c.variadic = p.Type() == "variadic_type_parameter_declaration"
	case "optional_type_parameter_declaration":
		c.kind = frontend.CursorTemplateTypeParameter
		nameNode = p.ChildByFieldName("name")
		c.valueNode = p.ChildByFieldName("default_type")
	case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
		c.kind = frontend.CursorNonTypeTemplateParameter
		c.typeNode = p.ChildByFieldName("type")
		c.declarator = p.ChildByFieldName("declarator")
		c.valueNode = p.ChildByFieldName("default_value")
		c.variadic = p.Type() == "variadic_parameter_declaration"
		nameNode = declaratorName(c.declarator)
	case "template_template_parameter_declaration":
		c.kind = frontend.CursorTemplateTemplateParameter
		for i := 0; i < int(p.NamedChildCount()); i++ {
			child := p.NamedChild(i)
			if strings.Contains(child.Type(), "type_parameter_declaration") {
				nameNode = lastNamedOfType(child, "type_identifier")
				if nameNode == nil {
					nameNode = child.ChildByFieldName("name")
				}
			}
		}
	default:
		return
	}
	if nameNode != nil {
		c.name = w.f.text(nameNode)
		c.loc = int(nameNode.StartByte())
	}
	head.scope.declare(c.name, c)
	head.params = append(head.params, c)
	w.unit.register(c)
}

func recordKindOf(nodeType string) frontend.CursorKind {
	switch nodeType {
	case "class_specifier":
		return frontend.CursorClassDecl
	case "union_specifier":
		return frontend.CursorUnionDecl
	default:
		return frontend.CursorStructDecl
	}
}

// record creates the cursor for a struct, class or union specifier.
func (w *walker) record(n *sitter.Node, ctx *walkCtx) *cursor {
	if existing := w.unit.cursorFor(w.f, n); existing != nil {
		return existing
	}
	head := ctx.head
	lookupScope, declScope := ctx.scope, ctx.scope
	if head != nil {
		lookupScope = head.scope
	}

	kind := recordKindOf(n.Type())
	nameNode := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	var owner *cursor
	var argsNode *sitter.Node
	name := ""
	if nameNode != nil {
		last := nameNode
		if nameNode.Type() == "qualified_identifier" {
			parts, global := flattenQualified(nameNode)
			last = parts[len(parts)-1]
			r := w.unit.resolverFor(w.f, lookupScope, nil)
			owner = r.scopeCursor(parts[:len(parts)-1], global)
		}
		if last.Type() == "template_type" {
			argsNode = last.ChildByFieldName("arguments")
			last = last.ChildByFieldName("name")
		}
		name = w.f.text(last)
	}

	c := w.newCursor(kind, name, n, ctx)
	c.recordKind = kind
	c.isDef = body != nil
	if nameNode != nil {
		c.loc = int(nameNode.StartByte())
	}
	if owner != nil {
		c.semantic = owner
		if s := w.unit.scopeOf(owner); s != nil {
			declScope = s
		}
	}
	if name == "" {
		c.flags |= frontend.FlagAnonymous
	}
	if head != nil && !head.explicit {
		c.kind = frontend.CursorClassTemplate
		if argsNode != nil {
			c.kind = frontend.CursorClassTemplatePartialSpecialization
		}
	}
	w.adopt(c, head)
	if head == nil {
		c.scope = lookupScope
	}

	if argsNode != nil {
		generic := declScope.lookup(name, func(d *cursor) bool { return d.kind == frontend.CursorClassTemplate })
		c.specialized = generic
		c.targsNode = argsNode
		if generic != nil {
			first := w.unit.firstDecl(generic)
			w.unit.specs[first] = append(w.unit.specs[first], c)
			c.recordKind = generic.recordKind
		}
	} else {
		declScope.declare(name, c)
	}

	c.inner = newScope(c, c.scope)
	if clause := childOfType(n, "base_class_clause"); clause != nil {
		w.bases(clause, c)
	}
	if body != nil {
		access := frontend.AccessPublic
		if kind == frontend.CursorClassDecl {
			access = frontend.AccessPrivate
		}
		w.children(body, &walkCtx{parent: c, scope: c.inner, access: access, inRecord: true})
	}
	return c
}

func (w *walker) bases(clause *sitter.Node, c *cursor) {
	access := frontend.AccessPublic
	if c.recordKind == frontend.CursorClassDecl {
		access = frontend.AccessPrivate
	}
	current, virtual := access, false
	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		text := w.f.text(child)
		switch {
		case child.Type() == "access_specifier":
			current = accessOf(text)
		case text == "virtual":
			virtual = true
		case child.Type() == "type_identifier" || child.Type() == "qualified_identifier" || child.Type() == "template_type":
			b := &cursor{
				unit:     w.unit,
				kind:     frontend.CursorCXXBaseSpecifier,
				name:     text,
				file:     w.f,
				node:     child,
				start:    int(child.StartByte()),
				end:      int(child.EndByte()),
				loc:      int(child.StartByte()),
				system:   w.f.System,
				scope:    c.scope,
				access:   current,
				typeNode: child,
				bitWidth: -1,
			}
			if virtual {
				b.flags |= frontend.FlagVirtualBase
			}
			c.add(b)
			w.unit.register(b)
			current, virtual = access, false
		}
	}
}

func accessOf(text string) frontend.AccessSpecifier {
	switch {
	case strings.Contains(text, "public"):
		return frontend.AccessPublic
	case strings.Contains(text, "protected"):
		return frontend.AccessProtected
	case strings.Contains(text, "private"):
		return frontend.AccessPrivate
	}
	return frontend.AccessInvalid
}

func (w *walker) accessSpecifier(n *sitter.Node, ctx *walkCtx) {
	ctx.access = accessOf(w.f.text(n))
	w.newCursor(frontend.CursorCXXAccessSpecifier, "", n, ctx)
}

func (w *walker) enum(n *sitter.Node, ctx *walkCtx) *cursor {
	if existing := w.unit.cursorFor(w.f, n); existing != nil {
		return existing
	}
	nameNode := n.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = w.f.text(nameNode)
	}
	c := w.newCursor(frontend.CursorEnumDecl, name, n, ctx)
	if nameNode != nil {
		c.loc = int(nameNode.StartByte())
	}
	c.typeNode = n.ChildByFieldName("base")
	if c.typeNode == nil {
		c.typeNode = childOfType(n, "primitive_type", "sized_type_specifier", "type_identifier", "qualified_identifier")
		if c.typeNode != nil && nameNode != nil && sameNode(c.typeNode, nameNode) {
			c.typeNode = nil
		}
	}
	if hasChildText(w.f, n, "class") || hasChildText(w.f, n, "struct") {
		c.flags |= frontend.FlagScopedEnum
	}
	if name == "" {
		c.flags |= frontend.FlagAnonymous
	}
	ctx.scope.declare(name, c)
	c.inner = newScope(c, ctx.scope)

	body := n.ChildByFieldName("body")
	c.isDef = body != nil
	if body == nil {
		return c
	}
	inner := &walkCtx{parent: c, scope: c.inner, access: ctx.access}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		e := body.NamedChild(i)
		if e.Type() != "enumerator" {
			continue
		}
		en := e.ChildByFieldName("name")
		item := w.newCursor(frontend.CursorEnumConstantDecl, w.f.text(en), e, inner)
		item.isDef = true
		item.valueNode = e.ChildByFieldName("value")
		if item.valueNode != nil {
			w.expr(item.valueNode, item)
		}
		c.inner.declare(item.name, item)
		if !c.flags.Has(frontend.FlagScopedEnum) {
			ctx.scope.declare(item.name, item)
		}
	}
	return c
}

// declaration handles declarations, member declarations and function
// definitions: any embedded tag definition first, then one cursor per
// declarator.
func (w *walker) declaration(n *sitter.Node, ctx *walkCtx) {
	head := ctx.head
	typeNode := n.ChildByFieldName("type")
	decls := w.declarators(n, typeNode)

	if typeNode != nil && isTagSpecifier(typeNode.Type()) {
		if typeNode.ChildByFieldName("body") != nil || len(decls) == 0 {
			tagCtx := *ctx
			if len(decls) > 0 {
				tagCtx.head = nil
			}
			var tag *cursor
			if typeNode.Type() == "enum_specifier" {
				tag = w.enum(typeNode, &tagCtx)
			} else {
				tag = w.record(typeNode, &tagCtx)
			}
			if len(decls) == 0 && ctx.inRecord && tag.name == "" && tag.kind != frontend.CursorEnumDecl {
				tag.anonField = true
				w.liftAnonymousMembers(tag, ctx.scope)
			}
		}
	}

	specs := w.specifiers(n, typeNode)
	for _, d := range decls {
		if d.Type() == "operator_cast" {
			w.function(n, d, d, typeNode, specs, ctx, head)
			continue
		}
		if fn := functionDeclaratorOf(d); fn != nil {
			w.function(n, d, fn, typeNode, specs, ctx, head)
			continue
		}
		w.variable(n, d, typeNode, specs, ctx)
	}
}

// liftAnonymousMembers makes the fields of an anonymous struct or union
// visible in the enclosing record.
func (w *walker) liftAnonymousMembers(tag *cursor, s *scope) {
	s.use(tag.inner)
}

// declarators returns the declarator children of n that follow its type.
func (w *walker) declarators(n, typeNode *sitter.Node) []*sitter.Node {
	defaultValue := n.ChildByFieldName("default_value")
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() || !declaratorTypes[child.Type()] {
			continue
		}
		if typeNode != nil && child.StartByte() < typeNode.EndByte() {
			continue
		}
		if defaultValue != nil && sameNode(child, defaultValue) {
			continue
		}
		if i > 0 && w.f.text(n.Child(i-1)) == "=" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func isTagSpecifier(t string) bool {
	switch t {
	case "struct_specifier", "class_specifier", "union_specifier", "enum_specifier":
		return true
	}
	return false
}

func (w *walker) specifiers(n, typeNode *sitter.Node) declSpecs {
	var s declSpecs
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "storage_class_specifier", "type_qualifier", "virtual", "virtual_function_specifier",
			"explicit_function_specifier":
		default:
			if child.IsNamed() {
				continue
			}
		}
		for _, word := range strings.Fields(w.f.text(child)) {
			switch word {
			case "static":
				s.storage = frontend.StorageStatic
				s.flags |= frontend.FlagStatic
			case "extern":
				if s.storage == frontend.StorageNone {
					s.storage = frontend.StorageExtern
				}
			case "thread_local", "_Thread_local":
				s.storage = frontend.StorageThreadLocal
			case "inline":
				s.flags |= frontend.FlagInline
			case "virtual":
				s.flags |= frontend.FlagVirtual
			case "explicit":
				s.flags |= frontend.FlagExplicit
			case "constexpr", "consteval", "constinit":
				s.flags |= frontend.FlagConstExpr
			case "const":
				s.isConst = true
			case "volatile":
				s.isVolatile = true
			}
		}
	}
	return s
}

func (w *walker) variable(n, d, typeNode *sitter.Node, specs declSpecs, ctx *walkCtx) {
	nameNode := declaratorName(d)
	if nameNode == nil {
		return
	}
	kind := frontend.CursorVarDecl
	if ctx.inRecord && specs.storage != frontend.StorageStatic {
		kind = frontend.CursorFieldDecl
	}
	name := w.f.text(nameNode)
	var owner *cursor
	if nameNode.Type() == "qualified_identifier" {
		parts, global := flattenQualified(nameNode)
		owner = w.unit.resolverFor(w.f, ctx.scope, nil).scopeCursor(parts[:len(parts)-1], global)
		name = w.f.text(parts[len(parts)-1])
	}

	c := w.newCursor(kind, name, n, ctx)
	c.loc = int(nameNode.StartByte())
	c.typeNode, c.declarator = typeNode, d
	c.specConst = specs.isConst || specs.flags.Has(frontend.FlagConstExpr)
	c.specVolat = specs.isVolatile
	c.storage = specs.storage
	c.flags = specs.flags & (frontend.FlagConstExpr | frontend.FlagStatic | frontend.FlagInline)
	if owner != nil {
		c.semantic = owner
		c.scope = w.memberScope(owner, ctx.scope)
	}

	if d.Type() == "init_declarator" {
		c.valueNode = d.ChildByFieldName("value")
	} else if v := n.ChildByFieldName("default_value"); v != nil {
		c.valueNode = v
	}
	if clause := childOfType(n, "bitfield_clause"); clause != nil && clause.NamedChildCount() > 0 {
		c.bitWidth = int(w.unit.evalInt(clause.NamedChild(0), w.f, c.scope, nil, -1))
		if c.bitWidth < 0 {
			c.bitWidth = 0
		}
	}
	c.isDef = kind == frontend.CursorFieldDecl || specs.storage != frontend.StorageExtern || c.valueNode != nil
	if owner == nil {
		ctx.scope.declare(name, c)
	}
	if c.valueNode != nil {
		w.expr(c.valueNode, c)
	}
}

// memberScope resolves names of an out-of-line member in its owner first.
func (w *walker) memberScope(owner *cursor, outer *scope) *scope {
	s := newScope(nil, outer)
	if inner := w.unit.scopeOf(owner); inner != nil {
		s.use(inner)
	}
	if owner.scope != nil && owner.scope != outer {
		s.use(owner.scope)
	}
	return s
}

func (w *walker) function(n, d, fn, typeNode *sitter.Node, specs declSpecs, ctx *walkCtx, head *templateHead) {
	var nameNode *sitter.Node
	name := ""
	if fn.Type() == "operator_cast" {
		nameNode = fn
		name = "operator " + strings.Join(strings.Fields(w.f.text(fn.ChildByFieldName("type"))), " ")
		fn = fn.ChildByFieldName("declarator")
		if fn == nil {
			return
		}
	} else {
		nameNode = unparen(fn.ChildByFieldName("declarator"))
		if nameNode == nil {
			return
		}
		name = strings.Join(strings.Fields(w.f.text(nameNode)), " ")
	}

	owner := ctx.parent
	if owner.kind == frontend.CursorLinkageSpec {
		owner = owner.semantic
	}
	qualified := false
	if nameNode.Type() == "qualified_identifier" {
		parts, global := flattenQualified(nameNode)
		lookup := ctx.scope
		if head != nil {
			lookup = head.scope
		}
		if o := w.unit.resolverFor(w.f, lookup, nil).scopeCursor(parts[:len(parts)-1], global); o != nil {
			owner = o
			qualified = true
		}
		last := parts[len(parts)-1]
		if last.Type() == "template_function" {
			last = last.ChildByFieldName("name")
		}
		name = strings.Join(strings.Fields(w.f.text(last)), " ")
		nameNode = last
	}
	if nameNode.Type() == "template_function" {
		if inner := nameNode.ChildByFieldName("name"); inner != nil {
			name = w.f.text(inner)
		}
	}

	inClass := owner.kind.IsRecord()
	kind := frontend.CursorFunctionDecl
	switch {
	case fn.Type() == "abstract_function_declarator" && strings.HasPrefix(name, "operator "):
		kind = frontend.CursorConversionFunction
	case strings.HasPrefix(name, "~"):
		kind = frontend.CursorDestructor
	case inClass && name == owner.name:
		kind = frontend.CursorConstructor
	case inClass:
		kind = frontend.CursorCXXMethod
	}
	if head != nil && !head.explicit {
		kind = frontend.CursorFunctionTemplate
	}

	c := w.newCursor(kind, name, n, ctx)
	c.loc = int(nameNode.StartByte())
	c.typeNode, c.declarator = typeNode, d
	c.specConst = specs.isConst
	c.specVolat = specs.isVolatile
	c.storage = specs.storage
	if c.storage == frontend.StorageThreadLocal {
		c.storage = frontend.StorageNone
	}
	c.flags = specs.flags
	w.adopt(c, head)
	if qualified {
		c.semantic = owner
		c.scope = w.memberScope(owner, c.scope)
	}

	// Qualifiers and specifiers written after the parameter list.
	for i := 0; i < int(fn.ChildCount()); i++ {
		child := fn.Child(i)
		switch text := w.f.text(child); {
		case child.Type() == "type_qualifier" && text == "const":
			c.flags |= frontend.FlagConst
		case child.Type() == "type_qualifier" && text == "volatile":
			c.flags |= frontend.FlagVolatile
		case child.Type() == "virtual_specifier":
			if strings.Contains(text, "override") {
				c.flags |= frontend.FlagOverride
			}
			if strings.Contains(text, "final") {
				c.flags |= frontend.FlagFinal
			}
		case child.Type() == "noexcept":
			if !strings.Contains(text, "false") {
				c.flags |= frontend.FlagNoExcept
			}
		}
	}
	pure := false
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "default_method_clause":
			c.flags |= frontend.FlagDefaulted
		case "delete_method_clause":
			c.flags |= frontend.FlagDeleted
		case "pure_virtual_clause":
			pure = true
		}
	}
	if v := n.ChildByFieldName("default_value"); v != nil && strings.TrimSpace(w.f.text(v)) == "0" {
		pure = true
	}
	if pure {
		c.flags |= frontend.FlagPureVirtual | frontend.FlagVirtual
		owner.flags |= frontend.FlagAbstract
	}
	if c.flags.Has(frontend.FlagOverride) || c.flags.Has(frontend.FlagFinal) {
		c.flags |= frontend.FlagVirtual
	}
	if c.flags.Has(frontend.FlagVirtual) && inClass {
		owner.hasVirtual = true
	}
	c.isDef = n.ChildByFieldName("body") != nil ||
		c.flags.Has(frontend.FlagDefaulted) || c.flags.Has(frontend.FlagDeleted)

	if params := fn.ChildByFieldName("parameters"); params != nil {
		w.parameters(params, c)
	}
	if !qualified {
		ctx.scope.declare(name, c)
	}
}

func (w *walker) parameters(list *sitter.Node, fn *cursor) {
	ctx := &walkCtx{parent: fn, scope: fn.scope}
	count := int(list.NamedChildCount())
	for i := 0; i < int(list.ChildCount()); i++ {
		p := list.Child(i)
		switch p.Type() {
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
		default:
			if p.Type() == "variadic_parameter" || w.f.text(p) == "..." {
				fn.variadic = true
			}
			continue
		}
		typeNode := p.ChildByFieldName("type")
		declarator := p.ChildByFieldName("declarator")
		if count == 1 && declarator == nil && typeNode != nil && w.f.text(typeNode) == "void" {
			return
		}
		nameNode := declaratorName(declarator)
		name := ""
		if nameNode != nil {
			name = w.f.text(nameNode)
		}
		c := w.newCursor(frontend.CursorParmDecl, name, p, ctx)
		if nameNode != nil {
			c.loc = int(nameNode.StartByte())
		}
		specs := w.specifiers(p, typeNode)
		c.typeNode, c.declarator = typeNode, declarator
		c.specConst, c.specVolat = specs.isConst, specs.isVolatile
		c.variadic = p.Type() == "variadic_parameter_declaration"
		c.isDef = true
		c.valueNode = p.ChildByFieldName("default_value")
		if c.valueNode != nil {
			w.expr(c.valueNode, c)
		}
		fn.params = append(fn.params, c)
	}
}

func (w *walker) typedef(n *sitter.Node, ctx *walkCtx) {
	typeNode := n.ChildByFieldName("type")
	if typeNode != nil && isTagSpecifier(typeNode.Type()) && typeNode.ChildByFieldName("body") != nil {
		tagCtx := *ctx
		tagCtx.head = nil
		if typeNode.Type() == "enum_specifier" {
			w.enum(typeNode, &tagCtx)
		} else {
			w.record(typeNode, &tagCtx)
		}
	}
	specs := w.specifiers(n, typeNode)
	for _, d := range w.declarators(n, typeNode) {
		nameNode := declaratorName(d)
		if nameNode == nil {
			continue
		}
		c := w.newCursor(frontend.CursorTypedefDecl, w.f.text(nameNode), n, ctx)
		c.loc = int(nameNode.StartByte())
		c.typeNode, c.declarator = typeNode, d
		c.specConst, c.specVolat = specs.isConst, specs.isVolatile
		c.isDef = true
		ctx.scope.declare(c.name, c)
	}
}

func (w *walker) alias(n *sitter.Node, ctx *walkCtx) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	c := w.newCursor(frontend.CursorTypeAliasDecl, w.f.text(nameNode), n, ctx)
	c.loc = int(nameNode.StartByte())
	c.typeNode = n.ChildByFieldName("type")
	c.isDef = true
	w.adopt(c, ctx.head)
	ctx.scope.declare(c.name, c)
}

func (w *walker) using(n *sitter.Node, ctx *walkCtx) {
	target := childOfType(n, "qualified_identifier", "identifier", "namespace_identifier", "type_identifier")
	if target == nil {
		return
	}
	r := w.unit.resolverFor(w.f, ctx.scope, nil)
	parts, global := flattenQualified(target)
	if hasChildText(w.f, n, "namespace") {
		w.newCursor(frontend.CursorUsingDirective, w.f.text(target), n, ctx)
		if ns := r.scopeCursor(parts, global); ns != nil && ns.kind == frontend.CursorNamespace {
			ctx.scope.use(ns.inner)
		}
		return
	}
	name := w.f.text(parts[len(parts)-1])
	w.newCursor(frontend.CursorUsingDeclaration, name, n, ctx)
	var found []*cursor
	switch {
	case len(parts) > 1:
		if owner := r.scopeCursor(parts[:len(parts)-1], global); owner != nil {
			if s := w.unit.scopeOf(owner); s != nil {
				found = s.names[name]
			}
		}
	case global:
		found = w.unit.global.names[name]
	}
	for _, d := range found {
		ctx.scope.declare(name, d)
	}
}

// namespaceScopeFor returns the shared scope of a namespace and whether it
// was created by this call.
func (u *Unit) namespaceScopeFor(owner *cursor, parent *scope, name string) (*scope, bool) {
	key := nsKey{parent: parent, name: name}
	if s, ok := u.nsScopes[key]; ok {
		return s, false
	}
	return u.namespaceScope(owner, parent, name), true
}

// functionDeclaratorOf returns the function declarator that directly
// declares a function, or nil when the declarator names an object.
func functionDeclaratorOf(d *sitter.Node) *sitter.Node {
	var last *sitter.Node
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			last = d
			d = d.ChildByFieldName("declarator")
		case "pointer_declarator", "reference_declarator", "array_declarator":
			last = d
			d = innerDeclarator(d)
		case "parenthesized_declarator", "init_declarator", "attributed_declarator":
			d = innerDeclarator(d)
		default:
			if last != nil && last.Type() == "function_declarator" {
				return last
			}
			return nil
		}
	}
	return nil
}

// innerDeclarator returns the declarator nested in d.
func innerDeclarator(d *sitter.Node) *sitter.Node {
	if inner := d.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	for i := int(d.NamedChildCount()) - 1; i >= 0; i-- {
		child := d.NamedChild(i)
		switch child.Type() {
		case "type_qualifier", "attribute_specifier", "attribute_declaration", "ms_pointer_modifier", "comment":
			continue
		}
		return child
	}
	return nil
}

// declaratorName returns the node naming the declared entity.
func declaratorName(d *sitter.Node) *sitter.Node {
	for d != nil {
		switch d.Type() {
		case "identifier", "field_identifier", "type_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "template_function", "operator_cast":
			return d
		case "variadic_declarator":
			d = childOfType(d, "identifier")
		default:
			if !strings.HasSuffix(d.Type(), "declarator") {
				return nil
			}
			d = innerDeclarator(d)
		}
	}
	return nil
}

func unparen(d *sitter.Node) *sitter.Node {
	for d != nil && d.Type() == "parenthesized_declarator" {
		d = innerDeclarator(d)
	}
	return d
}

// flattenQualified splits a::b::c into its components.
func flattenQualified(n *sitter.Node) ([]*sitter.Node, bool) {
	var parts []*sitter.Node
	global := false
	for n != nil && n.Type() == "qualified_identifier" {
		s := n.ChildByFieldName("scope")
		if s == nil {
			if len(parts) == 0 {
				global = true
			}
		} else {
			parts = append(parts, s)
		}
		n = n.ChildByFieldName("name")
	}
	if n != nil {
		parts = append(parts, n)
	}
	return parts, global
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func childOfType(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

func lastNamedOfType(n *sitter.Node, typ string) *sitter.Node {
	var found *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == typ {
			found = child
		}
	}
	return found
}

// hasChildText reports whether any direct child of n is spelled text.
func hasChildText(f *sourceFile, n *sitter.Node, text string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if f.text(n.Child(i)) == text {
			return true
		}
	}
	return false
}

func trimSpaceBack(src []byte, start, end int) int {
	for end > start && (src[end-1] == ' ' || src[end-1] == '\t' || src[end-1] == '\n' || src[end-1] == '\r') {
		end--
	}
	return end
}
