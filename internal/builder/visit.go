package builder

import (
	"log/slog"

	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
)

// visit builds the declaration c found lexically inside lex.
func (b *Builder) visit(c frontend.Cursor, lex *scope) {
	b.at = location(c.Location())
	if lex.pending != nil && !b.claimsPending(c, lex.pending) {
		b.flushPending(lex)
	}

	switch k := c.Kind(); {
	case k == frontend.CursorNamespace:
		s := b.namespaceScope(c, c.IsInSystemHeader())
		b.visitChildren(c, s)
	case k == frontend.CursorLinkageSpec:
		b.visitChildren(c, lex)
	case k.IsRecord():
		b.visitRecord(c, lex)
	case k == frontend.CursorEnumDecl:
		b.visitEnum(c)
	case k == frontend.CursorFieldDecl, k == frontend.CursorVarDecl:
		b.visitField(c, lex)
	case k == frontend.CursorFunctionDecl, k == frontend.CursorCXXMethod,
		k == frontend.CursorConstructor, k == frontend.CursorDestructor,
		k == frontend.CursorConversionFunction, k == frontend.CursorFunctionTemplate:
		b.visitFunction(c)
	case k == frontend.CursorTypedefDecl, k == frontend.CursorTypeAliasDecl:
		if p := lex.pending; p != nil {
			lex.pending = nil
			lex.members.Classes.Add(p)
		}
		b.typedef(c)
	case k == frontend.CursorCXXAccessSpecifier:
		lex.visibility = visibility(c.Access())
	case k == frontend.CursorCXXBaseSpecifier:
		b.visitBase(c, lex)
	case k == frontend.CursorMacroDefinition:
		b.visitMacro(c)
	case k == frontend.CursorInclusionDirective:
		b.visitInclusion(c)
	case k.IsAttribute(), k.IsExpression(), k.IsTemplateParameter(),
		k == frontend.CursorParmDecl, k == frontend.CursorEnumConstantDecl,
		k == frontend.CursorUsingDirective, k == frontend.CursorUsingDeclaration,
		k == frontend.CursorStaticAssert, k == frontend.CursorFriendDecl,
		k == frontend.CursorMacroExpansion, k == frontend.CursorTypeRef,
		k == frontend.CursorTemplateRef, k == frontend.CursorNamespaceRef:
	default:
		b.warnf("unsupported declaration %s %q", k, c.Spelling())
	}
}

func (b *Builder) visitChildren(c frontend.Cursor, s *scope) {
	c.VisitChildren(func(child, _ frontend.Cursor) frontend.ChildVisitResult {
		b.visit(child, s)
		return frontend.VisitContinue
	})
	b.flushPending(s)
}

func (b *Builder) visitRecord(c frontend.Cursor, lex *scope) {
	s := b.classScope(c)
	cls := s.class
	if c.IsDefinition() && !s.visited {
		s.visited = true
		b.updateClass(cls, c)
		b.visitChildren(c, s)
	}
	if cls.Parent() == nil && cls.IsAnonymous && s.parent == lex {
		lex.pending = cls
	}
}

func (b *Builder) updateClass(cls *model.Class, c frontend.Cursor) {
	if c.IsDefinition() || !cls.IsDefinition {
		cls.Span = sourceSpan(c.Extent())
	}
	cls.IsDefinition = cls.IsDefinition || c.IsDefinition()
	if t := c.Type(); t != nil {
		if size := t.SizeOf(); size > 0 {
			cls.Size = size
		}
		if align := t.AlignOf(); align > 0 {
			cls.Align = align
		}
	}
	flags := c.Flags()
	cls.IsAbstract = cls.IsAbstract || flags.Has(frontend.FlagAbstract)
	cls.IsFinal = cls.IsFinal || flags.Has(frontend.FlagFinal)
	b.decorate(&cls.Decl, c)
}

func (b *Builder) visitBase(c frontend.Cursor, lex *scope) {
	if lex.class == nil {
		return
	}
	vis := visibility(c.Access())
	if vis == model.VisibilityDefault {
		vis = lex.class.ClassKind.DefaultVisibility()
	}
	lex.class.BaseTypes = append(lex.class.BaseTypes, &model.BaseType{
		Type:       b.resolveType(c.Type()),
		Visibility: vis,
		IsVirtual:  c.Flags().Has(frontend.FlagVirtualBase),
	})
}

// claimsPending reports whether c refers to the pending unnamed record,
// which is then resolved by c itself.
func (b *Builder) claimsPending(c frontend.Cursor, pending *model.Class) bool {
	switch c.Kind() {
	case frontend.CursorFieldDecl, frontend.CursorVarDecl:
		return b.refersTo(c.Type(), pending, false)
	case frontend.CursorTypedefDecl, frontend.CursorTypeAliasDecl:
		return b.refersTo(c.TypedefUnderlyingType(), pending, false)
	}
	return false
}

// refersTo reports whether t names cls. With direct set, only sugar and
// qualifiers are looked through; otherwise pointers and arrays are too.
func (b *Builder) refersTo(t frontend.Type, cls *model.Class, direct bool) bool {
	for depth := 0; t != nil && depth < 32; depth++ {
		switch t.Kind() {
		case frontend.TypeElaborated:
			t = t.NamedType()
		case frontend.TypePointer, frontend.TypeLValueReference, frontend.TypeRValueReference:
			if direct {
				return false
			}
			t = t.Pointee()
		case frontend.TypeConstantArray, frontend.TypeIncompleteArray:
			if direct {
				return false
			}
			t = t.ArrayElement()
		case frontend.TypeRecord:
			d := t.Declaration()
			if d == nil {
				return false
			}
			s, ok := b.scopes[keyOf(d)]
			return ok && s.class == cls
		default:
			return false
		}
	}
	return false
}

// flushPending turns a pending unnamed record into an unnamed member
// placed right after the previous field.
func (b *Builder) flushPending(s *scope) {
	p := s.pending
	if p == nil {
		return
	}
	s.pending = nil
	f := model.NewField("", p)
	f.IsAnonymous = true
	f.Visibility = s.visibility
	f.Span = p.Span
	f.Offset = b.nextOffset(s)
	s.members.Fields.Add(f)
	b.added++
}

// nextOffset infers the offset of a member placed after the last
// non-static field of s.
func (b *Builder) nextOffset(s *scope) int64 {
	if s.class != nil && s.class.ClassKind == model.ClassKindUnion {
		return 0
	}
	fields := s.members.Fields.Items()
	for i := len(fields) - 1; i >= 0; i-- {
		prev := fields[i]
		if prev.StorageQualifier != model.StorageNone {
			continue
		}
		size := int64(0)
		if prev.Type != nil {
			size = prev.Type.SizeOf()
		}
		return prev.Offset + size
	}
	return 0
}

func (b *Builder) visitEnum(c frontend.Cursor) {
	s := b.enumScope(c)
	if !c.IsDefinition() || s.visited {
		return
	}
	s.visited = true
	e := s.enum
	e.Span = sourceSpan(c.Extent())
	b.decorate(&e.Decl, c)
	c.VisitChildren(func(child, _ frontend.Cursor) frontend.ChildVisitResult {
		if child.Kind() != frontend.CursorEnumConstantDecl {
			return frontend.VisitContinue
		}
		item := &model.EnumItem{Value: child.EnumConstantValue()}
		item.Name = child.Spelling()
		item.Span = sourceSpan(child.Extent())
		if init := firstExpression(child); init != nil {
			item.InitExpression = b.expression(init)
		}
		b.decorate(&item.Decl, child)
		e.Items.Add(item)
		return frontend.VisitContinue
	})
}

func (b *Builder) visitField(c frontend.Cursor, lex *scope) {
	key := keyOf(c)
	if d, ok := b.decls[key]; ok {
		f, ok := d.(*model.Field)
		if !ok {
			invariant("variable %q is cached as %T", c.Spelling(), d)
		}
		if f.InitExpression == nil {
			b.setInitializer(f, c)
		}
		b.decorate(&f.Decl, c)
		return
	}

	owner := b.ownerOf(c)
	f := model.NewField(c.Spelling(), b.resolveType(c.Type()))
	f.Visibility = owner.visibility
	f.StorageQualifier = storage(c.StorageClass())
	if w := c.BitFieldWidth(); w >= 0 {
		f.IsBitField = true
		f.BitFieldWidth = w
	}
	f.IsConstExpr = c.Flags().Has(frontend.FlagConstExpr)
	f.Span = sourceSpan(c.Extent())

	if p := lex.pending; p != nil {
		lex.pending = nil
		if !b.refersTo(c.Type(), p, true) {
			lex.members.Classes.Add(p)
		} else if c.FieldOffset() < 0 {
			f.Offset = b.nextOffset(lex)
		}
	}
	if off := c.FieldOffset(); off >= 0 {
		f.Offset = off
	}
	b.setInitializer(f, c)
	b.decorate(&f.Decl, c)
	b.decls[key] = f
	owner.members.Fields.Add(f)
	b.added++
}

func (b *Builder) setInitializer(f *model.Field, c frontend.Cursor) {
	init := firstExpression(c)
	if init == nil {
		return
	}
	f.InitExpression = b.expression(init)
	f.InitValue = c.Evaluate().Value()
}

func (b *Builder) visitFunction(c frontend.Cursor) {
	key := keyOf(c)
	if d, ok := b.decls[key]; ok {
		fn, ok := d.(*model.Function)
		if !ok {
			invariant("function %q is cached as %T", c.Spelling(), d)
		}
		b.log.Debug("function redeclared", slog.String("usr", key.usr), slog.Bool("definition", c.IsDefinition()))
		if c.IsDefinition() && !fn.IsDefinition {
			fn.IsDefinition = true
			fn.Span = sourceSpan(c.Extent())
			fn.Parameters = b.parameters(c)
		}
		b.decorate(&fn.Decl, c)
		return
	}

	owner := b.ownerOf(c)
	fn := model.NewFunction(c.Spelling())
	fn.ReturnType = b.resolveType(c.ResultType())
	fn.Flags = functionFlags(c)
	fn.StorageQualifier = storage(c.StorageClass())
	fn.Visibility = owner.visibility
	fn.IsDefinition = c.IsDefinition()
	fn.Span = sourceSpan(c.Extent())
	if c.Kind() == frontend.CursorFunctionTemplate {
		fn.TemplateParameters = b.templateParameters(c)
	}
	fn.Parameters = b.parameters(c)
	b.decorate(&fn.Decl, c)
	b.decls[key] = fn

	switch {
	case c.Kind() == frontend.CursorConstructor && owner.class != nil:
		owner.class.Constructors.Add(fn)
	case c.Kind() == frontend.CursorDestructor && owner.class != nil:
		owner.class.Destructors.Add(fn)
	default:
		owner.members.Functions.Add(fn)
	}
	b.added++
}

func (b *Builder) parameters(c frontend.Cursor) []*model.Parameter {
	args := c.Arguments()
	params := make([]*model.Parameter, 0, len(args))
	for _, a := range args {
		p := &model.Parameter{
			Name: a.Spelling(),
			Type: b.resolveType(a.Type()),
			Span: sourceSpan(a.Extent()),
		}
		if init := firstExpression(a); init != nil {
			p.InitExpression = b.expression(init)
			p.InitValue = a.Evaluate().Value()
		}
		p.Attributes = b.attributes(a)
		params = append(params, p)
	}
	return params
}

var functionFlagMap = []struct {
	from frontend.DeclFlags
	to   model.FunctionFlags
}{
	{frontend.FlagConst, model.FunctionFlagConst},
	{frontend.FlagVirtual, model.FunctionFlagVirtual},
	{frontend.FlagPureVirtual, model.FunctionFlagPure},
	{frontend.FlagStatic, model.FunctionFlagStatic},
	{frontend.FlagInline, model.FunctionFlagInline},
	{frontend.FlagExplicit, model.FunctionFlagExplicit},
	{frontend.FlagDeleted, model.FunctionFlagDeleted},
	{frontend.FlagDefaulted, model.FunctionFlagDefaulted},
	{frontend.FlagNoExcept, model.FunctionFlagNoExcept},
	{frontend.FlagOverride, model.FunctionFlagOverride},
	{frontend.FlagFinal, model.FunctionFlagFinal},
	{frontend.FlagConstExpr, model.FunctionFlagConstExpr},
}

func functionFlags(c frontend.Cursor) model.FunctionFlags {
	var out model.FunctionFlags
	flags := c.Flags()
	for _, m := range functionFlagMap {
		if flags.Has(m.from) {
			out |= m.to
		}
	}
	if c.IsVariadic() {
		out |= model.FunctionFlagVariadic
	}
	if c.StorageClass() == frontend.StorageStatic {
		out |= model.FunctionFlagStatic
	}
	switch c.Kind() {
	case frontend.CursorConstructor:
		out |= model.FunctionFlagConstructor
	case frontend.CursorDestructor:
		out |= model.FunctionFlagDestructor
	case frontend.CursorConversionFunction:
		out |= model.FunctionFlagConversion
	case frontend.CursorFunctionTemplate:
		out |= model.FunctionFlagFunctionTemplate
	}
	if p := c.SemanticParent(); p != nil && p.Kind().IsRecord() {
		out |= model.FunctionFlagMethod
	}
	return out
}

func (b *Builder) typedef(c frontend.Cursor) model.Type {
	key := keyOf(c)
	if t, ok := b.typedefs[key]; ok {
		return t
	}
	under := c.TypedefUnderlyingType()
	if b.opts.AutoSquashTypedef {
		if t := b.squash(c, under); t != nil {
			b.typedefs[key] = t
			return t
		}
	}
	owner := b.ownerOf(c)
	td := model.NewTypedef(c.Spelling(), nil)
	b.typedefs[key] = td
	td.ElementType = b.resolveType(under)
	td.Visibility = owner.visibility
	td.Span = sourceSpan(c.Extent())
	b.decorate(&td.Decl, c)
	owner.members.Typedefs.Add(td)
	b.added++
	return td
}

// squash returns the record or enum a typedef names when the two can be
// merged: the tag is unnamed or has the typedef's own name.
func (b *Builder) squash(c frontend.Cursor, under frontend.Type) model.Type {
	t := under
	for t != nil && t.Kind() == frontend.TypeElaborated {
		t = t.NamedType()
	}
	if t == nil || t.IsConst() || t.IsVolatile() {
		return nil
	}
	d := t.Declaration()
	if d == nil {
		return nil
	}
	name := c.Spelling()
	switch t.Kind() {
	case frontend.TypeRecord:
		s := b.classScope(d)
		cls := s.class
		if !cls.IsAnonymous && cls.Name != name {
			return nil
		}
		if cls.IsAnonymous {
			cls.Name = name
			cls.IsAnonymous = false
			if cls.Parent() == nil {
				s.parent.members.Classes.Add(cls)
			}
			s.parent.members.Classes.Invalidate()
		}
		return cls
	case frontend.TypeEnum:
		s := b.enumScope(d)
		e := s.enum
		if !e.IsAnonymous && e.Name != name {
			return nil
		}
		if e.IsAnonymous {
			e.Name = name
			e.IsAnonymous = false
			s.parent.members.Enums.Invalidate()
		}
		return e
	}
	return nil
}
