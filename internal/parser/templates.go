package parser

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/cppast/internal/frontend"
)

// templateArg is one resolved template argument.
type templateArg struct {
	kind     frontend.TemplateArgumentKind
	ty       *ctype
	value    int64
	spelling string
	pack     []templateArg
}

// substitution binds template parameters to arguments.
type substitution map[*cursor]templateArg

// templateArgs resolves a template_argument_list.
func (u *Unit) templateArgs(list *sitter.Node, f *sourceFile, sc *scope, subst substitution) []templateArg {
	if list == nil {
		return nil
	}
	r := u.resolverFor(f, sc, subst)
	var out []templateArg
	for i := 0; i < int(list.NamedChildCount()); i++ {
		a := list.NamedChild(i)
		if a.Type() == "comment" {
			continue
		}
		out = append(out, r.templateArg(a))
	}
	return out
}

func (r *resolver) templateArg(a *sitter.Node) templateArg {
	text := normalize(r.f.text(a))
	if a.Type() == "type_descriptor" {
		// A lone name may denote a constant rather than a type.
		t := a.ChildByFieldName("type")
		if t != nil && t.Type() == "type_identifier" && a.ChildByFieldName("declarator") == nil {
			if d := r.sc.lookup(r.f.text(t), nil); d != nil && isValueDecl(d) {
				return r.valueArg(t, text)
			}
		}
		ty := r.descriptor(a)
		return templateArg{kind: frontend.TemplateArgumentType, ty: ty, spelling: ty.spelling}
	}
	if a.Type() == "parameter_pack_expansion" || strings.HasSuffix(text, "...") {
		return templateArg{kind: frontend.TemplateArgumentExpression, spelling: text}
	}
	if text == "nullptr" {
		return templateArg{kind: frontend.TemplateArgumentNullPtr, spelling: text}
	}
	return r.valueArg(a, text)
}

func (r *resolver) valueArg(n *sitter.Node, text string) templateArg {
	if n.Type() == "identifier" || n.Type() == "type_identifier" {
		if d := r.sc.lookup(text, nil); d != nil && d.kind == frontend.CursorNonTypeTemplateParameter {
			if a, ok := r.subst[d]; ok {
				return a
			}
		}
	}
	if v, ok := r.u.evalNode(n, r.f, r.sc, r.subst); ok && v.kind == frontend.EvalInt {
		spelling := text
		if n.Type() != "number_literal" {
			spelling = strconv.FormatInt(v.i, 10)
		}
		return templateArg{kind: frontend.TemplateArgumentIntegral, value: v.i, spelling: spelling}
	}
	if strings.HasPrefix(text, "&") {
		return templateArg{kind: frontend.TemplateArgumentDeclaration, spelling: text}
	}
	return templateArg{kind: frontend.TemplateArgumentExpression, spelling: text}
}

// argListSpelling formats arguments the way they appear after a template
// name, with packs spliced in place.
func (u *Unit) argListSpelling(args []templateArg) string {
	var parts []string
	for _, a := range flattenPacks(args) {
		parts = append(parts, a.spelling)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// paramListSpelling formats a template's parameter names.
func (u *Unit) paramListSpelling(c *cursor) string {
	parts := make([]string, len(c.tparams))
	for i, p := range c.tparams {
		parts[i] = p.name
		if p.variadic {
			parts[i] += "..."
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// packArg groups args into a pack spelled as its elements joined by ", ".
func packArg(args []templateArg) templateArg {
	parts := make([]string, 0, len(args))
	for _, a := range flattenPacks(args) {
		parts = append(parts, a.spelling)
	}
	return templateArg{kind: frontend.TemplateArgumentPack, pack: args, spelling: strings.Join(parts, ", ")}
}

func flattenPacks(args []templateArg) []templateArg {
	out := make([]templateArg, 0, len(args))
	for _, a := range args {
		if a.kind == frontend.TemplateArgumentPack {
			out = append(out, flattenPacks(a.pack)...)
			continue
		}
		out = append(out, a)
	}
	return out
}

func argKey(a templateArg) string {
	switch a.kind {
	case frontend.TemplateArgumentType:
		if a.ty == nil {
			return "T?"
		}
		return "T" + a.ty.canonical().id
	case frontend.TemplateArgumentIntegral:
		return "I" + strconv.FormatInt(a.value, 10)
	case frontend.TemplateArgumentPack:
		return "{" + argsKey(a.pack) + "}"
	}
	return "X" + a.spelling
}

func argsKey(args []templateArg) string {
	keys := make([]string, len(args))
	for i, a := range args {
		keys[i] = argKey(a)
	}
	return strings.Join(keys, ",")
}

// completeArgs fills defaulted parameters and groups trailing arguments
// into a pack for a variadic parameter. It also returns the bindings.
func (u *Unit) completeArgs(generic *cursor, args []templateArg) ([]templateArg, substitution) {
	subst := substitution{}
	out := make([]templateArg, 0, len(generic.tparams))
	for i, p := range generic.tparams {
		if p.variadic {
			var rest []templateArg
			if i < len(args) {
				rest = args[i:]
			}
			pack := packArg(rest)
			out = append(out, pack)
			subst[p] = pack
			return out, subst
		}
		if i < len(args) {
			out = append(out, args[i])
			subst[p] = args[i]
			continue
		}
		if p.valueNode == nil {
			break
		}
		r := u.resolverFor(p.file, p.scope, subst)
		var a templateArg
		switch p.kind {
		case frontend.CursorTemplateTypeParameter:
			t := r.descriptor(p.valueNode)
			a = templateArg{kind: frontend.TemplateArgumentType, ty: t, spelling: t.spelling}
		default:
			a = r.valueArg(p.valueNode, normalize(p.file.text(p.valueNode)))
		}
		out = append(out, a)
		subst[p] = a
	}
	if len(args) > len(out) && len(generic.tparams) < len(args) {
		out = append(out, args[len(out):]...)
	}
	return out, subst
}

// specialize returns the declaration standing for generic<args>: an
// explicit specialization, or an implicit instantiation of the best
// matching partial specialization or of the template itself.
func (u *Unit) specialize(generic *cursor, args []templateArg) *cursor {
	full, subst := u.completeArgs(generic, args)
	flat := flattenPacks(full)
	first := u.firstDecl(generic)
	key := fmt.Sprintf("%p|%s", first, argsKey(flat))
	if inst, ok := u.instances[key]; ok {
		return inst
	}
	specs := u.specs[first]
	for _, s := range specs {
		if s.kind == frontend.CursorClassTemplatePartialSpecialization {
			continue
		}
		written, _ := u.completeArgs(generic, s.templateArgs())
		if argsKey(flattenPacks(written)) == argsKey(flat) {
			u.instances[key] = s
			return s
		}
	}

	pattern, bound := generic, subst
	for _, s := range specs {
		if s.kind != frontend.CursorClassTemplatePartialSpecialization {
			continue
		}
		if m, ok := u.match(s, flat); ok {
			pattern, bound = s, m
			break
		}
	}

	kind := pattern.recordKind
	if kind == frontend.CursorInvalid {
		kind = frontend.CursorStructDecl
	}
	inst := &cursor{
		unit:        u,
		kind:        kind,
		recordKind:  kind,
		name:        generic.name,
		file:        pattern.file,
		node:        pattern.node,
		start:       pattern.start,
		end:         pattern.end,
		loc:         pattern.loc,
		semantic:    generic.semantic,
		lexical:     generic.semantic,
		system:      pattern.system,
		implicit:    true,
		isDef:       pattern.isDef,
		access:      generic.access,
		specialized: generic,
		pattern:     pattern,
		targs:       full,
		targsDone:   true,
		subst:       bound,
		scope:       pattern.scope,
		inner:       pattern.inner,
		hasVirtual:  pattern.hasVirtual,
		packed:      pattern.packed,
		align:       pattern.align,
		flags:       pattern.flags &^ frontend.FlagAnonymous,
		bitWidth:    -1,
	}
	u.instances[key] = inst
	u.register(inst)
	return inst
}

// firstDecl returns the first declaration of a class template in the
// scope that declares it. Specializations are filed under it.
func (u *Unit) firstDecl(generic *cursor) *cursor {
	if generic.scope == nil || generic.scope.parent == nil {
		return generic
	}
	for _, d := range generic.scope.parent.names[generic.name] {
		if d.kind == frontend.CursorClassTemplate {
			return d
		}
	}
	return generic
}

// match deduces the parameters of a partial specialization from args.
func (u *Unit) match(partial *cursor, args []templateArg) (substitution, bool) {
	pattern := flattenPacks(partial.templateArgs())
	subst := substitution{}
	for i, p := range pattern {
		if p.kind == frontend.TemplateArgumentExpression && strings.HasSuffix(p.spelling, "...") {
			tp := paramNamed(partial, strings.TrimSpace(strings.TrimSuffix(p.spelling, "...")))
			if tp == nil || !tp.variadic || i != len(pattern)-1 {
				return nil, false
			}
			var rest []templateArg
			if i < len(args) {
				rest = args[i:]
			}
			subst[tp] = packArg(rest)
			return subst, u.allBound(partial, subst)
		}
		if i >= len(args) || !u.unify(p, args[i], partial, subst) {
			return nil, false
		}
	}
	if len(pattern) != len(args) {
		return nil, false
	}
	return subst, u.allBound(partial, subst)
}

func (u *Unit) allBound(partial *cursor, subst substitution) bool {
	for _, tp := range partial.tparams {
		if _, ok := subst[tp]; !ok {
			return false
		}
	}
	return true
}

func paramNamed(c *cursor, name string) *cursor {
	for _, p := range c.tparams {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (u *Unit) unify(p, a templateArg, partial *cursor, subst substitution) bool {
	switch p.kind {
	case frontend.TemplateArgumentType:
		return a.kind == frontend.TemplateArgumentType && u.unifyType(p.ty, a.ty, partial, subst)
	case frontend.TemplateArgumentExpression:
		if tp := paramNamed(partial, p.spelling); tp != nil && tp.kind == frontend.CursorNonTypeTemplateParameter {
			if prev, ok := subst[tp]; ok {
				return argKey(prev) == argKey(a)
			}
			subst[tp] = a
			return true
		}
	}
	return argKey(p) == argKey(a)
}

func (u *Unit) unifyType(pt, at *ctype, partial *cursor, subst substitution) bool {
	if pt == nil || at == nil {
		return false
	}
	ac := at.canonical()
	if pt.isConst || pt.isVolatile {
		if (pt.isConst && !ac.isConst) || (pt.isVolatile && !ac.isVolatile) {
			return false
		}
		rest := u.qualified(ac.base(), ac.isConst && !pt.isConst, ac.isVolatile && !pt.isVolatile)
		return u.unifyType(pt.base(), rest, partial, subst)
	}
	for pt.kind == frontend.TypeElaborated {
		pt = pt.elem
	}
	if pt.kind == frontend.TypeTemplateTypeParm && pt.decl != nil && pt.decl.semantic == partial {
		if prev, ok := subst[pt.decl]; ok {
			return prev.ty != nil && prev.ty.canonical() == ac
		}
		subst[pt.decl] = templateArg{kind: frontend.TemplateArgumentType, ty: at, spelling: at.spelling}
		return true
	}
	switch pt.kind {
	case frontend.TypePointer, frontend.TypeLValueReference, frontend.TypeRValueReference, frontend.TypeIncompleteArray:
		return ac.kind == pt.kind && u.unifyType(pt.elem, ac.elem, partial, subst)
	case frontend.TypeConstantArray:
		return ac.kind == pt.kind && ac.count == pt.count && u.unifyType(pt.elem, ac.elem, partial, subst)
	case frontend.TypeFunctionProto:
		if ac.kind != pt.kind || len(ac.params) != len(pt.params) || ac.variadic != pt.variadic {
			return false
		}
		for i := range pt.params {
			if !u.unifyType(pt.params[i], ac.params[i], partial, subst) {
				return false
			}
		}
		return u.unifyType(pt.elem, ac.elem, partial, subst)
	case frontend.TypeRecord:
		pd, ad := pt.decl, ac.decl
		if ac.kind == frontend.TypeRecord && pd.specialized != nil && ad.specialized != nil && pd.specialized == ad.specialized {
			pa, aa := flattenPacks(pd.templateArgs()), flattenPacks(ad.templateArgs())
			if len(pa) != len(aa) {
				return false
			}
			for i := range pa {
				if !u.unify(pa[i], aa[i], partial, subst) {
					return false
				}
			}
			return true
		}
	}
	return pt.canonical() == ac
}
