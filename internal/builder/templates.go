package builder

import (
	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
)

// templateParameters collects the template parameters declared directly
// under c, in order.
func (b *Builder) templateParameters(c frontend.Cursor) []model.Type {
	var params []model.Type
	c.VisitChildren(func(child, _ frontend.Cursor) frontend.ChildVisitResult {
		if child.Kind().IsTemplateParameter() {
			params = append(params, b.templateParameter(child))
		}
		return frontend.VisitContinue
	})
	return params
}

// templateParameter returns the one model object standing for the
// parameter c, so every use of the parameter shares it.
func (b *Builder) templateParameter(c frontend.Cursor) model.Type {
	key := keyOf(c)
	if t, ok := b.tparams[key]; ok {
		return t
	}
	switch c.Kind() {
	case frontend.CursorNonTypeTemplateParameter:
		nt := &model.TemplateParameterNonType{Name: c.Spelling(), IsVariadic: c.IsVariadic()}
		b.tparams[key] = nt
		nt.ValueType = b.resolveType(c.Type())
		return nt
	case frontend.CursorTemplateTemplateParameter:
		t := &model.TemplateParameterType{Name: c.Spelling(), IsVariadic: c.IsVariadic(), IsTemplateTemplate: true}
		b.tparams[key] = t
		return t
	}
	t := &model.TemplateParameterType{Name: c.Spelling(), IsVariadic: c.IsVariadic()}
	b.tparams[key] = t
	return t
}

// resolveTemplate sets the template kind of cls and, for
// specializations, binds their arguments to the generic's parameters.
func (b *Builder) resolveTemplate(cls *model.Class, c frontend.Cursor) {
	switch {
	case c.Kind() == frontend.CursorClassTemplate:
		cls.TemplateKind = model.TemplateClass
		cls.TemplateParameters = b.templateParameters(c)
	case c.Kind() == frontend.CursorClassTemplatePartialSpecialization:
		cls.TemplateKind = model.PartialTemplateClass
		b.specialize(cls, c)
	case c.SpecializedTemplate() != nil:
		cls.TemplateKind = model.TemplateSpecializedClass
		b.specialize(cls, c)
	}
}

func (b *Builder) specialize(cls *model.Class, c frontend.Cursor) {
	gen := c.SpecializedTemplate()
	if gen == nil {
		return
	}
	generic := b.classScope(gen).class
	cls.SpecializedTemplate = generic
	cls.TemplateParameters = generic.TemplateParameters

	n := c.NumTemplateArguments()
	args := make([]*model.TemplateArgument, 0, max(n, 0))
	for i := 0; i < n; i++ {
		arg := &model.TemplateArgument{ArgString: c.TemplateArgumentSpelling(i)}
		if i < len(generic.TemplateParameters) {
			arg.SourceParam = generic.TemplateParameters[i]
		}
		switch kind := c.TemplateArgumentKind(i); kind {
		case frontend.TemplateArgumentType:
			arg.Kind = model.TemplateArgumentAsType
			arg.ArgType = b.resolveType(c.TemplateArgumentType(i))
			_, isParam := arg.ArgType.(*model.TemplateParameterType)
			arg.IsSpecializedArgument = !isParam
		case frontend.TemplateArgumentIntegral:
			arg.Kind = model.TemplateArgumentAsInteger
			arg.ArgInteger = c.TemplateArgumentValue(i)
			arg.IsSpecializedArgument = true
		default:
			arg.Kind = model.TemplateArgumentUnknown
			b.warnf("unhandled template argument kind %s in %s", kind, c.DisplayName())
		}
		args = append(args, arg)
	}
	if cls.TemplateKind == model.TemplateSpecializedClass && len(args) < len(generic.TemplateParameters) {
		// Omitted trailing arguments take the generic's defaults, which
		// the front-end does not report.
		for _, p := range generic.TemplateParameters[len(args):] {
			args = append(args, &model.TemplateArgument{Kind: model.TemplateArgumentUnknown, SourceParam: p})
		}
	}
	cls.TemplateSpecializedArguments = args
}
