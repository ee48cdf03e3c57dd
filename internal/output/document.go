package output

import (
	"fmt"
	"strings"

	"github.com/hargabyte/cppast/internal/model"
)

// NewDocument converts comp into its serializable form at opts.Density.
func NewDocument(comp *model.Compilation, opts Options) *Document {
	d := opts.Density
	if !ValidateDensity(d) {
		d = DefaultDensity
	}
	c := converter{density: d}

	doc := &Document{Scope: c.global(comp.Global)}
	if opts.IncludeSystem && !isEmpty(comp.System) {
		sys := c.global(comp.System)
		doc.System = &sys
	}
	for _, m := range comp.Macros.Items() {
		doc.Macros = append(doc.Macros, c.macro(m))
	}
	if d.IncludesTokens() {
		for _, inc := range comp.InclusionDirectives {
			doc.Includes = append(doc.Includes, &IncludeOutput{
				File:     inc.FileName,
				Resolved: inc.IncludedFile,
				System:   inc.IsSystem,
				Location: location(inc.Span),
			})
		}
	}
	for _, msg := range comp.Diagnostics.Messages {
		doc.Diagnostics = append(doc.Diagnostics, &DiagnosticOutput{
			Severity: msg.Severity.String(),
			Message:  msg.Message,
			Location: position(msg.Location),
		})
	}
	return doc
}

func isEmpty(g *model.Global) bool {
	return g.Namespaces.Len() == 0 && g.Members.IsEmpty()
}

type converter struct {
	density Density
}

func (c converter) global(g *model.Global) Scope {
	s := c.members(&g.Members)
	for _, ns := range g.Namespaces.Items() {
		s.Namespaces = append(s.Namespaces, c.namespace(ns))
	}
	return s
}

func (c converter) members(m *model.Members) Scope {
	var s Scope
	for _, cls := range m.Classes.Items() {
		s.Classes = append(s.Classes, c.class(cls))
	}
	for _, e := range m.Enums.Items() {
		s.Enums = append(s.Enums, c.enum(e))
	}
	for _, f := range m.Functions.Items() {
		s.Functions = append(s.Functions, c.function(f))
	}
	for _, f := range m.Fields.Items() {
		s.Fields = append(s.Fields, c.field(f))
	}
	for _, t := range m.Typedefs.Items() {
		s.Typedefs = append(s.Typedefs, c.typedef(t))
	}
	return s
}

func (c converter) namespace(ns *model.Namespace) *NamespaceOutput {
	out := &NamespaceOutput{
		Name:     ns.Name,
		Location: location(ns.Span),
		Inline:   ns.IsInline,
		Scope:    c.members(&ns.Members),
	}
	for _, child := range ns.Namespaces.Items() {
		out.Namespaces = append(out.Namespaces, c.namespace(child))
	}
	return out
}

func (c converter) class(cls *model.Class) *ClassOutput {
	out := &ClassOutput{
		Name:      cls.Name,
		Kind:      cls.ClassKind.String(),
		Location:  location(cls.Span),
		Anonymous: cls.IsAnonymous,
		Scope:     c.members(&cls.Members),
	}
	if cls.TemplateKind != model.NormalClass {
		out.Template = cls.TemplateKind.String()
		out.Display = cls.String()
	}
	for _, f := range cls.Constructors.Items() {
		out.Constructors = append(out.Constructors, c.function(f))
	}
	for _, f := range cls.Destructors.Items() {
		out.Destructors = append(out.Destructors, c.function(f))
	}
	if c.density.IncludesTypes() {
		for _, base := range cls.BaseTypes {
			out.Bases = append(out.Bases, baseString(base))
		}
		out.Visibility = visibility(cls.Visibility)
		out.Abstract = cls.IsAbstract
		out.Final = cls.IsFinal
	}
	if c.density.IncludesLayout() {
		out.Size = cls.Size
		out.Align = cls.Align
	}
	out.Attributes = c.attributes(cls.Attributes)
	out.Comment = c.comment(cls.Comment)
	return out
}

func (c converter) enum(e *model.Enum) *EnumOutput {
	out := &EnumOutput{
		Name:     e.Name,
		Location: location(e.Span),
		Scoped:   e.IsScoped,
	}
	if c.density.IncludesTypes() {
		out.IntegerType = typeString(e.IntegerType)
		out.Visibility = visibility(e.Visibility)
	}
	for _, item := range e.Items.Items() {
		it := &EnumItemOutput{Name: item.Name, Value: item.Value}
		if c.density.IncludesLayout() {
			it.Init = exprString(item.InitExpression)
		}
		out.Items = append(out.Items, it)
	}
	out.Attributes = c.attributes(e.Attributes)
	out.Comment = c.comment(e.Comment)
	return out
}

func (c converter) function(f *model.Function) *FunctionOutput {
	out := &FunctionOutput{
		Name:     f.Name,
		Location: location(f.Span),
	}
	if c.density.IncludesTypes() {
		out.Signature = f.Signature()
		for _, p := range f.Parameters {
			out.Parameters = append(out.Parameters, &ParameterOutput{
				Name:    p.Name,
				Type:    typeString(p.Type),
				Default: exprString(p.InitExpression),
			})
		}
		out.Flags = f.Flags.Names()
		out.Storage = f.StorageQualifier.String()
		out.Visibility = visibility(f.Visibility)
		for _, tp := range f.TemplateParameters {
			out.Template = append(out.Template, typeString(tp))
		}
	}
	if c.density.IncludesLayout() {
		out.Definition = f.IsDefinition
	}
	out.Attributes = c.attributes(f.Attributes)
	out.Comment = c.comment(f.Comment)
	return out
}

func (c converter) field(f *model.Field) *FieldOutput {
	out := &FieldOutput{
		Name:      f.Name,
		Location:  location(f.Span),
		Anonymous: f.IsAnonymous,
	}
	if c.density.IncludesTypes() {
		out.Type = typeString(f.Type)
		out.Storage = f.StorageQualifier.String()
		out.Visibility = visibility(f.Visibility)
		out.ConstExpr = f.IsConstExpr
	}
	if c.density.IncludesLayout() {
		if _, inRecord := f.Parent().(*model.Class); inRecord {
			off := f.Offset
			out.Offset = &off
		}
		if f.IsBitField {
			out.BitWidth = f.BitFieldWidth
		}
		out.Init = exprString(f.InitExpression)
		out.Value = f.InitValue
	}
	out.Attributes = c.attributes(f.Attributes)
	out.Comment = c.comment(f.Comment)
	return out
}

func (c converter) typedef(t *model.Typedef) *TypedefOutput {
	out := &TypedefOutput{
		Name:     t.Name,
		Location: location(t.Span),
	}
	if c.density.IncludesTypes() {
		out.Type = typeString(t.ElementType)
		out.Visibility = visibility(t.Visibility)
	}
	out.Attributes = c.attributes(t.Attributes)
	out.Comment = c.comment(t.Comment)
	return out
}

func (c converter) macro(m *model.Macro) *MacroOutput {
	out := &MacroOutput{
		Name:     m.Name,
		Location: location(m.Span),
	}
	if c.density.IncludesTypes() {
		out.Parameters = m.Parameters
		out.Value = m.Value
	}
	if c.density.IncludesTokens() {
		for _, tok := range m.Tokens {
			out.Tokens = append(out.Tokens, strings.ToLower(tok.Kind.String())+":"+tok.Text)
		}
	}
	return out
}

func (c converter) attributes(attrs []*model.Attribute) []string {
	if !c.density.IncludesAttributes() || len(attrs) == 0 {
		return nil
	}
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.String()
	}
	return out
}

func (c converter) comment(cm model.Comment) string {
	if !c.density.IncludesComments() || cm == nil {
		return ""
	}
	return strings.TrimSpace(cm.String())
}

// location renders the start of a span as file:line.
func location(span model.SourceSpan) string {
	return position(span.Start)
}

func position(loc model.Location) string {
	if loc.File == "" {
		return ""
	}
	if loc.Line == 0 {
		return loc.File
	}
	return fmt.Sprintf("%s:%d", loc.File, loc.Line)
}

func visibility(v model.Visibility) string {
	if v == model.VisibilityDefault {
		return ""
	}
	return v.String()
}

func baseString(b *model.BaseType) string {
	var parts []string
	if b.IsVirtual {
		parts = append(parts, "virtual")
	}
	if v := visibility(b.Visibility); v != "" {
		parts = append(parts, v)
	}
	parts = append(parts, typeString(b.Type))
	return strings.Join(parts, " ")
}

func typeString(t model.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func exprString(e model.Expression) string {
	if e == nil {
		return ""
	}
	return e.String()
}

// NewDeclaration converts a single declaration at opts.Density. It returns
// nil for a declaration kind without an output form.
func NewDeclaration(d model.Declaration, opts Options) any {
	density := opts.Density
	if !ValidateDensity(density) {
		density = DefaultDensity
	}
	c := converter{density: density}

	switch v := d.(type) {
	case *model.Namespace:
		return c.namespace(v)
	case *model.Class:
		return c.class(v)
	case *model.Enum:
		return c.enum(v)
	case *model.EnumItem:
		return &EnumItemOutput{Name: v.Name, Value: v.Value, Init: exprString(v.InitExpression)}
	case *model.Function:
		return c.function(v)
	case *model.Field:
		return c.field(v)
	case *model.Typedef:
		return c.typedef(v)
	case *model.Macro:
		return c.macro(v)
	default:
		return nil
	}
}
