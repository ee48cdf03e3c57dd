package builder

import (
	"github.com/hargabyte/cppast/internal/frontend"
	"github.com/hargabyte/cppast/internal/model"
)

var primitiveKinds = map[frontend.TypeKind]model.PrimitiveKind{
	frontend.TypeVoid:       model.PrimitiveVoid,
	frontend.TypeBool:       model.PrimitiveBool,
	frontend.TypeCharS:      model.PrimitiveChar,
	frontend.TypeSChar:      model.PrimitiveSignedChar,
	frontend.TypeUChar:      model.PrimitiveUnsignedChar,
	frontend.TypeWChar:      model.PrimitiveWChar,
	frontend.TypeChar16:     model.PrimitiveChar16,
	frontend.TypeChar32:     model.PrimitiveChar32,
	frontend.TypeShort:      model.PrimitiveShort,
	frontend.TypeUShort:     model.PrimitiveUnsignedShort,
	frontend.TypeInt:        model.PrimitiveInt,
	frontend.TypeUInt:       model.PrimitiveUnsignedInt,
	frontend.TypeLong:       model.PrimitiveLong,
	frontend.TypeULong:      model.PrimitiveUnsignedLong,
	frontend.TypeLongLong:   model.PrimitiveLongLong,
	frontend.TypeULongLong:  model.PrimitiveUnsignedLongLong,
	frontend.TypeInt128:     model.PrimitiveInt128,
	frontend.TypeUInt128:    model.PrimitiveUnsignedInt128,
	frontend.TypeFloat:      model.PrimitiveFloat,
	frontend.TypeDouble:     model.PrimitiveDouble,
	frontend.TypeLongDouble: model.PrimitiveLongDouble,
	frontend.TypeNullPtr:    model.PrimitiveNullPtr,
	frontend.TypeAuto:       model.PrimitiveAuto,
}

// resolveType translates a front-end type, memoized per unit by identity.
func (b *Builder) resolveType(t frontend.Type) model.Type {
	if t == nil {
		return nil
	}
	id := t.Identity()
	if r, ok := b.types[id]; ok {
		return r
	}
	r := b.convertType(t)
	if b.types != nil {
		b.types[id] = r
	}
	return r
}

func (b *Builder) convertType(t frontend.Type) model.Type {
	if !t.IsConst() && !t.IsVolatile() {
		return b.convertKind(t)
	}
	var inner model.Type
	if u := t.Unqualified(); u != nil && u.Identity() != t.Identity() {
		inner = b.resolveType(u)
	} else {
		inner = b.convertKind(t)
	}
	if t.IsConst() && !model.HasQualifier(inner, model.QualifierConst) {
		inner = &model.QualifiedType{ElementType: inner, Qualifier: model.QualifierConst}
	}
	if t.IsVolatile() && !model.HasQualifier(inner, model.QualifierVolatile) {
		inner = &model.QualifiedType{ElementType: inner, Qualifier: model.QualifierVolatile}
	}
	return inner
}

// convertKind translates t ignoring its top-level qualifiers.
func (b *Builder) convertKind(t frontend.Type) model.Type {
	k := t.Kind()
	if pk, ok := primitiveKinds[k]; ok {
		return &model.PrimitiveType{Kind: pk, Size: max(t.SizeOf(), 0)}
	}
	switch k {
	case frontend.TypePointer, frontend.TypeMemberPointer:
		return model.NewPointerType(b.resolveType(t.Pointee()), pointerWidth(t))
	case frontend.TypeLValueReference, frontend.TypeRValueReference:
		return model.NewReferenceType(b.resolveType(t.Pointee()), k == frontend.TypeRValueReference, pointerWidth(t))
	case frontend.TypeConstantArray, frontend.TypeIncompleteArray:
		count := t.ArraySize()
		if k == frontend.TypeIncompleteArray {
			count = -1
		}
		return &model.ArrayType{ElementType: b.resolveType(t.ArrayElement()), Count: count}
	case frontend.TypeFunctionProto, frontend.TypeFunctionNoProto:
		ft := &model.FunctionType{ReturnType: b.resolveType(t.Result()), IsVariadic: t.IsFunctionVariadic()}
		for _, p := range t.ArgTypes() {
			ft.Parameters = append(ft.Parameters, &model.Parameter{Type: b.resolveType(p)})
		}
		return ft
	case frontend.TypeElaborated:
		if named := t.NamedType(); named != nil {
			return b.resolveType(named)
		}
	case frontend.TypeTypedef:
		if d := t.Declaration(); d != nil {
			return b.typedef(d)
		}
	case frontend.TypeRecord:
		if d := t.Declaration(); d != nil {
			return b.classScope(d).class
		}
	case frontend.TypeEnum:
		if d := t.Declaration(); d != nil {
			return b.enumScope(d).enum
		}
	case frontend.TypeTemplateTypeParm:
		if d := t.Declaration(); d != nil {
			return b.templateParameter(d)
		}
		return &model.TemplateParameterType{Name: t.Spelling()}
	case frontend.TypeInvalid:
		b.warnf("invalid type %q", t.Spelling())
		return &model.UnexposedType{Name: t.Spelling()}
	case frontend.TypeUnexposed:
		if d := t.Declaration(); d != nil {
			if dt := d.Type(); dt != nil && dt.Identity() != t.Identity() {
				return b.resolveType(dt)
			}
		}
	}
	return b.unexposed(t)
}

// unexposed keeps the spelling of a type with no model counterpart plus
// the template arguments that are types.
func (b *Builder) unexposed(t frontend.Type) model.Type {
	u := &model.UnexposedType{Name: t.Spelling(), Size: max(t.SizeOf(), 0)}
	for i := 0; i < t.NumTemplateArguments(); i++ {
		if a := t.TemplateArgument(i); a != nil {
			u.TemplateArguments = append(u.TemplateArguments, b.resolveType(a))
		}
	}
	return u
}

func pointerWidth(t frontend.Type) int64 {
	if w := t.SizeOf(); w > 0 {
		return w
	}
	return 8
}
