package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/cppast/internal/model"
)

func span(file string, line int) model.SourceSpan {
	return model.SourceSpan{Start: model.Location{File: file, Line: line}}
}

// sampleCompilation models:
//
//	#define SQR(x) x*x
//	namespace geo { struct Point { int x; int y; }; }
//	[[nodiscard]] int area(geo::Point p);
//	enum Color { Red, Green = 2 };
func sampleCompilation() *model.Compilation {
	comp := model.NewCompilation()
	intT := &model.PrimitiveType{Kind: model.PrimitiveInt, Size: 4}

	ns := model.NewNamespace("geo")
	ns.Span = span("shapes.h", 2)
	comp.Namespaces.Add(ns)

	point := model.NewClass(model.ClassKindStruct, "Point")
	point.Span = span("shapes.h", 2)
	point.Size = 8
	point.Align = 4
	point.IsDefinition = true
	ns.Classes.Add(point)
	for i, name := range []string{"x", "y"} {
		f := model.NewField(name, intT)
		f.Visibility = model.VisibilityPublic
		f.Offset = int64(i * 4)
		point.Fields.Add(f)
	}

	area := model.NewFunction("area")
	area.Span = span("shapes.h", 3)
	area.ReturnType = intT
	area.Parameters = []*model.Parameter{{Name: "p", Type: point}}
	area.Attributes = []*model.Attribute{{Kind: model.TokenAttribute, Name: "nodiscard"}}
	comp.Functions.Add(area)

	color := model.NewEnum("Color")
	color.IntegerType = &model.PrimitiveType{Kind: model.PrimitiveUnsignedInt, Size: 4}
	for _, v := range []struct {
		name  string
		value int64
	}{{"Red", 0}, {"Green", 2}} {
		item := &model.EnumItem{Value: v.value}
		item.Name = v.name
		color.Items.Add(item)
	}
	comp.Enums.Add(color)

	sqr := &model.Macro{
		Parameters: []string{"x"},
		Value:      "x*x",
		Tokens: []model.Token{
			{Kind: model.TokenIdentifier, Text: "x"},
			{Kind: model.TokenPunctuation, Text: "*"},
			{Kind: model.TokenIdentifier, Text: "x"},
		},
	}
	sqr.Name = "SQR"
	sqr.Span = span("shapes.h", 1)
	comp.Macros.Add(sqr)

	comp.InclusionDirectives = append(comp.InclusionDirectives, &model.InclusionDirective{
		FileName: "stddef.h", IncludedFile: "/usr/include/stddef.h", IsSystem: true,
	})
	comp.System.Functions.Add(model.NewFunction("memcpy"))
	comp.Diagnostics.Warning(model.Location{File: "shapes.h", Line: 4}, "unused parameter")
	return comp
}

func TestSparseDocument(t *testing.T) {
	doc := NewDocument(sampleCompilation(), Options{Density: DensitySparse})

	require.Len(t, doc.Namespaces, 1)
	ns := doc.Namespaces[0]
	assert.Equal(t, "geo", ns.Name)
	assert.Equal(t, "shapes.h:2", ns.Location)

	require.Len(t, ns.Classes, 1)
	point := ns.Classes[0]
	assert.Equal(t, "struct", point.Kind)
	require.Len(t, point.Fields, 2)
	assert.Empty(t, point.Fields[0].Type)
	assert.Nil(t, point.Fields[1].Offset)
	assert.Zero(t, point.Size)

	require.Len(t, doc.Functions, 1)
	assert.Empty(t, doc.Functions[0].Signature)
	assert.Nil(t, doc.Functions[0].Attributes)

	require.Len(t, doc.Macros, 1)
	assert.Empty(t, doc.Macros[0].Value)
	assert.Nil(t, doc.Includes)
	assert.Nil(t, doc.System)

	require.Len(t, doc.Diagnostics, 1, "diagnostics are kept at every density")
	assert.Equal(t, "warning", doc.Diagnostics[0].Severity)
	assert.Equal(t, "shapes.h:4", doc.Diagnostics[0].Location)
}

func TestMediumDocument(t *testing.T) {
	comp := sampleCompilation()
	doc := NewDocument(comp, Options{Density: DensityMedium})

	point := doc.Namespaces[0].Classes[0]
	assert.Equal(t, "int", point.Fields[0].Type)
	assert.Equal(t, "public", point.Fields[0].Visibility)
	assert.Nil(t, point.Fields[1].Offset)

	area := doc.Functions[0]
	fn, _ := comp.Functions.Find("area")
	assert.Equal(t, fn.Signature(), area.Signature)
	require.Len(t, area.Parameters, 1)
	assert.Equal(t, "p", area.Parameters[0].Name)
	assert.Equal(t, "geo::Point", area.Parameters[0].Type)
	assert.Equal(t, []string{"nodiscard"}, area.Attributes)

	require.Len(t, doc.Enums, 1)
	assert.Equal(t, "unsigned int", doc.Enums[0].IntegerType)
	require.Len(t, doc.Enums[0].Items, 2)
	assert.Equal(t, int64(2), doc.Enums[0].Items[1].Value)

	assert.Equal(t, []string{"x"}, doc.Macros[0].Parameters)
	assert.Equal(t, "x*x", doc.Macros[0].Value)
	assert.Nil(t, doc.Macros[0].Tokens)
}

func TestDenseDocument(t *testing.T) {
	doc := NewDocument(sampleCompilation(), Options{Density: DensityDense})

	point := doc.Namespaces[0].Classes[0]
	assert.Equal(t, int64(8), point.Size)
	assert.Equal(t, int64(4), point.Align)
	require.NotNil(t, point.Fields[1].Offset)
	assert.Equal(t, int64(4), *point.Fields[1].Offset)

	assert.Equal(t, []string{"identifier:x", "punctuation:*", "identifier:x"}, doc.Macros[0].Tokens)

	require.Len(t, doc.Includes, 1)
	assert.Equal(t, "stddef.h", doc.Includes[0].File)
	assert.True(t, doc.Includes[0].System)
}

func TestIncludeSystem(t *testing.T) {
	doc := NewDocument(sampleCompilation(), Options{Density: DensitySparse, IncludeSystem: true})

	require.NotNil(t, doc.System)
	require.Len(t, doc.System.Functions, 1)
	assert.Equal(t, "memcpy", doc.System.Functions[0].Name)

	empty := NewDocument(model.NewCompilation(), Options{IncludeSystem: true})
	assert.Nil(t, empty.System, "an empty system forest is omitted")
}

func TestInvalidDensityFallsBackToDefault(t *testing.T) {
	doc := NewDocument(sampleCompilation(), Options{Density: Density("smart")})
	assert.Equal(t, "int", doc.Namespaces[0].Classes[0].Fields[0].Type)
}

func TestYAMLFormatter(t *testing.T) {
	out, err := NewYAMLFormatter().Format(sampleCompilation(), Options{Density: DensityMedium})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "namespaces:"), "scope keys are inlined at the top level:\n%s", out)
	assert.Contains(t, out, "name: geo")
	assert.Contains(t, out, "kind: struct")

	var back Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &back))
	require.Len(t, back.Namespaces, 1)
	require.Len(t, back.Namespaces[0].Classes, 1)
	assert.Equal(t, "Point", back.Namespaces[0].Classes[0].Name)
	assert.Len(t, back.Namespaces[0].Classes[0].Fields, 2)
}

func TestJSONFormatter(t *testing.T) {
	var buf strings.Builder
	err := NewJSONFormatter().FormatToWriter(&buf, sampleCompilation(), Options{Density: DensitySparse})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &raw))
	assert.Contains(t, raw, "namespaces")
	assert.Contains(t, raw, "functions")
	assert.Contains(t, raw, "diagnostics")
	assert.NotContains(t, raw, "system")
	assert.NotContains(t, raw, "Scope")
}

func TestYAMLJSONConsistency(t *testing.T) {
	comp := sampleCompilation()
	opts := Options{Density: DensityDense}

	y, err := NewYAMLFormatter().Format(comp, opts)
	require.NoError(t, err)
	j, err := NewJSONFormatter().Format(comp, opts)
	require.NoError(t, err)

	var fromYAML, fromJSON Document
	require.NoError(t, yaml.Unmarshal([]byte(y), &fromYAML))
	require.NoError(t, json.Unmarshal([]byte(j), &fromJSON))

	assert.Equal(t, len(fromJSON.Functions), len(fromYAML.Functions))
	assert.Equal(t, fromJSON.Functions[0].Signature, fromYAML.Functions[0].Signature)
	assert.Equal(t, fromJSON.Macros[0].Tokens, fromYAML.Macros[0].Tokens)
}

func TestNewDeclaration(t *testing.T) {
	comp := sampleCompilation()

	point, ok := NewDeclaration(comp.FindByFullName("geo::Point"), Options{Density: DensityDense}).(*ClassOutput)
	require.True(t, ok)
	assert.Equal(t, "Point", point.Name)
	assert.Equal(t, int64(8), point.Size)
	assert.Len(t, point.Fields, 2)

	area, ok := NewDeclaration(comp.FindByFullName("area"), Options{}).(*FunctionOutput)
	require.True(t, ok)
	assert.Equal(t, []string{"nodiscard"}, area.Attributes)

	green, ok := NewDeclaration(comp.FindByFullName("Color::Green"), Options{}).(*EnumItemOutput)
	require.True(t, ok)
	assert.Equal(t, int64(2), green.Value)
}
