package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargabyte/cppast/internal/frontend"
)

func openSource(t *testing.T, name, src string, opts Options) *Unit {
	t.Helper()
	u, err := OpenSource(context.Background(), name, []byte(src), opts)
	require.NoError(t, err)
	t.Cleanup(u.Close)
	return u
}

func openCpp(t *testing.T, src string) *Unit {
	t.Helper()
	return openSource(t, "test.cpp", src, DefaultOptions())
}

// find returns the first cursor of kind named name, searching depth-first.
func find(root frontend.Cursor, kind frontend.CursorKind, name string) frontend.Cursor {
	var found frontend.Cursor
	root.VisitChildren(func(c, _ frontend.Cursor) frontend.ChildVisitResult {
		if c.Kind() == kind && c.Spelling() == name {
			found = c
			return frontend.VisitBreak
		}
		return frontend.VisitRecurse
	})
	return found
}

func mustFind(t *testing.T, root frontend.Cursor, kind frontend.CursorKind, name string) frontend.Cursor {
	t.Helper()
	c := find(root, kind, name)
	require.NotNil(t, c, "no %s named %q", kind, name)
	return c
}

func childrenOf(c frontend.Cursor) []frontend.Cursor {
	var out []frontend.Cursor
	c.VisitChildren(func(child, _ frontend.Cursor) frontend.ChildVisitResult {
		out = append(out, child)
		return frontend.VisitContinue
	})
	return out
}

func TestRecordLayout(t *testing.T) {
	u := openCpp(t, `
struct P {
	char c;
	int i;
	double d;
};

struct B {
	unsigned a : 3;
	unsigned b : 5;
	int c;
};

struct __attribute__((packed)) Q {
	char c;
	int i;
};
`)
	root := u.Root()

	p := mustFind(t, root, frontend.CursorStructDecl, "P")
	assert.Equal(t, int64(16), p.Type().SizeOf())
	assert.Equal(t, int64(8), p.Type().AlignOf())
	assert.Equal(t, int64(0), mustFind(t, p, frontend.CursorFieldDecl, "c").FieldOffset())
	assert.Equal(t, int64(4), mustFind(t, p, frontend.CursorFieldDecl, "i").FieldOffset())
	assert.Equal(t, int64(8), mustFind(t, p, frontend.CursorFieldDecl, "d").FieldOffset())

	b := mustFind(t, root, frontend.CursorStructDecl, "B")
	assert.Equal(t, int64(8), b.Type().SizeOf())
	a := mustFind(t, b, frontend.CursorFieldDecl, "a")
	assert.Equal(t, 3, a.BitFieldWidth())
	assert.Equal(t, int64(0), mustFind(t, b, frontend.CursorFieldDecl, "b").FieldOffset())
	assert.Equal(t, int64(4), mustFind(t, b, frontend.CursorFieldDecl, "c").FieldOffset())
	assert.Equal(t, -1, mustFind(t, b, frontend.CursorFieldDecl, "c").BitFieldWidth())

	q := mustFind(t, root, frontend.CursorStructDecl, "Q")
	assert.Equal(t, int64(5), q.Type().SizeOf())
	assert.Equal(t, int64(1), mustFind(t, q, frontend.CursorFieldDecl, "i").FieldOffset())
}

func TestEnumValues(t *testing.T) {
	u := openCpp(t, `
enum Color { Red, Green = 5, Blue };
enum class Level : unsigned char { Low = 1 << 2, High };
`)
	root := u.Root()
	assert.Equal(t, int64(0), mustFind(t, root, frontend.CursorEnumConstantDecl, "Red").EnumConstantValue())
	assert.Equal(t, int64(5), mustFind(t, root, frontend.CursorEnumConstantDecl, "Green").EnumConstantValue())
	assert.Equal(t, int64(6), mustFind(t, root, frontend.CursorEnumConstantDecl, "Blue").EnumConstantValue())

	level := mustFind(t, root, frontend.CursorEnumDecl, "Level")
	assert.True(t, level.Flags().Has(frontend.FlagScopedEnum))
	assert.Equal(t, frontend.TypeUChar, level.EnumIntegerType().Kind())
	assert.Equal(t, int64(4), mustFind(t, level, frontend.CursorEnumConstantDecl, "Low").EnumConstantValue())
	assert.Equal(t, int64(5), mustFind(t, level, frontend.CursorEnumConstantDecl, "High").EnumConstantValue())
}

func TestTypedefUnderlyingType(t *testing.T) {
	u := openCpp(t, `
typedef unsigned long size_type;
using Callback = int (*)(int, char);
`)
	root := u.Root()
	td := mustFind(t, root, frontend.CursorTypedefDecl, "size_type")
	assert.Equal(t, frontend.TypeULong, td.TypedefUnderlyingType().Kind())
	assert.Equal(t, int64(8), td.Type().SizeOf())

	alias := mustFind(t, root, frontend.CursorTypeAliasDecl, "Callback")
	under := alias.TypedefUnderlyingType()
	require.Equal(t, frontend.TypePointer, under.Kind())
	fn := under.Pointee()
	require.Equal(t, frontend.TypeFunctionProto, fn.Kind())
	assert.Equal(t, frontend.TypeInt, fn.Result().Kind())
	assert.Len(t, fn.ArgTypes(), 2)
}

func TestFunctions(t *testing.T) {
	u := openCpp(t, `
int add(int a, int b = 2);
int printf(const char *fmt, ...);
void none(void);
`)
	root := u.Root()

	add := mustFind(t, root, frontend.CursorFunctionDecl, "add")
	args := add.Arguments()
	require.Len(t, args, 2)
	assert.Equal(t, "a", args[0].Spelling())
	assert.Equal(t, "b", args[1].Spelling())
	assert.Equal(t, "add(int, int)", add.DisplayName())
	assert.Equal(t, frontend.TypeInt, add.ResultType().Kind())
	assert.False(t, add.IsDefinition())

	printf := mustFind(t, root, frontend.CursorFunctionDecl, "printf")
	assert.True(t, printf.IsVariadic())
	assert.Len(t, printf.Arguments(), 1)

	none := mustFind(t, root, frontend.CursorFunctionDecl, "none")
	assert.Empty(t, none.Arguments())
}

func TestClassMembers(t *testing.T) {
	u := openCpp(t, `
class Shape {
	int id;
public:
	Shape();
	virtual ~Shape();
	virtual double area() const = 0;
	static int count;
protected:
	void touch();
};
`)
	shape := mustFind(t, u.Root(), frontend.CursorClassDecl, "Shape")
	assert.True(t, shape.Flags().Has(frontend.FlagAbstract))

	assert.Equal(t, frontend.AccessPrivate, mustFind(t, shape, frontend.CursorFieldDecl, "id").Access())
	assert.Equal(t, frontend.AccessPublic, mustFind(t, shape, frontend.CursorConstructor, "Shape").Access())
	assert.NotNil(t, mustFind(t, shape, frontend.CursorDestructor, "~Shape"))

	area := mustFind(t, shape, frontend.CursorCXXMethod, "area")
	assert.True(t, area.Flags().Has(frontend.FlagPureVirtual))
	assert.True(t, area.Flags().Has(frontend.FlagVirtual))
	assert.True(t, area.Flags().Has(frontend.FlagConst))

	count := mustFind(t, shape, frontend.CursorVarDecl, "count")
	assert.Equal(t, frontend.StorageStatic, count.StorageClass())

	assert.Equal(t, frontend.AccessProtected, mustFind(t, shape, frontend.CursorCXXMethod, "touch").Access())

	// The vtable pointer comes first.
	assert.Equal(t, int64(8), mustFind(t, shape, frontend.CursorFieldDecl, "id").FieldOffset())
}

func TestNamespacesAndUSRs(t *testing.T) {
	u := openCpp(t, `
namespace a::b {
struct S {};
}
namespace a {
inline namespace v1 {
struct T {};
}
}
void f(int);
void f(double);
`)
	root := u.Root()
	s := mustFind(t, root, frontend.CursorStructDecl, "S")
	assert.Equal(t, "c:@N@a@N@b@S@S", s.USR())
	assert.Equal(t, "b", s.SemanticParent().Spelling())

	v1 := mustFind(t, root, frontend.CursorNamespace, "v1")
	assert.True(t, v1.Flags().Has(frontend.FlagInlineNamespace))

	var overloads []frontend.Cursor
	for _, c := range childrenOf(root) {
		if c.Kind() == frontend.CursorFunctionDecl && c.Spelling() == "f" {
			overloads = append(overloads, c)
		}
	}
	require.Len(t, overloads, 2)
	assert.NotEqual(t, overloads[0].USR(), overloads[1].USR())
}

func TestTemplateSpecialization(t *testing.T) {
	u := openCpp(t, `
template<typename T, int N>
struct Arr {
	T data[N];
};

template<>
struct Arr<char, 4> {
	char c[4];
};

Arr<int, 3> three;
`)
	root := u.Root()
	generic := mustFind(t, root, frontend.CursorClassTemplate, "Arr")
	assert.Equal(t, "Arr<T, N>", generic.DisplayName())

	var spec frontend.Cursor
	for _, c := range childrenOf(root) {
		if c.Kind() == frontend.CursorStructDecl && c.Spelling() == "Arr" {
			spec = c
		}
	}
	require.NotNil(t, spec)
	require.NotNil(t, spec.SpecializedTemplate())
	assert.Equal(t, generic.USR(), spec.SpecializedTemplate().USR())
	require.Equal(t, 2, spec.NumTemplateArguments())
	assert.Equal(t, frontend.TemplateArgumentType, spec.TemplateArgumentKind(0))
	assert.Equal(t, frontend.TypeCharS, spec.TemplateArgumentType(0).Kind())
	assert.Equal(t, frontend.TemplateArgumentIntegral, spec.TemplateArgumentKind(1))
	assert.Equal(t, int64(4), spec.TemplateArgumentValue(1))
	assert.Equal(t, "Arr<char, 4>", spec.DisplayName())
	assert.Equal(t, int64(4), spec.Type().SizeOf())

	three := mustFind(t, root, frontend.CursorVarDecl, "three")
	assert.Equal(t, int64(12), three.Type().SizeOf())
}

func TestMacros(t *testing.T) {
	u := openCpp(t, "#define LIMIT 10\n#define MACRO3(x) x + 1\n")
	root := u.Root()

	limit := mustFind(t, root, frontend.CursorMacroDefinition, "LIMIT")
	assert.False(t, limit.IsMacroFunctionLike())

	m := mustFind(t, root, frontend.CursorMacroDefinition, "MACRO3")
	assert.True(t, m.IsMacroFunctionLike())
	toks := u.Tokenize(m.Extent())
	var got []string
	for _, tok := range toks {
		got = append(got, tok.Spelling)
	}
	assert.Equal(t, []string{"MACRO3", "(", "x", ")", "x", "+", "1"}, got)
}

func TestEvaluate(t *testing.T) {
	u := openCpp(t, `
const int x = (0 + 1) << 2;
constexpr double half = 1.0 / 2;
const char *name = "widget";
const unsigned wrap = -1;
`)
	root := u.Root()

	x := mustFind(t, root, frontend.CursorVarDecl, "x")
	r := x.Evaluate()
	assert.Equal(t, frontend.EvalInt, r.Kind)
	assert.Equal(t, int64(4), r.Int)

	half := mustFind(t, root, frontend.CursorVarDecl, "half").Evaluate()
	assert.Equal(t, frontend.EvalFloat, half.Kind)
	assert.InDelta(t, 0.5, half.Float, 1e-9)

	name := mustFind(t, root, frontend.CursorVarDecl, "name").Evaluate()
	assert.Equal(t, frontend.EvalString, name.Kind)
	assert.Equal(t, "widget", name.Str)

	wrap := mustFind(t, root, frontend.CursorVarDecl, "wrap").Evaluate()
	assert.True(t, wrap.IsUnsigned)
	assert.Equal(t, uint64(0xffffffff), uint64(wrap.Int))

	init := childrenOf(x)
	require.NotEmpty(t, init)
	assert.Equal(t, frontend.CursorBinaryOperator, init[0].Kind())
}

func TestDocComments(t *testing.T) {
	u := openCpp(t, `
int unrelated;

/// Adds two numbers.
/// \param a first value
/// \return the sum
int add(int a, int b);

int counter; ///< Number of calls.

// Not attached: blank line below.

int lonely;
`)
	root := u.Root()

	add := mustFind(t, root, frontend.CursorFunctionDecl, "add")
	assert.Equal(t, "/// Adds two numbers.\n/// \\param a first value\n/// \\return the sum", add.RawComment())
	full := add.ParsedComment()
	require.NotNil(t, full)
	require.Len(t, full.Children, 3)
	assert.Equal(t, frontend.CommentParagraph, full.Children[0].Kind)
	param := full.Children[1]
	assert.Equal(t, frontend.CommentParamCommand, param.Kind)
	assert.Equal(t, "a", param.ParamName)
	assert.Equal(t, 0, param.ParamIndex)
	assert.Equal(t, frontend.CommentBlockCommand, full.Children[2].Kind)
	assert.Equal(t, "return", full.Children[2].CommandName)

	assert.Equal(t, "///< Number of calls.", mustFind(t, root, frontend.CursorVarDecl, "counter").RawComment())
	assert.Empty(t, mustFind(t, root, frontend.CursorVarDecl, "lonely").RawComment())
	assert.Empty(t, mustFind(t, root, frontend.CursorVarDecl, "unrelated").RawComment())
}

func TestDocCommentsDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.ParseComments = false
	u := openSource(t, "test.cpp", "/// Docs.\nint x;\n", opts)
	x := mustFind(t, u.Root(), frontend.CursorVarDecl, "x")
	assert.Empty(t, x.RawComment())
	assert.Nil(t, x.ParsedComment())
}

func TestAttributeCursors(t *testing.T) {
	u := openCpp(t, `
#define EXPORT __attribute__((visibility("default")))

__attribute__((annotate("tool"))) void g();
EXPORT int exported();
__declspec(dllexport) void f();
struct [[deprecated]] Old {};
struct alignas(16) Wide { char c; };
`)
	root := u.Root()

	g := childrenOf(mustFind(t, root, frontend.CursorFunctionDecl, "g"))
	require.NotEmpty(t, g)
	assert.Equal(t, frontend.CursorAnnotateAttr, g[0].Kind())
	assert.Equal(t, "tool", g[0].Spelling())

	exported := childrenOf(mustFind(t, root, frontend.CursorFunctionDecl, "exported"))
	require.NotEmpty(t, exported)
	assert.Equal(t, frontend.CursorVisibilityAttr, exported[0].Kind())
	assert.Equal(t, `"default"`, exported[0].DisplayName())

	f := childrenOf(mustFind(t, root, frontend.CursorFunctionDecl, "f"))
	require.NotEmpty(t, f)
	assert.Equal(t, frontend.CursorDLLExport, f[0].Kind())

	for _, c := range childrenOf(mustFind(t, root, frontend.CursorStructDecl, "Old")) {
		assert.False(t, c.Kind().IsAttribute(), "[[...]] groups are read from tokens")
	}

	wide := mustFind(t, root, frontend.CursorStructDecl, "Wide")
	assert.Equal(t, int64(16), wide.Type().SizeOf())
	assert.Equal(t, int64(16), wide.Type().AlignOf())
}

func TestIncludes(t *testing.T) {
	opts := DefaultOptions()
	opts.Unsaved = map[string][]byte{
		"shapes.h": []byte("struct Circle { double r; };\n"),
	}
	u := openSource(t, "main.cpp", "#include \"shapes.h\"\n#include <missing.h>\nCircle c;\n", opts)
	root := u.Root()

	inc := mustFind(t, root, frontend.CursorInclusionDirective, "shapes.h")
	assert.Equal(t, "shapes.h", inc.DisplayName())

	circle := mustFind(t, root, frontend.CursorStructDecl, "Circle")
	assert.Equal(t, "shapes.h", circle.Location().File)

	c := mustFind(t, root, frontend.CursorVarDecl, "c")
	assert.Equal(t, int64(8), c.Type().SizeOf())

	src, ok := u.FileContents("shapes.h")
	require.True(t, ok)
	assert.Contains(t, string(src), "Circle")

	var missing *frontend.Diagnostic
	for i, d := range u.Diagnostics() {
		if strings.Contains(d.Message, "missing.h") {
			missing = &u.Diagnostics()[i]
		}
	}
	require.NotNil(t, missing, "an unresolved include is reported")
	assert.Equal(t, frontend.SeverityNote, missing.Severity)
	assert.Equal(t, 2, missing.Location.Line)
}

func TestSyntaxErrorsAreWarnings(t *testing.T) {
	u := openCpp(t, "struct S { int x };\nint y = ;\n")
	require.NotEmpty(t, u.Diagnostics())
	for _, d := range u.Diagnostics() {
		assert.Equal(t, frontend.SeverityWarning, d.Severity)
	}

	opts := DefaultOptions()
	opts.StrictSyntax = true
	strict := openSource(t, "test.cpp", "int y = ;\n", opts)
	require.NotEmpty(t, strict.Diagnostics())
	assert.Equal(t, frontend.SeverityError, strict.Diagnostics()[0].Severity)
}

func TestConditionalCompilation(t *testing.T) {
	opts := DefaultOptions()
	opts.Defines = []string{"FEATURE=2"}
	u := openSource(t, "test.cpp", `
#if FEATURE > 1 && defined(__cplusplus)
int enabled;
#else
int disabled;
#endif
#ifdef MISSING
int never;
#endif
`, opts)
	root := u.Root()
	assert.NotNil(t, find(root, frontend.CursorVarDecl, "enabled"))
	assert.Nil(t, find(root, frontend.CursorVarDecl, "disabled"))
	assert.Nil(t, find(root, frontend.CursorVarDecl, "never"))
}

func TestCLanguage(t *testing.T) {
	u := openSource(t, "test.c", `
struct node { int value; struct node *next; };
typedef struct node node_t;
int length(const node_t *head);
`, Options{FollowIncludes: true, TargetCPU: "x86"})
	root := u.Root()

	node := mustFind(t, root, frontend.CursorStructDecl, "node")
	assert.Equal(t, int64(8), node.Type().SizeOf())
	assert.Equal(t, "c:@S@node", node.USR())
	assert.Equal(t, "c:@F@length", mustFind(t, root, frontend.CursorFunctionDecl, "length").USR())
}
