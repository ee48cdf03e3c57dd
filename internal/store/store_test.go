package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hargabyte/cppast/internal/model"
)

// testStore creates a temporary SQLite store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(BackendSQLite, filepath.Join(t.TempDir(), "db", "cppast.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// sampleCompilation models:
//
//	#define VERSION 3
//	#define SQR(x) x*x
//	namespace geo {
//	struct [[deprecated]] Point { int x; int y; };
//	__attribute__((visibility("default"))) int area(Point p);
//	}
//	enum Color { Red };
func sampleCompilation() *model.Compilation {
	comp := model.NewCompilation()
	intT := &model.PrimitiveType{Kind: model.PrimitiveInt, Size: 4}
	at := func(line int) model.SourceSpan {
		return model.SourceSpan{Start: model.Location{File: "shapes.h", Line: line}}
	}

	ns := model.NewNamespace("geo")
	ns.Span = at(3)
	comp.Namespaces.Add(ns)

	point := model.NewClass(model.ClassKindStruct, "Point")
	point.Span = at(4)
	point.Attributes = []*model.Attribute{{Kind: model.TokenAttribute, Name: "deprecated"}}
	ns.Classes.Add(point)
	for _, name := range []string{"x", "y"} {
		f := model.NewField(name, intT)
		f.Span = at(4)
		point.Fields.Add(f)
	}

	area := model.NewFunction("area")
	area.Span = at(5)
	area.ReturnType = intT
	area.Parameters = []*model.Parameter{{Name: "p", Type: point}}
	area.Attributes = []*model.Attribute{{Kind: model.SystemAttribute, Name: "visibility", Arguments: `"default"`}}
	ns.Functions.Add(area)

	color := model.NewEnum("Color")
	red := &model.EnumItem{}
	red.Name = "Red"
	color.Items.Add(red)
	comp.Enums.Add(color)

	version := &model.Macro{Value: "3"}
	version.Name = "VERSION"
	version.Span = at(1)
	comp.Macros.Add(version)

	sqr := &model.Macro{Parameters: []string{"x"}, Value: "x*x"}
	sqr.Name = "SQR"
	sqr.Span = at(2)
	comp.Macros.Add(sqr)

	comp.System.Functions.Add(model.NewFunction("memcpy"))
	comp.Diagnostics.Warning(model.Location{File: "shapes.h", Line: 5}, "unused parameter")
	return comp
}

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cppast.db")

	store, err := Open(BackendSQLite, dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to be created: %v", err)
	}
	if store.Backend() != BackendSQLite {
		t.Errorf("expected backend sqlite, got %s", store.Backend())
	}
	if store.Path() != dbPath {
		t.Errorf("expected path %s, got %s", dbPath, store.Path())
	}

	// Reopening runs the schema again without error
	store.Close()
	again, err := Open(BackendSQLite, dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	again.Close()
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Backend("postgres"), filepath.Join(t.TempDir(), "x.db"))
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestSaveCompilation(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	runID, err := store.SaveCompilation(ctx, sampleCompilation())
	if err != nil {
		t.Fatalf("save compilation: %v", err)
	}
	if len(runID) != 36 {
		t.Errorf("expected uuid run id, got %q", runID)
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	// geo, Point, x, y, area, Color, Red, memcpy
	if run.Declarations != 8 {
		t.Errorf("expected 8 declarations, got %d", run.Declarations)
	}
	if run.Diagnostics != 1 || run.HasErrors {
		t.Errorf("unexpected diagnostics summary: %+v", run)
	}

	decls, err := store.Declarations(ctx, runID)
	if err != nil {
		t.Fatalf("declarations: %v", err)
	}
	if len(decls) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(decls))
	}

	want := []struct {
		kind, fullName, parent string
	}{
		{"namespace", "geo", ""},
		{"struct", "geo::Point", "geo"},
		{"field", "geo::Point::x", "geo::Point"},
		{"field", "geo::Point::y", "geo::Point"},
		{"function", "geo::area", "geo"},
		{"enum", "Color", ""},
		{"enum_item", "Color::Red", "Color"},
		{"function", "memcpy", ""},
	}
	for i, w := range want {
		d := decls[i]
		if d.Seq != i || d.Kind != w.kind || d.FullName != w.fullName || d.Parent != w.parent {
			t.Errorf("row %d = %+v, want %+v", i, d, w)
		}
	}

	if decls[2].Type != "int" {
		t.Errorf("expected field type int, got %q", decls[2].Type)
	}
	if decls[1].File != "shapes.h" || decls[1].Line != 4 {
		t.Errorf("unexpected location %s:%d", decls[1].File, decls[1].Line)
	}
	if !decls[7].IsSystem || decls[4].IsSystem {
		t.Error("only memcpy should be flagged as a system declaration")
	}
}

func TestAttributes(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	runID, err := store.SaveCompilation(ctx, sampleCompilation())
	if err != nil {
		t.Fatalf("save compilation: %v", err)
	}

	attrs, err := store.Attributes(ctx, runID, "geo::area")
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(attrs))
	}
	if attrs[0].Name != "visibility" || attrs[0].Arguments != `"default"` || attrs[0].Kind != "system" {
		t.Errorf("unexpected attribute %+v", attrs[0])
	}

	attrs, err = store.Attributes(ctx, runID, "geo::Point")
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	if len(attrs) != 1 || attrs[0].Name != "deprecated" || attrs[0].Kind != "token" {
		t.Errorf("unexpected attributes %+v", attrs)
	}
}

func TestDiagnosticsAndMacros(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	runID, err := store.SaveCompilation(ctx, sampleCompilation())
	if err != nil {
		t.Fatalf("save compilation: %v", err)
	}

	diags, err := store.Diagnostics(ctx, runID)
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diags) != 1 || diags[0].Severity != "warning" || diags[0].Line != 5 {
		t.Errorf("unexpected diagnostics %+v", diags)
	}

	macros, err := store.Macros(ctx, runID)
	if err != nil {
		t.Fatalf("macros: %v", err)
	}
	if len(macros) != 2 {
		t.Fatalf("expected 2 macros, got %d", len(macros))
	}
	if macros[0].Name != "VERSION" || macros[0].Parameters != nil || macros[0].Value != "3" {
		t.Errorf("unexpected object-like macro %+v", macros[0])
	}
	if macros[1].Name != "SQR" || len(macros[1].Parameters) != 1 || macros[1].Parameters[0] != "x" {
		t.Errorf("unexpected function-like macro %+v", macros[1])
	}
}

func TestFindDeclarationsAcrossRuns(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.SaveCompilation(ctx, sampleCompilation())
	if err != nil {
		t.Fatalf("save first run: %v", err)
	}
	second, err := store.SaveCompilation(ctx, sampleCompilation())
	if err != nil {
		t.Fatalf("save second run: %v", err)
	}

	byFull, err := store.FindDeclarations(ctx, "geo::Point")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(byFull) != 2 {
		t.Fatalf("expected one match per run, got %d", len(byFull))
	}
	if byFull[0].RunID != second || byFull[1].RunID != first {
		t.Error("expected newest run first")
	}

	byName, err := store.FindDeclarations(ctx, "x")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(byName) != 2 || byName[0].FullName != "geo::Point::x" {
		t.Errorf("unexpected matches %+v", byName)
	}

	none, err := store.FindDeclarations(ctx, "missing")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second {
		t.Errorf("unexpected runs %+v", runs)
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := testStore(t)
	_, err := store.GetRun(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestDoltBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("dolt backend is slow")
	}
	ctx := context.Background()

	store, err := Open(BackendDolt, filepath.Join(t.TempDir(), "dolt"))
	if err != nil {
		t.Fatalf("open dolt store: %v", err)
	}
	defer store.Close()

	runID, err := store.SaveCompilation(ctx, sampleCompilation())
	if err != nil {
		t.Fatalf("save compilation: %v", err)
	}

	decls, err := store.Declarations(ctx, runID)
	if err != nil {
		t.Fatalf("declarations: %v", err)
	}
	if len(decls) != 8 {
		t.Errorf("expected 8 declarations, got %d", len(decls))
	}

	var message string
	err = store.DB().QueryRow("SELECT message FROM dolt_log LIMIT 1").Scan(&message)
	if err != nil {
		t.Fatalf("query dolt_log: %v", err)
	}
	if message != "export run "+runID {
		t.Errorf("unexpected commit message %q", message)
	}
}
