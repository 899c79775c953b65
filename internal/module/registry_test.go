package module

import (
	"testing"

	"github.com/sergeych/lyng-sub006/internal/ast"
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

func TestRegisterSourceExportsTopLevelBindings(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource("math2", `
val two = 2
fun square(x) { x * x }
`)

	pkgScope, sig := r.Resolve("math2.*")
	if sig != nil {
		t.Fatalf("unexpected error: %v", sig)
	}
	rec, _, ok := pkgScope.Resolve("two")
	if !ok || rec.Value.Int() != 2 {
		t.Fatalf("expected 'two' == 2, got %+v ok=%v", rec, ok)
	}
	if _, _, ok := pkgScope.Resolve("square"); !ok {
		t.Fatal("expected 'square' to be exported")
	}
}

func TestResolveCachesAfterFirstLoad(t *testing.T) {
	r := NewRegistry()
	loads := 0
	r.RegisterPackage("counted", func() *scope.Scope {
		loads++
		s := scope.New(nil)
		s.Declare("loads", value.NewInt(int64(loads)), false, class.Public)
		return s
	})

	first, _ := r.Resolve("counted")
	second, _ := r.Resolve("counted")
	if first != second {
		t.Fatal("expected the cached scope to be reused across imports")
	}
	if loads != 1 {
		t.Fatalf("expected exactly one lazy load, got %d", loads)
	}
}

func TestResolveUnregisteredPackageErrors(t *testing.T) {
	r := NewRegistry()
	if _, sig := r.Resolve("nonexistent"); sig == nil {
		t.Fatal("expected an error resolving an unregistered package")
	}
}

func TestImportNodeCopiesExportedSymbolsIntoImportingScope(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource("greet", `val greeting = "hi"`)

	importer := scope.New(nil)
	imp := ast.NewImport(source.Position{}, "greet.*", nil)
	if _, sig := imp.Execute(importer); sig != nil {
		t.Fatalf("unexpected error: %v", sig)
	}
	rec, _, ok := importer.Resolve("greeting")
	if !ok || rec.Value.Str() != "hi" {
		t.Fatalf("expected 'greeting' == hi in the importer's own scope, got ok=%v", ok)
	}
}

func TestRegisterManifestRestrictsExportsToManifestList(t *testing.T) {
	r := NewRegistry()
	m, err := r.RegisterManifest(`
name: restricted
version: "1.0"
exports: [publicOnly]
`, `
val publicOnly = 1
val hidden = 2
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "restricted" {
		t.Fatalf("expected name 'restricted', got %q", m.Name)
	}

	pkgScope, sig := r.Resolve("restricted")
	if sig != nil {
		t.Fatalf("unexpected error: %v", sig)
	}
	if _, ok := pkgScope.Local("publicOnly"); !ok {
		t.Fatal("expected publicOnly to be exported")
	}
	if _, ok := pkgScope.Local("hidden"); ok {
		t.Fatal("expected hidden to be excluded by the manifest's exports list")
	}
}
