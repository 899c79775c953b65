package scope

import (
	"testing"

	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/value"
)

func TestDeclareAndResolve(t *testing.T) {
	root := New(nil)
	root.Declare("x", value.NewInt(42), true, class.Public)

	r, _, ok := root.Resolve("x")
	if !ok {
		t.Fatal("x not found")
	}
	if r.Value.Int() != 42 {
		t.Fatalf("expected 42, got %d", r.Value.Int())
	}
}

func TestChildResolvesParentAndShadows(t *testing.T) {
	root := New(nil)
	root.Declare("x", value.NewInt(1), true, class.Public)

	child := New(root)
	if _, _, ok := child.Resolve("x"); !ok {
		t.Fatal("child should resolve x from parent")
	}

	child.Declare("x", value.NewInt(2), true, class.Public)
	r, owner, ok := child.Resolve("x")
	if !ok || r.Value.Int() != 2 {
		t.Fatal("child-local x should shadow parent")
	}
	if owner != child {
		t.Fatal("shadowed record should resolve to the child frame")
	}

	if r2, _, _ := root.Resolve("x"); r2.Value.Int() != 1 {
		t.Fatal("shadowing must not affect the parent frame")
	}
}

func TestUndeclaredNameNotFound(t *testing.T) {
	root := New(nil)
	if _, _, ok := root.Resolve("missing"); ok {
		t.Fatal("expected missing name to be unresolved")
	}
}

func TestAssignRespectsMutability(t *testing.T) {
	root := New(nil)
	root.Declare("readonly", value.NewInt(1), false, class.Public)

	found, violated := root.Assign("readonly", value.NewInt(2))
	if !found {
		t.Fatal("expected record to be found")
	}
	if !violated {
		t.Fatal("expected assigning an immutable record to report a violation")
	}

	root.Declare("mutable", value.NewInt(1), true, class.Public)
	found, violated = root.Assign("mutable", value.NewInt(9))
	if !found || violated {
		t.Fatal("expected mutable assignment to succeed")
	}
	r, _, _ := root.Resolve("mutable")
	if r.Value.Int() != 9 {
		t.Fatal("assignment did not take effect")
	}
}

func TestSetParentRejectsCycle(t *testing.T) {
	a := New(nil)
	b := New(a)
	if err := b.SetParent(b); err == nil {
		t.Fatal("expected self-parenting to be rejected as a cycle")
	}
	if err := a.SetParent(b); err == nil {
		t.Fatal("expected a->b->a to be rejected as a cycle")
	}
}

func TestClosureResolvesThroughCreatorNotLexicalParent(t *testing.T) {
	module := New(nil)
	module.Declare("g", value.NewInt(100), true, class.Public)

	creator := New(module)
	creator.Declare("captured", value.NewInt(7), true, class.Public)

	call := NewClosure(creator, module)
	call.Declare("local", value.NewInt(1), true, class.Public)

	if _, _, ok := call.Resolve("local"); !ok {
		t.Fatal("closure call scope should resolve its own locals")
	}
	if r, _, ok := call.Resolve("captured"); !ok || r.Value.Int() != 7 {
		t.Fatal("closure call scope should resolve names from its creator")
	}
	if r, _, ok := call.Resolve("g"); !ok || r.Value.Int() != 100 {
		t.Fatal("closure call scope should fall back to the module scope")
	}
}

func TestFrameIDsAreFreshOnEachAcquire(t *testing.T) {
	a := New(nil)
	Release(a)
	b := New(nil)
	if a.FrameID() == b.FrameID() {
		t.Fatal("expected distinct frame ids across pool reuse")
	}
}
