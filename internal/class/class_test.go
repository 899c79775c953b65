package class

import (
	"testing"

	"github.com/sergeych/lyng-sub006/internal/source"
)

func mustClass(t *testing.T, name string, parents ...*Class) *Class {
	t.Helper()
	c, err := New(name, parents, source.Position{})
	if err != nil {
		t.Fatalf("New(%s): %v", name, err)
	}
	return c
}

func names(cs []*Class) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

// TestDiamondMRO reproduces spec.md §8 scenario 2: class A(){} class
// B():A(){} class C():A(){} class D():B(),C(){} must linearize to
// [D, B, C, A], followed by the root Obj.
func TestDiamondMRO(t *testing.T) {
	obj := mustClass(t, "Obj")
	a := mustClass(t, "A", obj)
	b := mustClass(t, "B", a)
	c := mustClass(t, "C", a)
	d := mustClass(t, "D", b, c)

	got := names(d.Linearization)
	want := []string{"D", "B", "C", "A", "Obj"}
	if len(got) != len(want) {
		t.Fatalf("linearization = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("linearization = %v, want %v", got, want)
		}
	}
}

// TestAmbiguousMemberResolvesToFirstParent: a member declared in both B
// and C resolves to B's, because B precedes C in D's linearization.
func TestAmbiguousMemberResolvesToFirstParent(t *testing.T) {
	obj := mustClass(t, "Obj")
	a := mustClass(t, "A", obj)
	b := mustClass(t, "B", a)
	c := mustClass(t, "C", a)
	d := mustClass(t, "D", b, c)

	b.Declare(&Member{Name: "greet", Kind: MethodMember, Value: "from B"})
	c.Declare(&Member{Name: "greet", Kind: MethodMember, Value: "from C"})

	m, declarer := d.Resolve("greet")
	if m == nil || declarer != b {
		t.Fatalf("expected greet to resolve to B, got declarer=%v", declarer)
	}
}

func TestLinearizationMonotonicity(t *testing.T) {
	obj := mustClass(t, "Obj")
	a := mustClass(t, "A", obj)
	b := mustClass(t, "B", a)
	c := mustClass(t, "C", a)
	d := mustClass(t, "D", b, c)

	// Each parent's order must appear as a (not necessarily contiguous)
	// subsequence of D's linearization.
	assertSubsequence(t, names(b.Linearization), names(d.Linearization))
	assertSubsequence(t, names(c.Linearization), names(d.Linearization))
}

func assertSubsequence(t *testing.T, sub, full []string) {
	t.Helper()
	i := 0
	for _, f := range full {
		if i < len(sub) && sub[i] == f {
			i++
		}
	}
	if i != len(sub) {
		t.Fatalf("%v is not a subsequence of %v", sub, full)
	}
}

func TestInconsistentHierarchyRejected(t *testing.T) {
	obj := mustClass(t, "Obj")
	a := mustClass(t, "A", obj)
	b := mustClass(t, "B", obj)
	c := mustClass(t, "C", a, b) // demands A before B
	d := mustClass(t, "D", b, a) // demands B before A
	_, err := New("E", []*Class{c, d}, source.Position{})
	if err == nil {
		t.Fatal("expected inconsistent linearization to be rejected")
	}
}

func TestVisibility(t *testing.T) {
	obj := mustClass(t, "Obj")
	base := mustClass(t, "Base", obj)
	sub := mustClass(t, "Sub", base)
	unrelated := mustClass(t, "Unrelated", obj)

	priv := &Member{Name: "secret", Visibility: Private}
	base.Declare(priv)
	prot := &Member{Name: "guarded", Visibility: Protected}
	base.Declare(prot)
	pub := &Member{Name: "open", Visibility: Public}
	base.Declare(pub)

	if !priv.VisibleFrom(base) {
		t.Error("private member should be visible within declaring class")
	}
	if priv.VisibleFrom(sub) {
		t.Error("private member must not be visible in a subclass")
	}
	if !prot.VisibleFrom(sub) {
		t.Error("protected member should be visible in a subclass")
	}
	if prot.VisibleFrom(unrelated) {
		t.Error("protected member must not be visible outside the hierarchy")
	}
	if !pub.VisibleFrom(unrelated) {
		t.Error("public member should be visible everywhere")
	}
	if !pub.VisibleFrom(nil) {
		t.Error("public member should be visible from top-level code")
	}
}
