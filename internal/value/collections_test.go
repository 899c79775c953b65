package value

import "testing"

func TestListIteratorHasNextNext(t *testing.T) {
	l := NewList([]Value{NewInt(1), NewInt(2), NewInt(3)})
	m, _ := l.Class.Resolve("iterator")
	it, err := m.Value.(Invokable).Invoke(l, CallArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []int64
	for {
		hn, _ := it.Class.Resolve("hasNext")
		hasNext, _ := hn.Value.(Invokable).Invoke(it, CallArgs{})
		if !hasNext.Bool() {
			break
		}
		nx, _ := it.Class.Resolve("next")
		v, err := nx.Value.(Invokable).Invoke(it, CallArgs{})
		if err != nil {
			t.Fatalf("unexpected error from next: %v", err)
		}
		got = append(got, v.Int())
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("unexpected sequence: %v", got)
	}
}

func TestIteratorNextPastEndRaisesIterationEnd(t *testing.T) {
	l := NewList(nil)
	m, _ := l.Class.Resolve("iterator")
	it, _ := m.Value.(Invokable).Invoke(l, CallArgs{})
	nx, _ := it.Class.Resolve("next")
	_, err := nx.Value.(Invokable).Invoke(it, CallArgs{})
	if err == nil {
		t.Fatal("expected an error iterating past the end")
	}
}

func callMethod(t *testing.T, recv Value, name string, args ...Value) Value {
	t.Helper()
	m, _ := recv.Class.Resolve(name)
	if m == nil {
		t.Fatalf("no method %q on %s", name, recv.Class.Name)
	}
	v, err := m.Value.(Invokable).Invoke(recv, CallArgs{Positional: args})
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	return v
}

func TestListSizeAndToList(t *testing.T) {
	l := NewList([]Value{NewInt(1), NewInt(2)})
	if n := callMethod(t, l, "size"); n.Int() != 2 {
		t.Fatalf("expected size 2, got %d", n.Int())
	}
	out := callMethod(t, l, "toList")
	if out.List().Items[0].Int() != 1 || out.List().Items[1].Int() != 2 {
		t.Fatalf("toList mismatch: %+v", out.List().Items)
	}
}

func TestForEachVisitsEveryItemInOrder(t *testing.T) {
	l := NewList([]Value{NewInt(10), NewInt(20), NewInt(30)})
	var seen []int64
	cb := &testCallback{fn: func(args CallArgs) (Value, error) {
		seen = append(seen, args.Positional[0].Int())
		return Void, nil
	}}
	callMethod(t, l, "forEach", Value{Class: ClassCallable, Data: cb})
	if len(seen) != 3 || seen[0] != 10 || seen[1] != 20 || seen[2] != 30 {
		t.Fatalf("unexpected visitation order: %v", seen)
	}
}

func TestTakeStopsEarlyOnUnboundedRange(t *testing.T) {
	r := NewRange(NewInt(1), Value{}, true, false, false)
	out := callMethod(t, r, "take", NewInt(3))
	items := out.List().Items
	if len(items) != 3 || items[0].Int() != 1 || items[2].Int() != 3 {
		t.Fatalf("unexpected take result: %+v", items)
	}
}

func TestContainsDelegatesToOps(t *testing.T) {
	l := NewList([]Value{NewInt(1), NewInt(2)})
	if !callMethod(t, l, "contains", NewInt(2)).Bool() {
		t.Fatal("expected list to contain 2")
	}
	if callMethod(t, l, "contains", NewInt(9)).Bool() {
		t.Fatal("expected list not to contain 9")
	}
}

type testCallback struct {
	fn func(CallArgs) (Value, error)
}

func (c *testCallback) Invoke(_ Caller, args CallArgs) (Value, error) { return c.fn(args) }
func (c *testCallback) Arity() (int, bool)                            { return 1, false }
func (c *testCallback) CallableName() string                         { return "test-callback" }
