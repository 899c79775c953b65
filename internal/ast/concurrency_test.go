package ast

import (
	"testing"

	"github.com/sergeych/lyng-sub006/internal/value"
)

func TestLaunchAndAwaitRoundTrip(t *testing.T) {
	root := NewRootScope()
	rec, _, ok := root.Resolve("launch")
	if !ok {
		t.Fatal("launch not found in root scope")
	}
	launchCb := rec.Value.Data.(value.Invokable)

	body := value.Value{Class: value.ClassCallable, Data: &testLambda{result: value.NewInt(99)}}
	d, err := launchCb.Invoke(nil, value.CallArgs{Positional: []value.Value{body}})
	if err != nil {
		t.Fatalf("launch: unexpected error: %v", err)
	}
	if d.Class != value.ClassDeferred {
		t.Fatalf("expected a Deferred, got %s", d.Class.Name)
	}

	awaitM, _ := d.Class.Resolve("await")
	v, err := awaitM.Value.(value.Invokable).Invoke(d, value.CallArgs{})
	if err != nil {
		t.Fatalf("await: unexpected error: %v", err)
	}
	if v.Int() != 99 {
		t.Fatalf("expected 99, got %d", v.Int())
	}
}

func TestFlowIsColdAndTakeLimitsOutput(t *testing.T) {
	root := NewRootScope()
	rec, _, ok := root.Resolve("flow")
	if !ok {
		t.Fatal("flow not found in root scope")
	}
	flowCb := rec.Value.Data.(value.Invokable)

	runs := 0
	producer := &testEmitLambda{onRun: func() { runs++ }, count: 5}
	f, err := flowCb.Invoke(nil, value.CallArgs{Positional: []value.Value{
		{Class: value.ClassCallable, Data: producer},
	}})
	if err != nil {
		t.Fatalf("flow: unexpected error: %v", err)
	}

	takeM, _ := f.Class.Resolve("take")
	out, err := takeM.Value.(value.Invokable).Invoke(f, value.CallArgs{Positional: []value.Value{value.NewInt(3)}})
	if err != nil {
		t.Fatalf("take: unexpected error: %v", err)
	}
	items := out.List().Items
	if len(items) != 3 || items[0].Int() != 0 || items[2].Int() != 2 {
		t.Fatalf("unexpected take result: %+v", items)
	}

	out2, err := takeM.Value.(value.Invokable).Invoke(f, value.CallArgs{Positional: []value.Value{value.NewInt(3)}})
	if err != nil {
		t.Fatalf("second take: unexpected error: %v", err)
	}
	if out2.List().Items[0].Int() != 0 {
		t.Fatal("expected the cold flow's producer to restart from scratch on the second collect")
	}
	if runs != 2 {
		t.Fatalf("expected the producer to run once per take, ran %d times", runs)
	}
}

func TestMutexWithLockSerializesAndReturnsBlockValue(t *testing.T) {
	root := NewRootScope()
	rec, _, _ := root.Resolve("Mutex")
	mutexCb := rec.Value.Data.(value.Invokable)
	m, err := mutexCb.Invoke(nil, value.CallArgs{})
	if err != nil {
		t.Fatalf("Mutex(): unexpected error: %v", err)
	}

	withLockM, _ := m.Class.Resolve("withLock")
	out, err := withLockM.Value.(value.Invokable).Invoke(m, value.CallArgs{Positional: []value.Value{
		{Class: value.ClassCallable, Data: &testLambda{result: value.NewString("done")}},
	}})
	if err != nil {
		t.Fatalf("withLock: unexpected error: %v", err)
	}
	if out.Str() != "done" {
		t.Fatalf("expected withLock to return its block's value, got %s", out.Str())
	}
}

type testLambda struct{ result value.Value }

func (l *testLambda) Invoke(_ value.Caller, _ value.CallArgs) (value.Value, error) {
	return l.result, nil
}
func (l *testLambda) Arity() (int, bool)   { return 0, false }
func (l *testLambda) CallableName() string { return "test-lambda" }

// testEmitLambda plays the role of a flow producer body: invoked with
// one positional argument (the emit callable), it calls it count times.
type testEmitLambda struct {
	onRun func()
	count int
}

func (l *testEmitLambda) Invoke(_ value.Caller, args value.CallArgs) (value.Value, error) {
	if l.onRun != nil {
		l.onRun()
	}
	emit := args.Positional[0].Data.(value.Invokable)
	for i := 0; i < l.count; i++ {
		if _, err := emit.Invoke(nil, value.CallArgs{Positional: []value.Value{value.NewInt(int64(i))}}); err != nil {
			return value.Void, err
		}
	}
	return value.Void, nil
}
func (l *testEmitLambda) Arity() (int, bool)   { return 1, false }
func (l *testEmitLambda) CallableName() string { return "test-emit-lambda" }
