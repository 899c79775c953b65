package ast

import (
	"context"
	goerrors "errors"

	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/coroutine"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// defaultCarrier backs launch() when no host-supplied dispatcher has
// been installed (§5 "optional host-provided multi-carrier dispatcher");
// capacity 0 is unbounded, the single-threaded-cooperative default's
// closest Go equivalent since every launch still runs on its own
// goroutine rather than blocking the caller.
var defaultCarrier = coroutine.NewCarrier(0)

// SetCarrier replaces the dispatcher every subsequent `launch(block)`
// call runs under (§5 "optional host-provided multi-carrier
// dispatcher"). A host reads its carrier count from config
// (pkg/lyng.Config.Carriers) and calls this once during Engine setup;
// it is not safe to call once coroutines are already in flight.
func SetCarrier(c *coroutine.Carrier) { defaultCarrier = c }

// builtinFn is a Go-implemented Invokable with no receiver, used for the
// global concurrency entry points (launch, flow, Mutex). Sibling of
// internal/value's unexported nativeMethod, duplicated here rather than
// exported from value because these builtins need internal/coroutine,
// which value cannot import without cycling back through value itself.
type builtinFn struct {
	name     string
	min      int
	variadic bool
	fn       func(args value.CallArgs) (value.Value, *errors.Signal)
}

func (f *builtinFn) Invoke(_ value.Caller, args value.CallArgs) (value.Value, error) {
	v, sig := f.fn(args)
	if sig != nil {
		return value.Value{}, sig
	}
	return v, nil
}
func (f *builtinFn) Arity() (int, bool)   { return f.min, f.variadic }
func (f *builtinFn) CallableName() string { return f.name }

func callable(inv value.Invokable) value.Value {
	return value.Value{Class: value.ClassCallable, Data: inv}
}

// builtinMethod is the receiver-carrying counterpart of builtinFn, used
// for Deferred/Flow/Mutex instance methods.
type builtinMethod struct {
	name     string
	min      int
	variadic bool
	fn       func(recv value.Value, args value.CallArgs) (value.Value, *errors.Signal)
}

func (m *builtinMethod) Invoke(caller value.Caller, args value.CallArgs) (value.Value, error) {
	recv, _ := caller.(value.Value)
	v, sig := m.fn(recv, args)
	if sig != nil {
		return value.Value{}, sig
	}
	return v, nil
}
func (m *builtinMethod) Arity() (int, bool)   { return m.min, m.variadic }
func (m *builtinMethod) CallableName() string { return m.name }

func declareBuiltinMethod(c *class.Class, name string, min int, variadic bool, fn func(value.Value, value.CallArgs) (value.Value, *errors.Signal)) {
	c.Declare(&class.Member{Name: name, Kind: class.MethodMember, Visibility: class.Public, Value: &builtinMethod{name: name, min: min, variadic: variadic, fn: fn}})
}

func asInvokable(v value.Value, what string) (value.Invokable, *errors.Signal) {
	cb, ok := v.Data.(value.Invokable)
	if !ok {
		return nil, errors.Throw(value.IllegalArgumentErr(what+" requires a callable", source.Position{}), source.Position{})
	}
	return cb, nil
}

func signalOrWrap(err error) *errors.Signal {
	if err == nil {
		return nil
	}
	if sig, ok := err.(*errors.Signal); ok {
		return sig
	}
	return errors.Throw(value.NewException(value.ClassUnknownException, err.Error(), nil, source.Position{}), source.Position{})
}

// --- Deferred (launch's result, §5) ----------------------------------

type deferredData struct{ d *coroutine.Deferred }

func init() {
	declareBuiltinMethod(value.ClassDeferred, "await", 0, false, func(recv value.Value, _ value.CallArgs) (value.Value, *errors.Signal) {
		v, err := recv.Data.(*deferredData).d.Await(context.Background())
		if err != nil {
			return value.Value{}, signalOrWrap(err)
		}
		return v, nil
	})
	declareBuiltinMethod(value.ClassDeferred, "isActive", 0, false, func(recv value.Value, _ value.CallArgs) (value.Value, *errors.Signal) {
		return value.NewBoolValue(recv.Data.(*deferredData).d.IsActive()), nil
	})
	declareBuiltinMethod(value.ClassDeferred, "isCompleted", 0, false, func(recv value.Value, _ value.CallArgs) (value.Value, *errors.Signal) {
		return value.NewBoolValue(recv.Data.(*deferredData).d.IsCompleted()), nil
	})
	declareBuiltinMethod(value.ClassDeferred, "cancel", 0, false, func(recv value.Value, _ value.CallArgs) (value.Value, *errors.Signal) {
		recv.Data.(*deferredData).d.Cancel()
		return value.Void, nil
	})
}

// launchFn implements the global `launch(block)` (§5): block runs on its
// own goroutine under defaultCarrier; the caller gets back a Deferred
// immediately without suspending.
var launchFn value.Invokable = &builtinFn{name: "launch", min: 1, fn: func(args value.CallArgs) (value.Value, *errors.Signal) {
	if len(args.Positional) == 0 {
		return value.Value{}, errors.Throw(value.IllegalArgumentErr("launch requires a block", source.Position{}), source.Position{})
	}
	cb, sig := asInvokable(args.Positional[0], "launch")
	if sig != nil {
		return value.Value{}, sig
	}
	d := defaultCarrier.Launch(context.Background(), func(ctx context.Context) (value.Value, error) {
		return cb.Invoke(nil, value.CallArgs{})
	})
	return value.Value{Class: value.ClassDeferred, Data: &deferredData{d: d}}, nil
}}

// --- Flow (§5 "flow { emit(x) } produces a cold sequence") -----------

type flowData struct{ f *coroutine.Flow }

var errFlowTakeDone = goerrors.New("concurrency: take limit reached")

func init() {
	declareBuiltinMethod(value.ClassFlow, "collect", 1, false, func(recv value.Value, args value.CallArgs) (value.Value, *errors.Signal) {
		cb, sig := asInvokable(args.Positional[0], "collect")
		if sig != nil {
			return value.Value{}, sig
		}
		err := recv.Data.(*flowData).f.Collect(context.Background(), func(v value.Value) error {
			_, ierr := cb.Invoke(nil, value.CallArgs{Positional: []value.Value{v}})
			return ierr
		})
		if err != nil {
			return value.Value{}, signalOrWrap(err)
		}
		return value.Void, nil
	})

	declareBuiltinMethod(value.ClassFlow, "take", 1, false, func(recv value.Value, args value.CallArgs) (value.Value, *errors.Signal) {
		if len(args.Positional) == 0 || args.Positional[0].Class != value.ClassInt {
			return value.Value{}, errors.Throw(value.IllegalArgumentErr("take requires an Int count", source.Position{}), source.Position{})
		}
		n := args.Positional[0].Int()
		var items []value.Value
		err := recv.Data.(*flowData).f.Collect(context.Background(), func(v value.Value) error {
			items = append(items, v)
			if int64(len(items)) >= n {
				return errFlowTakeDone
			}
			return nil
		})
		if err != nil && !goerrors.Is(err, errFlowTakeDone) {
			return value.Value{}, signalOrWrap(err)
		}
		return value.NewList(items), nil
	})

	declareBuiltinMethod(value.ClassFlow, "toList", 0, false, func(recv value.Value, _ value.CallArgs) (value.Value, *errors.Signal) {
		var items []value.Value
		err := recv.Data.(*flowData).f.Collect(context.Background(), func(v value.Value) error {
			items = append(items, v)
			return nil
		})
		if err != nil {
			return value.Value{}, signalOrWrap(err)
		}
		return value.NewList(items), nil
	})
}

// flowFn implements the global `flow(block)`. block is invoked once per
// collect with a single positional argument, the emit callable, so a
// producer body written as `flow { emit -> ... emit(x) ... }` works
// directly; a body relying on the bare implicit `it` binding (no header,
// one argument supplied) reaches the same callable as `it(x)` (§4.2.1).
// A literal bare `emit` identifier with no header at all is not bound —
// the language has no mechanism to inject a name into a lambda's scope
// from outside its argument list, so this is the nearest faithful
// rendition without changing the lambda calling convention itself.
var flowFn value.Invokable = &builtinFn{name: "flow", min: 1, fn: func(args value.CallArgs) (value.Value, *errors.Signal) {
	if len(args.Positional) == 0 {
		return value.Value{}, errors.Throw(value.IllegalArgumentErr("flow requires a producer block", source.Position{}), source.Position{})
	}
	cb, sig := asInvokable(args.Positional[0], "flow")
	if sig != nil {
		return value.Value{}, sig
	}
	producer := func(ctx context.Context, emit coroutine.Emitter) error {
		emitCallable := callable(&builtinFn{name: "emit", min: 1, fn: func(args value.CallArgs) (value.Value, *errors.Signal) {
			if len(args.Positional) == 0 {
				return value.Value{}, errors.Throw(value.IllegalArgumentErr("emit requires a value", source.Position{}), source.Position{})
			}
			if err := emit(ctx, args.Positional[0]); err != nil {
				return value.Value{}, signalOrWrap(err)
			}
			return value.Void, nil
		}})
		_, err := cb.Invoke(nil, value.CallArgs{Positional: []value.Value{emitCallable}})
		return err
	}
	return value.Value{Class: value.ClassFlow, Data: &flowData{f: coroutine.NewFlow(producer)}}, nil
}}

// --- Mutex (§5 "user code must employ Mutex.withLock{...}") ----------

type mutexData struct{ m *coroutine.Mutex }

func init() {
	declareBuiltinMethod(value.ClassMutex, "withLock", 1, false, func(recv value.Value, args value.CallArgs) (value.Value, *errors.Signal) {
		cb, sig := asInvokable(args.Positional[0], "withLock")
		if sig != nil {
			return value.Value{}, sig
		}
		v, err := recv.Data.(*mutexData).m.WithLock(context.Background(), func() (value.Value, error) {
			return cb.Invoke(nil, value.CallArgs{})
		})
		if err != nil {
			return value.Value{}, signalOrWrap(err)
		}
		return v, nil
	})
}

// mutexFn implements the global `Mutex()` constructor.
var mutexFn value.Invokable = &builtinFn{name: "Mutex", min: 0, fn: func(_ value.CallArgs) (value.Value, *errors.Signal) {
	return value.Value{Class: value.ClassMutex, Data: &mutexData{m: coroutine.NewMutex()}}, nil
}}

// NewRootScope builds a fresh module-level scope seeded with the
// concurrency globals (§5). It carries no parent and no imports; a host
// embedding layer seeds the rest of the prelude on top of it and passes
// it as the Module scope for every top-level program it runs.
func NewRootScope() *scope.Scope {
	s := scope.New(nil)
	s.Declare("launch", callable(launchFn), false, class.Public)
	s.Declare("flow", callable(flowFn), false, class.Public)
	s.Declare("Mutex", callable(mutexFn), false, class.Public)
	return s
}
