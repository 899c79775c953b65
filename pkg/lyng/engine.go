package lyng

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/sergeych/lyng-sub006/internal/ast"
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/coroutine"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/module"
	"github.com/sergeych/lyng-sub006/internal/parser"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// nativeFn adapts a reflect-registered Go function to value.Invokable,
// converting arguments/return value at the native↔core boundary (§6.1).
// Sibling of internal/ast's builtinFn, duplicated here rather than
// shared because pkg/lyng's conversion rules (reflection-driven, open to
// arbitrary Go signatures) are a different concern from the evaluator's
// fixed concurrency builtins.
type nativeFn struct {
	name   string
	fn     reflect.Value
	in     []reflect.Type
	strict bool
}

func (n *nativeFn) Invoke(_ value.Caller, args value.CallArgs) (value.Value, error) {
	if len(args.Positional) != len(n.in) {
		return value.Value{}, fmt.Errorf("lyng: %s expects %d argument(s), got %d", n.name, len(n.in), len(args.Positional))
	}
	in := make([]reflect.Value, len(n.in))
	for i, want := range n.in {
		v, err := fromValue(args.Positional[i], want, n.strict)
		if err != nil {
			return value.Value{}, err
		}
		in[i] = v
	}
	out := n.fn.Call(in)
	if len(out) == 0 {
		return value.Void, nil
	}
	return toValue(out[0])
}

func (n *nativeFn) Arity() (int, bool)   { return len(n.in), false }
func (n *nativeFn) CallableName() string { return n.name }

// Engine is the host embedding surface (§6.1): the primary entry point a
// Go program uses to run lyng source, register native callbacks, and
// assemble packages. Grounded on the teacher's pkg/dwscript.Engine
// (New(opts...), RegisterFunction, Eval, SetOutput — recovered from its
// surviving test files since its implementation was filtered out of the
// retrieval pack).
type Engine struct {
	root     *scope.Scope
	registry *module.Registry
	out      io.Writer
	strict   bool
}

// Option configures an Engine at construction time, the same functional-
// options shape the teacher's WithTypeCheck uses.
type Option func(*Engine)

// WithOutput directs a program's `print`/`println` output at w instead
// of os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.out = w }
}

// WithTypeCheck toggles strict native-argument conversion (Config.TypeCheck),
// the embedding API's analogue of the teacher's WithTypeCheck: when on, a
// RegisterFunction'd Go function with an integer parameter rejects a Real
// argument instead of truncating it.
func WithTypeCheck(on bool) Option {
	return func(e *Engine) { e.strict = on }
}

// WithCarriers bounds how many coroutines `launch(block)` may run
// concurrently (§5's optional multi-carrier dispatcher), the same knob
// Config.Carriers exposes from a .lyng.toml file.
func WithCarriers(n int) Option {
	return func(e *Engine) { ast.SetCarrier(coroutine.NewCarrier(n)) }
}

// New builds an Engine with a fresh module registry and root scope
// seeded with the language's concurrency globals (launch/flow/Mutex) and
// an output-writing print/println pair.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{out: os.Stdout}
	for _, opt := range opts {
		opt(e)
	}
	e.registry = module.NewRegistry()
	e.root = e.registry.Root
	e.installOutputBuiltins()
	return e, nil
}

// installOutputBuiltins declares `print`/`println`, the host-interaction
// surface every embedding needs and that the core evaluator itself has
// no opinion about (§6.1 — output is a property of the embedding, not
// the language).
func (e *Engine) installOutputBuiltins() {
	e.root.Declare("print", value.Value{Class: value.ClassCallable, Data: &hostPrint{e: e}}, false, class.Public)
	e.root.Declare("println", value.Value{Class: value.ClassCallable, Data: &hostPrintln{e: e}}, false, class.Public)
}

type hostPrint struct{ e *Engine }

func (h *hostPrint) Invoke(_ value.Caller, args value.CallArgs) (value.Value, error) {
	parts := make([]string, len(args.Positional))
	for i, a := range args.Positional {
		parts[i] = value.ToDisplayString(a)
	}
	fmt.Fprint(h.e.out, strings.Join(parts, ""))
	return value.Void, nil
}
func (h *hostPrint) Arity() (int, bool)   { return 0, true }
func (h *hostPrint) CallableName() string { return "print" }

type hostPrintln struct{ e *Engine }

func (h *hostPrintln) Invoke(_ value.Caller, args value.CallArgs) (value.Value, error) {
	parts := make([]string, len(args.Positional))
	for i, a := range args.Positional {
		parts[i] = value.ToDisplayString(a)
	}
	fmt.Fprintln(h.e.out, strings.Join(parts, ""))
	return value.Void, nil
}
func (h *hostPrintln) Arity() (int, bool)   { return 0, true }
func (h *hostPrintln) CallableName() string { return "println" }

// SetOutput redirects print/println output, matching the teacher's
// Engine.SetOutput(io.Writer) used throughout its FFI tests to capture
// program output into a buffer.
func (e *Engine) SetOutput(w io.Writer) { e.out = w }

// RegisterFunction exposes a Go function to lyng source under name,
// converting arguments and its return value via reflection (§6.1
// "native↔core value conversion"). Only functions whose parameters are
// numeric/bool/string, and whose single return value (if any) is
// numeric/bool/string/slice/array/map, are accepted; anything else is
// rejected at registration time, the same eager validation the
// teacher's RegisterFunction performs.
func (e *Engine) RegisterFunction(name string, fn any) error {
	if fn == nil {
		return fmt.Errorf("lyng: RegisterFunction(%q): fn is nil", name)
	}
	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		return fmt.Errorf("lyng: RegisterFunction(%q): fn is not a function", name)
	}
	if rt.NumOut() > 1 {
		return fmt.Errorf("lyng: RegisterFunction(%q): only zero or one return value is supported", name)
	}
	in := make([]reflect.Type, rt.NumIn())
	for i := range in {
		in[i] = rt.In(i)
		if !supportedKind(in[i].Kind()) {
			return fmt.Errorf("lyng: RegisterFunction(%q): unsupported parameter type %s", name, in[i])
		}
	}
	if rt.NumOut() == 1 {
		if k := rt.Out(0).Kind(); !supportedKind(k) && k != reflect.Slice && k != reflect.Array && k != reflect.Map {
			return fmt.Errorf("lyng: RegisterFunction(%q): unsupported return type %s", name, rt.Out(0))
		}
	}
	if _, exists := e.root.Local(name); exists {
		return fmt.Errorf("lyng: RegisterFunction(%q): already registered", name)
	}
	e.root.Declare(name, value.Value{Class: value.ClassCallable, Data: &nativeFn{name: name, fn: rv, in: in, strict: e.strict}}, false, class.Public)
	return nil
}

// RegisterProperty exposes a host-owned value under name (§6.1 "bind
// native function/property"): get is called once, at registration, and
// name is bound immutably to the value it returned. Later changes to what
// get returns are not seen by scripts, and there is no setter.
func (e *Engine) RegisterProperty(name string, get func() value.Value) error {
	if _, exists := e.root.Local(name); exists {
		return fmt.Errorf("lyng: RegisterProperty(%q): already registered", name)
	}
	e.root.Declare(name, get(), false, class.Public)
	return nil
}

// RegisterPackage exposes a lazily-built native package under name,
// importable from lyng source as `import name.*` (§6.1 "register
// package").
func (e *Engine) RegisterPackage(name string, build func() *scope.Scope) {
	e.registry.RegisterPackage(name, build)
}

// Result is what Eval returns: the program's final expression value and
// everything print/println wrote, mirroring the teacher's
// Result{Success, Output} pair recovered from its FFI test usage
// (`result.Output`).
type Result struct {
	Value   value.Value
	Output  string
	Success bool
}

// Eval parses and runs src against the engine's root scope, returning
// its last expression's value and captured output.
func (e *Engine) Eval(src string) (*Result, error) {
	return e.EvalContext(context.Background(), src)
}

// EvalContext is Eval with cancellation: src still runs to completion on
// its own goroutine (the tree-walking evaluator has no per-node
// cancellation check), but ctx.Done() lets the caller stop waiting on it
// without hanging.
func (e *Engine) EvalContext(ctx context.Context, src string) (*Result, error) {
	var buf strings.Builder
	prior := e.out
	e.out = io.MultiWriter(prior, &buf)
	defer func() { e.out = prior }()

	prog, diags := parser.ParseProgram(source.New("eval", src))
	if len(diags) > 0 {
		msgs := make([]string, len(diags))
		for i, d := range diags {
			msgs[i] = d.Message
		}
		return &Result{Output: buf.String()}, fmt.Errorf("lyng: parse error: %s", strings.Join(msgs, "; "))
	}

	type outcome struct {
		v   value.Value
		sig *errors.Signal
	}
	done := make(chan outcome, 1)
	go func() {
		progScope := scope.New(e.root)
		v, sig := prog.Execute(progScope)
		done <- outcome{v: v, sig: sig}
	}()

	select {
	case <-ctx.Done():
		return &Result{Output: buf.String()}, ctx.Err()
	case o := <-done:
		if o.sig != nil {
			return &Result{Output: buf.String()}, fmt.Errorf("lyng: %s", o.sig.Error())
		}
		return &Result{Value: o.v, Output: buf.String(), Success: true}, nil
	}
}
