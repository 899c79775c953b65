package ast

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// Param is one function/lambda parameter (§4.2.1): optional default,
// at most one trailing variadic.
type Param struct {
	Name     string
	Default  Node
	Variadic bool
}

// Function is both the node that builds a callable value at the point
// of declaration/lambda-literal evaluation, and (via *Function
// implementing value.Invokable) the callable itself: "functions and
// lambdas are cooperative coroutines" captured as one executable node
// per §4.2/§9, not a separate compiled representation.
type Function struct {
	base
	Name       string
	Params     []Param
	Body       Node
	ImplicitIt bool // true for a header-less lambda (§4.2.1 `it` rules)
	Shorthand  bool // `fun f(x) = expr` forbids `return` (§4.3 rule 14)

	// Creator is the scope the function/lambda literal was *evaluated*
	// in — its defining lexical environment, captured once at Execute
	// time and reused by every subsequent call (§4.3 rule 21).
	Creator *scope.Scope
}

func NewFunction(pos source.Position, name string, params []Param, body Node, implicitIt, shorthand bool) *Function {
	return &Function{base: base{pos}, Name: name, Params: params, Body: body, ImplicitIt: implicitIt, Shorthand: shorthand}
}

// Execute captures the current scope as the function's creator scope
// and produces a Callable value; this runs once per declaration/lambda
// literal evaluation (e.g. each time an enclosing function that defines
// a lambda is itself called, a fresh closure is produced capturing that
// invocation's locals).
func (n *Function) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	captured := *n
	captured.Creator = s
	return value.NewCallable(value.ClassCallable, &captured), nil
}

func (f *Function) label() string {
	if f.Name != "" {
		return f.Name
	}
	return ""
}

// Invoke implements value.Invokable. caller is either the *scope.Scope
// of a plain call (no `this` to bind) or a value.Value receiver when
// invoked through a bound method (internal/ast.boundMethod).
func (f *Function) Invoke(caller value.Caller, args value.CallArgs) (value.Value, error) {
	call := scope.NewClosure(f.Creator, nil)
	if recv, ok := caller.(value.Value); ok {
		call.ThisObj = recv
	}

	if err := f.bindParams(call, args); err != nil {
		return value.Value{}, err
	}

	result, sig := f.Body.Execute(call)
	if sig == nil {
		return result, nil
	}
	if sig.Kind == errors.SignalReturn && (sig.Label == "" || sig.Label == f.label()) {
		return sig.Value.(value.Value), nil
	}
	return value.Value{}, sig
}

func (f *Function) bindParams(call *scope.Scope, args value.CallArgs) *errors.Signal {
	if f.ImplicitIt && len(f.Params) == 0 {
		switch len(args.Positional) {
		case 0:
			call.Declare("it", value.Void, true, class.Public)
		case 1:
			call.Declare("it", args.Positional[0], true, class.Public)
		default:
			call.Declare("it", value.NewList(args.Positional), true, class.Public)
		}
		return nil
	}

	usedNamed := make(map[string]bool, len(args.Named))
	posIdx := 0
	for _, p := range f.Params {
		if p.Variadic {
			rest := append([]value.Value{}, args.Positional[min(posIdx, len(args.Positional)):]...)
			call.Declare(p.Name, value.NewList(rest), true, class.Public)
			posIdx = len(args.Positional)
			continue
		}
		var v value.Value
		if posIdx < len(args.Positional) {
			v = args.Positional[posIdx]
			posIdx++
		} else if nv, ok := args.Named[p.Name]; ok && !usedNamed[p.Name] {
			v = nv
			usedNamed[p.Name] = true
		} else if p.Default != nil {
			dv, sig := p.Default.Execute(call)
			if sig != nil {
				return sig
			}
			v = dv
		} else {
			return errors.Throw(value.IllegalArgumentErr("missing required argument: "+p.Name, f.pos), f.pos)
		}
		call.Declare(p.Name, v, true, class.Public)
	}
	return nil
}

func (f *Function) Arity() (int, bool) {
	min := 0
	variadic := false
	for _, p := range f.Params {
		if p.Variadic {
			variadic = true
			continue
		}
		if p.Default == nil {
			min++
		}
	}
	return min, variadic
}

func (f *Function) CallableName() string {
	if f.Name != "" {
		return f.Name
	}
	return "<lambda>"
}

// FunctionDecl implements `fun name(params) { ... }` / `fun name(params)
// = expr`, declaring the resulting callable in the defining scope under
// its own name (so it can call itself recursively, and so its own name
// becomes the default `return` label).
type FunctionDecl struct {
	base
	Name string
	Fn   *Function
}

func NewFunctionDecl(pos source.Position, name string, fn *Function) *FunctionDecl {
	return &FunctionDecl{base: base{pos}, Name: name, Fn: fn}
}

func (n *FunctionDecl) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	s.Declare(n.Name, value.Value{}, true, class.Public)
	callable, sig := n.Fn.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	s.Declare(n.Name, callable, true, class.Public)
	return value.Void, nil
}
