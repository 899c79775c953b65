package ast

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// dynamicObject is the payload of a `dynamic { ... }` value (§4.3 rule
// 22): member read/write (`d.name`, `d.name = v`) dispatches to
// user-supplied get/set lambdas instead of a fixed field table. Indexed
// access (`d[k]`) is not dispatched to get/set; it goes through the
// ordinary getAt/putAt class dispatch, which Dynamic does not define.
type dynamicObject struct {
	get *Function // (name) -> value; nil if unreadable
	set *Function // (name, value) -> void; nil if unwritable
}

// mustClass builds a process-wide singleton class for this package's own
// runtime types (Dynamic, DelegateSlot), mirroring internal/value's own
// "must" helper for the builtin class graph.
func mustClass(name string, parents ...*class.Class) *class.Class {
	c, err := class.New(name, parents, source.Position{})
	if err != nil {
		panic("class " + name + ": " + err.Error())
	}
	return c
}

var classDynamic = mustClass("Dynamic", value.ClassObj)

// DynamicLiteral implements `dynamic { get { name -> ... }; set { name,
// value -> ... } }`.
type DynamicLiteral struct {
	base
	Get, Set *Function
}

func NewDynamicLiteral(pos source.Position, get, set *Function) *DynamicLiteral {
	return &DynamicLiteral{base: base{pos}, Get: get, Set: set}
}

func (n *DynamicLiteral) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	get, set := n.Get, n.Set
	if get != nil {
		captured := *get
		captured.Creator = s
		get = &captured
	}
	if set != nil {
		captured := *set
		captured.Creator = s
		set = &captured
	}
	return value.Value{Class: classDynamic, Data: &dynamicObject{get: get, set: set}}, nil
}

func asDynamic(v value.Value) (*dynamicObject, bool) {
	if v.Class != classDynamic {
		return nil, false
	}
	d, ok := v.Data.(*dynamicObject)
	return d, ok
}

// Delegate describes `val x by delegate` / `var y by delegate` / `fun f
// by delegate` (§4.3 rule 23). On binding, the compiler (here, runtime
// construction of the delegated accessor) calls `delegate.bind(name,
// access, thisRef)` if present; reads call `getValue`, writes call
// `setValue`. Calling a delegated name reads it through `getValue` and
// calls the result; the delegate's `invoke` is never called.
type Delegate struct {
	base
	Name     string
	Mutable  bool
	Delegate Node
}

func NewDelegate(pos source.Position, name string, mutable bool, delegate Node) *Delegate {
	return &Delegate{base: base{pos}, Name: name, Mutable: mutable, Delegate: delegate}
}

func (n *Delegate) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	delegateVal, sig := n.Delegate.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	if bind, _ := delegateVal.Class.Resolve("bind"); bind != nil {
		if impl, ok := bind.Value.(value.Invokable); ok {
			bound, err := impl.Invoke(delegateVal, value.CallArgs{Positional: []value.Value{
				value.NewString(n.Name), value.NewString(access(n.Mutable)), s.ThisObj,
			}})
			if err != nil {
				return value.Value{}, toSignal(err, n.pos)
			}
			delegateVal = bound
		}
	}
	s.Declare(n.Name, value.Value{Class: classDelegateSlot, Data: &delegateSlot{delegate: delegateVal, name: n.Name}}, n.Mutable, class.Public)
	return value.Void, nil
}

func access(mutable bool) string {
	if mutable {
		return "var"
	}
	return "val"
}

var classDelegateSlot = mustClass("DelegateSlot", value.ClassObj)

// delegateSlot is a scope Record payload marking a name as delegated;
// Identifier.Execute/Assign special-case it to call getValue/setValue
// on the underlying delegate instead of reading the record directly.
type delegateSlot struct {
	delegate value.Value
	name     string
}

func readDelegate(s *scope.Scope, slot *delegateSlot, pos source.Position) (value.Value, *errors.Signal) {
	m, _ := slot.delegate.Class.Resolve("getValue")
	if m == nil {
		return value.Value{}, errors.Throw(value.IllegalOperationErr("delegate has no getValue", pos), pos)
	}
	impl := m.Value.(value.Invokable)
	result, err := impl.Invoke(slot.delegate, value.CallArgs{Positional: []value.Value{s.ThisObj, value.NewString(slot.name)}})
	if err != nil {
		return value.Value{}, toSignal(err, pos)
	}
	return result, nil
}

func writeDelegate(s *scope.Scope, slot *delegateSlot, v value.Value, pos source.Position) *errors.Signal {
	m, _ := slot.delegate.Class.Resolve("setValue")
	if m == nil {
		return errors.Throw(value.IllegalOperationErr("delegate has no setValue", pos), pos)
	}
	impl := m.Value.(value.Invokable)
	_, err := impl.Invoke(slot.delegate, value.CallArgs{Positional: []value.Value{s.ThisObj, value.NewString(slot.name), v}})
	if err != nil {
		return toSignal(err, pos)
	}
	return nil
}

// Annotation implements `@Name(args) decl` (§4.3 rule 24): calls
// Name(declName, body, args...) at definition time; the returned
// callable becomes the effective body for a function, or the returned
// value becomes the effective field value for val/var. The result is
// bound under DeclName as a mutable binding, whether the declaration was
// fun, val or var.
type Annotation struct {
	base
	AnnotationExpr Node
	DeclName       string
	Body           Node
	Args           []Node
}

func NewAnnotation(pos source.Position, annotationExpr Node, declName string, body Node, args []Node) *Annotation {
	return &Annotation{base: base{pos}, AnnotationExpr: annotationExpr, DeclName: declName, Body: body, Args: args}
}

func (n *Annotation) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	fn, sig := n.AnnotationExpr.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	impl, ok := fn.Data.(value.Invokable)
	if !ok {
		return value.Value{}, errors.Throw(value.IllegalOperationErr("annotation is not callable", n.pos), n.pos)
	}
	body, sig := n.Body.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	positional := []value.Value{value.NewString(n.DeclName), body}
	for _, a := range n.Args {
		v, sig := a.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		positional = append(positional, v)
	}
	result, err := impl.Invoke(s, value.CallArgs{Positional: positional})
	if err != nil {
		return value.Value{}, toSignal(err, n.pos)
	}
	if n.DeclName != "" {
		s.Declare(n.DeclName, result, true, class.Public)
	}
	return result, nil
}
