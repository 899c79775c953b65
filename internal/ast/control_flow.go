package ast

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// If implements `if (cond) then [else else_]`; both branches are
// expressions, so `if` itself evaluates to whichever branch ran (or
// Void if the condition is false and there is no else, §4.3 rule 1).
type If struct {
	base
	Cond, Then, Else Node
}

func NewIf(pos source.Position, cond, then, els Node) *If {
	return &If{base: base{pos}, Cond: cond, Then: then, Else: els}
}

func (n *If) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	c, sig := n.Cond.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	if c.Bool() {
		return n.Then.Execute(s)
	}
	if n.Else != nil {
		return n.Else.Execute(s)
	}
	return value.Void, nil
}

// loopOutcome implements the shared state machine of §4.4.1 / §4.3 rule
// 16 for while/do-while/for: runs body once, and reports whether to keep
// looping, the value to evaluate to on break, and any unrelated signal
// that must propagate.
func loopOutcome(sig *errors.Signal, label string) (keep bool, brokeWithValue bool, breakValue value.Value, propagate *errors.Signal) {
	if sig == nil {
		return true, false, value.Value{}, nil
	}
	switch sig.Kind {
	case errors.SignalBreak:
		if sig.Label != "" && sig.Label != label {
			return false, false, value.Value{}, sig
		}
		return false, true, sig.Value.(value.Value), nil
	case errors.SignalContinue:
		if sig.Label != "" && sig.Label != label {
			return false, false, value.Value{}, sig
		}
		return true, false, value.Value{}, nil
	default:
		return false, false, value.Value{}, sig
	}
}

// While implements `while (cond) body [else elseBody]` (§4.3 rules 15-16,
// §4.4.1).
type While struct {
	base
	Label         string
	Cond, Body    Node
	Else          Node
}

func NewWhile(pos source.Position, label string, cond, body, els Node) *While {
	return &While{base: base{pos}, Label: label, Cond: cond, Body: body, Else: els}
}

func (n *While) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	ran := false
	for {
		c, sig := n.Cond.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		if !c.Bool() {
			break
		}
		ran = true
		_, bodySig := n.Body.Execute(s)
		keep, broke, breakVal, propagate := loopOutcome(bodySig, n.Label)
		if propagate != nil {
			return value.Value{}, propagate
		}
		if broke {
			return breakVal, nil
		}
		if !keep {
			break
		}
	}
	if !ran && n.Else == nil {
		return value.Void, nil
	}
	if ran {
		return value.Void, nil
	}
	return n.Else.Execute(s)
}

// DoWhile implements `do { ... } while(cond)` (§4.3 rule 17): the
// condition is evaluated in the body's own scope, so names declared in
// the body are visible in the condition.
type DoWhile struct {
	base
	Label string
	Body  *Block
	Cond  Node
}

func NewDoWhile(pos source.Position, label string, body *Block, cond Node) *DoWhile {
	return &DoWhile{base: base{pos}, Label: label, Body: body, Cond: cond}
}

func (n *DoWhile) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	for {
		inner := scope.New(s)
		_, bodySig := n.Body.ExecuteIn(inner)
		keep, broke, breakVal, propagate := loopOutcome(bodySig, n.Label)
		if propagate != nil {
			scope.Release(inner)
			return value.Value{}, propagate
		}
		if broke {
			scope.Release(inner)
			return breakVal, nil
		}
		if !keep {
			scope.Release(inner)
			break
		}
		c, sig := n.Cond.Execute(inner)
		scope.Release(inner)
		if sig != nil {
			return value.Value{}, sig
		}
		if !c.Bool() {
			break
		}
	}
	return value.Void, nil
}

// For implements `for (x in iterable)` (§4.3 rule 18): an Int-range
// fast path, otherwise the iterator protocol (`iterator()`, `hasNext`,
// `next`), calling `cancelIteration()` when a break aborts iteration
// early.
type For struct {
	base
	Label    string
	VarName  string
	Iterable Node
	Body     Node
}

func NewFor(pos source.Position, label, varName string, iterable, body Node) *For {
	return &For{base: base{pos}, Label: label, VarName: varName, Iterable: iterable, Body: body}
}

func (n *For) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	iter, sig := n.Iterable.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}

	if iter.Class == value.ClassRange && iter.Range().Bounded() {
		for _, i := range iter.Range().ToInts() {
			keep, broke, breakVal, propagate := n.runOne(s, value.NewInt(i))
			if propagate != nil {
				return value.Value{}, propagate
			}
			if broke {
				return breakVal, nil
			}
			if !keep {
				break
			}
		}
		return value.Void, nil
	}

	it, sig := n.dispatch(s, iter, "iterator")
	if sig != nil {
		return value.Value{}, sig
	}

	for {
		hasNext, sig := n.dispatch(s, it, "hasNext")
		if sig != nil {
			return value.Value{}, sig
		}
		if !hasNext.Bool() {
			break
		}
		item, sig := n.dispatch(s, it, "next")
		if sig != nil {
			return value.Value{}, sig
		}
		keep, broke, breakVal, propagate := n.runOne(s, item)
		if propagate != nil {
			n.dispatch(s, it, "cancelIteration")
			return value.Value{}, propagate
		}
		if broke {
			n.dispatch(s, it, "cancelIteration")
			return breakVal, nil
		}
		if !keep {
			n.dispatch(s, it, "cancelIteration")
			break
		}
	}
	return value.Void, nil
}

func (n *For) runOne(s *scope.Scope, item value.Value) (keep, broke bool, breakVal value.Value, propagate *errors.Signal) {
	inner := scope.New(s)
	defer scope.Release(inner)
	inner.Declare(n.VarName, item, true, class.Public)
	_, sig := n.Body.Execute(inner)
	return loopOutcome(sig, n.Label)
}

// dispatch calls a zero-argument method on recv's class chain (used for
// the iterator protocol); a missing `cancelIteration` is not an error
// (§4.3 rule 18: "if present").
func (n *For) dispatch(s *scope.Scope, recv value.Value, method string) (value.Value, *errors.Signal) {
	m, _ := recv.Class.Resolve(method)
	if m == nil {
		if method == "cancelIteration" {
			return value.Void, nil
		}
		return value.Value{}, errors.Throw(value.IllegalOperationErr(recv.Class.Name+" has no "+method+"()", n.pos), n.pos)
	}
	callable, ok := m.Value.(value.Invokable)
	if !ok {
		return value.Value{}, errors.Throw(value.IllegalOperationErr(method+" is not callable", n.pos), n.pos)
	}
	result, err := callable.Invoke(recv, value.CallArgs{})
	if err != nil {
		if sig, ok := err.(*errors.Signal); ok {
			return value.Value{}, sig
		}
		return value.Value{}, errors.Throw(value.NewException(value.ClassUnknownException, err.Error(), nil, n.pos), n.pos)
	}
	return result, nil
}

// Break implements `break [@label] [expr]` (§4.3 rule 15).
type Break struct {
	base
	Label string
	Value Node
}

func NewBreak(pos source.Position, label string, val Node) *Break {
	return &Break{base: base{pos}, Label: label, Value: val}
}

func (n *Break) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	v := value.Void
	if n.Value != nil {
		var sig *errors.Signal
		v, sig = n.Value.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
	}
	return value.Value{}, errors.Break(n.Label, v, n.pos)
}

// Continue implements `continue [@label]`.
type Continue struct {
	base
	Label string
}

func NewContinue(pos source.Position, label string) *Continue {
	return &Continue{base: base{pos}, Label: label}
}

func (n *Continue) Execute(*scope.Scope) (value.Value, *errors.Signal) {
	return value.Value{}, errors.Continue(n.Label, n.pos)
}

// Return implements `return [@label] [expr]` (§4.3 rule 14).
type Return struct {
	base
	Label string
	Value Node
}

func NewReturn(pos source.Position, label string, val Node) *Return {
	return &Return{base: base{pos}, Label: label, Value: val}
}

func (n *Return) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	v := value.Void
	if n.Value != nil {
		var sig *errors.Signal
		v, sig = n.Value.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
	}
	return value.Value{}, errors.Return(n.Label, v, n.pos)
}
