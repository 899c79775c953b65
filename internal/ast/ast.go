// Package ast is the node tree the parser builds and the evaluator
// walks. Per §4.2 there is no separate AST/IR split: every node embeds
// its own execution logic directly ("nodes ARE the evaluator"),
// collapsing what the teacher keeps as two packages (internal/ast +
// internal/interp) into one.
package ast

import (
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// Node is the contract every tree node satisfies (§4.2):
//
//	Node.execute(scope) -> Value   (may suspend)
//	Node.pos -> Position
type Node interface {
	Execute(s *scope.Scope) (value.Value, *errors.Signal)
	Pos() source.Position
}

// Assignable is implemented by nodes that are valid assignment targets
// (identifiers, member access, indexing, destructuring patterns).
type Assignable interface {
	Node
	Assign(s *scope.Scope, v value.Value) *errors.Signal
}

// base carries the one field almost every node needs and gives them
// Pos() for free by embedding.
type base struct {
	pos source.Position
}

func (b base) Pos() source.Position { return b.pos }

// --- literals --------------------------------------------------------

// Literal wraps an already-computed Value (int/real/string/bool/char/
// void/null literals all reduce to this one node).
type Literal struct {
	base
	Value value.Value
}

func NewLiteral(pos source.Position, v value.Value) *Literal {
	return &Literal{base: base{pos}, Value: v}
}

func (n *Literal) Execute(*scope.Scope) (value.Value, *errors.Signal) { return n.Value, nil }

// --- identifiers -------------------------------------------------------

// Identifier resolves a name against the scope chain, then (if the
// scope has a this-object) against the instance's fields, matching the
// lookup order of §4 rule 21 / §9 "resolves first against its call
// frame, then against a captured creator frame, then against this".
type Identifier struct {
	base
	Name string
}

func NewIdentifier(pos source.Position, name string) *Identifier {
	return &Identifier{base: base{pos}, Name: name}
}

func (n *Identifier) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	if r, _, ok := s.Resolve(n.Name); ok {
		if slot, ok := asDelegateSlot(r.Value); ok {
			return readDelegate(s, slot, n.pos)
		}
		return r.Value, nil
	}
	if inst, ok := thisInstance(s); ok {
		if v, _, ok := inst.Get(n.Name); ok {
			return v, nil
		}
	}
	return value.Value{}, errors.Throw(value.SymbolNotDefinedErr("undefined symbol: "+n.Name, n.pos), n.pos)
}

func (n *Identifier) Assign(s *scope.Scope, v value.Value) *errors.Signal {
	if r, _, ok := s.Resolve(n.Name); ok {
		if slot, ok := asDelegateSlot(r.Value); ok {
			return writeDelegate(s, slot, v, n.pos)
		}
	}
	found, violated := s.Assign(n.Name, v)
	if violated {
		return errors.Throw(value.IllegalAssignmentErr("cannot assign to immutable binding: "+n.Name, n.pos), n.pos)
	}
	if found {
		return nil
	}
	if inst, ok := thisInstance(s); ok {
		if _, declarer, ok := inst.Get(n.Name); ok {
			inst.Set(declarer, n.Name, v)
			return nil
		}
	}
	return errors.Throw(value.SymbolNotDefinedErr("undefined symbol: "+n.Name, n.pos), n.pos)
}

func asDelegateSlot(v value.Value) (*delegateSlot, bool) {
	if v.Class != classDelegateSlot {
		return nil, false
	}
	slot, ok := v.Data.(*delegateSlot)
	return slot, ok
}

func thisInstance(s *scope.Scope) (*value.InstanceData, bool) {
	if s.ThisObj.Class == nil || s.ThisObj.Data == nil {
		return nil, false
	}
	inst, ok := s.ThisObj.Data.(*value.InstanceData)
	if !ok {
		return nil, false
	}
	return inst, true
}

// --- this ------------------------------------------------------------

// ThisExpr reads the scope's current this-object (§3.5 instance
// methods, §4.3 rule 10).
type ThisExpr struct{ base }

func NewThisExpr(pos source.Position) *ThisExpr { return &ThisExpr{base{pos}} }

func (n *ThisExpr) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	return s.ThisObj, nil
}

// --- blocks --------------------------------------------------------

// Block evaluates to the value of its last statement, Void if empty
// (§4.3 rules 1-2). Each Block gets its own child scope.
type Block struct {
	base
	Stmts []Node
}

func NewBlock(pos source.Position, stmts []Node) *Block {
	return &Block{base: base{pos}, Stmts: stmts}
}

func (n *Block) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	inner := scope.New(s)
	defer scope.Release(inner)
	return n.ExecuteIn(inner)
}

// ExecuteIn runs the block's statements directly in an already-built
// scope, used by constructs that need the block's names visible beyond
// the block itself (do-while's condition).
func (n *Block) ExecuteIn(inner *scope.Scope) (value.Value, *errors.Signal) {
	result := value.Void
	for _, stmt := range n.Stmts {
		v, sig := stmt.Execute(inner)
		if sig != nil {
			return value.Value{}, sig
		}
		result = v
	}
	return result, nil
}

// VoidLiteral is `void` / the implicit value of side-effecting
// constructs with nothing to return (§4.3 rule 1).
func VoidLiteral(pos source.Position) *Literal { return NewLiteral(pos, value.Void) }
