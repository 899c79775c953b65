package ast

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// BinOp names a binary operator; the parser's precedence-climbing loop
// produces one Binary node per applied operator (§4.2 levels 2-9).
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd // &&
	OpOr  // ||
	OpEq
	OpNe
	OpIdentical    // ===
	OpNotIdentical // !==
	OpLt
	OpLe
	OpGt
	OpGe
	OpIn
	OpNotIn
	OpIs
	OpIsNot
	OpShuttle // <=>
	OpRangeInclusive
	OpRangeExclusive
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpUshr
)

// Binary implements §4.3 rules 6-9 and the range/shuttle/membership
// operators. Logical && / || short-circuit: Right is only evaluated
// when needed.
type Binary struct {
	base
	Op          BinOp
	Left, Right Node
}

func NewBinary(pos source.Position, op BinOp, left, right Node) *Binary {
	return &Binary{base: base{pos}, Op: op, Left: left, Right: right}
}

func (n *Binary) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	left, sig := n.Left.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}

	switch n.Op {
	case OpAnd:
		if !left.Bool() {
			return value.False, nil
		}
		right, sig := n.Right.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		return value.NewBoolValue(right.Bool()), nil
	case OpOr:
		if left.Bool() {
			return value.True, nil
		}
		right, sig := n.Right.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		return value.NewBoolValue(right.Bool()), nil
	}

	right, sig := n.Right.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}

	switch n.Op {
	case OpAdd:
		return value.Add(left, right, n.pos)
	case OpSub:
		return value.Sub(left, right, n.pos)
	case OpMul:
		return value.Mul(left, right, n.pos)
	case OpDiv:
		return value.Div(left, right, n.pos)
	case OpMod:
		return value.Mod(left, right, n.pos)
	case OpEq:
		return value.NewBoolValue(value.Equal(left, right)), nil
	case OpNe:
		return value.NewBoolValue(!value.Equal(left, right)), nil
	case OpIdentical:
		return value.NewBoolValue(value.Identical(left, right)), nil
	case OpNotIdentical:
		return value.NewBoolValue(!value.Identical(left, right)), nil
	case OpLt:
		return value.NewBoolValue(value.Compare(left, right) < 0), nil
	case OpLe:
		return value.NewBoolValue(value.Compare(left, right) <= 0), nil
	case OpGt:
		return value.NewBoolValue(value.Compare(left, right) > 0), nil
	case OpGe:
		return value.NewBoolValue(value.Compare(left, right) >= 0), nil
	case OpShuttle:
		return value.NewInt(int64(value.Compare(left, right))), nil
	case OpIn, OpNotIn:
		ok, sig := value.Contains(right, left, n.pos)
		if sig != nil {
			return value.Value{}, sig
		}
		if n.Op == OpNotIn {
			ok = !ok
		}
		return value.NewBoolValue(ok), nil
	case OpIs, OpIsNot:
		target, sig := classOf(right, n.pos)
		if sig != nil {
			return value.Value{}, sig
		}
		ok := left.Class != nil && left.Class.IsSubclassOf(target)
		if n.Op == OpIsNot {
			ok = !ok
		}
		return value.NewBoolValue(ok), nil
	case OpRangeInclusive:
		return value.NewRange(left, right, true, true, true), nil
	case OpRangeExclusive:
		return value.NewRange(left, right, true, true, false), nil
	case OpBitAnd:
		return value.BitAnd(left, right, n.pos)
	case OpBitOr:
		return value.BitOr(left, right, n.pos)
	case OpBitXor:
		return value.BitXor(left, right, n.pos)
	case OpShl:
		return value.Shl(left, right, n.pos)
	case OpShr:
		return value.Shr(left, right, n.pos)
	case OpUshr:
		return value.Ushr(left, right, n.pos)
	}
	return value.Value{}, errors.Throw(value.IllegalOperationErr("unknown operator", n.pos), n.pos)
}

// classOf extracts the *class.Class a `is`/`!is` right-hand side names:
// the expression must evaluate to a Class value; any other value raises
// IllegalArgumentError.
func classOf(v value.Value, pos source.Position) (*class.Class, *errors.Signal) {
	if v.Class == value.ClassClass {
		return v.AsClass(), nil
	}
	return nil, errors.Throw(value.IllegalArgumentErr("right-hand side of is/!is must be a class", pos), pos)
}

// UnOp names a unary operator (§4.2 level 10).
type UnOp int

const (
	UnNeg UnOp = iota
	UnPos
	UnNot
	UnBitNot
	UnPreInc
	UnPreDec
)

// Unary implements prefix !, -, +, ~, ++, -- (§4.3 rule 5 for ++/--).
type Unary struct {
	base
	Op      UnOp
	Operand Node
}

func NewUnary(pos source.Position, op UnOp, operand Node) *Unary {
	return &Unary{base: base{pos}, Op: op, Operand: operand}
}

func (n *Unary) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	switch n.Op {
	case UnPreInc, UnPreDec:
		return stepAssignable(s, n.Operand, n.Op == UnPreInc, true, n.pos)
	}

	v, sig := n.Operand.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	switch n.Op {
	case UnNeg:
		if v.Class == value.ClassInt {
			return value.NewInt(-v.Int()), nil
		}
		if v.Class == value.ClassReal {
			return value.NewReal(-v.Real()), nil
		}
		return value.Value{}, errors.Throw(value.IllegalOperationErr("unary '-' requires a numeric operand", n.pos), n.pos)
	case UnPos:
		if !v.IsNumeric() {
			return value.Value{}, errors.Throw(value.IllegalOperationErr("unary '+' requires a numeric operand", n.pos), n.pos)
		}
		return v, nil
	case UnNot:
		return value.NewBoolValue(!v.Bool()), nil
	case UnBitNot:
		return value.BitNot(v, n.pos)
	}
	return value.Value{}, errors.Throw(value.IllegalOperationErr("unknown unary operator", n.pos), n.pos)
}

// stepAssignable implements both prefix and postfix ++/-- (§4.3 rule 5:
// "pre- evaluates to the new value; post- evaluates to the old value;
// both mutate the variable; only legal on mutable numeric bindings").
func stepAssignable(s *scope.Scope, target Node, increment, isPrefix bool, pos source.Position) (value.Value, *errors.Signal) {
	a, ok := target.(Assignable)
	if !ok {
		return value.Value{}, errors.Throw(value.IllegalOperationErr("++/-- target is not assignable", pos), pos)
	}
	old, sig := target.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	if !old.IsNumeric() {
		return value.Value{}, errors.Throw(value.IllegalOperationErr("++/-- requires a numeric operand", pos), pos)
	}
	var next value.Value
	if old.Class == value.ClassInt {
		delta := int64(1)
		if !increment {
			delta = -1
		}
		next = value.NewInt(old.Int() + delta)
	} else {
		delta := 1.0
		if !increment {
			delta = -1
		}
		next = value.NewReal(old.Real() + delta)
	}
	if sig := a.Assign(s, next); sig != nil {
		return value.Value{}, sig
	}
	if isPrefix {
		return next, nil
	}
	return old, nil
}

// Postfix implements post ++/-- (§4.2 level 11).
type Postfix struct {
	base
	Operand   Node
	Increment bool
}

func NewPostfix(pos source.Position, operand Node, increment bool) *Postfix {
	return &Postfix{base: base{pos}, Operand: operand, Increment: increment}
}

func (n *Postfix) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	return stepAssignable(s, n.Operand, n.Increment, false, n.pos)
}

// --- assignment --------------------------------------------------------

// AssignOp names plain `=` or a compound assignment.
type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignNullCoalesce // ?=
)

// Assign implements §4.3 rule 3 ("assignment returns the rvalue") and
// rule 4 (`?=` assigns only when the target currently reads as Null).
type Assign struct {
	base
	Target Assignable
	Op     AssignOp
	Value  Node
}

func NewAssign(pos source.Position, target Assignable, op AssignOp, val Node) *Assign {
	return &Assign{base: base{pos}, Target: target, Op: op, Value: val}
}

func (n *Assign) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	if n.Op == AssignNullCoalesce {
		cur, sig := n.Target.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		if !cur.IsNull() {
			return cur, nil
		}
		rhs, sig := n.Value.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		if sig := n.Target.Assign(s, rhs); sig != nil {
			return value.Value{}, sig
		}
		return rhs, nil
	}

	rhs, sig := n.Value.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}

	if n.Op != AssignPlain {
		cur, sig := n.Target.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		var combined value.Value
		switch n.Op {
		case AssignAdd:
			combined, sig = value.Add(cur, rhs, n.pos)
		case AssignSub:
			combined, sig = value.Sub(cur, rhs, n.pos)
		case AssignMul:
			combined, sig = value.Mul(cur, rhs, n.pos)
		case AssignDiv:
			combined, sig = value.Div(cur, rhs, n.pos)
		case AssignMod:
			combined, sig = value.Mod(cur, rhs, n.pos)
		}
		if sig != nil {
			return value.Value{}, sig
		}
		rhs = combined
	}

	if sig := n.Target.Assign(s, rhs); sig != nil {
		return value.Value{}, sig
	}
	return rhs, nil
}
