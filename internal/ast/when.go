package ast

import (
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// CondKind distinguishes a `when` branch condition's matching rule
// (§4.2.4).
type CondKind int

const (
	CondEquals CondKind = iota // expr: equality with subject via compareTo == 0
	CondIn                     // in expr
	CondNotIn                  // !in expr
	CondIs                     // is ClassExpr
	CondIsNot                  // !is ClassExpr
)

// WhenCond is one comma-separated condition within a `when` branch;
// commas within a branch are logical-or with early-exit on first match
// (§4.3 rule 20).
type WhenCond struct {
	Kind CondKind
	Expr Node
}

// WhenBranch pairs a set of conditions with the body to run when any of
// them matches.
type WhenBranch struct {
	Conds []WhenCond
	Body  Node
}

// When implements `when(subject) { cond, cond -> result; else -> result
// }` (§4.2.4, §4.3 rule 20). Else is nil when omitted, in which case an
// unmatched subject evaluates to Void.
type When struct {
	base
	Subject  Node
	Branches []WhenBranch
	Else     Node
}

func NewWhen(pos source.Position, subject Node, branches []WhenBranch, els Node) *When {
	return &When{base: base{pos}, Subject: subject, Branches: branches, Else: els}
}

func (n *When) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	subject, sig := n.Subject.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}

	for _, branch := range n.Branches {
		matched, sig := n.branchMatches(s, subject, branch)
		if sig != nil {
			return value.Value{}, sig
		}
		if matched {
			return branch.Body.Execute(s)
		}
	}
	if n.Else != nil {
		return n.Else.Execute(s)
	}
	return value.Void, nil
}

func (n *When) branchMatches(s *scope.Scope, subject value.Value, branch WhenBranch) (bool, *errors.Signal) {
	for _, cond := range branch.Conds {
		ok, sig := n.condMatches(s, subject, cond)
		if sig != nil {
			return false, sig
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (n *When) condMatches(s *scope.Scope, subject value.Value, cond WhenCond) (bool, *errors.Signal) {
	v, sig := cond.Expr.Execute(s)
	if sig != nil {
		return false, sig
	}
	switch cond.Kind {
	case CondEquals:
		return value.Equal(subject, v), nil
	case CondIn, CondNotIn:
		ok, sig := value.Contains(v, subject, n.pos)
		if sig != nil {
			return false, sig
		}
		if cond.Kind == CondNotIn {
			ok = !ok
		}
		return ok, nil
	case CondIs, CondIsNot:
		target, sig := classOf(v, n.pos)
		if sig != nil {
			return false, sig
		}
		ok := subject.Class != nil && subject.Class.IsSubclassOf(target)
		if cond.Kind == CondIsNot {
			ok = !ok
		}
		return ok, nil
	}
	return false, nil
}
