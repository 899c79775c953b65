package ast

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// CatchClause binds a caught exception to a name (implicitly `it` when
// unbound, §4.3 rule 25) and runs Body when the raised error's class is
// the value ClassExpr evaluates to, or a descendant of it. ClassExpr is
// evaluated fresh on every dispatch rather than resolved once at parse
// time, since a caught class may be a user-declared class bound later in
// the same scope chain, not just one of the builtin exception classes.
type CatchClause struct {
	BindName  string
	ClassExpr Node // nil means the implicit `catch { ... }` form, which binds Exception
	Body      Node
}

// Try implements `try { ... } catch(e) { ... } finally { ... }` (§4.3
// rule 25): the first catch clause whose class is an ancestor of the
// raised error's class runs; finally always runs, on every exit path,
// without affecting the block's value; re-entrant nesting falls
// naturally out of Go's own call stack.
type Try struct {
	base
	Body    Node
	Catches []CatchClause
	Finally Node
}

func NewTry(pos source.Position, body Node, catches []CatchClause, finally Node) *Try {
	return &Try{base: base{pos}, Body: body, Catches: catches, Finally: finally}
}

func (n *Try) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	result, sig := n.runBody(s)

	if sig != nil && sig.Kind == errors.SignalThrow {
		raised := sig.Value.(value.Value)
		for _, c := range n.Catches {
			bindClass := value.ClassException
			if c.ClassExpr != nil {
				cv, csig := c.ClassExpr.Execute(s)
				if csig != nil {
					return value.Value{}, csig
				}
				if cls, ok := cv.Data.(*class.Class); ok {
					bindClass = cls
				}
			}
			if raised.Class != nil && raised.Class.IsSubclassOf(bindClass) {
				inner := scope.New(s)
				name := c.BindName
				if name == "" {
					name = "it"
				}
				inner.Declare(name, raised, false, class.Public)
				result, sig = c.Body.Execute(inner)
				scope.Release(inner)
				break
			}
		}
	}

	if n.Finally != nil {
		_, finSig := n.Finally.Execute(s)
		if finSig != nil {
			return value.Value{}, finSig
		}
	}
	return result, sig
}

func (n *Try) runBody(s *scope.Scope) (value.Value, *errors.Signal) {
	return n.Body.Execute(s)
}

// Throw implements `throw expr` (§4.3 rule 26): a String is wrapped as
// `Exception(message)`; anything else must already be an Exception
// instance.
type Throw struct {
	base
	Expr Node
}

func NewThrow(pos source.Position, expr Node) *Throw {
	return &Throw{base: base{pos}, Expr: expr}
}

func (n *Throw) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	v, sig := n.Expr.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	if v.Class == value.ClassString {
		v = value.NewException(value.ClassException, v.Str(), nil, n.pos)
	} else if v.Class == nil || !v.Class.IsSubclassOf(value.ClassException) {
		return value.Value{}, errors.Throw(value.IllegalArgumentErr("thrown value must be an Exception or a String", n.pos), n.pos)
	}
	return value.Value{}, errors.Throw(v, n.pos)
}
