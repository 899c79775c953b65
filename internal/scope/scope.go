// Package scope implements the binding frames the evaluator threads
// through the node tree (§3.4): parent-linked lexical scopes with
// mutable/immutable/visibility-tagged records, a `this` object, call
// arguments, and cycle-safe, non-recursive ancestry walking.
package scope

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// Record is a single storage slot in a scope (§3.4 "A Record is
// {value, mutable, visibility}").
type Record struct {
	Value      value.Value
	Mutable    bool
	Visibility class.Visibility
}

var frameCounter uint64

// nextFrameID hands out a fresh id on every scope acquisition, pooled or
// not (§3.4 "frame_id: Fresh"; §5 "every borrow must regenerate the
// frame id").
func nextFrameID() uint64 { return atomic.AddUint64(&frameCounter, 1) }

// Scope is a lexical binding frame. It is not safe for concurrent use
// from more than one coroutine at a time (§5 "Scope is not thread-safe;
// it is confined to its owning coroutine").
type Scope struct {
	parent  *Scope
	frameID uint64
	records map[string]*Record

	ThisObj value.Value
	Args    value.CallArgs
	Pos     source.Position

	// Creator is set only on closure-invocation scopes: the scope the
	// enclosing function/lambda literal was *defined* in, consulted after
	// the call frame's own locals and before ThisObj (§4 rule 21, §9
	// "Closure scope: resolves names first against its call frame, then
	// against a captured creator frame, then against this, then against
	// the module and root").
	Creator *Scope

	// Module is the top-level scope seeded with built-ins (§6.2), walked
	// last when a closure's own chain and creator chain are exhausted.
	Module *Scope
}

// New creates a root or nested scope with parent as its lexical parent.
// parent may be nil for a fresh root (e.g. a Module scope).
func New(parent *Scope) *Scope {
	s := acquire()
	s.parent = parent
	s.frameID = nextFrameID()
	return s
}

// NewClosure creates a call-invocation scope for a closure: its lexical
// parent is nil (closures resolve through Creator, not a plain parent
// chain) but it still gets a fresh frame id.
func NewClosure(creator, module *Scope) *Scope {
	s := acquire()
	s.frameID = nextFrameID()
	s.Creator = creator
	s.Module = module
	return s
}

// --- pooling (§5 "Scope-frame pooling is permitted... every borrow
// must regenerate the frame id and fully reset parent, locals, this,
// args") ---------------------------------------------------------------

var pool = sync.Pool{New: func() any { return &Scope{records: make(map[string]*Record, 8)} }}

func acquire() *Scope {
	s := pool.Get().(*Scope)
	s.parent = nil
	s.Creator = nil
	s.Module = nil
	s.ThisObj = value.Value{}
	s.Args = value.CallArgs{}
	s.Pos = source.Position{}
	for k := range s.records {
		delete(s.records, k)
	}
	return s
}

// Release returns a scope to the pool. Callers must not use s after
// calling Release. It is always safe to simply stop referencing a scope
// instead of releasing it (the pool is a reuse optimisation, not a
// correctness requirement), which is what the evaluator does for scopes
// captured by a surviving closure.
func Release(s *Scope) {
	if s == nil {
		return
	}
	pool.Put(s)
}

func (s *Scope) FrameID() uint64 { return s.frameID }
func (s *Scope) Parent() *Scope  { return s.parent }

// SetParent assigns s's lexical parent after checking the new chain for
// cycles (§3.4 "Cycles in parent chains are prohibited on assignment").
// On detecting a cycle it returns an error instead of linking; callers
// that must not fail (e.g. pool fallback) should allocate a fresh frame
// instead of retrying the link.
func (s *Scope) SetParent(p *Scope) error {
	visited := map[uint64]bool{s.frameID: true}
	for cur := p; cur != nil; cur = cur.parent {
		if visited[cur.frameID] {
			return fmt.Errorf("scope: cycle detected linking frame %d", s.frameID)
		}
		visited[cur.frameID] = true
	}
	s.parent = p
	return nil
}

// Declare creates or overwrites a record in s's own frame (never walks
// parents): this is what `var`/`val`/parameter binding/for-loop variable
// introduction do.
func (s *Scope) Declare(name string, v value.Value, mutable bool, vis class.Visibility) {
	s.records[name] = &Record{Value: v, Mutable: mutable, Visibility: vis}
}

// Local reads a record only from s's own frame, without consulting
// parent/creator/this (used to detect shadowing and for `this@Type`-less
// field/local disambiguation).
func (s *Scope) Local(name string) (*Record, bool) {
	r, ok := s.records[name]
	return r, ok
}

// Resolve looks up name along the full resolution order of §4 rule 21 /
// §9: this frame's locals, then (for a plain nested scope) parent
// frames; for a closure-invocation scope, the creator chain instead of a
// lexical parent; `this` object members are considered only after the
// scope-chain lookup is exhausted, then the module/root scope.
//
// The walk is iterative and cycle-safe (§3.4 "ancestry walkers used for
// lookup must also terminate on cycles using a small visited set keyed
// by frame_id"; §3.4 "helpers must walk raw parents and check locals
// directly to avoid recursion across specialised scope types").
func (s *Scope) Resolve(name string) (*Record, *Scope, bool) {
	visited := make(map[uint64]bool)

	for cur := s; cur != nil; cur = cur.parent {
		if visited[cur.frameID] {
			break
		}
		visited[cur.frameID] = true
		if r, ok := cur.records[name]; ok {
			return r, cur, true
		}
	}

	for cur := s.Creator; cur != nil; cur = cur.creatorOrParent() {
		if visited[cur.frameID] {
			break
		}
		visited[cur.frameID] = true
		if r, ok := cur.records[name]; ok {
			return r, cur, true
		}
	}

	// `this`-member fallback (§4 rule 21: locals, then creator chain,
	// then this-object members) is resolved by the evaluator's
	// identifier node, which knows how to read InstanceData fields;
	// Resolve only reports the scope-chain outcome.

	if s.Module != nil && s.Module != s {
		return s.Module.Resolve(name)
	}
	return nil, nil, false
}

// creatorOrParent lets the creator-chain walk in Resolve follow a
// closure scope's own Creator link if it has one, falling back to a
// plain lexical Parent otherwise — so a closure created inside another
// closure still resolves transitively.
func (cur *Scope) creatorOrParent() *Scope {
	if cur.Creator != nil {
		return cur.Creator
	}
	return cur.parent
}

// AllLocal returns every record declared directly in s's own frame,
// used by `import path.*` to copy a package scope's public bindings
// into the importing scope.
func (s *Scope) AllLocal() map[string]*Record {
	out := make(map[string]*Record, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// Assign writes to the record name resolves to, honouring mutability
// (§3.4 Record.mutable). It returns false if name is not found in any
// reachable scope.
func (s *Scope) Assign(name string, v value.Value) (ok bool, mutableViolation bool) {
	r, _, found := s.Resolve(name)
	if !found {
		return false, false
	}
	if !r.Mutable {
		return true, true
	}
	r.Value = v
	return true, false
}
