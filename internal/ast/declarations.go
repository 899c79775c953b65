package ast

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// VarDecl implements `val`/`var name [= expr]` (§4.2 statement level):
// an initialiser-less `val` holds Unset until single-assigned.
type VarDecl struct {
	base
	Name    string
	Mutable bool
	Init    Node // nil when there is no initialiser
}

func NewVarDecl(pos source.Position, name string, mutable bool, init Node) *VarDecl {
	return &VarDecl{base: base{pos}, Name: name, Mutable: mutable, Init: init}
}

func (n *VarDecl) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	v := value.Unset
	if n.Init != nil {
		var sig *errors.Signal
		v, sig = n.Init.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
	}
	s.Declare(n.Name, v, n.Mutable, class.Public)
	return v, nil
}

// Pattern is one slot of a destructuring pattern: either a plain name
// binding, a splat (`rest...`) collecting the middle, or a nested
// Pattern for `[[a, b], c] = expr`.
type Pattern struct {
	Name    string
	Splat   bool
	Nested  []*Pattern
	IsNested bool
}

// Destructure implements §4.3 rule 19: `[a, rest..., c] = expr`, used
// both for `val`/`var` introduction (Declare=true) and for reassigning
// existing mutable variables (Declare=false, targets resolved via
// Assignable).
type Destructure struct {
	base
	Patterns []*Pattern
	Declare  bool
	Mutable  bool
	Source   Node
}

func NewDestructure(pos source.Position, patterns []*Pattern, declare, mutable bool, src Node) *Destructure {
	return &Destructure{base: base{pos}, Patterns: patterns, Declare: declare, Mutable: mutable, Source: src}
}

func (n *Destructure) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	src, sig := n.Source.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	items, sig := indexableItems(src, n.pos)
	if sig != nil {
		return value.Value{}, sig
	}
	if sig := bindPattern(s, n.Patterns, items, n.Declare, n.Mutable, n.pos); sig != nil {
		return value.Value{}, sig
	}
	return src, nil
}

// indexableItems materializes the sequence a destructuring source must
// expose (§4.3 rule 19: "requires expr to be indexable and to have
// size").
func indexableItems(v value.Value, pos source.Position) ([]value.Value, *errors.Signal) {
	switch v.Class {
	case value.ClassList:
		return v.List().Items, nil
	case value.ClassRange:
		r := v.Range()
		if !r.Bounded() {
			return nil, errors.Throw(value.IllegalArgumentErr("destructuring source must be bounded", pos), pos)
		}
		ints := r.ToInts()
		out := make([]value.Value, len(ints))
		for i, n := range ints {
			out[i] = value.NewInt(n)
		}
		return out, nil
	case value.ClassSet:
		return v.Set().Items, nil
	default:
		return nil, errors.Throw(value.IllegalArgumentErr("value is not destructurable", pos), pos)
	}
}

// bindPattern draws head and tail elements from both ends of items, with
// at most one splat consuming the interior, and recurses into nested
// patterns.
func bindPattern(s *scope.Scope, patterns []*Pattern, items []value.Value, declare, mutable bool, pos source.Position) *errors.Signal {
	splatIdx := -1
	for i, p := range patterns {
		if p.Splat {
			splatIdx = i
			break
		}
	}

	bind := func(p *Pattern, v value.Value) *errors.Signal {
		if p.IsNested {
			nested, sig := indexableItems(v, pos)
			if sig != nil {
				return sig
			}
			return bindPattern(s, p.Nested, nested, declare, mutable, pos)
		}
		if declare {
			s.Declare(p.Name, v, mutable, class.Public)
			return nil
		}
		id := NewIdentifier(pos, p.Name)
		return id.Assign(s, v)
	}

	if splatIdx < 0 {
		for i, p := range patterns {
			var v value.Value
			if i < len(items) {
				v = items[i]
			} else {
				v = value.Unset
			}
			if sig := bind(p, v); sig != nil {
				return sig
			}
		}
		return nil
	}

	head := patterns[:splatIdx]
	tail := patterns[splatIdx+1:]
	for i, p := range head {
		var v value.Value
		if i < len(items) {
			v = items[i]
		}
		if sig := bind(p, v); sig != nil {
			return sig
		}
	}
	restCount := len(items) - len(head) - len(tail)
	if restCount < 0 {
		restCount = 0
	}
	rest := items[min(len(head), len(items)):min(len(head)+restCount, len(items))]
	if patterns[splatIdx].Name != "" {
		if sig := bind(&Pattern{Name: patterns[splatIdx].Name}, value.NewList(rest)); sig != nil {
			return sig
		}
	}
	tailStart := len(items) - len(tail)
	for i, p := range tail {
		idx := tailStart + i
		var v value.Value
		if idx >= 0 && idx < len(items) {
			v = items[idx]
		}
		if sig := bind(p, v); sig != nil {
			return sig
		}
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Import implements `import path.*` (§4.2); resolution of path against
// the module registry is done by internal/module, which supplies the
// Resolver callback at parse-evaluate time. The parser has no registry
// to hand Import at construction, so it always passes a nil Resolver;
// Execute falls back to DefaultResolver, which internal/module installs
// once a registry exists (mirrors the teacher's unit loader being wired
// into the interpreter after parsing, not during it).
type Import struct {
	base
	Path     string
	Resolver func(path string) (*scope.Scope, *errors.Signal)
}

func NewImport(pos source.Position, path string, resolver func(string) (*scope.Scope, *errors.Signal)) *Import {
	return &Import{base: base{pos}, Path: path, Resolver: resolver}
}

// DefaultResolver is consulted by Import.Execute whenever a node's own
// Resolver is nil. internal/module.NewRegistry installs this on
// construction so that plain `parser.ParseProgram` + `Block.Execute`
// pipelines (tests, the CLI's run command, pkg/lyng.Engine) all pick up whatever
// registry the host created without threading it through every parse
// call.
var DefaultResolver func(path string) (*scope.Scope, *errors.Signal)

func (n *Import) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	resolve := n.Resolver
	if resolve == nil {
		resolve = DefaultResolver
	}
	if resolve == nil {
		return value.Value{}, errors.Throw(
			value.IllegalArgumentErr("no module registry installed to resolve import \""+n.Path+"\"", n.pos),
			n.pos,
		)
	}
	pkgScope, sig := resolve(n.Path)
	if sig != nil {
		return value.Value{}, sig
	}
	for name, rec := range pkgScope.AllLocal() {
		s.Declare(name, rec.Value, rec.Mutable, rec.Visibility)
	}
	return value.Void, nil
}
