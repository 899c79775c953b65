package ast

import (
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// ListElem is one element of a list literal: either a plain expression
// or a `...iterable` spread (§4.2.3).
type ListElem struct {
	Expr   Node
	Spread bool
}

// ListLiteral implements `[a, ...iterable, b]`.
type ListLiteral struct {
	base
	Elems []ListElem
}

func NewListLiteral(pos source.Position, elems []ListElem) *ListLiteral {
	return &ListLiteral{base: base{pos}, Elems: elems}
}

func (n *ListLiteral) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	var items []value.Value
	for _, e := range n.Elems {
		v, sig := e.Expr.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		if !e.Spread {
			items = append(items, v)
			continue
		}
		spread, sig := spreadItems(v, n.pos)
		if sig != nil {
			return value.Value{}, sig
		}
		items = append(items, spread...)
	}
	return value.NewList(items), nil
}

func spreadItems(v value.Value, pos source.Position) ([]value.Value, *errors.Signal) {
	switch v.Class {
	case value.ClassList:
		return v.List().Items, nil
	case value.ClassSet:
		return v.Set().Items, nil
	case value.ClassRange:
		r := v.Range()
		if !r.Bounded() {
			return nil, errors.Throw(value.IllegalArgumentErr("cannot spread an open range", pos), pos)
		}
		ints := r.ToInts()
		out := make([]value.Value, len(ints))
		for i, x := range ints {
			out[i] = value.NewInt(x)
		}
		return out, nil
	default:
		return nil, errors.Throw(value.IllegalArgumentErr("value is not spreadable", pos), pos)
	}
}

// MapEntry is one entry of a map literal: a key/value pair, or a
// `...mapExpr` spread (§4.2.3). Key is nil for a spread entry.
type MapEntry struct {
	Key    Node // string-valued expression, or nil for id-shorthand/spread
	KeyLit string
	Value  Node
	Spread Node
}

// MapLiteral implements `{ "k": v, id: expr, id:, ...other }`.
type MapLiteral struct {
	base
	Entries []MapEntry
}

func NewMapLiteral(pos source.Position, entries []MapEntry) *MapLiteral {
	return &MapLiteral{base: base{pos}, Entries: entries}
}

func (n *MapLiteral) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	m := value.NewMap()
	for _, e := range n.Entries {
		if e.Spread != nil {
			spreadVal, sig := e.Spread.Execute(s)
			if sig != nil {
				return value.Value{}, sig
			}
			if spreadVal.Class != value.ClassMap {
				return value.Value{}, errors.Throw(value.IllegalArgumentErr("map spread requires a Map", n.pos), n.pos)
			}
			for _, k := range spreadVal.Map().Keys() {
				v, _ := spreadVal.Map().Get(k)
				m.Set(k, v)
			}
			continue
		}
		key := e.KeyLit
		if e.Key != nil {
			kv, sig := e.Key.Execute(s)
			if sig != nil {
				return value.Value{}, sig
			}
			key = kv.Str()
		}
		val, sig := e.Value.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		m.Set(key, val)
	}
	return value.Value{Class: value.ClassMap, Data: m}, nil
}

// SetLiteral implements `Set(a, b, c)`-style construction when the
// parser recognises the builtin `Set()` constructor form directly
// (duplicates dropped per value.SetData.Add semantics).
type SetLiteral struct {
	base
	Elems []Node
}

func NewSetLiteral(pos source.Position, elems []Node) *SetLiteral {
	return &SetLiteral{base: base{pos}, Elems: elems}
}

func (n *SetLiteral) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	items := make([]value.Value, 0, len(n.Elems))
	for _, e := range n.Elems {
		v, sig := e.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		items = append(items, v)
	}
	return value.NewSet(items), nil
}

// EntryLiteral implements `a => b` (§4.2.3).
type EntryLiteral struct {
	base
	Key, Val Node
}

func NewEntryLiteral(pos source.Position, key, val Node) *EntryLiteral {
	return &EntryLiteral{base: base{pos}, Key: key, Val: val}
}

func (n *EntryLiteral) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	k, sig := n.Key.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	v, sig := n.Val.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	return value.NewEntry(k, v), nil
}

// RangeLiteral implements `a..b`, `a..<b`, and their open-ended forms
// (§4.3 rule 12): a nil Start or End means an open end on that side.
type RangeLiteral struct {
	base
	Start, End   Node
	EndInclusive bool
}

func NewRangeLiteral(pos source.Position, start, end Node, inclusive bool) *RangeLiteral {
	return &RangeLiteral{base: base{pos}, Start: start, End: end, EndInclusive: inclusive}
}

func (n *RangeLiteral) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	var start, end value.Value
	hasStart, hasEnd := n.Start != nil, n.End != nil
	if hasStart {
		v, sig := n.Start.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		start = v
	}
	if hasEnd {
		v, sig := n.End.Execute(s)
		if sig != nil {
			return value.Value{}, sig
		}
		end = v
	}
	return value.NewRange(start, end, hasStart, hasEnd, n.EndInclusive), nil
}
