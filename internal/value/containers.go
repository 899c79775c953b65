package value

import (
	"sort"

	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/source"
)

// --- List -----------------------------------------------------------------

// ListData backs List values: an ordered, mutable sequence (§3.3,
// class chain List→Array→Collection→Iterable→Obj).
type ListData struct {
	Items []Value
}

func NewList(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{Class: ClassList, Data: &ListData{Items: cp}}
}

func (v Value) List() *ListData { return v.Data.(*ListData) }

// NormalizeIndex resolves a possibly-negative index against size,
// implementing the Open Question decision documented in DESIGN.md:
// negative indices are accepted everywhere indexable, normalized as
// size+index.
func NormalizeIndex(i int, size int) (int, bool) {
	if i < 0 {
		i += size
	}
	if i < 0 || i >= size {
		return 0, false
	}
	return i, true
}

func (l *ListData) GetAt(i int, pos source.Position) (Value, *errors.Signal) {
	idx, ok := NormalizeIndex(i, len(l.Items))
	if !ok {
		return Value{}, errors.Throw(IndexOutOfBoundsErr("list index out of bounds", pos), pos)
	}
	return l.Items[idx], nil
}

func (l *ListData) PutAt(i int, val Value, pos source.Position) *errors.Signal {
	idx, ok := NormalizeIndex(i, len(l.Items))
	if !ok {
		return errors.Throw(IndexOutOfBoundsErr("list index out of bounds", pos), pos)
	}
	l.Items[idx] = val
	return nil
}

func (l *ListData) Append(vals ...Value) { l.Items = append(l.Items, vals...) }

// --- Set --------------------------------------------------------------

// SetData backs Set values as an insertion-ordered slice deduplicated by
// Equal (small sets are the common case for an embedded scripting
// language; §3.3 does not mandate a hash-based representation).
type SetData struct {
	Items []Value
}

func NewSet(items []Value) Value {
	s := &SetData{}
	for _, it := range items {
		s.Add(it)
	}
	return Value{Class: ClassSet, Data: s}
}

func (v Value) Set() *SetData { return v.Data.(*SetData) }

func (s *SetData) Add(v Value) bool {
	for _, it := range s.Items {
		if Equal(it, v) {
			return false
		}
	}
	s.Items = append(s.Items, v)
	return true
}

func (s *SetData) Contains(v Value) bool {
	for _, it := range s.Items {
		if Equal(it, v) {
			return true
		}
	}
	return false
}

// --- Map ----------------------------------------------------------------

// MapData backs Map values: string-keyed entries in insertion order
// (§3.3 "entries support `=>` construction").
type MapData struct {
	order []string
	m     map[string]Value
}

func NewMap() *MapData { return &MapData{m: make(map[string]Value)} }

func NewMapValue() Value { return Value{Class: ClassMap, Data: NewMap()} }

func (v Value) Map() *MapData { return v.Data.(*MapData) }

func (m *MapData) Get(key string) (Value, bool) {
	v, ok := m.m[key]
	return v, ok
}

// Set inserts or overwrites key, preserving first-insertion order for
// existing keys (later spreads "merge left to right, rightmost wins" per
// the Open Question decision in DESIGN.md).
func (m *MapData) Set(key string, v Value) {
	if _, exists := m.m[key]; !exists {
		m.order = append(m.order, key)
	}
	m.m[key] = v
}

func (m *MapData) Delete(key string) {
	if _, ok := m.m[key]; !ok {
		return
	}
	delete(m.m, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *MapData) Len() int { return len(m.order) }

// Keys returns keys in insertion order.
func (m *MapData) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// SortedKeys returns keys sorted lexically, used by deterministic
// printers/debug dumps.
func (m *MapData) SortedKeys() []string {
	out := m.Keys()
	sort.Strings(out)
	return out
}

// EqualTo implements pairwise-entry map equality (§9 Open Question: key
// ordering is not part of the equality contract).
func (m *MapData) EqualTo(other *MapData) bool {
	if m.Len() != other.Len() {
		return false
	}
	for k, v := range m.m {
		ov, ok := other.m[k]
		if !ok || Compare(v, ov) != 0 {
			return false
		}
	}
	return true
}

// --- Entry (a => b) ------------------------------------------------------

type EntryData struct {
	Key, Val Value
}

func NewEntry(k, v Value) Value { return Value{Class: ClassEntry, Data: &EntryData{Key: k, Val: v}} }
func (v Value) Entry() *EntryData { return v.Data.(*EntryData) }

// --- Range (§3.7) -----------------------------------------------------

// RangeData backs Range values: (start, end, end_inclusive, open_start,
// open_end). Start/End are Int or Char values; one may be the zero Value
// when its side is open.
type RangeData struct {
	Start, End               Value
	HasStart, HasEnd         bool
	EndInclusive             bool
}

func NewRange(start, end Value, hasStart, hasEnd, inclusive bool) Value {
	return Value{Class: ClassRange, Data: &RangeData{
		Start: start, End: end, HasStart: hasStart, HasEnd: hasEnd, EndInclusive: inclusive,
	}}
}

func (v Value) Range() *RangeData { return v.Data.(*RangeData) }

// Bounded reports whether the range has both ends and thus a defined
// Size()/indexability (§3.7 "Open ranges cannot be used where size/index
// are required").
func (r *RangeData) Bounded() bool { return r.HasStart && r.HasEnd }

// Size returns the element count of a bounded Int range.
func (r *RangeData) Size() int64 {
	lo := r.Start.Int()
	hi := r.End.Int()
	if r.EndInclusive {
		if hi < lo {
			return 0
		}
		return hi - lo + 1
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// ToInts materializes a bounded Int range.
func (r *RangeData) ToInts() []int64 {
	n := r.Size()
	out := make([]int64, 0, n)
	lo := r.Start.Int()
	for i := int64(0); i < n; i++ {
		out = append(out, lo+i)
	}
	return out
}

// --- Buffer (§3.3) ------------------------------------------------------

// BufferData backs Buffer values: fixed-size unsigned bytes, comparable.
type BufferData struct {
	Bytes []byte
}

func NewBuffer(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{Class: ClassBuffer, Data: &BufferData{Bytes: cp}}
}

func (v Value) Buffer() *BufferData { return v.Data.(*BufferData) }

func (b *BufferData) EqualTo(other *BufferData) bool {
	if len(b.Bytes) != len(other.Bytes) {
		return false
	}
	for i := range b.Bytes {
		if b.Bytes[i] != other.Bytes[i] {
			return false
		}
	}
	return true
}
