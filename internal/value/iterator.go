package value

import (
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/source"
)

// IteratorData backs Iterator values produced by `Iterable.iterator()`
// (§3.3, §3.7 "Iterator interface class — must provide hasNext, next").
// It wraps a pull closure with one-element lookahead so hasNext can peek
// without consuming, matching the teacher's own preference for closures
// over hand-rolled state machines when wiring a new builtin (see
// internal/bytecode/vm_builtins_misc.go's array helpers).
type IteratorData struct {
	pull    func() (Value, bool)
	cancel  func()
	pending Value
	have    bool
	done    bool
}

// NewIterator builds an Iterator value from a pull closure (returns
// false once exhausted) and an optional cancel callback run on early
// break (§4.3 rule 18).
func NewIterator(pull func() (Value, bool), cancel func()) Value {
	if cancel == nil {
		cancel = func() {}
	}
	return Value{Class: ClassIterator, Data: &IteratorData{pull: pull, cancel: cancel}}
}

func (it *IteratorData) fill() {
	if it.have || it.done {
		return
	}
	v, ok := it.pull()
	if !ok {
		it.done = true
		return
	}
	it.pending, it.have = v, true
}

func (it *IteratorData) HasNext() bool {
	it.fill()
	return it.have
}

func (it *IteratorData) Next(pos source.Position) (Value, *errors.Signal) {
	it.fill()
	if !it.have {
		return Value{}, errors.Throw(IterationEndErr(pos), pos)
	}
	v := it.pending
	it.have = false
	return v, nil
}

func (it *IteratorData) Cancel() { it.cancel() }

func init() {
	declareNative(ClassIterator, "hasNext", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		return NewBoolValue(recv.Data.(*IteratorData).HasNext()), nil
	})
	declareNative(ClassIterator, "next", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		return recv.Data.(*IteratorData).Next(source.Position{})
	})
	declareNative(ClassIterator, "cancelIteration", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		recv.Data.(*IteratorData).Cancel()
		return Void, nil
	})

	declareNative(ClassList, "iterator", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		items := recv.List().Items
		i := 0
		return NewIterator(func() (Value, bool) {
			if i >= len(items) {
				return Value{}, false
			}
			v := items[i]
			i++
			return v, true
		}, nil), nil
	})

	declareNative(ClassSet, "iterator", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		items := recv.Set().Items
		i := 0
		return NewIterator(func() (Value, bool) {
			if i >= len(items) {
				return Value{}, false
			}
			v := items[i]
			i++
			return v, true
		}, nil), nil
	})

	declareNative(ClassMap, "iterator", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		m := recv.Map()
		keys := m.Keys()
		i := 0
		return NewIterator(func() (Value, bool) {
			if i >= len(keys) {
				return Value{}, false
			}
			k := keys[i]
			i++
			v, _ := m.Get(k)
			return NewEntry(NewString(k), v), true
		}, nil), nil
	})

	declareNative(ClassBuffer, "iterator", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		bytes := recv.Buffer().Bytes
		i := 0
		return NewIterator(func() (Value, bool) {
			if i >= len(bytes) {
				return Value{}, false
			}
			v := NewInt(int64(bytes[i]))
			i++
			return v, true
		}, nil), nil
	})

	declareNative(ClassString, "iterator", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		runes := []rune(recv.Str())
		i := 0
		return NewIterator(func() (Value, bool) {
			if i >= len(runes) {
				return Value{}, false
			}
			v := NewChar(runes[i])
			i++
			return v, true
		}, nil), nil
	})

	declareNative(ClassRange, "iterator", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		r := recv.Range()
		if !r.HasStart {
			return Value{}, errors.Throw(IllegalOperationErr("range has no start to iterate from", source.Position{}), source.Position{})
		}
		if r.Start.Class == ClassChar {
			cur := r.Start.Char()
			if !r.HasEnd {
				return NewIterator(func() (Value, bool) {
					v := NewChar(cur)
					cur++
					return v, true
				}, nil), nil
			}
			end := r.End.Char()
			return NewIterator(func() (Value, bool) {
				if r.EndInclusive {
					if cur > end {
						return Value{}, false
					}
				} else if cur >= end {
					return Value{}, false
				}
				v := NewChar(cur)
				cur++
				return v, true
			}, nil), nil
		}
		cur := r.Start.Int()
		if !r.HasEnd {
			return NewIterator(func() (Value, bool) {
				v := NewInt(cur)
				cur++
				return v, true
			}, nil), nil
		}
		ints := r.ToInts()
		i := 0
		return NewIterator(func() (Value, bool) {
			if i >= len(ints) {
				return Value{}, false
			}
			v := NewInt(ints[i])
			i++
			return v, true
		}, nil), nil
	})
}
