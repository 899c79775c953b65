package value

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/source"
)

// iterateValue drives the iterator protocol generically against recv's
// class chain (§4.3 rule 18), the same dispatch *ast.For performs, but
// self-contained here so builtin Iterable methods (forEach, take,
// toList) work uniformly whether recv is a builtin container or a
// user-declared class that only supplies `iterator`/`hasNext`/`next`.
func iterateValue(recv Value, fn func(Value) *errors.Signal) *errors.Signal {
	it, sig := dispatchZeroArg(recv, "iterator")
	if sig != nil {
		return sig
	}
	for {
		hasNext, sig := dispatchZeroArg(it, "hasNext")
		if sig != nil {
			return sig
		}
		if !hasNext.Bool() {
			return nil
		}
		item, sig := dispatchZeroArg(it, "next")
		if sig != nil {
			return sig
		}
		if sig := fn(item); sig != nil {
			dispatchZeroArg(it, "cancelIteration")
			return sig
		}
	}
}

func dispatchZeroArg(recv Value, method string) (Value, *errors.Signal) {
	m, _ := recv.Class.Resolve(method)
	if m == nil {
		if method == "cancelIteration" {
			return Void, nil
		}
		return Value{}, errors.Throw(IllegalOperationErr(recv.Class.Name+" has no "+method+"()", source.Position{}), source.Position{})
	}
	impl, ok := m.Value.(Invokable)
	if !ok {
		return Value{}, errors.Throw(IllegalOperationErr(method+" is not callable", source.Position{}), source.Position{})
	}
	result, err := impl.Invoke(recv, CallArgs{})
	if err != nil {
		if sig, ok := err.(*errors.Signal); ok {
			return Value{}, sig
		}
		return Value{}, errors.Throw(NewException(ClassUnknownException, err.Error(), nil, source.Position{}), source.Position{})
	}
	return result, nil
}

func sizeOf(v Value) (int64, bool) {
	switch d := v.Data.(type) {
	case *ListData:
		return int64(len(d.Items)), true
	case *SetData:
		return int64(len(d.Items)), true
	case *MapData:
		return int64(d.Len()), true
	case *BufferData:
		return int64(len(d.Bytes)), true
	case *RangeData:
		if d.Bounded() {
			return d.Size(), true
		}
	}
	return 0, false
}

func init() {
	sizeFn := func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		n, ok := sizeOf(recv)
		if !ok {
			return Value{}, errors.Throw(IllegalOperationErr("size is not defined for an unbounded "+recv.Class.Name, source.Position{}), source.Position{})
		}
		return NewInt(n), nil
	}
	for _, c := range []*class.Class{ClassList, ClassSet, ClassMap, ClassBuffer, ClassRange} {
		declareNative(c, "size", 0, false, sizeFn)
	}

	declareNative(ClassIterable, "toList", 0, false, func(recv Value, _ CallArgs) (Value, *errors.Signal) {
		var items []Value
		if sig := iterateValue(recv, func(v Value) *errors.Signal {
			items = append(items, v)
			return nil
		}); sig != nil {
			return Value{}, sig
		}
		return NewList(items), nil
	})

	declareNative(ClassIterable, "forEach", 1, false, func(recv Value, args CallArgs) (Value, *errors.Signal) {
		if len(args.Positional) == 0 {
			return Value{}, errors.Throw(IllegalArgumentErr("forEach requires a callback", source.Position{}), source.Position{})
		}
		cb, ok := args.Positional[0].Data.(Invokable)
		if !ok {
			return Value{}, errors.Throw(IllegalArgumentErr("forEach callback is not callable", source.Position{}), source.Position{})
		}
		sig := iterateValue(recv, func(item Value) *errors.Signal {
			_, err := cb.Invoke(nil, CallArgs{Positional: []Value{item}})
			if err != nil {
				if s, ok := err.(*errors.Signal); ok {
					return s
				}
				return errors.Throw(NewException(ClassUnknownException, err.Error(), nil, source.Position{}), source.Position{})
			}
			return nil
		})
		if sig != nil {
			return Value{}, sig
		}
		return Void, nil
	})

	declareNative(ClassIterable, "take", 1, false, func(recv Value, args CallArgs) (Value, *errors.Signal) {
		if len(args.Positional) == 0 || args.Positional[0].Class != ClassInt {
			return Value{}, errors.Throw(IllegalArgumentErr("take requires an Int count", source.Position{}), source.Position{})
		}
		n := args.Positional[0].Int()
		var items []Value
		taken := int64(0)
		it, sig := dispatchZeroArg(recv, "iterator")
		if sig != nil {
			return Value{}, sig
		}
		for taken < n {
			hasNext, sig := dispatchZeroArg(it, "hasNext")
			if sig != nil {
				return Value{}, sig
			}
			if !hasNext.Bool() {
				break
			}
			item, sig := dispatchZeroArg(it, "next")
			if sig != nil {
				return Value{}, sig
			}
			items = append(items, item)
			taken++
		}
		dispatchZeroArg(it, "cancelIteration")
		return NewList(items), nil
	})

	declareNative(ClassCollection, "contains", 1, false, func(recv Value, args CallArgs) (Value, *errors.Signal) {
		if len(args.Positional) == 0 {
			return Value{}, errors.Throw(IllegalArgumentErr("contains requires one argument", source.Position{}), source.Position{})
		}
		ok, sig := Contains(recv, args.Positional[0], source.Position{})
		if sig != nil {
			return Value{}, sig
		}
		return NewBoolValue(ok), nil
	})
}
