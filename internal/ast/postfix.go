package ast

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// MemberAccess implements `a.b` (§4.3 rule 10): resolves to a field on
// the instance, or a method/property on the class chain. `a.b()` binds
// `this = a` for the callee scope by returning a bound callable here,
// which Call then simply invokes.
type MemberAccess struct {
	base
	Target Node
	Name   string
	// Optional chaining `a?.b`: short-circuits to Null without evaluating
	// the access when Target reads as Null.
	Optional bool
}

func NewMemberAccess(pos source.Position, target Node, name string, optional bool) *MemberAccess {
	return &MemberAccess{base: base{pos}, Target: target, Name: name, Optional: optional}
}

func (n *MemberAccess) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	obj, sig := n.Target.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	if n.Optional && obj.IsNull() {
		return value.Null, nil
	}
	return n.resolveOn(obj)
}

func (n *MemberAccess) resolveOn(obj value.Value) (value.Value, *errors.Signal) {
	if obj.Class == nil {
		return value.Value{}, errors.Throw(value.NullPointerErr("member access on a null value", n.pos), n.pos)
	}
	if obj.Class == value.ClassClass {
		// Static access: `ClassName.CONST` (enum constants),
		// `ClassName.staticMethod()`.
		target := obj.AsClass()
		member, _ := target.Resolve(n.Name)
		if member == nil {
			return value.Value{}, errors.Throw(value.SymbolNotDefinedErr(target.Name+" has no static member "+n.Name, n.pos), n.pos)
		}
		switch member.Kind {
		case class.MethodMember:
			impl, ok := member.Value.(value.Invokable)
			if !ok {
				return value.Value{}, errors.Throw(value.IllegalOperationErr(n.Name+" is not callable", n.pos), n.pos)
			}
			return value.NewCallable(value.ClassCallable, impl), nil
		default:
			if v, ok := member.Value.(value.Value); ok {
				return v, nil
			}
			return value.Value{}, errors.Throw(value.SymbolNotDefinedErr(target.Name+" has no static member "+n.Name, n.pos), n.pos)
		}
	}
	if dyn, ok := asDynamic(obj); ok {
		if dyn.get == nil {
			return value.Value{}, errors.Throw(value.IllegalOperationErr("dynamic object has no get", n.pos), n.pos)
		}
		result, err := dyn.get.Invoke(obj, value.CallArgs{Positional: []value.Value{value.NewString(n.Name)}})
		if err != nil {
			return value.Value{}, toSignal(err, n.pos)
		}
		return result, nil
	}
	if inst, ok := instanceOf(obj); ok {
		if v, _, ok := inst.Get(n.Name); ok {
			return v, nil
		}
	}
	member, _ := obj.Class.Resolve(n.Name)
	if member == nil {
		return value.Value{}, errors.Throw(value.SymbolNotDefinedErr(obj.Class.Name+" has no member "+n.Name, n.pos), n.pos)
	}
	switch member.Kind {
	case class.PropertyMember:
		getter, ok := member.Getter.(value.Invokable)
		if !ok {
			return value.Value{}, errors.Throw(value.IllegalOperationErr(n.Name+" has no getter", n.pos), n.pos)
		}
		result, err := getter.Invoke(obj, value.CallArgs{Positional: []value.Value{obj}})
		if err != nil {
			return value.Value{}, toSignal(err, n.pos)
		}
		return result, nil
	case class.MethodMember:
		impl, ok := member.Value.(value.Invokable)
		if !ok {
			return value.Value{}, errors.Throw(value.IllegalOperationErr(n.Name+" is not callable", n.pos), n.pos)
		}
		return value.NewCallable(value.ClassCallable, &boundMethod{recv: obj, impl: impl}), nil
	default: // FieldMember on a non-instance value (e.g. a static/class field)
		if v, ok := member.Value.(value.Value); ok {
			return v, nil
		}
		return value.Value{}, errors.Throw(value.SymbolNotDefinedErr(obj.Class.Name+" has no member "+n.Name, n.pos), n.pos)
	}
}

func (n *MemberAccess) Assign(s *scope.Scope, v value.Value) *errors.Signal {
	obj, sig := n.Target.Execute(s)
	if sig != nil {
		return sig
	}
	if dyn, ok := asDynamic(obj); ok {
		if dyn.set == nil {
			return errors.Throw(value.IllegalOperationErr("dynamic object has no set", n.pos), n.pos)
		}
		_, err := dyn.set.Invoke(obj, value.CallArgs{Positional: []value.Value{value.NewString(n.Name), v}})
		if err != nil {
			return toSignal(err, n.pos)
		}
		return nil
	}
	inst, ok := instanceOf(obj)
	if !ok {
		return errors.Throw(value.IllegalAssignmentErr("cannot assign a member of a non-instance value", n.pos), n.pos)
	}
	_, declarer, found := inst.Get(n.Name)
	if !found {
		return errors.Throw(value.SymbolNotDefinedErr(obj.Class.Name+" has no field "+n.Name, n.pos), n.pos)
	}
	inst.Set(declarer, n.Name, v)
	return nil
}

func instanceOf(v value.Value) (*value.InstanceData, bool) {
	if v.Data == nil {
		return nil, false
	}
	inst, ok := v.Data.(*value.InstanceData)
	return inst, ok
}

func toSignal(err error, pos source.Position) *errors.Signal {
	if sig, ok := err.(*errors.Signal); ok {
		return sig
	}
	return errors.Throw(value.NewException(value.ClassUnknownException, err.Error(), nil, pos), pos)
}

// boundMethod wraps a method implementation with the receiver it was
// accessed through, so that `a.b()` binds `this = a` for the callee
// scope without the parser needing a special call form.
type boundMethod struct {
	recv value.Value
	impl value.Invokable
}

func (b *boundMethod) Invoke(caller value.Caller, args value.CallArgs) (value.Value, error) {
	return b.impl.Invoke(b.recv, args)
}
func (b *boundMethod) Arity() (int, bool)    { return b.impl.Arity() }
func (b *boundMethod) CallableName() string { return b.impl.CallableName() }

// Index implements `a[i]` / `a[i] = v` (§4.3 rule 11): list/map/string/
// buffer/range fast paths, falling back to class-dispatched
// `getAt`/`putAt` for user classes.
type Index struct {
	base
	Target, Key Node
	Optional    bool
}

func NewIndex(pos source.Position, target, key Node, optional bool) *Index {
	return &Index{base: base{pos}, Target: target, Key: key, Optional: optional}
}

func (n *Index) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	obj, sig := n.Target.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	if n.Optional && obj.IsNull() {
		return value.Null, nil
	}
	key, sig := n.Key.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	return getAt(obj, key, n.pos)
}

func getAt(obj, key value.Value, pos source.Position) (value.Value, *errors.Signal) {
	switch obj.Class {
	case value.ClassList:
		return obj.List().GetAt(int(key.Int()), pos)
	case value.ClassString:
		runes := []rune(obj.Str())
		if key.Class == value.ClassRange {
			lo, hi, sig := rangeBounds(key.Range(), len(runes), pos)
			if sig != nil {
				return value.Value{}, sig
			}
			return value.NewString(string(runes[lo:hi])), nil
		}
		idx, ok := value.NormalizeIndex(int(key.Int()), len(runes))
		if !ok {
			return value.Value{}, errors.Throw(value.IndexOutOfBoundsErr("string index out of bounds", pos), pos)
		}
		return value.NewChar(runes[idx]), nil
	case value.ClassMap:
		v, ok := obj.Map().Get(key.Str())
		if !ok {
			return value.Null, nil
		}
		return v, nil
	case value.ClassBuffer:
		idx, ok := value.NormalizeIndex(int(key.Int()), len(obj.Buffer().Bytes))
		if !ok {
			return value.Value{}, errors.Throw(value.IndexOutOfBoundsErr("buffer index out of bounds", pos), pos)
		}
		return value.NewInt(int64(obj.Buffer().Bytes[idx])), nil
	default:
		return classDispatch1(obj, "getAt", key, pos)
	}
}

// rangeBounds resolves a possibly-open Int range against size (used by
// `s[range]` substring access): a negative bound is normalised as
// size+bound, and bounds that are still out of range after that raise
// IndexOutOfBoundsError.
func rangeBounds(r *value.RangeData, size int, pos source.Position) (int, int, *errors.Signal) {
	lo, hi := 0, size
	if r.HasStart {
		lo = int(r.Start.Int())
		if lo < 0 {
			lo += size
		}
	}
	if r.HasEnd {
		hi = int(r.End.Int())
		if hi < 0 {
			hi += size
		}
		if r.EndInclusive {
			hi++
		}
	}
	if lo < 0 || hi > size || lo > hi {
		return 0, 0, errors.Throw(value.IndexOutOfBoundsErr("range out of bounds", pos), pos)
	}
	return lo, hi, nil
}

func (n *Index) Assign(s *scope.Scope, v value.Value) *errors.Signal {
	obj, sig := n.Target.Execute(s)
	if sig != nil {
		return sig
	}
	key, sig := n.Key.Execute(s)
	if sig != nil {
		return sig
	}
	switch obj.Class {
	case value.ClassList:
		return obj.List().PutAt(int(key.Int()), v, n.pos)
	case value.ClassMap:
		obj.Map().Set(key.Str(), v)
		return nil
	case value.ClassBuffer:
		idx, ok := value.NormalizeIndex(int(key.Int()), len(obj.Buffer().Bytes))
		if !ok {
			return errors.Throw(value.IndexOutOfBoundsErr("buffer index out of bounds", n.pos), n.pos)
		}
		obj.Buffer().Bytes[idx] = byte(v.Int())
		return nil
	default:
		_, sig := classDispatch2(obj, "putAt", key, v, n.pos)
		return sig
	}
}

// classDispatch1/2 call a user-class operator method with one/two
// explicit arguments beyond the implicit receiver.
func classDispatch1(obj value.Value, method string, arg value.Value, pos source.Position) (value.Value, *errors.Signal) {
	return invokeMethod(obj, method, []value.Value{arg}, pos)
}

func classDispatch2(obj value.Value, method string, a, b value.Value, pos source.Position) (value.Value, *errors.Signal) {
	return invokeMethod(obj, method, []value.Value{a, b}, pos)
}

func invokeMethod(obj value.Value, method string, args []value.Value, pos source.Position) (value.Value, *errors.Signal) {
	if obj.Class == nil {
		return value.Value{}, errors.Throw(value.NullPointerErr("method call on a null value", pos), pos)
	}
	m, _ := obj.Class.Resolve(method)
	if m == nil {
		return value.Value{}, errors.Throw(value.IllegalOperationErr(obj.Class.Name+" has no "+method+"()", pos), pos)
	}
	impl, ok := m.Value.(value.Invokable)
	if !ok {
		return value.Value{}, errors.Throw(value.IllegalOperationErr(method+" is not callable", pos), pos)
	}
	result, err := impl.Invoke(obj, value.CallArgs{Positional: args})
	if err != nil {
		return value.Value{}, toSignal(err, pos)
	}
	return result, nil
}

// Arg is one call-site argument (§4.2.2): positional, named (`name:
// value`), or a splat (`...expr`, expanding a Map into named args or a
// Collection/Range into positional args).
type Arg struct {
	Name   string
	Splat  bool
	Value  Node
}

// Call implements function/method invocation (§4.3 rule 13): strictly
// left-to-right evaluation, splats expanded in place, named args bound
// after positional args.
type Call struct {
	base
	Callee Node
	Args   []Arg
}

func NewCall(pos source.Position, callee Node, args []Arg) *Call {
	return &Call{base: base{pos}, Callee: callee, Args: args}
}

func (n *Call) Execute(s *scope.Scope) (value.Value, *errors.Signal) {
	callee, sig := n.Callee.Execute(s)
	if sig != nil {
		return value.Value{}, sig
	}
	args, sig := elaborateArgs(s, n.Args, n.pos)
	if sig != nil {
		return value.Value{}, sig
	}
	if callee.Class == value.ClassClass {
		return instantiate(s, callee.AsClass(), args, n.pos)
	}
	impl, ok := callee.Data.(value.Invokable)
	if !ok {
		return value.Value{}, errors.Throw(value.IllegalOperationErr("value is not callable", n.pos), n.pos)
	}
	result, err := impl.Invoke(s, args)
	if err != nil {
		return value.Value{}, toSignal(err, n.pos)
	}
	return result, nil
}

func elaborateArgs(s *scope.Scope, argNodes []Arg, pos source.Position) (value.CallArgs, *errors.Signal) {
	var positional []value.Value
	var named map[string]value.Value
	for _, a := range argNodes {
		v, sig := a.Value.Execute(s)
		if sig != nil {
			return value.CallArgs{}, sig
		}
		switch {
		case a.Splat && v.Class == value.ClassMap:
			if named == nil {
				named = make(map[string]value.Value)
			}
			for _, k := range v.Map().Keys() {
				val, _ := v.Map().Get(k)
				named[k] = val
			}
		case a.Splat:
			items, sig := spreadItems(v, pos)
			if sig != nil {
				return value.CallArgs{}, sig
			}
			positional = append(positional, items...)
		case a.Name != "":
			if named == nil {
				named = make(map[string]value.Value)
			}
			named[a.Name] = v
		default:
			positional = append(positional, v)
		}
	}
	return value.CallArgs{Positional: positional, Named: named}, nil
}
