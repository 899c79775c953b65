package value

import (
	"github.com/sergeych/lyng-sub006/internal/class"
	"github.com/sergeych/lyng-sub006/internal/errors"
)

// nativeMethod is a Go-implemented Invokable installed directly as a
// class.Member's Value, used for builtin methods (container iteration,
// entry/range helpers) that have no lyng source to compile. Mirrors the
// teacher's registerXBuiltins tables of native Go functions
// (internal/bytecode/vm_builtins_*.go), adapted from a flat VM opcode
// table to this evaluator's per-class member dispatch.
type nativeMethod struct {
	name     string
	min      int
	variadic bool
	fn       func(recv Value, args CallArgs) (Value, *errors.Signal)
}

// Invoke satisfies value.Invokable. The receiver arrives as caller, the
// same convention *ast.Function uses (§9 "caller, if a Value, binds
// this"), so a nativeMethod can be bound through the ordinary
// MemberAccess/boundMethod path exactly like a lyng-defined method.
func (m *nativeMethod) Invoke(caller Caller, args CallArgs) (Value, error) {
	recv, _ := caller.(Value)
	v, sig := m.fn(recv, args)
	if sig != nil {
		return Value{}, sig
	}
	return v, nil
}

func (m *nativeMethod) Arity() (int, bool)   { return m.min, m.variadic }
func (m *nativeMethod) CallableName() string { return m.name }

// declareNative installs a native method member directly on a builtin
// class, bypassing class declaration syntax entirely (there is no lyng
// source for these — they are part of the runtime, not the language).
func declareNative(c *class.Class, name string, min int, variadic bool, fn func(recv Value, args CallArgs) (Value, *errors.Signal)) {
	c.Declare(&class.Member{
		Name:       name,
		Kind:       class.MethodMember,
		Visibility: class.Public,
		Value:      &nativeMethod{name: name, min: min, variadic: variadic, fn: fn},
	})
}
