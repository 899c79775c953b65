package value

import "github.com/sergeych/lyng-sub006/internal/class"

// InstanceData backs Instance values. Fields are stored per declaring
// class (§3.5, §9 "Multiple inheritance with per-declaring-class field
// storage"): a diamond ancestor's field exists exactly once, but two
// unrelated ancestors that happen to declare a field with the same name
// keep independent storage, addressable via qualified access
// (`this@Type.x` / `(expr as Type).x`).
type InstanceData struct {
	Class  *class.Class
	Fields map[*class.Class]map[string]Value
}

// NewInstance allocates a zero-valued instance of c (step 1 of the
// construction lifecycle, §4.4.2); callers fill in Fields during
// initialisation.
func NewInstance(c *class.Class) Value {
	fields := make(map[*class.Class]map[string]Value, len(c.Linearization))
	for _, ancestor := range c.Linearization {
		fields[ancestor] = make(map[string]Value)
	}
	return Value{Class: c, Data: &InstanceData{Class: c, Fields: fields}}
}

func (v Value) Instance() *InstanceData { return v.Data.(*InstanceData) }

// Get reads a field by unqualified name, resolving through the
// linearization: the first declaring class (closest to the instance's own
// class) that has the field wins.
func (d *InstanceData) Get(name string) (Value, *class.Class, bool) {
	for _, ancestor := range d.Class.Linearization {
		if fields, ok := d.Fields[ancestor]; ok {
			if v, ok := fields[name]; ok {
				return v, ancestor, true
			}
		}
	}
	return Value{}, nil, false
}

// GetQualified reads a field declared specifically on declarer,
// bypassing linearization order (`this@Type.x`).
func (d *InstanceData) GetQualified(declarer *class.Class, name string) (Value, bool) {
	fields, ok := d.Fields[declarer]
	if !ok {
		return Value{}, false
	}
	v, ok := fields[name]
	return v, ok
}

// Set writes a field on its declaring class's storage block.
func (d *InstanceData) Set(declarer *class.Class, name string, v Value) {
	if d.Fields[declarer] == nil {
		d.Fields[declarer] = make(map[string]Value)
	}
	d.Fields[declarer][name] = v
}

// --- Class values (`someValue::class`) ------------------------------------

func NewClassValue(c *class.Class) Value { return Value{Class: ClassClass, Data: c} }
func (v Value) AsClass() *class.Class    { return v.Data.(*class.Class) }

// --- Callable ---------------------------------------------------------

// Caller is an opaque handle the evaluator passes to Invokable.Invoke. It
// is declared here only as `any` so that value has no dependency on
// internal/scope or internal/ast — the concrete evaluator context
// (carrying the *scope.Scope, a coroutine handle, and the call position)
// is defined and type-asserted by internal/ast, the only package that
// implements Invokable.
type Caller = any

// Invokable is the Callable built-in class's payload contract: any
// executable node exposed as a value (functions, lambdas, bound methods,
// native host functions) implements it (§3.3 "Callable — any executable
// node exposed as a value").
type Invokable interface {
	// Invoke runs the callable with positional/named arguments already
	// resolved by the caller (splats expanded, defaults NOT yet applied —
	// Invoke implementations apply per-parameter defaults themselves so
	// they evaluate in the callee scope, §4.3.13).
	Invoke(caller Caller, args CallArgs) (Value, error)
	Arity() (min int, variadic bool)
	CallableName() string
}

// CallArgs is the already-elaborated argument list for one call: splats
// expanded in place, named arguments kept alongside positionals so the
// callee can bind by name (§4.2.2).
type CallArgs struct {
	Positional []Value
	Named      map[string]Value
}

func NewCallable(c *class.Class, impl Invokable) Value {
	return Value{Class: c, Data: impl}
}

func (v Value) Invokable() Invokable { return v.Data.(Invokable) }
