// Package value implements the Language's uniform value representation
// (§3.3): every value is a small immutable header carrying a class
// pointer, a frozen flag, and a per-class payload.
package value

import (
	"github.com/sergeych/lyng-sub006/internal/class"
)

// Value is the header described by §3.3. Numeric/Bool/Char values are
// by-value (Data holds the primitive directly, so assignment copies it,
// satisfying the "mutate(x) does not mutate v" invariant of §8); Strings
// are immutable so sharing Data is safe; Lists/Maps/Sets/Buffers/Instances
// are by-reference (Data holds a pointer to mutable storage) unless
// Frozen.
type Value struct {
	Class  *class.Class
	Frozen bool
	Data   any
}

func (v Value) IsVoid() bool  { return v.Class == ClassVoid }
func (v Value) IsNull() bool  { return v.Class == ClassNull }
func (v Value) IsUnset() bool { return v.Class == ClassUnset }

// --- primitive constructors ------------------------------------------------

// smallIntCache interns Int values in -128..127 (§3.3 "hot-path
// optimisation"), built once at process init alongside the singleton
// classes (§5 "process-wide immutable after construction").
var smallIntCache [256]Value

func init() {
	for i := range smallIntCache {
		smallIntCache[i] = Value{Class: ClassInt, Data: int64(i - 128)}
	}
}

// NewInt builds an Int value, serving from the small-integer cache when
// i is in -128..127.
func NewInt(i int64) Value {
	if i >= -128 && i <= 127 {
		return smallIntCache[i+128]
	}
	return Value{Class: ClassInt, Data: i}
}

func NewReal(f float64) Value     { return Value{Class: ClassReal, Data: f} }
func NewBool(b bool) Value        { return Value{Class: ClassBool, Data: b} }
func NewChar(r rune) Value        { return Value{Class: ClassChar, Data: r} }
func NewString(s string) Value    { return Value{Class: ClassString, Data: s} }

var (
	Void  = Value{Class: ClassVoid}
	Null  = Value{Class: ClassNull}
	Unset = Value{Class: ClassUnset}
	True  = NewBool(true)
	False = NewBool(false)
)

func NewBoolValue(b bool) Value {
	if b {
		return True
	}
	return False
}

// --- accessors (panic if the payload kind is wrong; callers must check
// Class first via the class-dispatch machinery in ops.go) --------------

func (v Value) Int() int64     { return v.Data.(int64) }
func (v Value) Real() float64  { return v.Data.(float64) }
func (v Value) Bool() bool     { return v.Data.(bool) }
func (v Value) Char() rune     { return v.Data.(rune) }
func (v Value) Str() string    { return v.Data.(string) }

// IsNumeric reports whether v is an Int or a Real.
func (v Value) IsNumeric() bool { return v.Class == ClassInt || v.Class == ClassReal }

// AsFloat widens an Int or Real to float64 (§4 Int→Real widening rules).
func (v Value) AsFloat() float64 {
	if v.Class == ClassInt {
		return float64(v.Int())
	}
	return v.Real()
}
