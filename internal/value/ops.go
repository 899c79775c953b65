package value

import (
	"fmt"
	"strings"

	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/source"
)

// Compare implements compareTo for built-in classes, returning <0, 0, >0
// (§4.3.7). User Instance values with an overridden compareTo method are
// dispatched by the evaluator before falling back here (built-ins have no
// user-overridable method table).
func Compare(a, b Value) int {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		af, bf := a.AsFloat(), b.AsFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case a.Class == ClassString && b.Class == ClassString:
		return stringCompare(a.Str(), b.Str())
	case a.Class == ClassChar && b.Class == ClassChar:
		return int(a.Char()) - int(b.Char())
	case a.Class == ClassBool && b.Class == ClassBool:
		av, bv := 0, 0
		if a.Bool() {
			av = 1
		}
		if b.Bool() {
			bv = 1
		}
		return av - bv
	case a.Class == ClassList && b.Class == ClassList:
		al, bl := a.List().Items, b.List().Items
		for i := 0; i < len(al) && i < len(bl); i++ {
			if c := Compare(al[i], bl[i]); c != 0 {
				return c
			}
		}
		return len(al) - len(bl)
	case a.Class == ClassMap && b.Class == ClassMap:
		if a.Map().EqualTo(b.Map()) {
			return 0
		}
		return 1
	case a.Class == ClassBuffer && b.Class == ClassBuffer:
		if a.Buffer().EqualTo(b.Buffer()) {
			return 0
		}
		return 1
	case a.IsVoid() && b.IsVoid(), a.IsNull() && b.IsNull():
		return 0
	default:
		if a.Class == b.Class {
			return 1 // distinct, no natural order defined for this kind
		}
		return -1
	}
}

// Equal implements `==` (§4.3.7: class-dispatched compareTo == 0).
func Equal(a, b Value) bool {
	if a.Class != b.Class {
		// Int/Real compare numerically across kinds for ==, matching the
		// widening rule used by arithmetic (§4 Int→Real widening).
		if a.IsNumeric() && b.IsNumeric() {
			return a.AsFloat() == b.AsFloat()
		}
		return false
	}
	return Compare(a, b) == 0
}

// Identical implements `===` (§4.3.7: reference identity; all singletons
// are reference-equal).
func Identical(a, b Value) bool {
	if a.Class != b.Class {
		return false
	}
	switch a.Class {
	case ClassVoid, ClassNull, ClassUnset:
		return true
	case ClassInt:
		return a.Int() == b.Int()
	case ClassReal:
		return a.Real() == b.Real()
	case ClassBool:
		return a.Bool() == b.Bool()
	case ClassChar:
		return a.Char() == b.Char()
	case ClassString:
		return a.Str() == b.Str()
	default:
		// Reference types: identical iff the payload pointer is the same.
		return samePointer(a.Data, b.Data)
	}
}

func samePointer(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprintf("%p", a) == fmt.Sprintf("%p", b)
}

// --- arithmetic (§4.3.6) ---------------------------------------------------

// Add implements `+` including list/string/map concatenation.
func Add(a, b Value, pos source.Position) (Value, *errors.Signal) {
	switch {
	case a.Class == ClassString || b.Class == ClassString:
		return NewString(ToDisplayString(a) + ToDisplayString(b)), nil
	case a.Class == ClassList && b.Class == ClassList:
		out := append(append([]Value{}, a.List().Items...), b.List().Items...)
		return NewList(out), nil
	case a.Class == ClassMap && b.Class == ClassMap:
		out := NewMap()
		for _, k := range a.Map().Keys() {
			v, _ := a.Map().Get(k)
			out.Set(k, v)
		}
		for _, k := range b.Map().Keys() {
			v, _ := b.Map().Get(k)
			out.Set(k, v)
		}
		return Value{Class: ClassMap, Data: out}, nil
	case a.IsNumeric() && b.IsNumeric():
		return numericBinOp(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y }), nil
	}
	return Value{}, errors.Throw(IllegalOperationErr(fmt.Sprintf("cannot add %s and %s", a.Class, b.Class), pos), pos)
}

func Sub(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, errors.Throw(IllegalOperationErr("'-' requires numeric operands", pos), pos)
	}
	return numericBinOp(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y }), nil
}

func Mul(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, errors.Throw(IllegalOperationErr("'*' requires numeric operands", pos), pos)
	}
	return numericBinOp(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y }), nil
}

// Div implements integer division truncated toward zero when both
// operands are Int, real division otherwise (§4.3.6).
func Div(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, errors.Throw(IllegalOperationErr("'/' requires numeric operands", pos), pos)
	}
	if a.Class == ClassInt && b.Class == ClassInt {
		if b.Int() == 0 {
			return Value{}, errors.Throw(IllegalOperationErr("integer division by zero", pos), pos)
		}
		return NewInt(a.Int() / b.Int()), nil
	}
	return NewReal(a.AsFloat() / b.AsFloat()), nil
}

// Mod implements `%`, sign-of-dividend for Int (Go's own `%` already is
// truncated/sign-of-dividend, matching §4.3.6 exactly).
func Mod(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, errors.Throw(IllegalOperationErr("'%%' requires numeric operands", pos), pos)
	}
	if a.Class == ClassInt && b.Class == ClassInt {
		if b.Int() == 0 {
			return Value{}, errors.Throw(IllegalOperationErr("integer modulo by zero", pos), pos)
		}
		return NewInt(a.Int() % b.Int()), nil
	}
	af, bf := a.AsFloat(), b.AsFloat()
	q := float64(int64(af / bf))
	return NewReal(af - q*bf), nil
}

func numericBinOp(a, b Value, onInt func(x, y int64) int64, onReal func(x, y float64) float64) Value {
	if a.Class == ClassInt && b.Class == ClassInt {
		return NewInt(onInt(a.Int(), b.Int()))
	}
	return NewReal(onReal(a.AsFloat(), b.AsFloat()))
}

// --- bitwise (Int-only, §4.3.6) --------------------------------------------

func requireInt(a, b Value, op string, pos source.Position) *errors.Signal {
	if a.Class != ClassInt || b.Class != ClassInt {
		return errors.Throw(IllegalOperationErr(op+" requires Int operands", pos), pos)
	}
	return nil
}

func BitAnd(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if s := requireInt(a, b, "'&'", pos); s != nil {
		return Value{}, s
	}
	return NewInt(a.Int() & b.Int()), nil
}
func BitOr(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if s := requireInt(a, b, "'|'", pos); s != nil {
		return Value{}, s
	}
	return NewInt(a.Int() | b.Int()), nil
}
func BitXor(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if s := requireInt(a, b, "'^'", pos); s != nil {
		return Value{}, s
	}
	return NewInt(a.Int() ^ b.Int()), nil
}
func BitNot(a Value, pos source.Position) (Value, *errors.Signal) {
	if a.Class != ClassInt {
		return Value{}, errors.Throw(IllegalOperationErr("'~' requires an Int operand", pos), pos)
	}
	return NewInt(^a.Int()), nil
}

// Shl/Shr/Ushr mask the shift count to 0..63 (§4.3.6); Shr is arithmetic
// (sign-extending), Ushr is logical.
func Shl(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if s := requireInt(a, b, "'<<'", pos); s != nil {
		return Value{}, s
	}
	return NewInt(a.Int() << (uint(b.Int()) & 63)), nil
}
func Shr(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if s := requireInt(a, b, "'>>'", pos); s != nil {
		return Value{}, s
	}
	return NewInt(a.Int() >> (uint(b.Int()) & 63)), nil
}
func Ushr(a, b Value, pos source.Position) (Value, *errors.Signal) {
	if s := requireInt(a, b, "'>>>'", pos); s != nil {
		return Value{}, s
	}
	return NewInt(int64(uint64(a.Int()) >> (uint(b.Int()) & 63))), nil
}

// --- contains (`in`, §4.3.9) -----------------------------------------------

// Contains implements `right.contains(left)` for built-in Collection
// kinds; user classes override `contains` through their method table,
// dispatched by the evaluator before falling back here.
func Contains(container, item Value, pos source.Position) (bool, *errors.Signal) {
	switch container.Class {
	case ClassList:
		for _, it := range container.List().Items {
			if Equal(it, item) {
				return true, nil
			}
		}
		return false, nil
	case ClassSet:
		return container.Set().Contains(item), nil
	case ClassMap:
		if item.Class != ClassString {
			return false, nil
		}
		_, ok := container.Map().Get(item.Str())
		return ok, nil
	case ClassString:
		if item.Class != ClassString {
			return false, nil
		}
		return strings.Contains(container.Str(), item.Str()), nil
	case ClassRange:
		return rangeContains(container.Range(), item), nil
	default:
		return false, errors.Throw(IllegalOperationErr(fmt.Sprintf("%s has no contains()", container.Class), pos), pos)
	}
}

func rangeContains(r *RangeData, item Value) bool {
	if !item.IsNumeric() && item.Class != ClassChar {
		return false
	}
	var v float64
	switch item.Class {
	case ClassChar:
		v = float64(item.Char())
	default:
		v = item.AsFloat()
	}
	if r.HasStart {
		lo := r.Start.AsFloat()
		if item.Class == ClassChar {
			lo = float64(r.Start.Char())
		}
		if v < lo {
			return false
		}
	}
	if r.HasEnd {
		hi := r.End.AsFloat()
		if item.Class == ClassChar {
			hi = float64(r.End.Char())
		}
		if r.EndInclusive {
			if v > hi {
				return false
			}
		} else if v >= hi {
			return false
		}
	}
	return true
}

// --- string conversion ------------------------------------------------

// ToDisplayString implements the default toString used by string
// interpolation-adjacent concatenation and the `fmt` prelude function
// (§6.3 notes string interpolation is out of core scope; concatenation
// via `+` still needs a canonical rendering).
func ToDisplayString(v Value) string {
	switch v.Class {
	case ClassString:
		return v.Str()
	case ClassInt:
		return fmt.Sprintf("%d", v.Int())
	case ClassReal:
		return fmt.Sprintf("%g", v.Real())
	case ClassBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case ClassChar:
		return string(v.Char())
	case ClassVoid:
		return "void"
	case ClassNull:
		return "null"
	case ClassUnset:
		return "<unset>"
	case ClassList:
		parts := make([]string, len(v.List().Items))
		for i, it := range v.List().Items {
			parts[i] = ToDisplayString(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ClassMap:
		m := v.Map()
		parts := make([]string, 0, m.Len())
		for _, k := range m.Keys() {
			val, _ := m.Get(k)
			parts = append(parts, fmt.Sprintf("%q: %s", k, ToDisplayString(val)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ClassSet:
		parts := make([]string, len(v.Set().Items))
		for i, it := range v.Set().Items {
			parts[i] = ToDisplayString(it)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ClassException:
		return v.Class.Name + ": " + v.Exception().Message
	case ClassClass:
		return "class " + v.AsClass().Name
	default:
		if v.Class != nil {
			return v.Class.Name + "()"
		}
		return "<invalid>"
	}
}
