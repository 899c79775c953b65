// Package lyng is the host embedding surface (§6.1): create an Engine,
// register native Go functions/properties/packages, and evaluate lyng
// source against them. Grounded on the teacher's pkg/dwscript embedding
// API (only its test files survived retrieval-pack filtering, but they
// fully describe the shape: New(opts...), RegisterFunction, Eval,
// SetOutput, a Result carrying the program's output and return value).
package lyng

import (
	"fmt"
	"reflect"

	"github.com/sergeych/lyng-sub006/internal/value"
)

// toValue converts a native Go result into a core Value, the direction a
// registered function's return travels (§6.1 "native↔core value
// conversion"). Mirrors the teacher's FFI return-type coercion, reduced
// to the handful of Go kinds that have an obvious lyng counterpart.
func toValue(v reflect.Value) (value.Value, error) {
	if !v.IsValid() {
		return value.Void, nil
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.NewInt(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.NewInt(int64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.NewReal(v.Float()), nil
	case reflect.Bool:
		return value.NewBoolValue(v.Bool()), nil
	case reflect.String:
		return value.NewString(v.String()), nil
	case reflect.Slice, reflect.Array:
		items := make([]value.Value, v.Len())
		for i := range items {
			item, err := toValue(v.Index(i))
			if err != nil {
				return value.Value{}, err
			}
			items[i] = item
		}
		return value.NewList(items), nil
	case reflect.Map:
		m := value.NewMap()
		iter := v.MapRange()
		for iter.Next() {
			item, err := toValue(iter.Value())
			if err != nil {
				return value.Value{}, err
			}
			m.Set(fmt.Sprint(iter.Key().Interface()), item)
		}
		return value.Value{Class: value.ClassMap, Data: m}, nil
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return value.Null, nil
		}
		return toValue(v.Elem())
	default:
		return value.Value{}, fmt.Errorf("lyng: cannot convert a Go %s to a Value", v.Kind())
	}
}

// fromValue converts a core Value into the Go type a registered
// function's parameter expects, the argument-binding direction of the
// native↔core conversion (§6.1). In strict mode (Config.TypeCheck, the
// embedding-API analogue of the teacher's WithTypeCheck) an integer
// parameter rejects a Real argument instead of truncating it; permissive
// mode accepts either, matching the core language's own "Int and Real
// are both numeric" equivalence (§3.3).
func fromValue(v value.Value, want reflect.Type, strict bool) (reflect.Value, error) {
	switch want.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !v.IsNumeric() {
			return reflect.Value{}, fmt.Errorf("lyng: expected a numeric argument, got %s", v.Class.Name)
		}
		if strict && v.Class != value.ClassInt {
			return reflect.Value{}, fmt.Errorf("lyng: expected an Int argument, got %s", v.Class.Name)
		}
		return reflect.ValueOf(v.AsFloat()).Convert(want), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !v.IsNumeric() {
			return reflect.Value{}, fmt.Errorf("lyng: expected a numeric argument, got %s", v.Class.Name)
		}
		if strict && v.Class != value.ClassInt {
			return reflect.Value{}, fmt.Errorf("lyng: expected an Int argument, got %s", v.Class.Name)
		}
		return reflect.ValueOf(v.AsFloat()).Convert(want), nil
	case reflect.Float32, reflect.Float64:
		if !v.IsNumeric() {
			return reflect.Value{}, fmt.Errorf("lyng: expected a numeric argument, got %s", v.Class.Name)
		}
		return reflect.ValueOf(v.AsFloat()).Convert(want), nil
	case reflect.Bool:
		if v.Class != value.ClassBool {
			return reflect.Value{}, fmt.Errorf("lyng: expected a Bool argument, got %s", v.Class.Name)
		}
		return reflect.ValueOf(v.Bool()), nil
	case reflect.String:
		if v.Class != value.ClassString {
			return reflect.Value{}, fmt.Errorf("lyng: expected a String argument, got %s", v.Class.Name)
		}
		return reflect.ValueOf(v.Str()), nil
	default:
		return reflect.Value{}, fmt.Errorf("lyng: unsupported native parameter type %s", want)
	}
}

// supportedKind reports whether a reflect.Kind has a toValue/fromValue
// mapping, used by RegisterFunction to reject unconvertible signatures
// at registration time rather than failing on first call (the teacher's
// RegisterFunction validates eagerly the same way).
func supportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
		return true
	default:
		return false
	}
}
