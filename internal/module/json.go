package module

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/sergeych/lyng-sub006/internal/errors"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

// ValueToJSON renders v as a pretty-printed JSON document (§6.1 "native↔core
// value conversion"), the form a host-registered function hands back
// across the embedding boundary when the other side expects JSON rather
// than a raw value.Value.
func ValueToJSON(v value.Value) (string, error) {
	raw, err := encodeJSON(v)
	if err != nil {
		return "", err
	}
	return string(pretty.Pretty([]byte(raw))), nil
}

func encodeJSON(v value.Value) (string, error) {
	switch v.Class {
	case value.ClassNull, value.ClassVoid, value.ClassUnset:
		return "null", nil
	case value.ClassBool:
		return strconv.FormatBool(v.Bool()), nil
	case value.ClassInt:
		return strconv.FormatInt(v.Int(), 10), nil
	case value.ClassReal:
		return strconv.FormatFloat(v.Real(), 'g', -1, 64), nil
	case value.ClassString:
		return strconv.Quote(v.Str()), nil
	case value.ClassChar:
		return strconv.Quote(string(v.Char())), nil
	case value.ClassList, value.ClassSet, value.ClassArray:
		items := collectionItems(v)
		doc := "[]"
		for i, item := range items {
			frag, err := encodeJSON(item)
			if err != nil {
				return "", err
			}
			doc, err = sjson.SetRaw(doc, strconv.Itoa(i), frag)
			if err != nil {
				return "", fmt.Errorf("module: encoding JSON array: %w", err)
			}
		}
		return doc, nil
	case value.ClassBuffer:
		doc := "[]"
		for i, b := range v.Buffer().Bytes {
			var err error
			doc, err = sjson.Set(doc, strconv.Itoa(i), int(b))
			if err != nil {
				return "", fmt.Errorf("module: encoding JSON buffer: %w", err)
			}
		}
		return doc, nil
	case value.ClassMap:
		m := v.Map()
		doc := "{}"
		for _, k := range m.Keys() {
			item, _ := m.Get(k)
			frag, err := encodeJSON(item)
			if err != nil {
				return "", err
			}
			doc, err = sjson.SetRaw(doc, k, frag)
			if err != nil {
				return "", fmt.Errorf("module: encoding JSON object: %w", err)
			}
		}
		return doc, nil
	default:
		return "", fmt.Errorf("module: cannot encode a %s value as JSON", v.Class.Name)
	}
}

// collectionItems reads the ordered item slice out of a List/Set/Array
// value backed by ListData or SetData; any other payload yields nil.
func collectionItems(v value.Value) []value.Value {
	switch d := v.Data.(type) {
	case *value.ListData:
		return d.Items
	case *value.SetData:
		return d.Items
	default:
		return nil
	}
}

// ValueFromJSON parses a JSON document into a value.Value tree (objects
// become Map, arrays become List), using gjson's result walk rather than
// encoding/json's reflection-based decode.
func ValueFromJSON(doc string) (value.Value, *errors.Signal) {
	if !gjson.Valid(doc) {
		return value.Value{}, errors.Throw(
			value.IllegalArgumentErr("module: invalid JSON document", source.Position{}),
			source.Position{},
		)
	}
	return decodeJSON(gjson.Parse(doc)), nil
}

func decodeJSON(r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Null
	case gjson.True:
		return value.True
	case gjson.False:
		return value.False
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return value.NewInt(int64(r.Num))
		}
		return value.NewReal(r.Num)
	case gjson.String:
		return value.NewString(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var items []value.Value
			r.ForEach(func(_, v gjson.Result) bool {
				items = append(items, decodeJSON(v))
				return true
			})
			return value.NewList(items)
		}
		m := value.NewMap()
		r.ForEach(func(k, v gjson.Result) bool {
			m.Set(k.Str, decodeJSON(v))
			return true
		})
		return value.Value{Class: value.ClassMap, Data: m}
	default:
		return value.Null
	}
}
