package module

import (
	"strings"
	"testing"

	"github.com/sergeych/lyng-sub006/internal/value"
)

func TestValueToJSONEncodesNestedMapsAndLists(t *testing.T) {
	m := value.NewMap()
	m.Set("name", value.NewString("lyng"))
	m.Set("tags", value.NewList([]value.Value{value.NewString("fast"), value.NewString("small")}))
	doc, err := ValueToJSON(value.Value{Class: value.ClassMap, Data: m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(doc, `"name": "lyng"`) || !strings.Contains(doc, `"fast"`) {
		t.Fatalf("unexpected JSON output: %s", doc)
	}
}

func TestValueFromJSONRoundTripsThroughMapAndList(t *testing.T) {
	v, sig := ValueFromJSON(`{"count": 3, "items": ["a", "b"], "ok": true, "nothing": null}`)
	if sig != nil {
		t.Fatalf("unexpected error: %v", sig)
	}
	m := v.Map()
	count, _ := m.Get("count")
	if count.Int() != 3 {
		t.Fatalf("expected count=3, got %d", count.Int())
	}
	items, _ := m.Get("items")
	if len(items.List().Items) != 2 || items.List().Items[0].Str() != "a" {
		t.Fatalf("unexpected items: %+v", items.List().Items)
	}
	ok, _ := m.Get("ok")
	if !ok.Bool() {
		t.Fatal("expected ok=true")
	}
	nothing, _ := m.Get("nothing")
	if nothing.Class != value.ClassNull {
		t.Fatalf("expected null, got %s", nothing.Class.Name)
	}
}

func TestValueFromJSONRejectsInvalidDocument(t *testing.T) {
	if _, sig := ValueFromJSON("{not json"); sig == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}
