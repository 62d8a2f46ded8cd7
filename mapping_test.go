// SPDX-License-Identifier: Apache-2.0

package esfake

import "testing"

func TestMappingPutConflict(t *testing.T) {
	m := NewMapping(false)
	if err := m.Put("age", KindInteger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Put("age", KindText); err == nil {
		t.Fatalf("expected conflict error when re-declaring [age] as text")
	}
	if err := m.Put("age", KindInteger); err != nil {
		t.Fatalf("re-declaring the same kind should be a no-op: %v", err)
	}
}

func TestMappingTextKeywordSibling(t *testing.T) {
	m := NewMapping(false)
	if err := m.Put("name", KindText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := m.Resolve("name.keyword")
	if !ok {
		t.Fatalf("expected implicit name.keyword sibling to resolve")
	}
	if f.Kind != KindKeyword {
		t.Errorf("got kind %s, want keyword", f.Kind)
	}
}

func TestMappingResolveUnknownField(t *testing.T) {
	m := NewMapping(false)
	if _, ok := m.Resolve("nope"); ok {
		t.Errorf("expected unknown field to report no match, not panic or error")
	}
	if _, ok := m.Resolve("nope.keyword"); ok {
		t.Errorf("expected unknown field's .keyword to report no match")
	}
}

func TestMappingInferDynamic(t *testing.T) {
	m := NewMapping(true)
	doc := map[string]interface{}{
		"title": "hello",
		"count": float64(3),
		"nested": map[string]interface{}{
			"flag": true,
		},
	}
	assigned := m.Infer(doc)
	if len(assigned) == 0 {
		t.Fatalf("expected at least one field to be inferred")
	}
	if f, ok := m.Field("title"); !ok || f.Kind != KindText {
		t.Errorf("expected title to be inferred as text, got %+v, ok=%v", f, ok)
	}
	if f, ok := m.Field("count"); !ok || f.Kind != KindInteger {
		t.Errorf("expected count to be inferred as integer, got %+v, ok=%v", f, ok)
	}
	if f, ok := m.Field("nested.flag"); !ok || f.Kind != KindBoolean {
		t.Errorf("expected nested.flag to be inferred as boolean, got %+v, ok=%v", f, ok)
	}
}

func TestMappingInferDisabled(t *testing.T) {
	m := NewMapping(false)
	assigned := m.Infer(map[string]interface{}{"x": "y"})
	if assigned != nil {
		t.Errorf("expected no inference when dynamic mapping is disabled")
	}
	if _, ok := m.Field("x"); ok {
		t.Errorf("expected field to remain unmapped")
	}
}

func TestMappingPutPropertiesNested(t *testing.T) {
	m := NewMapping(false)
	err := m.PutProperties(map[string]interface{}{
		"user": map[string]interface{}{
			"properties": map[string]interface{}{
				"name": map[string]interface{}{"type": "text"},
				"age":  map[string]interface{}{"type": "integer"},
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f, ok := m.Field("user.name"); !ok || f.Kind != KindText {
		t.Errorf("expected user.name mapped as text, got %+v, ok=%v", f, ok)
	}
	if _, ok := m.Resolve("user.name.keyword"); !ok {
		t.Errorf("expected user.name.keyword sibling to resolve")
	}
}
