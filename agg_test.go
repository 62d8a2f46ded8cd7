// SPDX-License-Identifier: Apache-2.0

package esfake

import "testing"

func TestEvaluateTermsAggregation(t *testing.T) {
	m := NewMapping(true)
	docs := []*Document{}
	colors := []string{"red", "red", "blue", "green"}
	for i, c := range colors {
		m.Infer(map[string]interface{}{"color": c})
		vals, err := CoerceField(KindKeyword, c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		docs = append(docs, &Document{ID: idFor(i % 3), Typed: map[string][]Value{"color.keyword": vals}})
	}

	result, err := EvaluateAggs(m, docs, map[string]interface{}{
		"by_color": map[string]interface{}{
			"terms": map[string]interface{}{"field": "color.keyword"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg := result["by_color"]
	if agg == nil {
		t.Fatalf("expected an aggregation result for by_color")
	}
	if len(agg.Buckets) != 3 {
		t.Fatalf("got %d buckets, want 3", len(agg.Buckets))
	}
	if agg.Buckets[0].Key != "red" || agg.Buckets[0].DocCount != 2 {
		t.Errorf("expected red to be the top bucket with doc_count 2, got %+v", agg.Buckets[0])
	}

	total := 0
	for _, b := range agg.Buckets {
		total += b.DocCount
	}
	if total+agg.SumOtherDocCount != len(docs) {
		t.Errorf("sum(buckets.doc_count) + sum_other_doc_count = %d, want %d", total+agg.SumOtherDocCount, len(docs))
	}
}

func TestEvaluateTermsAggregationSizeLimit(t *testing.T) {
	m := NewMapping(true)
	docs := []*Document{}
	for i, c := range []string{"a", "b", "c", "d"} {
		vals, _ := CoerceField(KindKeyword, c)
		docs = append(docs, &Document{ID: idFor(i % 3), Typed: map[string][]Value{"tag.keyword": vals}})
	}
	m.Infer(map[string]interface{}{"tag": "a"})

	result, err := EvaluateAggs(m, docs, map[string]interface{}{
		"by_tag": map[string]interface{}{
			"terms": map[string]interface{}{"field": "tag.keyword", "size": float64(2)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg := result["by_tag"]
	if len(agg.Buckets) != 2 {
		t.Fatalf("got %d buckets, want 2 (size-limited)", len(agg.Buckets))
	}
	if agg.SumOtherDocCount != 2 {
		t.Errorf("got sum_other_doc_count %d, want 2", agg.SumOtherDocCount)
	}
}

func TestEvaluateTermsAggregationUnknownField(t *testing.T) {
	m := NewMapping(false)
	result, err := EvaluateAggs(m, nil, map[string]interface{}{
		"by_missing": map[string]interface{}{
			"terms": map[string]interface{}{"field": "nope"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result["by_missing"].Buckets) != 0 {
		t.Errorf("expected empty buckets for an unmapped field")
	}
}
