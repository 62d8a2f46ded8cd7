// SPDX-License-Identifier: Apache-2.0

package esfake

import "testing"

func TestIndexDocumentVersionIncrement(t *testing.T) {
	ix := NewIndex("products", NewMapping(true))
	r1, err := ix.IndexDocument("1", map[string]interface{}{"name": "widget"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Result != "created" || r1.Version != 1 {
		t.Fatalf("got %+v, want created/version 1", r1)
	}
	r2, err := ix.IndexDocument("1", map[string]interface{}{"name": "widget v2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r2.Result != "updated" || r2.Version != 2 {
		t.Fatalf("got %+v, want updated/version 2", r2)
	}
}

func TestIndexDocumentAutoID(t *testing.T) {
	ix := NewIndex("products", NewMapping(true))
	r, err := ix.IndexDocument("", map[string]interface{}{"name": "widget"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID == "" {
		t.Fatalf("expected a generated id")
	}
	got := ix.Get(r.ID)
	if !got.Found {
		t.Fatalf("expected document to be retrievable by generated id")
	}
}

func TestGetMissingDocument(t *testing.T) {
	ix := NewIndex("products", NewMapping(true))
	got := ix.Get("missing")
	if got.Found {
		t.Fatalf("expected found=false for missing document")
	}
}

func TestUpdateShallowMerge(t *testing.T) {
	ix := NewIndex("products", NewMapping(true))
	if _, err := ix.IndexDocument("1", map[string]interface{}{"name": "widget", "price": float64(10)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := ix.Update("1", map[string]interface{}{"doc": map[string]interface{}{"price": float64(12)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ix.Get("1")
	if got.Source["name"] != "widget" {
		t.Errorf("expected name to survive the merge, got %+v", got.Source)
	}
	if got.Source["price"] != float64(12) {
		t.Errorf("expected price to be updated, got %+v", got.Source)
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	ix := NewIndex("products", NewMapping(true))
	_, err := ix.Update("missing", map[string]interface{}{"doc": map[string]interface{}{"x": 1}})
	ae := AsAPIError(err)
	if ae.ErrKind != ErrDocumentMissing {
		t.Fatalf("got %v, want document_missing_exception", ae)
	}
}

func TestDeleteThenGetThenDeleteAgain(t *testing.T) {
	ix := NewIndex("products", NewMapping(true))
	if _, err := ix.IndexDocument("1", map[string]interface{}{"name": "widget"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := ix.Delete("1")
	if r.Result != "deleted" {
		t.Fatalf("got %+v, want deleted", r)
	}
	if got := ix.Get("1"); got.Found {
		t.Fatalf("expected found=false after delete")
	}
	r2 := ix.Delete("1")
	if r2.Result != "not_found" {
		t.Fatalf("expected idempotent delete to report not_found, got %+v", r2)
	}
}

func TestRegistryCreateExistingConflict(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("products", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := r.Create("products", nil)
	ae := AsAPIError(err)
	if ae.ErrKind != ErrResourceAlreadyExists {
		t.Fatalf("got %v, want resource_already_exists_exception", ae)
	}
}

func TestRegistryGetMissing(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	ae := AsAPIError(err)
	if ae.ErrKind != ErrIndexNotFound {
		t.Fatalf("got %v, want index_not_found_exception", ae)
	}
}
