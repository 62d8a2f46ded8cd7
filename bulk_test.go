// SPDX-License-Identifier: Apache-2.0

package esfake

import (
	"strings"
	"testing"
)

func TestProcessBulkIndexItems(t *testing.T) {
	body := strings.Join([]string{
		`{"index":{"_index":"widgets","_id":"1"}}`,
		`{"name":"Alpha"}`,
		`{"index":{"_id":"2"}}`,
		`{"name":"Beta"}`,
		``,
	}, "\n")

	reg := NewRegistry()
	result, err := ProcessBulk(reg, "widgets", strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Errors {
		t.Fatalf("expected no item errors, got %+v", result.Items)
	}
	if len(result.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(result.Items))
	}

	ix, err := reg.Get("widgets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ix.Count() != 2 {
		t.Fatalf("got %d documents, want 2", ix.Count())
	}
}

func TestProcessBulkPerItemFailureDoesNotAbortBatch(t *testing.T) {
	body := strings.Join([]string{
		`{"index":{"_index":"widgets","_id":"1"}}`,
		`not valid json`,
		`{"index":{"_index":"widgets","_id":"2"}}`,
		`{"name":"Beta"}`,
		``,
	}, "\n")

	reg := NewRegistry()
	result, err := ProcessBulk(reg, "", strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Errors {
		t.Fatalf("expected errors=true given one malformed item")
	}
	if len(result.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(result.Items))
	}
	if result.Items[0].Err == nil {
		t.Errorf("expected the first item to have failed")
	}
	if result.Items[1].Err != nil {
		t.Errorf("expected the second item to have succeeded, got %+v", result.Items[1].Err)
	}
}

func TestProcessBulkMalformedActionLineTerminatesBatch(t *testing.T) {
	body := strings.Join([]string{
		`not an action line`,
		`{"name":"Alpha"}`,
		``,
	}, "\n")

	reg := NewRegistry()
	_, err := ProcessBulk(reg, "widgets", strings.NewReader(body))
	if err == nil {
		t.Fatalf("expected a malformed action line to terminate the whole request")
	}
	ae := AsAPIError(err)
	if ae.ErrKind != ErrParseException {
		t.Fatalf("got %v, want parse_exception", ae)
	}
}

func TestProcessBulkMissingIndexIsValidationFailure(t *testing.T) {
	body := strings.Join([]string{
		`{"index":{"_id":"1"}}`,
		`{"name":"Alpha"}`,
		``,
	}, "\n")

	reg := NewRegistry()
	result, err := ProcessBulk(reg, "", strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Errors {
		t.Fatalf("expected errors=true when an action line has no resolvable index")
	}
	if len(result.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(result.Items))
	}
	if result.Items[0].Err == nil || result.Items[0].Err.ErrKind != ErrActionRequestValidationFailure {
		t.Fatalf("got %+v, want action_request_validation_exception", result.Items[0].Err)
	}
	if reg.Exists("") {
		t.Errorf("expected no index named \"\" to have been created")
	}
}

func TestProcessBulkNValidItemsThenCount(t *testing.T) {
	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, `{"index":{}}`, `{"n":`+string(rune('0'+i))+`}`)
	}
	body := strings.Join(lines, "\n")

	reg := NewRegistry()
	result, err := ProcessBulk(reg, "nums", strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Errors {
		t.Fatalf("expected all items to succeed, got %+v", result.Items)
	}
	ix, err := reg.Get("nums")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := Count(ix, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("got count %d, want 5", n)
	}
}
