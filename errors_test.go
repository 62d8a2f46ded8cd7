// SPDX-License-Identifier: Apache-2.0

package esfake

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorKindStatus(t *testing.T) {
	cases := []struct {
		kind ErrorKind
		want int
	}{
		{ErrSecurityException, http.StatusUnauthorized},
		{ErrIndexNotFound, http.StatusNotFound},
		{ErrDocumentMissing, http.StatusNotFound},
		{ErrResourceAlreadyExists, http.StatusBadRequest},
		{ErrMapperParsing, http.StatusBadRequest},
		{ErrIllegalArgument, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if got := tc.kind.Status(); got != tc.want {
			t.Errorf("%s.Status() = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestAsAPIErrorWrapsPlainError(t *testing.T) {
	ae := AsAPIError(errors.New("boom"))
	if ae.ErrKind != ErrIllegalArgument {
		t.Errorf("got %v, want illegal_argument_exception for an unrecognized error", ae.ErrKind)
	}
	if ae.Reason != "boom" {
		t.Errorf("got reason %q, want %q", ae.Reason, "boom")
	}
}

func TestAsAPIErrorPassesThroughAPIError(t *testing.T) {
	original := NewAPIError(ErrDocumentMissing, "no such document")
	ae := AsAPIError(original)
	if ae != original {
		t.Errorf("expected AsAPIError to return the same *APIError instance")
	}
}

func TestAPIErrorWithIndex(t *testing.T) {
	ae := NewAPIError(ErrIndexNotFound, "no such index [%s]", "widgets").WithIndex("widgets")
	if ae.Index != "widgets" {
		t.Errorf("got index %q, want %q", ae.Index, "widgets")
	}
}
