// SPDX-License-Identifier: Apache-2.0
//
// Copyright (c) 2019-present, Jet.com, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License."

package esfake

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the snake_case error type reported in the `error.type` field
// of the error envelope, e.g. "index_not_found_exception". This generalizes
// the original client's Error type (a string implementing the error
// interface with a Status() method switching over two fixed sentinels) to an
// open-ended kind+reason taxonomy, since the server side reports an entire
// catalogue of Elasticsearch exception names rather than two HTTP sentinels.
type ErrorKind string

const (
	ErrSecurityException             ErrorKind = "security_exception"
	ErrIndexNotFound                  ErrorKind = "index_not_found_exception"
	ErrResourceAlreadyExists          ErrorKind = "resource_already_exists_exception"
	ErrMapperParsing                  ErrorKind = "mapper_parsing_exception"
	ErrIllegalArgument                ErrorKind = "illegal_argument_exception"
	ErrDocumentMissing                ErrorKind = "document_missing_exception"
	ErrParseException                 ErrorKind = "parse_exception"
	ErrXContentParseException         ErrorKind = "x_content_parse_exception"
	ErrActionRequestValidationFailure ErrorKind = "action_request_validation_exception"
)

// Status returns the HTTP status code this error kind is reported under.
func (k ErrorKind) Status() int {
	switch k {
	case ErrSecurityException:
		return http.StatusUnauthorized
	case ErrIndexNotFound, ErrDocumentMissing:
		return http.StatusNotFound
	case ErrResourceAlreadyExists, ErrMapperParsing, ErrIllegalArgument,
		ErrParseException, ErrXContentParseException, ErrActionRequestValidationFailure:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the typed error every engine operation returns on failure. It
// carries everything the HTTP layer needs to render the error envelope
// without re-deriving a status code or exception name from a bare string.
type APIError struct {
	ErrKind ErrorKind
	Reason  string
	Index   string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.ErrKind, e.Reason)
	}
	return string(e.ErrKind)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Status relays the HTTP status code this error should be reported as.
func (e *APIError) Status() int {
	return e.ErrKind.Status()
}

// NewAPIError builds an *APIError of the given kind with a formatted reason.
func NewAPIError(kind ErrorKind, format string, args ...interface{}) *APIError {
	return &APIError{ErrKind: kind, Reason: fmt.Sprintf(format, args...)}
}

// WithIndex attaches the offending index name, rendered as the `index` field
// of the error envelope, and returns the same error for chaining.
func (e *APIError) WithIndex(index string) *APIError {
	e.Index = index
	return e
}

// AsAPIError unwraps err looking for an *APIError, wrapping anything else as
// an illegal_argument_exception so callers never have to special-case a bare
// Go error when rendering the error envelope.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	return &APIError{ErrKind: ErrIllegalArgument, Reason: err.Error(), Cause: err}
}
