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

// Package esfake is an in-memory emulator of the Elasticsearch HTTP/JSON
// protocol: mapping inference and enforcement, Query DSL evaluation with
// `.keyword` multi-field semantics, sorting, pagination, bucket `terms`
// aggregations, and bulk NDJSON ingestion. The engine in this package holds
// no transport concerns; see package httpapi for the HTTP layer.
package esfake // import "github.com/jozefcuryllo/es-fake"

// APIVersion is the Elasticsearch server version this emulator reports
// itself as, used in the GET / response.
const APIVersion = "8.10.0"
