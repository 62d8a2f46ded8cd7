// SPDX-License-Identifier: Apache-2.0

package esfake

import "io"

// Engine is the facade tying the mapping registry, document store, query
// compiler, aggregation evaluator, and bulk processor together into the
// high-level operations the transport layer calls. It is the structural
// analogue of the teacher client's Client type: a single entry point the
// HTTP handlers hold a reference to, rather than wiring each component
// together themselves.
type Engine struct {
	Registry *Registry
}

// NewEngine creates an Engine with an empty index registry.
func NewEngine() *Engine {
	return &Engine{Registry: NewRegistry()}
}

// CreateIndex registers a new index, optionally seeded with a
// `mappings.properties` declaration and a `mappings.dynamic` toggle. dynamic
// defaults to true (matching real Elasticsearch) when nil, regardless of
// whether properties was supplied — declaring properties does not implicitly
// disable dynamic mapping for fields outside that declaration.
func (e *Engine) CreateIndex(name string, properties map[string]interface{}, dynamic *bool) (*Index, error) {
	dyn := true
	if dynamic != nil {
		dyn = *dynamic
	}
	m := NewMapping(dyn)
	if properties != nil {
		if err := m.PutProperties(properties); err != nil {
			return nil, err
		}
	}
	return e.Registry.Create(name, m)
}

// DeleteIndex drops an index.
func (e *Engine) DeleteIndex(name string) error {
	return e.Registry.Delete(name)
}

// IndexExists reports whether name is a registered index.
func (e *Engine) IndexExists(name string) bool {
	return e.Registry.Exists(name)
}

// PutMapping merges a `mappings.properties` declaration into an existing
// index's mapping.
func (e *Engine) PutMapping(name string, properties map[string]interface{}) error {
	ix, err := e.Registry.Get(name)
	if err != nil {
		return err
	}
	return ix.Mapping.PutProperties(properties)
}

// GetMapping returns the named index's mapping.
func (e *Engine) GetMapping(name string) (*Mapping, error) {
	ix, err := e.Registry.Get(name)
	if err != nil {
		return nil, err
	}
	return ix.Mapping, nil
}

// IndexDocument stores source under id within the named index, auto-creating
// the index (dynamically mapped) if it does not yet exist, per real
// Elasticsearch's default behavior.
func (e *Engine) IndexDocument(name, id string, source map[string]interface{}) (*IndexResult, error) {
	ix := e.Registry.GetOrCreate(name)
	return ix.IndexDocument(id, source)
}

// GetDocument returns a document from the named index.
func (e *Engine) GetDocument(name, id string) (*GetResult, error) {
	ix, err := e.Registry.Get(name)
	if err != nil {
		return nil, err
	}
	return ix.Get(id), nil
}

// UpdateDocument shallow-merges partial into an existing document.
func (e *Engine) UpdateDocument(name, id string, partial map[string]interface{}) (*IndexResult, error) {
	ix, err := e.Registry.Get(name)
	if err != nil {
		return nil, err
	}
	return ix.Update(id, partial)
}

// DeleteDocument removes a document from the named index.
func (e *Engine) DeleteDocument(name, id string) (*IndexResult, error) {
	ix, err := e.Registry.Get(name)
	if err != nil {
		return nil, err
	}
	return ix.Delete(id), nil
}

// Search runs a search request against the named index.
func (e *Engine) Search(name string, req *SearchRequest) (*SearchResult, error) {
	ix, err := e.Registry.Get(name)
	if err != nil {
		return nil, err
	}
	return Search(ix, req)
}

// Count runs a count request against the named index.
func (e *Engine) Count(name string, clause map[string]interface{}) (int, error) {
	ix, err := e.Registry.Get(name)
	if err != nil {
		return 0, err
	}
	return Count(ix, clause)
}

// Bulk processes a newline-delimited bulk request body.
func (e *Engine) Bulk(defaultIndex string, body io.Reader) (*BulkResult, error) {
	return ProcessBulk(e.Registry, defaultIndex, body)
}
