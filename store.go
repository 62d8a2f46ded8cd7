// SPDX-License-Identifier: Apache-2.0

package esfake

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Document is a single stored entry inside an Index: the verbatim JSON
// source as supplied by the client, the mapping-coerced typed projection
// used for query evaluation, and the version/seq_no pair Elasticsearch
// clients expect back from every write.
type Document struct {
	ID      string
	Source  map[string]interface{}
	Typed   map[string][]Value
	Version int64
	SeqNo   int64
}

// Index is a named collection of documents sharing a Mapping. It is the
// flattened analogue of the teacher client's CollectionResource: there is no
// separate database level above it, since Elasticsearch has no such
// intermediate resource.
type Index struct {
	Name    string
	Mapping *Mapping

	mu      sync.RWMutex
	docs    map[string]*Document
	locks   map[string]*sync.Mutex
	seqNo   int64
}

// NewIndex creates an empty Index named name with the given mapping. If m is
// nil a fresh dynamic mapping is created.
func NewIndex(name string, m *Mapping) *Index {
	if m == nil {
		m = NewMapping(true)
	}
	return &Index{
		Name:    name,
		Mapping: m,
		docs:    make(map[string]*Document),
		locks:   make(map[string]*sync.Mutex),
	}
}

// docLock returns (creating if necessary) the per-id mutex serializing
// writes to a single document slot, per the concurrency model of §5.
func (ix *Index) docLock(id string) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	l, ok := ix.locks[id]
	if !ok {
		l = &sync.Mutex{}
		ix.locks[id] = l
	}
	return l
}

// nextSeqNo atomically reserves the next sequence number for the index.
func (ix *Index) nextSeqNo() int64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.seqNo++
	return ix.seqNo
}

// genAutoID produces a short random identifier using the URL-safe alphabet,
// matching real Elasticsearch's 20-character base64url auto-id shape.
func genAutoID() (string, error) {
	buf := make([]byte, 15)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate document id")
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "="), nil
}

// IndexResult is the outcome of an Index/Update/Delete operation.
type IndexResult struct {
	Result  string // "created", "updated", "deleted", "not_found"
	ID      string
	Version int64
	SeqNo   int64
}

// IndexDocument stores source under id (generating one if empty), re-deriving the
// typed projection and triggering mapping inference for any new fields.
func (ix *Index) IndexDocument(id string, source map[string]interface{}) (*IndexResult, error) {
	if id == "" {
		gen, err := genAutoID()
		if err != nil {
			return nil, err
		}
		id = gen
	}

	lock := ix.docLock(id)
	lock.Lock()
	defer lock.Unlock()

	ix.Mapping.Infer(source)
	typed, err := ix.projectLocked(source)
	if err != nil {
		return nil, err
	}

	ix.mu.Lock()
	existing, found := ix.docs[id]
	ix.mu.Unlock()

	version := int64(1)
	result := "created"
	if found {
		version = existing.Version + 1
		result = "updated"
	}
	seqNo := ix.nextSeqNo()

	doc := &Document{ID: id, Source: source, Typed: typed, Version: version, SeqNo: seqNo}

	ix.mu.Lock()
	ix.docs[id] = doc
	ix.mu.Unlock()

	return &IndexResult{Result: result, ID: id, Version: version, SeqNo: seqNo}, nil
}

// projectLocked coerces source into the typed projection per the index's
// mapping. Fields with no mapping entry (e.g. dynamic:false, unmapped path)
// are simply omitted from the projection rather than erroring. A `text` field
// with an implicit keyword sibling is also projected at `<path>.keyword`.
func (ix *Index) projectLocked(source map[string]interface{}) (map[string][]Value, error) {
	typed := make(map[string][]Value)
	if err := projectWalk(ix.Mapping, "", source, typed); err != nil {
		return nil, err
	}
	return typed, nil
}

func projectWalk(m *Mapping, prefix string, obj map[string]interface{}, out map[string][]Value) error {
	for name, raw := range obj {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if nested, ok := raw.(map[string]interface{}); ok {
			if err := projectWalk(m, path, nested, out); err != nil {
				return err
			}
			continue
		}
		f, ok := m.Field(path)
		if !ok {
			continue
		}
		vals, err := CoerceField(f.Kind, raw)
		if err != nil {
			return NewAPIError(ErrMapperParsing, "failed to parse field [%s]: %s", path, err)
		}
		out[path] = vals
		if f.Kind == KindText && f.Keyword {
			kw := make([]Value, len(vals))
			for i, v := range vals {
				v.Kind = KindKeyword
				kw[i] = v
			}
			out[path+".keyword"] = kw
		}
	}
	return nil
}

// GetResult is the outcome of a Get operation.
type GetResult struct {
	Found   bool
	ID      string
	Source  map[string]interface{}
	Version int64
}

// Get returns the stored document at id, if present.
func (ix *Index) Get(id string) *GetResult {
	ix.mu.RLock()
	doc, ok := ix.docs[id]
	ix.mu.RUnlock()
	if !ok {
		return &GetResult{Found: false, ID: id}
	}
	return &GetResult{Found: true, ID: id, Source: doc.Source, Version: doc.Version}
}

// Update shallow-merges partial's top-level keys into the existing source
// (or, when partial carries a "doc" wrapper, that wrapper's keys) and
// re-derives the typed projection. Fails with document_missing_exception if
// id is absent.
func (ix *Index) Update(id string, partial map[string]interface{}) (*IndexResult, error) {
	lock := ix.docLock(id)
	lock.Lock()
	defer lock.Unlock()

	ix.mu.RLock()
	existing, ok := ix.docs[id]
	ix.mu.RUnlock()
	if !ok {
		return nil, NewAPIError(ErrDocumentMissing, "[%s]: document missing", id).WithIndex(ix.Name)
	}

	changes := partial
	if wrapped, ok := partial["doc"].(map[string]interface{}); ok {
		changes = wrapped
	}

	merged := make(map[string]interface{}, len(existing.Source)+len(changes))
	for k, v := range existing.Source {
		merged[k] = v
	}
	for k, v := range changes {
		merged[k] = v
	}

	ix.Mapping.Infer(merged)
	typed, err := ix.projectLocked(merged)
	if err != nil {
		return nil, err
	}

	version := existing.Version + 1
	seqNo := ix.nextSeqNo()
	doc := &Document{ID: id, Source: merged, Typed: typed, Version: version, SeqNo: seqNo}

	ix.mu.Lock()
	ix.docs[id] = doc
	ix.mu.Unlock()

	return &IndexResult{Result: "updated", ID: id, Version: version, SeqNo: seqNo}, nil
}

// Delete removes the document at id, if present.
func (ix *Index) Delete(id string) *IndexResult {
	lock := ix.docLock(id)
	lock.Lock()
	defer lock.Unlock()

	ix.mu.Lock()
	existing, ok := ix.docs[id]
	if ok {
		delete(ix.docs, id)
	}
	ix.mu.Unlock()

	if !ok {
		return &IndexResult{Result: "not_found", ID: id}
	}
	seqNo := ix.nextSeqNo()
	return &IndexResult{Result: "deleted", ID: id, Version: existing.Version + 1, SeqNo: seqNo}
}

// Documents returns a snapshot of every stored document, for the query
// engine's single linear pass (§4.4).
func (ix *Index) Documents() []*Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]*Document, 0, len(ix.docs))
	for _, d := range ix.docs {
		out = append(out, d)
	}
	return out
}

// Count reports the number of stored documents.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Registry is the process-wide, read-mostly index catalogue: creation and
// deletion take an exclusive lock, every other operation takes a shared
// lock and then defers to the per-index locking scheme in Index.
type Registry struct {
	mu      sync.RWMutex
	indices map[string]*Index
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{indices: make(map[string]*Index)}
}

// Create registers a new, empty index named name. Fails with
// resource_already_exists_exception if name is already registered.
func (r *Registry) Create(name string, m *Mapping) (*Index, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.indices[name]; ok {
		return nil, NewAPIError(ErrResourceAlreadyExists, "index [%s] already exists", name).WithIndex(name)
	}
	ix := NewIndex(name, m)
	r.indices[name] = ix
	return ix, nil
}

// Get returns the named index. Fails with index_not_found_exception if it
// does not exist.
func (r *Registry) Get(name string) (*Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ix, ok := r.indices[name]
	if !ok {
		return nil, NewAPIError(ErrIndexNotFound, "no such index [%s]", name).WithIndex(name)
	}
	return ix, nil
}

// GetOrCreate returns the named index, auto-vivifying a dynamically-mapped
// one if it does not already exist (matching real Elasticsearch's default
// behavior of implicitly creating an index on first write).
func (r *Registry) GetOrCreate(name string) *Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	ix, ok := r.indices[name]
	if ok {
		return ix
	}
	ix = NewIndex(name, NewMapping(true))
	r.indices[name] = ix
	return ix
}

// Exists reports whether name is a registered index.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.indices[name]
	return ok
}

// Delete drops the named index. Fails with index_not_found_exception if it
// does not exist.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.indices[name]; !ok {
		return NewAPIError(ErrIndexNotFound, "no such index [%s]", name).WithIndex(name)
	}
	delete(r.indices, name)
	return nil
}

// Names returns a snapshot of every registered index name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.indices))
	for name := range r.indices {
		out = append(out, name)
	}
	return out
}
