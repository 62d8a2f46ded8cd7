// SPDX-License-Identifier: Apache-2.0

package esfake

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Field is a single mapped path inside a Mapping.
type Field struct {
	Path string
	Kind Kind
	// Keyword is set on a `text` field that carries an implicit `.keyword`
	// multi-field sibling (true unless the caller explicitly declared a
	// conflicting type at the `.keyword` path itself).
	Keyword bool
}

// Mapping is the per-index field schema: a set of dotted field paths bound
// to an immutable Kind, plus the dynamic-mapping toggle. It is the
// typed-schema analogue of a CollectionIndexingPolicy, flattened to the
// single-level database Elasticsearch exposes (there is no separate
// database/collection distinction here, only indices).
type Mapping struct {
	mu      sync.RWMutex
	dynamic bool
	fields  map[string]Field
}

// NewMapping creates an empty Mapping with the given dynamic-mapping mode.
func NewMapping(dynamic bool) *Mapping {
	return &Mapping{
		dynamic: dynamic,
		fields:  make(map[string]Field),
	}
}

// Dynamic reports whether unmapped fields are dynamically inferred.
func (m *Mapping) Dynamic() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dynamic
}

// Field looks up the exact mapping entry for path, with no `.keyword`
// fallback resolution (see Resolve for that).
func (m *Mapping) Field(path string) (Field, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.fields[path]
	return f, ok
}

// Fields returns a snapshot of every mapped field, sorted by nothing in
// particular; callers that need determinism should sort by Path themselves.
func (m *Mapping) Fields() []Field {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Field, 0, len(m.fields))
	for _, f := range m.fields {
		out = append(out, f)
	}
	return out
}

// Put declares path as kind k. If path is already mapped, the kind must
// match exactly or an illegal_argument_exception-class error is returned. A
// `text` field implicitly reserves `<path>.keyword` as a keyword sibling
// unless that exact path is already declared with a different kind, in which
// case the earlier declaration is kept and no sibling is added. A different
// kind declared at `<path>.keyword` after the text field conflicts with the
// implicit keyword sibling and is rejected.
func (m *Mapping) Put(path string, k Kind) error {
	if !k.Valid() {
		return errors.Errorf("illegal_argument_exception: mapping type [%s] is not supported", k)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putLocked(path, k)
}

func (m *Mapping) putLocked(path string, k Kind) error {
	if existing, ok := m.fields[path]; ok {
		if existing.Kind != k {
			return errors.Errorf("illegal_argument_exception: mapper [%s] of different type, current_type [%s], merged_type [%s]", path, existing.Kind, k)
		}
		return nil
	}
	f := Field{Path: path, Kind: k}
	if k == KindText {
		kwPath := path + ".keyword"
		if existing, ok := m.fields[kwPath]; !ok {
			f.Keyword = true
			m.fields[kwPath] = Field{Path: kwPath, Kind: KindKeyword}
		} else if existing.Kind == KindKeyword {
			f.Keyword = true
		}
	}
	m.fields[path] = f
	return nil
}

// PutProperties merges a `mappings.properties`-shaped declaration (as
// decoded from JSON: map[string]interface{} whose values are
// map[string]interface{} with a "type" key, or objects to recurse into for
// nested paths via dotted notation). Returns the first conflict encountered.
func (m *Mapping) PutProperties(properties map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putPropertiesLocked("", properties)
}

func (m *Mapping) putPropertiesLocked(prefix string, properties map[string]interface{}) error {
	for name, raw := range properties {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		spec, ok := raw.(map[string]interface{})
		if !ok {
			return errors.Errorf("illegal_argument_exception: mapping definition for [%s] must be an object", path)
		}
		typ, hasType := spec["type"]
		if hasType {
			typStr, ok := typ.(string)
			if !ok {
				return errors.Errorf("illegal_argument_exception: [type] for field [%s] must be a string", path)
			}
			if err := m.putLocked(path, Kind(typStr)); err != nil {
				return err
			}
			continue
		}
		if nested, ok := spec["properties"].(map[string]interface{}); ok {
			if err := m.putPropertiesLocked(path, nested); err != nil {
				return err
			}
			continue
		}
		return errors.Errorf("illegal_argument_exception: mapping for [%s] is missing a [type]", path)
	}
	return nil
}

// Infer walks a decoded JSON document body (map[string]interface{}) and
// assigns kinds to any unmapped paths it finds, per §4.2 of the dynamic
// mapping rules. No-op if Dynamic is false. Returns the set of paths newly
// assigned so callers can log/observe it; inference never errors — values
// it cannot classify (null, empty array, empty object) are simply skipped.
func (m *Mapping) Infer(doc map[string]interface{}) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dynamic {
		return nil
	}
	var assigned []string
	m.inferLocked("", doc, &assigned)
	return assigned
}

func (m *Mapping) inferLocked(prefix string, doc map[string]interface{}, assigned *[]string) {
	for name, raw := range doc {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if _, ok := m.fields[path]; ok {
			if nested, ok := raw.(map[string]interface{}); ok {
				m.inferLocked(path, nested, assigned)
			}
			continue
		}
		if nested, ok := raw.(map[string]interface{}); ok {
			m.inferLocked(path, nested, assigned)
			continue
		}
		k, ok := InferKind(raw)
		if !ok {
			continue
		}
		if err := m.putLocked(path, k); err == nil {
			*assigned = append(*assigned, path)
		}
	}
}

// Resolve implements the `.keyword` multi-field resolution order described
// in §4.2: exact match first; failing that, if path ends in ".keyword" and
// the parent path is mapped as `text` with an implicit keyword sibling, that
// sibling is used. Otherwise Resolve reports (Field{}, false) — an unknown
// field, which callers must treat as "no match", not an error.
func (m *Mapping) Resolve(path string) (Field, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.fields[path]; ok {
		return f, true
	}
	if parent, ok := strings.CutSuffix(path, ".keyword"); ok {
		if pf, ok := m.fields[parent]; ok && pf.Kind == KindText && pf.Keyword {
			if kf, ok := m.fields[parent+".keyword"]; ok {
				return kf, true
			}
		}
	}
	return Field{}, false
}
