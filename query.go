// SPDX-License-Identifier: Apache-2.0

package esfake

import (
	"sort"

	"github.com/pkg/errors"
)

// SearchRequest is a decoded `_search` request body: any of Query, Sort,
// From, Size, Aggs may be present together; an absent Query means match_all.
type SearchRequest struct {
	Query map[string]interface{}
	Sort  interface{} // string, object, or array of either
	From  int
	Size  int
	Size0 bool // true if "size" was explicitly present (distinguishes 0 from default)
	Aggs  map[string]interface{}
}

// ParseSearchRequest decodes a raw `_search` body (as produced by
// encoding/json or jsonshim's Unmarshal into map[string]interface{}) into a
// SearchRequest, applying the defaults described in §4.4.
func ParseSearchRequest(body map[string]interface{}) (*SearchRequest, error) {
	req := &SearchRequest{From: 0, Size: 10}
	if q, ok := body["query"]; ok {
		m, ok := q.(map[string]interface{})
		if !ok {
			return nil, NewAPIError(ErrXContentParseException, "[query] must be an object")
		}
		req.Query = m
	}
	if s, ok := body["sort"]; ok {
		req.Sort = s
	}
	if f, ok := body["from"]; ok {
		n, err := asNonNegativeInt(f)
		if err != nil {
			return nil, NewAPIError(ErrIllegalArgument, "[from] %s", err)
		}
		req.From = n
	}
	if s, ok := body["size"]; ok {
		n, err := asNonNegativeInt(s)
		if err != nil {
			return nil, NewAPIError(ErrIllegalArgument, "[size] %s", err)
		}
		req.Size = n
		req.Size0 = true
	}
	if a, ok := body["aggs"]; ok {
		m, ok := a.(map[string]interface{})
		if !ok {
			return nil, NewAPIError(ErrXContentParseException, "[aggs] must be an object")
		}
		req.Aggs = m
	} else if a, ok := body["aggregations"]; ok {
		m, ok := a.(map[string]interface{})
		if !ok {
			return nil, NewAPIError(ErrXContentParseException, "[aggregations] must be an object")
		}
		req.Aggs = m
	}
	return req, nil
}

func asNonNegativeInt(raw interface{}) (int, error) {
	f, ok := raw.(float64)
	if !ok {
		return 0, errors.Errorf("must be a number")
	}
	n := int(f)
	if n < 0 {
		n = 0
	}
	return n, nil
}

// predicate is a compiled query clause: reports whether doc matches.
type predicate func(doc *Document) bool

// matchAll always matches, per §4.4.
func matchAll(*Document) bool { return true }

// CompileQuery compiles a decoded `query` clause into a predicate. An absent
// clause (nil map) compiles to match_all. Any clause key other than
// match_all/term/bool is rejected with illegal_argument_exception rather
// than silently treated as match_all.
func CompileQuery(m *Mapping, clause map[string]interface{}) (predicate, error) {
	if clause == nil {
		return matchAll, nil
	}
	if len(clause) != 1 {
		return nil, NewAPIError(ErrIllegalArgument, "query clause must have exactly one top-level key")
	}
	for key, raw := range clause {
		switch key {
		case "match_all":
			return matchAll, nil
		case "term":
			return compileTerm(m, raw)
		case "bool":
			return compileBool(m, raw)
		default:
			return nil, NewAPIError(ErrIllegalArgument, "no [%s] registered for query", key)
		}
	}
	return matchAll, nil
}

func compileTerm(m *Mapping, raw interface{}) (predicate, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok || len(obj) != 1 {
		return nil, NewAPIError(ErrIllegalArgument, "[term] query requires exactly one field")
	}
	for field, v := range obj {
		target := v
		if o, ok := v.(map[string]interface{}); ok {
			target, ok = o["value"]
			if !ok {
				return nil, NewAPIError(ErrIllegalArgument, "[term] query requires a [value]")
			}
		}
		f, ok := m.Resolve(field)
		if !ok {
			return func(*Document) bool { return false }, nil
		}
		want, err := CoerceScalar(f.Kind, target)
		if err != nil {
			return nil, NewAPIError(ErrIllegalArgument, "[term] %s", err)
		}
		path := f.Path
		return func(doc *Document) bool {
			for _, have := range doc.Typed[path] {
				if have.Equal(want) {
					return true
				}
			}
			return false
		}, nil
	}
	return matchAll, nil
}

func compileClauseList(m *Mapping, raw interface{}) ([]predicate, error) {
	if raw == nil {
		return nil, nil
	}
	switch t := raw.(type) {
	case map[string]interface{}:
		p, err := CompileQuery(m, t)
		if err != nil {
			return nil, err
		}
		return []predicate{p}, nil
	case []interface{}:
		out := make([]predicate, 0, len(t))
		for _, item := range t {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, NewAPIError(ErrIllegalArgument, "bool clause entries must be objects")
			}
			p, err := CompileQuery(m, obj)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	default:
		return nil, NewAPIError(ErrIllegalArgument, "bool clause must be an object or array")
	}
}

func compileBool(m *Mapping, raw interface{}) (predicate, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, NewAPIError(ErrIllegalArgument, "[bool] query requires an object")
	}
	must, err := compileClauseList(m, obj["must"])
	if err != nil {
		return nil, err
	}
	should, err := compileClauseList(m, obj["should"])
	if err != nil {
		return nil, err
	}
	mustNot, err := compileClauseList(m, obj["must_not"])
	if err != nil {
		return nil, err
	}
	filter, err := compileClauseList(m, obj["filter"])
	if err != nil {
		return nil, err
	}

	hasMust := len(must) > 0 || len(filter) > 0
	return func(doc *Document) bool {
		for _, p := range must {
			if !p(doc) {
				return false
			}
		}
		for _, p := range filter {
			if !p(doc) {
				return false
			}
		}
		for _, p := range mustNot {
			if p(doc) {
				return false
			}
		}
		if len(should) > 0 && !hasMust {
			matched := false
			for _, p := range should {
				if p(doc) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	}, nil
}

// sortField is one resolved entry of a compiled sort specification.
type sortField struct {
	path string
	desc bool
}

// compileSort resolves a decoded `sort` value (string, object, or array of
// either) into an ordered list of sortField entries.
func compileSort(m *Mapping, raw interface{}) ([]sortField, error) {
	if raw == nil {
		return nil, nil
	}
	switch t := raw.(type) {
	case string:
		return []sortField{resolveSortField(m, t, "asc")}, nil
	case map[string]interface{}:
		return sortFieldsFromObject(m, t)
	case []interface{}:
		var out []sortField
		for _, item := range t {
			switch e := item.(type) {
			case string:
				out = append(out, resolveSortField(m, e, "asc"))
			case map[string]interface{}:
				fs, err := sortFieldsFromObject(m, e)
				if err != nil {
					return nil, err
				}
				out = append(out, fs...)
			default:
				return nil, NewAPIError(ErrIllegalArgument, "sort entries must be a string or object")
			}
		}
		return out, nil
	default:
		return nil, NewAPIError(ErrIllegalArgument, "[sort] must be a string, object, or array")
	}
}

func sortFieldsFromObject(m *Mapping, obj map[string]interface{}) ([]sortField, error) {
	out := make([]sortField, 0, len(obj))
	for field, dir := range obj {
		order := "asc"
		switch d := dir.(type) {
		case string:
			order = d
		case map[string]interface{}:
			if o, ok := d["order"].(string); ok {
				order = o
			}
		}
		out = append(out, resolveSortField(m, field, order))
	}
	return out, nil
}

func resolveSortField(m *Mapping, field, order string) sortField {
	path := field
	if f, ok := m.Resolve(field); ok {
		path = f.Path
	}
	return sortField{path: path, desc: order == "desc"}
}

// sortValue returns the first typed value at path for doc, or a null Value
// if the field is missing, which sorts last regardless of direction.
func sortValue(doc *Document, path string) (Value, bool) {
	vals := doc.Typed[path]
	if len(vals) == 0 {
		return Value{}, false
	}
	return vals[0], true
}

func compareValues(a, b Value) int {
	switch a.Kind {
	case KindInteger:
		af := float64(a.Int)
		bf := b.Float
		if b.Kind == KindInteger {
			bf = float64(b.Int)
		}
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case KindFloat:
		bf := b.Float
		if b.Kind == KindInteger {
			bf = float64(b.Int)
		}
		switch {
		case a.Float < bf:
			return -1
		case a.Float > bf:
			return 1
		default:
			return 0
		}
	case KindDate:
		switch {
		case a.Millis < b.Millis:
			return -1
		case a.Millis > b.Millis:
			return 1
		default:
			return 0
		}
	case KindBoolean:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool {
			return -1
		}
		return 1
	default:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		default:
			return 0
		}
	}
}

// SortDocuments orders docs in place per the compiled sort fields, with a
// final _id-ascending tiebreak.
func SortDocuments(docs []*Document, fields []sortField) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			vi, oki := sortValue(docs[i], f.path)
			vj, okj := sortValue(docs[j], f.path)
			if !oki && !okj {
				continue
			}
			if !oki {
				return false // missing sorts last
			}
			if !okj {
				return true
			}
			c := compareValues(vi, vj)
			if c == 0 {
				continue
			}
			if f.desc {
				return c > 0
			}
			return c < 0
		}
		return docs[i].ID < docs[j].ID
	})
}

// Hit is a single rendered search result.
type Hit struct {
	ID     string
	Source map[string]interface{}
	Sort   []interface{}
}

// SearchResult is the engine-level outcome of a search, rendered into the
// `hits` envelope by the HTTP layer.
type SearchResult struct {
	Total int
	Hits  []Hit
	Aggs  map[string]*AggResult
}

// Search runs req against ix: compiles the query, applies it in a single
// linear pass, sorts, paginates, and evaluates any requested aggregations.
func Search(ix *Index, req *SearchRequest) (*SearchResult, error) {
	pred, err := CompileQuery(ix.Mapping, req.Query)
	if err != nil {
		return nil, err
	}
	sortFields, err := compileSort(ix.Mapping, req.Sort)
	if err != nil {
		return nil, err
	}

	all := ix.Documents()
	matched := make([]*Document, 0, len(all))
	for _, d := range all {
		if pred(d) {
			matched = append(matched, d)
		}
	}

	result := &SearchResult{Total: len(matched)}

	if req.Aggs != nil {
		aggs, err := EvaluateAggs(ix.Mapping, matched, req.Aggs)
		if err != nil {
			return nil, err
		}
		result.Aggs = aggs
	}

	SortDocuments(matched, append([]sortField(nil), sortFields...))

	from := req.From
	size := req.Size
	if from > len(matched) {
		from = len(matched)
	}
	end := from + size
	if end > len(matched) {
		end = len(matched)
	}
	if end < from {
		end = from
	}
	page := matched[from:end]

	hits := make([]Hit, 0, len(page))
	for _, d := range page {
		h := Hit{ID: d.ID, Source: d.Source}
		if len(sortFields) > 0 {
			vals := make([]interface{}, 0, len(sortFields))
			for _, f := range sortFields {
				if v, ok := sortValue(d, f.path); ok {
					vals = append(vals, v.Interface())
				} else {
					vals = append(vals, nil)
				}
			}
			h.Sort = vals
		}
		hits = append(hits, h)
	}
	result.Hits = hits
	return result, nil
}

// Count runs req's query against ix and reports only the matching count.
func Count(ix *Index, clause map[string]interface{}) (int, error) {
	pred, err := CompileQuery(ix.Mapping, clause)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range ix.Documents() {
		if pred(d) {
			n++
		}
	}
	return n, nil
}
