// SPDX-License-Identifier: Apache-2.0

package esfake

import "sort"

// AggBucket is a single terms-aggregation bucket.
type AggBucket struct {
	Key      interface{}
	DocCount int
}

// AggResult is the evaluated outcome of one named aggregation.
type AggResult struct {
	Buckets               []AggBucket
	DocCountErrorUpperBnd int
	SumOtherDocCount      int
}

const defaultTermsSize = 10

// EvaluateAggs evaluates every named `terms` aggregation in aggs against
// docs (the set of documents already matching the query, per §4.5). Only
// bucket `terms` aggregations at the top level are supported; any other
// aggregation type is reported back with empty buckets rather than erroring,
// since nested sub-aggregations are explicitly not required.
func EvaluateAggs(m *Mapping, docs []*Document, aggs map[string]interface{}) (map[string]*AggResult, error) {
	out := make(map[string]*AggResult, len(aggs))
	for name, raw := range aggs {
		spec, ok := raw.(map[string]interface{})
		if !ok {
			return nil, NewAPIError(ErrIllegalArgument, "aggregation [%s] must be an object", name)
		}
		termsSpec, ok := spec["terms"].(map[string]interface{})
		if !ok {
			out[name] = &AggResult{}
			continue
		}
		result, err := evaluateTerms(m, docs, termsSpec)
		if err != nil {
			return nil, err
		}
		out[name] = result
	}
	return out, nil
}

func evaluateTerms(m *Mapping, docs []*Document, spec map[string]interface{}) (*AggResult, error) {
	field, ok := spec["field"].(string)
	if !ok {
		return nil, NewAPIError(ErrIllegalArgument, "[terms] aggregation requires a [field]")
	}
	size := defaultTermsSize
	if raw, ok := spec["size"]; ok {
		n, err := asNonNegativeInt(raw)
		if err != nil {
			return nil, NewAPIError(ErrIllegalArgument, "[terms.size] %s", err)
		}
		if n > 0 {
			size = n
		}
	}

	f, ok := m.Resolve(field)
	if !ok {
		return &AggResult{}, nil
	}

	type bucket struct {
		key      interface{}
		sortKey  string
		docCount int
	}
	order := make([]string, 0)
	buckets := make(map[string]*bucket)

	for _, d := range docs {
		vals := d.Typed[f.Path]
		if len(vals) == 0 {
			continue
		}
		for _, v := range vals {
			if v.Null {
				continue
			}
			k := bucketKey(v)
			b, ok := buckets[k]
			if !ok {
				b = &bucket{key: v.Interface(), sortKey: k}
				buckets[k] = b
				order = append(order, k)
			}
			b.docCount++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		bi, bj := buckets[order[i]], buckets[order[j]]
		if bi.docCount != bj.docCount {
			return bi.docCount > bj.docCount
		}
		return bi.sortKey < bj.sortKey
	})

	total := len(order)
	if size < total {
		order = order[:size]
	}

	result := &AggResult{DocCountErrorUpperBnd: 0}
	for _, k := range order {
		b := buckets[k]
		result.Buckets = append(result.Buckets, AggBucket{Key: b.key, DocCount: b.docCount})
	}
	remaining := total - len(result.Buckets)
	if remaining < 0 {
		remaining = 0
	}
	result.SumOtherDocCount = remaining
	return result, nil
}

// bucketKey renders a Value into a comparable string key for bucket grouping
// and lexicographic tie-breaking, independent of its rendered JSON form.
func bucketKey(v Value) string {
	switch v.Kind {
	case KindKeyword, KindText:
		return v.Str
	case KindInteger:
		return formatFloat(float64(v.Int))
	case KindFloat:
		return formatFloat(v.Float)
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindDate:
		return formatFloat(float64(v.Millis))
	default:
		return ""
	}
}
