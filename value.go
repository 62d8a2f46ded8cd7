// SPDX-License-Identifier: Apache-2.0

package esfake

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Kind is the closed set of field kinds a Mapping can declare.
type Kind string

const (
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindBoolean Kind = "boolean"
	KindKeyword Kind = "keyword"
	KindText    Kind = "text"
	KindDate    Kind = "date"
)

// Valid reports whether k is one of the closed set of declarable kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindInteger, KindFloat, KindBoolean, KindKeyword, KindText, KindDate:
		return true
	}
	return false
}

// Value is a normalized, typed document field value. Exactly one of the
// payload fields is meaningful, selected by Kind; Null overrides all of them.
type Value struct {
	Kind   Kind
	Null   bool
	Int    int64
	Float  float64
	Bool   bool
	Str    string
	Millis int64 // epoch-millis, used when Kind == KindDate
}

// NullValue returns the normalized representation of a JSON null for kind k.
func NullValue(k Kind) Value {
	return Value{Kind: k, Null: true}
}

// Equal reports whether two values represent the same logical value for
// term-query purposes: byte-identical for keyword/text, numeric equality
// otherwise. Integer and float values compare numerically with each other;
// for every other kind only the payload selected by v's Kind is compared, and
// other's Kind is not checked.
func (v Value) Equal(other Value) bool {
	if v.Null || other.Null {
		return v.Null == other.Null
	}
	switch v.Kind {
	case KindKeyword, KindText:
		return v.Str == other.Str
	case KindBoolean:
		return v.Bool == other.Bool
	case KindDate:
		return v.Millis == other.Millis
	case KindInteger:
		if other.Kind == KindFloat {
			return float64(v.Int) == other.Float
		}
		return v.Int == other.Int
	case KindFloat:
		if other.Kind == KindInteger {
			return v.Float == float64(other.Int)
		}
		return v.Float == other.Float
	default:
		return false
	}
}

// Interface renders the value back into a plain Go value suitable for
// re-marshaling into a JSON response (used by sort-value echoing).
func (v Value) Interface() interface{} {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case KindKeyword, KindText:
		return v.Str
	case KindBoolean:
		return v.Bool
	case KindInteger:
		return v.Int
	case KindFloat:
		return v.Float
	case KindDate:
		return v.Millis
	default:
		return nil
	}
}

// CoerceScalar converts a single decoded JSON value (as produced by
// encoding/json's `any` unmarshal target: nil, bool, float64, string) into a
// Value of kind k; json.Number and objects are rejected as unsupported.
// It never receives arrays; CoerceField unwraps those before calling in.
func CoerceScalar(k Kind, raw interface{}) (Value, error) {
	if raw == nil {
		return NullValue(k), nil
	}
	switch k {
	case KindInteger:
		return coerceInteger(raw)
	case KindFloat:
		return coerceFloat(raw)
	case KindBoolean:
		return coerceBoolean(raw)
	case KindKeyword, KindText:
		return coerceString(k, raw)
	case KindDate:
		return coerceDate(raw)
	default:
		return Value{}, errors.Errorf("esfake: unknown field kind %q", k)
	}
}

func coerceInteger(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case float64:
		if t != float64(int64(t)) {
			return Value{}, errors.Errorf("failed to parse field of type [integer]: value has a non-zero fractional part")
		}
		return Value{Kind: KindInteger, Int: int64(t)}, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, "failed to parse field of type [integer] from string %q", t)
		}
		return Value{Kind: KindInteger, Int: n}, nil
	default:
		return Value{}, errors.Errorf("failed to parse field of type [integer]: unsupported JSON value %T", raw)
	}
}

func coerceFloat(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case float64:
		return Value{Kind: KindFloat, Float: t}, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, "failed to parse field of type [float] from string %q", t)
		}
		return Value{Kind: KindFloat, Float: f}, nil
	default:
		return Value{}, errors.Errorf("failed to parse field of type [float]: unsupported JSON value %T", raw)
	}
}

func coerceBoolean(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case bool:
		return Value{Kind: KindBoolean, Bool: t}, nil
	case string:
		switch t {
		case "true":
			return Value{Kind: KindBoolean, Bool: true}, nil
		case "false":
			return Value{Kind: KindBoolean, Bool: false}, nil
		default:
			return Value{}, errors.Errorf("failed to parse field of type [boolean]: %q is not [true] or [false]", t)
		}
	default:
		return Value{}, errors.Errorf("failed to parse field of type [boolean]: unsupported JSON value %T", raw)
	}
}

func coerceString(k Kind, raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case string:
		return Value{Kind: k, Str: t}, nil
	case float64:
		return Value{Kind: k, Str: formatFloat(t)}, nil
	case bool:
		return Value{Kind: k, Str: strconv.FormatBool(t)}, nil
	default:
		return Value{}, errors.Errorf("failed to parse field of type [%s]: unsupported JSON value %T", k, raw)
	}
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func coerceDate(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case float64:
		return Value{Kind: KindDate, Millis: int64(t)}, nil
	case string:
		millis, err := parseDateString(t)
		if err != nil {
			return Value{}, errors.Wrapf(err, "failed to parse field of type [date]")
		}
		return Value{Kind: KindDate, Millis: millis}, nil
	default:
		return Value{}, errors.Errorf("failed to parse field of type [date]: unsupported JSON value %T", raw)
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDateString(s string) (int64, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("value %q does not match any supported date format", s)
}

// CoerceField coerces a raw decoded JSON field value (which may be a bare
// scalar, a JSON array, or null) into the slice-of-Value representation used
// by the typed projection. A single scalar yields a one-element slice.
func CoerceField(k Kind, raw interface{}) ([]Value, error) {
	if raw == nil {
		return []Value{NullValue(k)}, nil
	}
	arr, ok := raw.([]interface{})
	if !ok {
		v, err := CoerceScalar(k, raw)
		if err != nil {
			return nil, err
		}
		return []Value{v}, nil
	}
	out := make([]Value, 0, len(arr))
	for _, elem := range arr {
		v, err := CoerceScalar(k, elem)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// InferKind inspects a raw decoded JSON value (as seen on first write to an
// unmapped path in dynamic mode) and reports the Kind that Elasticsearch's
// dynamic mapping would assign, and whether one could be assigned. An array is
// classified by its first element that can be classified (InferKind itself
// never recurses into objects; callers walk those).
func InferKind(raw interface{}) (Kind, bool) {
	switch t := raw.(type) {
	case nil:
		return "", false
	case bool:
		return KindBoolean, true
	case string:
		return KindText, true
	case float64:
		if t == float64(int64(t)) {
			return KindInteger, true
		}
		return KindFloat, true
	case []interface{}:
		for _, elem := range t {
			if k, ok := InferKind(elem); ok {
				return k, true
			}
		}
		return "", false
	default:
		return "", false
	}
}
