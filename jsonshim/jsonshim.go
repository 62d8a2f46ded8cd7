// SPDX-License-Identifier: Apache-2.0

// Package jsonshim provides a configurable JSON encoding/decoding layer so
// the hottest JSON paths in the system (bulk NDJSON ingestion, search
// responses) can be backed by a faster implementation than encoding/json
// without threading that choice through every call site. It defaults to
// github.com/bytedance/sonic.
package jsonshim

import (
	"io"

	"github.com/bytedance/sonic"
)

// Encoder is the interface for streaming JSON encoding. Both encoding/json
// and sonic's encoder satisfy this interface.
type Encoder interface {
	Encode(v any) error
}

// Decoder is the interface for streaming JSON decoding.
type Decoder interface {
	Decode(v any) error
}

// Config holds the pluggable JSON encoding/decoding functions.
type Config struct {
	Marshal    func(v any) ([]byte, error)
	Unmarshal  func(data []byte, v any) error
	NewEncoder func(w io.Writer) Encoder
	NewDecoder func(r io.Reader) Decoder
}

// DefaultConfig returns the sonic-backed configuration used unless SetConfig
// is called to override it.
func DefaultConfig() Config {
	api := sonic.ConfigStd
	return Config{
		Marshal:   api.Marshal,
		Unmarshal: api.Unmarshal,
		NewEncoder: func(w io.Writer) Encoder {
			return api.NewEncoder(w)
		},
		NewDecoder: func(r io.Reader) Decoder {
			return api.NewDecoder(r)
		},
	}
}

var config = DefaultConfig()

// SetConfig overrides the global JSON configuration, e.g. to fall back to
// encoding/json in an environment where sonic's runtime code generation is
// unavailable.
func SetConfig(c Config) {
	config = c
}

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return config.Marshal(v)
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return config.Unmarshal(data, v)
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) Encoder {
	return config.NewEncoder(w)
}

// NewDecoder returns a new Decoder that reads from r.
func NewDecoder(r io.Reader) Decoder {
	return config.NewDecoder(r)
}
