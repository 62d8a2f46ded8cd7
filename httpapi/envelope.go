// SPDX-License-Identifier: Apache-2.0

// Package httpapi implements the thin HTTP/JSON transport layer over the
// core engine: route table, request decoding, response envelope rendering,
// and Basic-auth. It is deliberately thin — every operation it exposes is a
// direct call into esfake.Engine, per the transport's role as an external
// collaborator rather than where the domain logic lives.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	esfake "github.com/jozefcuryllo/es-fake"
	"github.com/jozefcuryllo/es-fake/jsonshim"
)

type shards struct {
	Total      int  `json:"total"`
	Successful int  `json:"successful"`
	Failed     int  `json:"failed"`
	Skipped    *int `json:"skipped,omitempty"`
}

func writeShards() shards { return shards{Total: 1, Successful: 1, Failed: 0} }

func searchShards() shards {
	skipped := 0
	return shards{Total: 1, Successful: 1, Skipped: &skipped, Failed: 0}
}

// renderJSON encodes body through the jsonshim (rather than gin's own
// encoding/json-backed renderer) and writes it directly, so the search,
// count, bulk, and write response bodies actually exercise the sonic-backed
// encode path the shim exists for.
func renderJSON(c *gin.Context, status int, body interface{}) {
	data, err := jsonshim.Marshal(body)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

// writeEnvelope renders the common write-response decorations described in
// §6: _index, _id, _version, _seq_no, _primary_term, _shards, result.
func writeEnvelope(c *gin.Context, status int, index string, r *esfake.IndexResult) {
	renderJSON(c, status, gin.H{
		"_index":        index,
		"_id":           r.ID,
		"_version":      r.Version,
		"_seq_no":       r.SeqNo,
		"_primary_term": 1,
		"result":        r.Result,
		"_shards":       writeShards(),
	})
}

// errorEnvelope renders the §6/§7 error envelope for err.
func errorEnvelope(c *gin.Context, err error) {
	ae := esfake.AsAPIError(err)
	body := gin.H{
		"error": gin.H{
			"type":   ae.ErrKind,
			"reason": ae.Reason,
			"root_cause": []gin.H{
				{"type": ae.ErrKind, "reason": ae.Reason},
			},
		},
		"status": ae.Status(),
	}
	if ae.Index != "" {
		body["error"].(gin.H)["index"] = ae.Index
	}
	renderJSON(c, ae.Status(), body)
}
