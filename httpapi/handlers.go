// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	esfake "github.com/jozefcuryllo/es-fake"
	"github.com/jozefcuryllo/es-fake/jsonshim"
	"go.uber.org/zap"
)

const serverVersion = esfake.APIVersion

// RootHandler implements GET /.
func (api *API) RootHandler(c *gin.Context) {
	renderJSON(c, http.StatusOK, gin.H{
		"name":         "es-fake",
		"cluster_name": "es-fake",
		"cluster_uuid": api.clusterUUID,
		"version": gin.H{
			"number":        serverVersion,
			"build_flavor":  "default",
			"lucene_version": "9.7.0",
		},
		"tagline": "You Know, for Search",
	})
}

// ClusterHealthHandler implements GET /_cluster/health.
func (api *API) ClusterHealthHandler(c *gin.Context) {
	renderJSON(c, http.StatusOK, gin.H{
		"cluster_name":                  "es-fake",
		"status":                        "green",
		"timed_out":                     false,
		"number_of_nodes":               1,
		"number_of_data_nodes":          1,
		"active_primary_shards":         len(api.engine.Registry.Names()),
		"active_shards":                 len(api.engine.Registry.Names()),
		"relocating_shards":             0,
		"initializing_shards":           0,
		"unassigned_shards":             0,
		"active_shards_percent_as_number": 100.0,
	})
}

type createIndexRequest struct {
	Mappings *struct {
		Dynamic    *bool                  `json:"dynamic"`
		Properties map[string]interface{} `json:"properties"`
	} `json:"mappings"`
}

// CreateIndexHandler implements PUT /{index}.
func (api *API) CreateIndexHandler(c *gin.Context) {
	index := c.Param("index")
	var req createIndexRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorEnvelope(c, esfake.NewAPIError(esfake.ErrXContentParseException, "failed to parse request body: %s", err))
			return
		}
	}
	var properties map[string]interface{}
	var dynamic *bool
	if req.Mappings != nil {
		properties = req.Mappings.Properties
		dynamic = req.Mappings.Dynamic
	}
	if _, err := api.engine.CreateIndex(index, properties, dynamic); err != nil {
		errorEnvelope(c, err)
		return
	}
	api.log.Info("created index", zap.String("index", index))
	renderJSON(c, http.StatusOK, gin.H{"acknowledged": true, "shards_acknowledged": true, "index": index})
}

// IndexExistsHandler implements HEAD /{index}.
func (api *API) IndexExistsHandler(c *gin.Context) {
	if api.engine.IndexExists(c.Param("index")) {
		c.Status(http.StatusOK)
		return
	}
	c.Status(http.StatusNotFound)
}

// DeleteIndexHandler implements DELETE /{index}.
func (api *API) DeleteIndexHandler(c *gin.Context) {
	index := c.Param("index")
	if err := api.engine.DeleteIndex(index); err != nil {
		errorEnvelope(c, err)
		return
	}
	renderJSON(c, http.StatusOK, gin.H{"acknowledged": true})
}

type putMappingRequest struct {
	Properties map[string]interface{} `json:"properties"`
}

// PutMappingHandler implements PUT /{index}/_mapping.
func (api *API) PutMappingHandler(c *gin.Context) {
	index := c.Param("index")
	var req putMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorEnvelope(c, esfake.NewAPIError(esfake.ErrXContentParseException, "failed to parse request body: %s", err))
		return
	}
	if err := api.engine.PutMapping(index, req.Properties); err != nil {
		errorEnvelope(c, err)
		return
	}
	renderJSON(c, http.StatusOK, gin.H{"acknowledged": true})
}

// RefreshHandler implements POST /{index}/_refresh. The in-memory engine has
// no write buffer to flush, so this is a no-op that still returns the
// _shards decoration real clients expect.
func (api *API) RefreshHandler(c *gin.Context) {
	if !api.engine.IndexExists(c.Param("index")) {
		errorEnvelope(c, esfake.NewAPIError(esfake.ErrIndexNotFound, "no such index [%s]", c.Param("index")).WithIndex(c.Param("index")))
		return
	}
	renderJSON(c, http.StatusOK, gin.H{"_shards": writeShards()})
}

func bindDocumentBody(c *gin.Context) (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, esfake.NewAPIError(esfake.ErrXContentParseException, "failed to parse request body: %s", err)
	}
	return body, nil
}

// IndexDocumentHandler implements POST /{index}/_doc (auto id).
func (api *API) IndexDocumentHandler(c *gin.Context) {
	index := c.Param("index")
	body, err := bindDocumentBody(c)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	r, err := api.engine.IndexDocument(index, "", body)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	status := http.StatusCreated
	writeEnvelope(c, status, index, r)
}

// IndexDocumentWithIDHandler implements PUT /{index}/_doc/{id}.
func (api *API) IndexDocumentWithIDHandler(c *gin.Context) {
	index := c.Param("index")
	id := c.Param("id")
	body, err := bindDocumentBody(c)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	r, err := api.engine.IndexDocument(index, id, body)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	status := http.StatusOK
	if r.Result == "created" {
		status = http.StatusCreated
	}
	writeEnvelope(c, status, index, r)
}

// UpdateDocumentHandler implements POST /{index}/_update/{id}.
func (api *API) UpdateDocumentHandler(c *gin.Context) {
	index := c.Param("index")
	id := c.Param("id")
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorEnvelope(c, esfake.NewAPIError(esfake.ErrXContentParseException, "failed to parse request body: %s", err))
		return
	}
	r, err := api.engine.UpdateDocument(index, id, req)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	writeEnvelope(c, http.StatusOK, index, r)
}

// GetDocumentHandler implements GET /{index}/_doc/{id}.
func (api *API) GetDocumentHandler(c *gin.Context) {
	index := c.Param("index")
	id := c.Param("id")
	res, err := api.engine.GetDocument(index, id)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	if !res.Found {
		renderJSON(c, http.StatusNotFound, gin.H{"_index": index, "_id": id, "found": false})
		return
	}
	renderJSON(c, http.StatusOK, gin.H{
		"_index":   index,
		"_id":      id,
		"_version": res.Version,
		"found":    true,
		"_source":  res.Source,
	})
}

// DeleteDocumentHandler implements DELETE /{index}/_doc/{id}.
func (api *API) DeleteDocumentHandler(c *gin.Context) {
	index := c.Param("index")
	id := c.Param("id")
	r, err := api.engine.DeleteDocument(index, id)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	status := http.StatusOK
	if r.Result == "not_found" {
		status = http.StatusNotFound
	}
	writeEnvelope(c, status, index, r)
}

func bindSearchBody(c *gin.Context) (map[string]interface{}, error) {
	if c.Request.ContentLength == 0 {
		return nil, nil
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, esfake.NewAPIError(esfake.ErrXContentParseException, "failed to read request body: %s", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var body map[string]interface{}
	if err := jsonshim.Unmarshal(raw, &body); err != nil {
		return nil, esfake.NewAPIError(esfake.ErrXContentParseException, "failed to parse request body: %s", err)
	}
	return body, nil
}

// SearchHandler implements POST/GET /{index}/_search.
func (api *API) SearchHandler(c *gin.Context) {
	index := c.Param("index")
	raw, err := bindSearchBody(c)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	req, err := esfake.ParseSearchRequest(raw)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	result, err := api.engine.Search(index, req)
	if err != nil {
		errorEnvelope(c, err)
		return
	}

	hits := make([]gin.H, 0, len(result.Hits))
	for _, h := range result.Hits {
		hit := gin.H{
			"_index":  index,
			"_id":     h.ID,
			"_score":  1.0,
			"_source": h.Source,
		}
		if h.Sort != nil {
			hit["sort"] = h.Sort
		}
		hits = append(hits, hit)
	}
	maxScore := interface{}(nil)
	if len(hits) > 0 {
		maxScore = 1.0
	}

	body := gin.H{
		"took":      0,
		"timed_out": false,
		"_shards":   searchShards(),
		"hits": gin.H{
			"total":     gin.H{"value": result.Total, "relation": "eq"},
			"max_score": maxScore,
			"hits":      hits,
		},
	}
	if result.Aggs != nil {
		aggs := gin.H{}
		for name, agg := range result.Aggs {
			buckets := make([]gin.H, 0, len(agg.Buckets))
			for _, b := range agg.Buckets {
				buckets = append(buckets, gin.H{"key": b.Key, "doc_count": b.DocCount})
			}
			aggs[name] = gin.H{
				"doc_count_error_upper_bound": agg.DocCountErrorUpperBnd,
				"sum_other_doc_count":         agg.SumOtherDocCount,
				"buckets":                     buckets,
			}
		}
		body["aggregations"] = aggs
	}
	renderJSON(c, http.StatusOK, body)
}

// CountHandler implements POST/GET /{index}/_count.
func (api *API) CountHandler(c *gin.Context) {
	index := c.Param("index")
	raw, err := bindSearchBody(c)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	var clause map[string]interface{}
	if raw != nil {
		if q, ok := raw["query"].(map[string]interface{}); ok {
			clause = q
		}
	}
	n, err := api.engine.Count(index, clause)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	renderJSON(c, http.StatusOK, gin.H{"count": n, "_shards": searchShards()})
}

// BulkHandler implements POST /_bulk and POST /{index}/_bulk.
func (api *API) BulkHandler(c *gin.Context) {
	defaultIndex := c.Param("index")
	result, err := api.engine.Bulk(defaultIndex, c.Request.Body)
	if err != nil {
		errorEnvelope(c, err)
		return
	}
	items := make([]gin.H, 0, len(result.Items))
	for _, item := range result.Items {
		entry := gin.H{
			"_index":   item.Index,
			"_id":      item.ID,
			"status":   item.Status,
			"_version": item.Version,
			"_seq_no":  item.SeqNo,
			"result":   item.Result,
		}
		if item.Err != nil {
			entry["error"] = gin.H{"type": item.Err.ErrKind, "reason": item.Err.Reason}
		}
		items = append(items, gin.H{item.Action: entry})
	}
	api.log.Info("processed bulk request", zap.Int("items", len(items)), zap.Bool("errors", result.Errors))
	renderJSON(c, http.StatusOK, gin.H{
		"took":   result.TookMS,
		"errors": result.Errors,
		"items":  items,
	})
}
