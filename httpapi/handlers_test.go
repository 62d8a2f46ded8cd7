// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	esfake "github.com/jozefcuryllo/es-fake"
	"github.com/jozefcuryllo/es-fake/internal/testutil"
	"go.uber.org/zap"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := NewAPI(esfake.NewEngine(), zap.NewNop(), "test-cluster-uuid")
	SetupRoutes(router, api, BasicAuth(""))
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIndexAndGetDocument(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodPut, "/widgets/_doc/1", `{"name":"Alpha"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(router, http.MethodGet, "/widgets/_doc/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["found"] != true {
		t.Errorf("expected found=true, got %+v", got)
	}
}

func TestGetMissingDocumentReturns404(t *testing.T) {
	router := newTestRouter()
	rec := doRequest(router, http.MethodGet, "/widgets/_doc/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestSearchAfterBulkIngest(t *testing.T) {
	router := newTestRouter()
	bulkBody := testutil.ReadFileBytes(t, "testdata/bulk_widgets.ndjson")
	rec := doRequest(router, http.MethodPost, "/widgets/_bulk", string(bulkBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(router, http.MethodPost, "/widgets/_search",
		`{"query":{"term":{"color.keyword":"red"}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.DebugLog(t, "search response: %s", testutil.ToJSON(got))
	hits := got["hits"].(map[string]interface{})
	total := hits["total"].(map[string]interface{})
	if total["value"].(float64) != 1 {
		t.Errorf("got total %v, want 1", total["value"])
	}
}

func TestCreateIndexThenDeleteIndex(t *testing.T) {
	router := newTestRouter()
	rec := doRequest(router, http.MethodPut, "/widgets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(router, http.MethodHead, "/widgets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 for existing index", rec.Code)
	}
	rec = doRequest(router, http.MethodDelete, "/widgets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(router, http.MethodHead, "/widgets", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404 after delete", rec.Code)
	}
}

func TestBasicAuthRejectsMissingCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := NewAPI(esfake.NewEngine(), zap.NewNop(), "test-cluster-uuid")
	SetupRoutes(router, api, BasicAuth("hunter2"))

	rec := doRequest(router, http.MethodGet, "/_cluster/health", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Errorf("expected a WWW-Authenticate header on a 401")
	}
}

func TestBasicAuthAcceptsValidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := NewAPI(esfake.NewEngine(), zap.NewNop(), "test-cluster-uuid")
	SetupRoutes(router, api, BasicAuth("hunter2"))

	req := httptest.NewRequest(http.MethodGet, "/_cluster/health", nil)
	req.SetBasicAuth("elastic", "hunter2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
}
