// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"github.com/gin-gonic/gin"
	esfake "github.com/jozefcuryllo/es-fake"
	"go.uber.org/zap"
)

// API holds the dependencies every handler needs: the engine and a logger.
// Grounded on the retrieval pack's API{engine} pattern for wiring a search
// engine into a gin router.
type API struct {
	engine       *esfake.Engine
	log          *zap.Logger
	clusterUUID  string
}

// NewAPI creates an API bound to engine, logging at log (falling back to a
// no-op logger if log is nil).
func NewAPI(engine *esfake.Engine, log *zap.Logger, clusterUUID string) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{engine: engine, log: log, clusterUUID: clusterUUID}
}

// SetupRoutes registers every route in the §6 route table on router,
// guarded by authMiddleware.
func SetupRoutes(router *gin.Engine, api *API, authMiddleware gin.HandlerFunc) {
	router.Use(authMiddleware)

	router.GET("/", api.RootHandler)
	router.GET("/_cluster/health", api.ClusterHealthHandler)

	router.PUT("/:index", api.CreateIndexHandler)
	router.HEAD("/:index", api.IndexExistsHandler)
	router.DELETE("/:index", api.DeleteIndexHandler)
	router.PUT("/:index/_mapping", api.PutMappingHandler)
	router.POST("/:index/_refresh", api.RefreshHandler)

	router.POST("/:index/_doc", api.IndexDocumentHandler)
	router.PUT("/:index/_doc/:id", api.IndexDocumentWithIDHandler)
	router.POST("/:index/_update/:id", api.UpdateDocumentHandler)
	router.GET("/:index/_doc/:id", api.GetDocumentHandler)
	router.DELETE("/:index/_doc/:id", api.DeleteDocumentHandler)

	router.POST("/:index/_search", api.SearchHandler)
	router.GET("/:index/_search", api.SearchHandler)
	router.POST("/:index/_count", api.CountHandler)
	router.GET("/:index/_count", api.CountHandler)

	router.POST("/_bulk", api.BulkHandler)
	router.POST("/:index/_bulk", api.BulkHandler)
}
