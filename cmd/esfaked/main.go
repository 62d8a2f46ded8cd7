// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	esfake "github.com/jozefcuryllo/es-fake"
	"github.com/jozefcuryllo/es-fake/httpapi"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	port     int
	logStyle string
	logLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "esfaked",
	Short:   "es-fake - an in-memory Elasticsearch-compatible search server",
	Long:    `es-fake serves the Elasticsearch 8.10 HTTP/JSON protocol for mapping inference, Query DSL search, sorting, pagination, terms aggregations, and bulk NDJSON ingestion, backed entirely by in-memory state.`,
	Version: version,
	RunE:    runServe,
}

func init() {
	rootCmd.Flags().IntVar(&port, "port", 9200, "TCP port to listen on")
	rootCmd.Flags().StringVar(&logStyle, "log-style", "terminal", "log encoder: terminal, json, logfmt, noop")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func runServe(cmd *cobra.Command, args []string) error {
	if v := os.Getenv("ESFAKE_LOG_STYLE"); v != "" {
		logStyle = v
	}
	if v := os.Getenv("ESFAKE_LOG_LEVEL"); v != "" {
		logLevel = v
	}

	logger, err := esfake.NewLogger(esfake.LogStyle(logStyle), logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	engine := esfake.NewEngine()
	clusterUUID := uuid.NewString()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	api := httpapi.NewAPI(engine, logger, clusterUUID)
	httpapi.SetupRoutes(router, api, httpapi.BasicAuth(os.Getenv("ELASTIC_PASSWORD")))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar().Infof("es-fake listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-sigCh:
		logger.Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
