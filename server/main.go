// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the media verification backend server.
//
// This application sets up and runs a web server using the Gin framework. It
// provides a REST API that accepts a video upload and returns two independent
// verdicts about it: whether the depicted face content appears synthetically
// manipulated, and whether the spoken narrative is corroborated by independent
// news sources. The server is instrumented with OpenTelemetry for logging,
// tracing, and metrics.
//
// The main function initializes the application's configuration, sets up
// logging and telemetry, binds the inference capabilities, and defines the
// API routes for video analysis.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server,
//     configures routes, initializes services, and handles graceful shutdown.
//   - AnalysisRouter: Sets up the API route that accepts a video upload and
//     runs both detection pipelines on it.
//   - Dashboard: Placeholder route group for future statistics endpoints.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-media-verify/internal/telemetry"
)

// acceptedVideoExtensions lists the upload extensions the analysis endpoint
// accepts. Anything else is rejected before it touches the pipelines.
var acceptedVideoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mkv": true,
	".mov": true,
	".flv": true,
}

// main is the primary entry point for the application. It orchestrates the
// setup of logging, telemetry, configuration, inference clients, the web
// server, and API routes, and handles graceful shutdown on interrupt.
func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()

	// Trace every incoming request.
	r.Use(otelgin.Middleware("media-verify-server"))

	// cors.Default() is permissive, which is fine for development deployments.
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		AnalysisRouter(apiV1)
		Dashboard(apiV1)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
		// Analysis runs inline with the request; both pipelines make several
		// remote inference calls, so the write timeout is generous.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// AnalysisRouter sets up the API route for video analysis.
//
// It defines POST /analysis, which accepts a multipart/form-data upload with a
// single "file" field holding the video. The file is staged to a uniquely
// named temp path, both detection pipelines run against it, and the combined
// result is returned as JSON. The staged file is always removed afterwards.
func AnalysisRouter(r *gin.RouterGroup) {
	analysis := r.Group("/analysis")
	{
		analysis.POST("", func(c *gin.Context) {
			file, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'file' form field: " + err.Error()})
				return
			}

			ext := strings.ToLower(filepath.Ext(file.Filename))
			if !acceptedVideoExtensions[ext] {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported video extension: " + ext})
				return
			}

			// Stage under a generated name so concurrent uploads of the same
			// filename never collide.
			localPath := filepath.Join(os.TempDir(), uuid.New().String()+ext)
			if err := c.SaveUploadedFile(file, localPath); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to stage upload: " + err.Error()})
				return
			}
			defer func() {
				if err := os.Remove(localPath); err != nil {
					log.Printf("failed to remove staged upload %s: %v\n", localPath, err)
				}
			}()

			result := state.analysisService.Analyze(c.Request.Context(), localPath)
			c.JSON(http.StatusOK, result)
		})
	}
}

// Dashboard configures the API routes for a future statistics or dashboard
// feature. The /stats endpoint is a placeholder that returns 200 with an
// empty body.
func Dashboard(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			// Placeholder for future pipeline statistics.
		})
	}
}
