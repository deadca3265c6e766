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
// Package main is the entry point for the whisky review discovery backend server.
//
// This application sets up and runs a web server using the Gin framework. It
// provides a REST API for searching whisky reviews, browsing products, and
// generating blog articles. The server is instrumented with OpenTelemetry for
// logging, tracing, and metrics.
//
// The main function initializes the configuration, logging and telemetry, and
// the application state, including clients for Google Cloud services. It also
// starts the background Pub/Sub listener that pre-warms searches on operator
// request.
//
// Functions:
//   - main: Sets up the server, configures routes, initializes services, and
//     handles graceful shutdown.
//   - SearchRouter: The search endpoint backed by the search orchestrator.
//   - ReviewRouter: Review listing, blog generation, and transcript URLs.
//   - ProductRouter: Product browsing with facet filters.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"google.golang.org/api/iterator"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/telemetry"
)

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware("dram-reviews-server"))
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		SearchRouter(apiV1)
		ReviewRouter(apiV1)
		ProductRouter(apiV1)
	}

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
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
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown incomplete", "error", err)
	}

	log.Println("Server exiting")
}

// SearchRouter sets up the search endpoint.
//
// This function defines the following endpoints:
//   - GET /search?q=<query>: Runs the full search orchestration (cache, store,
//     backfill) and returns the unified result payload.
//   - GET /search/recent: Lists recently discovered product names for the
//     landing page.
func SearchRouter(r *gin.RouterGroup) {
	search := r.Group("/search")
	{
		// Handler for GET /search?q=<query>
		search.GET("", func(c *gin.Context) {
			query := c.Query("q")
			// Short and empty queries are resolved by the orchestrator itself:
			// they produce a well-formed empty result, never an error.
			result, err := state.searchService.Search(c, query)
			if err != nil {
				log.Printf("Error searching for %q: %v\n", query, err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		// Handler for GET /search/recent
		search.GET("/recent", func(c *gin.Context) {
			names, err := state.productService.RecentNames(c, state.config.Search.RecentSearches)
			if err != nil {
				log.Printf("Error listing recent searches: %v\n", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"searches": names})
		})
	}
}

// ReviewRouter sets up the API routes for persisted reviews.
//
// This function defines the following endpoints:
//   - GET /reviews?count=<n>: Lists the most recently updated reviews.
//   - GET /reviews/:id: Retrieves one review by its video id.
//   - GET /reviews/:id/blog: Returns the blog article for a review, generating
//     and persisting it on first request.
//   - GET /reviews/:id/transcript: Returns a time-limited signed URL for the
//     archived raw transcript.
func ReviewRouter(r *gin.RouterGroup) {
	reviews := r.Group("/reviews")
	{
		// Handler for GET /reviews?count=<n>
		reviews.GET("", func(c *gin.Context) {
			count, err := strconv.Atoi(c.DefaultQuery("count", "20"))
			if err != nil {
				count = 20
			}
			results, total, err := state.reviewService.Recent(c, count)
			if err != nil {
				log.Printf("Error listing reviews: %v\n", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"reviews": results, "totalCount": total})
		})

		// Handler for GET /reviews/:id
		reviews.GET("/:id", func(c *gin.Context) {
			id := c.Param("id")
			out, err := state.reviewService.Get(c, id)
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /reviews/:id/blog
		reviews.GET("/:id/blog", func(c *gin.Context) {
			id := c.Param("id")
			blog, err := state.blogService.GetBlog(c, id)
			if err != nil {
				log.Printf("Error generating blog for %s: %v\n", id, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate blog"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"videoId": id, "blog": blog})
		})

		// Handler for GET /reviews/:id/transcript
		// The raw transcript is archived in GCS; clients get a 15-minute
		// signed URL rather than the bytes.
		reviews.GET("/:id/transcript", func(c *gin.Context) {
			id := c.Param("id")
			if _, err := state.reviewService.Get(c, id); err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			signedURL, err := cloud.SignObjectURL(
				c,
				state.cloud.StorageClient,
				state.cloud.IAMClient,
				state.config.Application.SignerServiceAccountEmail,
				state.config.Storage.TranscriptBucket,
				id+".txt")
			if err != nil {
				log.Printf("Error signing transcript URL for %s: %v", id, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate transcript URL"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}
}

// ProductRouter sets up the API routes for product browsing.
//
// This function defines the following endpoints:
//   - GET /products?tasteNotes=a,b&casks=c&tags=d: Lists product summaries,
//     optionally filtered by facet values. All provided facets must match.
//   - GET /products/:name: Retrieves one product summary by canonical name.
//   - GET /products/:name/reviews: Lists the reviews behind a product.
func ProductRouter(r *gin.RouterGroup) {
	products := r.Group("/products")
	{
		// Handler for GET /products?tasteNotes=...&casks=...&tags=...
		products.GET("", func(c *gin.Context) {
			filters := make(map[string][]string)
			for _, facet := range []string{"tasteNotes", "casks", "tags"} {
				if raw := c.Query(facet); raw != "" {
					filters[facet] = strings.Split(raw, ",")
				}
			}
			results, total, err := state.productService.List(c, filters)
			if err != nil {
				log.Printf("Error listing products: %v\n", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"products": results, "totalCount": total})
		})

		// Handler for GET /products/:name
		products.GET("/:name", func(c *gin.Context) {
			name := c.Param("name")
			out, err := state.productService.Get(c, name)
			if err != nil {
				if errors.Is(err, iterator.Done) {
					c.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error getting product %s: %v\n", name, err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /products/:name/reviews
		products.GET("/:name/reviews", func(c *gin.Context) {
			name := c.Param("name")
			out, err := state.reviewService.FindByQuery(c, strings.ToLower(strings.TrimSpace(name)))
			if err != nil {
				log.Printf("Error getting reviews for product %s: %v\n", name, err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"reviews": out, "totalCount": len(out)})
		})
	}
}
