// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements the
// search backfill workflow: the pipeline that turns a whisky search query into
// persisted, analyzed review records.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/commands"
	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/services"
)

// BackfillWorkflow orchestrates the full discovery pipeline for one search
// query. It is structured as a Chain of Responsibility (cor.Chain) executing:
// query extraction, candidate video search, parallel transcript collection
// with relevance screening, parallel model analysis, product summarization,
// persistence, and best-effort archival.
//
// The same chain serves two entry points: the search orchestrator calls Run
// when the store holds too few reviews for a query, and the Pub/Sub listener
// executes the workflow directly for operator pre-warm triggers.
type BackfillWorkflow struct {
	cor.BaseCommand
	config             *cloud.Config
	reviewService      *services.ReviewService
	productService     *services.ProductService
	searchClient       *cloud.YouTubeSearchClient
	transcriptClient   *cloud.YouTubeTranscriptClient
	analyzerModel      *cloud.QuotaAwareGenerativeAIModel
	summarizerModel    *cloud.QuotaAwareGenerativeAIModel
	storageClient      *storage.Client
	numberOfWorkers    int
	analyzerTemplate   *template.Template
	summarizerTemplate *template.Template
	chain              cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the entire backfill workflow by invoking the underlying chain.
func (w *BackfillWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run implements the orchestrator-facing entry point. It executes the chain
// for a single query and folds any chain errors into one returned error.
//
// Inputs:
//   - ctx: The standard Go context for cancellation and tracing.
//   - query: The search query; normalization happens inside the chain so both
//     entry points share it.
//
// Outputs:
//   - error: nil when the chain completed (including the legitimate
//     zero-survivors outcome); otherwise the combined chain errors. A
//     fruitless provider search wraps model.ErrNoCandidates so callers can
//     tell "nothing to find" from infrastructure failure.
func (w *BackfillWorkflow) Run(ctx context.Context, query string) error {
	runId := uuid.NewString()
	slog.Info("backfill started", "run_id", runId, "query", query)

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, query)

	w.Execute(chainCtx)
	slog.Info("backfill finished", "run_id", runId, "query", query, "errors", len(chainCtx.GetErrors()))

	if !chainCtx.HasErrors() {
		return nil
	}
	errs := make([]error, 0, len(chainCtx.GetErrors()))
	for name, err := range chainCtx.GetErrors() {
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return errors.Join(errs...)
}

// initializeChain builds the sequence of commands that make up this workflow.
// Each command is an atomic unit of work whose output feeds the next through
// the chain context. This method is called by the constructor.
func (w *BackfillWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Extract and normalize the search query. The input is either a
	// Pub/Sub trigger payload or the bare query string from Run; both land in
	// the same context parameter.
	out.AddCommand(commands.NewSearchTriggerToQuery("search-trigger-to-query"))

	// Step 2: Resolve the query to candidate review videos. The client
	// over-fetches and truncates internally; zero candidates is fatal here.
	out.AddCommand(commands.NewVideoSearch(
		"video-search",
		w.searchClient,
		w.config.Search.MaxResults))

	// Step 3: Fetch transcripts in parallel, degrade unavailable ones to
	// title+description text, and screen out obvious non-reviews before any
	// model tokens are spent.
	out.AddCommand(commands.NewTranscriptCollector(
		"collect-transcripts",
		w.transcriptClient,
		w.numberOfWorkers))

	// Step 4: Run the analyzer model once per surviving candidate over a
	// worker pool. Individual failures drop that video only.
	out.AddCommand(commands.NewTranscriptAnalyzer(
		"analyze-transcripts",
		w.analyzerModel,
		w.analyzerTemplate,
		w.numberOfWorkers))

	// Step 5: Condense all successful analyses into one product summary with
	// a single summarizer call.
	out.AddCommand(commands.NewProductSummaryCreator(
		"create-product-summary",
		w.summarizerModel,
		w.summarizerTemplate))

	// Step 6: Parse the summarizer JSON into the typed summary and enforce
	// the aggregation policies (canonical name, minimum ABV, note cap).
	out.AddCommand(commands.NewProductSummaryToStruct("convert-product-summary"))

	// Step 7: Upsert one review row per analysis plus the product summary.
	// A write failure is fatal for the batch.
	out.AddCommand(commands.NewReviewPersister(
		"persist-reviews",
		w.reviewService,
		w.productService))

	// Steps 8 and 9: best-effort archival of raw transcripts and thumbnails.
	// The reviews are already durable; failures here are logged and ignored.
	out.AddCommand(commands.NewTranscriptArchiver(
		"archive-transcripts",
		w.storageClient,
		w.config.Storage.TranscriptBucket))
	out.AddCommand(commands.NewThumbnailArchiver(
		"archive-thumbnails",
		w.storageClient,
		w.config.Storage.ThumbnailBucket))

	w.chain = out
}

// NewBackfillWorkflow is the constructor for the BackfillWorkflow. It compiles
// the prompt templates, wires the provider clients and services, and builds
// the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - reviews: The review data access service.
//   - products: The product data access service.
//
// Outputs:
//   - *BackfillWorkflow: A pointer to a fully initialized workflow.
func NewBackfillWorkflow(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	reviews *services.ReviewService,
	products *services.ProductService) *BackfillWorkflow {

	analyzerTemplate, err := template.New("analyzer-template").Parse(config.PromptTemplates.AnalyzerPrompt)
	if err != nil {
		panic(err) // The app cannot run without valid templates.
	}
	summarizerTemplate, err := template.New("summarizer-template").Parse(config.PromptTemplates.SummarizerPrompt)
	if err != nil {
		panic(err)
	}

	w := &BackfillWorkflow{
		BaseCommand:        *cor.NewBaseCommand("search-backfill-pipeline"),
		config:             config,
		reviewService:      reviews,
		productService:     products,
		searchClient:       cloud.NewYouTubeSearchClient(serviceClients.YouTubeService, config.YouTube, config.Search.OverfetchFactor),
		transcriptClient:   cloud.NewYouTubeTranscriptClient(config.YouTube),
		analyzerModel:      serviceClients.AgentModels["analyzer"],
		summarizerModel:    serviceClients.AgentModels["summarizer"],
		storageClient:      serviceClients.StorageClient,
		numberOfWorkers:    config.Application.ThreadPoolSize,
		analyzerTemplate:   analyzerTemplate,
		summarizerTemplate: summarizerTemplate,
	}
	w.initializeChain()
	return w
}
