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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that makes a backfill durable: upserting one review record per
// successful analysis and the single product summary.
//
// Logic Flow:
//  1. It assembles a ReviewRecord for each analysis, stamping in the
//     normalized search query and the summarizer's canonical product name so
//     later store lookups match on either.
//  2. Records are upserted by video id: a video seen again under a later
//     search updates its row in place, never duplicates it.
//  3. The product summary is upserted by product name.
//  4. Any write failure is fatal for the batch — serving results the store
//     does not actually hold would break the orchestrator's re-read
//     guarantee.
//  5. The number of persisted reviews is recorded in the context.
package commands

import (
	"fmt"

	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/model"
	"github.com/daZebra/dram-reviews/internal/core/services"
)

// ReviewPersister writes the backfill results through the services layer.
type ReviewPersister struct {
	cor.BaseCommand
	reviews  *services.ReviewService  // Data access for review rows.
	products *services.ProductService // Data access for product summaries.
}

// NewReviewPersister is the constructor for the ReviewPersister command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - reviews: The review data access service.
//   - products: The product data access service.
//
// Outputs:
//   - *ReviewPersister: A pointer to the newly instantiated command.
func NewReviewPersister(name string, reviews *services.ReviewService, products *services.ProductService) *ReviewPersister {
	return &ReviewPersister{
		BaseCommand: *cor.NewBaseCommand(name),
		reviews:     reviews,
		products:    products,
	}
}

// IsExecutable requires the typed product summary and at least one analysis.
func (t *ReviewPersister) IsExecutable(context cor.Context) bool {
	summary, sok := context.Get(GetProductSummaryParamName()).(*model.ProductSummary)
	analyses, aok := context.Get(GetAnalysesParamName()).([]*model.ReviewAnalysis)
	return sok && summary != nil && aok && len(analyses) > 0
}

// Execute upserts all review records and the product summary.
func (t *ReviewPersister) Execute(context cor.Context) {
	summary := context.Get(GetProductSummaryParamName()).(*model.ProductSummary)
	analyses := context.Get(GetAnalysesParamName()).([]*model.ReviewAnalysis)
	query, _ := context.Get(GetSearchQueryParamName()).(string)

	persisted := 0
	for _, a := range analyses {
		record := buildReviewRecord(a, query, summary.ProductName)
		if err := t.reviews.Upsert(context.GetContext(), record); err != nil {
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), fmt.Errorf("failed to persist review %s: %w", record.VideoId, err))
			return
		}
		persisted++
	}

	if err := t.products.Upsert(context.GetContext(), summary); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to persist product %s: %w", summary.ProductName, err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetPersistedCountParamName(), persisted)
	context.Add(t.GetOutputParam(), persisted)
}

// buildReviewRecord flattens a candidate, its transcript, and its analysis
// into the persisted row shape.
func buildReviewRecord(a *model.ReviewAnalysis, query string, productName string) *model.ReviewRecord {
	age := a.Analysis.Age
	if age == "" {
		age = model.NonAgeStatement
	}
	return &model.ReviewRecord{
		VideoId:         a.Candidate.Id,
		Title:           a.Candidate.Title,
		ThumbnailUrl:    a.Candidate.ThumbnailUrl,
		ChannelTitle:    a.Candidate.ChannelTitle,
		PublishedAt:     a.Candidate.PublishedAt,
		Transcript:      a.Transcript,
		SearchQuery:     query,
		ProductName:     productName,
		Age:             age,
		Region:          a.Analysis.Region,
		Abv:             a.Analysis.Abv,
		Tags:            a.Analysis.Tags,
		Casks:           a.Analysis.Casks,
		TasteNotes:      a.Analysis.TasteNotes,
		TasteQuotes:     a.Analysis.TasteQuotes,
		ValueQuotes:     a.Analysis.ValueQuotes,
		OpinionQuote:    a.Analysis.OpinionQuote,
		ReviewSummary:   a.Analysis.Summary,
		SentimentScore:  a.Analysis.SentimentScore,
		OverallScore:    a.Analysis.OverallScore,
		PriceScore:      a.Analysis.PriceScore,
		ComplexityScore: a.Analysis.ComplexityScore,
	}
}
