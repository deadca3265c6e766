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

// Package services contains the business logic for interacting with data sources.
// This file, `search_service.go`, defines the SearchService, the orchestrator
// behind the search endpoint. It decides, per query, whether to answer from
// the cache, from the persisted review store, or by running the backfill
// workflow that collects and analyzes new reviews from the video provider.
//
// Logic Flow:
//  1. Normalize the raw query (trim, lower-case). Queries shorter than the
//     minimum length return an empty result without touching anything.
//  2. Consult the TTL cache; a hit is returned as-is.
//  3. Count the reviews already persisted for the query. When the store holds
//     enough — a full set, or any reviews at all (the partial-store leniency,
//     see hasEnoughReviews) — the result is assembled from the store with no
//     external calls.
//  4. Otherwise run the backfill workflow, then re-read the store. A backfill
//     failure is only fatal when the re-read comes back empty: partial
//     results are better than none, and the next search retries the rest.
//  5. Assemble the result, cache it, and return it.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/daZebra/dram-reviews/internal/core/model"
	"google.golang.org/api/iterator"
)

// ReviewStore is the read surface of the review persistence layer the
// orchestrator depends on.
type ReviewStore interface {
	FindByQuery(ctx context.Context, query string) ([]*model.ReviewRecord, error)
	CountByQuery(ctx context.Context, query string) (int, error)
}

// ProductStore is the read surface of the product persistence layer.
type ProductStore interface {
	Get(ctx context.Context, name string) (*model.ProductSummary, error)
}

// Backfiller runs the collect-analyze-persist workflow for a normalized
// query. Implemented by the backfill workflow chain.
type Backfiller interface {
	Run(ctx context.Context, query string) error
}

// SearchService orchestrates the search pipeline.
type SearchService struct {
	Reviews        ReviewStore
	Products       ProductStore
	Backfill       Backfiller
	Cache          *SearchCache
	MinQueryLength int // Queries shorter than this (after normalization) are a no-op.
	MinReviewCount int // Full-set threshold; see hasEnoughReviews for the partial-store leniency.
}

// emptyResult is what short and fruitless queries produce: a well-formed,
// empty payload, not an error.
func emptyResult() *model.SearchResult {
	return &model.SearchResult{Reviews: []*model.ReviewRecord{}, TotalCount: 0}
}

// Search resolves a raw user query into a SearchResult.
//
// Inputs:
//   - ctx: The context for the request.
//   - rawQuery: The query exactly as the user typed it.
//
// Outputs:
//   - *model.SearchResult: The reviews and product summary for the query.
//     Empty (never nil) when the query is too short or nothing was found.
//   - error: An error only when the store is unreachable or a needed backfill
//     produced nothing at all.
func (s *SearchService) Search(ctx context.Context, rawQuery string) (*model.SearchResult, error) {
	query := Normalize(rawQuery)
	if len(query) < s.MinQueryLength {
		return emptyResult(), nil
	}

	if cached := s.Cache.Get(query); cached != nil {
		return cached, nil
	}

	count, err := s.Reviews.CountByQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	if !s.hasEnoughReviews(count) {
		if err := s.Backfill.Run(ctx, query); err != nil {
			// The provider finding nothing is a legitimate empty outcome for
			// the user, not an infrastructure failure.
			if errors.Is(err, model.ErrNoCandidates) {
				return emptyResult(), nil
			}
			// A failed backfill still counts if it persisted anything, or if
			// the store already had a partial set. Only a completely empty
			// re-read makes the failure the caller's problem.
			slog.Warn("backfill failed", "query", query, "error", err)
			recovered, countErr := s.Reviews.CountByQuery(ctx, query)
			if countErr != nil || recovered == 0 {
				return nil, err
			}
		}
	}

	result, err := s.assemble(ctx, query)
	if err != nil {
		return nil, err
	}
	s.Cache.Put(query, result)
	return result, nil
}

// hasEnoughReviews is the store-sufficiency policy. A full set
// (count >= MinReviewCount) is enough, and so is any non-empty set: a partial
// store is served as-is rather than re-running the provider pipeline over it.
// The leniency is deliberate — existing reviews are real data, and a backfill
// on top of them would spend provider quota to overwrite rows the store
// already holds.
func (s *SearchService) hasEnoughReviews(count int) bool {
	return count >= s.MinReviewCount || count > 0
}

// assemble reads the store and builds the unified result payload. The product
// summary is attached when the query resolves to a known product; its absence
// is not an error.
func (s *SearchService) assemble(ctx context.Context, query string) (*model.SearchResult, error) {
	reviews, err := s.Reviews.FindByQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return emptyResult(), nil
	}

	result := &model.SearchResult{
		Reviews:    reviews,
		TotalCount: len(reviews),
	}

	// The query may be a raw search term rather than a product name; prefer
	// the product name the persisted reviews agree on.
	productName := query
	if reviews[0].ProductName != "" {
		productName = reviews[0].ProductName
	}
	product, err := s.Products.Get(ctx, productName)
	if err != nil {
		if !errors.Is(err, iterator.Done) {
			slog.Warn("product summary lookup failed", "product", productName, "error", err)
		}
	} else {
		result.Product = product
	}
	return result, nil
}
