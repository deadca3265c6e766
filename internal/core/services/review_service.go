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
// This file, `review_service.go`, defines the ReviewService, the data access
// layer for persisted review records in BigQuery. All writes are upserts keyed
// by video id, so re-analyzing a video a second search already covered updates
// its row instead of duplicating it.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/daZebra/dram-reviews/internal/core/model"
	"google.golang.org/api/iterator"
)

// ReviewService encapsulates the clients and configuration needed to read and
// write review records.
type ReviewService struct {
	BigqueryClient *bigquery.Client // Client for interacting with Google BigQuery.
	DatasetName    string           // The name of the BigQuery dataset.
	ReviewTable    string           // The name of the table holding review records.
}

// countRow receives the single row of a COUNT(*) query.
type countRow struct {
	Total int64 `bigquery:"total"`
}

// GetFQN (Get Fully Qualified Name) returns the complete, queryable name for
// the review table, formatted with dots instead of colons.
// Example: `gcp-project-id.reviews_ds.reviews`
func (s *ReviewService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.ReviewTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// FindByQuery retrieves all reviews visible to a normalized search query:
// rows whose originating search query or derived product name equals it
// exactly. Results come back ordered by sentiment score, best first.
//
// Inputs:
//   - ctx: The context for the request.
//   - query: The normalized (trimmed, lower-cased) search query.
//
// Outputs:
//   - []*model.ReviewRecord: The matching reviews; empty when none match.
//   - error: An error if the query fails.
func (s *ReviewService) FindByQuery(ctx context.Context, query string) ([]*model.ReviewRecord, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryFindReviewsByQuery, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "query", Value: query}}

	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}

	reviews := make([]*model.ReviewRecord, 0)
	for {
		review := &model.ReviewRecord{}
		err := itr.Next(review)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// CountByQuery counts the reviews visible to a normalized query without
// pulling row data. The search orchestrator uses this to decide whether the
// store already holds enough reviews to skip a backfill.
func (s *ReviewService) CountByQuery(ctx context.Context, query string) (int, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryCountReviewsByQuery, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "query", Value: query}}

	itr, err := q.Read(ctx)
	if err != nil {
		return 0, err
	}
	var row countRow
	if err := itr.Next(&row); err != nil {
		return 0, err
	}
	return int(row.Total), nil
}

// Get retrieves a single review record by its video id.
func (s *ReviewService) Get(ctx context.Context, videoId string) (review *model.ReviewRecord, err error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryFindReviewById, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: videoId}}

	itr, err := q.Read(ctx)
	if err != nil {
		return review, err
	}
	review = &model.ReviewRecord{}
	err = itr.Next(review)
	return review, err
}

// Upsert writes a review record, inserting or updating by video id. The
// record's UpdatedAt is set to now; CreatedAt only applies when the row is
// first inserted.
func (s *ReviewService) Upsert(ctx context.Context, review *model.ReviewRecord) error {
	now := time.Now().UTC()
	q := s.BigqueryClient.Query(fmt.Sprintf(QryMergeReview, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "video_id", Value: review.VideoId},
		{Name: "title", Value: review.Title},
		{Name: "thumbnail_url", Value: review.ThumbnailUrl},
		{Name: "channel_title", Value: review.ChannelTitle},
		{Name: "published_at", Value: review.PublishedAt},
		{Name: "transcript", Value: review.Transcript},
		{Name: "search_query", Value: review.SearchQuery},
		{Name: "product_name", Value: review.ProductName},
		{Name: "age", Value: review.Age},
		{Name: "region", Value: review.Region},
		{Name: "abv", Value: review.Abv},
		{Name: "tags", Value: emptyIfNil(review.Tags)},
		{Name: "casks", Value: emptyIfNil(review.Casks)},
		{Name: "taste_notes", Value: emptyIfNil(review.TasteNotes)},
		{Name: "taste_quotes", Value: emptyIfNil(review.TasteQuotes)},
		{Name: "value_quotes", Value: emptyIfNil(review.ValueQuotes)},
		{Name: "opinion_quote", Value: review.OpinionQuote},
		{Name: "review_summary", Value: review.ReviewSummary},
		{Name: "sentiment_score", Value: review.SentimentScore},
		{Name: "overall_score", Value: review.OverallScore},
		{Name: "price_score", Value: review.PriceScore},
		{Name: "complexity_score", Value: review.ComplexityScore},
		{Name: "created_at", Value: now},
		{Name: "updated_at", Value: now},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to start review upsert for %s: %w", review.VideoId, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed waiting on review upsert for %s: %w", review.VideoId, err)
	}
	return status.Err()
}

// Recent returns the most recently updated reviews plus the total row count.
func (s *ReviewService) Recent(ctx context.Context, limit int) ([]*model.ReviewRecord, int, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryRecentReviews, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: int64(limit)}}

	itr, err := q.Read(ctx)
	if err != nil {
		return nil, 0, err
	}
	reviews := make([]*model.ReviewRecord, 0, limit)
	for {
		review := &model.ReviewRecord{}
		err := itr.Next(review)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}

	cq := s.BigqueryClient.Query(fmt.Sprintf(QryCountReviews, s.GetFQN()))
	citr, err := cq.Read(ctx)
	if err != nil {
		return nil, 0, err
	}
	var row countRow
	if err := citr.Next(&row); err != nil {
		return nil, 0, err
	}
	return reviews, int(row.Total), nil
}

// SetBlog stores a generated blog post on its review row.
func (s *ReviewService) SetBlog(ctx context.Context, videoId string, blog string) error {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryUpdateReviewBlog, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: videoId},
		{Name: "blog", Value: blog},
		{Name: "updated_at", Value: time.Now().UTC()},
	}
	job, err := q.Run(ctx)
	if err != nil {
		return err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return err
	}
	return status.Err()
}

// emptyIfNil substitutes an empty slice for nil so the query parameter binds
// as an empty ARRAY<STRING> instead of NULL.
func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
