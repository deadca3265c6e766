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

// Package model defines the core data structures for the application.
// This file, `persistent.go`, contains the two durable record types. Both are
// stored in BigQuery and carry `bigquery` struct tags so the client library
// can map rows to fields directly. Records are only ever upserted by key,
// never deleted, by this subsystem.
package model

import "time"

// NonAgeStatement is the value stored for Age when the reviews never state an
// age. The field is never left empty.
const NonAgeStatement = "non-age statement"

// ReviewRecord is the persisted form of a single analyzed video review. It is
// keyed by VideoId: the first successful analysis of a video creates the row,
// and later searches that re-analyze the same video update it in place.
type ReviewRecord struct {
	VideoId      string    `json:"videoId" bigquery:"video_id"`
	Title        string    `json:"title" bigquery:"title"`
	ThumbnailUrl string    `json:"thumbnailUrl" bigquery:"thumbnail_url"`
	ChannelTitle string    `json:"channelTitle" bigquery:"channel_title"`
	PublishedAt  time.Time `json:"publishedAt" bigquery:"published_at"`

	// Transcript holds the text the analysis was produced from. When the raw
	// transcript was unavailable this is the title+description fallback text.
	Transcript string `json:"transcript" bigquery:"transcript"`

	// SearchQuery is the normalized (trimmed, lower-cased) query that caused
	// this review to be created. ProductName is the canonical lower-cased
	// product name derived by the summarizer. All lookups key off these
	// normalized forms, never the raw user input.
	SearchQuery string `json:"searchQuery" bigquery:"search_query"`
	ProductName string `json:"productName" bigquery:"product_name"`

	Age             string   `json:"age" bigquery:"age"`
	Region          string   `json:"region" bigquery:"region"`
	Abv             string   `json:"abv" bigquery:"abv"`
	Tags            []string `json:"tags" bigquery:"tags"`
	Casks           []string `json:"casks" bigquery:"casks"`
	TasteNotes      []string `json:"tasteNotes" bigquery:"taste_notes"`
	TasteQuotes     []string `json:"tasteQuotes" bigquery:"taste_quotes"`
	ValueQuotes     []string `json:"valueQuotes" bigquery:"value_quotes"`
	OpinionQuote    string   `json:"opinionQuote" bigquery:"opinion_quote"`
	ReviewSummary   string   `json:"reviewSummary" bigquery:"review_summary"`
	SentimentScore  float64  `json:"sentimentScore" bigquery:"sentiment_score"`
	OverallScore    float64  `json:"overallScore" bigquery:"overall_score"`
	PriceScore      float64  `json:"priceScore" bigquery:"price_score"`
	ComplexityScore float64  `json:"complexityScore" bigquery:"complexity_score"`

	// BlogBody is filled in lazily the first time a blog post is requested
	// for this review; empty until then.
	BlogBody string `json:"blogBody,omitempty" bigquery:"blog_body"`

	CreatedAt time.Time `json:"createdAt" bigquery:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bigquery:"updated_at"`
}

// ProductSummary is the persisted canonical aggregate over all review records
// that share a product. Keyed by ProductName (lower-cased, unique). The shape
// mirrors AnalyzedTranscript minus the quote collections. ABV takes the
// minimum observed value across contributing reviews when they disagree.
type ProductSummary struct {
	ProductName     string   `json:"productName" bigquery:"product_name"`
	WhiskyName      string   `json:"whiskyName" bigquery:"whisky_name"`
	Age             string   `json:"age" bigquery:"age"`
	Region          string   `json:"region" bigquery:"region"`
	Abv             string   `json:"abv" bigquery:"abv"`
	Tags            []string `json:"tags" bigquery:"tags"`
	Casks           []string `json:"casks" bigquery:"casks"`
	TasteNotes      []string `json:"tasteNotes" bigquery:"taste_notes"`
	SentimentScore  float64  `json:"sentimentScore" bigquery:"sentiment_score"`
	OverallScore    float64  `json:"overallScore" bigquery:"overall_score"`
	PriceScore      float64  `json:"priceScore" bigquery:"price_score"`
	ComplexityScore float64  `json:"complexityScore" bigquery:"complexity_score"`
	ReviewSummary   string   `json:"summary" bigquery:"review_summary"`

	CreatedAt time.Time `json:"createdAt" bigquery:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bigquery:"updated_at"`
}
