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
// This file, `transient.go`, contains struct definitions for data models that
// only live in memory while a search backfill is running. These objects are
// intermediate containers for data as it moves between the commands of the
// backfill chain; they are never persisted in this form.
package model

import "time"

// TranscriptUnavailable is the sentinel value a transcript fetch returns when
// no usable caption text exists for a video (captions disabled, no tracks,
// provider failure). Callers compare against this value rather than checking
// for an empty string.
const TranscriptUnavailable = "none"

// MinTranscriptLength is the minimum number of characters a fetched transcript
// must contain to be considered valid. Anything shorter is treated the same as
// an unavailable transcript.
const MinTranscriptLength = 50

// UsableTranscript reports whether fetched transcript text can feed the
// relevance screen and the analyzer: present, not the unavailability
// sentinel, and at least MinTranscriptLength characters long.
func UsableTranscript(text string) bool {
	return text != TranscriptUnavailable && len(text) >= MinTranscriptLength
}

// VideoCandidate represents one video returned by the external video search
// provider. Candidates are immutable once fetched and are only used to enrich
// the review records assembled later in the chain.
type VideoCandidate struct {
	Id           string    `json:"id"`           // The provider's opaque video identifier.
	Title        string    `json:"title"`        // The video title.
	Description  string    `json:"description"`  // The snippet description, used as fallback text when no transcript exists.
	ThumbnailUrl string    `json:"thumbnailUrl"` // URL of the medium-size thumbnail.
	ChannelTitle string    `json:"channelTitle"` // The publishing channel's display name.
	PublishedAt  time.Time `json:"publishedAt"`  // When the video was published.
}

// CandidateTranscript pairs a video candidate with the text that is fed to the
// relevance filter and the analyzer. When the raw transcript is unavailable or
// too short, Text degrades to the candidate's title plus description and
// TranscriptAvailable is false, so downstream commands always receive some
// input text.
type CandidateTranscript struct {
	Candidate           *VideoCandidate `json:"candidate"`
	Text                string          `json:"text"`
	TranscriptAvailable bool            `json:"transcriptAvailable"`
}

// AnalyzedTranscript is the structured extraction the language model produces
// for a single video review. SentimentScore is out of 100, the remaining
// scores are out of 10. Collections keep the model's ordering since it is
// significant for display.
type AnalyzedTranscript struct {
	WhiskyName      string   `json:"whiskyName"`      // The product under review as the reviewer names it.
	Age             string   `json:"age"`             // Stated age, or "non-age statement".
	Region          string   `json:"region"`          // Producing region or country.
	Abv             string   `json:"abv"`             // Numeric ABV as a string, e.g. "43".
	Tags            []string `json:"tags"`            // e.g. "non-chill filtered", "single malt".
	Casks           []string `json:"casks"`           // Cask types mentioned in the review.
	TasteNotes      []string `json:"tasteNotes"`      // Tasting notes called out by the reviewer.
	TasteQuotes     []string `json:"tasteQuotes"`     // Two to three short quotes about taste.
	ValueQuotes     []string `json:"valueQuotes"`     // One or two quotes about value for money.
	OpinionQuote    string   `json:"opinionQuote"`    // One quote capturing the overall opinion.
	Summary         string   `json:"summary"`         // Prose summary of the review.
	SentimentScore  float64  `json:"sentimentScore"`  // 0-100.
	OverallScore    float64  `json:"overallScore"`    // 0-10.
	PriceScore      float64  `json:"priceScore"`      // 0-10.
	ComplexityScore float64  `json:"complexityScore"` // 0-10.

	// NotAWhiskyReview is set when the model classified the content as
	// off-topic. When true every other field is meaningless and the analysis
	// must not be persisted. The flag is normalized from the provider's
	// response (legacy sentinel string or either flag key) at the analyzer
	// boundary so the variance never reaches the orchestrator.
	NotAWhiskyReview bool `json:"-"`
}

// ReviewAnalysis ties a successful analysis back to the candidate and the
// transcript text it was produced from, so the persistence step can assemble
// a complete review record.
type ReviewAnalysis struct {
	Candidate           *VideoCandidate
	Transcript          string
	TranscriptAvailable bool
	Analysis            *AnalyzedTranscript
}

// SearchResult is the unified payload the search orchestrator returns to its
// callers and stores in the search cache.
type SearchResult struct {
	Reviews    []*ReviewRecord `json:"reviews"`
	TotalCount int             `json:"totalCount"`
	Product    *ProductSummary `json:"product"`
}
