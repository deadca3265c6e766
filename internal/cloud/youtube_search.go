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

// Package cloud provides components for interacting with Google Cloud services.
// This file implements the video search client on top of the YouTube Data API.
// Given a whisky query, it returns a bounded list of candidate review videos
// in the API's relevance order.
//
// Logic Flow:
//  1. The query is qualified with the configured suffix (e.g. "review") so
//     general product queries bias toward review content.
//  2. The API is asked for more results than the caller wants (over-fetch),
//     because some candidates will later be dropped by the relevance filter
//     or fail transcript collection.
//  3. The response snippets are mapped to VideoCandidate values and the list
//     is truncated to the requested maximum, preserving the provider's
//     ordering.
//
// Structs:
//   - YouTubeSearchClient: Holds the API service handle and search settings.
//
// Functions:
//   - NewYouTubeSearchClient: Constructor for the search client.
//   - Search: Executes a video search and returns the candidate list.
package cloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/daZebra/dram-reviews/internal/core/model"
	yt "google.golang.org/api/youtube/v3"
)

// YouTubeSearchClient wraps the YouTube Data API search endpoint with the
// application's query shaping rules.
type YouTubeSearchClient struct {
	service   *yt.Service     // The authenticated YouTube Data API service.
	settings  YouTubeSettings // Locale and query qualifier settings.
	overfetch int             // Multiplier applied to the requested max before truncation.
}

// NewYouTubeSearchClient is the constructor for YouTubeSearchClient.
//
// Inputs:
//   - service: An authenticated *yt.Service.
//   - settings: The YouTube provider settings from the application config.
//   - overfetchFactor: How many times more results to request than the caller
//     needs. Values below 1 are treated as 1.
//
// Outputs:
//   - *YouTubeSearchClient: A pointer to the newly created client.
func NewYouTubeSearchClient(service *yt.Service, settings YouTubeSettings, overfetchFactor int) *YouTubeSearchClient {
	if overfetchFactor < 1 {
		overfetchFactor = 1
	}
	return &YouTubeSearchClient{
		service:   service,
		settings:  settings,
		overfetch: overfetchFactor,
	}
}

// Search finds candidate review videos for a whisky query.
//
// Inputs:
//   - ctx: The context for the API call.
//   - query: The normalized search query (e.g. "ardbeg 10").
//   - maxResults: The maximum number of candidates to return.
//
// Outputs:
//   - []*model.VideoCandidate: Up to maxResults candidates in the provider's
//     relevance order. May be empty when the provider finds nothing; that is
//     not an error.
//   - error: An error when the API call itself fails.
func (c *YouTubeSearchClient) Search(ctx context.Context, query string, maxResults int) ([]*model.VideoCandidate, error) {
	searchQuery := query
	if c.settings.QueryQualifier != "" {
		searchQuery = fmt.Sprintf("%s %s", query, c.settings.QueryQualifier)
	}

	call := c.service.Search.List([]string{"snippet"}).
		Context(ctx).
		Q(searchQuery).
		Type("video").
		MaxResults(int64(maxResults * c.overfetch))
	if c.settings.RelevanceLanguage != "" {
		call = call.RelevanceLanguage(c.settings.RelevanceLanguage)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed for query %q: %w", query, err)
	}

	candidates := make([]*model.VideoCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		candidates = append(candidates, &model.VideoCandidate{
			Id:           item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ThumbnailUrl: bestThumbnail(item.Snippet.Thumbnails),
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  parsePublishedAt(item.Snippet.PublishedAt),
		})
		// Truncate to the requested maximum without re-ranking so the
		// provider's relevance ordering is preserved.
		if len(candidates) == maxResults {
			break
		}
	}
	return candidates, nil
}

// bestThumbnail picks the highest resolution thumbnail present in a snippet.
func bestThumbnail(details *yt.ThumbnailDetails) string {
	if details == nil {
		return ""
	}
	for _, t := range []*yt.Thumbnail{details.High, details.Medium, details.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}

// parsePublishedAt converts the API's RFC 3339 timestamp. A malformed value
// yields the zero time rather than dropping the candidate.
func parsePublishedAt(in string) time.Time {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(in))
	if err != nil {
		return time.Time{}
	}
	return ts
}
