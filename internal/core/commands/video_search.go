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
// first command of the backfill chain: finding candidate review videos for a
// search query.
//
// Logic Flow:
//  1. It reads the normalized search query from the context.
//  2. It asks the video search client for up to the configured maximum number
//     of candidates (the client over-fetches internally and truncates,
//     preserving the provider's relevance order).
//  3. Zero candidates is fatal for the batch — there is nothing downstream to
//     analyze — and is recorded with the sentinel error so the search layer
//     can distinguish it from infrastructure failures.
//  4. The candidate list is placed into the context for the transcript
//     collector.
package commands

import (
	"fmt"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/model"
)

// VideoSearch is the command that resolves a search query to candidate
// review videos.
type VideoSearch struct {
	cor.BaseCommand
	client     *cloud.YouTubeSearchClient // The video search provider client.
	maxResults int                        // Upper bound on candidates per backfill.
}

// NewVideoSearch is the constructor for the VideoSearch command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The video search provider client.
//   - maxResults: The maximum number of candidates to forward.
//
// Outputs:
//   - *VideoSearch: A pointer to the newly instantiated command.
func NewVideoSearch(name string, client *cloud.YouTubeSearchClient, maxResults int) *VideoSearch {
	return &VideoSearch{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		maxResults:  maxResults,
	}
}

// IsExecutable requires a non-empty search query in the context.
func (t *VideoSearch) IsExecutable(context cor.Context) bool {
	query, ok := context.Get(GetSearchQueryParamName()).(string)
	return ok && len(query) > 0 && context.GetContext() != nil
}

// Execute runs the provider search and forwards the candidates.
func (t *VideoSearch) Execute(context cor.Context) {
	query := context.Get(GetSearchQueryParamName()).(string)

	candidates, err := t.client.Search(context.GetContext(), query, t.maxResults)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("video search failed: %w", err))
		return
	}
	if len(candidates) == 0 {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("%w: %s", model.ErrNoCandidates, query))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), candidates)
}
