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
// initial command of a Pub/Sub-triggered backfill.
//
// Logic Flow:
// Operators pre-warm popular queries by publishing to the search trigger
// topic. Messages arrive in one of two shapes: a JSON envelope
// (`{"query": "ardbeg 10"}`) from tooling, or a bare query string published
// by hand from the console. This command accepts both.
//
//  1. The raw message payload is read from the context input.
//  2. A JSON envelope is tried first; on parse failure the payload itself is
//     treated as the query.
//  3. The query is normalized exactly the way the search orchestrator
//     normalizes it, so a pre-warmed entry lands under the same store keys a
//     live search would read.
//  4. The normalized query is placed into the context for the video search
//     command.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/services"
)

// searchTriggerEnvelope is the JSON shape published by pre-warm tooling.
type searchTriggerEnvelope struct {
	Query string `json:"query"`
}

// SearchTriggerToQuery parses a pre-warm trigger message into a normalized
// search query.
type SearchTriggerToQuery struct {
	cor.BaseCommand
}

// NewSearchTriggerToQuery is the constructor for the SearchTriggerToQuery
// command.
func NewSearchTriggerToQuery(name string) *SearchTriggerToQuery {
	return &SearchTriggerToQuery{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the trigger payload and seeds the query parameter.
func (c *SearchTriggerToQuery) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var envelope searchTriggerEnvelope
	query := in
	if err := json.Unmarshal([]byte(in), &envelope); err == nil && envelope.Query != "" {
		query = envelope.Query
	}

	query = services.Normalize(query)
	if query == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("search trigger message contained no query"))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetSearchQueryParamName(), query)
	context.Add(c.GetOutputParam(), query)
}
