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
// Responsibility (COR) pattern's Command interface for the review backfill
// workflow. This file defines the named context parameter keys commands use
// to share data beyond the chain's default input/output piping.
package commands

// GetSearchQueryParamName returns the context key under which the workflow
// stores the normalized search query for the whole chain to read.
func GetSearchQueryParamName() string {
	return "__search_query__"
}

// GetTranscriptsParamName returns the context key for the collected
// candidate transcripts, kept for the archival commands that run after the
// main output has moved on down the chain.
func GetTranscriptsParamName() string {
	return "__transcripts__"
}

// GetAnalysesParamName returns the context key for the successful per-video
// analyses, read again by the persister after the summarizer has consumed the
// chain's primary output.
func GetAnalysesParamName() string {
	return "__analyses__"
}

// GetProductSummaryParamName returns the context key for the parsed product
// summary struct.
func GetProductSummaryParamName() string {
	return "__product_summary__"
}

// GetPersistedCountParamName returns the context key under which the
// persister records how many review rows it wrote.
func GetPersistedCountParamName() string {
	return "__persisted_count__"
}
