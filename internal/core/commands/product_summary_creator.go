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
// command that condenses all successful per-video analyses into one product
// summary.
//
// Logic Flow:
//  1. It receives the successful analyses from the analyzer command.
//  2. All analyses are serialized together into a single JSON document and
//     injected into the summarizer prompt alongside a few-shot example. The
//     summarizer model is called exactly once per backfill, regardless of
//     how many analyses there are.
//  3. The aggregation rules (average the numeric scores, take the minimum
//     ABV, cap the taste notes, default missing age) live in the prompt;
//     the struct conversion command re-enforces the mechanical ones.
//  4. A failure here is fatal for the batch: without a product summary the
//     persisted data would be incomplete.
//  5. The raw JSON response is placed into the context for the struct
//     conversion command.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/model"
)

// ProductSummaryCreator is the command that asks the summarizer model for the
// canonical product aggregate.
type ProductSummaryCreator struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	promptTemplate           *template.Template                 // The Go template for the summarizer prompt.
	geminiInputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewProductSummaryCreator is the constructor for the ProductSummaryCreator
// command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - model: The rate-limited summarizer model.
//   - prompt: The parsed Go template for the prompt.
//
// Outputs:
//   - *ProductSummaryCreator: A pointer to the newly instantiated command.
func NewProductSummaryCreator(
	name string,
	model *cloud.QuotaAwareGenerativeAIModel,
	prompt *template.Template) *ProductSummaryCreator {
	out := &ProductSummaryCreator{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: model,
		promptTemplate:    prompt}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.retry", out.GetName()))

	return out
}

// IsExecutable requires at least one successful analysis.
func (t *ProductSummaryCreator) IsExecutable(context cor.Context) bool {
	analyses, ok := context.Get(t.GetInputParam()).([]*model.ReviewAnalysis)
	return ok && len(analyses) > 0
}

// Execute serializes the analyses and runs the single summarizer call.
func (t *ProductSummaryCreator) Execute(context cor.Context) {
	analyses := context.Get(t.GetInputParam()).([]*model.ReviewAnalysis)

	// The summarizer sees only the structured extractions, not the raw
	// transcripts: they are smaller and already normalized.
	extracted := make([]*model.AnalyzedTranscript, 0, len(analyses))
	for _, a := range analyses {
		extracted = append(extracted, a.Analysis)
	}
	analysesJson, err := json.Marshal(extracted)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to serialize analyses: %w", err))
		return
	}

	exampleJson, _ := json.Marshal(model.GetExampleProductSummary())

	vocabulary := make(map[string]string)
	vocabulary["QUERY"], _ = context.Get(GetSearchQueryParamName()).(string)
	vocabulary["ANALYSES_JSON"] = string(analysesJson)
	vocabulary["EXAMPLE_JSON"] = string(exampleJson)

	var buffer bytes.Buffer
	if err := t.promptTemplate.Execute(&buffer, vocabulary); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	out, err := cloud.GenerateTextResponse(context.GetContext(), t.geminiInputTokenCounter, t.geminiOutputTokenCounter, t.geminiRetryCounter, 0, t.generativeAIModel, cloud.NewTextContent(buffer.String()))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("summarizer request failed: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}
