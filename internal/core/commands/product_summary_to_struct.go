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
// command that converts the summarizer's raw JSON response into a typed
// ProductSummary and enforces the aggregation policies mechanically.
//
// The prompt instructs the model to apply these policies too, but prompts
// drift and models disobey; re-enforcing them here makes the invariants hold
// regardless of what the model returned:
//   - The product name is canonicalized (trimmed, lower-cased); it is the
//     persistence key.
//   - ABV takes the minimum value observed across the contributing analyses
//     when they disagree (deliberately conservative).
//   - Taste notes are capped at ten.
//   - A missing age becomes the "non-age statement" sentinel, never empty.
package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/model"
)

// MaxTasteNotes caps the taste note collection on a product summary.
const MaxTasteNotes = 10

// ProductSummaryToStruct parses and normalizes the summarizer output.
type ProductSummaryToStruct struct {
	cor.BaseCommand
}

// NewProductSummaryToStruct is the constructor for the ProductSummaryToStruct
// command.
func NewProductSummaryToStruct(name string) *ProductSummaryToStruct {
	return &ProductSummaryToStruct{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the JSON, applies the normalization policies, and stores the
// typed summary under both the chain output and its named parameter key.
func (t *ProductSummaryToStruct) Execute(context cor.Context) {
	raw := context.Get(t.GetInputParam()).(string)

	summary := &model.ProductSummary{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), summary); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to parse product summary: %w", err))
		return
	}

	analyses, _ := context.Get(GetAnalysesParamName()).([]*model.ReviewAnalysis)
	NormalizeSummary(summary, analyses)

	if summary.ProductName == "" {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("product summary missing product name"))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetProductSummaryParamName(), summary)
	context.Add(t.GetOutputParam(), summary)
}

// NormalizeSummary applies the aggregation policies to a parsed summary
// in place, using the contributing analyses as ground truth where the model
// may have strayed.
func NormalizeSummary(summary *model.ProductSummary, analyses []*model.ReviewAnalysis) {
	summary.ProductName = strings.ToLower(strings.TrimSpace(summary.ProductName))
	if summary.ProductName == "" && summary.WhiskyName != "" {
		summary.ProductName = strings.ToLower(strings.TrimSpace(summary.WhiskyName))
	}

	if strings.TrimSpace(summary.Age) == "" {
		summary.Age = model.NonAgeStatement
	}

	summary.Abv = minimumAbv(summary.Abv, analyses)

	if len(summary.TasteNotes) > MaxTasteNotes {
		summary.TasteNotes = summary.TasteNotes[:MaxTasteNotes]
	}
}

// minimumAbv returns the lowest numeric ABV among the summarizer's answer and
// every contributing analysis. Non-numeric values are ignored; when nothing
// parses, the summarizer's answer stands.
func minimumAbv(summarized string, analyses []*model.ReviewAnalysis) string {
	best := summarized
	bestVal, ok := parseAbv(summarized)
	for _, a := range analyses {
		if a == nil || a.Analysis == nil {
			continue
		}
		v, vok := parseAbv(a.Analysis.Abv)
		if !vok {
			continue
		}
		if !ok || v < bestVal {
			best = strings.TrimSpace(a.Analysis.Abv)
			bestVal = v
			ok = true
		}
	}
	return best
}

// parseAbv extracts a numeric value from an ABV string such as "43", "43%",
// or "43.5% ABV".
func parseAbv(in string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(in))
	s = strings.TrimSuffix(s, "abv")
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
