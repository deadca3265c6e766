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

// Package commands_test contains unit tests for the product summary
// normalization policies: canonical naming, minimum ABV, taste note capping,
// and the non-age-statement default.
package commands_test

import (
	"testing"

	"github.com/zeebo/assert"

	"github.com/daZebra/dram-reviews/internal/core/commands"
	"github.com/daZebra/dram-reviews/internal/core/model"
)

func analysisWithAbv(abv string) *model.ReviewAnalysis {
	return &model.ReviewAnalysis{
		Candidate: &model.VideoCandidate{Id: "v-" + abv},
		Analysis:  &model.AnalyzedTranscript{Abv: abv},
	}
}

func TestNormalizeSummaryCanonicalizesProductName(t *testing.T) {
	summary := &model.ProductSummary{ProductName: "  Ardbeg 10  ", Age: "10", Abv: "46"}
	commands.NormalizeSummary(summary, nil)
	assert.Equal(t, "ardbeg 10", summary.ProductName)
}

func TestNormalizeSummaryFallsBackToWhiskyName(t *testing.T) {
	summary := &model.ProductSummary{WhiskyName: "Lagavulin 16", Age: "16", Abv: "43"}
	commands.NormalizeSummary(summary, nil)
	assert.Equal(t, "lagavulin 16", summary.ProductName)
}

func TestNormalizeSummaryTakesMinimumAbvAcrossAnalyses(t *testing.T) {
	summary := &model.ProductSummary{ProductName: "glendronach 12", Age: "12", Abv: "46"}
	analyses := []*model.ReviewAnalysis{
		analysisWithAbv("43"),
		analysisWithAbv("40"),
		analysisWithAbv("46"),
	}
	commands.NormalizeSummary(summary, analyses)
	assert.Equal(t, "40", summary.Abv)
}

func TestNormalizeSummaryMinimumAbvHandlesSuffixes(t *testing.T) {
	summary := &model.ProductSummary{ProductName: "oban 14", Age: "14", Abv: "43%"}
	analyses := []*model.ReviewAnalysis{
		analysisWithAbv("40.5% ABV"),
		analysisWithAbv("not stated"),
	}
	commands.NormalizeSummary(summary, analyses)
	assert.Equal(t, "40.5% ABV", summary.Abv)
}

func TestNormalizeSummaryKeepsAnswerWhenNothingParses(t *testing.T) {
	summary := &model.ProductSummary{ProductName: "mystery dram", Age: "12", Abv: "unknown"}
	analyses := []*model.ReviewAnalysis{analysisWithAbv("varies")}
	commands.NormalizeSummary(summary, analyses)
	assert.Equal(t, "unknown", summary.Abv)
}

func TestNormalizeSummaryCapsTasteNotes(t *testing.T) {
	notes := []string{"peat", "smoke", "citrus", "vanilla", "honey", "brine",
		"pepper", "oak", "dark chocolate", "espresso", "leather", "tobacco"}
	summary := &model.ProductSummary{ProductName: "ardbeg 10", Age: "10", Abv: "46", TasteNotes: notes}
	commands.NormalizeSummary(summary, nil)
	assert.Equal(t, commands.MaxTasteNotes, len(summary.TasteNotes))
	assert.Equal(t, "peat", summary.TasteNotes[0])
	assert.Equal(t, "espresso", summary.TasteNotes[len(summary.TasteNotes)-1])
}

func TestNormalizeSummaryDefaultsMissingAge(t *testing.T) {
	summary := &model.ProductSummary{ProductName: "aberlour a'bunadh", Age: "  ", Abv: "60.9"}
	commands.NormalizeSummary(summary, nil)
	assert.Equal(t, model.NonAgeStatement, summary.Age)
}
