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

// Package commands_test contains unit tests for the analyzer response parsing.
// The model answers in three historical shapes; each must normalize into the
// single NotAWhiskyReview field.
package commands_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"

	"github.com/daZebra/dram-reviews/internal/core/commands"
)

func TestParseAnalysisValidJson(t *testing.T) {
	raw := `{
		"whiskyName": "Ardbeg 10",
		"age": "10",
		"region": "Islay",
		"abv": "46",
		"sentimentScore": 88,
		"tasteNotes": ["peat", "citrus"],
		"summary": "A classic Islay dram."
	}`

	analysis, err := commands.ParseAnalysis(raw)
	require.NoError(t, err)
	assert.False(t, analysis.NotAWhiskyReview)
	assert.Equal(t, "Ardbeg 10", analysis.WhiskyName)
	assert.Equal(t, "Islay", analysis.Region)
	assert.Equal(t, 2, len(analysis.TasteNotes))
}

func TestParseAnalysisBareSentinel(t *testing.T) {
	analysis, err := commands.ParseAnalysis("NOT A WHISKY REVIEW")
	require.NoError(t, err)
	assert.True(t, analysis.NotAWhiskyReview)
}

func TestParseAnalysisSentinelWithNoise(t *testing.T) {
	// Models occasionally wrap the sentinel in prose or change its case.
	analysis, err := commands.ParseAnalysis("This video is not a whisky review.")
	require.NoError(t, err)
	assert.True(t, analysis.NotAWhiskyReview)
}

func TestParseAnalysisCamelCaseFlag(t *testing.T) {
	analysis, err := commands.ParseAnalysis(`{"notAWhiskyReview": true}`)
	require.NoError(t, err)
	assert.True(t, analysis.NotAWhiskyReview)
}

func TestParseAnalysisSnakeCaseFlag(t *testing.T) {
	analysis, err := commands.ParseAnalysis(`{"not_a_whisky_review": true}`)
	require.NoError(t, err)
	assert.True(t, analysis.NotAWhiskyReview)
}

func TestParseAnalysisJsonMentioningSentinelIsNotOffTopic(t *testing.T) {
	// A JSON body that merely quotes the sentinel text must parse as JSON.
	analysis, err := commands.ParseAnalysis(`{"whiskyName": "Lagavulin 16", "summary": "Reviewer jokes this is NOT A WHISKY REVIEW but it clearly is."}`)
	require.NoError(t, err)
	assert.False(t, analysis.NotAWhiskyReview)
	assert.Equal(t, "Lagavulin 16", analysis.WhiskyName)
}

func TestParseAnalysisMalformedJson(t *testing.T) {
	_, err := commands.ParseAnalysis(`{"whiskyName": "Oban 14"`)
	require.Error(t, err)
}
