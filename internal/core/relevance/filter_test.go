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

package relevance_test

import (
	"strings"
	"testing"

	"github.com/daZebra/dram-reviews/internal/core/relevance"
	"github.com/zeebo/assert"
)

func TestAcceptsTypicalReviewOpening(t *testing.T) {
	transcript := "welcome back everyone today we are tasting the Ardbeg ten year old " +
		"a heavily peated Islay single malt and giving it a full review"
	assert.True(t, relevance.IsWhiskyReview(transcript))
}

func TestRejectsUnrelatedContent(t *testing.T) {
	transcript := "in this video we unbox the latest smartphone and walk through " +
		"the camera the battery life and the new charging cable"
	assert.False(t, relevance.IsWhiskyReview(transcript))
}

func TestRejectsIncidentalMention(t *testing.T) {
	// Mentions whisky twice in passing but contains no review language.
	transcript := "my grandfather kept a bottle of whisky on the shelf next to " +
		"the scotch his brother sent him the year the farm flooded"
	assert.False(t, relevance.IsWhiskyReview(transcript))
}

func TestRejectsCocktailContentWithoutReviewLanguage(t *testing.T) {
	transcript := "pour two ounces of bourbon over ice add sugar and bitters " +
		"then stir and garnish with an orange peel for a classic old fashioned"
	assert.False(t, relevance.IsWhiskyReview(transcript))
}

func TestThresholdsAreInclusive(t *testing.T) {
	// Exactly two distinct domain terms and exactly one review term.
	transcript := "this whisky came from a fine cask and here is my review"
	assert.True(t, relevance.IsWhiskyReview(transcript))

	// One domain term short of the threshold.
	assert.False(t, relevance.IsWhiskyReview("this whisky deserves a review"))
}

func TestAdjacentBigramMatching(t *testing.T) {
	transcript := "tonight a single malt bottled at cask strength gets the full tasting treatment"
	assert.True(t, relevance.IsWhiskyReview(transcript))
}

func TestPunctuationDoesNotBlockMatches(t *testing.T) {
	transcript := "Whisky! Specifically bourbon, and peat... here's my review:"
	assert.True(t, relevance.IsWhiskyReview(transcript))
}

func TestMidpointWindowCatchesLatePreamble(t *testing.T) {
	// 300 words of filler, then the review content. The opening window misses
	// it, the midpoint window of the >400-word transcript finds it.
	filler := strings.Repeat("um so anyway like I was saying about the weather ", 30)
	review := strings.Repeat("tasting this peated islay whisky for review with notes of smoke ", 20)
	transcript := filler + review

	assert.True(t, relevance.IsWhiskyReview(transcript))
}

func TestShortTranscriptBeyondWindowIsIgnored(t *testing.T) {
	// Review terms buried past the first window of a transcript too short to
	// earn a midpoint window do not count.
	filler := strings.Repeat("talking about gardening tips and tomato plants all day ", 25) // 200 words
	tail := " whisky bourbon review"
	assert.False(t, relevance.IsWhiskyReview(filler+tail))
}

func TestEmptyTranscript(t *testing.T) {
	assert.False(t, relevance.IsWhiskyReview(""))
	assert.False(t, relevance.IsWhiskyReview("   \n\t  "))
}
