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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are used for "few-shot" prompting with the generative
// AI models. By embedding a concrete example of the desired JSON output
// structure in the prompt itself, we guide the model to return data that is
// consistent, correctly formatted, and easily parsable.
package model

// GetExampleAnalysis creates a sample AnalyzedTranscript. It is serialized
// into the analyzer prompt so the model sees the exact JSON shape expected
// for a single review, including score ranges and quote collections.
//
// Outputs:
//   - *AnalyzedTranscript: A pointer to a hardcoded analysis object.
func GetExampleAnalysis() *AnalyzedTranscript {
	return &AnalyzedTranscript{
		WhiskyName: "Highland Park 12",
		Age:        "12",
		Region:     "Highlands",
		Abv:        "43",
		Tags:       []string{"non-chill filtered", "no colour added", "single malt"},
		Casks:      []string{"Sherry", "American Oak"},
		TasteNotes: []string{"chocolate", "honey", "vanilla", "subtle smoke", "espresso", "oak"},
		TasteQuotes: []string{
			"It's very light with honey with a bit of vanilla as well.",
			"Subtly smoked but not heavy smoke, kind of caramel sweet.",
		},
		ValueQuotes:  []string{"It's very good value for the money."},
		OpinionQuote: "I really like this blend. It's like a lighter Highland Park.",
		Summary: "Highland Park 12 presents as a complex whisky with a balanced interplay of " +
			"sweet, fruity, floral, and woody notes. The aroma offers hints of honey, vanilla, " +
			"and heather, with a subtle whiff of smoke adding depth. On the palate, it delivers " +
			"a syrupy sweetness followed by a journey of flavors, transitioning from honey and " +
			"vanilla to spicy oak, chocolatey bitterness, and espresso notes. The finish is " +
			"intense and satisfying, making it a great value for both beginners and " +
			"intermediate whisky enthusiasts.",
		SentimentScore:  89,
		OverallScore:    8,
		PriceScore:      7.5,
		ComplexityScore: 8.5,
	}
}

// GetExampleProductSummary creates a sample ProductSummary. It is serialized
// into the summarizer prompt to show the model the aggregate shape, including
// the capped tasting-note list ordered most-important-first.
//
// Outputs:
//   - *ProductSummary: A pointer to a hardcoded product summary object.
func GetExampleProductSummary() *ProductSummary {
	return &ProductSummary{
		ProductName: "highland park 12",
		WhiskyName:  "Highland Park 12",
		Age:         "12",
		Region:      "Highlands",
		Abv:         "43",
		Tags:        []string{"non-chill filtered", "no colour added", "single malt"},
		Casks:       []string{"Sherry", "American Oak"},
		TasteNotes:  []string{"honey", "vanilla", "chocolate", "subtle smoke", "espresso", "oak"},
		ReviewSummary: "Highland Park 12 presents as a complex whisky with a balanced interplay " +
			"of sweet, fruity, floral, and woody notes. The aroma offers hints of honey, " +
			"vanilla, and heather, with a subtle whiff of smoke adding depth. On the palate, " +
			"it delivers a syrupy sweetness followed by a journey of flavors, transitioning " +
			"from honey and vanilla to spicy oak, chocolatey bitterness, and espresso notes. " +
			"The finish is intense and satisfying, making it a great value for both beginners " +
			"and intermediate whisky enthusiasts.",
		SentimentScore:  89,
		OverallScore:    8,
		PriceScore:      7.5,
		ComplexityScore: 8.5,
	}
}
