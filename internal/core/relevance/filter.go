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

// Package relevance implements a cheap lexical screen that decides whether a
// transcript is plausibly a whisky review before any model call is spent on
// it. The screen is intentionally permissive: its job is to discard videos
// that are obviously about something else (unboxings, cocktails, vlogs), not
// to judge review quality. The model-side analysis remains the authority and
// can still reject a transcript that passed here.
package relevance

import (
	"strings"
	"unicode"
)

// Scan and threshold policy. A transcript qualifies when the scanned windows
// contain at least MinDomainTerms distinct whisky-domain terms and at least
// MinReviewTerms distinct review-language terms. Both thresholds are
// inclusive.
const (
	MinDomainTerms = 2   // Distinct whisky-domain terms required.
	MinReviewTerms = 1   // Distinct review-language terms required.
	WindowSize     = 200 // Words examined per window.
	MidpointAfter  = 400 // Transcripts longer than this also get a midpoint window.
)

// domainTerms are words and adjacent-word pairs that signal whisky subject
// matter. Matching is case-insensitive against single words and pairs of
// adjacent words.
var domainTerms = []string{
	"whisky", "whiskey", "bourbon", "scotch", "rye",
	"single malt", "blended malt", "single grain", "blend", "dram",
	"distillery", "distilleries", "distilled", "distillation", "distillate",
	"cask", "casks", "barrel", "barrels", "hogshead", "butt", "puncheon",
	"sherry", "oloroso", "pedro ximenez", "px", "port cask", "wine cask",
	"ex-bourbon", "virgin oak", "oak", "charred",
	"peat", "peated", "peaty", "smoke", "smoky", "islay",
	"speyside", "highland", "highlands", "lowland", "lowlands", "campbeltown",
	"kentucky", "tennessee", "irish whiskey", "japanese whisky",
	"cask strength", "barrel proof", "proof", "abv",
	"age statement", "non-age", "nas", "year old", "years old",
	"maturation", "matured", "aged", "finish", "finished", "finishing",
	"palate", "nose", "nosing", "mouthfeel", "chill filtered", "non-chill",
	"natural colour", "natural color", "caramel colouring",
	"malt", "malted", "mash bill", "mashbill", "grain",
	"angel's share", "bottled", "bottling", "batch", "small batch",
}

// reviewTerms are words that signal evaluative review language as opposed to
// incidental mention of whisky.
var reviewTerms = []string{
	"review", "reviewing", "tasting", "taste", "rating", "score",
	"recommend", "verdict", "opinion", "impressions", "thoughts",
	"value", "worth", "price", "buy",
}

type termSet struct {
	unigrams map[string]struct{}
	bigrams  map[string]struct{}
}

func newTermSet(terms []string) termSet {
	set := termSet{
		unigrams: make(map[string]struct{}),
		bigrams:  make(map[string]struct{}),
	}
	for _, term := range terms {
		if strings.Contains(term, " ") {
			set.bigrams[term] = struct{}{}
		} else {
			set.unigrams[term] = struct{}{}
		}
	}
	return set
}

var (
	domainSet = newTermSet(domainTerms)
	reviewSet = newTermSet(reviewTerms)
)

// IsWhiskyReview reports whether the transcript looks like a whisky review.
//
// The scan covers the first WindowSize words, and for transcripts longer than
// MidpointAfter words, a second WindowSize-word window centered at the
// midpoint. Reviews state their subject early, but some videos open with a
// long unrelated preamble; the midpoint window catches those without paying
// to scan the entire text.
func IsWhiskyReview(transcript string) bool {
	words := tokenize(transcript)
	if len(words) == 0 {
		return false
	}

	domainSeen := make(map[string]struct{})
	reviewSeen := make(map[string]struct{})

	if scanWindow(words, 0, WindowSize, domainSeen, reviewSeen) {
		return true
	}

	if len(words) > MidpointAfter {
		start := len(words)/2 - WindowSize/2
		if scanWindow(words, start, WindowSize, domainSeen, reviewSeen) {
			return true
		}
	}

	return qualifies(domainSeen, reviewSeen)
}

// scanWindow accumulates distinct term matches from words[start:start+size]
// into the seen maps. It returns true as soon as the thresholds are met so
// callers can stop early.
func scanWindow(words []string, start, size int, domainSeen, reviewSeen map[string]struct{}) bool {
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > len(words) {
		end = len(words)
	}
	for i := start; i < end; i++ {
		w := words[i]
		if _, ok := domainSet.unigrams[w]; ok {
			domainSeen[w] = struct{}{}
		}
		if _, ok := reviewSet.unigrams[w]; ok {
			reviewSeen[w] = struct{}{}
		}
		if i+1 < end {
			pair := w + " " + words[i+1]
			if _, ok := domainSet.bigrams[pair]; ok {
				domainSeen[pair] = struct{}{}
			}
			if _, ok := reviewSet.bigrams[pair]; ok {
				reviewSeen[pair] = struct{}{}
			}
		}
		if qualifies(domainSeen, reviewSeen) {
			return true
		}
	}
	return false
}

func qualifies(domainSeen, reviewSeen map[string]struct{}) bool {
	return len(domainSeen) >= MinDomainTerms && len(reviewSeen) >= MinReviewTerms
}

// tokenize lower-cases the input and splits it into words, trimming
// punctuation from word edges so "whisky," matches "whisky". Interior
// punctuation is kept so hyphenated terms like "ex-bourbon" survive.
func tokenize(in string) []string {
	fields := strings.Fields(strings.ToLower(in))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) && r != '-' && r != '\''
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
