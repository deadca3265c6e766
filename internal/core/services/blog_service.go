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

// Package services contains the business logic for interacting with data sources.
// This file, `blog_service.go`, defines the BlogService, which turns a
// persisted review into a long-form blog article. Generation is lazy and
// cached by presence: the first request for a review's blog runs the model
// and stores the article on the review row; every later request serves the
// stored article without another model call.
package services

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// BlogService generates and caches blog articles for persisted reviews.
type BlogService struct {
	Reviews *ReviewService                     // Data access for review rows.
	Model   *cloud.QuotaAwareGenerativeAIModel // The blogger agent model.

	promptTemplate     *template.Template
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewBlogService is the constructor for BlogService. It panics if the prompt
// template does not parse, since that is a packaging defect no request can
// recover from.
//
// Inputs:
//   - reviews: The review data access service.
//   - model: The quota-aware blogger model.
//   - promptTemplate: The blogger prompt, a Go text template with {{.TITLE}},
//     {{.CHANNEL}}, and {{.TRANSCRIPT}} placeholders.
//
// Outputs:
//   - *BlogService: A pointer to the newly created service.
func NewBlogService(reviews *ReviewService, model *cloud.QuotaAwareGenerativeAIModel, promptTemplate string) *BlogService {
	tmpl, err := template.New("blogger-prompt").Parse(promptTemplate)
	if err != nil {
		panic(fmt.Sprintf("failed to parse blogger prompt template: %v", err))
	}

	meter := otel.Meter(cor.MeterNamespace)
	inputTokenCounter, _ := meter.Int64Counter("blog-generator.tokens.input")
	outputTokenCounter, _ := meter.Int64Counter("blog-generator.tokens.output")
	retryCounter, _ := meter.Int64Counter("blog-generator.counter.retries")

	return &BlogService{
		Reviews:            reviews,
		Model:              model,
		promptTemplate:     tmpl,
		inputTokenCounter:  inputTokenCounter,
		outputTokenCounter: outputTokenCounter,
		retryCounter:       retryCounter,
	}
}

// GetBlog returns the blog article for a review, generating and persisting it
// on first request.
//
// Inputs:
//   - ctx: The context for the lookup and the possible model call.
//   - videoId: The review's video id.
//
// Outputs:
//   - string: The blog article HTML.
//   - error: An error when the review does not exist, generation fails, or
//     the write-back fails.
func (s *BlogService) GetBlog(ctx context.Context, videoId string) (string, error) {
	review, err := s.Reviews.Get(ctx, videoId)
	if err != nil {
		return "", fmt.Errorf("review %s not found: %w", videoId, err)
	}
	if review.BlogBody != "" {
		return review.BlogBody, nil
	}

	prompt := new(strings.Builder)
	err = s.promptTemplate.Execute(prompt, map[string]string{
		"TITLE":      review.Title,
		"CHANNEL":    review.ChannelTitle,
		"TRANSCRIPT": review.Transcript,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render blogger prompt for %s: %w", videoId, err)
	}

	blog, err := cloud.GenerateTextResponse(
		ctx,
		s.inputTokenCounter,
		s.outputTokenCounter,
		s.retryCounter,
		0,
		s.Model,
		cloud.NewTextContent(prompt.String()))
	if err != nil {
		return "", fmt.Errorf("failed to generate blog for %s: %w", videoId, err)
	}
	blog = strings.TrimSpace(blog)

	if err := s.Reviews.SetBlog(ctx, videoId, blog); err != nil {
		return "", fmt.Errorf("failed to store blog for %s: %w", videoId, err)
	}
	return blog, nil
}
