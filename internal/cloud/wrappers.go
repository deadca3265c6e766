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

// Package cloud provides components for interacting with Google Cloud services.
// This file implements a wrapper around the standard Generative AI client. The
// wrapper uses the Decorator pattern to add rate limiting and a retry
// mechanism to the Generative AI model without altering the client itself.
//
// Why this matters:
//   - Rate Limiting: Vertex AI enforces request quotas. The transcript
//     analyzer fans out one model call per video, so an uncapped burst of
//     even a single search's worth of candidates can trip the quota.
//   - Retry Logic: Model calls can fail for transient reasons. The wrapper
//     retries a failed request before giving up, so a single flaky call does
//     not sink the whole analysis batch.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: Wraps a model name, its generation config,
//     and a handle to the model API behind a rate limiter.
//
// Functions:
//   - NewQuotaAwareModel: Constructor for the wrapped model.
//   - GenerateContent: Intercepts calls to the AI model to enforce rate
//     limiting and retries.
package cloud

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// QuotaAwareGenerativeAIModel is a decorator that pairs a Vertex AI model
// with its generation config and a rate limiter. All calls to the model flow
// through GenerateContent so the limiter sees every request.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // Generation parameters applied to every request.
	ModelName               string                       // The Vertex AI model identifier, e.g. "gemini-2.0-flash".
	ModelHandle             *genai.Models                // Handle to the model API on the shared genai client.
	RateLimit               rate.Limiter                 // Token bucket controlling request frequency.
}

// NewQuotaAwareModel creates a new QuotaAwareGenerativeAIModel. It takes the
// generation config, the model name, the model handle, and a rate limit in
// requests per second.
//
// Inputs:
//   - wrapped: The *genai.GenerateContentConfig applied to each request.
//   - name: The Vertex AI model name.
//   - modelHandle: The *genai.Models handle from the shared client.
//   - requestsPerSecond: The maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, modelHandle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		// Allows a burst of `requestsPerSecond` events and replenishes the
		// token bucket at one token per second.
		RateLimit: *rate.NewLimiter(rate.Every(time.Second/1), requestsPerSecond),
	}
}

// GenerateContent wraps the underlying model call with rate limiting and
// retries.
//
// Logic Flow:
//  1. Check the rate limiter.
//  2. If a request is allowed:
//     a. Call the underlying model.
//     b. If it fails, check the retry count carried in the context.
//     c. If retries remain, wait and try again.
//     d. Otherwise return the error.
//  3. If the request is NOT allowed (rate-limited), wait briefly and re-queue.
//
// Inputs:
//   - ctx: The context for the request; also carries retry state.
//   - content: The content forming the prompt.
//
// Outputs:
//   - *genai.GenerateContentResponse: The model response on success.
//   - error: An error if the request fails after all retries.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (resp *genai.GenerateContentResponse, err error) {
	if q.RateLimit.Allow() {
		resp, err = q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
		if err != nil {
			// Track the attempt number in the context so the recursion
			// terminates.
			retryCount, ok := ctx.Value("retry").(int)
			if !ok {
				retryCount = 0
			}
			if retryCount > 3 {
				return nil, errors.New("failed generation on max retries")
			}
			errCtx := context.WithValue(ctx, "retry", retryCount+1)
			// Give the service time to recover before retrying.
			time.Sleep(time.Minute * 1)
			return q.GenerateContent(errCtx, content)
		}
		return resp, err
	}
	// Rate limited: pause this request and try to obtain a token again.
	time.Sleep(time.Second * 5)
	return q.GenerateContent(ctx, content)
}
