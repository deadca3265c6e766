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
// command that runs the per-video language model analysis.
//
// Logic Flow:
// This is the model-bound heart of the backfill chain. For every surviving
// candidate transcript it asks the analyzer model for a structured extraction
// (scores, tasting notes, quotes) as JSON, guided by a few-shot example.
//
//  1. It receives the surviving candidate transcripts from the collector.
//  2. **Worker Pool Pattern**: one model call per candidate, fanned out over
//     a pool of goroutines with buffered `jobs`/`results` channels sized to
//     the candidate count, awaited with a `sync.WaitGroup`. The quota-aware
//     model wrapper keeps the fan-out inside the provider's rate limits.
//  3. Each response is parsed and normalized at this boundary: the provider
//     sometimes answers with a bare sentinel string instead of JSON, and has
//     used two different key spellings for the off-topic flag over time.
//     `ParseAnalysis` folds all three shapes into the one `NotAWhiskyReview`
//     field so the variance never travels further.
//  4. A call that fails, parses badly, or classifies its content as
//     off-topic drops that one video — never retried here, never fatal for
//     the batch. Successes are collected in candidate order.
//  5. Zero successes is the no-results outcome: an empty list stops the rest
//     of the chain without an error.
package commands

import (
	"bytes"
	goctx "context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NotAWhiskyReviewSentinel is the bare string the analyzer model is
// instructed to answer with when the content is not a whisky review.
const NotAWhiskyReviewSentinel = "NOT A WHISKY REVIEW"

// TranscriptAnalyzer runs the analyzer model over candidate transcripts in
// parallel.
type TranscriptAnalyzer struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	promptTemplate           *template.Template                 // The Go template for the analysis prompt.
	numberOfWorkers          int                                // The number of concurrent workers to spawn.
	geminiInputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewTranscriptAnalyzer is the constructor for the TranscriptAnalyzer command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - model: The rate-limited analyzer model.
//   - prompt: The parsed Go template for the prompt.
//   - numberOfWorkers: The size of the worker pool.
//
// Outputs:
//   - *TranscriptAnalyzer: A pointer to the newly instantiated command.
func NewTranscriptAnalyzer(
	name string,
	model *cloud.QuotaAwareGenerativeAIModel,
	prompt *template.Template,
	numberOfWorkers int) *TranscriptAnalyzer {
	out := &TranscriptAnalyzer{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: model,
		promptTemplate:    prompt,
		numberOfWorkers:   numberOfWorkers}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.retry", out.GetName()))

	return out
}

// IsExecutable requires at least one surviving candidate transcript.
func (t *TranscriptAnalyzer) IsExecutable(context cor.Context) bool {
	transcripts, ok := context.Get(t.GetInputParam()).([]*model.CandidateTranscript)
	return ok && len(transcripts) > 0
}

// Execute orchestrates the parallel analysis of candidate transcripts.
func (t *TranscriptAnalyzer) Execute(context cor.Context) {
	transcripts := context.Get(t.GetInputParam()).([]*model.CandidateTranscript)

	// Few-shot example shared by every prompt in this batch.
	exampleJson, _ := json.Marshal(model.GetExampleAnalysis())
	exampleText := string(exampleJson)

	var wg sync.WaitGroup
	jobs := make(chan *analysisJob, len(transcripts))
	results := make(chan *analysisResult, len(transcripts))

	for w := 1; w <= t.numberOfWorkers; w++ {
		wg.Add(1)
		go analysisWorker(jobs, results, &wg)
	}

	for _, ct := range transcripts {
		jobs <- t.newAnalysisJob(context.GetContext(), ct, exampleText)
	}
	close(jobs)
	wg.Wait()
	close(results)

	byId := make(map[string]*model.ReviewAnalysis, len(transcripts))
	for r := range results {
		if r.err != nil {
			// Drop this video only; the batch proceeds.
			slog.Warn("transcript analysis dropped",
				"video_id", r.videoId, "error", r.err)
			continue
		}
		if r.analysis.Analysis.NotAWhiskyReview {
			slog.Info("analysis classified content as off-topic", "video_id", r.videoId)
			continue
		}
		byId[r.videoId] = r.analysis
	}

	// Restore candidate order for deterministic downstream output.
	analyses := make([]*model.ReviewAnalysis, 0, len(byId))
	for _, ct := range transcripts {
		if a, ok := byId[ct.Candidate.Id]; ok {
			analyses = append(analyses, a)
		}
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetAnalysesParamName(), analyses)
	context.Add(t.GetOutputParam(), analyses)
}

// analysisResult passes one worker outcome back to the aggregator.
type analysisResult struct {
	videoId  string
	analysis *model.ReviewAnalysis
	err      error
}

// analysisJob encapsulates everything a worker needs for one model call.
type analysisJob struct {
	ctx                      goctx.Context
	span                     trace.Span
	transcript               *model.CandidateTranscript
	prompt                   string
	model                    *cloud.QuotaAwareGenerativeAIModel
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
	geminiRetryCounter       metric.Int64Counter
	err                      error
}

func (j *analysisJob) Close(status codes.Code, description string) {
	j.span.SetStatus(status, description)
	j.span.End()
}

func (t *TranscriptAnalyzer) newAnalysisJob(ctx goctx.Context, ct *model.CandidateTranscript, exampleText string) *analysisJob {
	jobCtx, span := t.Tracer.Start(ctx, fmt.Sprintf("%s_genai_analysis", t.GetName()))
	span.SetAttributes(
		attribute.String("video_id", ct.Candidate.Id),
		attribute.Bool("transcript_available", ct.TranscriptAvailable),
	)

	vocabulary := make(map[string]string)
	vocabulary["TITLE"] = ct.Candidate.Title
	vocabulary["CHANNEL"] = ct.Candidate.ChannelTitle
	vocabulary["TRANSCRIPT"] = ct.Text
	vocabulary["EXAMPLE_JSON"] = exampleText

	var doc bytes.Buffer
	if err := t.promptTemplate.Execute(&doc, vocabulary); err != nil {
		return &analysisJob{span: span, transcript: ct, err: err}
	}

	return &analysisJob{
		ctx:                      jobCtx,
		span:                     span,
		transcript:               ct,
		prompt:                   doc.String(),
		model:                    t.generativeAIModel,
		geminiInputTokenCounter:  t.geminiInputTokenCounter,
		geminiOutputTokenCounter: t.geminiOutputTokenCounter,
		geminiRetryCounter:       t.geminiRetryCounter,
	}
}

// analysisWorker is the function each pool goroutine runs.
func analysisWorker(jobs <-chan *analysisJob, results chan<- *analysisResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		if j.err != nil {
			j.Close(codes.Error, "prompt build failed")
			results <- &analysisResult{videoId: j.transcript.Candidate.Id, err: j.err}
			continue
		}

		out, err := cloud.GenerateTextResponse(j.ctx, j.geminiInputTokenCounter, j.geminiOutputTokenCounter, j.geminiRetryCounter, 0, j.model, cloud.NewTextContent(j.prompt))
		if err != nil {
			j.Close(codes.Error, "analysis request failed")
			results <- &analysisResult{videoId: j.transcript.Candidate.Id, err: err}
			continue
		}

		analysis, err := ParseAnalysis(out)
		if err != nil {
			j.Close(codes.Error, "analysis parse failed")
			results <- &analysisResult{videoId: j.transcript.Candidate.Id, err: err}
			continue
		}

		j.Close(codes.Ok, "analysis completed")
		results <- &analysisResult{
			videoId: j.transcript.Candidate.Id,
			analysis: &model.ReviewAnalysis{
				Candidate:           j.transcript.Candidate,
				Transcript:          j.transcript.Text,
				TranscriptAvailable: j.transcript.TranscriptAvailable,
				Analysis:            analysis,
			},
		}
	}
}

// analysisEnvelope is the wire shape of an analyzer response. The off-topic
// flag has been emitted under two different keys by successive prompt
// revisions; both are accepted here.
type analysisEnvelope struct {
	model.AnalyzedTranscript
	NotAWhiskyReviewCamel bool `json:"notAWhiskyReview"`
	NotAWhiskyReviewSnake bool `json:"not_a_whisky_review"`
}

// ParseAnalysis decodes a raw analyzer response into an AnalyzedTranscript,
// normalizing the three off-topic shapes (bare sentinel string, camelCase
// flag, snake_case flag) into the single NotAWhiskyReview field.
//
// Inputs:
//   - raw: The model response text, already stripped of code fences.
//
// Outputs:
//   - *model.AnalyzedTranscript: The parsed analysis. When NotAWhiskyReview
//     is set the remaining fields are meaningless and must not be persisted.
//   - error: An error when the response is neither the sentinel nor valid JSON.
func ParseAnalysis(raw string) (*model.AnalyzedTranscript, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.Contains(strings.ToUpper(trimmed), NotAWhiskyReviewSentinel) && !strings.HasPrefix(trimmed, "{") {
		return &model.AnalyzedTranscript{NotAWhiskyReview: true}, nil
	}

	var envelope analysisEnvelope
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	analysis := envelope.AnalyzedTranscript
	analysis.NotAWhiskyReview = envelope.NotAWhiskyReviewCamel || envelope.NotAWhiskyReviewSnake
	return &analysis, nil
}
