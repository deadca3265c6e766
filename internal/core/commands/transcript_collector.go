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
// command that collects transcripts for all candidate videos and screens them
// for relevance.
//
// Logic Flow:
//  1. It receives the candidate list from the video search command.
//  2. **Worker Pool Pattern**: transcript fetches are network-bound and
//     independent, so the command fans them out over a pool of goroutines
//     connected by buffered `jobs` and `results` channels, exactly sized to
//     the candidate count, and waits on a `sync.WaitGroup`.
//  3. Each fetch is failure-isolated: a candidate whose transcript cannot be
//     fetched, or comes back shorter than the validity threshold, degrades to
//     its title + description as substitute text instead of aborting the
//     batch. Every candidate therefore carries *some* analyzable text.
//  4. The relevance filter then screens each candidate's effective text;
//     candidates that are obviously not whisky reviews are dropped here so no
//     model tokens are spent on them.
//  5. The surviving candidate transcripts are forwarded. Zero survivors is a
//     meaningful no-results outcome, not an error: the command simply
//     produces an empty list and the rest of the chain stands down.
package commands

import (
	goctx "context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/model"
	"github.com/daZebra/dram-reviews/internal/core/relevance"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TranscriptCollector fetches transcripts for candidates in parallel and
// applies the text fallback and relevance screen.
type TranscriptCollector struct {
	cor.BaseCommand
	client          *cloud.YouTubeTranscriptClient // The transcript provider client.
	numberOfWorkers int                            // The number of concurrent fetch workers.
}

// NewTranscriptCollector is the constructor for the TranscriptCollector command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The transcript provider client.
//   - numberOfWorkers: The size of the worker pool for concurrent fetches.
//
// Outputs:
//   - *TranscriptCollector: A pointer to the newly instantiated command.
func NewTranscriptCollector(name string, client *cloud.YouTubeTranscriptClient, numberOfWorkers int) *TranscriptCollector {
	return &TranscriptCollector{
		BaseCommand:     *cor.NewBaseCommand(name),
		client:          client,
		numberOfWorkers: numberOfWorkers,
	}
}

// IsExecutable requires a non-empty candidate list from the previous command.
func (t *TranscriptCollector) IsExecutable(context cor.Context) bool {
	candidates, ok := context.Get(t.GetInputParam()).([]*model.VideoCandidate)
	return ok && len(candidates) > 0
}

// Execute orchestrates the parallel transcript collection.
func (t *TranscriptCollector) Execute(context cor.Context) {
	candidates := context.Get(t.GetInputParam()).([]*model.VideoCandidate)

	var wg sync.WaitGroup
	jobs := make(chan *transcriptJob, len(candidates))
	results := make(chan *model.CandidateTranscript, len(candidates))

	for w := 1; w <= t.numberOfWorkers; w++ {
		wg.Add(1)
		go transcriptWorker(t.client, jobs, results, &wg)
	}

	for _, candidate := range candidates {
		jobs <- newTranscriptJob(context.GetContext(), t.Tracer, t.GetName(), candidate)
	}
	close(jobs)
	wg.Wait()
	close(results)

	// Keep the provider's relevance ordering: collect by candidate id, then
	// walk the original list.
	byId := make(map[string]*model.CandidateTranscript, len(candidates))
	for r := range results {
		byId[r.Candidate.Id] = r
	}

	survivors := make([]*model.CandidateTranscript, 0, len(candidates))
	for _, candidate := range candidates {
		ct, ok := byId[candidate.Id]
		if !ok {
			continue
		}
		if !relevance.IsWhiskyReview(ct.Text) {
			slog.Info("candidate dropped by relevance screen",
				"video_id", candidate.Id, "title", candidate.Title)
			continue
		}
		survivors = append(survivors, ct)
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetTranscriptsParamName(), survivors)
	context.Add(t.GetOutputParam(), survivors)
}

// transcriptJob carries one candidate and its tracing span through the pool.
type transcriptJob struct {
	ctx       goctx.Context
	span      trace.Span
	candidate *model.VideoCandidate
}

func newTranscriptJob(ctx goctx.Context, tracer trace.Tracer, commandName string, candidate *model.VideoCandidate) *transcriptJob {
	jobCtx, span := tracer.Start(ctx, fmt.Sprintf("%s_fetch", commandName))
	span.SetAttributes(attribute.String("video_id", candidate.Id))
	return &transcriptJob{ctx: jobCtx, span: span, candidate: candidate}
}

// transcriptWorker is the function each pool goroutine runs. Failures never
// propagate: an unavailable transcript yields the fallback text and marks the
// result accordingly.
func transcriptWorker(client *cloud.YouTubeTranscriptClient, jobs <-chan *transcriptJob, results chan<- *model.CandidateTranscript, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		text, err := client.Fetch(j.ctx, j.candidate.Id)
		available := err == nil && model.UsableTranscript(text)

		if available {
			j.span.SetStatus(codes.Ok, "transcript fetched")
		} else {
			// Degrade gracefully: the title and description are enough for
			// the relevance screen and a coarse analysis.
			text = j.candidate.Title + "\n" + j.candidate.Description
			j.span.SetStatus(codes.Error, "transcript unavailable, using fallback text")
			slog.Warn("transcript unavailable",
				"video_id", j.candidate.Id, "error", err)
		}
		j.span.End()

		results <- &model.CandidateTranscript{
			Candidate:           j.candidate,
			Text:                text,
			TranscriptAvailable: available,
		}
	}
}
