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
// command that archives raw transcripts to Cloud Storage after persistence.
//
// Archival is strictly best-effort: the reviews are already durable in the
// warehouse by the time this command runs, so a storage failure is logged and
// the chain continues. Only genuinely fetched transcripts are archived;
// fallback title + description text adds nothing over the persisted row.
package commands

import (
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/model"
)

// TranscriptArchiver writes raw transcript text objects to a GCS bucket.
type TranscriptArchiver struct {
	cor.BaseCommand
	client *storage.Client // The Cloud Storage client.
	bucket string          // The transcript archive bucket.
}

// NewTranscriptArchiver is the constructor for the TranscriptArchiver command.
func NewTranscriptArchiver(name string, client *storage.Client, bucket string) *TranscriptArchiver {
	return &TranscriptArchiver{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		bucket:      bucket,
	}
}

// IsExecutable requires persisted analyses and a configured bucket.
func (t *TranscriptArchiver) IsExecutable(context cor.Context) bool {
	analyses, ok := context.Get(GetAnalysesParamName()).([]*model.ReviewAnalysis)
	return ok && len(analyses) > 0 && t.bucket != ""
}

// Execute archives each fetched transcript under its video id.
func (t *TranscriptArchiver) Execute(context cor.Context) {
	analyses := context.Get(GetAnalysesParamName()).([]*model.ReviewAnalysis)

	archived := 0
	for _, a := range analyses {
		if !a.TranscriptAvailable {
			continue
		}
		name := a.Candidate.Id + ".txt"
		if err := cloud.WriteObject(context.GetContext(), t.client, t.bucket, name, "text/plain; charset=utf-8", []byte(a.Transcript)); err != nil {
			slog.Warn("transcript archive write failed",
				"video_id", a.Candidate.Id, "bucket", t.bucket, "error", err)
			continue
		}
		archived++
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), archived)
}
