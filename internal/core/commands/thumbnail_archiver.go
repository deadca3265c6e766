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
// command that mirrors candidate thumbnails into Cloud Storage.
//
// Like transcript archival this is best-effort: provider thumbnail URLs decay
// over time, so a local copy keeps historical results renderable, but a fetch
// or write failure only costs the copy, never the batch. The image bytes are
// sniffed for their real type rather than trusting the URL extension.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/h2non/filetype"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/cor"
	"github.com/daZebra/dram-reviews/internal/core/model"
)

// maxThumbnailBytes bounds a single thumbnail download.
const maxThumbnailBytes = 4 << 20

// ThumbnailArchiver downloads candidate thumbnails and stores them in a GCS
// bucket keyed by video id.
type ThumbnailArchiver struct {
	cor.BaseCommand
	storageClient *storage.Client // The Cloud Storage client.
	httpClient    *http.Client    // The client used for thumbnail downloads.
	bucket        string          // The thumbnail archive bucket.
}

// NewThumbnailArchiver is the constructor for the ThumbnailArchiver command.
func NewThumbnailArchiver(name string, client *storage.Client, bucket string) *ThumbnailArchiver {
	return &ThumbnailArchiver{
		BaseCommand:   *cor.NewBaseCommand(name),
		storageClient: client,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		bucket:        bucket,
	}
}

// IsExecutable requires persisted analyses and a configured bucket.
func (t *ThumbnailArchiver) IsExecutable(context cor.Context) bool {
	analyses, ok := context.Get(GetAnalysesParamName()).([]*model.ReviewAnalysis)
	return ok && len(analyses) > 0 && t.bucket != ""
}

// Execute downloads and stores each candidate's thumbnail.
func (t *ThumbnailArchiver) Execute(context cor.Context) {
	analyses := context.Get(GetAnalysesParamName()).([]*model.ReviewAnalysis)

	archived := 0
	for _, a := range analyses {
		if a.Candidate.ThumbnailUrl == "" {
			continue
		}
		if err := t.archiveOne(context, a); err != nil {
			slog.Warn("thumbnail archive failed",
				"video_id", a.Candidate.Id, "error", err)
			continue
		}
		archived++
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), archived)
}

func (t *ThumbnailArchiver) archiveOne(context cor.Context, a *model.ReviewAnalysis) error {
	req, err := http.NewRequestWithContext(context.GetContext(), http.MethodGet, a.Candidate.ThumbnailUrl, nil)
	if err != nil {
		return err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("thumbnail fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnailBytes))
	if err != nil {
		return err
	}

	contentType := "application/octet-stream"
	extension := "bin"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
		extension = kind.Extension
	}

	name := fmt.Sprintf("%s.%s", a.Candidate.Id, extension)
	return cloud.WriteObject(context.GetContext(), t.storageClient, t.bucket, name, contentType, data)
}
