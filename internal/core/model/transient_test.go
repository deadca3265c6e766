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

package model_test

import (
	"strings"
	"testing"

	"github.com/daZebra/dram-reviews/internal/core/model"
	"github.com/zeebo/assert"
)

func TestUsableTranscript(t *testing.T) {
	long := strings.Repeat("a peaty dram with a long smoky finish ", 4)

	assert.True(t, model.UsableTranscript(long))

	// The unavailability sentinel never counts as text.
	assert.False(t, model.UsableTranscript(model.TranscriptUnavailable))

	// Below the validity threshold.
	assert.False(t, model.UsableTranscript("too short"))
	assert.False(t, model.UsableTranscript(""))

	// Exactly at the threshold is valid.
	assert.True(t, model.UsableTranscript(strings.Repeat("x", model.MinTranscriptLength)))
}
