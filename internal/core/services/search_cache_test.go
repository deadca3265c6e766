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

package services_test

import (
	"testing"
	"time"

	"github.com/daZebra/dram-reviews/internal/core/model"
	"github.com/daZebra/dram-reviews/internal/core/services"
	"github.com/zeebo/assert"
)

func newResult(total int) *model.SearchResult {
	return &model.SearchResult{Reviews: []*model.ReviewRecord{}, TotalCount: total}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ardbeg 10", services.Normalize("  Ardbeg 10 "))
	assert.Equal(t, "lagavulin", services.Normalize("LAGAVULIN"))
	assert.Equal(t, "", services.Normalize("   "))
}

func TestCacheHitWithinTTL(t *testing.T) {
	cache := services.NewSearchCache(10 * time.Minute)
	now := time.Now()
	cache.SetClock(func() time.Time { return now })

	cache.Put("ardbeg 10", newResult(3))

	now = now.Add(9 * time.Minute)
	got := cache.Get("ardbeg 10")
	assert.NotNil(t, got)
	assert.Equal(t, 3, got.TotalCount)
}

func TestCacheExpiryAtTTLBoundary(t *testing.T) {
	cache := services.NewSearchCache(10 * time.Minute)
	now := time.Now()
	cache.SetClock(func() time.Time { return now })

	cache.Put("ardbeg 10", newResult(3))

	// Exactly at the TTL the entry is gone.
	now = now.Add(10 * time.Minute)
	assert.Nil(t, cache.Get("ardbeg 10"))

	// And stays gone.
	assert.Nil(t, cache.Get("ardbeg 10"))
}

func TestCachePutRestartsTTL(t *testing.T) {
	cache := services.NewSearchCache(10 * time.Minute)
	now := time.Now()
	cache.SetClock(func() time.Time { return now })

	cache.Put("ardbeg 10", newResult(3))
	now = now.Add(8 * time.Minute)
	cache.Put("ardbeg 10", newResult(5))

	now = now.Add(8 * time.Minute)
	got := cache.Get("ardbeg 10")
	assert.NotNil(t, got)
	assert.Equal(t, 5, got.TotalCount)
}

func TestCacheMiss(t *testing.T) {
	cache := services.NewSearchCache(10 * time.Minute)
	assert.Nil(t, cache.Get("never stored"))
}
