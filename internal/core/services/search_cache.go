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
// This file, `search_cache.go`, defines a small in-memory TTL cache for
// assembled search results. A repeated query within the TTL is answered from
// the cache without touching BigQuery or any external provider, which keeps
// repeated identical searches idempotent and cheap.
package services

import (
	"strings"
	"sync"
	"time"

	"github.com/daZebra/dram-reviews/internal/core/model"
)

// cacheEntry pairs a cached result with the instant it was stored.
type cacheEntry struct {
	result   *model.SearchResult
	storedAt time.Time
}

// SearchCache is a concurrency-safe TTL cache keyed by the normalized search
// query. Expired entries are evicted lazily on read; there is no background
// sweeper, so memory is bounded by the variety of queries seen within a TTL
// window.
type SearchCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time // Clock, injectable for tests.

	entries map[string]cacheEntry
}

// NewSearchCache creates a cache whose entries live for the given TTL.
func NewSearchCache(ttl time.Duration) *SearchCache {
	return &SearchCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// SetClock replaces the cache's time source. Tests use this to step through
// TTL expiry without sleeping.
func (c *SearchCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Normalize canonicalizes a raw user query into the cache (and store lookup)
// key: trimmed of surrounding whitespace and lower-cased.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached result for a normalized query, or nil when the entry
// is absent or expired. An expired entry is removed on the way out.
func (c *SearchCache) Get(query string) *model.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[query]
	if !ok {
		return nil
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, query)
		return nil
	}
	return entry.result
}

// Put stores a result under a normalized query, replacing any previous entry
// and restarting its TTL.
func (c *SearchCache) Put(query string, result *model.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = cacheEntry{result: result, storedAt: c.now()}
}
