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
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/daZebra/dram-reviews/internal/core/model"
	"github.com/daZebra/dram-reviews/internal/core/services"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"
	"google.golang.org/api/iterator"
)

// fakeReviewStore is an in-memory ReviewStore that records how often it was
// consulted.
type fakeReviewStore struct {
	reviews    map[string][]*model.ReviewRecord
	countCalls int
	findCalls  int
	err        error
}

func (f *fakeReviewStore) FindByQuery(_ context.Context, query string) ([]*model.ReviewRecord, error) {
	f.findCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.reviews[query], nil
}

func (f *fakeReviewStore) CountByQuery(_ context.Context, query string) (int, error) {
	f.countCalls++
	if f.err != nil {
		return 0, f.err
	}
	return len(f.reviews[query]), nil
}

type fakeProductStore struct {
	products map[string]*model.ProductSummary
}

func (f *fakeProductStore) Get(_ context.Context, name string) (*model.ProductSummary, error) {
	if p, ok := f.products[name]; ok {
		return p, nil
	}
	return nil, iterator.Done
}

// fakeBackfiller simulates the backfill workflow by dropping prepared records
// into the review store when it runs.
type fakeBackfiller struct {
	runs     int
	err      error
	store    *fakeReviewStore
	produces []*model.ReviewRecord
}

func (f *fakeBackfiller) Run(_ context.Context, query string) error {
	f.runs++
	if f.produces != nil {
		f.store.reviews[query] = append(f.store.reviews[query], f.produces...)
	}
	return f.err
}

func makeReviews(query string, n int) []*model.ReviewRecord {
	out := make([]*model.ReviewRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &model.ReviewRecord{
			VideoId:     string(rune('a'+i)) + query,
			SearchQuery: query,
			ProductName: query,
		})
	}
	return out
}

func newService(store *fakeReviewStore, backfill *fakeBackfiller) *services.SearchService {
	return &services.SearchService{
		Reviews:        store,
		Products:       &fakeProductStore{products: map[string]*model.ProductSummary{}},
		Backfill:       backfill,
		Cache:          services.NewSearchCache(10 * time.Minute),
		MinQueryLength: 3,
		MinReviewCount: 3,
	}
}

func TestShortQueryIsNoOp(t *testing.T) {
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{}}
	backfill := &fakeBackfiller{store: store}
	svc := newService(store, backfill)

	result, err := svc.Search(context.Background(), "  ab ")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 0, store.countCalls)
	assert.Equal(t, 0, backfill.runs)
}

func TestSufficientStoreSkipsBackfill(t *testing.T) {
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{
		"ardbeg 10": makeReviews("ardbeg 10", 3),
	}}
	backfill := &fakeBackfiller{store: store}
	svc := newService(store, backfill)

	result, err := svc.Search(context.Background(), "Ardbeg 10")
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 0, backfill.runs)
}

func TestInsufficientStoreTriggersBackfill(t *testing.T) {
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{}}
	backfill := &fakeBackfiller{store: store, produces: makeReviews("ardbeg 10", 4)}
	svc := newService(store, backfill)

	result, err := svc.Search(context.Background(), "ardbeg 10")
	require.NoError(t, err)
	assert.Equal(t, 1, backfill.runs)
	assert.Equal(t, 4, result.TotalCount)
}

func TestPartialStoreServedWithoutBackfill(t *testing.T) {
	// Two reviews exist, below the full-set threshold of three. The partial
	// set is served as-is; the backfill must not run over real data.
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{
		"ardbeg 10": makeReviews("ardbeg 10", 2),
	}}
	backfill := &fakeBackfiller{store: store, produces: makeReviews("ardbeg 10", 3)}
	svc := newService(store, backfill)

	result, err := svc.Search(context.Background(), "ardbeg 10")
	require.NoError(t, err)
	assert.Equal(t, 0, backfill.runs)
	assert.Equal(t, 2, result.TotalCount)
}

func TestRepeatedSearchServedFromCache(t *testing.T) {
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{
		"ardbeg 10": makeReviews("ardbeg 10", 3),
	}}
	backfill := &fakeBackfiller{store: store}
	svc := newService(store, backfill)

	first, err := svc.Search(context.Background(), "ardbeg 10")
	require.NoError(t, err)

	callsAfterFirst := store.countCalls + store.findCalls
	second, err := svc.Search(context.Background(), "  ARDBEG 10 ")
	require.NoError(t, err)

	// Identical payload, and no further store or backfill traffic.
	assert.Equal(t, first.TotalCount, second.TotalCount)
	assert.Equal(t, callsAfterFirst, store.countCalls+store.findCalls)
	assert.Equal(t, 0, backfill.runs)
}

func TestPartialBackfillStillServes(t *testing.T) {
	// The backfill fails mid-flight but persisted two reviews first.
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{}}
	backfill := &fakeBackfiller{
		store:    store,
		produces: makeReviews("ardbeg 10", 2),
		err:      errors.New("provider quota exhausted"),
	}
	svc := newService(store, backfill)

	result, err := svc.Search(context.Background(), "ardbeg 10")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
}

func TestFruitlessBackfillFailureSurfaces(t *testing.T) {
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{}}
	backfill := &fakeBackfiller{store: store, err: errors.New("provider unreachable")}
	svc := newService(store, backfill)

	_, err := svc.Search(context.Background(), "ardbeg 10")
	require.Error(t, err)
	require.Contains(t, err.Error(), "provider unreachable")
}

func TestFruitlessBackfillSuccessIsEmptyNotError(t *testing.T) {
	// The provider genuinely had nothing; that is a valid empty outcome.
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{}}
	backfill := &fakeBackfiller{store: store}
	svc := newService(store, backfill)

	result, err := svc.Search(context.Background(), "zzzz nonexistent dram")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 1, backfill.runs)
}

func TestNoCandidatesMapsToEmptyResult(t *testing.T) {
	// The provider found no videos at all: the workflow fails with the
	// sentinel, but the user sees an ordinary empty result.
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{}}
	backfill := &fakeBackfiller{store: store, err: fmt.Errorf("backfill: %w", model.ErrNoCandidates)}
	svc := newService(store, backfill)

	result, err := svc.Search(context.Background(), "zzzz nonexistent dram")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalCount)
}

func TestProductSummaryAttachedWhenPresent(t *testing.T) {
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{
		"ardbeg 10": makeReviews("ardbeg 10", 3),
	}}
	backfill := &fakeBackfiller{store: store}
	svc := newService(store, backfill)
	svc.Products = &fakeProductStore{products: map[string]*model.ProductSummary{
		"ardbeg 10": {ProductName: "ardbeg 10", WhiskyName: "Ardbeg 10"},
	}}

	result, err := svc.Search(context.Background(), "ardbeg 10")
	require.NoError(t, err)
	require.NotNil(t, result.Product)
	assert.Equal(t, "Ardbeg 10", result.Product.WhiskyName)
}

func TestStoreErrorSurfaces(t *testing.T) {
	store := &fakeReviewStore{reviews: map[string][]*model.ReviewRecord{}, err: errors.New("bigquery down")}
	backfill := &fakeBackfiller{store: store}
	svc := newService(store, backfill)

	_, err := svc.Search(context.Background(), "ardbeg 10")
	require.Error(t, err)
}
