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
// This file, `product_service.go`, defines the ProductService, the data access
// layer for product summaries in BigQuery. Summaries are the canonical
// per-whisky aggregate over all persisted reviews and are keyed by the
// lower-cased product name.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/daZebra/dram-reviews/internal/core/model"
	"google.golang.org/api/iterator"
)

// facetColumns maps the filter keys accepted by the product listing API to
// the repeated columns they match against. Keys outside this map are invalid
// and cause the filter set to be ignored entirely, returning the unfiltered
// listing rather than an error.
var facetColumns = map[string]string{
	"tasteNotes": "taste_notes",
	"casks":      "casks",
	"tags":       "tags",
}

// ProductService encapsulates the clients and configuration needed to read
// and write product summaries.
type ProductService struct {
	BigqueryClient *bigquery.Client // Client for interacting with Google BigQuery.
	DatasetName    string           // The name of the BigQuery dataset.
	ProductTable   string           // The name of the table holding product summaries.
}

// GetFQN returns the complete, queryable name for the product table,
// formatted with dots instead of colons.
func (s *ProductService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.ProductTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// Get retrieves a product summary by its canonical lower-cased name.
func (s *ProductService) Get(ctx context.Context, name string) (product *model.ProductSummary, err error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryFindProductByName, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "name", Value: strings.ToLower(strings.TrimSpace(name))}}

	itr, err := q.Read(ctx)
	if err != nil {
		return product, err
	}
	product = &model.ProductSummary{}
	err = itr.Next(product)
	return product, err
}

// Upsert writes a product summary, inserting or updating by product name.
func (s *ProductService) Upsert(ctx context.Context, product *model.ProductSummary) error {
	now := time.Now().UTC()
	q := s.BigqueryClient.Query(fmt.Sprintf(QryMergeProduct, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "product_name", Value: product.ProductName},
		{Name: "whisky_name", Value: product.WhiskyName},
		{Name: "age", Value: product.Age},
		{Name: "region", Value: product.Region},
		{Name: "abv", Value: product.Abv},
		{Name: "tags", Value: emptyIfNil(product.Tags)},
		{Name: "casks", Value: emptyIfNil(product.Casks)},
		{Name: "taste_notes", Value: emptyIfNil(product.TasteNotes)},
		{Name: "sentiment_score", Value: product.SentimentScore},
		{Name: "overall_score", Value: product.OverallScore},
		{Name: "price_score", Value: product.PriceScore},
		{Name: "complexity_score", Value: product.ComplexityScore},
		{Name: "review_summary", Value: product.ReviewSummary},
		{Name: "created_at", Value: now},
		{Name: "updated_at", Value: now},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to start product upsert for %s: %w", product.ProductName, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed waiting on product upsert for %s: %w", product.ProductName, err)
	}
	return status.Err()
}

// List returns product summaries ordered by sentiment score, best first,
// along with the total count of products matching the filters.
//
// Filters are facet containment conditions combined with AND: every value
// under a key must be an element of the corresponding repeated column. If any
// filter key is not a recognized facet, the whole filter set is discarded and
// the unfiltered listing is returned.
//
// Inputs:
//   - ctx: The context for the request.
//   - filters: Facet filters keyed by "tasteNotes", "casks", or "tags".
//
// Outputs:
//   - []*model.ProductSummary: The matching products.
//   - int: The total number of matching products.
//   - error: An error if either query fails.
func (s *ProductService) List(ctx context.Context, filters map[string][]string) ([]*model.ProductSummary, int, error) {
	where, params := buildFacetClause(filters)

	q := s.BigqueryClient.Query(fmt.Sprintf(QryListProducts, s.GetFQN(), where))
	q.Parameters = params
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, 0, err
	}
	products := make([]*model.ProductSummary, 0)
	for {
		product := &model.ProductSummary{}
		err := itr.Next(product)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}

	cq := s.BigqueryClient.Query(fmt.Sprintf(QryCountProducts, s.GetFQN(), where))
	cq.Parameters = params
	citr, err := cq.Read(ctx)
	if err != nil {
		return nil, 0, err
	}
	var row countRow
	if err := citr.Next(&row); err != nil {
		return nil, 0, err
	}
	return products, int(row.Total), nil
}

// RecentNames returns the names of the most recently created products,
// newest first. This backs the recent-searches endpoint.
func (s *ProductService) RecentNames(ctx context.Context, limit int) ([]string, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryRecentProductNames, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: int64(limit)}}

	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, limit)
	for {
		var row struct {
			ProductName string `bigquery:"product_name"`
		}
		err := itr.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, row.ProductName)
	}
	return names, nil
}

// buildFacetClause validates the filter keys and builds the WHERE clause and
// its bound parameters. Invalid keys void the entire filter set.
func buildFacetClause(filters map[string][]string) (string, []bigquery.QueryParameter) {
	if len(filters) == 0 {
		return "", nil
	}
	for key := range filters {
		if _, ok := facetColumns[key]; !ok {
			return "", nil
		}
	}

	conditions := make([]string, 0)
	params := make([]bigquery.QueryParameter, 0)
	i := 0
	for key, values := range filters {
		column := facetColumns[key]
		for _, value := range values {
			name := fmt.Sprintf("facet_%d", i)
			conditions = append(conditions, fmt.Sprintf("@%s IN UNNEST(%s)", name, column))
			params = append(params, bigquery.QueryParameter{Name: name, Value: strings.ToLower(strings.TrimSpace(value))})
			i++
		}
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), params
}
