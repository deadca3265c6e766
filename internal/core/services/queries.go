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
// This file, `queries.go`, centralizes all the BigQuery SQL query strings used
// by the application's services. Storing queries as constants in a dedicated
// file improves maintainability, readability, and reusability.
//
// Table names cannot be query parameters in BigQuery, so each constant carries
// a single `%s` placeholder for the fully qualified table name, injected with
// `fmt.Sprintf`. Every value — including transcript text, which can contain
// anything a video's captions contain — is bound as a named query parameter
// (`@name`), never concatenated into the SQL.
package services

const (
	// QryMergeReview upserts a single review record keyed by video id. A video
	// re-analyzed by a later search updates its row in place; `created_at` is
	// set only on first insert.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the review table.
	QryMergeReview = "MERGE `%s` T USING (SELECT @video_id AS video_id) S ON T.video_id = S.video_id " +
		"WHEN MATCHED THEN UPDATE SET title = @title, thumbnail_url = @thumbnail_url, channel_title = @channel_title, " +
		"published_at = @published_at, transcript = @transcript, search_query = @search_query, product_name = @product_name, " +
		"age = @age, region = @region, abv = @abv, tags = @tags, casks = @casks, taste_notes = @taste_notes, " +
		"taste_quotes = @taste_quotes, value_quotes = @value_quotes, opinion_quote = @opinion_quote, " +
		"review_summary = @review_summary, sentiment_score = @sentiment_score, overall_score = @overall_score, " +
		"price_score = @price_score, complexity_score = @complexity_score, updated_at = @updated_at " +
		"WHEN NOT MATCHED THEN INSERT (video_id, title, thumbnail_url, channel_title, published_at, transcript, " +
		"search_query, product_name, age, region, abv, tags, casks, taste_notes, taste_quotes, value_quotes, " +
		"opinion_quote, review_summary, sentiment_score, overall_score, price_score, complexity_score, blog_body, " +
		"created_at, updated_at) " +
		"VALUES (@video_id, @title, @thumbnail_url, @channel_title, @published_at, @transcript, @search_query, " +
		"@product_name, @age, @region, @abv, @tags, @casks, @taste_notes, @taste_quotes, @value_quotes, " +
		"@opinion_quote, @review_summary, @sentiment_score, @overall_score, @price_score, @complexity_score, '', " +
		"@created_at, @updated_at)"

	// QryMergeProduct upserts a product summary keyed by the canonical
	// lower-cased product name.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the product table.
	QryMergeProduct = "MERGE `%s` T USING (SELECT @product_name AS product_name) S ON T.product_name = S.product_name " +
		"WHEN MATCHED THEN UPDATE SET whisky_name = @whisky_name, age = @age, region = @region, abv = @abv, " +
		"tags = @tags, casks = @casks, taste_notes = @taste_notes, sentiment_score = @sentiment_score, " +
		"overall_score = @overall_score, price_score = @price_score, complexity_score = @complexity_score, " +
		"review_summary = @review_summary, updated_at = @updated_at " +
		"WHEN NOT MATCHED THEN INSERT (product_name, whisky_name, age, region, abv, tags, casks, taste_notes, " +
		"sentiment_score, overall_score, price_score, complexity_score, review_summary, created_at, updated_at) " +
		"VALUES (@product_name, @whisky_name, @age, @region, @abv, @tags, @casks, @taste_notes, @sentiment_score, " +
		"@overall_score, @price_score, @complexity_score, @review_summary, @created_at, @updated_at)"

	// QryFindReviewsByQuery retrieves the reviews visible to a search: rows
	// whose originating search query or derived product name exactly equals
	// the normalized query. Exact equality is deliberate; fuzzy matching would
	// make cache and store lookups diverge.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the review table.
	QryFindReviewsByQuery = "SELECT * FROM `%s` WHERE search_query = @query OR product_name = @query " +
		"ORDER BY sentiment_score DESC"

	// QryCountReviewsByQuery counts the same visibility set without pulling
	// row data. Used to decide whether a backfill is needed.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the review table.
	QryCountReviewsByQuery = "SELECT COUNT(*) AS total FROM `%s` WHERE search_query = @query OR product_name = @query"

	// QryFindReviewById looks up a single review record by its video id.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the review table.
	QryFindReviewById = "SELECT * FROM `%s` WHERE video_id = @id"

	// QryRecentReviews lists the most recently updated reviews.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the review table.
	QryRecentReviews = "SELECT * FROM `%s` ORDER BY updated_at DESC LIMIT @limit"

	// QryCountReviews counts all review rows, reported alongside the recent
	// review listing.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the review table.
	QryCountReviews = "SELECT COUNT(*) AS total FROM `%s`"

	// QryUpdateReviewBlog stores a lazily generated blog post on its review row.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the review table.
	QryUpdateReviewBlog = "UPDATE `%s` SET blog_body = @blog, updated_at = @updated_at WHERE video_id = @id"

	// QryFindProductByName looks up a product summary by its canonical name.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the product table.
	QryFindProductByName = "SELECT * FROM `%s` WHERE product_name = @name"

	// QryRecentProductNames returns the names of the most recently created
	// products, newest first. This backs the "recent searches" endpoint.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the product table.
	QryRecentProductNames = "SELECT product_name FROM `%s` ORDER BY created_at DESC LIMIT @limit"

	// QryListProducts lists product summaries ordered by sentiment. Facet
	// conditions are appended between the table clause and the ORDER BY by the
	// product service; each condition requires a value to be an element of one
	// of the repeated columns (taste_notes, casks, tags).
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the product table.
	// - `%s`: The WHERE clause built from the validated facet filters; empty
	//   when no filters apply.
	QryListProducts = "SELECT * FROM `%s` %s ORDER BY sentiment_score DESC"

	// QryCountProducts counts product rows matching the same facet clause.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the product table.
	// - `%s`: The WHERE clause built from the validated facet filters.
	QryCountProducts = "SELECT COUNT(*) AS total FROM `%s` %s"
)
