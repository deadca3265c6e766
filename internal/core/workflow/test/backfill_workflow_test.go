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

// This file holds the integration test for the backfill workflow. It runs
// the full pipeline (video search, transcripts, analysis, summarization,
// persistence) against the live services provisioned by base_test.go.
package workflow_test

import (
	"testing"

	"github.com/zeebo/assert"

	"github.com/daZebra/dram-reviews/internal/core/services"
	"github.com/daZebra/dram-reviews/internal/core/workflow"
	test "github.com/daZebra/dram-reviews/internal/testutil"
)

func TestBackfillWorkflow(t *testing.T) {
	if !integrationEnabled() {
		t.Skipf("set %s to run the live backfill integration test", integrationEnvVar)
	}

	assert.NotNil(t, cloudClients.AgentModels["analyzer"])
	assert.NotNil(t, cloudClients.AgentModels["summarizer"])

	reviewService := &services.ReviewService{
		BigqueryClient: cloudClients.BigQueryClient,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		ReviewTable:    config.BigQueryDataSource.ReviewTable,
	}
	productService := &services.ProductService{
		BigqueryClient: cloudClients.BigQueryClient,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		ProductTable:   config.BigQueryDataSource.ProductTable,
	}

	backfill := workflow.NewBackfillWorkflow(config, cloudClients, reviewService, productService)

	query := "highland park 12"
	logger.Info("running backfill", "query", query)
	err := backfill.Run(ctx, query)
	test.HandleErr(err, t)

	// The pipeline must have left something queryable behind.
	count, err := reviewService.CountByQuery(ctx, query)
	test.HandleErr(err, t)
	assert.True(t, count > 0)
}
