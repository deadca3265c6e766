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

// Package main contains the setup and initialization logic for the
// application's state. This file creates the centralized state manager that
// holds all shared dependencies: configuration, Google Cloud service clients,
// the data access services, the search orchestrator, and the backfill
// workflow.
//
// Functions:
//   - SetupOS: Points the configuration loader at the right TOML files.
//   - GetConfig: A singleton accessor for the loaded configuration.
//   - InitState: Creates all clients and services and starts the listeners.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/services"
	"github.com/daZebra/dram-reviews/internal/core/workflow"
)

// StateManager holds all the shared dependencies for the application, acting
// as a centralized container for service clients and configuration.
type StateManager struct {
	config         *cloud.Config
	cloud          *cloud.ServiceClients
	searchService  *services.SearchService
	reviewService  *services.ReviewService
	productService *services.ProductService
	blogService    *services.BlogService
}

// state is the single instance of StateManager for the process.
var state = &StateManager{}

// SetupOS sets the environment variables the configuration loader uses to
// locate the TOML files. The runtime defaults to "local"; deployments override
// GCP_RUNTIME to select their own overlay file.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration,
// loading it from the TOML files on first use.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState initializes the entire application state: cloud clients, data
// access services, the backfill workflow, the search orchestrator, the blog
// generator, and the Pub/Sub listeners.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	datasetName := config.BigQueryDataSource.DatasetName

	state.reviewService = &services.ReviewService{
		BigqueryClient: cloudClients.BigQueryClient,
		DatasetName:    datasetName,
		ReviewTable:    config.BigQueryDataSource.ReviewTable,
	}

	state.productService = &services.ProductService{
		BigqueryClient: cloudClients.BigQueryClient,
		DatasetName:    datasetName,
		ProductTable:   config.BigQueryDataSource.ProductTable,
	}

	// The backfill workflow serves both the orchestrator and the pre-warm
	// listener; one instance is shared by both entry points.
	backfill := workflow.NewBackfillWorkflow(config, cloudClients, state.reviewService, state.productService)

	state.searchService = &services.SearchService{
		Reviews:        state.reviewService,
		Products:       state.productService,
		Backfill:       backfill,
		Cache:          services.NewSearchCache(time.Duration(config.Search.CacheTTLMinutes) * time.Minute),
		MinQueryLength: config.Search.MinQueryLength,
		MinReviewCount: config.Search.MinReviewCount,
	}

	state.blogService = services.NewBlogService(
		state.reviewService,
		cloudClients.AgentModels["blogger"],
		config.PromptTemplates.BloggerPrompt)

	SetupListeners(cloudClients, backfill, ctx)
}
