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

// Package workflow_test contains the integration tests for the core
// application workflows. This file, `base_test.go`, provides the setup and
// teardown for the suite through `TestMain`: configuration, telemetry, and
// the Google Cloud service clients are initialized once and shared by every
// test in the package. The whole suite is gated on an environment variable so
// it only provisions live clients when an integration environment is
// actually available.
package workflow_test

import (
	"context"
	"os"
	"testing"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/telemetry"
	test "github.com/daZebra/dram-reviews/internal/testutil"
)

// integrationEnvVar gates the live suite. Set it to any value in an
// environment with GCP credentials, a provisioned BigQuery dataset, and a
// YouTube API key in the test config overlay.
const integrationEnvVar = "DRAM_REVIEWS_INTEGRATION"

const tName = "github.com/daZebra/dram-reviews/tests/workflow"

// Shared suite resources, initialized once in TestMain when the integration
// environment is enabled.
var (
	ctx          context.Context       // The root context for all tests in the suite.
	config       *cloud.Config         // The application configuration loaded from test files.
	cloudClients *cloud.ServiceClients // Holds all initialized Google Cloud service clients.
)

// logger bridges the suite's own log lines into OpenTelemetry so test runs
// show up alongside the traces the workflow emits.
var logger = otelslog.NewLogger(tName)

func integrationEnabled() bool {
	return os.Getenv(integrationEnvVar) != ""
}

// TestMain runs before any test in the package. When the integration gate is
// closed it runs the suite directly and every test skips itself; otherwise it
// provisions the shared clients and telemetry, runs the suite, and flushes
// telemetry on the way out.
func TestMain(m *testing.M) {
	if !integrationEnabled() {
		os.Exit(m.Run())
	}

	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	config = test.GetConfig()

	telemetry.SetupLogging()
	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		panic(err)
	}

	cloudClients, err = cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	defer cloudClients.Close()

	logger.Info("completed test setup")

	exitCode := m.Run()

	if err := shutdown(ctx); err != nil {
		logger.Error("failed to shutdown telemetry", "error", err)
	}

	os.Exit(exitCode)
}
