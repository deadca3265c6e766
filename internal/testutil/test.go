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

// Package test provides utility functions and mock data to support the
// application's test suite: a cached test configuration, environment setup
// for the config loader, and sample payloads for the backfill workflow.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/daZebra/dram-reviews/internal/cloud"
)

// StateManager caches the loaded configuration for the duration of a test
// run so the TOML files are read only once.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is not nil. A convenience to cut down on
// boilerplate in integration tests.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestSearchTriggerMessageText returns the JSON payload a pre-warm tool
// publishes to the search trigger topic.
func GetTestSearchTriggerMessageText() string {
	return `{"query": "Highland Park 12"}`
}

// GetTestTranscriptText returns a short transcript excerpt in the register of
// a real whisky review video, usable as analyzer input in tests.
func GetTestTranscriptText() string {
	return `welcome back everyone today we are looking at the highland park 12 year old ` +
		`this is a single malt scotch whisky from the islands bottled at 43 percent ` +
		`it spends its time in sherry seasoned american oak casks on the nose i get ` +
		`honey vanilla and a whisper of that famous heathery peat smoke on the palate ` +
		`it is syrupy sweet up front honey again then spicy oak a chocolatey bitterness ` +
		`and a little espresso right at the end the finish is long and gently smoky ` +
		`for the price i genuinely think this is one of the best value bottles on the ` +
		`shelf my overall rating is a very solid one cheers everyone`
}

// SetupOS points the configuration loader at the test TOML overlay
// (configs/.env.test.toml).
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration; it loads the
// TOML files on first use and caches the result.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
