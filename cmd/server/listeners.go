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

// Package main contains the logic for setting up and starting the Pub/Sub
// message listeners. Operators pre-warm popular queries by publishing to the
// search trigger topic; each message runs the full backfill workflow so the
// first real user search is answered from the store.
package main

import (
	"context"
	"log/slog"

	"github.com/daZebra/dram-reviews/internal/cloud"
	"github.com/daZebra/dram-reviews/internal/core/workflow"
)

// searchTriggerTopicKey is the logical name of the pre-warm subscription in
// the topic_subscriptions config section.
const searchTriggerTopicKey = "SearchTriggerTopic"

// SetupListeners attaches the backfill workflow to the pre-warm topic
// listener and starts it. A deployment without the subscription configured
// simply runs without pre-warming.
func SetupListeners(cloudClients *cloud.ServiceClients, backfill *workflow.BackfillWorkflow, ctx context.Context) {
	listener, ok := cloudClients.PubSubListeners[searchTriggerTopicKey]
	if !ok {
		slog.Info("search trigger subscription not configured; pre-warming disabled")
		return
	}
	listener.SetCommand(backfill)
	listener.Listen(ctx)
}
