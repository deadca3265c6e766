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

// Package cloud provides components for interacting with Google Cloud services.
// This file defines a generic, reusable Pub/Sub message listener. The listener
// abstracts the mechanics of receiving messages from a subscription and
// delegates the actual processing to a "Command", keeping transport and
// business logic separate.
//
// The application uses this to pre-warm the review store: a publisher drops a
// search query on a topic, and the attached backfill workflow collects and
// analyzes reviews for that query before any user asks for it.
//
// Logic Flow:
//  1. A PubSubListener is created with a client and a subscription ID.
//  2. A "Command" (the processing chain) is attached to the listener.
//  3. `Listen` starts an asynchronous background goroutine.
//  4. The goroutine waits for messages from the subscription.
//  5. Each message is handed to the attached Command for processing.
//  6. The message is acknowledged only if the Command completes without
//     errors, giving at-least-once processing semantics.
//  7. The process is instrumented with OpenTelemetry spans.
//
// Structs:
//   - PubSubListener: Manages the connection to a Pub/Sub subscription and
//     holds the command that processes incoming messages.
//
// Functions:
//   - NewPubSubListener: Constructor for creating a new PubSubListener.
//   - SetCommand: Attaches a processing command to the listener.
//   - Listen: Starts the background process to receive and handle messages.
package cloud

import (
	"context"
	"log"

	"cloud.google.com/go/pubsub"
	"github.com/daZebra/dram-reviews/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener encapsulates the components needed to listen to a specific
// Pub/Sub subscription. It connects a subscription to a processing command.
// Since listeners have a life-cycle independent of individual API requests,
// they are considered a core "cloud" component.
type PubSubListener struct {
	client       *pubsub.Client       // The client for interacting with the Pub/Sub service.
	subscription *pubsub.Subscription // The subscription this listener pulls messages from.
	command      cor.Command          // The command to execute for each message received.
}

// NewPubSubListener is the constructor for creating a PubSubListener.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client.
//   - subscriptionID: The string ID of the subscription.
//   - command: A cor.Command with the business logic for each message. May be
//     nil; attach it later with SetCommand once the workflow is assembled.
//
// Outputs:
//   - *PubSubListener: A pointer to the newly created listener.
//   - error: Reserved for future construction failures; currently always nil.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	sub := pubsubClient.Subscription(subscriptionID)

	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		command:      command,
	}
	return cmd, nil
}

// SetCommand attaches a command to the listener. This is used when the
// listener is created before the full processing chain is assembled. The
// command is only set if one has not been attached already, so the initial
// configuration is never overwritten.
//
// Inputs:
//   - command: The cor.Command to be executed when a message is received.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts the asynchronous message receiving process in a background
// goroutine so the server keeps handling API requests while listening.
//
// Inputs:
//   - ctx: Controls the lifecycle of the listener. When this context is
//     canceled (e.g., during graceful shutdown), message receiving stops.
func (m *PubSubListener) Listen(ctx context.Context) {
	log.Printf("listening: %s", m.subscription)

	go func() {
		tracer := otel.Tracer("message-listener")

		// Receive blocks and invokes the callback for each arriving message.
		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-message")
			span.SetName("receive-message")
			span.SetAttributes(attribute.String("msg", string(msg.Data)))
			log.Println("received message")

			// Seed a fresh chain context with the raw message as input.
			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "success")
				// Ack only on success so failed messages are redelivered
				// under the subscription's retry policy.
				msg.Ack()
			} else {
				span.SetStatus(codes.Error, "failed")
				for _, e := range chainCtx.GetErrors() {
					log.Printf("error executing chain: %v", e)
				}
			}

			span.End()
		})

		if err != nil {
			log.Printf("error receiving data: %v", err)
		}
	}()
}
