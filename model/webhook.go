/*
Copyright 2025 PayGrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import "time"

// Webhook is a merchant callback registration as listed by the gateway.
type Webhook struct {
	WebhookID string    `json:"webhook_id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// WebhookEvent is the payload the gateway POSTs to a registered webhook
// when a transaction changes state. Data carries the same status envelope
// shape as the polling endpoints.
type WebhookEvent struct {
	Event     string         `json:"event"`
	Kind      ReferenceKind  `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Data      StatusEnvelope `json:"data"`
}

// Reference extracts the transaction reference the event applies to.
func (e *WebhookEvent) Reference() TransactionReference {
	kind := e.Kind
	if kind != RefPayment && kind != RefPayout {
		kind = RefPayment
	}
	return TransactionReference{Kind: kind, ID: e.Data.ID}
}
