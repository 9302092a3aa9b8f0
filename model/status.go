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

import (
	"fmt"
	"strings"
)

// Status is the canonical transaction status reported by the gateway.
// The gateway emits several aliases on the wire (completed, processing);
// ParseStatus folds them into the canonical set so nothing above the
// adapter boundary has to know about backend field drift.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirming Status = "confirming"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
)

// ParseStatus canonicalizes a wire status value. Unknown values are
// rejected rather than guessed at.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return StatusPending, nil
	case "confirming", "processing":
		return StatusConfirming, nil
	case "confirmed", "completed":
		return StatusConfirmed, nil
	case "failed", "rejected":
		return StatusFailed, nil
	case "expired":
		return StatusExpired, nil
	default:
		return "", fmt.Errorf("unknown transaction status %q", raw)
	}
}

// StatusRecord is the result of one status query. Records are immutable;
// every poll replaces the previous record wholesale.
type StatusRecord struct {
	Status                Status `json:"status"`
	Confirmations         int    `json:"confirmations,omitempty"`
	RequiredConfirmations int    `json:"required_confirmations,omitempty"`
	TxHash                string `json:"tx_hash,omitempty"`
	FailureReason         string `json:"failure_reason,omitempty"`
}

// FailedRecord builds the record surfaced when the gateway reports a
// terminal business failure outside of a normal status payload.
func FailedRecord(reason string) *StatusRecord {
	return &StatusRecord{Status: StatusFailed, FailureReason: reason}
}

// StatusEnvelope mirrors the raw status payload the gateway returns from
// GET /addresses/{id}, GET /transactions/{id} and webhook callbacks. The
// backend is inconsistent about field names across endpoints (txHash vs
// transactionHash, camel and snake case), so both spellings are accepted
// and folded into one canonical StatusRecord here, at the boundary.
type StatusEnvelope struct {
	ID                    string `json:"id"`
	Status                string `json:"status"`
	Confirmations         *int   `json:"confirmations,omitempty"`
	RequiredConfirmations *int   `json:"required_confirmations,omitempty"`
	RequiredAlt           *int   `json:"requiredConfirmations,omitempty"`
	TxHash                string `json:"txHash,omitempty"`
	TransactionHash       string `json:"transactionHash,omitempty"`
	FailureReason         string `json:"failure_reason,omitempty"`
	FailureReasonAlt      string `json:"failureReason,omitempty"`
}

// Record normalizes the envelope into a canonical StatusRecord.
func (e *StatusEnvelope) Record() (*StatusRecord, error) {
	status, err := ParseStatus(e.Status)
	if err != nil {
		return nil, err
	}

	rec := &StatusRecord{Status: status}
	if e.Confirmations != nil {
		rec.Confirmations = *e.Confirmations
	}
	if e.RequiredConfirmations != nil {
		rec.RequiredConfirmations = *e.RequiredConfirmations
	} else if e.RequiredAlt != nil {
		rec.RequiredConfirmations = *e.RequiredAlt
	}
	if rec.Confirmations < 0 || rec.RequiredConfirmations < 0 {
		return nil, fmt.Errorf("negative confirmation count in status payload for %q", e.ID)
	}

	rec.TxHash = e.TxHash
	if rec.TxHash == "" {
		rec.TxHash = e.TransactionHash
	}
	rec.FailureReason = e.FailureReason
	if rec.FailureReason == "" {
		rec.FailureReason = e.FailureReasonAlt
	}
	return rec, nil
}
