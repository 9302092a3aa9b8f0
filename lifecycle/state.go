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

package lifecycle

import (
	"context"

	"github.com/paygridhq/paygrid/model"
)

// State is the lifecycle position of one tracked transaction.
//
// The happy path is INIT → PENDING → CONFIRMING → CONFIRMED. PENDING and
// CONFIRMING can exit to EXPIRED or FAILED, and any non-terminal state
// can exit to CANCELLED on explicit user action. Terminal states absorb
// all further input.
type State string

const (
	StateInit       State = "INIT"
	StatePending    State = "PENDING"
	StateConfirming State = "CONFIRMING"
	StateConfirmed  State = "CONFIRMED"
	StateExpired    State = "EXPIRED"
	StateFailed     State = "FAILED"
	StateCancelled  State = "CANCELLED"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	switch s {
	case StateConfirmed, StateExpired, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// StatusSource wraps a single status round trip: given a transaction
// reference, return its current status record or fail. Implementations
// must not retry and must not hold state; retry policy belongs to the
// PollSession so the two concerns stay independently testable.
type StatusSource interface {
	FetchStatus(ctx context.Context, ref model.TransactionReference) (*model.StatusRecord, error)
}

// Notifier is the presentation layer's view of a session. OnStateChange
// fires once per transition with the record that caused it (nil when the
// transition came from expiry or cancellation before any record arrived).
// OnTick reports the remaining seconds on the countdown.
//
// Both callbacks run on the session's event path; implementations must
// return promptly and must not call back into the session.
type Notifier interface {
	OnStateChange(state State, record *model.StatusRecord)
	OnTick(remainingSeconds int64)
}

// NopNotifier discards all events. Useful when only the Done channel or
// polled State of a session is of interest.
type NopNotifier struct{}

func (NopNotifier) OnStateChange(State, *model.StatusRecord) {}

func (NopNotifier) OnTick(int64) {}
