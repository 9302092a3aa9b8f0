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

import "github.com/paygridhq/paygrid/model"

// StateMachine applies the lifecycle transition rules to a stream of
// status records, expiry signals and cancellations. It is a pure value:
// no timers, no callbacks, no locking. The owning Session serializes all
// calls and acts on the returned transition flags.
//
// Rules, in priority order:
//  1. A terminal state absorbs all further input.
//  2. A confirmed record always wins, even against a pending expiry.
//  3. A failed record moves to FAILED with the failure reason recorded.
//  4. A confirming record moves PENDING → CONFIRMING; further confirming
//     records only replace the record, without a state change.
//  5. Expiry moves a still-unresolved session to EXPIRED, unless a
//     confirmation is already in progress (confirmations > 0).
//  6. Cancellation moves any non-terminal state to CANCELLED.
type StateMachine struct {
	state  State
	record *model.StatusRecord
}

func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateInit}
}

func (m *StateMachine) State() State {
	return m.state
}

// Record returns the most recent status record, nil before the first
// poll result lands.
func (m *StateMachine) Record() *model.StatusRecord {
	return m.record
}

// ApplyRecord consumes one status record and reports whether the state
// changed. The record replaces the previous one wholesale even when the
// state does not change, so confirmation counts stay current.
func (m *StateMachine) ApplyRecord(rec *model.StatusRecord) bool {
	if m.state.Terminal() || rec == nil {
		return false
	}

	switch rec.Status {
	case model.StatusConfirmed:
		return m.transition(StateConfirmed, rec)
	case model.StatusFailed:
		return m.transition(StateFailed, rec)
	case model.StatusExpired:
		// The gateway itself declared the transaction expired; its word
		// is authoritative, no suppression applies.
		return m.transition(StateExpired, rec)
	case model.StatusConfirming:
		m.record = rec
		if m.state == StateConfirming {
			return false
		}
		m.state = StateConfirming
		return true
	case model.StatusPending:
		m.record = rec
		if m.state == StateInit {
			m.state = StatePending
			return true
		}
		// A pending record never downgrades CONFIRMING; backends can
		// briefly disagree with themselves during a reorg.
		return false
	default:
		return false
	}
}

// ApplyFailure records a terminal business failure reported outside a
// normal status payload (a gateway error response marked terminal).
func (m *StateMachine) ApplyFailure(reason string) bool {
	if m.state.Terminal() {
		return false
	}
	return m.transition(StateFailed, model.FailedRecord(reason))
}

// ApplyExpiry consumes the countdown's expiry signal. The transition is
// suppressed while a confirmation is in progress: discarding an
// almost-complete confirmation over a deadline helps nobody, the session
// keeps polling until the gateway settles it.
func (m *StateMachine) ApplyExpiry() bool {
	if m.state.Terminal() {
		return false
	}
	if m.state == StateConfirming && m.record != nil && m.record.Confirmations > 0 {
		return false
	}
	m.state = StateExpired
	return true
}

// ApplyCancel consumes an explicit user cancellation.
func (m *StateMachine) ApplyCancel() bool {
	if m.state.Terminal() {
		return false
	}
	m.state = StateCancelled
	return true
}

func (m *StateMachine) transition(to State, rec *model.StatusRecord) bool {
	m.state = to
	m.record = rec
	return true
}
