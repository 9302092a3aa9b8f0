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
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/paygridhq/paygrid/internal/apierror"
	"github.com/paygridhq/paygrid/model"
)

// DefaultPollInterval is the poll cadence used when the session config
// does not override it.
const DefaultPollInterval = 5 * time.Second

// SessionConfig wires up one lifecycle session.
type SessionConfig struct {
	// Reference is the gateway identifier to track. Required.
	Reference model.TransactionReference
	// Source performs the status round trips. Required.
	Source StatusSource
	// Notifier receives state changes and countdown ticks. Optional;
	// defaults to NopNotifier.
	Notifier Notifier
	// ExpiresAt is the instant the payment window closes. Required.
	ExpiresAt time.Time
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	// Clock defaults to the system clock.
	Clock Clock
	// Logger defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// Session tracks one created payment or payout until a terminal outcome.
// It owns a Countdown, a PollSession and a StateMachine; reaching a
// terminal state stops both timers exactly once, notifies the Notifier
// with the final record and closes Done. Every transaction gets a fresh
// session; sessions are never reused.
//
// Poll results, expiry, webhook ingestion and cancellation are all
// serialized on an internal mutex, so transitions are applied strictly
// in the order their events are observed.
type Session struct {
	id      string
	cfg     SessionConfig
	log     *logrus.Entry
	countdn *Countdown
	poll    *PollSession
	done    chan struct{}

	mu            sync.Mutex
	machine       *StateMachine
	started       bool
	torndown      bool
	expiryPending bool
}

// NewSession validates the config and assembles a session. Nothing runs
// until Start.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Reference.IsZero() {
		return nil, apierror.InvalidUsage("session requires a transaction reference")
	}
	if cfg.Source == nil {
		return nil, apierror.InvalidUsage("session requires a status source")
	}
	if cfg.ExpiresAt.IsZero() {
		return nil, apierror.InvalidUsage("session requires an expiry instant")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	s := &Session{
		id:      model.GenerateUUIDWithSuffix("session"),
		cfg:     cfg,
		machine: NewStateMachine(),
		done:    make(chan struct{}),
	}
	s.log = cfg.Logger.WithFields(logrus.Fields{
		"session_id": s.id,
		"reference":  cfg.Reference.String(),
	})
	s.countdn = NewCountdown(cfg.Clock, s.handleTick)
	s.poll = NewPollSession(cfg.Clock, cfg.Source, cfg.Logger)
	s.poll.OnComplete(s.handlePollComplete)
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Reference returns the transaction reference this session tracks.
func (s *Session) Reference() model.TransactionReference {
	return s.cfg.Reference
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Record returns the most recent status record, nil before the first
// result lands.
func (s *Session) Record() *model.StatusRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Record()
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start arms the countdown and begins polling. Starting twice is a
// programmer error.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return apierror.InvalidUsage("session already started")
	}
	s.started = true
	s.mu.Unlock()

	if err := s.countdn.Start(s.cfg.ExpiresAt, s.handleExpiry); err != nil {
		return err
	}
	if err := s.poll.Start(s.cfg.Reference, s.cfg.PollInterval, s.handleResult, s.handleTerminalError); err != nil {
		_ = s.countdn.Stop()
		return err
	}

	s.log.WithFields(logrus.Fields{
		"expires_at":    s.cfg.ExpiresAt,
		"poll_interval": s.cfg.PollInterval,
	}).Info("lifecycle session started")
	return nil
}

// Cancel moves a non-terminal session to CANCELLED and tears it down.
// Cancelling an already-terminal session is a no-op; cancelling before
// Start is a programmer error.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return apierror.InvalidUsage("session cancelled before start")
	}
	s.applyLocked(s.machine.ApplyCancel())
	return nil
}

// Ingest feeds a status record obtained outside the poll cadence, such
// as a gateway webhook callback. It goes through the same transition
// path as poll results. Records arriving after a terminal state are
// dropped.
func (s *Session) Ingest(rec *model.StatusRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.machine.State().Terminal() {
		return
	}
	s.applyLocked(s.machine.ApplyRecord(rec))
}

func (s *Session) handleResult(rec *model.StatusRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.State().Terminal() {
		return
	}
	s.applyLocked(s.machine.ApplyRecord(rec))
}

// handlePollComplete runs after every poll round trip, including the
// ones that end in a transient error and reach no other callback. A
// deferred expiry is resolved here so a gateway that keeps timing out
// at the deadline cannot keep the session alive past it.
func (s *Session) handlePollComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolvePendingExpiryLocked()
}

func (s *Session) handleTerminalError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.State().Terminal() {
		return
	}
	reason := err.Error()
	var apiErr apierror.APIError
	if e, ok := err.(apierror.APIError); ok {
		apiErr = e
		reason = apiErr.Message
	}
	s.log.WithField("reason", reason).Warn("gateway reported terminal failure")
	s.applyLocked(s.machine.ApplyFailure(reason))
}

// handleExpiry consumes the countdown firing. If a status round trip is
// outstanding at that moment, the decision is deferred until it lands:
// should it come back confirmed, confirmation wins over expiry.
func (s *Session) handleExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.State().Terminal() {
		return
	}
	if s.poll.InFlight() {
		s.log.Debug("expiry observed with a poll in flight, deferring")
		s.expiryPending = true
		return
	}
	s.applyLocked(s.machine.ApplyExpiry())
}

func (s *Session) handleTick(remaining time.Duration) {
	seconds := int64((remaining + time.Second - 1) / time.Second)
	s.cfg.Notifier.OnTick(seconds)
}

// resolvePendingExpiryLocked applies a deferred expiry after the
// outstanding round trip that delayed it has been processed.
func (s *Session) resolvePendingExpiryLocked() {
	if !s.expiryPending {
		return
	}
	s.expiryPending = false
	if s.machine.State().Terminal() {
		return
	}
	s.applyLocked(s.machine.ApplyExpiry())
}

// applyLocked finishes a transition: on a terminal entry it stops both
// timers exactly once, then notifies. Callers hold s.mu; the Notifier
// contract forbids calling back into the session, so holding the lock
// across the notification keeps state changes and notifications in the
// same order without risking deadlock.
func (s *Session) applyLocked(changed bool) {
	if !changed {
		return
	}
	state := s.machine.State()
	if state.Terminal() {
		s.teardownLocked()
	}
	s.log.WithField("state", string(state)).Info("lifecycle state changed")
	s.cfg.Notifier.OnStateChange(state, s.machine.Record())
}

func (s *Session) teardownLocked() {
	if s.torndown {
		return
	}
	s.torndown = true
	if err := s.countdn.Stop(); err != nil {
		s.log.WithError(err).Error("countdown teardown failed")
	}
	if err := s.poll.Stop(); err != nil {
		s.log.WithError(err).Error("poll teardown failed")
	}
	close(s.done)
}
