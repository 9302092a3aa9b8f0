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
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/paygridhq/paygrid/internal/apierror"
	"github.com/paygridhq/paygrid/model"
)

// PollSession repeatedly queries a StatusSource for one transaction
// reference. The first query is issued immediately on Start; every
// subsequent query is scheduled a fixed delay after the previous one
// completed, so a slow gateway can never cause overlapping requests.
//
// Transient errors are absorbed here and the cadence continues; only
// errors the gateway explicitly marked terminal reach onError. Results
// arriving after Stop are dropped.
type PollSession struct {
	clk    Clock
	source StatusSource
	log    *logrus.Entry

	mu         sync.Mutex
	started    bool
	stopped    bool
	inflight   bool
	ref        model.TransactionReference
	interval   time.Duration
	onResult   func(*model.StatusRecord)
	onError    func(error)
	onComplete func()
	timer      Timer
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewPollSession builds a poll session over the given status source.
func NewPollSession(clk Clock, source StatusSource, logger *logrus.Logger) *PollSession {
	if clk == nil {
		clk = SystemClock()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PollSession{
		clk:    clk,
		source: source,
		log:    logger.WithField("component", "poll_session"),
	}
}

// OnComplete registers fn to run after every query completes and its
// result has been dispatched, whatever the outcome. Transient failures
// reach no other callback, so this is the only signal a caller gets
// that the round trip has landed. Must be set before Start.
func (p *PollSession) OnComplete(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onComplete = fn
}

// Start issues the first query immediately and arms the cadence.
// Starting twice, a non-positive interval or missing callbacks are
// programmer errors and fail loudly.
func (p *PollSession) Start(ref model.TransactionReference, interval time.Duration, onResult func(*model.StatusRecord), onError func(error)) error {
	if ref.IsZero() {
		return apierror.InvalidUsage("poll session requires a transaction reference")
	}
	if interval <= 0 {
		return apierror.InvalidUsage("poll interval must be positive")
	}
	if onResult == nil || onError == nil {
		return apierror.InvalidUsage("poll session requires onResult and onError callbacks")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return apierror.InvalidUsage("poll session already started")
	}
	p.started = true
	p.ref = ref
	p.interval = interval
	p.onResult = onResult
	p.onError = onError
	p.ctx, p.cancel = context.WithCancel(context.Background())

	go p.pollOnce()
	return nil
}

// Stop halts the cadence and aborts any in-flight query. A response that
// was already underway is discarded, never dispatched. The first call
// tears down; later calls are no-ops. Stop before Start is a programmer
// error.
func (p *PollSession) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return apierror.InvalidUsage("poll session stopped before start")
	}
	if p.stopped {
		return nil
	}
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.cancel()
	return nil
}

// InFlight reports whether a query is currently outstanding. The session
// uses this to defer an expiry decision until the outstanding round trip
// lands, so a confirmation that was detected before the deadline is not
// reported as expired.
func (p *PollSession) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight
}

func (p *PollSession) pollOnce() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.inflight = true
	ctx := p.ctx
	ref := p.ref
	p.mu.Unlock()

	rec, err := p.source.FetchStatus(ctx, ref)

	p.mu.Lock()
	p.inflight = false
	if p.stopped {
		p.mu.Unlock()
		p.log.WithField("reference", ref.String()).Debug("dropping poll result after stop")
		return
	}
	// Re-arm before dispatching: the cadence measures from completion
	// either way, and a dispatch that turns out terminal cancels the
	// timer through Stop.
	p.timer = p.clk.AfterFunc(p.interval, p.pollOnce)
	onComplete := p.onComplete
	p.mu.Unlock()

	// Dispatch outside the lock: callbacks are allowed to call Stop.
	switch {
	case err == nil:
		p.onResult(rec)
	case apierror.IsTerminal(err):
		p.onError(err)
	default:
		p.log.WithFields(logrus.Fields{
			"reference": ref.String(),
			"error":     err.Error(),
		}).Warn("transient status poll failure, cadence continues")
	}

	if onComplete != nil {
		onComplete()
	}
}
