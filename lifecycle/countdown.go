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

	"github.com/paygridhq/paygrid/internal/apierror"
)

// countdownTick is the fixed cadence at which the countdown re-reads the
// clock. Remaining time is always recomputed from the expiry instant, so
// ticks can be delayed arbitrarily without accumulating drift.
const countdownTick = time.Second

// Countdown counts down to an expiry instant. Each tick reports the
// remaining time through onTick; when the remaining time reaches zero it
// fires onExpire exactly once and stops itself. Stop before expiry
// guarantees onExpire never runs.
type Countdown struct {
	clk    Clock
	onTick func(remaining time.Duration)

	mu        sync.Mutex
	started   bool
	stopped   bool
	expiresAt time.Time
	onExpire  func()
	timer     Timer
}

// NewCountdown builds a countdown on the given clock. onTick may be nil
// when no per-second display updates are needed.
func NewCountdown(clk Clock, onTick func(remaining time.Duration)) *Countdown {
	if clk == nil {
		clk = SystemClock()
	}
	return &Countdown{clk: clk, onTick: onTick}
}

// Start arms the countdown. An initial tick is emitted synchronously so
// displays show the full window immediately. Starting twice is a
// programmer error and fails loudly.
func (c *Countdown) Start(expiresAt time.Time, onExpire func()) error {
	if onExpire == nil {
		return apierror.InvalidUsage("countdown requires an onExpire callback")
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return apierror.InvalidUsage("countdown already started")
	}
	c.started = true
	c.expiresAt = expiresAt
	c.onExpire = onExpire
	remaining := expiresAt.Sub(c.clk.Now())
	c.timer = c.clk.AfterFunc(countdownTick, c.tick)
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(remaining)
	}
	return nil
}

// Stop cancels the countdown. The first call tears down the timer; any
// later call is a no-op. Stopping a countdown that was never started is
// a programmer error.
func (c *Countdown) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return apierror.InvalidUsage("countdown stopped before start")
	}
	if c.stopped {
		return nil
	}
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
	}
	return nil
}

// Remaining returns the time left until expiry, clamped at zero.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return 0
	}
	remaining := c.expiresAt.Sub(c.clk.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Countdown) tick() {
	c.mu.Lock()
	// Liveness check before doing anything: a tick that raced with Stop
	// must not fire callbacks.
	if c.stopped {
		c.mu.Unlock()
		return
	}

	remaining := c.expiresAt.Sub(c.clk.Now())
	if remaining <= 0 {
		// Expired. Mark stopped first so the expiry fires once even if
		// the callback re-enters Stop.
		c.stopped = true
		fire := c.onExpire
		c.mu.Unlock()

		if c.onTick != nil {
			c.onTick(0)
		}
		fire()
		return
	}

	c.timer = c.clk.AfterFunc(countdownTick, c.tick)
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(remaining)
	}
}
