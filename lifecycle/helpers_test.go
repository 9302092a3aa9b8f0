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

package lifecycle_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paygridhq/paygrid/lifecycle"
	"github.com/paygridhq/paygrid/model"
)

// fakeClock is a deterministic Clock for tests. Advance moves time
// forward and fires due timers synchronously, in deadline order, on the
// calling goroutine. Callbacks may schedule new timers; those fire too
// if they fall inside the advanced window.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clk      *fakeClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) lifecycle.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clk: c, deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clk.mu.Lock()
	defer t.clk.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// pendingTimers counts timers that are armed but have not fired. Tests
// use it to wait until an asynchronous callback has re-armed its timer
// before advancing the clock.
func (c *fakeClock) pendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.deadline.After(target) {
				continue
			}
			if next == nil || t.deadline.Before(next.deadline) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.deadline
		c.mu.Unlock()

		next.fn()
	}
}

// recordingNotifier captures state changes and countdown ticks.
type recordingNotifier struct {
	mu      sync.Mutex
	states  []lifecycle.State
	records []*model.StatusRecord
	ticks   []int64
}

func (n *recordingNotifier) OnStateChange(state lifecycle.State, record *model.StatusRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, state)
	n.records = append(n.records, record)
}

func (n *recordingNotifier) OnTick(remainingSeconds int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ticks = append(n.ticks, remainingSeconds)
}

func (n *recordingNotifier) States() []lifecycle.State {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]lifecycle.State, len(n.states))
	copy(out, n.states)
	return out
}

func (n *recordingNotifier) Records() []*model.StatusRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*model.StatusRecord, len(n.records))
	copy(out, n.records)
	return out
}

func (n *recordingNotifier) Ticks() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]int64, len(n.ticks))
	copy(out, n.ticks)
	return out
}

type fetchOutcome struct {
	rec *model.StatusRecord
	err error
}

// scriptedSource returns canned outcomes in order, repeating the last
// one once the script runs out.
type scriptedSource struct {
	mu     sync.Mutex
	script []fetchOutcome
	calls  int
}

func newScriptedSource(outcomes ...fetchOutcome) *scriptedSource {
	return &scriptedSource{script: outcomes}
}

func (s *scriptedSource) FetchStatus(_ context.Context, _ model.TransactionReference) (*model.StatusRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	out := s.script[idx]
	return out.rec, out.err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// blockingSource parks every FetchStatus call until the test pushes an
// outcome into release. started signals each call as it begins.
type blockingSource struct {
	calls   int32
	started chan struct{}
	release chan fetchOutcome
}

func newBlockingSource() *blockingSource {
	return &blockingSource{
		started: make(chan struct{}, 16),
		release: make(chan fetchOutcome, 16),
	}
}

func (s *blockingSource) FetchStatus(_ context.Context, _ model.TransactionReference) (*model.StatusRecord, error) {
	atomic.AddInt32(&s.calls, 1)
	s.started <- struct{}{}
	out := <-s.release
	return out.rec, out.err
}

func (s *blockingSource) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

func pendingRecord() *model.StatusRecord {
	return &model.StatusRecord{Status: model.StatusPending}
}

func confirmingRecord(confirmations, required int) *model.StatusRecord {
	return &model.StatusRecord{
		Status:                model.StatusConfirming,
		Confirmations:         confirmations,
		RequiredConfirmations: required,
	}
}

func confirmedRecord() *model.StatusRecord {
	return &model.StatusRecord{Status: model.StatusConfirmed, Confirmations: 2, RequiredConfirmations: 2, TxHash: "0xdeadbeef"}
}

func paymentRef() model.TransactionReference {
	return model.NewPaymentReference("addr_test_1")
}
