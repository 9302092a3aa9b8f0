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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paygridhq/paygrid/lifecycle"
)

func TestCountdownFiresExactlyOnce(t *testing.T) {
	clk := newFakeClock()
	fired := 0
	c := lifecycle.NewCountdown(clk, nil)

	require.NoError(t, c.Start(clk.Now().Add(3*time.Second), func() { fired++ }))

	clk.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)

	clk.Advance(time.Second)
	assert.Equal(t, 1, fired)

	// Self-stopped: no re-fire no matter how far time goes.
	clk.Advance(time.Minute)
	assert.Equal(t, 1, fired)
}

func TestCountdownStopBeforeExpiryNeverFires(t *testing.T) {
	for _, stopAfter := range []time.Duration{0, time.Second, 9 * time.Second} {
		clk := newFakeClock()
		fired := false
		c := lifecycle.NewCountdown(clk, nil)

		require.NoError(t, c.Start(clk.Now().Add(10*time.Second), func() { fired = true }))
		clk.Advance(stopAfter)
		require.NoError(t, c.Stop())

		clk.Advance(time.Hour)
		assert.False(t, fired, "stopped at %v", stopAfter)
	}
}

func TestCountdownTicksRecomputeFromExpiry(t *testing.T) {
	clk := newFakeClock()
	var ticks []time.Duration
	c := lifecycle.NewCountdown(clk, func(remaining time.Duration) {
		ticks = append(ticks, remaining)
	})

	require.NoError(t, c.Start(clk.Now().Add(4*time.Second), func() {}))
	// Initial tick shows the full window.
	require.Len(t, ticks, 1)
	assert.Equal(t, 4*time.Second, ticks[0])

	// Advancing in an odd chunk still yields per-second remaining values
	// because each tick re-reads the clock instead of counting.
	clk.Advance(2500 * time.Millisecond)
	assert.Equal(t, []time.Duration{4 * time.Second, 3 * time.Second, 2 * time.Second}, ticks)

	clk.Advance(1500 * time.Millisecond)
	assert.Equal(t, time.Duration(0), ticks[len(ticks)-1])
}

func TestCountdownStopIsIdempotent(t *testing.T) {
	clk := newFakeClock()
	c := lifecycle.NewCountdown(clk, nil)
	require.NoError(t, c.Start(clk.Now().Add(time.Minute), func() {}))

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
}

func TestCountdownInvalidUsage(t *testing.T) {
	clk := newFakeClock()
	c := lifecycle.NewCountdown(clk, nil)

	// Stop before start fails loudly.
	assert.Error(t, c.Stop())

	// Missing expiry callback fails loudly.
	assert.Error(t, c.Start(clk.Now().Add(time.Minute), nil))

	require.NoError(t, c.Start(clk.Now().Add(time.Minute), func() {}))
	assert.Error(t, c.Start(clk.Now().Add(time.Minute), func() {}))
}

func TestCountdownRemaining(t *testing.T) {
	clk := newFakeClock()
	c := lifecycle.NewCountdown(clk, nil)
	assert.Equal(t, time.Duration(0), c.Remaining())

	require.NoError(t, c.Start(clk.Now().Add(10*time.Second), func() {}))
	assert.Equal(t, 10*time.Second, c.Remaining())

	clk.Advance(4 * time.Second)
	assert.Equal(t, 6*time.Second, c.Remaining())

	clk.Advance(time.Minute)
	assert.Equal(t, time.Duration(0), c.Remaining())
}

func TestCountdownStopFromExpiryCallback(t *testing.T) {
	// The session stops the countdown during terminal teardown, which
	// can re-enter Stop from inside the expiry callback itself.
	clk := newFakeClock()
	c := lifecycle.NewCountdown(clk, nil)
	require.NoError(t, c.Start(clk.Now().Add(time.Second), func() {
		assert.NoError(t, c.Stop())
	}))

	clk.Advance(time.Second)
}
