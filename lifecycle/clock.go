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

import "time"

// Clock abstracts time for the lifecycle primitives. The Countdown and
// the PollSession schedule every delayed callback through a Clock, so
// tests can substitute a fake and drive expiry and poll cadence
// deterministically.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn to run once after d. The returned Timer
	// cancels the callback if it has not fired yet.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a single-shot scheduled callback. Stop reports whether the
// call was prevented from firing.
type Timer interface {
	Stop() bool
}

// SystemClock returns the wall clock. This is the Clock used everywhere
// outside of tests.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return systemTimer{t: time.AfterFunc(d, fn)}
}

type systemTimer struct {
	t *time.Timer
}

func (s systemTimer) Stop() bool {
	return s.t.Stop()
}
