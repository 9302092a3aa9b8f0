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
package paygrid

import (
	"time"

	"github.com/paygridhq/paygrid/lifecycle"
	"github.com/paygridhq/paygrid/model"
)

// Watch builds and starts a lifecycle session that tracks the given
// reference against this client until a terminal outcome, using the
// client as the session's status source. The caller owns the returned
// session: wait on Done or call Cancel.
func (c *Client) Watch(ref model.TransactionReference, expiresAt time.Time, notifier lifecycle.Notifier) (*lifecycle.Session, error) {
	s, err := lifecycle.NewSession(lifecycle.SessionConfig{
		Reference:    ref,
		Source:       c,
		Notifier:     notifier,
		ExpiresAt:    expiresAt,
		PollInterval: c.pollInterval,
		Clock:        c.clk,
		Logger:       c.log,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// WatchPayment is shorthand for Watch on a freshly created payment
// address, using the expiry the gateway assigned to it.
func (c *Client) WatchPayment(address *model.PaymentAddress, notifier lifecycle.Notifier) (*lifecycle.Session, error) {
	return c.Watch(address.Reference(), address.ExpiresAt, notifier)
}
