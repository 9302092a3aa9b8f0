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
	"context"

	"github.com/pkg/errors"

	"github.com/paygridhq/paygrid/internal/apierror"
	"github.com/paygridhq/paygrid/model"
)

// FetchStatus queries the gateway for the current status of a payment
// address or payout and normalizes the response into a canonical
// StatusRecord. It satisfies lifecycle.StatusSource, so a Client can be
// handed straight to a session as its adapter.
//
// The two endpoints disagree on field names; the envelope normalizer
// absorbs that here so the state machine only ever sees canonical
// records.
func (c *Client) FetchStatus(ctx context.Context, ref model.TransactionReference) (*model.StatusRecord, error) {
	if ref.IsZero() {
		return nil, apierror.InvalidUsage("status fetch requires a transaction reference")
	}

	path := "/addresses/" + ref.ID
	if ref.Kind == model.RefPayout {
		path = "/transactions/" + ref.ID
	}

	var envelope model.StatusEnvelope
	if err := c.get(ctx, path, &envelope); err != nil {
		return nil, err
	}

	rec, err := envelope.Record()
	if err != nil {
		// A payload we cannot parse is indistinguishable from a flaky
		// backend; keep it transient so the cadence retries.
		return nil, apierror.Transient("malformed status payload", errors.Wrap(err, ref.String()))
	}
	return rec, nil
}
