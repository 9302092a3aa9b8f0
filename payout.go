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

	"github.com/paygridhq/paygrid/internal/apierror"
	"github.com/paygridhq/paygrid/model"
)

// CreatePayout submits an outgoing transfer. The request's Reference
// field is the merchant's own idempotent identifier; together with the
// idempotency key header it makes retried submissions safe.
func (c *Client) CreatePayout(ctx context.Context, req *model.CreatePayoutRequest) (*model.Payout, error) {
	if req == nil {
		return nil, apierror.InvalidUsage("create payout request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	var payout model.Payout
	if err := c.post(ctx, "/payouts", req, &payout); err != nil {
		return nil, err
	}
	return &payout, nil
}
