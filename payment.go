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

// CreatePaymentAddress asks the gateway for a fresh deposit address the
// customer can pay into. The returned address carries the expiry instant
// that bounds the payment window.
func (c *Client) CreatePaymentAddress(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentAddress, error) {
	if req == nil {
		return nil, apierror.InvalidUsage("create payment request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	var address model.PaymentAddress
	if err := c.post(ctx, "/addresses", req, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

// ListAddresses returns the merchant's payment addresses, newest first.
func (c *Client) ListAddresses(ctx context.Context) ([]model.PaymentAddress, error) {
	var addresses []model.PaymentAddress
	if err := c.get(ctx, "/addresses", &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}
