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

	"github.com/paygridhq/paygrid/model"
)

// ListAPIKeys returns the merchant's API credentials as the gateway
// lists them. Secrets are never included.
func (c *Client) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	if err := c.get(ctx, "/api-keys", &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// ListWebhooks returns the merchant's registered webhook callbacks.
func (c *Client) ListWebhooks(ctx context.Context) ([]model.Webhook, error) {
	var hooks []model.Webhook
	if err := c.get(ctx, "/webhooks", &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

// AccountBalances returns per-asset balances for the merchant's
// exchange account.
func (c *Client) AccountBalances(ctx context.Context) ([]model.AccountBalance, error) {
	var balances []model.AccountBalance
	if err := c.get(ctx, "/account/balances", &balances); err != nil {
		return nil, err
	}
	return balances, nil
}
