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
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paygridhq/paygrid/internal/apierror"
	"github.com/paygridhq/paygrid/lifecycle"
	"github.com/paygridhq/paygrid/model"
)

const testEndpoint = "https://gateway.test"

func newMockedClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	opts = append([]Option{WithHTTPClient(httpClient)}, opts...)
	c, err := NewClient(testEndpoint, "sk_test_"+gofakeit.LetterN(12), opts...)
	require.NoError(t, err)
	return c
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("", "key")
	assert.Error(t, err)

	_, err = NewClient("https://gateway.test", "  ")
	assert.Error(t, err)

	c, err := NewClient("https://gateway.test/", "key")
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.test", c.endpoint)
}

func TestCreatePaymentAddress(t *testing.T) {
	c := newMockedClient(t)

	var gotAuth, gotIdem string
	httpmock.RegisterResponder("POST", testEndpoint+"/addresses",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			gotIdem = req.Header.Get("X-Idempotency-Key")
			return httpmock.NewJsonResponse(201, map[string]interface{}{
				"id":              "addr_1",
				"address":         "bc1q" + gofakeit.LetterN(20),
				"currency":        "BTC",
				"expected_amount": "0.015",
				"expires_at":      time.Now().Add(15 * time.Minute).Format(time.RFC3339),
			})
		})

	address, err := c.CreatePaymentAddress(context.Background(), &model.CreatePaymentRequest{
		Currency:       "BTC",
		ExpectedAmount: decimal.RequireFromString("0.015"),
	})
	require.NoError(t, err)
	assert.Equal(t, "addr_1", address.ID)
	assert.Equal(t, model.NewPaymentReference("addr_1"), address.Reference())
	assert.Contains(t, gotAuth, "Bearer sk_test_")
	assert.NotEmpty(t, gotIdem, "create calls carry an idempotency key")
}

func TestCreatePaymentAddressRejectsInvalidRequest(t *testing.T) {
	c := newMockedClient(t)

	_, err := c.CreatePaymentAddress(context.Background(), &model.CreatePaymentRequest{Currency: "BTC"})
	assert.Error(t, err, "missing amount never reaches the wire")
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestCreatePayoutRetriesTransientWithStableIdempotencyKey(t *testing.T) {
	c := newMockedClient(t)

	var mu sync.Mutex
	var keys []string
	attempt := 0
	httpmock.RegisterResponder("POST", testEndpoint+"/payouts",
		func(req *http.Request) (*http.Response, error) {
			mu.Lock()
			defer mu.Unlock()
			keys = append(keys, req.Header.Get("X-Idempotency-Key"))
			attempt++
			if attempt == 1 {
				return httpmock.NewStringResponse(503, `{"error":{"code":"UPSTREAM","message":"node unavailable"}}`), nil
			}
			return httpmock.NewJsonResponse(201, map[string]interface{}{
				"id":                "po_1",
				"recipient_address": "bc1qrecipient",
				"amount":            "1.5",
				"currency":          "BTC",
				"status":            "pending",
			})
		})

	payout, err := c.CreatePayout(context.Background(), &model.CreatePayoutRequest{
		Currency:         "BTC",
		Amount:           decimal.RequireFromString("1.5"),
		RecipientAddress: "bc1qrecipient",
		Reference:        gofakeit.UUID(),
	})
	require.NoError(t, err)
	assert.Equal(t, "po_1", payout.ID)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1], "the retry reuses the original idempotency key")
}

func TestCreatePayoutTerminalErrorIsNotRetried(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder("POST", testEndpoint+"/payouts",
		httpmock.NewStringResponder(422, `{"error":{"code":"REJECTED","message":"payout rejected by compliance","terminal":true}}`))

	_, err := c.CreatePayout(context.Background(), &model.CreatePayoutRequest{
		Currency:         "BTC",
		Amount:           decimal.RequireFromString("1.5"),
		RecipientAddress: "bc1qrecipient",
		Reference:        gofakeit.UUID(),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsTerminal(err))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())

	var apiErr apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "payout rejected by compliance", apiErr.Message)
}

func TestFetchStatusNormalizesFieldDrift(t *testing.T) {
	c := newMockedClient(t)

	// Payment endpoint speaks snake_case, payout endpoint camelCase; both
	// must come out as the same canonical record shape.
	httpmock.RegisterResponder("GET", testEndpoint+"/addresses/addr_1",
		httpmock.NewStringResponder(200, `{"id":"addr_1","status":"confirming","confirmations":1,"required_confirmations":2,"txHash":"0xabc"}`))
	httpmock.RegisterResponder("GET", testEndpoint+"/transactions/po_1",
		httpmock.NewStringResponder(200, `{"id":"po_1","status":"completed","confirmations":2,"requiredConfirmations":2,"transactionHash":"0xdef"}`))

	rec, err := c.FetchStatus(context.Background(), model.NewPaymentReference("addr_1"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirming, rec.Status)
	assert.Equal(t, 1, rec.Confirmations)
	assert.Equal(t, 2, rec.RequiredConfirmations)
	assert.Equal(t, "0xabc", rec.TxHash)

	rec, err = c.FetchStatus(context.Background(), model.NewPayoutReference("po_1"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, rec.Status, "completed folds into confirmed")
	assert.Equal(t, 2, rec.RequiredConfirmations)
	assert.Equal(t, "0xdef", rec.TxHash)
}

func TestFetchStatusErrorClassification(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder("GET", testEndpoint+"/addresses/fresh",
		httpmock.NewStringResponder(404, `{"error":{"code":"NOT_FOUND","message":"unknown address"}}`))
	httpmock.RegisterResponder("GET", testEndpoint+"/addresses/flaky",
		httpmock.NewStringResponder(502, "bad gateway"))
	httpmock.RegisterResponder("GET", testEndpoint+"/addresses/revoked",
		httpmock.NewStringResponder(401, `{"error":{"code":"UNAUTHORIZED","message":"api key revoked"}}`))
	httpmock.RegisterResponder("GET", testEndpoint+"/addresses/garbled",
		httpmock.NewStringResponder(200, `{"id":"garbled","status":"sideways"}`))

	// A fresh reference can 404 behind a read replica: transient.
	_, err := c.FetchStatus(context.Background(), model.NewPaymentReference("fresh"))
	assert.True(t, apierror.IsTransient(err))

	_, err = c.FetchStatus(context.Background(), model.NewPaymentReference("flaky"))
	assert.True(t, apierror.IsTransient(err))

	// Credential failures will never heal by polling: terminal.
	_, err = c.FetchStatus(context.Background(), model.NewPaymentReference("revoked"))
	assert.True(t, apierror.IsTerminal(err))

	// An unparseable status stays transient so the cadence retries.
	_, err = c.FetchStatus(context.Background(), model.NewPaymentReference("garbled"))
	assert.True(t, apierror.IsTransient(err))
}

func TestListEndpoints(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder("GET", testEndpoint+"/api-keys",
		httpmock.NewStringResponder(200, `[{"api_key_id":"key_1","name":"prod","prefix":"pk_live","is_revoked":false}]`))
	httpmock.RegisterResponder("GET", testEndpoint+"/webhooks",
		httpmock.NewStringResponder(200, `[{"webhook_id":"wh_1","url":"https://merchant.test/cb","events":["payment.confirmed"],"is_active":true}]`))
	httpmock.RegisterResponder("GET", testEndpoint+"/addresses",
		httpmock.NewStringResponder(200, `[{"id":"addr_1","address":"bc1q","currency":"BTC","expected_amount":"0.5"}]`))
	httpmock.RegisterResponder("GET", testEndpoint+"/account/balances",
		httpmock.NewStringResponder(200, `[{"asset":"BTC","free":"1.2","locked":"0.3"}]`))

	keys, err := c.ListAPIKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.True(t, keys[0].IsActive())

	hooks, err := c.ListWebhooks(context.Background())
	require.NoError(t, err)
	require.Len(t, hooks, 1)
	assert.Equal(t, "https://merchant.test/cb", hooks[0].URL)

	addresses, err := c.ListAddresses(context.Background())
	require.NoError(t, err)
	require.Len(t, addresses, 1)

	balances, err := c.AccountBalances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "1.5", balances[0].Total().String())
}

// watchNotifier records terminal states for the Watch integration test.
type watchNotifier struct {
	mu     sync.Mutex
	states []lifecycle.State
}

func (n *watchNotifier) OnStateChange(state lifecycle.State, _ *model.StatusRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, state)
}

func (n *watchNotifier) OnTick(int64) {}

func (n *watchNotifier) last() (lifecycle.State, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.states) == 0 {
		return "", false
	}
	return n.states[len(n.states)-1], true
}

func TestWatchRunsToConfirmed(t *testing.T) {
	c := newMockedClient(t, WithPollInterval(10*time.Millisecond))

	httpmock.RegisterResponder("GET", testEndpoint+"/addresses/addr_1",
		httpmock.NewStringResponder(200, `{"id":"addr_1","status":"confirmed","confirmations":2,"required_confirmations":2,"txHash":"0xabc"}`))

	notifier := &watchNotifier{}
	s, err := c.Watch(model.NewPaymentReference("addr_1"), time.Now().Add(time.Minute), notifier)
	require.NoError(t, err)

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not reach a terminal state")
	}

	assert.Equal(t, lifecycle.StateConfirmed, s.State())
	last, ok := notifier.last()
	require.True(t, ok)
	assert.Equal(t, lifecycle.StateConfirmed, last)
}
