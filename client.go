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
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/paygridhq/paygrid/config"
	"github.com/paygridhq/paygrid/internal/apierror"
	"github.com/paygridhq/paygrid/internal/request"
	"github.com/paygridhq/paygrid/lifecycle"
)

const (
	defaultTimeout    = 30 * time.Second
	createMaxRetries  = 4
	idempotencyHeader = "X-Idempotency-Key"
)

// Client talks to the PayGrid gateway REST API on behalf of one
// merchant. It is safe for concurrent use.
type Client struct {
	endpoint     string
	apiKey       string
	httpClient   *http.Client
	log          *logrus.Logger
	clk          lifecycle.Clock
	pollInterval time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger substitutes the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithClock substitutes the clock used by lifecycle sessions created
// through Watch. Tests inject a fake here.
func WithClock(clk lifecycle.Clock) Option {
	return func(c *Client) { c.clk = clk }
}

// WithPollInterval overrides the status poll cadence for Watch.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// NewClient builds a gateway client. endpoint is the API base URL,
// apiKey the merchant's bearer credential.
func NewClient(endpoint, apiKey string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "gateway endpoint is required", nil)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "gateway api key is required", nil)
	}

	c := &Client{
		endpoint:     endpoint,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		log:          logrus.StandardLogger(),
		clk:          lifecycle.SystemClock(),
		pollInterval: lifecycle.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FromConfig builds a client from the loaded configuration.
func FromConfig(cnf *config.Configuration) (*Client, error) {
	return NewClient(cnf.Gateway.Endpoint, cnf.Gateway.APIKey,
		WithHTTPClient(&http.Client{Timeout: cnf.GatewayTimeout()}),
		WithPollInterval(cnf.PollInterval()),
	)
}

// errorEnvelope is the gateway's error body. Terminal marks a business
// failure the gateway will never resolve differently.
type errorEnvelope struct {
	Error struct {
		Code     string `json:"code"`
		Message  string `json:"message"`
		Terminal bool   `json:"terminal"`
	} `json:"error"`
}

// do performs one round trip and classifies any failure into the
// apierror taxonomy. It never retries; create paths add retry on top.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var req *http.Request
	var err error

	url := c.endpoint + path
	if payload != nil {
		body, err := request.ToJSONReq(payload)
		if err != nil {
			return errors.Wrap(err, "encoding request payload")
		}
		req, err = http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return errors.Wrap(err, "building request")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return errors.Wrap(err, "building request")
		}
	}
	req.Header.Set("Authorization", request.BearerAuth(c.apiKey))
	if key, ok := idempotencyKeyFrom(ctx); ok {
		req.Header.Set(idempotencyHeader, key)
	}

	resp, raw, err := request.Call(c.httpClient, req, out)
	if err != nil {
		if resp == nil {
			return apierror.Transient("gateway unreachable", err)
		}
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var envelope errorEnvelope
	_ = json.Unmarshal(raw, &envelope)
	message := envelope.Error.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	apiErr := apierror.FromHTTPStatus(resp.StatusCode, message, envelope.Error.Terminal)

	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
		"code":   apiErr.Code,
	}).Warn("gateway request failed")
	return apiErr
}

// post performs a create call with bounded retry on transient failures.
// The idempotency key is fixed before the first attempt so retries can
// never double-create on the gateway side.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	ctx = withIdempotencyKey(ctx, uuid.NewString())

	operation := func() error {
		err := c.do(ctx, http.MethodPost, path, payload, out)
		if err == nil {
			return nil
		}
		if apierror.IsTransient(err) && !apierror.IsInvalidInput(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), createMaxRetries)
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

type idempotencyKeyContext struct{}

func withIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyContext{}, key)
}

func idempotencyKeyFrom(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyContext{}).(string)
	return key, ok
}
