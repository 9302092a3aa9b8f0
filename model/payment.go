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
package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// PaymentAddress is a deposit address created by the gateway for one
// incoming payment. ExpiresAt bounds how long the gateway watches the
// address; after that the payment is reported expired.
type PaymentAddress struct {
	ID             string                 `json:"id"`
	Address        string                 `json:"address"`
	Currency       string                 `json:"currency"`
	ExpectedAmount decimal.Decimal        `json:"expected_amount"`
	ExpiresAt      time.Time              `json:"expires_at"`
	CreatedAt      time.Time              `json:"created_at"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
}

// Reference returns the polling key for this address.
func (a *PaymentAddress) Reference() TransactionReference {
	return NewPaymentReference(a.ID)
}

// CreatePaymentRequest is the payload for POST /addresses.
type CreatePaymentRequest struct {
	Currency       string                 `json:"currency"`
	ExpectedAmount decimal.Decimal        `json:"expected_amount"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
}

func (r *CreatePaymentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Currency, validation.Required, validation.Length(2, 10)),
		validation.Field(&r.ExpectedAmount, validation.Required, validation.By(positiveAmount)),
	)
}
