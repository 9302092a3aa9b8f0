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
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// Payout is an outgoing transfer created via POST /payouts.
type Payout struct {
	ID               string          `json:"id"`
	RecipientAddress string          `json:"recipient_address"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	Reference        string          `json:"reference,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TransactionReference returns the polling key for this payout.
func (p *Payout) TransactionReference() TransactionReference {
	return NewPayoutReference(p.ID)
}

// CreatePayoutRequest is the payload for POST /payouts. Reference is the
// merchant's own idempotent identifier for the transfer.
type CreatePayoutRequest struct {
	Currency         string          `json:"currency"`
	Amount           decimal.Decimal `json:"amount"`
	RecipientAddress string          `json:"recipient_address"`
	Reference        string          `json:"reference"`
}

func (r *CreatePayoutRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Currency, validation.Required, validation.Length(2, 10)),
		validation.Field(&r.Amount, validation.Required, validation.By(positiveAmount)),
		validation.Field(&r.RecipientAddress, validation.Required),
		validation.Field(&r.Reference, validation.Required),
	)
}

func positiveAmount(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("invalid amount type")
	}
	if !amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}
	return nil
}
