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

import "fmt"

// ReferenceKind distinguishes what a TransactionReference points at,
// which decides the status endpoint used to poll it.
type ReferenceKind string

const (
	RefPayment ReferenceKind = "payment"
	RefPayout  ReferenceKind = "payout"
)

// TransactionReference is the opaque identifier the gateway assigns when
// a payment address or payout is created. It is immutable and is the key
// for all subsequent status polling.
type TransactionReference struct {
	Kind ReferenceKind
	ID   string
}

func NewPaymentReference(id string) TransactionReference {
	return TransactionReference{Kind: RefPayment, ID: id}
}

func NewPayoutReference(id string) TransactionReference {
	return TransactionReference{Kind: RefPayout, ID: id}
}

func (r TransactionReference) IsZero() bool {
	return r.ID == ""
}

func (r TransactionReference) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ID)
}
