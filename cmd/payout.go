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

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/paygridhq/paygrid/model"
)

func payoutCommands(b *paygridInstance) *cobra.Command {
	var currency, amount, recipient, reference string
	var watch bool

	payoutCmd := &cobra.Command{
		Use:   "payout",
		Short: "create a payout and optionally watch it to completion",
		Run: func(cmd *cobra.Command, args []string) {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				log.Fatalf("invalid amount %q: %v", amount, err)
			}
			if reference == "" {
				reference = uuid.NewString()
			}

			payout, err := b.client.CreatePayout(context.Background(), &model.CreatePayoutRequest{
				Currency:         currency,
				Amount:           value,
				RecipientAddress: recipient,
				Reference:        reference,
			})
			if err != nil {
				log.Fatal(err)
			}

			fmt.Printf("payout created\n  id:        %s\n  to:        %s\n  amount:    %s %s\n  reference: %s\n",
				payout.ID, payout.RecipientAddress, payout.Amount, payout.Currency, payout.Reference)

			if !watch {
				return
			}

			expiresAt := time.Now().Add(b.cnf.ExpiryWindow())
			s, err := b.client.Watch(payout.TransactionReference(), expiresAt, terminalNotifier{})
			if err != nil {
				log.Fatal(err)
			}
			watchSession(s)
		},
	}
	payoutCmd.Flags().StringVar(&currency, "currency", "BTC", "payout currency")
	payoutCmd.Flags().StringVar(&amount, "amount", "", "payout amount")
	payoutCmd.Flags().StringVar(&recipient, "to", "", "recipient address")
	payoutCmd.Flags().StringVar(&reference, "reference", "", "merchant reference, generated when omitted")
	payoutCmd.Flags().BoolVar(&watch, "watch", true, "watch the payout until a terminal state")
	_ = payoutCmd.MarkFlagRequired("amount")
	_ = payoutCmd.MarkFlagRequired("to")

	return payoutCmd
}
