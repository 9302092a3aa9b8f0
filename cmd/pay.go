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
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/paygridhq/paygrid/lifecycle"
	"github.com/paygridhq/paygrid/model"
)

// terminalNotifier renders lifecycle progress on stdout for the watch
// flows of the pay and payout commands.
type terminalNotifier struct{}

func (terminalNotifier) OnStateChange(state lifecycle.State, record *model.StatusRecord) {
	switch state {
	case lifecycle.StateConfirming:
		fmt.Printf("confirming: %d/%d confirmations\n", record.Confirmations, record.RequiredConfirmations)
	case lifecycle.StateConfirmed:
		fmt.Printf("confirmed ✅ tx: %s\n", record.TxHash)
	case lifecycle.StateFailed:
		fmt.Printf("failed ❌ %s\n", record.FailureReason)
	case lifecycle.StateExpired:
		fmt.Println("expired: the payment window closed before confirmation")
	default:
		fmt.Printf("status: %s\n", state)
	}
}

func (terminalNotifier) OnTick(remainingSeconds int64) {
	fmt.Printf("\r%4ds remaining ", remainingSeconds)
}

// watchSession blocks until the session finishes or the user interrupts,
// in which case the session is cancelled cleanly.
func watchSession(s *lifecycle.Session) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	select {
	case <-s.Done():
	case <-interrupt:
		fmt.Println("\ncancelling...")
		if err := s.Cancel(); err != nil {
			log.Println(err)
		}
	}
}

func payCommands(b *paygridInstance) *cobra.Command {
	var currency, amount string
	var watch bool

	payCmd := &cobra.Command{
		Use:   "pay",
		Short: "create a payment address and optionally watch it to completion",
		Run: func(cmd *cobra.Command, args []string) {
			expected, err := decimal.NewFromString(amount)
			if err != nil {
				log.Fatalf("invalid amount %q: %v", amount, err)
			}

			address, err := b.client.CreatePaymentAddress(context.Background(), &model.CreatePaymentRequest{
				Currency:       currency,
				ExpectedAmount: expected,
			})
			if err != nil {
				log.Fatal(err)
			}

			fmt.Printf("payment address created\n  id:       %s\n  address:  %s\n  amount:   %s %s\n  expires:  %s\n",
				address.ID, address.Address, address.ExpectedAmount, address.Currency, address.ExpiresAt.Format("15:04:05"))

			if !watch {
				return
			}

			s, err := b.client.WatchPayment(address, terminalNotifier{})
			if err != nil {
				log.Fatal(err)
			}
			watchSession(s)
		},
	}
	payCmd.Flags().StringVar(&currency, "currency", "BTC", "currency of the expected payment")
	payCmd.Flags().StringVar(&amount, "amount", "", "expected payment amount")
	payCmd.Flags().BoolVar(&watch, "watch", true, "watch the payment until a terminal state")
	_ = payCmd.MarkFlagRequired("amount")

	return payCmd
}
