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
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func balancesCommands(b *paygridInstance) *cobra.Command {
	balancesCmd := &cobra.Command{
		Use:   "balances",
		Short: "show per-asset balances of the merchant's exchange account",
		Run: func(cmd *cobra.Command, args []string) {
			balances, err := b.client.AccountBalances(context.Background())
			if err != nil {
				log.Fatal(err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ASSET\tFREE\tLOCKED\tTOTAL")
			for _, balance := range balances {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					balance.Asset, balance.Free, balance.Locked, balance.Total())
			}
			_ = w.Flush()
		},
	}

	return balancesCmd
}
