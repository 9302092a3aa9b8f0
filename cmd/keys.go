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

func keysCommands(b *paygridInstance) *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "list the merchant's API keys",
		Run: func(cmd *cobra.Command, args []string) {
			keys, err := b.client.ListAPIKeys(context.Background())
			if err != nil {
				log.Fatal(err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPREFIX\tACTIVE\tCREATED")
			for i := range keys {
				k := &keys[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
					k.APIKeyID, k.Name, k.Prefix, k.IsActive(), k.CreatedAt.Format("2006-01-02"))
			}
			_ = w.Flush()
		},
	}

	return keysCmd
}
