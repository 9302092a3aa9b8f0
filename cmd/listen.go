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
	"log"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/paygridhq/paygrid/internal/notification"
	"github.com/paygridhq/paygrid/lifecycle"
	"github.com/paygridhq/paygrid/listener"
)

func listenCommands(b *paygridInstance) *cobra.Command {
	listenCmd := &cobra.Command{
		Use:   "listen",
		Short: "run the local webhook callback receiver",
		Run: func(cmd *cobra.Command, args []string) {
			registry := lifecycle.NewRegistry()
			l := listener.New(registry, b.cnf, logrus.StandardLogger())

			if err := l.Run(); err != nil {
				notification.NotifyError(err)
				log.Fatal(err)
			}
		},
	}

	return listenCmd
}
