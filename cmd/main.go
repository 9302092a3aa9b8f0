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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/paygridhq/paygrid"
	"github.com/paygridhq/paygrid/config"
	"github.com/paygridhq/paygrid/internal/notification"
)

// PayGrid represents the CLI application, encapsulating the root Cobra command.
type PayGrid struct {
	cmd *cobra.Command
}

// paygridInstance holds the gateway client and its configuration, shared
// by every subcommand after preRun.
type paygridInstance struct {
	client *paygrid.Client
	cnf    *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and builds the gateway client before
// running any command.
func preRun(app *paygridInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		client, err := paygrid.FromConfig(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.client = client
		app.cnf = cnf

		return nil
	}
}

// NewCLI creates the command-line interface for the PayGrid merchant client.
func NewCLI() *PayGrid {
	var configFile string
	b := &paygridInstance{}

	var rootCmd = &cobra.Command{
		Use:   "paygrid",
		Short: "Crypto payment gateway merchant client",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./paygrid.json", "Configuration file for the merchant client")

	rootCmd.PersistentPreRunE = preRun(b, &configFile)

	rootCmd.AddCommand(payCommands(b))
	rootCmd.AddCommand(payoutCommands(b))
	rootCmd.AddCommand(keysCommands(b))
	rootCmd.AddCommand(webhooksCommands(b))
	rootCmd.AddCommand(balancesCommands(b))
	rootCmd.AddCommand(listenCommands(b))

	return &PayGrid{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during execution.
func (w PayGrid) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
