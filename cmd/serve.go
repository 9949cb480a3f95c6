// Copyright © 2016 NAME HERE <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nla/cdxserver/api"
	"github.com/nla/cdxserver/store"
)

var (
	serveCmdAddress  string
	serveCmdReadOnly bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the CDX index server",
	Long:  `serve starts the HTTP API, opening collections from the configured data directory as they are requested.`,
	Run: func(cmd *cobra.Command, args []string) {
		if serveCmdAddress != "" {
			cfg.API.Address = serveCmdAddress
		}
		if serveCmdReadOnly {
			cfg.API.ReadOnly = true
		}
		ExitIfErr(os.Stderr, cfg.Validate())

		PrintInfo(cfg.SummaryString())

		ds, err := store.Open(cfg.DataDir, cfg.Access.DefaultAllow, cfg.Access.ExperimentalAccessControl)
		ExitIfErr(os.Stderr, err)
		defer ds.Close()

		server := api.New(cfg, ds)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		PrintSuccess("listening on %s", cfg.API.Address)
		ExitIfErr(os.Stderr, server.Serve(ctx))
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveCmdAddress, "address", "a", "", "address to listen on, overrides config")
	serveCmd.Flags().BoolVarP(&serveCmdReadOnly, "read-only", "", false, "reject all writes regardless of config")
	RootCmd.AddCommand(serveCmd)
}
