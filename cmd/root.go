// Copyright © 2016 qri.io <info@qri.io>
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
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nla/cdxserver/config"
)

var cfgFile string

const (
	// DataDirKey is the viper key for the data directory flag/config value.
	DataDirKey = "DataDir"
)

// cfg is the loaded configuration, populated by initConfig before any
// subcommand's Run executes.
var cfg *config.Config

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "cdxserver",
	Short: "a CDX index server for web archive captures",
	Long: `cdxserver indexes and serves web archive CDX records: ingest
capture lines, resolve aliases, evaluate access rules, and answer WB-CDX
queries over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		PrintErr(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cdxserver.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&noColor, "no-color", "c", false, "disable colorized output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	SetNoColor()

	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}

	if cfgFile == "" {
		cfgFile = filepath.Join(home, ".cdxserver.yaml")
	}

	viper.SetDefault(DataDirKey, filepath.Join(home, "cdxserver-data"))

	if loaded, err := config.ReadFromFile(cfgFile); err == nil {
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
		cfg.DataDir = viper.GetString(DataDirKey)
	}
}
