// Package cmd provides the CLI commands for Storegate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storegate/storegate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "storegate",
	Short: "Storegate - authenticated store API",
	Long: `Storegate is a small store API with credential-based authentication.

Accounts are provisioned with a static service key; everything else is
protected by signed bearer tokens obtained via login.

Quick start:
  1. Create a config file: storegate.yaml
  2. Set auth.signing_secret (required)
  3. Run: storegate start

Configuration:
  Config is loaded from storegate.yaml in the current directory,
  $HOME/.storegate/, or /etc/storegate/.

  Environment variables can override config values with the STOREGATE_ prefix.
  Example: STOREGATE_SERVER_HTTP_ADDR=:9090

Commands:
  start          Start the API server
  hash-password  Print the Argon2id hash of a password
  version        Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./storegate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
