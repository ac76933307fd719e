// Package cmd provides the CLI commands for DocGate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doc-gate/docgate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docgate",
	Short: "DocGate - session-authenticated document gateway",
	Long: `DocGate is a reverse proxy that fronts a document-oriented backend.

Browser clients authenticate once against the gateway; DocGate verifies the
credential against the backend, caches it in memory for the session, and
attaches it to every subsequent request under the protected API prefix. The
rest of the URL space serves a single-page application's static assets.

Quick start:
  1. Create a config file: docgate.yaml
  2. Run: docgate start

Configuration:
  Config is loaded from docgate.yaml in the current directory,
  $HOME/.docgate/, or /etc/docgate/.

  Environment variables can override config values with the DOCGATE_ prefix.
  Example: DOCGATE_BACKEND_HOST=ml.internal

Commands:
  start       Start the gateway
  config      Print the effective configuration
  version     Print version information`,
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
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./docgate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
