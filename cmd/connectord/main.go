package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "connectord",
		Short: "Payment-channel connector daemon",
		Long: `connectord binds an account identity to a ledger and a key-value store,
keeps the account's nonce cursor in sync and serves a read-only status API
for its payment channels.

Configuration is read from a YAML file and CCN_* environment variables.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"path to the configuration file (default ./connector.yaml or ./config/connector.yaml)")

	cmd.AddCommand(newRunCommand(&configFile))
	cmd.AddCommand(newAddressCommand(&configFile))
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
