package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"chain-connector/config"
	"chain-connector/internal/service"

	"github.com/spf13/cobra"
)

func newAddressCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the account identity derived from the configured seed",
		Long: `address derives the connector identity from ledger.seed or
ledger.demo_account without touching the store or the ledger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			return printAddress(cmd, cfg, cmd.OutOrStdout())
		},
	}
}

func printAddress(cmd *cobra.Command, cfg *config.Config, out io.Writer) error {
	seed, err := cfg.Ledger.SeedBytes()
	if err != nil {
		return err
	}
	if idx := cfg.Ledger.DemoAccountIndex(); idx != nil {
		seed = service.DemoSeed(*idx)
	}
	if seed == nil {
		return errors.New("no identity configured: set ledger.seed or ledger.demo_account")
	}

	crypto, err := service.NewCryptoStrategy(cfg.Ledger.Strategy)
	if err != nil {
		return err
	}
	id, err := service.DeriveIdentity(cmd.Context(), crypto, seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "account:         %s\n", id.AccountID)
	fmt.Fprintf(out, "public key:      %s\n", hex.EncodeToString(id.PublicKey))
	fmt.Fprintf(out, "on-chain key:    %s\n", hex.EncodeToString(id.OnChainKeyPair.PublicKey))
	fmt.Fprintf(out, "crypto strategy: %s\n", cfg.Ledger.Strategy)
	return nil
}
