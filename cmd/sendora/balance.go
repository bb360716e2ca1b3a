package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sendora-labs/sendora/internal/gateway"
	"github.com/sendora-labs/sendora/internal/output"
)

func NewBalanceCmd() *cobra.Command {
	var (
		keyHex  string
		keyFile string
	)

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the signer's balance on the active network",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			signer, err := loadSigner(keyHex, keyFile)
			if err != nil {
				return err
			}

			reg := effectiveRegistry()
			gw, err := gateway.Connect(cmd.Context(), reg, networkName, signer)
			if err != nil {
				return err
			}
			defer gw.Close()

			balance, err := gw.Balance(cmd.Context())
			if err != nil {
				return err
			}

			network := gw.Network()
			if jsonMode {
				view := struct {
					Address string `json:"address"`
					Balance string `json:"balance"`
					Symbol  string `json:"symbol"`
					ChainID int64  `json:"chain_id"`
				}{gw.From().Hex(), gateway.FormatAmount(balance), network.Symbol, gw.ChainID().Int64()}
				data, _ := json.MarshalIndent(view, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			output.Info("Account: %s", gw.From().Hex())
			output.Info("Network: %s (chain %d)", network.Name, gw.ChainID().Int64())
			output.Bold("Balance: %s %s", gateway.FormatAmount(balance), network.Symbol)
			if url := network.AccountURL(gw.From().Hex()); url != "" {
				output.Info("Explorer: %s", url)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&keyHex, "key", "", "Private key hex (overrides key file and environment)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "Path to a file holding the private key hex")

	return cmd
}
