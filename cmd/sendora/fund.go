package main

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"

	"github.com/sendora-labs/sendora/internal/gateway"
	"github.com/sendora-labs/sendora/internal/output"
)

func NewFundCmd() *cobra.Command {
	var (
		to      string
		amount  string
		keyHex  string
		keyFile string
	)

	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Fund an account with native value (provisioning)",
		Long: `Send a plain value transfer from the configured funder key to a target
address. Intended for provisioning fresh accounts on a local devnet or a
testnet faucet account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if !common.IsHexAddress(to) {
				return fmt.Errorf("invalid recipient address: %s", to)
			}
			wei, err := gateway.ParseAmount(amount)
			if err != nil {
				return err
			}

			signer, err := loadSigner(keyHex, keyFile)
			if err != nil {
				return err
			}

			reg := effectiveRegistry()
			network, ok := reg.Lookup(networkName)
			if !ok {
				return fmt.Errorf("unknown network %q (known: %v)", networkName, reg.Names())
			}

			backend, err := ethclient.DialContext(cmd.Context(), network.RPCURL)
			if err != nil {
				return fmt.Errorf("%w: dial %s: %v", gateway.ErrNetworkUnavailable, network.RPCURL, err)
			}
			defer backend.Close()

			chainID, err := backend.ChainID(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w: resolve chain ID: %v", gateway.ErrNetworkUnavailable, err)
			}

			output.Info("Funding %s with %s %s on %s...", to, amount, network.Symbol, network.Name)
			txHash, err := gateway.SendNative(cmd.Context(), backend, chainID, signer, common.HexToAddress(to), wei)
			if err != nil {
				return err
			}
			output.Info("  Transaction: %s", txHash)

			receipt, err := gateway.WaitMinedRaw(cmd.Context(), backend, txHash, 2*time.Minute)
			if err != nil {
				return err
			}
			output.Success("Funded %s in block %d", to, receipt.BlockNumber)

			if balance, err := backend.BalanceAt(cmd.Context(), common.HexToAddress(to), nil); err == nil {
				output.Info("  New balance: %s %s", gateway.FormatAmount(balance), network.Symbol)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Address to fund (required)")
	cmd.Flags().StringVar(&amount, "amount", "1", "Amount in display units")
	cmd.Flags().StringVar(&keyHex, "key", "", "Funder private key hex")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "Path to a file holding the funder key hex")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
