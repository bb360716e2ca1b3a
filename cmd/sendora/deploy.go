package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"

	"github.com/sendora-labs/sendora/internal/gateway"
	"github.com/sendora-labs/sendora/internal/output"
)

// artifact is the compiled-contract JSON produced by the contract toolchain.
type artifact struct {
	Bytecode string `json:"bytecode"`
}

// Explicit gas settings for networks that reject deployment estimation.
// Hedera needs a high fixed limit and its ~530+ gwei minimum gas price.
var deployFallbackOpts = gateway.SubmitOpts{
	GasLimit:      5_000_000,
	GasPriceFloor: new(big.Int).Mul(big.NewInt(600), big.NewInt(1_000_000_000)),
}

func NewDeployCmd() *cobra.Command {
	var (
		artifactPath string
		keyHex       string
		keyFile      string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the Transactions contract (provisioning)",
		Long: `Deploy the Transactions contract from a compiled artifact JSON. The
deployment first lets the node estimate gas; networks that reject
estimation get a second attempt with explicit elevated gas settings.

After a successful deployment, register the printed address for the
network under [networks.<name>] in config.toml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			data, err := os.ReadFile(artifactPath)
			if err != nil {
				return fmt.Errorf("read artifact: %w", err)
			}
			var art artifact
			if err := json.Unmarshal(data, &art); err != nil {
				return fmt.Errorf("parse artifact %s: %w", artifactPath, err)
			}
			bytecode := common.FromHex(art.Bytecode)
			if len(bytecode) == 0 {
				return fmt.Errorf("artifact %s has no bytecode", artifactPath)
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

			output.Info("Deploying Transactions contract to %s (chain %d)...", network.Name, chainID.Int64())

			txHash, address, err := gateway.DeployContract(cmd.Context(), backend, chainID, signer, bytecode, gateway.SubmitOpts{})
			if err != nil {
				var estimation *gateway.EstimationError
				if !errors.As(err, &estimation) {
					return err
				}
				output.Warn("gas estimation rejected (%v), retrying with explicit gas settings", err)
				txHash, address, err = gateway.DeployContract(cmd.Context(), backend, chainID, signer, bytecode, deployFallbackOpts)
				if err != nil {
					return err
				}
			}
			output.Info("  Transaction: %s", txHash)

			receipt, err := gateway.WaitMinedRaw(cmd.Context(), backend, txHash, 5*time.Minute)
			if err != nil {
				return err
			}

			output.Success("Contract deployed")
			output.Info("  Address: %s", address.Hex())
			output.Info("  Block:   %d", receipt.BlockNumber)
			output.Info("  Gas:     %d", receipt.GasUsed)
			output.Info("")
			output.Info("Register it in config.toml:")
			output.Info("  [networks.%s]", network.Name)
			output.Info("  contract = %q", address.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&artifactPath, "artifact", "", "Path to the compiled contract artifact JSON (required)")
	cmd.Flags().StringVar(&keyHex, "key", "", "Deployer private key hex")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "Path to a file holding the deployer key hex")
	_ = cmd.MarkFlagRequired("artifact")

	return cmd
}
