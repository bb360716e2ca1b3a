package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sendora-labs/sendora/internal/config"
	"github.com/sendora-labs/sendora/internal/output"
)

// Global configuration variables
var (
	homeDir     string
	jsonMode    bool
	noColor     bool
	verbose     bool
	configPath  string // path to config.toml (--config flag)
	networkName string // active network (--network flag)

	// loadedFileConfig holds the parsed config.toml values (nil if no config file)
	loadedFileConfig *config.FileConfig
)

// DefaultHomeDir returns the default home directory for sendora data.
func DefaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sendora"
	}
	return filepath.Join(home, ".sendora")
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sendora",
		Short: "CLI for negotiated value transfers on EVM-compatible networks",
		Long: `sendora submits value transfers through the deployed Transactions contract
on EVM-compatible networks (local Hardhat, Sepolia, Hedera testnet).

Every transfer runs through the full pipeline: off-chain negotiation,
funds check, tiered submission, and bounded confirmation wait.

Examples:
  # Send 0.5 to an address on the default network
  sendora send --to 0x742d...bEb0 --amount 0.5 --message "lunch"

  # Batch transfer on Hedera
  sendora batch --network hedera --to 0xaaa...,0xbbb... --amounts 1,2

  # Show the on-chain transfer history
  sendora history

  # Provision a fresh key
  sendora keygen --env-file .env`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(homeDir, configPath, output.DefaultLogger)
			fileCfg, configFilePath, err := loader.LoadFileConfig()
			if err != nil {
				return err
			}
			loadedFileConfig = fileCfg

			// Apply config file values to global flags unless the flag was
			// set explicitly. Priority: default < config.toml < flag.
			if fileCfg != nil {
				if fileCfg.Home != nil && !cmd.Flags().Changed("home") {
					homeDir = *fileCfg.Home
				}
				if fileCfg.NoColor != nil && !cmd.Flags().Changed("no-color") {
					noColor = *fileCfg.NoColor
				}
				if fileCfg.Verbose != nil && !cmd.Flags().Changed("verbose") {
					verbose = *fileCfg.Verbose
				}
				if fileCfg.JSON != nil && !cmd.Flags().Changed("json") {
					jsonMode = *fileCfg.JSON
				}
				if fileCfg.Network != nil && !cmd.Flags().Changed("network") {
					networkName = *fileCfg.Network
				}
				output.DefaultLogger.Debug("Using config file: %s", configFilePath)
			}

			output.DefaultLogger.SetNoColor(noColor)
			output.DefaultLogger.SetVerbose(verbose)
			output.DefaultLogger.SetJSONMode(jsonMode)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&homeDir, "home", DefaultHomeDir(), "Home directory for sendora data")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml file")
	cmd.PersistentFlags().StringVar(&networkName, "network", "hardhat", "Network to operate on")
	cmd.PersistentFlags().BoolVar(&jsonMode, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.AddCommand(NewSendCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewBalanceCmd())
	cmd.AddCommand(NewMessagesCmd())
	cmd.AddCommand(NewKeygenCmd())
	cmd.AddCommand(NewFundCmd())
	cmd.AddCommand(NewDeployCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
