package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sendora-labs/sendora/internal/keys"
	"github.com/sendora-labs/sendora/internal/output"
)

func NewKeygenCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a fresh signing key",
		Long: `Generate a fresh secp256k1 signing key and print its address and
private key. With --env-file the key is written to a dotenv file that the
other commands pick up automatically.

The key controls real funds on public networks: store it safely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			key, err := keys.Generate()
			if err != nil {
				return err
			}

			if jsonMode {
				view := struct {
					Address    string `json:"address"`
					PrivateKey string `json:"private_key"`
				}{keys.Address(key).Hex(), keys.Hex(key)}
				data, _ := json.MarshalIndent(view, "", "  ")
				fmt.Println(string(data))
			} else {
				output.Success("Generated new signing key")
				output.Info("  Address:     %s", keys.Address(key).Hex())
				output.Info("  Private key: %s", keys.Hex(key))
			}

			if envFile != "" {
				if err := keys.WriteEnvFile(envFile, key); err != nil {
					return err
				}
				output.Success("Wrote %s", envFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Write the key to this dotenv file")

	return cmd
}
