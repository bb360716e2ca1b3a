package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sendora-labs/sendora/internal/gateway"
	"github.com/sendora-labs/sendora/internal/ledger"
	"github.com/sendora-labs/sendora/internal/output"
)

func NewHistoryCmd() *cobra.Command {
	var (
		limit   int
		keyHex  string
		keyFile string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the on-chain transfer history for the active network",
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

			view := ledger.NewView(gw, ledger.NewCountCache(homeDir))
			entries, err := view.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if jsonMode {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			network := gw.Network()
			if len(entries) == 0 {
				output.Info("No transfers recorded on %s yet.", network.Name)
				return nil
			}

			output.Bold("Latest transfers on %s:", network.Name)
			for _, e := range entries {
				output.Info("  %s  %s -> %s  %s %s",
					e.Timestamp.Format("2006-01-02 15:04:05"),
					shortenAddress(e.From), shortenAddress(e.To),
					e.Amount, network.Symbol)
				if e.Message != "" {
					output.Info("      %q", e.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many entries (0 = all)")
	cmd.Flags().StringVar(&keyHex, "key", "", "Private key hex (overrides key file and environment)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "Path to a file holding the private key hex")

	return cmd
}

// shortenAddress renders 0x1234...abcd for display.
func shortenAddress(addr string) string {
	if len(addr) <= 11 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
