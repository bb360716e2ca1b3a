package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sendora-labs/sendora/internal/channel"
	"github.com/sendora-labs/sendora/internal/output"
)

func NewMessagesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show the negotiation message audit log",
		Long: `Show the persisted negotiation exchange: transfer intents, their
confirmation replies, and execution outcomes, in arrival order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := channel.OpenSQLiteStore(filepath.Join(homeDir, "messages.db"))
			if err != nil {
				return fmt.Errorf("open message log: %w", err)
			}
			defer store.Close()

			msgs, err := store.All(cmd.Context())
			if err != nil {
				return err
			}
			msgs = channel.Recent(msgs, limit)

			if jsonMode {
				data, err := json.MarshalIndent(msgs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(msgs) == 0 {
				output.Info("No negotiation messages recorded yet.")
				return nil
			}

			for _, m := range msgs {
				output.Info("%s  [%s]  %s -> %s", m.Timestamp.Format("2006-01-02 15:04:05"), m.Type, m.From, m.To)
				if status := m.ContentString(channel.ContentStatus); status != "" {
					output.Info("    status: %s", status)
				}
				if recipient := m.ContentString(channel.ContentRecipient); recipient != "" {
					output.Info("    recipient: %s  amount: %s", recipient, m.ContentString(channel.ContentAmount))
				}
				if txID, ok := m.Content["transactionId"].(string); ok && txID != "" {
					output.Info("    transaction: %s", txID)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Show at most this many recent messages (0 = all)")

	return cmd
}
