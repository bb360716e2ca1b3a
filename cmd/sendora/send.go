package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sendora-labs/sendora/internal/gateway"
	"github.com/sendora-labs/sendora/internal/ledger"
	"github.com/sendora-labs/sendora/internal/output"
	"github.com/sendora-labs/sendora/internal/pipeline"
)

func NewSendCmd() *cobra.Command {
	var (
		to       string
		amount   string
		message  string
		keyword  string
		label    string
		approval string
		keyHex   string
		keyFile  string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a value transfer through the full pipeline",
		Long: `Submit a value transfer: validate, negotiate off-chain, check funds,
submit with tiered gas strategies, and wait for confirmation.

A confirmation timeout is not a failure: the transaction may still land,
and the printed hash can be checked on the block explorer.`,
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

			ch, closeStore := openChannel(approval)
			defer closeStore()
			ch.Open(cmd.Context())

			opts := []pipeline.Option{pipeline.WithLogger(pipelineLogger())}
			if timeout, err := confirmTimeout(); err != nil {
				return err
			} else if timeout > 0 {
				opts = append(opts, pipeline.WithConfirmTimeout(timeout))
			}
			p := pipeline.New(gw, ch, opts...)

			output.Info("Sending %s %s to %s on %s...", amount, gw.Network().Symbol, to, gw.Network().Name)
			outcome, err := p.Submit(cmd.Context(), pipeline.TransferRequest{
				Recipient:    to,
				Amount:       amount,
				Message:      message,
				Keyword:      keyword,
				AccountLabel: label,
			})

			printOutcome(gw, outcome)
			if err != nil {
				return fmt.Errorf("transfer %s: %w", outcome.Status, err)
			}

			// Refresh the display hint after a successful or indeterminate
			// transfer.
			if count, cerr := gw.TransactionCount(cmd.Context()); cerr == nil {
				_ = ledger.NewCountCache(homeDir).Store(count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient address (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in display units, e.g. 0.5 (required)")
	cmd.Flags().StringVar(&message, "message", "", "Free-text message stored with the transfer")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Keyword for cosmetic image lookup")
	cmd.Flags().StringVar(&label, "label", "", "Account label stored with the transfer")
	cmd.Flags().StringVar(&approval, "approval", "", "Negotiation approval policy: auto, manual, reject")
	cmd.Flags().StringVar(&keyHex, "key", "", "Private key hex (overrides key file and environment)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "Path to a file holding the private key hex")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// printOutcome renders a transfer outcome for humans or as JSON.
func printOutcome(gw *gateway.Gateway, outcome *pipeline.Outcome) {
	if outcome == nil {
		return
	}

	if jsonMode {
		view := struct {
			Status        string `json:"status"`
			TxHash        string `json:"tx_hash,omitempty"`
			BlockNumber   int64  `json:"block_number,omitempty"`
			Strategy      string `json:"strategy,omitempty"`
			NegotiationID string `json:"negotiation_id,omitempty"`
			Error         string `json:"error,omitempty"`
			ErrorCode     string `json:"error_code,omitempty"`
		}{
			Status:        string(outcome.Status),
			TxHash:        outcome.TxHash,
			BlockNumber:   outcome.BlockNumber,
			Strategy:      outcome.Strategy,
			NegotiationID: outcome.NegotiationID,
		}
		if outcome.Err != nil {
			view.Error = outcome.Err.Error()
			view.ErrorCode = gateway.ErrorCode(outcome.Err)
		}
		data, _ := json.MarshalIndent(view, "", "  ")
		fmt.Println(string(data))
		return
	}

	network := gw.Network()
	switch outcome.Status {
	case pipeline.StatusConfirmed:
		output.Success("Transfer confirmed in block %d", outcome.BlockNumber)
		output.Info("  Transaction: %s", outcome.TxHash)
		if url := network.TxURL(outcome.TxHash); url != "" {
			output.Info("  Explorer:    %s", url)
		}
	case pipeline.StatusTimedOut:
		output.Warn("confirmation wait timed out; the transaction may still land")
		output.Info("  Transaction: %s", outcome.TxHash)
		if url := network.TxURL(outcome.TxHash); url != "" {
			output.Info("  Check:       %s", url)
		}
	case pipeline.StatusFailed:
		if outcome.TxHash != "" {
			output.Info("  Transaction: %s", outcome.TxHash)
		}
	}
}
