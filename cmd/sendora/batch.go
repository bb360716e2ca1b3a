package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sendora-labs/sendora/internal/gateway"
	"github.com/sendora-labs/sendora/internal/ledger"
	"github.com/sendora-labs/sendora/internal/output"
	"github.com/sendora-labs/sendora/internal/pipeline"
)

func NewBatchCmd() *cobra.Command {
	var (
		to       string
		amounts  string
		message  string
		keyword  string
		approval string
		keyHex   string
		keyFile  string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Submit an atomic batch transfer to multiple recipients",
		Long: `Submit one transferBatch call carrying the full recipient and amount
lists. The batch is atomic at the chain-call level: the contract applies
it entirely or reverts it entirely, with no partial deliveries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			recipients := splitList(to)
			amountList := splitList(amounts)
			if len(recipients) == 0 {
				return fmt.Errorf("--to must list at least one recipient")
			}

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

			output.Info("Sending batch of %d transfers on %s...", len(recipients), gw.Network().Name)
			outcome, err := p.SubmitBatch(cmd.Context(), pipeline.BatchRequest{
				Recipients: recipients,
				Amounts:    amountList,
				Message:    message,
				Keyword:    keyword,
			})

			printOutcome(gw, outcome)
			if err != nil {
				return fmt.Errorf("batch transfer %s: %w", outcome.Status, err)
			}

			if count, cerr := gw.TransactionCount(cmd.Context()); cerr == nil {
				_ = ledger.NewCountCache(homeDir).Store(count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Comma-separated recipient addresses (required)")
	cmd.Flags().StringVar(&amounts, "amounts", "", "Comma-separated amounts, one per recipient (required)")
	cmd.Flags().StringVar(&message, "message", "", "Free-text message stored with the batch")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Keyword for cosmetic image lookup")
	cmd.Flags().StringVar(&approval, "approval", "", "Negotiation approval policy: auto, manual, reject")
	cmd.Flags().StringVar(&keyHex, "key", "", "Private key hex (overrides key file and environment)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "Path to a file holding the private key hex")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amounts")

	return cmd
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var result []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
