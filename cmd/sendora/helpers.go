package main

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cosmossdk.io/log"

	"github.com/sendora-labs/sendora/internal/channel"
	"github.com/sendora-labs/sendora/internal/keys"
	"github.com/sendora-labs/sendora/internal/networks"
	"github.com/sendora-labs/sendora/internal/output"
)

// channelIdentity is this CLI's name on the negotiation exchange.
const channelIdentity = "Sendora Transfer Agent"

// effectiveRegistry merges config-file network overrides into the built-in
// registry.
func effectiveRegistry() networks.Registry {
	reg := networks.Default()
	if loadedFileConfig != nil {
		reg = loadedFileConfig.ApplyNetworks(reg)
	}
	return reg
}

// pipelineLogger returns the structured event logger for pipeline stage
// transitions. Quiet unless --verbose is set.
func pipelineLogger() log.Logger {
	if verbose {
		return log.NewLogger(os.Stderr)
	}
	return log.NewNopLogger()
}

// loadSigner resolves the signing key from flags, config, environment, or an
// interactive prompt.
func loadSigner(keyHex, keyFile string) (*ecdsa.PrivateKey, error) {
	opts := keys.LoadOptions{Hex: keyHex, File: keyFile, Interactive: true}
	if loadedFileConfig != nil {
		if keyFile == "" && loadedFileConfig.KeyFile != nil {
			opts.File = *loadedFileConfig.KeyFile
		}
		if loadedFileConfig.EnvFile != nil {
			opts.EnvFile = *loadedFileConfig.EnvFile
		}
	}
	return keys.Load(opts)
}

// openChannel builds the negotiation channel with a persistent SQLite audit
// log under the home directory. Store failures degrade to memory so the
// channel itself never fails to open.
func openChannel(approvalFlag string) (*channel.Channel, func()) {
	policy := approvalFlag
	if policy == "" && loadedFileConfig != nil && loadedFileConfig.Approval != nil {
		policy = *loadedFileConfig.Approval
	}
	approver, err := channel.ApproverForPolicy(policy)
	if err != nil {
		output.Warn("%v, falling back to auto-approval", err)
		approver = channel.AutoApprover{}
	}

	var store channel.Store
	if err := os.MkdirAll(homeDir, 0o755); err == nil {
		if s, err := channel.OpenSQLiteStore(filepath.Join(homeDir, "messages.db")); err == nil {
			store = s
		} else {
			output.Warn("message log unavailable (%v), keeping audit trail in memory", err)
		}
	}
	if store == nil {
		store = channel.NewMemoryStore()
	}

	ch := channel.New(channelIdentity,
		channel.WithStore(store),
		channel.WithApprover(approver),
		channel.WithLogger(pipelineLogger()),
	)
	return ch, func() { _ = store.Close() }
}

// confirmTimeout resolves the configured confirmation wait bound.
func confirmTimeout() (time.Duration, error) {
	if loadedFileConfig == nil || loadedFileConfig.ConfirmTimeout == nil {
		return 0, nil
	}
	d, err := time.ParseDuration(*loadedFileConfig.ConfirmTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid confirm_timeout %q: %w", *loadedFileConfig.ConfirmTimeout, err)
	}
	return d, nil
}
