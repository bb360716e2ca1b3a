// Package networks holds the registry of EVM networks sendora can talk to.
//
// A network is usable only when a deployed Transactions contract address is
// registered for its chain ID. Placeholder entries ("0x...") mark networks
// where deployment is pending.
package networks

import (
	"fmt"
	"sort"
	"strings"
)

// Network describes one EVM-compatible network and its deployed contract.
type Network struct {
	Name     string
	ChainID  int64
	RPCURL   string
	Contract string // deployed Transactions contract address, "" or "0x..." if not deployed
	Symbol   string // native currency symbol for display
	Explorer string // block explorer base URL, no trailing slash
}

// placeholderContract marks registry entries without a real deployment.
const placeholderContract = "0x..."

// Supported reports whether a deployed contract address is registered.
func (n Network) Supported() bool {
	return n.Contract != "" && n.Contract != placeholderContract
}

// TxURL returns the block explorer URL for a transaction hash.
// Returns an empty string when no explorer is registered.
func (n Network) TxURL(txHash string) string {
	if n.Explorer == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s", n.Explorer, txHash)
}

// AccountURL returns the block explorer URL for an account address.
func (n Network) AccountURL(address string) string {
	if n.Explorer == "" {
		return ""
	}
	// Hashscan uses /account, the etherscan family uses /address.
	if strings.Contains(n.Explorer, "hashscan.io") {
		return fmt.Sprintf("%s/account/%s", n.Explorer, address)
	}
	return fmt.Sprintf("%s/address/%s", n.Explorer, address)
}

// Registry maps network names to their configuration.
type Registry map[string]Network

// Default returns the built-in network registry.
func Default() Registry {
	return Registry{
		"hardhat": {
			Name:     "hardhat",
			ChainID:  31337,
			RPCURL:   "http://127.0.0.1:8545",
			Contract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
			Symbol:   "ETH",
		},
		"sepolia": {
			Name:     "sepolia",
			ChainID:  11155111,
			RPCURL:   "https://rpc.sepolia.org",
			Contract: "0xFF0016a7E2fD90169c5eF2c5dD266a46cc8dAC4B",
			Symbol:   "ETH",
			Explorer: "https://sepolia.etherscan.io",
		},
		"optimism-sepolia": {
			Name:     "optimism-sepolia",
			ChainID:  11155420,
			RPCURL:   "https://sepolia.optimism.io",
			Contract: placeholderContract,
			Symbol:   "ETH",
			Explorer: "https://sepolia-optimism.etherscan.io",
		},
		"base-sepolia": {
			Name:     "base-sepolia",
			ChainID:  84532,
			RPCURL:   "https://sepolia.base.org",
			Contract: placeholderContract,
			Symbol:   "ETH",
			Explorer: "https://sepolia.basescan.org",
		},
		"hedera": {
			Name:     "hedera",
			ChainID:  296,
			RPCURL:   "https://testnet.hashio.io/api",
			Contract: "0x1a1A6fFd5D6672bfF672EF51c8Ffaad0EA0AA0Eb",
			Symbol:   "HBAR",
			Explorer: "https://hashscan.io/testnet",
		},
	}
}

// Lookup resolves a network by name.
func (r Registry) Lookup(name string) (Network, bool) {
	n, ok := r[name]
	return n, ok
}

// ByChainID resolves a network by its chain identifier.
func (r Registry) ByChainID(chainID int64) (Network, bool) {
	for _, n := range r {
		if n.ChainID == chainID {
			return n, true
		}
	}
	return Network{}, false
}

// Names returns all registered network names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbol returns the currency symbol for a chain ID, defaulting to ETH.
func (r Registry) Symbol(chainID int64) string {
	if n, ok := r.ByChainID(chainID); ok && n.Symbol != "" {
		return n.Symbol
	}
	return "ETH"
}
