// Package keys handles signing-identity generation and loading for the CLI.
package keys

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// Environment variables consulted for key material, in priority order.
var envVars = []string{"SENDORA_PRIVATE_KEY", "PRIVATE_KEY", "HEDERA_ECDSA_PRIVATE_KEY"}

// Generate creates a fresh secp256k1 signing key.
func Generate() (*ecdsa.PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// Address derives the account address for a key.
func Address(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

// Hex encodes a private key as 0x-prefixed hex.
func Hex(key *ecdsa.PrivateKey) string {
	return hexutil.Encode(crypto.FromECDSA(key))
}

// ParseHex decodes a private key from hex, with or without 0x prefix.
func ParseHex(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "0x"))
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// LoadOptions controls where Load looks for key material.
type LoadOptions struct {
	Hex         string // explicit key, wins over everything
	File        string // path to a file holding the hex key
	EnvFile     string // .env file loaded before consulting environment variables
	Interactive bool   // fall back to a hidden terminal prompt
}

// Load resolves the signing key. Resolution order: explicit hex, key file,
// environment (optionally seeded from a .env file), interactive prompt.
func Load(opts LoadOptions) (*ecdsa.PrivateKey, error) {
	if opts.Hex != "" {
		return ParseHex(opts.Hex)
	}

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		return ParseHex(string(data))
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	} else {
		// Best-effort load of a local .env, matching the original scripts.
		_ = godotenv.Load()
	}

	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return ParseHex(v)
		}
	}

	if opts.Interactive {
		return promptKey()
	}

	return nil, fmt.Errorf("no signing key configured (set %s or pass --key-file)", envVars[0])
}

// promptKey reads a private key from the terminal without echoing it.
func promptKey() (*ecdsa.PrivateKey, error) {
	fmt.Fprint(os.Stderr, "Private key (hex): ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read key from terminal: %w", err)
	}
	return ParseHex(string(raw))
}

// WriteEnvFile writes the key material to a dotenv file the way the original
// provisioning scripts did, refusing to clobber an existing file.
func WriteEnvFile(path string, key *ecdsa.PrivateKey) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}
	content := fmt.Sprintf("SENDORA_PRIVATE_KEY=%s\n# address: %s\n", Hex(key), Address(key).Hex())
	return os.WriteFile(path, []byte(content), 0o600)
}
