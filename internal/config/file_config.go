package config

import "github.com/sendora-labs/sendora/internal/networks"

// FileConfig represents the raw config.toml file contents.
// All fields are pointers to distinguish "not set" from "set to zero/false".
type FileConfig struct {
	// Global settings
	Home    *string `toml:"home"`
	NoColor *bool   `toml:"no_color"`
	Verbose *bool   `toml:"verbose"`
	JSON    *bool   `toml:"json"`

	// Transfer settings
	Network        *string `toml:"network"`         // active network name
	Approval       *string `toml:"approval"`        // negotiation approval policy: auto, manual, reject
	KeyFile        *string `toml:"key_file"`        // path to hex private key file
	EnvFile        *string `toml:"env_file"`        // dotenv file holding key material
	ConfirmTimeout *string `toml:"confirm_timeout"` // confirmation wait bound, e.g. "60s"

	// Per-network overrides and additions, keyed by network name.
	Networks map[string]NetworkOverride `toml:"networks"`
}

// NetworkOverride adjusts or adds one registry entry from the config file.
type NetworkOverride struct {
	ChainID  *int64  `toml:"chain_id"`
	RPCURL   *string `toml:"rpc_url"`
	Contract *string `toml:"contract"`
	Symbol   *string `toml:"symbol"`
	Explorer *string `toml:"explorer"`
}

// IsEmpty returns true if no configuration values are set.
func (f *FileConfig) IsEmpty() bool {
	return f.Home == nil &&
		f.NoColor == nil &&
		f.Verbose == nil &&
		f.JSON == nil &&
		f.Network == nil &&
		f.Approval == nil &&
		f.KeyFile == nil &&
		f.EnvFile == nil &&
		f.ConfirmTimeout == nil &&
		len(f.Networks) == 0
}

// ApplyNetworks merges the file's network overrides into a registry. Entries
// for unknown names are added; fields left nil keep the registry value.
func (f *FileConfig) ApplyNetworks(reg networks.Registry) networks.Registry {
	for name, override := range f.Networks {
		n, ok := reg[name]
		if !ok {
			n = networks.Network{Name: name}
		}
		if override.ChainID != nil {
			n.ChainID = *override.ChainID
		}
		if override.RPCURL != nil {
			n.RPCURL = *override.RPCURL
		}
		if override.Contract != nil {
			n.Contract = *override.Contract
		}
		if override.Symbol != nil {
			n.Symbol = *override.Symbol
		}
		if override.Explorer != nil {
			n.Explorer = *override.Explorer
		}
		reg[name] = n
	}
	return reg
}
