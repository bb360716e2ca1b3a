package pipeline

import (
	"math/big"

	"github.com/sendora-labs/sendora/internal/gateway"
)

// Elevated resource ceiling for networks whose default estimation is
// unreliable. The values match what the Hedera JSON-RPC relay needs: a fixed
// high gas limit and its ~530+ gwei minimum gas price.
const (
	elevatedGasLimit     = 5_000_000
	elevatedGasPriceGwei = 600
	weiPerGwei           = 1_000_000_000
)

// Strategy is one submission attempt configuration. Strategies are tried in
// order until one succeeds.
type Strategy struct {
	Name string
	Opts gateway.SubmitOpts
}

// DefaultStrategies returns the standard two-tier submission ladder:
// default resource limits first, then the fixed elevated ceiling.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "default"},
		{
			Name: "elevated",
			Opts: gateway.SubmitOpts{
				GasLimit:      elevatedGasLimit,
				GasPriceFloor: new(big.Int).Mul(big.NewInt(elevatedGasPriceGwei), big.NewInt(weiPerGwei)),
			},
		},
	}
}
