package gateway

import (
	"fmt"
	"math/big"
	"strings"

	"cosmossdk.io/math"
)

// nativeDecimals is the decimal precision of the chain-native unit (wei per
// ether, tinybar-equivalent on the Hedera JSON-RPC relay).
const nativeDecimals = 18

// ParseAmount converts a decimal amount string in chain-native display units
// (e.g. "1.5") into base units (wei). The amount must be a positive finite
// decimal.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount is empty")
	}
	dec, err := math.LegacyNewDecFromStr(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !dec.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", s)
	}
	wei := dec.MulInt(math.NewIntWithDecimal(1, nativeDecimals)).TruncateInt()
	if wei.IsZero() {
		return nil, fmt.Errorf("amount %s is below the smallest chain unit", s)
	}
	return wei.BigInt(), nil
}

// FormatAmount renders base units (wei) as a decimal string in display units,
// with trailing zeros trimmed.
func FormatAmount(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	dec := math.LegacyNewDecFromBigIntWithPrec(wei, nativeDecimals)
	s := dec.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
