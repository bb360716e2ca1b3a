package gateway

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string // expected wei as decimal string
		wantErr bool
	}{
		{name: "whole unit", input: "1", want: "1000000000000000000"},
		{name: "fractional", input: "0.5", want: "500000000000000000"},
		{name: "fee reserve", input: "0.01", want: "10000000000000000"},
		{name: "trims spaces", input: " 2.5 ", want: "2500000000000000000"},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "not a number", input: "one", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "below smallest unit", input: "0.0000000000000000001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatAmount(t *testing.T) {
	one, _ := new(big.Int).SetString("1000000000000000000", 10)
	half, _ := new(big.Int).SetString("500000000000000000", 10)

	require.Equal(t, "1", FormatAmount(one))
	require.Equal(t, "0.5", FormatAmount(half))
	require.Equal(t, "0", FormatAmount(nil))
	require.Equal(t, "0", FormatAmount(big.NewInt(0)))
}

func TestParseFormatRoundTrip(t *testing.T) {
	wei, err := ParseAmount("1.25")
	require.NoError(t, err)
	require.Equal(t, "1.25", FormatAmount(wei))
}
