package gateway

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// nativeTransferGasLimit is the fixed cost of a plain value transfer.
const nativeTransferGasLimit = 21_000

// SendNative signs and broadcasts a plain value transfer, used by the
// provisioning surface to fund accounts. Returns the transaction hash.
func SendNative(ctx context.Context, backend Backend, chainID *big.Int, key *ecdsa.PrivateKey, to common.Address, amount *big.Int) (string, error) {
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return "", &RPCError{Op: "nonce", Err: err}
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", &RPCError{Op: "gas price", Err: err}
	}

	tx := types.NewTransaction(nonce, to, amount, nativeTransferGasLimit, gasPrice, nil)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	if err := backend.SendTransaction(ctx, signedTx); err != nil {
		return "", &RPCError{Op: "send", Err: err}
	}
	return signedTx.Hash().Hex(), nil
}

// DeployContract signs and broadcasts a contract-creation transaction from
// compiled bytecode. Estimation is attempted first; when the network rejects
// it the explicit elevated limits are used, the way Hedera deployments need.
// Returns the transaction hash and the address the contract will occupy.
func DeployContract(ctx context.Context, backend Backend, chainID *big.Int, key *ecdsa.PrivateKey, bytecode []byte, opts SubmitOpts) (string, common.Address, error) {
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return "", common.Address{}, &RPCError{Op: "nonce", Err: err}
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", common.Address{}, &RPCError{Op: "gas price", Err: err}
	}
	if opts.GasPriceFloor != nil && gasPrice.Cmp(opts.GasPriceFloor) < 0 {
		gasPrice = new(big.Int).Set(opts.GasPriceFloor)
	}

	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		gasLimit, err = backend.EstimateGas(ctx, ethereum.CallMsg{From: from, Data: bytecode})
		if err != nil {
			return "", common.Address{}, &EstimationError{Err: err}
		}
	}

	tx := types.NewContractCreation(nonce, big.NewInt(0), gasLimit, gasPrice, bytecode)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return "", common.Address{}, fmt.Errorf("sign deployment: %w", err)
	}
	if err := backend.SendTransaction(ctx, signedTx); err != nil {
		return "", common.Address{}, &RPCError{Op: "send", Err: err}
	}

	return signedTx.Hash().Hex(), crypto.CreateAddress(from, nonce), nil
}

// WaitMinedRaw polls for a receipt over a bare backend, for provisioning
// flows that have no bound contract gateway yet.
func WaitMinedRaw(ctx context.Context, backend Backend, txHash string, timeout time.Duration) (*Receipt, error) {
	g := &Gateway{backend: backend}
	return g.WaitMined(ctx, txHash, timeout)
}
