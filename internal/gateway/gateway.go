// Package gateway wraps a connection to one EVM-compatible network: it holds
// the signing identity and exposes typed calls against the one deployed
// Transactions contract instance for that network.
package gateway

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/sendora-labs/sendora/internal/networks"
)

// receiptPollInterval is how often the confirmation wait polls for a receipt.
const receiptPollInterval = 2 * time.Second

// Backend is the subset of the EVM RPC client the gateway relies on.
// *ethclient.Client satisfies it; tests substitute a fake.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

var _ Backend = (*ethclient.Client)(nil)

// TransferCall describes one value-transfer call against the contract.
// A single recipient maps to transfer, multiple recipients to transferBatch.
type TransferCall struct {
	Receivers    []common.Address
	Amounts      []*big.Int
	Message      string
	AccountLabel string
	Keyword      string
}

// Value returns the total native value attached to the call.
func (c TransferCall) Value() *big.Int {
	total := new(big.Int)
	for _, amt := range c.Amounts {
		total.Add(total, amt)
	}
	return total
}

// Batch reports whether the call targets more than one recipient.
func (c TransferCall) Batch() bool { return len(c.Receivers) > 1 }

// SubmitOpts carries explicit resource limits for one submission attempt.
// A zero GasLimit means "estimate on submit"; a nil GasPriceFloor means
// "use the node's suggested price as-is".
type SubmitOpts struct {
	GasLimit      uint64
	GasPriceFloor *big.Int
}

// Receipt is the confirmation result of a mined transaction.
type Receipt struct {
	TxHash      string
	BlockNumber int64
	Status      bool
	GasUsed     uint64
}

// ChainTransaction is one ledger record as stored by the contract.
type ChainTransaction struct {
	Sender    common.Address
	Receiver  common.Address
	Amount    *big.Int
	Message   string
	Timestamp *big.Int
	Keyword   string
}

// Gateway is an explicitly constructed connection to one network. It is
// stateless between calls apart from the signing identity, so independent
// calls may run concurrently; concurrent submissions from the same identity
// can race on nonce ordering at the chain level.
type Gateway struct {
	backend  Backend
	chainID  *big.Int
	network  networks.Network
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
}

// Connect dials the RPC endpoint of the named network, resolves the active
// chain ID from the node, and binds the deployed contract registered for it.
// Fails with ErrNetworkUnavailable when no endpoint is reachable and
// ErrUnsupportedNetwork when the resolved chain has no deployed contract.
func Connect(ctx context.Context, reg networks.Registry, name string, key *ecdsa.PrivateKey) (*Gateway, error) {
	hint, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown network %q (known: %v)", ErrUnsupportedNetwork, name, reg.Names())
	}

	backend, err := ethclient.DialContext(ctx, hint.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrNetworkUnavailable, hint.RPCURL, err)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("%w: resolve chain ID: %v", ErrNetworkUnavailable, err)
	}

	// The node decides the active network; the registry decides whether a
	// contract is deployed there.
	active, ok := reg.ByChainID(chainID.Int64())
	if !ok || !active.Supported() {
		backend.Close()
		return nil, fmt.Errorf("%w: no contract deployed on chain %d", ErrUnsupportedNetwork, chainID.Int64())
	}

	return New(backend, chainID, active, key), nil
}

// New builds a Gateway over an already-connected backend.
func New(backend Backend, chainID *big.Int, network networks.Network, key *ecdsa.PrivateKey) *Gateway {
	g := &Gateway{
		backend:  backend,
		chainID:  chainID,
		network:  network,
		contract: common.HexToAddress(network.Contract),
		key:      key,
	}
	if key != nil {
		g.from = crypto.PubkeyToAddress(key.PublicKey)
	}
	return g
}

// ChainID returns the active chain identifier.
func (g *Gateway) ChainID() *big.Int { return new(big.Int).Set(g.chainID) }

// Network returns the resolved network configuration.
func (g *Gateway) Network() networks.Network { return g.network }

// From returns the signing identity's address.
func (g *Gateway) From() common.Address { return g.from }

// Balance reads the signer's current balance in base units.
func (g *Gateway) Balance(ctx context.Context) (*big.Int, error) {
	balance, err := g.backend.BalanceAt(ctx, g.from, nil)
	if err != nil {
		return nil, &RPCError{Op: "balance", Err: err}
	}
	return balance, nil
}

// EstimateTransfer dry-runs the transfer call and returns the estimated gas.
// A failure here is an EstimationError, which callers treat as a warning.
func (g *Gateway) EstimateTransfer(ctx context.Context, call TransferCall) (uint64, error) {
	data, err := g.pack(call)
	if err != nil {
		return 0, err
	}
	gas, err := g.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  g.from,
		To:    &g.contract,
		Value: call.Value(),
		Data:  data,
	})
	if err != nil {
		return 0, &EstimationError{Err: err}
	}
	return gas, nil
}

// SubmitTransfer signs and broadcasts the transfer call with the given
// resource limits and returns the transaction hash. The wallet-approval
// equivalents of this call can block on the node; abandoning the context
// cancels the wait but not an already-broadcast transaction.
func (g *Gateway) SubmitTransfer(ctx context.Context, call TransferCall, opts SubmitOpts) (string, error) {
	data, err := g.pack(call)
	if err != nil {
		return "", err
	}

	nonce, err := g.backend.PendingNonceAt(ctx, g.from)
	if err != nil {
		return "", &RPCError{Op: "nonce", Err: err}
	}

	gasPrice, err := g.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", &RPCError{Op: "gas price", Err: err}
	}
	if opts.GasPriceFloor != nil && gasPrice.Cmp(opts.GasPriceFloor) < 0 {
		gasPrice = new(big.Int).Set(opts.GasPriceFloor)
	}

	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		gasLimit, err = g.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:     g.from,
			To:       &g.contract,
			GasPrice: gasPrice,
			Value:    call.Value(),
			Data:     data,
		})
		if err != nil {
			return "", &EstimationError{Err: err}
		}
	}

	tx := types.NewTransaction(nonce, g.contract, call.Value(), gasLimit, gasPrice, data)

	signer := types.LatestSignerForChainID(g.chainID)
	signedTx, err := types.SignTx(tx, signer, g.key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	if err := g.backend.SendTransaction(ctx, signedTx); err != nil {
		return "", &RPCError{Op: "send", Err: err}
	}

	return signedTx.Hash().Hex(), nil
}

// WaitMined polls for the transaction receipt until it is mined or the
// timeout elapses. A timeout yields ErrConfirmTimeout: the transaction is
// not known to have failed, it just has not confirmed yet. A mined receipt
// with a failed status yields a RevertError.
func (g *Gateway) WaitMined(ctx context.Context, txHash string, timeout time.Duration) (*Receipt, error) {
	hash := common.HexToHash(txHash)

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, fmt.Errorf("%w: %s after %s", ErrConfirmTimeout, txHash, timeout)
		case <-ticker.C:
			receipt, err := g.backend.TransactionReceipt(ctx, hash)
			if err != nil {
				// Not yet mined, keep waiting.
				continue
			}
			result := &Receipt{
				TxHash:      receipt.TxHash.Hex(),
				BlockNumber: receipt.BlockNumber.Int64(),
				Status:      receipt.Status == types.ReceiptStatusSuccessful,
				GasUsed:     receipt.GasUsed,
			}
			if !result.Status {
				return result, &RevertError{TxHash: result.TxHash}
			}
			return result, nil
		}
	}
}

// Transactions fetches the full on-chain transfer log.
func (g *Gateway) Transactions(ctx context.Context) ([]ChainTransaction, error) {
	raw, err := g.call(ctx, "getAllTransactions")
	if err != nil {
		return nil, err
	}
	out, err := transactionsABI.Unpack("getAllTransactions", raw)
	if err != nil {
		return nil, fmt.Errorf("decode getAllTransactions result: %w", err)
	}
	records := *abi.ConvertType(out[0], new([]ChainTransaction)).(*[]ChainTransaction)
	return records, nil
}

// TransactionCount reads the contract's transfer counter.
func (g *Gateway) TransactionCount(ctx context.Context) (uint64, error) {
	raw, err := g.call(ctx, "getTransactionCount")
	if err != nil {
		return 0, err
	}
	out, err := transactionsABI.Unpack("getTransactionCount", raw)
	if err != nil {
		return 0, fmt.Errorf("decode getTransactionCount result: %w", err)
	}
	count, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected getTransactionCount result type %T", out[0])
	}
	return count.Uint64(), nil
}

// Close releases the underlying RPC connection.
func (g *Gateway) Close() {
	if g.backend != nil {
		g.backend.Close()
	}
}

// call performs a read-only contract call.
func (g *Gateway) call(ctx context.Context, method string, args ...interface{}) ([]byte, error) {
	data, err := transactionsABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encode %s call: %w", method, err)
	}
	raw, err := g.backend.CallContract(ctx, ethereum.CallMsg{
		From: g.from,
		To:   &g.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, &RPCError{Op: method, Err: err}
	}
	return raw, nil
}

// pack encodes the transfer call data, choosing transfer or transferBatch by
// recipient count.
func (g *Gateway) pack(call TransferCall) ([]byte, error) {
	if len(call.Receivers) == 0 || len(call.Receivers) != len(call.Amounts) {
		return nil, fmt.Errorf("malformed transfer call: %d receivers, %d amounts", len(call.Receivers), len(call.Amounts))
	}
	if call.Batch() {
		data, err := transactionsABI.Pack("transferBatch", call.Receivers, call.Amounts, call.Message, call.Keyword)
		if err != nil {
			return nil, fmt.Errorf("encode transferBatch call: %w", err)
		}
		return data, nil
	}
	data, err := transactionsABI.Pack("transfer", call.Receivers[0], call.Amounts[0], call.Message, call.AccountLabel, call.Keyword)
	if err != nil {
		return nil, fmt.Errorf("encode transfer call: %w", err)
	}
	return data, nil
}
