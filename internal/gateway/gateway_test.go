package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/sendora-labs/sendora/internal/networks"
)

type fakeBackend struct {
	chainID     *big.Int
	balance     *big.Int
	nonce       uint64
	gasPrice    *big.Int
	estimate    uint64
	estimateErr error
	sendErr     error
	sent        []*types.Transaction
	receipt     *types.Receipt
	receiptErr  error
	callResult  []byte
	callErr     error
}

func (f *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) { return f.chainID, nil }

func (f *fakeBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return f.estimate, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if f.receipt == nil {
		return nil, errors.New("not found")
	}
	return f.receipt, nil
}

func (f *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.callResult, nil
}

func (f *fakeBackend) Close() {}

func newTestGateway(t *testing.T, backend *fakeBackend) *Gateway {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	network := networks.Network{
		Name:     "hardhat",
		ChainID:  31337,
		Contract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		Symbol:   "ETH",
	}
	if backend.chainID == nil {
		backend.chainID = big.NewInt(31337)
	}
	return New(backend, backend.chainID, network, key)
}

func TestSubmitTransferSingleRecipient(t *testing.T) {
	backend := &fakeBackend{gasPrice: big.NewInt(1_000_000_000), estimate: 52_000}
	gw := newTestGateway(t, backend)

	amount, err := ParseAmount("1.5")
	require.NoError(t, err)

	call := TransferCall{
		Receivers: []common.Address{common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")},
		Amounts:   []*big.Int{amount},
		Message:   "lunch",
		Keyword:   "food",
	}

	hash, err := gw.SubmitTransfer(context.Background(), call, SubmitOpts{})
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.Len(t, backend.sent, 1)

	tx := backend.sent[0]
	require.Equal(t, transactionsABI.Methods["transfer"].ID, tx.Data()[:4])
	require.Equal(t, amount, tx.Value())
	require.Equal(t, uint64(52_000), tx.Gas())
	require.Equal(t, gw.contract, *tx.To())
}

func TestSubmitTransferBatchRecipients(t *testing.T) {
	backend := &fakeBackend{gasPrice: big.NewInt(1_000_000_000), estimate: 120_000}
	gw := newTestGateway(t, backend)

	one, _ := ParseAmount("1")
	two, _ := ParseAmount("2")
	call := TransferCall{
		Receivers: []common.Address{
			common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
			common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
		},
		Amounts: []*big.Int{one, two},
		Message: "split",
	}

	_, err := gw.SubmitTransfer(context.Background(), call, SubmitOpts{})
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	tx := backend.sent[0]
	require.Equal(t, transactionsABI.Methods["transferBatch"].ID, tx.Data()[:4])
	require.Equal(t, call.Value(), tx.Value())
	require.Equal(t, "3", FormatAmount(tx.Value()))
}

func TestSubmitTransferAppliesGasPriceFloor(t *testing.T) {
	// The node suggests 10 gwei; the floor demands 600.
	backend := &fakeBackend{gasPrice: big.NewInt(10_000_000_000), estimate: 52_000}
	gw := newTestGateway(t, backend)

	amount, _ := ParseAmount("0.1")
	call := TransferCall{
		Receivers: []common.Address{common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")},
		Amounts:   []*big.Int{amount},
	}
	floor := new(big.Int).Mul(big.NewInt(600), big.NewInt(1_000_000_000))

	_, err := gw.SubmitTransfer(context.Background(), call, SubmitOpts{GasLimit: 5_000_000, GasPriceFloor: floor})
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	require.Equal(t, floor, backend.sent[0].GasPrice())
	require.Equal(t, uint64(5_000_000), backend.sent[0].Gas())
}

func TestSubmitTransferEstimationFailure(t *testing.T) {
	backend := &fakeBackend{gasPrice: big.NewInt(1), estimateErr: errors.New("execution reverted")}
	gw := newTestGateway(t, backend)

	amount, _ := ParseAmount("1")
	call := TransferCall{
		Receivers: []common.Address{common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")},
		Amounts:   []*big.Int{amount},
	}

	_, err := gw.SubmitTransfer(context.Background(), call, SubmitOpts{})
	require.Error(t, err)

	var estErr *EstimationError
	require.ErrorAs(t, err, &estErr)
	require.Empty(t, backend.sent)

	// An explicit gas limit must bypass estimation entirely.
	_, err = gw.SubmitTransfer(context.Background(), call, SubmitOpts{GasLimit: 5_000_000})
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
}

func TestSubmitTransferMalformedCall(t *testing.T) {
	gw := newTestGateway(t, &fakeBackend{gasPrice: big.NewInt(1)})

	_, err := gw.SubmitTransfer(context.Background(), TransferCall{}, SubmitOpts{})
	require.Error(t, err)

	one, _ := ParseAmount("1")
	_, err = gw.SubmitTransfer(context.Background(), TransferCall{
		Receivers: []common.Address{common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")},
		Amounts:   []*big.Int{one, one},
	}, SubmitOpts{})
	require.Error(t, err)
}

func TestWaitMinedTimeout(t *testing.T) {
	backend := &fakeBackend{gasPrice: big.NewInt(1), receiptErr: errors.New("not found")}
	gw := newTestGateway(t, backend)

	_, err := gw.WaitMined(context.Background(), "0xdeadbeef", 50*time.Millisecond)
	require.ErrorIs(t, err, ErrConfirmTimeout)
}

func TestWaitMinedRevert(t *testing.T) {
	hash := common.HexToHash("0xabc0000000000000000000000000000000000000000000000000000000000001")
	backend := &fakeBackend{
		gasPrice: big.NewInt(1),
		receipt: &types.Receipt{
			TxHash:      hash,
			BlockNumber: big.NewInt(42),
			Status:      types.ReceiptStatusFailed,
			GasUsed:     21_000,
		},
	}
	gw := newTestGateway(t, backend)

	receipt, err := gw.WaitMined(context.Background(), hash.Hex(), 10*time.Second)
	require.Error(t, err)

	var revert *RevertError
	require.ErrorAs(t, err, &revert)
	require.NotNil(t, receipt)
	require.False(t, receipt.Status)
	require.Equal(t, int64(42), receipt.BlockNumber)
}

func TestWaitMinedSuccess(t *testing.T) {
	hash := common.HexToHash("0xabc0000000000000000000000000000000000000000000000000000000000002")
	backend := &fakeBackend{
		gasPrice: big.NewInt(1),
		receipt: &types.Receipt{
			TxHash:      hash,
			BlockNumber: big.NewInt(7),
			Status:      types.ReceiptStatusSuccessful,
			GasUsed:     52_000,
		},
	}
	gw := newTestGateway(t, backend)

	receipt, err := gw.WaitMined(context.Background(), hash.Hex(), 10*time.Second)
	require.NoError(t, err)
	require.True(t, receipt.Status)
	require.Equal(t, int64(7), receipt.BlockNumber)
	require.Equal(t, uint64(52_000), receipt.GasUsed)
}

func TestTransactionsDecodesContractRecords(t *testing.T) {
	amount, _ := ParseAmount("2")
	records := []ChainTransaction{
		{
			Sender:    common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
			Receiver:  common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
			Amount:    amount,
			Message:   "rent",
			Timestamp: big.NewInt(1_700_000_000),
			Keyword:   "housing",
		},
	}
	encoded, err := transactionsABI.Methods["getAllTransactions"].Outputs.Pack(records)
	require.NoError(t, err)

	backend := &fakeBackend{gasPrice: big.NewInt(1), callResult: encoded}
	gw := newTestGateway(t, backend)

	got, err := gw.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, records[0].Sender, got[0].Sender)
	require.Equal(t, records[0].Receiver, got[0].Receiver)
	require.Equal(t, "rent", got[0].Message)
	require.Equal(t, "housing", got[0].Keyword)
	require.Equal(t, 0, got[0].Amount.Cmp(amount))
}

func TestTransactionCount(t *testing.T) {
	encoded, err := transactionsABI.Methods["getTransactionCount"].Outputs.Pack(big.NewInt(12))
	require.NoError(t, err)

	backend := &fakeBackend{gasPrice: big.NewInt(1), callResult: encoded}
	gw := newTestGateway(t, backend)

	count, err := gw.TransactionCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(12), count)
}

func TestRPCErrorsCarryCodes(t *testing.T) {
	backend := &fakeBackend{gasPrice: big.NewInt(1), callErr: errors.New("connection refused")}
	gw := newTestGateway(t, backend)

	_, err := gw.TransactionCount(context.Background())
	require.Error(t, err)
	require.Equal(t, "rpc_error", ErrorCode(err))

	require.Equal(t, "timed_out", ErrorCode(fmt.Errorf("wrap: %w", ErrConfirmTimeout)))
	require.Equal(t, "contract_reverted", ErrorCode(&RevertError{TxHash: "0xabc"}))
	require.Equal(t, "estimation_failed", ErrorCode(&EstimationError{Err: errors.New("boom")}))
	require.Equal(t, "network_unavailable", ErrorCode(ErrNetworkUnavailable))
	require.Equal(t, "unsupported_network", ErrorCode(ErrUnsupportedNetwork))
}
