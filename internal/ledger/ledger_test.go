package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/sendora-labs/sendora/internal/gateway"
)

type fakeReader struct {
	records []gateway.ChainTransaction
	err     error
	count   uint64
}

func (f *fakeReader) Transactions(context.Context) ([]gateway.ChainTransaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeReader) TransactionCount(context.Context) (uint64, error) {
	return f.count, nil
}

func (f *fakeReader) ChainID() *big.Int { return big.NewInt(31337) }

func wei(t *testing.T, display string) *big.Int {
	t.Helper()
	amount, err := gateway.ParseAmount(display)
	require.NoError(t, err)
	return amount
}

func TestRefreshWithoutReader(t *testing.T) {
	view := NewView(nil, nil)
	entries, err := view.Refresh(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)

	_, ok := view.CachedCount()
	require.False(t, ok)
}

func TestRefreshEmptyHistory(t *testing.T) {
	view := NewView(&fakeReader{}, nil)
	entries, err := view.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestRefreshNewestFirst(t *testing.T) {
	reader := &fakeReader{
		records: []gateway.ChainTransaction{
			{
				Sender:    common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
				Receiver:  common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
				Amount:    wei(t, "1"),
				Message:   "first",
				Timestamp: big.NewInt(1_700_000_000),
			},
			{
				Sender:    common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
				Receiver:  common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
				Amount:    wei(t, "2.5"),
				Message:   "second",
				Keyword:   "rent",
				Timestamp: big.NewInt(1_700_000_100),
			},
		},
		count: 2,
	}
	view := NewView(reader, nil)

	entries, err := view.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "second", entries[0].Message)
	require.Equal(t, "2.5", entries[0].Amount)
	require.Equal(t, "rent", entries[0].Keyword)
	require.Equal(t, int64(31337), entries[0].ChainID)
	require.Equal(t, "first", entries[1].Message)
	require.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
}

func TestRefreshPropagatesReadError(t *testing.T) {
	view := NewView(&fakeReader{err: errors.New("rpc down")}, nil)
	_, err := view.Refresh(context.Background())
	require.Error(t, err)
}

func TestRefreshUpdatesCountCache(t *testing.T) {
	cache := NewCountCache(t.TempDir())
	view := NewView(&fakeReader{count: 7}, cache)

	_, err := view.Refresh(context.Background())
	require.NoError(t, err)

	count, ok := view.CachedCount()
	require.True(t, ok)
	require.Equal(t, uint64(7), count)
}

func TestCountCacheLoadStore(t *testing.T) {
	cache := NewCountCache(t.TempDir())

	_, ok := cache.Load()
	require.False(t, ok)

	require.NoError(t, cache.Store(42))
	count, ok := cache.Load()
	require.True(t, ok)
	require.Equal(t, uint64(42), count)
}
