// Package ledger is the read path over the on-chain transfer log: it fetches
// and normalizes history for display. Pure projection, never mutates chain
// state.
package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/sendora-labs/sendora/internal/gateway"
)

// Reader is the gateway surface the view consumes.
type Reader interface {
	Transactions(ctx context.Context) ([]gateway.ChainTransaction, error)
	TransactionCount(ctx context.Context) (uint64, error)
	ChainID() *big.Int
}

// Entry is one normalized ledger record for display.
type Entry struct {
	From      string
	To        string
	Amount    string // decimal display units
	Message   string
	Keyword   string
	Timestamp time.Time
	ChainID   int64
}

// View projects the chain-resident transfer log. Safe to refresh repeatedly
// and concurrently; it only caches the last fetched count as a display hint.
type View struct {
	reader Reader
	cache  *CountCache
}

// NewView builds a view over a connected reader. A nil reader is allowed and
// yields empty refreshes (no signer connected is not an error).
func NewView(reader Reader, cache *CountCache) *View {
	return &View{reader: reader, cache: cache}
}

// Refresh fetches the on-chain history, newest first. Returns an empty slice
// when no reader is connected or no entries exist.
func (v *View) Refresh(ctx context.Context) ([]Entry, error) {
	if v.reader == nil {
		return []Entry{}, nil
	}

	records, err := v.reader.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	chainID := v.reader.ChainID().Int64()
	entries := make([]Entry, 0, len(records))
	// Chain order is oldest first; display wants newest first.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		entry := Entry{
			From:    r.Sender.Hex(),
			To:      r.Receiver.Hex(),
			Amount:  gateway.FormatAmount(r.Amount),
			Message: r.Message,
			Keyword: r.Keyword,
			ChainID: chainID,
		}
		if r.Timestamp != nil {
			entry.Timestamp = time.Unix(r.Timestamp.Int64(), 0).UTC()
		}
		entries = append(entries, entry)
	}

	// The count cache is a display hint only; failures to refresh it are
	// not the caller's problem.
	if v.cache != nil {
		if count, err := v.reader.TransactionCount(ctx); err == nil {
			_ = v.cache.Store(count)
		}
	}

	return entries, nil
}

// CachedCount returns the last persisted transaction count, if any.
func (v *View) CachedCount() (uint64, bool) {
	if v.cache == nil {
		return 0, false
	}
	return v.cache.Load()
}
