package channel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppendAndOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := NewMessage("a", "b", TypeNegotiation, map[string]any{ContentAmount: "1"})
	second := NewMessage("b", "a", TypeConfirmation, map[string]any{ContentStatus: StatusConfirmed})

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	// Duplicate IDs are rejected.
	require.Error(t, store.Append(ctx, first))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ID, all[0].ID)
	require.Equal(t, second.ID, all[1].ID)

	got, ok, err := store.Get(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StatusConfirmed, got.ContentString(ContentStatus))

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecent(t *testing.T) {
	msgs := []Message{
		NewMessage("a", "b", TypeNegotiation, nil),
		NewMessage("a", "b", TypeConfirmation, nil),
		NewMessage("a", "b", TypeExecution, nil),
	}

	require.Len(t, Recent(msgs, 2), 2)
	require.Equal(t, TypeConfirmation, Recent(msgs, 2)[0].Type)
	require.Len(t, Recent(msgs, 10), 3)
	require.Len(t, Recent(msgs, 0), 3)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.db")
	ctx := context.Background()

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)

	first := NewMessage("agent", "agent", TypeNegotiation, map[string]any{
		ContentRecipient: "0xabc",
		ContentAmount:    "1.5",
	})
	second := NewMessage("agent", "agent", TypeConfirmation, map[string]any{
		ContentOriginalMessageID: first.ID,
		ContentStatus:            StatusConfirmed,
	})
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))
	require.Error(t, store.Append(ctx, first))
	require.NoError(t, store.Close())

	// Reopen: arrival order and content survive the restart.
	store, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ID, all[0].ID)
	require.Equal(t, "1.5", all[0].ContentString(ContentAmount))
	require.Equal(t, first.ID, all[1].ContentString(ContentOriginalMessageID))

	got, ok, err := store.Get(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, TypeConfirmation, got.Type)

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}
