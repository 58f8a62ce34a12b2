package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "turns.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	return s
}

func TestAppendAndHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "sess-1", MessageHuman, "hello"))
	require.NoError(t, s.Append(ctx, "sess-1", MessageAI, "hi there"))
	require.NoError(t, s.Append(ctx, "sess-2", MessageHuman, "other session"))

	records, err := s.History(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, MessageHuman, records[0].MessageType)
	assert.Equal(t, "hello", records[0].Content)
	assert.Equal(t, MessageAI, records[1].MessageType)
	assert.Equal(t, "hi there", records[1].Content)
	assert.False(t, records[0].CreatedAt.IsZero())

	// Insertion order is preserved even when timestamps tie.
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].CreatedAt.Before(records[i-1].CreatedAt))
	}
}

func TestHistoryEmptySession(t *testing.T) {
	s := openTestStore(t)

	records, err := s.History(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDisabledStore(t *testing.T) {
	var s Store = Disabled{}
	ctx := context.Background()

	err := s.Append(ctx, "sess", MessageHuman, "hello")
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = s.History(ctx, "sess")
	assert.ErrorIs(t, err, ErrDisabled)

	assert.NoError(t, s.Close())
}
