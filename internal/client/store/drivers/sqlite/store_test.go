package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tandahq/tanda/internal/client/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "state.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	s, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte(`{"a":1}`)))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), got)

	// Put replaces
	require.NoError(t, s.Put(ctx, "k", []byte(`{"a":2}`)))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":2}`), got)
}

func TestGet_Missing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Deleting a missing key is fine.
	require.NoError(t, s.Delete(ctx, "k"))
}

func TestInstallID_StableAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "state.db") + "?_busy_timeout=5000&_journal_mode=WAL"

	s, err := NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	first, err := s.InstallID(ctx)
	require.NoError(t, err)
	require.False(t, first.IsZero())

	again, err := s.InstallID(ctx)
	require.NoError(t, err)
	require.Equal(t, first, again)

	require.NoError(t, s.Close())

	// Reopen the same file: the ID survives restarts.
	s2, err := NewStore(dsn)
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.ApplyMigrations())

	after, err := s2.InstallID(ctx)
	require.NoError(t, err)
	require.Equal(t, first, after)
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
}
