package kvstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"chain-poker/internal/config"
	"chain-poker/internal/kvstore"
	"chain-poker/internal/testutil"

	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "display_name")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "display_name", "alice"))
	v, ok, err := s.Get(ctx, "display_name")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", v)

	require.NoError(t, s.Set(ctx, "display_name", "bob"))
	v, _, err = s.Get(ctx, "display_name")
	require.NoError(t, err)
	require.Equal(t, "bob", v)

	require.NoError(t, s.Delete(ctx, "display_name"))
	_, ok, err = s.Get(ctx, "display_name")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Delete(ctx, "never-set"))
	require.ErrorIs(t, s.Set(ctx, "  ", "x"), kvstore.ErrEmptyKey)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, kvstore.NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	s, err := kvstore.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	s, err := kvstore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kvstore.SetBool(ctx, s, "wallet_auto_connect", true))
	require.NoError(t, s.Close())

	reopened, err := kvstore.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	on, err := kvstore.GetBool(ctx, reopened, "wallet_auto_connect")
	require.NoError(t, err)
	require.True(t, on)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := kvstore.OpenSQLite(" ")
	require.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	exerciseStore(t, testutil.OpenTestPostgres(t))
}

func TestOpenSelectsDriver(t *testing.T) {
	s, closeFn, err := kvstore.Open(context.Background(), config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	defer closeFn()
	_, isMemory := s.(*kvstore.Memory)
	require.True(t, isMemory)

	_, closeFn, err = kvstore.Open(context.Background(), config.StoreConfig{Driver: "etcd"})
	require.Error(t, err)
	closeFn()
}

func TestBoolHelpers(t *testing.T) {
	ctx := context.Background()
	s := kvstore.NewMemory()

	on, err := kvstore.GetBool(ctx, s, "flag")
	require.NoError(t, err)
	require.False(t, on)

	require.NoError(t, kvstore.SetBool(ctx, s, "flag", true))
	on, err = kvstore.GetBool(ctx, s, "flag")
	require.NoError(t, err)
	require.True(t, on)

	require.NoError(t, kvstore.SetBool(ctx, s, "flag", false))
	v, _, _ := s.Get(ctx, "flag")
	require.Equal(t, "false", v)
}
