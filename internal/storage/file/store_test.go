package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/tiffin-storefront/internal/storage"
)

func TestStore_Persists(t *testing.T) {
	for _, name := range []string{"state.json", "state.json.gz"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "nested", name)

			s, err := Open(path)
			require.NoError(t, err)

			_, err = s.Get(ctx, "redux_cart")
			require.ErrorIs(t, err, storage.ErrNotFound)

			require.NoError(t, s.Set(ctx, "redux_cart", []byte(`[{"id":"1","quantity":2}]`)))
			require.NoError(t, s.Set(ctx, "auth_token", []byte("abc")))
			require.NoError(t, s.Delete(ctx, "auth_token"))

			reopened, err := Open(path)
			require.NoError(t, err)

			got, err := reopened.Get(ctx, "redux_cart")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"1","quantity":2}]`, string(got))

			_, err = reopened.Get(ctx, "auth_token")
			require.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "state.json"))
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, s.Set(ctx, "k", []byte("v")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestOpen_CorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode snapshot")
}
