package filestore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/postloop/postloop/internal/config"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "t1-export.csv", []byte("title\nPost A\n")))

	reader, err := store.Open(ctx, "t1-export.csv")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "title\nPost A\n", string(data))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)

	ctx := context.Background()
	for _, key := range []string{"", "../escape", "a/b", `a\b`} {
		require.Error(t, store.Save(ctx, key, []byte("x")), "key %q", key)
	}
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
}
