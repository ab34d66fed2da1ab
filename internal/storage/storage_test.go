package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndDelete(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	path, err := store.Save(ctx, File{
		Name:        "screenshot.png",
		ContentType: "image/png",
		Size:        4,
		Content:     strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_screenshot.png"))

	reader, err := store.Open(ctx, path)
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "data", string(content))

	exists, err := store.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, path))
	exists, err = store.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting again is not an error
	assert.NoError(t, store.Delete(ctx, path))
}

func TestLocalStoreUniqueKeysForSameName(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	first, err := store.Save(ctx, File{Name: "log.txt", Content: strings.NewReader("a")})
	require.NoError(t, err)
	second, err := store.Save(ctx, File{Name: "log.txt", Content: strings.NewReader("b")})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalStoreStripsDirectoryFromName(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	path, err := store.Save(context.Background(), File{
		Name:    "../../etc/passwd",
		Content: strings.NewReader("nope"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_passwd"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}
