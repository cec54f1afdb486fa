package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	path, err := store.Save(context.Background(), "evidence.pdf", strings.NewReader("receipt scan"))
	require.NoError(t, err)
	require.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "receipt scan", string(data))
}

func TestDiskStoreUniqueNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := store.Save(ctx, "doc.txt", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := store.Save(ctx, "doc.txt", strings.NewReader("two"))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := objectKey("photo.JPG")
	require.True(t, strings.HasPrefix(key, "docs/"))
	require.True(t, strings.HasSuffix(key, ".JPG"))
}
