package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStore_PutAndGet(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key := "bank-files/2026/02/BF-BDO-20260206-ABC123.csv"
	content := []byte("employee_number,account,amount\n")

	require.NoError(t, store.Put(ctx, key, content, "text/csv"))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLocalFileStore_Exists(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "payslips/ps-001.pdf", []byte("pdf"), "application/pdf"))

	exists, err := store.Exists(ctx, "payslips/ps-001.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "payslips/missing.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalFileStore_Get_Missing(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "does/not/exist.csv")
	require.Error(t, err)
}

func TestLocalFileStore_RejectsEscapingKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()

	err = store.Put(ctx, "../outside.txt", []byte("nope"), "text/plain")
	require.Error(t, err)

	err = store.Put(ctx, "/etc/passwd", []byte("nope"), "text/plain")
	require.Error(t, err)

	_, err = store.Get(ctx, "")
	require.Error(t, err)
}

func TestLocalFileStore_CreatesBaseDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "files")

	_, err := NewLocalFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
