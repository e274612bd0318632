package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "task-1/1700000000123.pdf", DocumentKey("task-1", "Report.PDF", now))
	assert.Equal(t, "task-1/1700000000123.gz", DocumentKey("task-1", "archive.tar.gz", now))
	assert.Equal(t, "task-1/1700000000123.bin", DocumentKey("task-1", "README", now))
}

func TestLocalStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()

	store, err := NewLocalStore(base)
	require.NoError(t, err)

	body := "hello document"
	require.NoError(t, store.Put(ctx, "task-1/1.txt", strings.NewReader(body), int64(len(body)), "text/plain"))

	rc, err := store.Get(ctx, "task-1/1.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, body, string(data))

	require.NoError(t, store.Delete(ctx, "task-1/1.txt"))

	_, err = store.Get(ctx, "task-1/1.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// the task directory stays for later uploads
	_, err = os.Stat(filepath.Join(base, "task-1"))
	assert.NoError(t, err)

	body = "second upload"
	require.NoError(t, store.Put(ctx, "task-1/2.txt", strings.NewReader(body), int64(len(body)), "text/plain"))
}

func TestLocalStore_PutNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "task-1/1.pdf", strings.NewReader("first"), 5, "application/pdf"))

	err = store.Put(ctx, "task-1/1.pdf", strings.NewReader("second"), 6, "application/pdf")
	assert.ErrorIs(t, err, ErrObjectExists)

	rc, err := store.Get(ctx, "task-1/1.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocalStore_PutCancelledLeavesNoFile(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStore(base)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = store.Put(ctx, "task-1/1.txt", strings.NewReader("late"), 4, "text/plain")
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(base, "task-1", "1.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalStore_DeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "task-1/missing.txt"))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../escape.txt", strings.NewReader("x"), 1, "")
	assert.Error(t, err)

	_, err = store.Get(context.Background(), "task-1/../../etc/passwd")
	assert.Error(t, err)
}
