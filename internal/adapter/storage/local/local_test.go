package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_SaveGetDelete(t *testing.T) {
	store, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "2026/10/a.txt", strings.NewReader("hello")))

	rc, err := store.Get(ctx, "2026/10/a.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, "2026/10/a.txt"))
	require.NoError(t, store.Delete(ctx, "2026/10/a.txt"), "deleting a missing blob is not an error")

	_, err = store.Get(ctx, "2026/10/a.txt")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStorage_PathStaysInsideBase(t *testing.T) {
	base := t.TempDir()
	store, err := NewStorage(base)
	require.NoError(t, err)

	full, err := store.resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full, base))
}

func TestStorage_CancelledContext(t *testing.T) {
	store, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Save(ctx, "x", strings.NewReader("x")), context.Canceled)
}
