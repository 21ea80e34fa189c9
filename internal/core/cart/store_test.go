package cart

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewFileStore(dir, "sess-1")
	require.NoError(t, err)

	c, err := Open(ctx, store)
	require.NoError(t, err)
	require.True(t, c.IsEmpty())

	require.NoError(t, c.Add(ctx, burger, 2))
	require.NoError(t, c.Add(ctx, fries, 1, "Extra Cheese", "Crispy Bacon"))

	reloadedStore, err := NewFileStore(dir, "sess-1")
	require.NoError(t, err)
	reloaded, err := Open(ctx, reloadedStore)
	require.NoError(t, err)

	assert.Equal(t, c.Lines(), reloaded.Lines())
	assert.Equal(t, int64(3348), reloaded.Total())
}

func TestFileStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, _ := NewFileStore(dir, "a")
	b, _ := NewFileStore(dir, "b")

	ca, _ := Open(ctx, a)
	require.NoError(t, ca.Add(ctx, burger, 1))

	cb, err := Open(ctx, b)
	require.NoError(t, err)
	assert.True(t, cb.IsEmpty())
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := NewFileStore(t.TempDir(), "gone")

	c, _ := Open(ctx, store)
	require.NoError(t, c.Add(ctx, toast, 1))
	require.NoError(t, c.End(ctx))

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx))
}

func TestFileStore_RejectsBadSessionID(t *testing.T) {
	_, err := NewFileStore(t.TempDir(), "../escape")
	assert.Error(t, err)

	_, err = NewFileStore(t.TempDir(), "")
	assert.Error(t, err)
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	store, _ := NewFileStore(t.TempDir(), "bad")
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	_, err := Open(ctx, store)
	assert.Error(t, err)
}
