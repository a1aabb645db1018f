// ABOUTME: Tests for SQLite store setup and schema creation
// ABOUTME: Covers opening, reopening, and closing the secrets database

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestNewSQLiteStore_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "secrets.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping())
}

func TestNewSQLiteStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "secrets.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.CreateSecret(ctx, &Secret{Key: "cfauth/basic", Value: `{"user":"a","password":"b"}`}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetSecretByKey(ctx, "cfauth/basic")
	require.NoError(t, err)
	assert.Equal(t, `{"user":"a","password":"b"}`, got.Value)
}

func TestMockStore_Err(t *testing.T) {
	store := NewMockStore()
	store.Err = assert.AnError

	_, err := store.GetSecretByKey(context.Background(), "cfauth/basic")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMockStore_PutSecret(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	first := &Secret{Key: "k", Value: "v1"}
	require.NoError(t, store.PutSecret(ctx, first))

	second := &Secret{Key: "k", Value: "v2"}
	require.NoError(t, store.PutSecret(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := store.GetSecretByKey(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Value)

	all, err := store.ListAllSecrets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMockStore_CreateSecretDuplicate(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.CreateSecret(ctx, &Secret{Key: "k", Value: "v1"}))

	err := store.CreateSecret(ctx, &Secret{Key: "k", Value: "v2"})
	assert.ErrorIs(t, err, ErrDuplicateSecret)

	got, err := store.GetSecretByKey(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Value)
}
