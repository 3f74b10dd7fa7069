package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db := SetupDatabase("sqlite", filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, db.Exec(`CREATE TABLE players (notion_id TEXT, name TEXT, stars REAL)`).Error)
	return NewStore(db)
}

func TestScopeExistenceChecks(t *testing.T) {
	store := setupStore(t)

	err := store.Transaction(context.Background(), func(tx TxScope) error {
		assert.True(t, tx.TableExists("players"))
		assert.False(t, tx.TableExists("ghosts"))
		assert.True(t, tx.ColumnExists("players", "notion_id"))
		assert.False(t, tx.ColumnExists("players", "height"))

		columns, err := tx.Columns("players")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"notion_id", "name", "stars"}, columns)
		return nil
	})
	require.NoError(t, err)
}

func TestScopeBulkInsertSelectDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx TxScope) error {
		inserted, err := tx.BulkInsert("players", []map[string]interface{}{
			{"notion_id": "r1", "name": "First", "stars": 4.0},
			{"notion_id": "r2", "name": "Second", "stars": 5.0},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted)
		return nil
	})
	require.NoError(t, err)

	err = store.Transaction(ctx, func(tx TxScope) error {
		rows, err := tx.Select("players", map[string]interface{}{"notion_id": "r1"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "First", rows[0]["name"])

		require.NoError(t, tx.DeleteWhereKeyIn("players", "notion_id", []string{"r1", "r404"}))

		remaining, err := tx.Select("players", nil)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestScopeUpdate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx TxScope) error {
		if _, err := tx.BulkInsert("players", []map[string]interface{}{
			{"notion_id": "r1", "name": "First", "stars": 4.0},
		}); err != nil {
			return err
		}
		return tx.Update("players",
			map[string]interface{}{"notion_id": "r1"},
			map[string]interface{}{"stars": 5.0})
	})
	require.NoError(t, err)

	err = store.Transaction(ctx, func(tx TxScope) error {
		rows, err := tx.Select("players", map[string]interface{}{"notion_id": "r1"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 5.0, rows[0]["stars"])
		return nil
	})
	require.NoError(t, err)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx TxScope) error {
		if _, err := tx.BulkInsert("players", []map[string]interface{}{
			{"notion_id": "r1", "name": "First", "stars": 4.0},
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.Transaction(ctx, func(tx TxScope) error {
		rows, err := tx.Select("players", nil)
		require.NoError(t, err)
		assert.Empty(t, rows)
		return nil
	})
	require.NoError(t, err)
}

func TestMarkSynced(t *testing.T) {
	db := SetupDatabase("sqlite", filepath.Join(t.TempDir(), "test.db"), false)
	store := NewStore(db)

	integration := Integration{Name: "gridiron", WorkspaceID: "ws-1", Active: true}
	require.NoError(t, db.Create(&integration).Error)
	require.Nil(t, integration.LastSyncedAt)

	now := time.Now().UTC()
	err := store.Transaction(context.Background(), func(tx TxScope) error {
		return tx.MarkSynced(integration.ID, now)
	})
	require.NoError(t, err)

	var reloaded Integration
	require.NoError(t, db.First(&reloaded, integration.ID).Error)
	require.NotNil(t, reloaded.LastSyncedAt)
	assert.WithinDuration(t, now, *reloaded.LastSyncedAt, time.Second)
}
