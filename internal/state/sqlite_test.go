package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/testutil"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersDoc = `{
  "DB.S.ORDERS": {
    "kind": "VIEW",
    "sources": [
      {"DB.S.RAW_ORDERS": {"kind": "TABLE"}},
      {"DB.S.ORDERS": {"kind": "LOOP"}}
    ]
  }
}`

func ordersResult(t *testing.T) *lineage.Result {
	t.Helper()
	res, err := lineage.DecodeBytes([]byte(ordersDoc))
	require.NoError(t, err)
	return res
}

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(context.Background(), ":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	// Deterministic, strictly increasing timestamps.
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(context.Background(), ":memory:"))
	require.NoError(t, store.Close())
}

func TestSQLiteStore_MigrationVersion(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Migrations are idempotent.
	require.NoError(t, store.Migrate())
}

func TestSQLiteStore_FileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store, err := OpenSQLiteStore(ctx, path, testutil.NewTestLogger(t))
	require.NoError(t, err)
	saved, err := store.SaveSnapshot(ctx, ordersResult(t), "orders.json")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteStore(ctx, path, testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetSnapshot(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "DB.S.ORDERS", got.Root)
	assert.Equal(t, path, reopened.Path())
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	res := ordersResult(t)

	saved, err := store.SaveSnapshot(ctx, res, "orders.json")
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "DB.S.ORDERS", saved.Root)
	assert.Equal(t, 3, saved.NodeCount)
	assert.Equal(t, 2, saved.LeafCount)
	assert.Equal(t, 2, saved.MaxDepth)

	got, err := store.GetSnapshot(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "orders.json", got.Source)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, lineage.RenderText(res), lineage.RenderText(got.Result))
	assert.Equal(t, lineage.RenderCSV(res), lineage.RenderCSV(got.Result))
}

func TestSQLiteStore_SaveEmpty(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.SaveSnapshot(context.Background(), &lineage.Result{}, "")
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.GetSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = store.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	err = store.DeleteSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSQLiteStore_ListLatestDelete(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	var ids []string
	for _, src := range []string{"first.json", "second.json", "third.json"} {
		snap, err := store.SaveSnapshot(ctx, ordersResult(t), src)
		require.NoError(t, err)
		ids = append(ids, snap.ID)
	}

	all, err := store.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Nil(t, all[0].Result)

	limited, err := store.ListSnapshots(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	latest, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest.ID)
	assert.Equal(t, "third.json", latest.Source)

	require.NoError(t, store.DeleteSnapshot(ctx, ids[2]))
	latest, err = store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[1], latest.ID)
}

func TestSQLiteStore_FindSnapshot(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	first, err := store.SaveSnapshot(ctx, ordersResult(t), "first.json")
	require.NoError(t, err)
	second, err := store.SaveSnapshot(ctx, ordersResult(t), "second.json")
	require.NoError(t, err)

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{name: "latest keyword", ref: "latest", wantID: second.ID},
		{name: "empty means latest", ref: "", wantID: second.ID},
		{name: "full id", ref: first.ID, wantID: first.ID},
		{name: "unique prefix", ref: first.ID[:8], wantID: first.ID},
		{name: "short prefix is not expanded", ref: first.ID[:3], wantErr: ErrSnapshotNotFound},
		{name: "unknown", ref: "ffffffff-none", wantErr: ErrSnapshotNotFound},
		{name: "like wildcards are literal", ref: "%%%%", wantErr: ErrSnapshotNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindSnapshot(ctx, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
			assert.NotNil(t, got.Result)
		})
	}
}

func TestSQLiteStore_FindSnapshotAmbiguous(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	for _, id := range []string{"abcd-0001", "abcd-0002"} {
		_, err := store.db.ExecContext(ctx,
			`INSERT INTO snapshots (id, root, payload, created_at) VALUES (?, 'X', ?, 0)`,
			id, `{"X": {"kind": "TABLE"}}`)
		require.NoError(t, err)
	}

	_, err := store.FindSnapshot(ctx, "abcd")
	assert.ErrorIs(t, err, ErrAmbiguousSnapshot)

	got, err := store.FindSnapshot(ctx, "abcd-0002")
	require.NoError(t, err)
	assert.Equal(t, lineage.KindTable, got.Result.Root.Kind)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(nil)

	_, err := store.SaveSnapshot(ctx, ordersResult(t), "")
	assert.Error(t, err)
	_, err = store.GetSnapshot(ctx, "x")
	assert.Error(t, err)
	_, err = store.ListSnapshots(ctx, 0)
	assert.Error(t, err)
	assert.Error(t, store.DeleteSnapshot(ctx, "x"))
	assert.Error(t, store.Migrate())
	assert.NoError(t, store.Close())
}

// --- Driver error paths ---

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewSQLiteStoreWithDB(db, testutil.NewTestLogger(t))
	t.Cleanup(func() {
		mock.ExpectClose()
		require.NoError(t, store.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})
	return store, mock
}

func TestSQLiteStore_DriverErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("insert failure is wrapped", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO snapshots").WillReturnError(assert.AnError)

		_, err := store.SaveSnapshot(ctx, ordersResult(t), "x.json")
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to save snapshot")
	})

	t.Run("query failure is not reported as not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("FROM snapshots WHERE id").WillReturnError(assert.AnError)

		_, err := store.GetSnapshot(ctx, "abc")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrSnapshotNotFound))
	})

	t.Run("corrupt payload", func(t *testing.T) {
		store, mock := newMockStore(t)
		rows := sqlmock.NewRows([]string{"id", "root", "source", "node_count", "leaf_count", "max_depth", "created_at", "payload"}).
			AddRow("abc", "X", "", 1, 1, 1, int64(0), `{"A": {}, "B": {}}`)
		mock.ExpectQuery("FROM snapshots WHERE id").WillReturnRows(rows)

		_, err := store.GetSnapshot(ctx, "abc")
		require.Error(t, err)
		assert.ErrorIs(t, err, lineage.ErrMultipleRoots)
	})

	t.Run("delete reports missing rows", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM snapshots").WithArgs("abc").WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.DeleteSnapshot(ctx, "abc")
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})

	t.Run("list scan failure", func(t *testing.T) {
		store, mock := newMockStore(t)
		rows := sqlmock.NewRows([]string{"id"}).AddRow("abc")
		mock.ExpectQuery("FROM snapshots ORDER BY").WillReturnRows(rows)

		_, err := store.ListSnapshots(ctx, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scan snapshot")
	})
}
