package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// minPrefixLen is the shortest ID prefix FindSnapshot accepts.
const minPrefixLen = 4

const snapshotColumns = `id, root, source, node_count, leaf_count, max_depth, created_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{
		logger: logger,
		now:    time.Now,
	}
}

// NewSQLiteStoreWithDB wraps an existing connection. The schema is assumed
// to be migrated already.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// OpenSQLiteStore opens the database at path, creating its directory, and
// applies migrations.
func OpenSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		// Ensure state directory exists
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	s := NewSQLiteStore(logger)
	if err := s.Open(ctx, path); err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(ctx context.Context, path string) error {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state store", "path", path)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path given to Open.
func (s *SQLiteStore) Path() string {
	return s.path
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// SaveSnapshot stores res with its summary statistics.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, res *lineage.Result, source string) (*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if res.IsEmpty() {
		return nil, ErrEmptyResult
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lineage: %w", err)
	}

	stats := lineage.Summarize(res)
	snap := &Snapshot{
		ID:        generateID(),
		Root:      res.RootName(),
		Source:    source,
		NodeCount: stats.Nodes,
		LeafCount: stats.Leaves,
		MaxDepth:  stats.MaxDepth,
		CreatedAt: s.now().UTC(),
		Result:    res,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, root, source, node_count, leaf_count, max_depth, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Root, snap.Source, snap.NodeCount, snap.LeafCount, snap.MaxDepth,
		string(payload), snap.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Debug("saved snapshot", "id", snap.ID, "root", snap.Root, "nodes", snap.NodeCount)
	return snap, nil
}

// GetSnapshot retrieves a snapshot and its lineage result by ID.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+`, payload FROM snapshots WHERE id = ?`, id)
	snap, err := scanFullSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return snap, nil
}

// LatestSnapshot retrieves the most recently saved snapshot.
func (s *SQLiteStore) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+`, payload FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	snap, err := scanFullSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: store is empty", ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return snap, nil
}

// FindSnapshot resolves ref as "latest", a full ID, or a unique ID prefix of
// at least four characters.
func (s *SQLiteStore) FindSnapshot(ctx context.Context, ref string) (*Snapshot, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, LatestRef) {
		return s.LatestSnapshot(ctx)
	}

	snap, err := s.GetSnapshot(ctx, ref)
	if err == nil || !errors.Is(err, ErrSnapshotNotFound) || len(ref) < minPrefixLen {
		return snap, err
	}

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(ref)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM snapshots WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, ref)
	case 1:
		return s.GetSnapshot(ctx, ids[0])
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousSnapshot, ref)
	}
}

// ListSnapshots returns snapshot metadata, newest first. A limit of zero or
// less returns every snapshot.
func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []*Snapshot
	for rows.Next() {
		snap := &Snapshot{}
		var createdAt int64
		if err := rows.Scan(&snap.ID, &snap.Root, &snap.Source, &snap.NodeCount,
			&snap.LeafCount, &snap.MaxDepth, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.CreatedAt = time.Unix(0, createdAt).UTC()
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return snaps, nil
}

// DeleteSnapshot removes a snapshot by ID.
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	s.logger.Debug("deleted snapshot", "id", id)
	return nil
}

func scanFullSnapshot(row *sql.Row) (*Snapshot, error) {
	snap := &Snapshot{}
	var (
		createdAt int64
		payload   string
	)
	if err := row.Scan(&snap.ID, &snap.Root, &snap.Source, &snap.NodeCount,
		&snap.LeafCount, &snap.MaxDepth, &createdAt, &payload); err != nil {
		return nil, err
	}
	snap.CreatedAt = time.Unix(0, createdAt).UTC()

	res, err := lineage.DecodeBytes([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("corrupt snapshot payload %s: %w", snap.ID, err)
	}
	snap.Result = res
	return snap, nil
}
