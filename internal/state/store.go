// Package state persists lineage snapshots in SQLite so a built tree can be
// rendered and exported again later.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
)

// Snapshot lookup errors.
var (
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrAmbiguousSnapshot = errors.New("snapshot reference is ambiguous")
	ErrEmptyResult       = errors.New("cannot save an empty lineage result")
)

// LatestRef resolves to the most recently saved snapshot.
const LatestRef = "latest"

// Snapshot is a saved lineage result with summary metadata.
// Result is nil for snapshots returned by ListSnapshots.
type Snapshot struct {
	ID        string          `json:"id"`
	Root      string          `json:"root"`
	Source    string          `json:"source,omitempty"`
	NodeCount int             `json:"node_count"`
	LeafCount int             `json:"leaf_count"`
	MaxDepth  int             `json:"max_depth"`
	CreatedAt time.Time       `json:"created_at"`
	Result    *lineage.Result `json:"result,omitempty"`
}

// Store persists snapshots. Snapshots are immutable once saved.
type Store interface {
	SaveSnapshot(ctx context.Context, res *lineage.Result, source string) (*Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (*Snapshot, error)
	LatestSnapshot(ctx context.Context) (*Snapshot, error)
	// FindSnapshot resolves "latest", a full ID or a unique ID prefix.
	FindSnapshot(ctx context.Context, ref string) (*Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]*Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
