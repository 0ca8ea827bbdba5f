// Package common provides the shared state behind the lineage web UI: the
// current tree and the per-session views projected from it.
package common

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/notifier"
)

// TreeSource holds the lineage result being served. Every replacement bumps
// the generation, which invalidates all views built from the old tree.
type TreeSource struct {
	mu         sync.RWMutex
	res        *lineage.Result
	name       string
	path       string
	generation uint64
	loadedAt   time.Time

	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewTreeSource creates a source serving res. name describes where the tree
// came from; path is the file Reload reads, empty when the tree cannot be
// reloaded.
func NewTreeSource(res *lineage.Result, name, path string, notify *notifier.Notifier, logger *slog.Logger) *TreeSource {
	if res == nil {
		res = &lineage.Result{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TreeSource{
		res:        res,
		name:       name,
		path:       path,
		generation: 1,
		loadedAt:   time.Now(),
		notifier:   notify,
		logger:     logger,
	}
}

// Current returns the tree and its generation.
func (s *TreeSource) Current() (*lineage.Result, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res, s.generation
}

// Name returns the description of where the tree came from.
func (s *TreeSource) Name() string {
	return s.name
}

// Path returns the file the tree is reloaded from.
func (s *TreeSource) Path() string {
	return s.path
}

// LoadedAt returns when the current generation was loaded.
func (s *TreeSource) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Replace swaps in res as a new generation and notifies subscribers.
func (s *TreeSource) Replace(res *lineage.Result) uint64 {
	if res == nil {
		res = &lineage.Result{}
	}

	s.mu.Lock()
	s.res = res
	s.generation++
	s.loadedAt = time.Now()
	gen := s.generation
	s.mu.Unlock()

	s.logger.Info("lineage tree replaced", "root", res.RootName(), "generation", gen)
	if s.notifier != nil {
		s.notifier.Broadcast(gen)
	}
	return gen
}

// Reload decodes the source file again. A file that fails to decode leaves
// the current tree in place.
func (s *TreeSource) Reload() error {
	if s.path == "" {
		return fmt.Errorf("lineage source %q cannot be reloaded", s.name)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open lineage file: %w", err)
	}
	defer func() { _ = f.Close() }()

	res, err := lineage.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", s.path, err)
	}
	s.Replace(res)
	return nil
}
