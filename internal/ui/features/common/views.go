package common

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
)

// DefaultMaxViews bounds how many session views a registry keeps.
const DefaultMaxViews = 1024

// sessionView is one browser session's projection of the tree.
type sessionView struct {
	mu         sync.Mutex
	generation uint64
	view       *lineage.View
}

// ViewRegistry maps session view IDs to their views. Sessions never share a
// view, and a view built from an older generation is discarded on next use.
// Once full, the least recently used session loses its view and starts over
// fully expanded.
type ViewRegistry struct {
	mu     sync.Mutex
	views  *lru.Cache[string, *sessionView]
	source *TreeSource
}

// NewViewRegistry creates an empty registry over source holding at most
// maxViews views. A non-positive maxViews means DefaultMaxViews.
func NewViewRegistry(source *TreeSource, maxViews int) (*ViewRegistry, error) {
	if maxViews <= 0 {
		maxViews = DefaultMaxViews
	}
	views, err := lru.New[string, *sessionView](maxViews)
	if err != nil {
		return nil, fmt.Errorf("create view cache: %w", err)
	}
	return &ViewRegistry{
		views:  views,
		source: source,
	}, nil
}

// With runs fn with the session's view, holding the view's lock. The view is
// rebuilt fully expanded when the tree has changed since it was created.
func (r *ViewRegistry) With(id string, fn func(v *lineage.View, generation uint64) error) error {
	sv := r.get(id)

	sv.mu.Lock()
	defer sv.mu.Unlock()

	res, gen := r.source.Current()
	if sv.view == nil || sv.generation != gen {
		sv.view = lineage.NewView(res)
		sv.generation = gen
	}
	return fn(sv.view, gen)
}

// Len returns the number of live views.
func (r *ViewRegistry) Len() int {
	return r.views.Len()
}

func (r *ViewRegistry) get(id string) *sessionView {
	r.mu.Lock()
	defer r.mu.Unlock()

	sv, ok := r.views.Get(id)
	if !ok {
		sv = &sessionView{}
		r.views.Add(id, sv)
	}
	return sv
}
