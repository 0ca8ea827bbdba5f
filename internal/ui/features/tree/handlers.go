// Package tree provides the lineage tree page and its API.
package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/features/common"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/notifier"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"
	"maragu.dev/gomponents"
)

// Handlers provides HTTP handlers for the lineage tree feature.
type Handlers struct {
	source       *common.TreeSource
	views        *common.ViewRegistry
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	source *common.TreeSource,
	views *common.ViewRegistry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		source:       source,
		views:        views,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
	}
}

// LineagePage renders the full page with the session's current view.
func (h *Handlers) LineagePage(w http.ResponseWriter, r *http.Request) {
	id, err := common.SessionViewID(h.sessionStore, w, r)
	if err != nil {
		h.renderError(w, http.StatusInternalServerError, err)
		return
	}

	var page gomponents.Node
	_ = h.views.With(id, func(v *lineage.View, gen uint64) error {
		page = lineagePage(h.pageData(v, gen))
		return nil
	})
	renderHTML(w, http.StatusOK, page)
}

// Updates is the long-lived SSE endpoint of the page. It sends nothing up
// front, since the page is already rendered, and re-patches the tree after
// every reload.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	id, err := common.SessionViewID(h.sessionStore, w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case gen, ok := <-updates:
			if !ok {
				return
			}
			h.logger.Debug("pushing reloaded tree", "view", id, "generation", gen)
			if err := h.patchTree(sse, id, nil); err != nil {
				_ = sse.ConsoleError(err)
				// Keep the stream open for the next reload.
			}
		}
	}
}

// Toggle flips one node of the session's view and patches the tree.
// Paths that do not name a toggleable node leave the view unchanged.
func (h *Handlers) Toggle(w http.ResponseWriter, r *http.Request) {
	path, err := lineage.ParseNodePath(r.URL.Query().Get("path"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(v *lineage.View) {
		v.Toggle(path)
	})
}

// ExpandAll expands every node of the session's view.
func (h *Handlers) ExpandAll(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*lineage.View).ExpandAll)
}

// CollapseAll collapses every node of the session's view.
func (h *Handlers) CollapseAll(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*lineage.View).CollapseAll)
}

func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, fn func(v *lineage.View)) {
	id, err := common.SessionViewID(h.sessionStore, w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := h.patchTree(sse, id, fn); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// patchTree applies fn to the session's view, if given, and sends the
// re-rendered tree section.
func (h *Handlers) patchTree(sse *datastar.ServerSentEventGenerator, id string, fn func(v *lineage.View)) error {
	var b strings.Builder
	err := h.views.With(id, func(v *lineage.View, gen uint64) error {
		if fn != nil {
			fn(v)
		}
		return treeSection(h.pageData(v, gen)).Render(&b)
	})
	if err != nil {
		return fmt.Errorf("failed to render tree: %w", err)
	}
	return sse.PatchElements(b.String())
}

func (h *Handlers) pageData(v *lineage.View, gen uint64) PageData {
	res := v.Result()
	return PageData{
		Source:     h.source.Name(),
		LoadedAt:   h.source.LoadedAt(),
		Generation: gen,
		Result:     res,
		Rows:       v.Rows(),
		Stats:      lineage.Summarize(res),
	}
}

// LineageResponse is the JSON form of the served tree.
type LineageResponse struct {
	Root       string          `json:"root"`
	Source     string          `json:"source"`
	Generation uint64          `json:"generation"`
	LoadedAt   time.Time       `json:"loaded_at"`
	Stats      lineage.Stats   `json:"stats"`
	Tree       *lineage.Result `json:"tree"`
}

// LineageJSON returns the current tree in its wire form.
func (h *Handlers) LineageJSON(w http.ResponseWriter, _ *http.Request) {
	res, gen := h.source.Current()
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(LineageResponse{
		Root:       res.RootName(),
		Source:     h.source.Name(),
		Generation: gen,
		LoadedAt:   h.source.LoadedAt(),
		Stats:      lineage.Summarize(res),
		Tree:       res,
	}); err != nil {
		h.logger.Error("failed to encode lineage", "error", err)
	}
}

// TextExport downloads the text tree.
func (h *Handlers) TextExport(w http.ResponseWriter, _ *http.Request) {
	res, _ := h.source.Current()
	attachment(w, "text/plain; charset=utf-8", lineage.DefaultTextFilename)
	if err := lineage.WriteText(w, res); err != nil {
		h.logger.Error("failed to write text export", "error", err)
	}
}

// CSVExport downloads the root-to-leaf path table.
func (h *Handlers) CSVExport(w http.ResponseWriter, _ *http.Request) {
	res, _ := h.source.Current()
	attachment(w, "text/csv; charset=utf-8", lineage.DefaultCSVFilename)
	if err := lineage.WriteCSV(w, res); err != nil {
		h.logger.Error("failed to write csv export", "error", err)
	}
}

// Healthz reports liveness.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// NotFound renders the error page for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, http.StatusNotFound, errors.New("no page at "+r.URL.Path))
}

func (h *Handlers) renderError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	renderHTML(w, status, errorPage(status, err.Error()))
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}
