package tree

import (
	"log/slog"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/features/common"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/notifier"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

// SetupRoutes registers the lineage page and API routes on the router.
func SetupRoutes(
	router chi.Router,
	source *common.TreeSource,
	views *common.ViewRegistry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(source, views, sessionStore, notify, logger)

	router.Get("/", handlers.LineagePage)
	router.Get("/updates", handlers.Updates)
	router.Get("/healthz", handlers.Healthz)
	router.NotFound(handlers.NotFound)

	router.Route("/api", func(r chi.Router) {
		r.Route("/view", func(r chi.Router) {
			r.Post("/toggle", handlers.Toggle)
			r.Post("/expand-all", handlers.ExpandAll)
			r.Post("/collapse-all", handlers.CollapseAll)
		})
		r.Get("/lineage", handlers.LineageJSON)
		r.Get("/lineage/text", handlers.TextExport)
		r.Get("/lineage/csv", handlers.CSVExport)
	})

	return nil
}
