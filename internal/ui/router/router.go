// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/features/common"
	treeFeature "github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/features/tree"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/notifier"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/resources"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	source *common.TreeSource,
	views *common.ViewRegistry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	router.Handle("/static/*", resources.Handler())

	return treeFeature.SetupRoutes(router, source, views, sessionStore, notify, logger)
}
