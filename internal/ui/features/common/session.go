package common

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// Session cookie name and the key holding the view ID.
const (
	SessionName = "lineage-explorer"
	viewIDKey   = "view_id"
)

// SessionViewID returns the view ID stored in the request's session, creating
// and saving a new one when the session has none. It must run before the
// response body is written.
func SessionViewID(store sessions.Store, w http.ResponseWriter, r *http.Request) (string, error) {
	// A cookie that fails to decode still yields a usable new session.
	session, _ := store.Get(r, SessionName)

	if id, ok := session.Values[viewIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	session.Values[viewIDKey] = id
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return id, nil
}
