// Package features provides shared test utilities for UI feature tests.
package features

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/testutil"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/features/common"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/notifier"
)

// OrdersLineage is a view over one base table with a loop back to itself.
const OrdersLineage = `{
  "DB.S.ORDERS": {
    "kind": "VIEW",
    "sources": [
      {"DB.S.STG_ORDERS": {"kind": "VIEW", "sources": [
        {"DB.S.RAW_ORDERS": {"kind": "TABLE"}}
      ]}},
      {"DB.S.ORDERS": {"kind": "LOOP"}}
    ]
  }
}`

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Source       *common.TreeSource
	Views        *common.ViewRegistry
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	// Path is the lineage file backing Source.
	Path string
}

// SetupTestFixture writes doc to a temporary lineage file and builds a tree
// source, view registry, notifier and cookie store around it.
func SetupTestFixture(t *testing.T, doc string) *TestFixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lineage.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	res, err := lineage.DecodeBytes([]byte(doc))
	require.NoError(t, err)

	notify := notifier.New()
	source := common.NewTreeSource(res, "lineage.json", path, notify, testutil.NewTestLogger(t))

	views, err := common.NewViewRegistry(source, 0)
	require.NoError(t, err)

	sessionStore := sessions.NewCookieStore([]byte("test-secret-key-for-sessions-32b"))
	sessionStore.Options.Path = "/"

	return &TestFixture{
		Source:       source,
		Views:        views,
		Notifier:     notify,
		SessionStore: sessionStore,
		Path:         path,
	}
}

// WriteLineage replaces the fixture's lineage file.
func (f *TestFixture) WriteLineage(t *testing.T, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.Path, []byte(doc), 0o600))
}

