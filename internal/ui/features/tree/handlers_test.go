package tree

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/testutil"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/features"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestRouter(t *testing.T) (http.Handler, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t, features.OrdersLineage)

	r := chi.NewMux()
	require.NoError(t, SetupRoutes(r, fixture.Source, fixture.Views, fixture.SessionStore, fixture.Notifier, testutil.NewTestLogger(t)))
	return r, fixture
}

func do(t *testing.T, h http.Handler, method, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// newSession loads the page once and returns the session cookies.
func newSession(t *testing.T, h http.Handler) []*http.Cookie {
	t.Helper()
	rec := do(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "page should start a session")
	return cookies
}

// =============================================================================
// Page
// =============================================================================

func TestLineagePage(t *testing.T) {
	h, _ := setupTestRouter(t)

	rec := do(t, h, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>DB.S.ORDERS - Lineage Explorer</title>",
		`id="lineage-tree"`,
		"data-init",
		"/updates",
		"ANALYZING: DB.S.ORDERS",
		"STG_ORDERS",
		"RAW_ORDERS",
		"[LOOP]",
		"toggle?path=0",
		"/api/lineage/csv",
	} {
		assert.Contains(t, body, want, "response should contain %q", want)
	}

	// Terminal nodes have no toggle.
	assert.NotContains(t, body, "toggle?path=1")
	assert.NotContains(t, body, "toggle?path=0/0")
}

func TestLineagePage_BaseTableRoot(t *testing.T) {
	fixture := features.SetupTestFixture(t, `{"DB.S.T": {"kind": "TABLE"}}`)
	r := chi.NewMux()
	require.NoError(t, SetupRoutes(r, fixture.Source, fixture.Views, fixture.SessionStore, fixture.Notifier, nil))

	rec := do(t, r, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), lineage.BaseTableMessage)
	assert.NotContains(t, rec.Body.String(), "toggle?path=")
}

func TestLineagePage_RootNotes(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		wantNo bool
	}{
		{name: "view without sources", doc: `{"DB.S.V": {"kind": "VIEW"}}`, wantNo: true},
		{name: "unknown without sources", doc: `{"DB.S.U": {}}`, wantNo: false},
		{name: "loop root", doc: `{"DB.S.L": {"kind": "LOOP"}}`, wantNo: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := features.SetupTestFixture(t, tt.doc)
			r := chi.NewMux()
			require.NoError(t, SetupRoutes(r, fixture.Source, fixture.Views, fixture.SessionStore, fixture.Notifier, nil))

			body := do(t, r, http.MethodGet, "/", nil).Body.String()

			if tt.wantNo {
				assert.Contains(t, body, lineage.NoDependenciesMessage)
			} else {
				assert.NotContains(t, body, lineage.NoDependenciesMessage)
			}
		})
	}
}

// =============================================================================
// View mutations
// =============================================================================

func TestToggle(t *testing.T) {
	h, _ := setupTestRouter(t)
	cookies := newSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/view/toggle?path=0", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, rec.Body.String(), "datastar-patch-elements")
	assert.Contains(t, rec.Body.String(), TreeElementID)
	assert.NotContains(t, rec.Body.String(), "RAW_ORDERS")

	// The collapsed state belongs to this session.
	page := do(t, h, http.MethodGet, "/", cookies).Body.String()
	assert.NotContains(t, page, "RAW_ORDERS")
	assert.Contains(t, page, `aria-expanded="false"`)

	// Another browser still sees the full tree.
	other := do(t, h, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, other, "RAW_ORDERS")

	// Toggling again expands.
	rec = do(t, h, http.MethodPost, "/api/view/toggle?path=0", cookies)
	assert.Contains(t, rec.Body.String(), "RAW_ORDERS")
}

func TestToggle_Paths(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "malformed path", path: "0/x", wantStatus: http.StatusBadRequest, wantBody: "invalid node path"},
		{name: "negative index", path: "-1", wantStatus: http.StatusBadRequest, wantBody: "invalid node path"},
		{name: "loop sentinel is a no-op", path: "1", wantStatus: http.StatusOK, wantBody: "RAW_ORDERS"},
		{name: "table leaf is a no-op", path: "0/0", wantStatus: http.StatusOK, wantBody: "RAW_ORDERS"},
		{name: "out of range is a no-op", path: "7/3", wantStatus: http.StatusOK, wantBody: "RAW_ORDERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestRouter(t)
			cookies := newSession(t, h)

			rec := do(t, h, http.MethodPost, "/api/view/toggle?path="+tt.path, cookies)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestCollapseAndExpandAll(t *testing.T) {
	h, _ := setupTestRouter(t)
	cookies := newSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/view/collapse-all", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "STG_ORDERS")
	assert.Contains(t, rec.Body.String(), "DB.S.ORDERS")

	rec = do(t, h, http.MethodPost, "/api/view/expand-all", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "RAW_ORDERS")
}

func TestReloadDiscardsViews(t *testing.T) {
	h, fixture := setupTestRouter(t)
	cookies := newSession(t, h)

	do(t, h, http.MethodPost, "/api/view/collapse-all", cookies)

	fixture.WriteLineage(t, `{"DB.S.NEW": {"kind": "VIEW", "sources": [{"DB.S.SRC": {"kind": "TABLE"}}]}}`)
	require.NoError(t, fixture.Source.Reload())

	page := do(t, h, http.MethodGet, "/", cookies).Body.String()
	assert.Contains(t, page, "ANALYZING: DB.S.NEW")
	assert.Contains(t, page, "SRC")
	assert.Contains(t, page, `data-generation="2"`)
}

// =============================================================================
// Updates stream
// =============================================================================

func TestUpdates_PushesReloadedTree(t *testing.T) {
	h, fixture := setupTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/updates", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool { return fixture.Notifier.Len() == 1 },
		2*time.Second, 10*time.Millisecond)

	res, err := lineage.DecodeBytes([]byte(`{"DB.S.PUSHED": {"kind": "TABLE"}}`))
	require.NoError(t, err)
	fixture.Source.Replace(res)

	scanner := bufio.NewScanner(resp.Body)
	var sawEvent, sawTree bool
	for scanner.Scan() && !(sawEvent && sawTree) {
		line := scanner.Text()
		if strings.Contains(line, "datastar-patch-elements") {
			sawEvent = true
		}
		if strings.Contains(line, "ANALYZING: DB.S.PUSHED") {
			sawTree = true
		}
	}
	assert.True(t, sawEvent, "stream should carry a patch event")
	assert.True(t, sawTree, "patch should carry the reloaded tree")
}

// =============================================================================
// Downloads and API
// =============================================================================

func TestLineageJSON(t *testing.T) {
	h, _ := setupTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/lineage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var got struct {
		Root       string          `json:"root"`
		Source     string          `json:"source"`
		Generation uint64          `json:"generation"`
		Stats      lineage.Stats   `json:"stats"`
		Tree       *lineage.Result `json:"tree"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "DB.S.ORDERS", got.Root)
	assert.Equal(t, "lineage.json", got.Source)
	assert.Equal(t, uint64(1), got.Generation)
	assert.Equal(t, 4, got.Stats.Nodes)
	assert.Equal(t, 2, got.Stats.Leaves)
	require.NotNil(t, got.Tree)
	assert.Equal(t, "DB.S.ORDERS", got.Tree.RootName())
}

func TestExports(t *testing.T) {
	h, fixture := setupTestRouter(t)
	res, _ := fixture.Source.Current()

	tests := []struct {
		name            string
		target          string
		wantType        string
		wantDisposition string
		wantBody        string
	}{
		{
			name:            "text",
			target:          "/api/lineage/text",
			wantType:        "text/plain",
			wantDisposition: `attachment; filename="lineage.txt"`,
			wantBody:        lineage.RenderText(res),
		},
		{
			name:            "csv",
			target:          "/api/lineage/csv",
			wantType:        "text/csv",
			wantDisposition: `attachment; filename="lineage.csv"`,
			wantBody:        lineage.RenderCSV(res),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.wantType)
			assert.Equal(t, tt.wantDisposition, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHealthzAndNotFound(t *testing.T) {
	h, _ := setupTestRouter(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no page at /nope")
}
