package mcp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/stretchr/testify/require"
)

func TestNewInspectorHandlerRendersTools(t *testing.T) {
	handler := NewInspectorHandler("/mcp", []string{"tavily_search", "get_current_date"}, glog.Shared)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspector", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	require.Contains(t, body, ServerName)
	require.Contains(t, body, ServerVersion)
	require.Contains(t, body, "<code>tavily_search</code>")
	require.Contains(t, body, "<code>get_current_date</code>")
	require.Contains(t, body, `<code id="endpoint">/mcp</code>`)
}

func TestNewInspectorHandlerDefaults(t *testing.T) {
	handler := NewInspectorHandler("", nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspector", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `<code id="endpoint">/mcp</code>`)
	require.Equal(t, "no-store, no-cache, must-revalidate", rec.Header().Get("Cache-Control"))
}
