package mcp

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	errors "github.com/Laisky/errors/v2"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func TestShouldDowngradeMCPErrorLog(t *testing.T) {
	cases := []struct {
		name   string
		method mcpgo.MCPMethod
		err    error
		want   bool
	}{
		{name: "resources list probe", method: mcpgo.MethodResourcesList, err: errors.New("request error: resources not supported"), want: true},
		{name: "resource templates probe", method: mcpgo.MethodResourcesTemplatesList, err: errors.New("resources not supported"), want: true},
		{name: "prompts list probe", method: mcpgo.MethodPromptsList, err: errors.New("prompts not supported"), want: true},
		{name: "capability text mismatch", method: mcpgo.MethodPromptsList, err: errors.New("resources not supported"), want: false},
		{name: "tool call failure", method: mcpgo.MethodToolsCall, err: errors.New("resources not supported"), want: false},
		{name: "genuine resources failure", method: mcpgo.MethodResourcesList, err: errors.New("backend unavailable"), want: false},
		{name: "nil error", method: mcpgo.MethodResourcesList, err: nil, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, shouldDowngradeMCPErrorLog(tc.method, tc.err))
		})
	}
}

func TestToolNameOf(t *testing.T) {
	byPointer := &mcpgo.CallToolRequest{}
	byPointer.Params.Name = "tavily_search"
	require.Equal(t, "tavily_search", toolNameOf(byPointer))

	byValue := mcpgo.CallToolRequest{}
	byValue.Params.Name = "tavily_extract"
	require.Equal(t, "tavily_extract", toolNameOf(byValue))

	require.Empty(t, toolNameOf(nil))
	require.Empty(t, toolNameOf((*mcpgo.CallToolRequest)(nil)))
	require.Empty(t, toolNameOf(&mcpgo.ListToolsRequest{}))
}

func TestResponseCaptureTruncates(t *testing.T) {
	rec := httptest.NewRecorder()
	capture := newResponseCapture(rec, 8)

	_, err := capture.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = capture.Write([]byte("abc"))
	require.NoError(t, err)

	body, truncated := capture.Body()
	require.Equal(t, "01234567", body)
	require.True(t, truncated)
	require.Equal(t, http.StatusOK, capture.Status())
	require.Equal(t, "0123456789abc", rec.Body.String())
}

func TestResponseCaptureStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	capture := newResponseCapture(rec, 64)

	capture.WriteHeader(http.StatusAccepted)
	_, err := capture.Write([]byte("accepted"))
	require.NoError(t, err)

	require.Equal(t, http.StatusAccepted, capture.Status())
	body, truncated := capture.Body()
	require.Equal(t, "accepted", body)
	require.False(t, truncated)
}

func TestCaptureRequestBodyRestores(t *testing.T) {
	payload := `{"method":"tools/call","params":{"name":"tavily_search"}}`
	r := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(payload))

	logged, truncated, err := captureRequestBody(r, httpLogBodyLimit)
	require.NoError(t, err)
	require.False(t, truncated)
	require.Equal(t, payload, logged)

	restored, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.Equal(t, payload, string(restored))
}

func TestCaptureRequestBodyTruncates(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(strings.Repeat("x", httpLogBodyLimit+32)))

	logged, truncated, err := captureRequestBody(r, httpLogBodyLimit)
	require.NoError(t, err)
	require.True(t, truncated)
	require.Len(t, logged, httpLogBodyLimit)

	restored, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.Len(t, restored, httpLogBodyLimit+32)
}
