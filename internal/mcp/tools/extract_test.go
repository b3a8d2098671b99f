package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	errors "github.com/Laisky/errors/v2"

	"github.com/Laisky/tavily-mcp/library/log"
	"github.com/Laisky/tavily-mcp/library/search"
	"github.com/Laisky/tavily-mcp/library/search/tavily"
)

func mustExtractTool(t *testing.T, provider Provider) *ExtractTool {
	t.Helper()

	tool, err := NewExtractTool(provider, log.Logger.Named("test_extract"))
	require.NoError(t, err)
	return tool
}

func TestExtractHandleSingleURLDefaults(t *testing.T) {
	provider := &fakeProvider{
		extractResp: &tavily.ExtractResponse{
			Results: []tavily.ExtractResult{
				{URL: "https://example.com/post", RawContent: "# Post"},
			},
		},
	}
	tool := mustExtractTool(t, provider)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{
		"urls": "https://example.com/post",
	}))
	require.NoError(t, err)

	require.Len(t, provider.extractReqs, 1)
	req := provider.extractReqs[0]
	require.Equal(t, []string{"https://example.com/post"}, req.URLs)
	require.Equal(t, search.DepthBasic, req.ExtractDepth)
	require.Equal(t, "markdown", req.Format)
	require.Equal(t, defaultExtractTimeoutSeconds, req.Timeout)
	require.False(t, req.IncludeImages)
	require.False(t, req.IncludeFavicon)

	payload := resultPayload(t, result)
	results, ok := payload["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
}

func TestExtractHandleFiltersNonHTTPURLs(t *testing.T) {
	provider := &fakeProvider{extractResp: &tavily.ExtractResponse{}}
	tool := mustExtractTool(t, provider)

	_, err := tool.Handle(context.Background(), callWith(map[string]any{
		"urls": []any{"https://a.example.com", "ftp://b.example.com", "bare.example.com", 42},
	}))
	require.NoError(t, err)

	require.Len(t, provider.extractReqs, 1)
	require.Equal(t, []string{"https://a.example.com"}, provider.extractReqs[0].URLs)
}

func TestExtractHandleRejectsInputWithoutUsableURL(t *testing.T) {
	provider := &fakeProvider{}
	tool := mustExtractTool(t, provider)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{
		"urls": "how to find URLs",
	}))
	require.NoError(t, err)

	payload := resultPayload(t, result)
	require.Equal(t,
		"No valid URLs provided. tavily_extract requires actual URLs (starting with http:// or https://)",
		payload["error"])
	require.Equal(t, "how to find URLs", payload["provided_input"])
	require.Equal(t,
		"Use tavily_search first to get URLs, then extract content from those URLs",
		payload["help"])
	require.Empty(t, provider.extractReqs)
}

func TestExtractHandleOverrides(t *testing.T) {
	provider := &fakeProvider{extractResp: &tavily.ExtractResponse{}}
	tool := mustExtractTool(t, provider)

	_, err := tool.Handle(context.Background(), callWith(map[string]any{
		"urls":            "https://example.com",
		"include_images":  true,
		"extract_depth":   search.DepthAdvanced,
		"format":          "text",
		"timeout":         30,
		"include_favicon": true,
	}))
	require.NoError(t, err)

	req := provider.extractReqs[0]
	require.True(t, req.IncludeImages)
	require.Equal(t, search.DepthAdvanced, req.ExtractDepth)
	require.Equal(t, "text", req.Format)
	require.Equal(t, 30, req.Timeout)
	require.True(t, req.IncludeFavicon)
}

func TestExtractHandleProviderError(t *testing.T) {
	provider := &fakeProvider{extractErr: errors.New("boom")}
	tool := mustExtractTool(t, provider)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{
		"urls": "https://example.com",
	}))
	require.NoError(t, err)

	payload := resultPayload(t, result)
	require.Equal(t, "Tavily extract error: boom", payload["error"])
	require.Equal(t, string(search.KindTransport), payload["error_type"])
	require.Equal(t, []any{"https://example.com"}, payload["valid_urls"])
	require.Equal(t,
		"Try using tavily_search with include_raw_content=True for better content access",
		payload["suggestion"])
}

func TestExtractHandlePartialFailureNote(t *testing.T) {
	provider := &fakeProvider{
		extractResp: &tavily.ExtractResponse{
			Results: []tavily.ExtractResult{
				{URL: "https://ok.example.com", RawContent: "content"},
			},
			FailedResults: []tavily.FailedResult{
				{URL: "https://paywalled.example.com", Error: "403"},
			},
		},
	}
	tool := mustExtractTool(t, provider)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{
		"urls": []any{"https://ok.example.com", "https://paywalled.example.com"},
	}))
	require.NoError(t, err)

	payload := resultPayload(t, result)
	require.Equal(t,
		"Some URLs failed to extract. This is common with news sites that block crawlers or have paywalls.",
		payload["extraction_note"])
	failed, ok := payload["failed_results"].([]any)
	require.True(t, ok)
	require.Len(t, failed, 1)
}

func TestExtractHandleRequiresURLs(t *testing.T) {
	tool := mustExtractTool(t, &fakeProvider{})

	result, err := tool.Handle(context.Background(), callWith(map[string]any{}))
	require.NoError(t, err)
	require.Equal(t, "urls argument is required", errorText(t, result))
}
