package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/tavily-mcp/library/log"
	"github.com/Laisky/tavily-mcp/library/search"
)

func mustNewsSearchTool(t *testing.T, executor SearchExecutor) *NewsSearchTool {
	t.Helper()

	tool, err := NewNewsSearchTool(executor, log.Logger.Named("test_news"))
	require.NoError(t, err)
	return tool
}

func TestNewsSearchHandlePresetDefaults(t *testing.T) {
	executor := &fakeExecutor{resp: &search.Response{Query: "q", Results: []search.ResultItem{}}}
	tool := mustNewsSearchTool(t, executor)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{"query": "election results"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.Len(t, executor.reqs, 1)
	req := executor.reqs[0]
	require.Equal(t, "election results", req.Query)
	require.Equal(t, search.DepthAdvanced, req.SearchDepth)
	require.Equal(t, search.TopicNews, req.Topic)
	require.True(t, req.AutoParameters)
	require.NotNil(t, req.Days)
	require.Equal(t, 7, *req.Days)
	require.Equal(t, 10, req.MaxResults)
	require.Equal(t, search.FlagMode(search.AnswerAdvanced), req.IncludeAnswer)
	require.Equal(t, search.FlagMode(search.RawContentMarkdown), req.IncludeRawContent)
	require.True(t, req.IncludeImageDescriptions)
	require.True(t, req.IncludeFavicon)
	require.Empty(t, req.Country)
	require.Equal(t, search.PresetTimeoutSeconds, req.Timeout)
}

func TestNewsSearchHandleOverrides(t *testing.T) {
	executor := &fakeExecutor{resp: &search.Response{Query: "q", Results: []search.ResultItem{}}}
	tool := mustNewsSearchTool(t, executor)

	_, err := tool.Handle(context.Background(), callWith(map[string]any{
		"query":       "earnings report",
		"days":        3,
		"max_results": 5,
	}))
	require.NoError(t, err)

	req := executor.reqs[0]
	require.Equal(t, 3, *req.Days)
	require.Equal(t, 5, req.MaxResults)
}

// TestNewsSearchHandleDropsCountryByDefault covers the international-first
// policy: a supplied country filter is ignored unless the caller opts out of
// international sources.
func TestNewsSearchHandleDropsCountryByDefault(t *testing.T) {
	executor := &fakeExecutor{resp: &search.Response{Query: "q", Results: []search.ResultItem{}}}
	tool := mustNewsSearchTool(t, executor)

	_, err := tool.Handle(context.Background(), callWith(map[string]any{
		"query":   "local politics",
		"country": "germany",
	}))
	require.NoError(t, err)
	require.Empty(t, executor.reqs[0].Country)
}

// TestNewsSearchHandleCountryWithNationalSources covers the country+news
// combination: opting out of international sources forwards the country
// filter, which the validator rejects for non-general topics before any
// upstream call.
func TestNewsSearchHandleCountryWithNationalSources(t *testing.T) {
	executor := &fakeExecutor{}
	tool := mustNewsSearchTool(t, executor)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{
		"query":                         "local politics",
		"country":                       "germany",
		"include_international_sources": false,
	}))
	require.NoError(t, err)

	payload := resultPayload(t, result)
	require.Contains(t, payload["error"], "only available with topic='general'")
	require.Equal(t, "ValidationError", payload["error_type"])
	require.Empty(t, executor.reqs)
}

func TestNewsSearchHandleRequiresQuery(t *testing.T) {
	tool := mustNewsSearchTool(t, &fakeExecutor{})

	result, err := tool.Handle(context.Background(), callWith(map[string]any{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}
