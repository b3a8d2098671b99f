package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	errors "github.com/Laisky/errors/v2"

	"github.com/Laisky/tavily-mcp/library/log"
	"github.com/Laisky/tavily-mcp/library/search"
)

func mustSearchContextTool(t *testing.T, provider Provider) *SearchContextTool {
	t.Helper()

	tool, err := NewSearchContextTool(provider, log.Logger.Named("test_context"))
	require.NoError(t, err)
	return tool
}

func TestSearchContextHandleNativeSuccess(t *testing.T) {
	provider := &fakeProvider{contextText: "curated context block"}
	tool := mustSearchContextTool(t, provider)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{"query": "go generics"}))
	require.NoError(t, err)
	require.Equal(t, "curated context block", resultText(t, result))

	require.Len(t, provider.contextCalls, 1)
	require.Equal(t, defaultContextMaxTokens, provider.contextCalls[0].MaxTokens)
}

func TestSearchContextHandleCustomTokenBudget(t *testing.T) {
	provider := &fakeProvider{contextText: "short context"}
	tool := mustSearchContextTool(t, provider)

	_, err := tool.Handle(context.Background(), callWith(map[string]any{
		"query":      "go generics",
		"max_tokens": 1234,
	}))
	require.NoError(t, err)
	require.Equal(t, 1234, provider.contextCalls[0].MaxTokens)
}

// TestSearchContextHandleDegradesPastUnsupportedOption covers the middle rung:
// a provider build without max_tokens support gets a second call with the
// option removed instead of failing outright.
func TestSearchContextHandleDegradesPastUnsupportedOption(t *testing.T) {
	provider := &fakeProvider{contextText: "tokenless context", contextRejectTokens: true}
	tool := mustSearchContextTool(t, provider)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{"query": "go generics"}))
	require.NoError(t, err)
	require.Equal(t, "tokenless context", resultText(t, result))

	require.Len(t, provider.contextCalls, 2)
	require.NotNil(t, provider.contextCalls[0])
	require.Nil(t, provider.contextCalls[1])
}

func TestSearchContextHandleFallsBackToSearch(t *testing.T) {
	provider := &fakeProvider{
		contextErr: errors.New("context endpoint unavailable"),
		searchResp: &search.Response{
			Answer: "Generics arrived in Go 1.18.",
			Results: []search.ResultItem{
				{Title: "Go Blog", Content: "Type parameters proposal."},
				{Title: "", Content: "Untitled source content."},
				{Title: "Empty", Content: ""},
			},
		},
	}
	tool := mustSearchContextTool(t, provider)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{"query": "go generics"}))
	require.NoError(t, err)

	text := resultText(t, result)
	require.Equal(t,
		"Summary: Generics arrived in Go 1.18.\n\n"+
			"Source (Go Blog): Type parameters proposal.\n\n"+
			"Source (Unknown): Untitled source content.",
		text)

	require.Len(t, provider.searchReqs, 1)
	fallback := provider.searchReqs[0]
	require.Equal(t, search.DepthBasic, fallback.SearchDepth)
	require.Equal(t, contextFallbackMaxResults, fallback.MaxResults)
	require.Equal(t, search.FlagMode(search.AnswerAdvanced), fallback.IncludeAnswer)
	require.Equal(t, search.FlagMode(search.RawContentText), fallback.IncludeRawContent)
}

func TestSearchContextHandleBothPathsFail(t *testing.T) {
	provider := &fakeProvider{
		contextErr: errors.New("context endpoint unavailable"),
		searchErr:  errors.New("search offline"),
	}
	tool := mustSearchContextTool(t, provider)

	result, err := tool.Handle(context.Background(), callWith(map[string]any{"query": "go generics"}))
	require.NoError(t, err)
	require.Equal(t,
		"Context generation error: context endpoint unavailable. Fallback error: search offline",
		resultText(t, result))
}

func TestSearchContextHandleRequiresQuery(t *testing.T) {
	tool := mustSearchContextTool(t, &fakeProvider{})

	result, err := tool.Handle(context.Background(), callWith(map[string]any{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}
