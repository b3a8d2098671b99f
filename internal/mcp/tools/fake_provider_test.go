package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	errors "github.com/Laisky/errors/v2"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
	"github.com/Laisky/tavily-mcp/library/search/tavily"
)

// fakeProvider is the in-memory stand-in for the Tavily client. Each
// capability replays a scripted outcome and records the requests it saw.
type fakeProvider struct {
	searchResp *search.Response
	searchErr  error
	searchReqs []*search.Request

	extractResp *tavily.ExtractResponse
	extractErr  error
	extractReqs []*tavily.ExtractRequest

	crawlResp *tavily.CrawlResponse
	crawlErr  error
	crawlReqs []*tavily.CrawlRequest

	mapResp *tavily.MapResponse
	mapErr  error
	mapReqs []*tavily.MapRequest

	qnaAnswer string
	qnaErr    error
	qnaCalls  []string

	contextText string
	contextErr  error
	// contextRejectTokens mimics a provider build without max_tokens
	// support: any call requesting a token budget fails with
	// ErrUnsupportedOption.
	contextRejectTokens bool
	contextCalls        []*tavily.ContextOptions
}

func (f *fakeProvider) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	f.searchReqs = append(f.searchReqs, req)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResp, nil
}

func (f *fakeProvider) Extract(_ context.Context, req *tavily.ExtractRequest) (*tavily.ExtractResponse, error) {
	f.extractReqs = append(f.extractReqs, req)
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.extractResp, nil
}

func (f *fakeProvider) Crawl(_ context.Context, req *tavily.CrawlRequest) (*tavily.CrawlResponse, error) {
	f.crawlReqs = append(f.crawlReqs, req)
	if f.crawlErr != nil {
		return nil, f.crawlErr
	}
	return f.crawlResp, nil
}

func (f *fakeProvider) Map(_ context.Context, req *tavily.MapRequest) (*tavily.MapResponse, error) {
	f.mapReqs = append(f.mapReqs, req)
	if f.mapErr != nil {
		return nil, f.mapErr
	}
	return f.mapResp, nil
}

func (f *fakeProvider) QNASearch(_ context.Context, query string) (string, error) {
	f.qnaCalls = append(f.qnaCalls, query)
	if f.qnaErr != nil {
		return "", f.qnaErr
	}
	return f.qnaAnswer, nil
}

func (f *fakeProvider) SearchContext(_ context.Context, _ string, opts *tavily.ContextOptions) (string, error) {
	f.contextCalls = append(f.contextCalls, opts)
	if f.contextRejectTokens && opts != nil && opts.MaxTokens > 0 {
		return "", errors.Wrap(search.ErrUnsupportedOption, "max_tokens")
	}
	if f.contextErr != nil {
		return "", f.contextErr
	}
	return f.contextText, nil
}

// fakeExecutor replays one scripted ladder outcome.
type fakeExecutor struct {
	resp *search.Response
	err  error
	reqs []*search.Request
}

func (f *fakeExecutor) Execute(_ context.Context, req *search.Request) (*search.Response, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

// steppingClock advances by step on every reading.
func steppingClock(start time.Time, step time.Duration) Clock {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

func callWith(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.False(t, result.IsError)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	payload := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	return payload
}

func errorText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.True(t, result.IsError)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}
