package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/tavily-mcp/library/search"
	"github.com/Laisky/tavily-mcp/library/search/tavily"
)

const (
	defaultExtractDepth          = search.DepthBasic
	defaultExtractFormat         = "markdown"
	defaultExtractTimeoutSeconds = 60

	extractionNote = "Some URLs failed to extract. This is common with news sites that block crawlers or have paywalls."
)

// urlInput accepts the upstream bool-or-list union: a single URL string or an
// array of URLs. Non-string array entries are dropped rather than rejected so
// the validity filter sees every string the caller provided.
type urlInput []string

// UnmarshalJSON accepts both a bare string and an array encoding.
func (u *urlInput) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*u = urlInput{single}
		return nil
	}

	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Errorf("urls must be a string or an array of strings, got %s", string(data))
	}

	urls := make(urlInput, 0, len(items))
	for _, item := range items {
		if text, ok := item.(string); ok {
			urls = append(urls, text)
		}
	}
	*u = urls
	return nil
}

// ExtractTool implements the tavily_extract MCP tool: per-URL content
// extraction with partial-failure reporting.
type ExtractTool struct {
	provider Provider
	logger   logSDK.Logger
}

// NewExtractTool constructs an ExtractTool with the provided dependencies.
func NewExtractTool(provider Provider, logger logSDK.Logger) (*ExtractTool, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &ExtractTool{provider: provider, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *ExtractTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"tavily_extract",
		mcp.WithDescription("Extract content from specific URLs. Requires actual URLs starting with http:// or https:// - "+
			"use tavily_search first to find URLs, then extract content from them."),
		mcp.WithString("urls", mcp.Required(), mcp.Description("A URL or a JSON array of URLs to extract content from.")),
		mcp.WithBoolean("include_images", mcp.Description("Include images found on the pages.")),
		mcp.WithString("extract_depth", mcp.Description("Extraction depth: 'basic' (default) or 'advanced'.")),
		mcp.WithString("format", mcp.Description("Output format: 'markdown' (default) or 'text'.")),
		mcp.WithNumber("timeout", mcp.Description("Request timeout in seconds, default 60.")),
		mcp.WithBoolean("include_favicon", mcp.Description("Include site favicons in the response.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Handle executes tavily_extract. Inputs that contain no usable URL are
// rejected before any upstream call; upstream per-URL failures surface inside
// the response with an advisory note rather than as a total failure.
func (t *ExtractTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		URLs           json.RawMessage `json:"urls"`
		IncludeImages  bool            `json:"include_images"`
		ExtractDepth   string          `json:"extract_depth"`
		Format         string          `json:"format"`
		Timeout        *float64        `json:"timeout"`
		IncludeFavicon bool            `json:"include_favicon"`
	}{}
	if err := decodeArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.URLs) == 0 {
		return mcp.NewToolResultError("urls argument is required"), nil
	}

	var provided urlInput
	if err := provided.UnmarshalJSON(args.URLs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	validURLs := make([]string, 0, len(provided))
	for _, candidate := range provided {
		if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
			validURLs = append(validURLs, candidate)
		}
	}

	if len(validURLs) == 0 {
		t.logger.Debug("extract rejected, no usable urls", zap.Int("provided", len(provided)))
		return structuredResult(map[string]any{
			"error":          "No valid URLs provided. tavily_extract requires actual URLs (starting with http:// or https://)",
			"provided_input": args.URLs,
			"help":           "Use tavily_search first to get URLs, then extract content from those URLs",
		})
	}

	if args.ExtractDepth == "" {
		args.ExtractDepth = defaultExtractDepth
	}
	if args.Format == "" {
		args.Format = defaultExtractFormat
	}
	timeout := defaultExtractTimeoutSeconds
	if args.Timeout != nil && *args.Timeout > 0 {
		timeout = int(*args.Timeout)
	}

	resp, err := t.provider.Extract(ctx, &tavily.ExtractRequest{
		URLs:           validURLs,
		IncludeImages:  args.IncludeImages,
		ExtractDepth:   args.ExtractDepth,
		Format:         args.Format,
		IncludeFavicon: args.IncludeFavicon,
		Timeout:        timeout,
	})
	if err != nil {
		t.logger.Warn("extract failed", zap.Int("url_count", len(validURLs)), zap.Error(err))
		return structuredResult(map[string]any{
			"error":      fmt.Sprintf("Tavily extract error: %s", messageOf(err)),
			"error_type": errorTypeName(err),
			"valid_urls": validURLs,
			"suggestion": "Try using tavily_search with include_raw_content=True for better content access",
		})
	}

	if len(resp.FailedResults) > 0 {
		resp.ExtractionNote = extractionNote
	}
	return structuredResult(resp)
}
